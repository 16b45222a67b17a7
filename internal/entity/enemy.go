package entity

// EnemyStore holds every enemy slot.
type EnemyStore struct {
	X, Y   []float32
	VX, VY []float32
	Speed  []float32
	HP     []float32
	Alive  []uint8 // Alive/Dead; doubles as a lane mask
	Kind   []uint8

	// SepX/SepY are the separation solver's per-slot scratch buffers.
	SepX, SepY []float32

	count int
	free  freeList
}

// NewEnemyStore returns an empty store with room for capacity slots.
func NewEnemyStore(capacity int) *EnemyStore {
	return &EnemyStore{
		X:     make([]float32, 0, capacity),
		Y:     make([]float32, 0, capacity),
		VX:    make([]float32, 0, capacity),
		VY:    make([]float32, 0, capacity),
		Speed: make([]float32, 0, capacity),
		HP:    make([]float32, 0, capacity),
		Alive: make([]uint8, 0, capacity),
		Kind:  make([]uint8, 0, capacity),
		SepX:  make([]float32, 0, capacity),
		SepY:  make([]float32, 0, capacity),
	}
}

// Len returns the number of slots, alive or dead.
func (s *EnemyStore) Len() int {
	return len(s.X)
}

// Count returns the number of alive enemies.
func (s *EnemyStore) Count() int {
	return s.count
}

// IsAlive reports whether slot i holds a live enemy.
func (s *EnemyStore) IsAlive(i int) bool {
	return i >= 0 && i < len(s.Alive) && s.Alive[i] != Dead
}

// Spawn places one enemy and returns its slot.
func (s *EnemyStore) Spawn(x, y float32, kind uint8, speed, hp float32) int {
	i := s.free.pop()
	if i >= 0 {
		s.X[i], s.Y[i] = x, y
		s.VX[i], s.VY[i] = 0, 0
		s.Speed[i] = speed
		s.HP[i] = hp
		s.Alive[i] = Alive
		s.Kind[i] = kind
		s.SepX[i], s.SepY[i] = 0, 0
	} else {
		i = len(s.X)
		s.X = append(s.X, x)
		s.Y = append(s.Y, y)
		s.VX = append(s.VX, 0)
		s.VY = append(s.VY, 0)
		s.Speed = append(s.Speed, speed)
		s.HP = append(s.HP, hp)
		s.Alive = append(s.Alive, Alive)
		s.Kind = append(s.Kind, kind)
		s.SepX = append(s.SepX, 0)
		s.SepY = append(s.SepY, 0)
	}
	s.count++
	return i
}

// Kill marks slot i dead. Killing a dead or out-of-range slot is a no-op.
// Position and velocity are left as they were.
func (s *EnemyStore) Kill(i int) {
	if !s.IsAlive(i) {
		return
	}
	s.Alive[i] = Dead
	s.count--
	s.free.push(i)
}

// Reset empties the store, keeping allocated capacity.
func (s *EnemyStore) Reset() {
	s.X, s.Y = s.X[:0], s.Y[:0]
	s.VX, s.VY = s.VX[:0], s.VY[:0]
	s.Speed = s.Speed[:0]
	s.HP = s.HP[:0]
	s.Alive = s.Alive[:0]
	s.Kind = s.Kind[:0]
	s.SepX, s.SepY = s.SepX[:0], s.SepY[:0]
	s.count = 0
	s.free.reset()
}

// CopyFrom makes s a deep copy of src, reusing s's backing arrays.
// Used to keep a last-good checkpoint without per-tick allocation.
func (s *EnemyStore) CopyFrom(src *EnemyStore) {
	s.X = append(s.X[:0], src.X...)
	s.Y = append(s.Y[:0], src.Y...)
	s.VX = append(s.VX[:0], src.VX...)
	s.VY = append(s.VY[:0], src.VY...)
	s.Speed = append(s.Speed[:0], src.Speed...)
	s.HP = append(s.HP[:0], src.HP...)
	s.Alive = append(s.Alive[:0], src.Alive...)
	s.Kind = append(s.Kind[:0], src.Kind...)
	s.SepX = append(s.SepX[:0], src.SepX...)
	s.SepY = append(s.SepY[:0], src.SepY...)
	s.count = src.count
	s.free.stack = append(s.free.stack[:0], src.free.stack...)
}
