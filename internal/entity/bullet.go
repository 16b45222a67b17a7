package entity

// Render tags carried by bullets. The presentation layer picks a sprite
// from these; the simulation only uses them to tell effects apart.
const (
	BulletKindNormal    uint8 = 4  // wand, axe, cross
	BulletKindFireball  uint8 = 8  // piercing shot
	BulletKindLightning uint8 = 9  // chain link effect
	BulletKindWhip      uint8 = 10 // whip sweep effect
	BulletKindRock      uint8 = 14 // boss projectile
)

// BulletStore holds every projectile slot.
//
// A bullet with Damage == 0 is effect-only: it moves and expires like any
// other bullet and is rendered, but never takes part in hit tests.
type BulletStore struct {
	X, Y     []float32
	VX, VY   []float32
	Damage   []int32
	Lifetime []float32
	Alive    []bool
	Piercing []bool
	Kind     []uint8 // render tag

	count int
	free  freeList
}

// BulletSpec describes a bullet to spawn.
type BulletSpec struct {
	X, Y     float32
	VX, VY   float32
	Damage   int32
	Lifetime float32
	Piercing bool
	Kind     uint8
}

// NewBulletStore returns an empty store with room for capacity slots.
func NewBulletStore(capacity int) *BulletStore {
	return &BulletStore{
		X:        make([]float32, 0, capacity),
		Y:        make([]float32, 0, capacity),
		VX:       make([]float32, 0, capacity),
		VY:       make([]float32, 0, capacity),
		Damage:   make([]int32, 0, capacity),
		Lifetime: make([]float32, 0, capacity),
		Alive:    make([]bool, 0, capacity),
		Piercing: make([]bool, 0, capacity),
		Kind:     make([]uint8, 0, capacity),
	}
}

// Len returns the number of slots.
func (s *BulletStore) Len() int {
	return len(s.X)
}

// Count returns the number of alive bullets.
func (s *BulletStore) Count() int {
	return s.count
}

// IsAlive reports whether slot i holds a live bullet.
func (s *BulletStore) IsAlive(i int) bool {
	return i >= 0 && i < len(s.Alive) && s.Alive[i]
}

// IsEffect reports whether slot i is a visual-only bullet.
func (s *BulletStore) IsEffect(i int) bool {
	return s.Damage[i] == 0
}

// Spawn places one bullet and returns its slot.
func (s *BulletStore) Spawn(b BulletSpec) int {
	i := s.free.pop()
	if i >= 0 {
		s.X[i], s.Y[i] = b.X, b.Y
		s.VX[i], s.VY[i] = b.VX, b.VY
		s.Damage[i] = b.Damage
		s.Lifetime[i] = b.Lifetime
		s.Alive[i] = true
		s.Piercing[i] = b.Piercing
		s.Kind[i] = b.Kind
	} else {
		i = len(s.X)
		s.X = append(s.X, b.X)
		s.Y = append(s.Y, b.Y)
		s.VX = append(s.VX, b.VX)
		s.VY = append(s.VY, b.VY)
		s.Damage = append(s.Damage, b.Damage)
		s.Lifetime = append(s.Lifetime, b.Lifetime)
		s.Alive = append(s.Alive, true)
		s.Piercing = append(s.Piercing, b.Piercing)
		s.Kind = append(s.Kind, b.Kind)
	}
	s.count++
	return i
}

// Kill marks slot i dead. Idempotent.
func (s *BulletStore) Kill(i int) {
	if !s.IsAlive(i) {
		return
	}
	s.Alive[i] = false
	s.count--
	s.free.push(i)
}

// Reset empties the store.
func (s *BulletStore) Reset() {
	s.X, s.Y = s.X[:0], s.Y[:0]
	s.VX, s.VY = s.VX[:0], s.VY[:0]
	s.Damage = s.Damage[:0]
	s.Lifetime = s.Lifetime[:0]
	s.Alive = s.Alive[:0]
	s.Piercing = s.Piercing[:0]
	s.Kind = s.Kind[:0]
	s.count = 0
	s.free.reset()
}

// CopyFrom makes s a deep copy of src, reusing s's backing arrays.
func (s *BulletStore) CopyFrom(src *BulletStore) {
	s.X = append(s.X[:0], src.X...)
	s.Y = append(s.Y[:0], src.Y...)
	s.VX = append(s.VX[:0], src.VX...)
	s.VY = append(s.VY[:0], src.VY...)
	s.Damage = append(s.Damage[:0], src.Damage...)
	s.Lifetime = append(s.Lifetime[:0], src.Lifetime...)
	s.Alive = append(s.Alive[:0], src.Alive...)
	s.Piercing = append(s.Piercing[:0], src.Piercing...)
	s.Kind = append(s.Kind[:0], src.Kind...)
	s.count = src.count
	s.free.stack = append(s.free.stack[:0], src.free.stack...)
}
