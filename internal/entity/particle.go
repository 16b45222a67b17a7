package entity

import (
	"math"
	"math/rand/v2"
)

// ParticleStore holds short-lived visual sparks. Particles never affect
// simulation state; they exist for the presentation snapshot.
type ParticleStore struct {
	X, Y        []float32
	VX, VY      []float32
	Lifetime    []float32
	MaxLifetime []float32
	Color       [][4]float32
	Size        []float32
	Alive       []bool

	count int
	free  freeList
}

// NewParticleStore returns an empty store with room for capacity slots.
func NewParticleStore(capacity int) *ParticleStore {
	return &ParticleStore{
		X:           make([]float32, 0, capacity),
		Y:           make([]float32, 0, capacity),
		VX:          make([]float32, 0, capacity),
		VY:          make([]float32, 0, capacity),
		Lifetime:    make([]float32, 0, capacity),
		MaxLifetime: make([]float32, 0, capacity),
		Color:       make([][4]float32, 0, capacity),
		Size:        make([]float32, 0, capacity),
		Alive:       make([]bool, 0, capacity),
	}
}

// Len returns the number of slots.
func (s *ParticleStore) Len() int { return len(s.X) }

// Count returns the number of live particles.
func (s *ParticleStore) Count() int { return s.count }

// Spawn places one particle and returns its slot.
func (s *ParticleStore) Spawn(x, y, vx, vy, lifetime float32, color [4]float32, size float32) int {
	i := s.free.pop()
	if i >= 0 {
		s.X[i], s.Y[i] = x, y
		s.VX[i], s.VY[i] = vx, vy
		s.Lifetime[i] = lifetime
		s.MaxLifetime[i] = lifetime
		s.Color[i] = color
		s.Size[i] = size
		s.Alive[i] = true
	} else {
		i = len(s.X)
		s.X = append(s.X, x)
		s.Y = append(s.Y, y)
		s.VX = append(s.VX, vx)
		s.VY = append(s.VY, vy)
		s.Lifetime = append(s.Lifetime, lifetime)
		s.MaxLifetime = append(s.MaxLifetime, lifetime)
		s.Color = append(s.Color, color)
		s.Size = append(s.Size, size)
		s.Alive = append(s.Alive, true)
	}
	s.count++
	return i
}

// Emit sprays count particles outward from (x, y) in random directions.
func (s *ParticleStore) Emit(rng *rand.Rand, x, y float32, count int, color [4]float32) {
	for range count {
		angle := rng.Float64() * 2 * math.Pi
		speed := float32(50 + rng.Float64()*150)
		life := float32(0.3 + rng.Float64()*0.5)
		size := float32(3 + rng.Float64()*5)
		vx := float32(math.Cos(angle)) * speed
		vy := float32(math.Sin(angle)) * speed
		s.Spawn(x, y, vx, vy, life, color, size)
	}
}

// Kill marks slot i dead. Idempotent.
func (s *ParticleStore) Kill(i int) {
	if i < 0 || i >= len(s.Alive) || !s.Alive[i] {
		return
	}
	s.Alive[i] = false
	s.count--
	s.free.push(i)
}

// Update moves particles, applies drag and expires the ones out of time.
func (s *ParticleStore) Update(dt float32) {
	drag := float32(math.Max(0, 1-3*float64(dt)))
	for i := range s.X {
		if !s.Alive[i] {
			continue
		}
		s.X[i] += s.VX[i] * dt
		s.Y[i] += s.VY[i] * dt
		s.VX[i] *= drag
		s.VY[i] *= drag
		s.Lifetime[i] -= dt
		if s.Lifetime[i] <= 0 {
			s.Kill(i)
		}
	}
}

// Alpha returns the fade factor of slot i in [0, 1].
func (s *ParticleStore) Alpha(i int) float32 {
	if s.MaxLifetime[i] <= 0 {
		return 0
	}
	return max(0, min(1, s.Lifetime[i]/s.MaxLifetime[i]))
}

// Reset empties the store.
func (s *ParticleStore) Reset() {
	s.X, s.Y = s.X[:0], s.Y[:0]
	s.VX, s.VY = s.VX[:0], s.VY[:0]
	s.Lifetime = s.Lifetime[:0]
	s.MaxLifetime = s.MaxLifetime[:0]
	s.Color = s.Color[:0]
	s.Size = s.Size[:0]
	s.Alive = s.Alive[:0]
	s.count = 0
	s.free.reset()
}

// CopyFrom makes s a deep copy of src, reusing s's backing arrays.
func (s *ParticleStore) CopyFrom(src *ParticleStore) {
	s.X = append(s.X[:0], src.X...)
	s.Y = append(s.Y[:0], src.Y...)
	s.VX = append(s.VX[:0], src.VX...)
	s.VY = append(s.VY[:0], src.VY...)
	s.Lifetime = append(s.Lifetime[:0], src.Lifetime...)
	s.MaxLifetime = append(s.MaxLifetime[:0], src.MaxLifetime...)
	s.Color = append(s.Color[:0], src.Color...)
	s.Size = append(s.Size[:0], src.Size...)
	s.Alive = append(s.Alive[:0], src.Alive...)
	s.count = src.count
	s.free.stack = append(s.free.stack[:0], src.free.stack...)
}
