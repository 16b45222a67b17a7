package entity

import (
	"math/rand/v2"
	"testing"
)

func TestEnemySpawnKillCount(t *testing.T) {
	s := NewEnemyStore(0)
	for i := 0; i < 10; i++ {
		s.Spawn(float32(i), 0, 0, 80, 50)
	}
	if s.Count() != 10 || s.Len() != 10 {
		t.Fatalf("after 10 spawns Count=%d Len=%d, expected 10/10", s.Count(), s.Len())
	}

	killed := []int{0, 3, 3, 7, 9, 9, 9} // duplicates on purpose
	for _, i := range killed {
		s.Kill(i)
	}
	if s.Count() != 6 {
		t.Errorf("Count() = %d after 4 distinct kills, expected 6", s.Count())
	}

	alive := 0
	for i := range s.Alive {
		if s.Alive[i] != Dead {
			alive++
		}
	}
	if alive != s.Count() {
		t.Errorf("alive flags (%d) disagree with Count() (%d)", alive, s.Count())
	}
}

func TestEnemyKillOutOfRangeIsNoop(t *testing.T) {
	s := NewEnemyStore(0)
	s.Spawn(0, 0, 0, 80, 50)
	s.Kill(-1)
	s.Kill(5)
	if s.Count() != 1 {
		t.Errorf("Count() = %d, expected 1", s.Count())
	}
}

func TestEnemySpawnReusesFreeSlot(t *testing.T) {
	s := NewEnemyStore(0)
	s.Spawn(0, 0, 0, 80, 50)
	s.Spawn(10, 10, 0, 80, 50)
	s.Kill(0)

	lenBefore := s.Len()
	idx := s.Spawn(99, 99, 3, 100, 70)

	if s.Len() != lenBefore {
		t.Errorf("Len() grew from %d to %d while a free slot existed", lenBefore, s.Len())
	}
	if idx != 0 {
		t.Errorf("Spawn() reused slot %d, expected 0", idx)
	}
	if s.X[0] != 99 || s.Kind[0] != 3 || s.HP[0] != 70 || s.Alive[0] != Alive {
		t.Errorf("reused slot not reinitialized: x=%v kind=%d hp=%v alive=%#x", s.X[0], s.Kind[0], s.HP[0], s.Alive[0])
	}
	if s.Count() != 2 {
		t.Errorf("Count() = %d, expected 2", s.Count())
	}
}

func TestEnemyKillKeepsPositionAndVelocity(t *testing.T) {
	s := NewEnemyStore(0)
	i := s.Spawn(5, 6, 0, 80, 50)
	s.VX[i], s.VY[i] = 1, 2
	s.Kill(i)

	if s.X[i] != 5 || s.Y[i] != 6 || s.VX[i] != 1 || s.VY[i] != 2 {
		t.Errorf("Kill() touched position/velocity: (%v,%v) v=(%v,%v)", s.X[i], s.Y[i], s.VX[i], s.VY[i])
	}
}

func TestEnemyCopyFrom(t *testing.T) {
	src := NewEnemyStore(0)
	src.Spawn(1, 2, 0, 80, 50)
	src.Spawn(3, 4, 1, 80, 50)
	src.Kill(0)

	dst := NewEnemyStore(0)
	dst.CopyFrom(src)
	src.X[1] = 1000
	src.Spawn(7, 7, 0, 80, 50)

	if dst.X[1] != 3 {
		t.Errorf("CopyFrom() aliased source arrays")
	}
	if dst.Count() != 1 || dst.Len() != 2 {
		t.Errorf("copy Count=%d Len=%d, expected 1/2", dst.Count(), dst.Len())
	}
	// The copy's free list must still hand out slot 0
	if idx := dst.Spawn(0, 0, 0, 80, 50); idx != 0 {
		t.Errorf("copy reused slot %d, expected 0", idx)
	}
}

func TestBulletStoreLifecycle(t *testing.T) {
	s := NewBulletStore(4)
	a := s.Spawn(BulletSpec{X: 1, Y: 1, Damage: 10, Lifetime: 1, Kind: BulletKindNormal})
	b := s.Spawn(BulletSpec{X: 2, Y: 2, Damage: 0, Lifetime: 0.1, Kind: BulletKindWhip})

	if s.IsEffect(a) {
		t.Error("damaging bullet reported as effect")
	}
	if !s.IsEffect(b) {
		t.Error("zero-damage bullet should be an effect")
	}

	s.Kill(a)
	s.Kill(a)
	if s.Count() != 1 {
		t.Errorf("Count() = %d, expected 1", s.Count())
	}

	c := s.Spawn(BulletSpec{Damage: 5, Piercing: true})
	if c != a || s.Len() != 2 {
		t.Errorf("expected slot %d reused without growth, got slot %d len %d", a, c, s.Len())
	}
	if !s.Piercing[c] {
		t.Error("piercing flag not set on reused slot")
	}
}

func TestParticleUpdateExpires(t *testing.T) {
	s := NewParticleStore(0)
	rng := rand.New(rand.NewPCG(12345, 0))
	s.Emit(rng, 100, 100, 8, [4]float32{1, 0, 0, 1})
	if s.Count() != 8 {
		t.Fatalf("Emit() produced %d particles, expected 8", s.Count())
	}

	// Lifetimes are at most 0.8s
	for i := 0; i < 60; i++ {
		s.Update(1.0 / 60.0)
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %d after 1s, expected all particles expired", s.Count())
	}

	// All slots are reusable now
	s.Emit(rng, 0, 0, 8, [4]float32{0, 1, 0, 1})
	if s.Len() != 8 {
		t.Errorf("Len() = %d, expected slots to be reused", s.Len())
	}
}

func TestItemStore(t *testing.T) {
	s := NewItemStore(0)
	i := s.Spawn(10, 10, ItemPotion, 20)
	s.Spawn(20, 20, ItemKindFromID(9), 5)

	if s.Kind[1] != ItemGem {
		t.Errorf("unknown kind id mapped to %v, expected gem", s.Kind[1])
	}
	s.Kill(i)
	s.Kill(i)
	if s.Count() != 1 {
		t.Errorf("Count() = %d, expected 1", s.Count())
	}
	if ItemMagnet.String() != "magnet" {
		t.Errorf("ItemMagnet.String() = %q", ItemMagnet.String())
	}
}
