// Package entity implements the structure-of-arrays entity stores used by
// the simulation: enemies, bullets, particles and items.
//
// Every store keeps its attributes in parallel slices indexed by slot.
// Dead slots are never compacted; their indices go on a free-list stack and
// the next spawn reuses the top of the stack, so arrays only grow when no
// slot is free. Kill is idempotent and Count is maintained incrementally.
package entity

// Alive flag values. A byte rather than a bool so the flag array can be
// used directly as a lane mask by the batch chase path.
const (
	Dead  uint8 = 0x00
	Alive uint8 = 0xFF
)

// freeList is a LIFO stack of reusable slot indices.
type freeList struct {
	stack []int
}

func (f *freeList) push(i int) {
	f.stack = append(f.stack, i)
}

// pop returns the most recently freed slot, or -1 when empty.
func (f *freeList) pop() int {
	n := len(f.stack)
	if n == 0 {
		return -1
	}
	i := f.stack[n-1]
	f.stack = f.stack[:n-1]
	return i
}

func (f *freeList) len() int {
	return len(f.stack)
}

func (f *freeList) reset() {
	f.stack = f.stack[:0]
}
