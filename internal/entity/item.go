package entity

// ItemKind enumerates pickups.
type ItemKind uint8

const (
	ItemGem    ItemKind = iota // experience currency
	ItemPotion                 // heal request for the rule authority
	ItemMagnet                 // starts the magnet window
)

// String returns the item kind name.
func (k ItemKind) String() string {
	switch k {
	case ItemGem:
		return "gem"
	case ItemPotion:
		return "potion"
	case ItemMagnet:
		return "magnet"
	default:
		return "unknown"
	}
}

// ItemKindFromID maps a wire id to a kind. Unknown ids become gems.
func ItemKindFromID(id uint8) ItemKind {
	if id > uint8(ItemMagnet) {
		return ItemGem
	}
	return ItemKind(id)
}

// ItemStore holds dropped pickups.
type ItemStore struct {
	X, Y  []float32
	Kind  []ItemKind
	Value []uint32
	Alive []bool

	count int
	free  freeList
}

// NewItemStore returns an empty store with room for capacity slots.
func NewItemStore(capacity int) *ItemStore {
	return &ItemStore{
		X:     make([]float32, 0, capacity),
		Y:     make([]float32, 0, capacity),
		Kind:  make([]ItemKind, 0, capacity),
		Value: make([]uint32, 0, capacity),
		Alive: make([]bool, 0, capacity),
	}
}

// Len returns the number of slots.
func (s *ItemStore) Len() int { return len(s.X) }

// Count returns the number of uncollected items.
func (s *ItemStore) Count() int { return s.count }

// Spawn drops one item and returns its slot.
func (s *ItemStore) Spawn(x, y float32, kind ItemKind, value uint32) int {
	i := s.free.pop()
	if i >= 0 {
		s.X[i], s.Y[i] = x, y
		s.Kind[i] = kind
		s.Value[i] = value
		s.Alive[i] = true
	} else {
		i = len(s.X)
		s.X = append(s.X, x)
		s.Y = append(s.Y, y)
		s.Kind = append(s.Kind, kind)
		s.Value = append(s.Value, value)
		s.Alive = append(s.Alive, true)
	}
	s.count++
	return i
}

// Kill removes slot i. Idempotent.
func (s *ItemStore) Kill(i int) {
	if i < 0 || i >= len(s.Alive) || !s.Alive[i] {
		return
	}
	s.Alive[i] = false
	s.count--
	s.free.push(i)
}

// Reset empties the store.
func (s *ItemStore) Reset() {
	s.X, s.Y = s.X[:0], s.Y[:0]
	s.Kind = s.Kind[:0]
	s.Value = s.Value[:0]
	s.Alive = s.Alive[:0]
	s.count = 0
	s.free.reset()
}

// CopyFrom makes s a deep copy of src, reusing s's backing arrays.
func (s *ItemStore) CopyFrom(src *ItemStore) {
	s.X = append(s.X[:0], src.X...)
	s.Y = append(s.Y[:0], src.Y...)
	s.Kind = append(s.Kind[:0], src.Kind...)
	s.Value = append(s.Value[:0], src.Value...)
	s.Alive = append(s.Alive[:0], src.Alive...)
	s.count = src.count
	s.free.stack = append(s.free.stack[:0], src.free.stack...)
}
