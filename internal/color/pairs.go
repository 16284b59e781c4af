package color

import (
	"fmt"

	"github.com/TimelordUK/mpage/internal/errs"
)

// PairID is a slot in the color-pair table. Slot 0 is always the
// default/default pair.
type PairID int

// Pair is a foreground/background combination.
type Pair struct {
	Fg Color
	Bg Color
}

const (
	DefaultPairCapacity = 256
	MinPairCapacity     = 8
	MaxPairCapacity     = 32767
)

// PairTable maps pairs to a bounded set of slots. Identical pairs always get
// the same slot and slots are never evicted. Not safe for concurrent use.
type PairTable struct {
	capacity int
	ids      map[Pair]PairID
	pairs    []Pair
}

// NewPairTable returns a table holding at most capacity pairs, including
// the reserved default pair.
func NewPairTable(capacity int) *PairTable {
	if capacity < MinPairCapacity {
		capacity = MinPairCapacity
	}
	t := &PairTable{capacity: capacity}
	t.Reset()
	return t
}

// Resolve returns the slot for (fg, bg), allocating one on first use. When
// the table is full it returns the default pair and a ResourceExhausted error.
func (t *PairTable) Resolve(fg, bg Color) (PairID, error) {
	p := Pair{Fg: fg, Bg: bg}
	if id, ok := t.ids[p]; ok {
		return id, nil
	}
	if len(t.pairs) >= t.capacity {
		return 0, errs.E(errs.ResourceExhausted,
			fmt.Sprintf("resolve pair %s/%s", fg, bg), errs.ErrPairsExhausted)
	}

	id := PairID(len(t.pairs))
	t.pairs = append(t.pairs, p)
	t.ids[p] = id
	return id, nil
}

// Pair returns the colors registered for id; unknown ids yield the default pair.
func (t *PairTable) Pair(id PairID) Pair {
	if id < 0 || int(id) >= len(t.pairs) {
		return t.pairs[0]
	}
	return t.pairs[id]
}

// Len returns the number of allocated slots.
func (t *PairTable) Len() int {
	return len(t.pairs)
}

// Capacity returns the maximum number of slots.
func (t *PairTable) Capacity() int {
	return t.capacity
}

// Reset drops all registrations except the default pair.
func (t *PairTable) Reset() {
	def := Pair{Fg: Default, Bg: Default}
	t.ids = map[Pair]PairID{def: 0}
	t.pairs = []Pair{def}
}
