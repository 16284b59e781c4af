package color

import (
	"testing"

	"github.com/TimelordUK/mpage/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairTableIdempotent(t *testing.T) {
	table := NewPairTable(16)

	id, err := table.Resolve(Indexed(1), Default)
	require.NoError(t, err)
	again, err := table.Resolve(Indexed(1), Default)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	other, err := table.Resolve(Default, Indexed(1))
	require.NoError(t, err)
	assert.NotEqual(t, id, other)

	def, err := table.Resolve(Default, Default)
	require.NoError(t, err)
	assert.Equal(t, PairID(0), def)

	assert.Equal(t, Pair{Fg: Indexed(1), Bg: Default}, table.Pair(id))
	assert.Equal(t, 3, table.Len())
}

func TestPairTableCapacity(t *testing.T) {
	table := NewPairTable(MinPairCapacity)

	seen := map[PairID]bool{}
	var exhausted int
	for i := 0; i < 40; i++ {
		id, err := table.Resolve(Indexed(uint8(i)), Default)
		if err != nil {
			exhausted++
			assert.True(t, errs.Is(err, errs.ResourceExhausted))
			assert.ErrorIs(t, err, errs.ErrPairsExhausted)
			assert.Equal(t, PairID(0), id)
			continue
		}
		seen[id] = true
	}

	assert.LessOrEqual(t, table.Len(), table.Capacity())
	assert.Equal(t, MinPairCapacity-1, len(seen))
	assert.Equal(t, 40-(MinPairCapacity-1), exhausted)

	id, err := table.Resolve(Indexed(0), Default)
	require.NoError(t, err, "registered pairs keep resolving when full")
	assert.True(t, seen[id])

	table.Reset()
	assert.Equal(t, 1, table.Len())
	_, err = table.Resolve(Indexed(200), Default)
	assert.NoError(t, err)
}

func TestParsePalette(t *testing.T) {
	p, err := ParsePalette(map[string]string{
		"bright_blue": "#0000FF",
		StatusBg:      "#202020",
	})
	require.NoError(t, err)
	assert.Equal(t, RGB{0, 0, 255}, p.Base[12])
	assert.Equal(t, RGB{0x20, 0x20, 0x20}, p.StatusBg)

	_, err = ParsePalette(map[string]string{"purple": "#000000"})
	assert.Error(t, err)

	_, err = ParsePalette(map[string]string{"red": "nope"})
	assert.Error(t, err)

	assert.True(t, IsKnownName("search_fg"))
	assert.False(t, IsKnownName("orange"))
}

func TestNearest16(t *testing.T) {
	p := DefaultPalette()
	assert.Equal(t, uint8(0), p.Nearest16(RGB{5, 5, 5}))
	assert.Equal(t, uint8(15), p.Nearest16(RGB{250, 250, 250}))
	assert.Equal(t, uint8(10), p.Nearest16(RGB{0, 250, 0}))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"214", Indexed(214), false},
		{"#ff0080", FromRGB(0xff, 0x00, 0x80), false},
		{"default", Default, false},
		{"", Default, false},
		{"256", Default, true},
		{"pink", Default, true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
