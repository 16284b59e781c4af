package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXterm256ToRGB(t *testing.T) {
	p := DefaultPalette()

	tests := []struct {
		idx  uint8
		want RGB
	}{
		{1, RGB{0xcd, 0x00, 0x00}},
		{16, RGB{0, 0, 0}},
		{21, RGB{0, 0, 255}},
		{196, RGB{255, 0, 0}},
		{231, RGB{255, 255, 255}},
		{59, RGB{95, 95, 95}},
		{232, RGB{8, 8, 8}},
		{255, RGB{238, 238, 238}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Xterm256ToRGB(tt.idx), "index %d", tt.idx)
	}
}

func TestXterm256UsesPaletteOverride(t *testing.T) {
	p, err := ParsePalette(map[string]string{"red": "#112233"})
	require.NoError(t, err)
	assert.Equal(t, RGB{0x11, 0x22, 0x33}, p.Xterm256ToRGB(1))
}

func TestRGBToXterm256(t *testing.T) {
	tests := []struct {
		name string
		in   RGB
		want uint8
	}{
		{"pure red", RGB{255, 0, 0}, 196},
		{"near red", RGB{250, 10, 5}, 196},
		{"black", RGB{0, 0, 0}, 16},
		{"white", RGB{255, 255, 255}, 231},
		{"ramp gray", RGB{128, 128, 128}, 244},
		{"cube gray", RGB{135, 135, 135}, 102},
		{"mixed", RGB{100, 140, 220}, 16 + 36*1 + 6*2 + 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RGBToXterm256(tt.in))
		})
	}
}

func TestXtermRoundTripFixedPoint(t *testing.T) {
	p := DefaultPalette()

	for i := 0; i < 256; i++ {
		first := RGBToXterm256(p.Xterm256ToRGB(uint8(i)))
		rgb := p.Xterm256ToRGB(first)
		second := RGBToXterm256(rgb)
		assert.Equal(t, first, second, "index %d", i)
		assert.Equal(t, rgb, p.Xterm256ToRGB(second), "index %d", i)
		if i >= 16 {
			assert.Equal(t, uint8(i), first, "cube and ramp indices are exact")
		}
	}

	for r := 0; r < 256; r += 17 {
		for g := 0; g < 256; g += 51 {
			for b := 0; b < 256; b += 85 {
				in := RGB{uint8(r), uint8(g), uint8(b)}
				first := RGBToXterm256(in)
				second := RGBToXterm256(p.Xterm256ToRGB(first))
				assert.Equal(t, first, second, "rgb %s", in)
			}
		}
	}
}

func TestGamma(t *testing.T) {
	identity := Gamma{Red: 1, Green: 0, Blue: -2, Gray: 1}
	c := RGB{10, 128, 250}
	assert.Equal(t, c, identity.Apply(c))

	brighten := Gamma{Red: 2.2, Green: 1, Blue: 1, Gray: 2.2}
	out := brighten.Apply(RGB{64, 64, 200})
	assert.Greater(t, out.R, uint8(64))
	assert.Equal(t, uint8(64), out.G)
	assert.Equal(t, uint8(200), out.B)

	gray := brighten.Apply(RGB{64, 64, 64})
	assert.Equal(t, gray.R, gray.G)
	assert.Equal(t, gray.G, gray.B)
	assert.Greater(t, gray.R, uint8(64))

	assert.Equal(t, RGB{0, 0, 0}, brighten.Apply(RGB{0, 0, 0}))
	assert.Equal(t, RGB{255, 255, 255}, brighten.Apply(RGB{255, 255, 255}))
}

func TestResolverOutput(t *testing.T) {
	p := DefaultPalette()

	t.Run("truecolor", func(t *testing.T) {
		r := NewResolver(p, Gamma{}, DepthTrueColor)
		assert.Equal(t, FromRGB(0xcd, 0, 0), r.Output(Indexed(1)))
		assert.Equal(t, FromRGB(255, 0, 0), r.Output(Indexed(196)))
		assert.Equal(t, Default, r.Output(Default))
	})

	t.Run("256", func(t *testing.T) {
		r := NewResolver(p, Gamma{}, Depth256)
		assert.Equal(t, Indexed(196), r.Output(FromRGB(255, 0, 0)))
		assert.Equal(t, Indexed(42), r.Output(Indexed(42)))
	})

	t.Run("16", func(t *testing.T) {
		r := NewResolver(p, Gamma{}, Depth16)
		assert.Equal(t, Indexed(9), r.Output(FromRGB(255, 0, 0)))
		assert.Equal(t, Indexed(3), r.Output(Indexed(3)))
		assert.Equal(t, Indexed(15), r.Output(Indexed(231)))
	})
}

func TestParseDepth(t *testing.T) {
	d, err := ParseDepth("256")
	require.NoError(t, err)
	assert.Equal(t, Depth256, d)

	d, err = ParseDepth("TrueColor")
	require.NoError(t, err)
	assert.Equal(t, DepthTrueColor, d)

	_, err = ParseDepth("lots")
	assert.Error(t, err)
}
