package color

import "math"

// Gamma holds per-channel correction exponents. Gray applies to colors whose
// channels are all equal. A value <= 0 or exactly 1 leaves the channel alone.
type Gamma struct {
	Red   float64
	Green float64
	Blue  float64
	Gray  float64
}

// Apply corrects each channel as 255 * (v/255)^(1/gamma).
func (g Gamma) Apply(c RGB) RGB {
	if c.R == c.G && c.G == c.B {
		v := correct(c.R, g.Gray)
		return RGB{R: v, G: v, B: v}
	}
	return RGB{
		R: correct(c.R, g.Red),
		G: correct(c.G, g.Green),
		B: correct(c.B, g.Blue),
	}
}

func correct(v uint8, gamma float64) uint8 {
	if gamma <= 0 || gamma == 1.0 {
		return v
	}
	out := 255 * math.Pow(float64(v)/255, 1/gamma)
	return uint8(math.Round(math.Min(255, math.Max(0, out))))
}
