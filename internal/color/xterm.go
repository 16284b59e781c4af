package color

// The 6x6x6 cube uses the xterm levels. Older formulas (level*40+55 and
// level*51) do not match what terminals actually display.
var cubeLevels = [6]uint8{0, 95, 135, 175, 215, 255}

// Xterm256ToRGB maps an xterm-256 index to RGB: 0-15 from the palette,
// 16-231 from the color cube and 232-255 from the grayscale ramp.
func (p Palette) Xterm256ToRGB(idx uint8) RGB {
	switch {
	case idx < 16:
		return p.Base[idx]
	case idx < 232:
		i := idx - 16
		return RGB{R: cubeLevels[i/36], G: cubeLevels[(i/6)%6], B: cubeLevels[i%6]}
	default:
		v := 8 + 10*(idx-232)
		return RGB{R: v, G: v, B: v}
	}
}

// RGBToXterm256 maps c to the nearest index in 16-255. Pure grays also
// consider the grayscale ramp and take whichever candidate is closer.
func RGBToXterm256(c RGB) uint8 {
	ri, gi, bi := cubeIndex(c.R), cubeIndex(c.G), cubeIndex(c.B)
	cube := 16 + 36*ri + 6*gi + bi
	if c.R != c.G || c.G != c.B {
		return cube
	}

	gi2 := grayIndex(c.R)
	gray := 8 + 10*int(gi2)
	cubeDist := distance(c, RGB{cubeLevels[ri], cubeLevels[gi], cubeLevels[bi]})
	grayDist := distance(c, RGB{uint8(gray), uint8(gray), uint8(gray)})
	if grayDist < cubeDist {
		return 232 + gi2
	}
	return cube
}

func cubeIndex(v uint8) uint8 {
	switch {
	case v < 48:
		return 0
	case v < 115:
		return 1
	default:
		return (v - 35) / 40
	}
}

func grayIndex(v uint8) uint8 {
	if v < 8 {
		return 0
	}
	i := (int(v) - 3) / 10
	if i > 23 {
		i = 23
	}
	return uint8(i)
}

func distance(a, b RGB) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}
