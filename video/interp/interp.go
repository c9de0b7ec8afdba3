package interp

import "github.com/cwbudde/algo-vecmath"

// Lerp interpolates linearly from a (t=0) to b (t=1).
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpBlock writes newer + (older-newer)*frac into dst, element-wise.
// All slices must have the same length. With frac == 0 dst becomes an exact
// copy of newer.
func LerpBlock(dst, newer, older []float64, frac float64) {
	if len(newer) != len(dst) || len(older) != len(dst) {
		panic("interp: LerpBlock slice length mismatch")
	}
	if frac == 0 {
		copy(dst, newer)
		return
	}
	diff := scratchPool.get(len(dst))
	vecmath.ScaleBlock(diff, newer, -1)
	vecmath.AddBlockInPlace(diff, older)
	vecmath.ScaleBlock(diff, diff, frac)
	copy(dst, newer)
	vecmath.AddBlockInPlace(dst, diff)
	scratchPool.put(diff)
}
