package testutil

import (
	"math/rand"
	"testing"

	"github.com/byewokko/av-processing/video/frame"
)

// Solid returns a frame with every channel set to value.
func Solid(t testing.TB, width, height, channels int, value float64) *frame.Frame {
	t.Helper()
	f, err := frame.New(width, height, channels)
	if err != nil {
		t.Fatalf("frame.New(%d,%d,%d): %v", width, height, channels, err)
	}
	f.Fill(value)
	return f
}

// Ramp returns a frame whose values count up from 0 in memory order,
// wrapping at 256 so every pixel position is distinguishable.
func Ramp(t testing.TB, width, height, channels int) *frame.Frame {
	t.Helper()
	f := Solid(t, width, height, channels, 0)
	for i := range f.Pix() {
		f.Pix()[i] = float64(i % 256)
	}
	return f
}

// DeterministicNoise returns a frame of integer intensities in 0..255 drawn
// with a fixed seed.
func DeterministicNoise(t testing.TB, seed int64, width, height, channels int) *frame.Frame {
	t.Helper()
	f := Solid(t, width, height, channels, 0)
	rng := rand.New(rand.NewSource(seed))
	for i := range f.Pix() {
		f.Pix()[i] = float64(rng.Intn(256))
	}
	return f
}

// NoiseSequence returns n independent noise frames.
func NoiseSequence(t testing.TB, seed int64, n, width, height, channels int) []*frame.Frame {
	t.Helper()
	out := make([]*frame.Frame, n)
	for i := range out {
		out[i] = DeterministicNoise(t, seed+int64(i), width, height, channels)
	}
	return out
}
