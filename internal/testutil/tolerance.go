package testutil

import (
	"fmt"
	"math"
	"testing"

	"github.com/byewokko/av-processing/video/frame"
)

// RequireFrameEqual fails t unless got and want have the same shape and
// identical values.
func RequireFrameEqual(t testing.TB, got, want *frame.Frame) {
	t.Helper()
	RequireFrameNearlyEqual(t, got, want, 0)
}

// RequireFrameNearlyEqual fails t if the frames differ in shape or if any
// value pair differs by more than eps.
func RequireFrameNearlyEqual(t testing.TB, got, want *frame.Frame, eps float64) {
	t.Helper()
	if !got.SameShape(want) {
		t.Fatalf("shape mismatch: got %dx%dx%d, want %dx%dx%d",
			got.Width(), got.Height(), got.Channels(), want.Width(), want.Height(), want.Channels())
	}
	g, w := got.Pix(), want.Pix()
	for i := range g {
		if diff := math.Abs(g[i] - w[i]); diff > eps {
			stride := got.Stride()
			t.Fatalf("row %d value %d: got %v, want %v (diff %v > eps %v)", i/stride, i%stride, g[i], w[i], diff, eps)
		}
	}
}

// RequireRowValue fails t unless every value of row y equals want.
func RequireRowValue(t testing.TB, f *frame.Frame, y int, want float64) {
	t.Helper()
	for i, v := range f.Row(y) {
		if v != want {
			t.Fatalf("row %d value %d: got %v, want %v", y, i, v, want)
		}
	}
}

// RequireFinite fails t if any value is NaN or Inf.
func RequireFinite(t testing.TB, f *frame.Frame) {
	t.Helper()
	for i, v := range f.Pix() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// MaxAbsDiff returns the maximum absolute difference between two frames.
// Returns an error if their shapes differ.
func MaxAbsDiff(a, b *frame.Frame) (float64, error) {
	if !a.SameShape(b) {
		return 0, fmt.Errorf("shape mismatch: %dx%dx%d vs %dx%dx%d",
			a.Width(), a.Height(), a.Channels(), b.Width(), b.Height(), b.Channels())
	}
	maxDiff := 0.0
	pa, pb := a.Pix(), b.Pix()
	for i := range pa {
		d := math.Abs(pa[i] - pb[i])
		if d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff, nil
}
