// Package profile turns a delay function into a per-position delay schedule
// measured in output frames.
package profile

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/byewokko/av-processing/video/core"
	"github.com/byewokko/av-processing/video/delayfn"
)

// Profile normalizes a delay function so that its largest value over the
// sampled axis maps to exactly maxSteps frames of delay.
type Profile struct {
	fn       delayfn.Func
	zero     float64
	scale    float64
	maxSteps int
}

// StepsFromMillis converts a maximum delay in milliseconds to whole output
// frames at the given frame rate, rounding to the nearest frame.
func StepsFromMillis(ms int, fps float64) (int, error) {
	if ms < 0 {
		return 0, fmt.Errorf("%w: max delay must be >= 0 ms: %d", core.ErrConfiguration, ms)
	}
	if !core.IsFinite(fps) || fps <= 0 {
		return 0, fmt.Errorf("%w: frame rate must be > 0: %v", core.ErrConfiguration, fps)
	}
	return int(math.Round(float64(ms) / 1000 * fps)), nil
}

// New samples fn at length evenly spaced positions over [0,1] (both ends
// included) and derives the normalization scale from the maximum.
func New(fn delayfn.Func, zero float64, length, maxSteps int) (*Profile, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil delay function", core.ErrConfiguration)
	}
	if !(zero >= 0 && zero <= 1) {
		return nil, fmt.Errorf("%w: zero must be in [0,1]: %v", core.ErrConfiguration, zero)
	}
	if length <= 0 {
		return nil, fmt.Errorf("%w: axis length must be > 0: %d", core.ErrConfiguration, length)
	}
	if maxSteps < 0 {
		return nil, fmt.Errorf("%w: max delay steps must be >= 0: %d", core.ErrConfiguration, maxSteps)
	}

	peak := math.Inf(-1)
	for i := 0; i < length; i++ {
		x := linspace(i, length)
		v := fn.Eval(x, zero)
		if !core.IsFinite(v) {
			return nil, fmt.Errorf("%w: %s(%v, %v) = %v", core.ErrNumeric, fn, x, zero, v)
		}
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		return nil, fmt.Errorf("%w: %s has no positive value over [0,1] with zero=%v", core.ErrConfiguration, fn, zero)
	}

	return &Profile{fn: fn, zero: zero, scale: 1 / peak, maxSteps: maxSteps}, nil
}

// linspace returns the i-th of n evenly spaced points over [0,1].
func linspace(i, n int) float64 {
	if n == 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

// Func returns the underlying delay function.
func (p *Profile) Func() delayfn.Func { return p.fn }

// Zero returns the normalized zero reference.
func (p *Profile) Zero() float64 { return p.zero }

// Scale returns 1 / max of the sampled function.
func (p *Profile) Scale() float64 { return p.scale }

// MaxSteps returns the maximum delay in output frames.
func (p *Profile) MaxSteps() int { return p.maxSteps }

// DelaySteps returns the delay, in frames, at normalized position x.
func (p *Profile) DelaySteps(x float64) (float64, error) {
	d := p.fn.Eval(x, p.zero) * p.scale * float64(p.maxSteps)
	if !core.IsFinite(d) {
		return 0, fmt.Errorf("%w: delay at x=%v is %v", core.ErrNumeric, x, d)
	}
	return d, nil
}

// Table returns the delay in frames for every position p/length, p in [0,length).
// Values are clamped to [0, MaxSteps] so the buffer offsets they produce stay
// in range even for functions that dip below zero.
func (p *Profile) Table(length int) ([]float64, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: axis length must be > 0: %d", core.ErrConfiguration, length)
	}
	raw := make([]float64, length)
	for i := range raw {
		x := float64(i) / float64(length)
		v := p.fn.Eval(x, p.zero)
		if !core.IsFinite(v) {
			return nil, fmt.Errorf("%w: %s(%v, %v) = %v", core.ErrNumeric, p.fn, x, p.zero, v)
		}
		raw[i] = v
	}

	table := make([]float64, length)
	vecmath.ScaleBlock(table, raw, p.scale*float64(p.maxSteps))
	for i, d := range table {
		table[i] = core.Clamp(d, 0, float64(p.maxSteps))
	}
	return table, nil
}

// Split divides a delay into the buffer offset of the older source frame and
// the blend weight toward it. A zero delay still reaches one frame back.
func Split(d float64) (k int, frac float64) {
	whole := math.Floor(d)
	return int(whole) + 1, d - whole
}
