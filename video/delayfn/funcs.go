package delayfn

import (
	"fmt"
	"math"
)

// Parameter defaults.
const (
	DefaultLogBase   = 10.0
	DefaultCosFreq   = 1.0
	DefaultNormSigma = 1.0
	DefaultSawPeriod = 1.0 / 3
	DefaultSinFreq   = 2.0
)

// Abs is |x-zero|.
type Abs struct{}

func (Abs) Kind() Kind                   { return KindAbs }
func (Abs) Eval(x, zero float64) float64 { return math.Abs(x - zero) }
func (Abs) String() string               { return KindAbs.String() }

// NegAbs is 1 - |x-zero|.
type NegAbs struct{}

func (NegAbs) Kind() Kind                   { return KindNegAbs }
func (NegAbs) Eval(x, zero float64) float64 { return 1 - math.Abs(x-zero) }
func (NegAbs) String() string               { return KindNegAbs.String() }

// Quad is (x-zero)^2.
type Quad struct{}

func (Quad) Kind() Kind { return KindQuad }
func (Quad) Eval(x, zero float64) float64 {
	d := x - zero
	return d * d
}
func (Quad) String() string { return KindQuad.String() }

// NegQuad is 1 - (x-zero)^2.
type NegQuad struct{}

func (NegQuad) Kind() Kind { return KindNegQuad }
func (NegQuad) Eval(x, zero float64) float64 {
	d := x - zero
	return 1 - d*d
}
func (NegQuad) String() string { return KindNegQuad.String() }

// LogQuad is log_Base(1 + (x-zero)^2).
type LogQuad struct {
	Base float64
}

func (LogQuad) Kind() Kind { return KindLogQuad }
func (f LogQuad) Eval(x, zero float64) float64 {
	d := x - zero
	return math.Log1p(d*d) / math.Log(f.Base)
}
func (f LogQuad) String() string { return fmt.Sprintf("%s(base=%g)", KindLogQuad, f.Base) }

// Cos is 1 - cos(2*pi*Freq*(x-zero)).
type Cos struct {
	Freq float64
}

func (Cos) Kind() Kind { return KindCos }
func (f Cos) Eval(x, zero float64) float64 {
	return 1 - math.Cos(2*math.Pi*f.Freq*(x-zero))
}
func (f Cos) String() string { return fmt.Sprintf("%s(freq=%g)", KindCos, f.Freq) }

// Norm is 1 - exp(-0.5*((x-zero)/Sigma)^2), an inverted Gaussian.
type Norm struct {
	Sigma float64
}

func (Norm) Kind() Kind { return KindNorm }
func (f Norm) Eval(x, zero float64) float64 {
	u := (x - zero) / f.Sigma
	return 1 - math.Exp(-0.5*u*u)
}
func (f Norm) String() string { return fmt.Sprintf("%s(sigma=%g)", KindNorm, f.Sigma) }

// Saw is (x-zero) mod Period with a floored modulo, so values lie in [0, Period).
type Saw struct {
	Period float64
}

func (Saw) Kind() Kind { return KindSaw }
func (f Saw) Eval(x, zero float64) float64 {
	r := math.Mod(x-zero, f.Period)
	if r < 0 {
		r += f.Period
	}
	return r
}
func (f Saw) String() string { return fmt.Sprintf("%s(period=%g)", KindSaw, f.Period) }

// Sin is sin(2*pi*Freq*(x-zero))^2.
type Sin struct {
	Freq float64
}

func (Sin) Kind() Kind { return KindSin }
func (f Sin) Eval(x, zero float64) float64 {
	s := math.Sin(2 * math.Pi * f.Freq * (x - zero))
	return s * s
}
func (f Sin) String() string { return fmt.Sprintf("%s(freq=%g)", KindSin, f.Freq) }
