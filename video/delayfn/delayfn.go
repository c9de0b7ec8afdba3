package delayfn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/byewokko/av-processing/video/core"
)

// Kind identifies a delay function.
type Kind int

const (
	KindAbs Kind = iota
	KindNegAbs
	KindQuad
	KindNegQuad
	KindLogQuad
	KindCos
	KindNorm
	KindSaw
	KindSin
)

var kindNames = [...]string{
	KindAbs:     "abs",
	KindNegAbs:  "neg-abs",
	KindQuad:    "quad",
	KindNegQuad: "neg-quad",
	KindLogQuad: "log-quad",
	KindCos:     "cos",
	KindNorm:    "norm",
	KindSaw:     "saw",
	KindSin:     "sin",
}

// Older command lines spelled log-quad as quadlog.
var aliases = map[string]Kind{
	"quadlog": KindLogQuad,
}

// String returns the canonical name of k.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds returns all kinds in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range kindNames {
		out[i] = Kind(i)
	}
	return out
}

// Names returns the canonical function names in declaration order.
func Names() []string {
	out := make([]string, len(kindNames))
	copy(out, kindNames[:])
	return out
}

// ParseKind resolves a function name. Matching ignores case and surrounding space.
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range kindNames {
		if s == n {
			return Kind(i), nil
		}
	}
	if k, ok := aliases[n]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w: unknown delay function %q (expected one of %s)",
		core.ErrConfiguration, name, strings.Join(kindNames[:], ", "))
}

// Func is one member of the delay function family.
type Func interface {
	Kind() Kind
	// Eval returns the delay weight at position x for the given zero reference.
	Eval(x, zero float64) float64
	String() string
}

// Parse resolves name and applies args, in order, over the kind's defaults.
func Parse(name string, args []float64) (Func, error) {
	k, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return New(k, args...)
}

// ParseArgs parses a comma separated parameter list such as "2" or "1, 0.5".
// An empty string yields no arguments.
func ParseArgs(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad delay function argument %q", core.ErrConfiguration, p)
		}
		out = append(out, v)
	}
	return out, nil
}

// New builds the function for k. Trailing args override the defaults in
// parameter order; surplus or invalid args are a configuration error.
func New(k Kind, args ...float64) (Func, error) {
	for i, a := range args {
		if !core.IsFinite(a) {
			return nil, fmt.Errorf("%w: %s argument %d is not finite: %v", core.ErrConfiguration, k, i, a)
		}
	}

	switch k {
	case KindAbs:
		return fixed(Abs{}, args)
	case KindNegAbs:
		return fixed(NegAbs{}, args)
	case KindQuad:
		return fixed(Quad{}, args)
	case KindNegQuad:
		return fixed(NegQuad{}, args)
	case KindLogQuad:
		f := LogQuad{Base: DefaultLogBase}
		if err := assign(k, args, &f.Base); err != nil {
			return nil, err
		}
		if f.Base <= 0 || f.Base == 1 {
			return nil, fmt.Errorf("%w: log-quad base must be > 0 and != 1: %v", core.ErrConfiguration, f.Base)
		}
		return f, nil
	case KindCos:
		f := Cos{Freq: DefaultCosFreq}
		if err := assign(k, args, &f.Freq); err != nil {
			return nil, err
		}
		return f, nil
	case KindNorm:
		f := Norm{Sigma: DefaultNormSigma}
		if err := assign(k, args, &f.Sigma); err != nil {
			return nil, err
		}
		if f.Sigma == 0 {
			return nil, fmt.Errorf("%w: norm sigma must be != 0", core.ErrConfiguration)
		}
		return f, nil
	case KindSaw:
		f := Saw{Period: DefaultSawPeriod}
		if err := assign(k, args, &f.Period); err != nil {
			return nil, err
		}
		if f.Period <= 0 {
			return nil, fmt.Errorf("%w: saw period must be > 0: %v", core.ErrConfiguration, f.Period)
		}
		return f, nil
	case KindSin:
		f := Sin{Freq: DefaultSinFreq}
		if err := assign(k, args, &f.Freq); err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%w: unknown delay function kind %d", core.ErrConfiguration, int(k))
	}
}

func fixed(f Func, args []float64) (Func, error) {
	if err := assign(f.Kind(), args); err != nil {
		return nil, err
	}
	return f, nil
}

func assign(k Kind, args []float64, params ...*float64) error {
	if len(args) > len(params) {
		return fmt.Errorf("%w: %s takes at most %d argument(s), got %d",
			core.ErrConfiguration, k, len(params), len(args))
	}
	for i, a := range args {
		*params[i] = a
	}
	return nil
}
