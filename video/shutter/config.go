package shutter

import (
	"fmt"

	"github.com/byewokko/av-processing/video/core"
	"github.com/byewokko/av-processing/video/delayfn"
)

// Config is the user-facing configuration of one run. It is fixed for the
// lifetime of an [Engine].
type Config struct {
	// Horizontal makes the delay vary across columns instead of rows.
	Horizontal bool
	// Zero is the normalized position along the axis where the delay
	// function takes its reference value. 0 is top/left, 1 is bottom/right.
	Zero float64
	// Function names a delay function, see [delayfn.Names].
	Function string
	// Args override the function's default parameters, in order.
	Args []float64
	// MaxDelayMs is the delay applied where the function peaks.
	MaxDelayMs int
}

// Default returns a vertical, top-anchored, 200 ms abs configuration.
func Default() Config {
	return Config{
		Zero:       0,
		Function:   delayfn.KindAbs.String(),
		MaxDelayMs: 200,
	}
}

// Axis returns "horizontal" or "vertical".
func (c Config) Axis() string {
	if c.Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Validate checks every field and resolves the delay function.
func (c Config) Validate() error {
	_, err := c.resolve()
	return err
}

func (c Config) resolve() (delayfn.Func, error) {
	if !(c.Zero >= 0 && c.Zero <= 1) {
		return nil, fmt.Errorf("%w: zero must be in [0,1]: %v", core.ErrConfiguration, c.Zero)
	}
	if c.MaxDelayMs < 0 {
		return nil, fmt.Errorf("%w: max delay must be >= 0 ms: %d", core.ErrConfiguration, c.MaxDelayMs)
	}
	return delayfn.Parse(c.Function, c.Args)
}
