package shutter

import (
	"errors"
	"math"
	"testing"

	"github.com/byewokko/av-processing/video/core"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate(): %v", err)
	}
	if cfg.Axis() != "vertical" {
		t.Fatalf("Axis: got %q want vertical", cfg.Axis())
	}
	cfg.Horizontal = true
	if cfg.Axis() != "horizontal" {
		t.Fatalf("Axis: got %q want horizontal", cfg.Axis())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{name: "zero at bottom", cfg: Config{Zero: 1, Function: "abs"}, ok: true},
		{name: "args", cfg: Config{Function: "log-quad", Args: []float64{2}}, ok: true},
		{name: "nan zero", cfg: Config{Zero: math.NaN(), Function: "abs"}},
		{name: "empty function", cfg: Config{}},
		{name: "negative delay", cfg: Config{Function: "abs", MaxDelayMs: -5}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, core.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}
