// Package config loads rolling shutter presets from YAML files.
//
// A preset names any subset of the engine settings; omitted keys keep the
// values of shutter.Default:
//
//	horizontal: false
//	zero: 0.5
//	function: cos
//	args: [2]
//	max_delay_ms: 300
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/byewokko/av-processing/video/core"
	"github.com/byewokko/av-processing/video/shutter"
)

// Preset is the on-disk form of a shutter.Config. Pointer fields tell an
// explicit zero apart from a missing key.
type Preset struct {
	Horizontal *bool     `yaml:"horizontal"`
	Zero       *float64  `yaml:"zero"`
	Function   *string   `yaml:"function"`
	Args       []float64 `yaml:"args"`
	MaxDelayMs *int      `yaml:"max_delay_ms"`
}

// Apply overlays the preset on base.
func (p Preset) Apply(base shutter.Config) shutter.Config {
	cfg := base
	if p.Horizontal != nil {
		cfg.Horizontal = *p.Horizontal
	}
	if p.Zero != nil {
		cfg.Zero = *p.Zero
	}
	if p.Function != nil {
		cfg.Function = *p.Function
		// Parameters belong to the function they were written for.
		cfg.Args = nil
	}
	if p.Args != nil {
		cfg.Args = append([]float64(nil), p.Args...)
	}
	if p.MaxDelayMs != nil {
		cfg.MaxDelayMs = *p.MaxDelayMs
	}
	return cfg
}

// Load reads and validates a preset file.
func Load(path string) (shutter.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return shutter.Config{}, fmt.Errorf("%w: failed to read config file: %w", core.ErrConfiguration, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return shutter.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a preset on top of shutter.Default and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (shutter.Config, error) {
	p, err := decode(data)
	if err != nil {
		return shutter.Config{}, err
	}
	cfg := p.Apply(shutter.Default())
	if err := cfg.Validate(); err != nil {
		return shutter.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func decode(data []byte) (Preset, error) {
	var p Preset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Preset{}, fmt.Errorf("%w: failed to parse config: %w", core.ErrConfiguration, err)
	}
	return p, nil
}

// Marshal renders cfg as a complete preset.
func Marshal(cfg shutter.Config) ([]byte, error) {
	p := Preset{
		Horizontal: &cfg.Horizontal,
		Zero:       &cfg.Zero,
		Function:   &cfg.Function,
		Args:       cfg.Args,
		MaxDelayMs: &cfg.MaxDelayMs,
	}
	return yaml.Marshal(p)
}
