package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byewokko/av-processing/video/core"
	"github.com/byewokko/av-processing/video/shutter"
)

func TestParseArgsDefaults(t *testing.T) {
	opts, err := parseArgs([]string{"clip.mp4"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, shutter.Default(), opts.cfg)
	assert.Equal(t, "clip.mp4", opts.input)
	assert.Equal(t, "clip.out.mp4", opts.output)
}

func TestParseArgsShortAndLongFlags(t *testing.T) {
	opts, err := parseArgs([]string{"-x", "-z", "0.5", "-f", "cos", "-a", "3", "-d", "400", "-o", "out.mkv", "in.mkv"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, shutter.Config{
		Horizontal: true,
		Zero:       0.5,
		Function:   "cos",
		Args:       []float64{3},
		MaxDelayMs: 400,
	}, opts.cfg)
	assert.Equal(t, "out.mkv", opts.output)

	long, err := parseArgs([]string{"-horizontal", "-zero", "0.5", "-delay-fn", "cos", "-args", "3", "-max-delay", "400", "-o", "out.mkv", "in.mkv"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, opts.cfg, long.cfg)
}

func TestParseArgsFlagsOverridePreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")
	require.NoError(t, os.WriteFile(path, []byte("function: log-quad\nargs: [2]\nmax_delay_ms: 500\nzero: 0.3\n"), 0o644))

	opts, err := parseArgs([]string{"-config", path, "-d", "100", "in.mp4"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "log-quad", opts.cfg.Function)
	assert.Equal(t, []float64{2}, opts.cfg.Args)
	assert.Equal(t, 0.3, opts.cfg.Zero)
	assert.Equal(t, 100, opts.cfg.MaxDelayMs)

	opts, err = parseArgs([]string{"-config", path, "-f", "abs", "in.mp4"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "abs", opts.cfg.Function)
	assert.Nil(t, opts.cfg.Args)
}

func TestParseArgsFramesInput(t *testing.T) {
	opts, err := parseArgs([]string{"-frames", "shots", "-fps", "12"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "shots", opts.frames)
	assert.Equal(t, "shots.out", opts.output)
	assert.Equal(t, 12.0, opts.fps)
}

func TestParseArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no input", args: nil},
		{name: "two inputs", args: []string{"a.mp4", "b.mp4"}},
		{name: "frames and input", args: []string{"-frames", "dir", "a.mp4"}},
		{name: "unknown function", args: []string{"-f", "triangle", "a.mp4"}},
		{name: "bad args", args: []string{"-f", "cos", "-a", "1,x", "a.mp4"}},
		{name: "zero out of range", args: []string{"-z", "2", "a.mp4"}},
		{name: "negative progress", args: []string{"-progress", "-1", "a.mp4"}},
		{name: "missing preset", args: []string{"-config", "does-not-exist.yaml", "a.mp4"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseArgs(tc.args, &bytes.Buffer{})
			require.ErrorIs(t, err, core.ErrConfiguration)
		})
	}
}

func TestRunFramesDirectory(t *testing.T) {
	in := t.TempDir()
	for i, v := range []uint8{0, 255} {
		img := image.NewNRGBA(image.Rect(0, 0, 2, 4))
		for y := 0; y < 4; y++ {
			for x := 0; x < 2; x++ {
				img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
			}
		}
		f, err := os.Create(filepath.Join(in, []string{"a.png", "b.png"}[i]))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, img))
		require.NoError(t, f.Close())
	}
	out := filepath.Join(t.TempDir(), "out")

	var logs bytes.Buffer
	code := run([]string{"-frames", in, "-fps", "10", "-d", "200", "-o", out, "-json"}, &logs)
	require.Equal(t, exitOK, code, logs.String())

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
	assert.Contains(t, logs.String(), `"run_id"`)
	assert.Contains(t, logs.String(), "Rolling shutter complete")
}

func TestRunUsageError(t *testing.T) {
	var logs bytes.Buffer
	assert.Equal(t, exitUsage, run([]string{"-f", "nope", "x.mp4"}, &logs))
	assert.True(t, strings.HasPrefix(logs.String(), "error:"))
	assert.Equal(t, exitOK, run([]string{"-h"}, &logs))
}

func TestProgressLogger(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, false, true)
	report := progressLogger(log, 3)
	for i := 0; i < 7; i++ {
		report(shutter.Progress{Frame: i, Total: 7})
	}
	// Frames 3, 6 and the final frame.
	assert.Equal(t, 3, strings.Count(buf.String(), `"msg":"Progress"`))
}
