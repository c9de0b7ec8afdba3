package shutter_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byewokko/av-processing/internal/testutil"
	"github.com/byewokko/av-processing/video/core"
	"github.com/byewokko/av-processing/video/frame"
	"github.com/byewokko/av-processing/video/shutter"
	"github.com/byewokko/av-processing/video/videoio"
)

func run(t *testing.T, cfg shutter.Config, fps float64, frames []*frame.Frame, opts ...shutter.Option) []*frame.Frame {
	t.Helper()
	src, err := videoio.NewMemorySource(fps, frames)
	require.NoError(t, err)
	e, err := shutter.New(cfg, src.Info(), opts...)
	require.NoError(t, err)
	sink := &videoio.MemorySink{}
	require.NoError(t, e.Run(context.Background(), src, sink))
	return sink.Frames
}

func TestBlackToWhiteScenario(t *testing.T) {
	frames := []*frame.Frame{
		testutil.Solid(t, 4, 4, 3, 0),
		testutil.Solid(t, 4, 4, 3, 255),
	}
	cfg := shutter.Config{Zero: 0, Function: "abs", MaxDelayMs: 200}

	out := run(t, cfg, 10, frames)
	require.Len(t, out, 4)

	// Row delays are 0, 0.5, 1 and 1.5 frames.
	want := [][]float64{
		{0, 0, 0, 0},
		{255, 127.5, 0, 0},
		{255, 255, 255, 127.5},
		{255, 255, 255, 255},
	}
	for i, rows := range want {
		for y, v := range rows {
			testutil.RequireRowValue(t, out[i], y, v)
		}
	}
}

func TestBlackToWhiteScenarioHorizontal(t *testing.T) {
	frames := []*frame.Frame{
		testutil.Solid(t, 4, 4, 3, 0),
		testutil.Solid(t, 4, 4, 3, 255),
	}
	cfg := shutter.Config{Horizontal: true, Zero: 0, Function: "abs", MaxDelayMs: 200}

	out := run(t, cfg, 10, frames)
	require.Len(t, out, 4)

	want := [][]float64{
		{0, 0, 0, 0},
		{255, 127.5, 0, 0},
		{255, 255, 255, 127.5},
		{255, 255, 255, 255},
	}
	for i, cols := range want {
		for x, v := range cols {
			for y := 0; y < 4; y++ {
				for c := 0; c < 3; c++ {
					assert.Equal(t, v, out[i].At(x, y, c), "frame %d column %d row %d", i, x, y)
				}
			}
		}
	}
}

func TestZeroDelayIsIdentity(t *testing.T) {
	frames := testutil.NoiseSequence(t, 7, 6, 9, 5, 3)
	for _, fn := range []string{"abs", "neg-quad", "cos", "saw"} {
		for _, horizontal := range []bool{false, true} {
			cfg := shutter.Config{Horizontal: horizontal, Zero: 0.4, Function: fn, MaxDelayMs: 0}
			out := run(t, cfg, 30, frames)
			require.Len(t, out, len(frames), fn)
			for i := range frames {
				testutil.RequireFrameEqual(t, out[i], frames[i])
			}
		}
	}
}

func TestFirstOutputEqualsFirstInput(t *testing.T) {
	frames := testutil.NoiseSequence(t, 11, 3, 8, 6, 3)
	for _, horizontal := range []bool{false, true} {
		cfg := shutter.Config{Horizontal: horizontal, Zero: 0.5, Function: "norm", Args: []float64{0.3}, MaxDelayMs: 500}
		out := run(t, cfg, 24, frames)
		testutil.RequireFrameEqual(t, out[0], frames[0])
	}
}

func TestDrainConvergesToLastFrame(t *testing.T) {
	frames := testutil.NoiseSequence(t, 3, 4, 6, 6, 1)
	cfg := shutter.Config{Zero: 1, Function: "quad", MaxDelayMs: 300}
	out := run(t, cfg, 10, frames)

	require.Len(t, out, len(frames)+3)
	testutil.RequireFrameEqual(t, out[len(out)-1], frames[len(frames)-1])
}

func TestOutputIsFiniteAndBounded(t *testing.T) {
	frames := testutil.NoiseSequence(t, 21, 8, 7, 9, 3)
	for _, fn := range []string{"abs", "neg-abs", "quad", "neg-quad", "log-quad", "cos", "norm", "saw", "sin"} {
		cfg := shutter.Config{Zero: 0.3, Function: fn, MaxDelayMs: 250}
		out := run(t, cfg, 24, frames)
		require.Len(t, out, len(frames)+6, fn)
		for _, f := range out {
			testutil.RequireFinite(t, f)
			for _, v := range f.Pix() {
				require.True(t, v >= 0 && v <= 255, "%s: value %v out of range", fn, v)
			}
		}
	}
}

func TestNewConfigurationErrors(t *testing.T) {
	info := shutter.StreamInfo{Width: 4, Height: 4, Channels: 3, FPS: 30}
	tests := []struct {
		name string
		cfg  shutter.Config
		info shutter.StreamInfo
	}{
		{name: "zero below", cfg: shutter.Config{Zero: -0.5, Function: "abs"}, info: info},
		{name: "zero above", cfg: shutter.Config{Zero: 2, Function: "abs"}, info: info},
		{name: "unknown function", cfg: shutter.Config{Function: "wobble"}, info: info},
		{name: "bad args", cfg: shutter.Config{Function: "saw", Args: []float64{-1}}, info: info},
		{name: "surplus args", cfg: shutter.Config{Function: "quad", Args: []float64{1}}, info: info},
		{name: "negative delay", cfg: shutter.Config{Function: "abs", MaxDelayMs: -1}, info: info},
		{name: "degenerate profile", cfg: shutter.Config{Function: "cos", Args: []float64{0}}, info: info},
		{name: "bad fps", cfg: shutter.Default(), info: shutter.StreamInfo{Width: 4, Height: 4, Channels: 3}},
		{name: "bad size", cfg: shutter.Default(), info: shutter.StreamInfo{Width: 0, Height: 4, Channels: 3, FPS: 30}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := shutter.New(tc.cfg, tc.info)
			assert.ErrorIs(t, err, core.ErrConfiguration)
		})
	}
}

func TestEngineAccessors(t *testing.T) {
	e, err := shutter.New(shutter.Default(), shutter.StreamInfo{Width: 8, Height: 6, Channels: 3, FPS: 30})
	require.NoError(t, err)
	assert.Equal(t, 6, e.MaxSteps())
	assert.Equal(t, 106, e.OutputFrames(100))
	assert.InDelta(t, 1.0, e.Profile().Scale(), 1e-12)
}

func TestStepReusesOutputFrame(t *testing.T) {
	info := shutter.StreamInfo{Width: 3, Height: 3, Channels: 1, FPS: 10}
	e, err := shutter.New(shutter.Config{Function: "abs", MaxDelayMs: 100}, info)
	require.NoError(t, err)

	a, err := e.Step(testutil.Solid(t, 3, 3, 1, 1))
	require.NoError(t, err)
	b, err := e.Step(nil)
	require.NoError(t, err)
	assert.Same(t, a, b)

	m := e.Metrics()
	assert.Equal(t, uint64(1), m.FramesIn)
	assert.Equal(t, uint64(1), m.FramesDrained)
}

func TestStepRejectsWrongShape(t *testing.T) {
	info := shutter.StreamInfo{Width: 3, Height: 3, Channels: 1, FPS: 10}
	e, err := shutter.New(shutter.Default(), info)
	require.NoError(t, err)

	_, err = e.Step(testutil.Solid(t, 4, 3, 1, 0))
	assert.ErrorIs(t, err, core.ErrStream)

	_, err = e.Step(nil)
	assert.ErrorIs(t, err, core.ErrStream, "drain before any input")
}

type shortSource struct {
	*videoio.MemorySource
	declared int
}

func (s shortSource) FrameCount() (int, error) { return s.declared, nil }

func TestRunEarlyEndOfStream(t *testing.T) {
	mem, err := videoio.NewMemorySource(10, testutil.NoiseSequence(t, 1, 2, 4, 4, 3))
	require.NoError(t, err)
	src := shortSource{MemorySource: mem, declared: 5}

	e, err := shutter.New(shutter.Default(), src.Info())
	require.NoError(t, err)
	sink := &videoio.MemorySink{}
	err = e.Run(context.Background(), src, sink)
	assert.ErrorIs(t, err, core.ErrStream)
	assert.Len(t, sink.Frames, 2)
}

type failingSink struct {
	after int
	n     int
}

var errDiskFull = errors.New("disk full")

func (s *failingSink) Write(context.Context, *frame.Frame) error {
	if s.n >= s.after {
		return errDiskFull
	}
	s.n++
	return nil
}

func (s *failingSink) Close() error { return nil }

func TestRunSinkFailure(t *testing.T) {
	src, err := videoio.NewMemorySource(10, testutil.NoiseSequence(t, 1, 4, 4, 4, 3))
	require.NoError(t, err)
	e, err := shutter.New(shutter.Default(), src.Info())
	require.NoError(t, err)

	err = e.Run(context.Background(), src, &failingSink{after: 2})
	assert.ErrorIs(t, err, core.ErrStream)
	assert.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, uint64(2), e.Metrics().FramesOut)
}

type errSource struct {
	*videoio.MemorySource
}

func (errSource) Next(context.Context) (*frame.Frame, error) {
	return nil, io.ErrUnexpectedEOF
}

func TestRunSourceFailure(t *testing.T) {
	mem, err := videoio.NewMemorySource(10, testutil.NoiseSequence(t, 1, 1, 4, 4, 3))
	require.NoError(t, err)
	e, err := shutter.New(shutter.Default(), mem.Info())
	require.NoError(t, err)

	err = e.Run(context.Background(), errSource{mem}, &videoio.MemorySink{})
	assert.ErrorIs(t, err, core.ErrStream)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestRunSourceShapeMismatch(t *testing.T) {
	src, err := videoio.NewMemorySource(10, testutil.NoiseSequence(t, 1, 1, 4, 4, 3))
	require.NoError(t, err)
	e, err := shutter.New(shutter.Default(), shutter.StreamInfo{Width: 5, Height: 4, Channels: 3, FPS: 10})
	require.NoError(t, err)

	err = e.Run(context.Background(), src, &videoio.MemorySink{})
	assert.ErrorIs(t, err, core.ErrStream)
}

func TestRunCancelledBetweenFrames(t *testing.T) {
	src, err := videoio.NewMemorySource(10, testutil.NoiseSequence(t, 1, 6, 4, 4, 3))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seen []shutter.Progress
	e, err := shutter.New(shutter.Default(), src.Info(), shutter.WithProgress(func(p shutter.Progress) {
		seen = append(seen, p)
		if p.Frame == 2 {
			cancel()
		}
	}))
	require.NoError(t, err)

	sink := &videoio.MemorySink{}
	err = e.Run(ctx, src, sink)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, sink.Frames, 3)
	require.Len(t, seen, 3)
	assert.Equal(t, shutter.Progress{Frame: 2, Total: 8}, seen[2])
}

func TestRunLogsWithInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	frames := testutil.NoiseSequence(t, 1, 2, 4, 4, 3)
	out := run(t, shutter.Config{Function: "cos", Args: []float64{2}, MaxDelayMs: 100, Zero: 0.5}, 20, frames,
		shutter.WithLogger(logger))
	require.Len(t, out, 4)

	logs := buf.String()
	assert.Contains(t, logs, `"function":"cos(freq=2)"`)
	assert.Contains(t, logs, `"frames_out":4`)
	assert.Contains(t, logs, "Rolling shutter complete")
}

func TestRunIsRepeatable(t *testing.T) {
	frames := testutil.NoiseSequence(t, 4, 5, 6, 6, 3)
	src1, err := videoio.NewMemorySource(20, frames)
	require.NoError(t, err)
	e, err := shutter.New(shutter.Config{Zero: 0.2, Function: "sin", MaxDelayMs: 150}, src1.Info())
	require.NoError(t, err)

	first := &videoio.MemorySink{}
	require.NoError(t, e.Run(context.Background(), src1, first))

	src2, err := videoio.NewMemorySource(20, frames)
	require.NoError(t, err)
	second := &videoio.MemorySink{}
	require.NoError(t, e.Run(context.Background(), src2, second))

	require.Len(t, second.Frames, len(first.Frames))
	for i := range first.Frames {
		testutil.RequireFrameEqual(t, second.Frames[i], first.Frames[i])
	}
}

func TestRunWarnsWhenSourceHasUndeclaredFrames(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	mem, err := videoio.NewMemorySource(10, testutil.NoiseSequence(t, 7, 4, 4, 4, 3))
	require.NoError(t, err)
	src := shortSource{MemorySource: mem, declared: 3}

	e, err := shutter.New(shutter.Default(), src.Info(), shutter.WithLogger(logger))
	require.NoError(t, err)
	sink := &videoio.MemorySink{}
	require.NoError(t, e.Run(context.Background(), src, sink))

	assert.Len(t, sink.Frames, 3+e.MaxSteps())
	assert.Contains(t, buf.String(), "beyond its declared count")
	assert.Contains(t, buf.String(), `"level":"warning"`)
}

func TestRunDoesNotWarnOnExactCount(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)

	run(t, shutter.Default(), 10, testutil.NoiseSequence(t, 7, 3, 4, 4, 3), shutter.WithLogger(logger))
	assert.NotContains(t, buf.String(), "beyond its declared count")
}
