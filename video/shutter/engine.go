package shutter

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/byewokko/av-processing/video/core"
	"github.com/byewokko/av-processing/video/delayfn"
	"github.com/byewokko/av-processing/video/frame"
	"github.com/byewokko/av-processing/video/interp"
	"github.com/byewokko/av-processing/video/profile"
	"github.com/byewokko/av-processing/video/ring"
)

// Progress reports one emitted output frame.
type Progress struct {
	Frame int // zero-based index of the frame just written
	Total int
}

// Metrics holds counters for the current run.
type Metrics struct {
	FramesIn      uint64 // Frames pulled from the source.
	FramesOut     uint64 // Frames handed to the sink.
	FramesDrained uint64 // Output frames produced after the source ended.
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger injects a logger. The default discards everything.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProgress registers a callback invoked after every frame written by Run.
func WithProgress(fn func(Progress)) Option {
	return func(e *Engine) { e.progress = fn }
}

// Engine applies the rolling shutter effect to one stream.
//
// The engine works on rows. For a horizontal axis, frames are transposed on
// the way in and back on the way out, so columns are processed as rows.
type Engine struct {
	cfg     Config
	info    StreamInfo
	fn      delayfn.Func
	profile *profile.Profile
	delays  []float64 // delay in frames per row, in axis space
	buf     *ring.Buffer

	work *frame.Frame // transposed input, horizontal axis only
	out  *frame.Frame // assembled output, axis space
	emit *frame.Frame // out transposed back, horizontal axis only

	metrics  Metrics
	logger   logrus.FieldLogger
	progress func(Progress)
}

// New validates cfg against the stream and precomputes the delay schedule.
// Every configuration error surfaces here, before any frame is read.
func New(cfg Config, info StreamInfo, opts ...Option) (*Engine, error) {
	fn, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	if err := info.validate(); err != nil {
		return nil, err
	}
	maxSteps, err := profile.StepsFromMillis(cfg.MaxDelayMs, info.FPS)
	if err != nil {
		return nil, err
	}

	axisW, axisH := info.Width, info.Height
	if cfg.Horizontal {
		axisW, axisH = info.Height, info.Width
	}

	prof, err := profile.New(fn, cfg.Zero, axisH, maxSteps)
	if err != nil {
		return nil, err
	}
	delays, err := prof.Table(axisH)
	if err != nil {
		return nil, err
	}
	buf, err := ring.New(maxSteps)
	if err != nil {
		return nil, err
	}
	out, err := frame.New(axisW, axisH, info.Channels)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:     cfg,
		info:    info,
		fn:      fn,
		profile: prof,
		delays:  delays,
		buf:     buf,
		out:     out,
		logger:  discardLogger(),
	}
	if cfg.Horizontal {
		e.work, _ = frame.New(axisW, axisH, info.Channels)
		e.emit, _ = frame.New(info.Width, info.Height, info.Channels)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// MaxSteps returns the maximum delay in frames.
func (e *Engine) MaxSteps() int {
	return e.profile.MaxSteps()
}

// Profile returns the normalized delay profile.
func (e *Engine) Profile() *profile.Profile {
	return e.profile
}

// OutputFrames returns how many frames a run over input frames emits: the
// input plus a drain tail long enough for the maximum delay to arrive.
func (e *Engine) OutputFrames(input int) int {
	return input + e.MaxSteps()
}

// Metrics returns a snapshot of the run counters.
func (e *Engine) Metrics() Metrics {
	return e.metrics
}

// Reset clears the frame history and counters.
func (e *Engine) Reset() {
	e.buf.Reset()
	e.metrics = Metrics{}
}

// Step consumes one input frame, or drains when in is nil, and returns the
// next output frame. The returned frame is reused by the following Step.
func (e *Engine) Step(in *frame.Frame) (*frame.Frame, error) {
	if in != nil {
		if !e.info.matches(in) {
			return nil, fmt.Errorf("%w: frame is %dx%dx%d, stream is %dx%dx%d", core.ErrStream,
				in.Width(), in.Height(), in.Channels(), e.info.Width, e.info.Height, e.info.Channels)
		}
		src := in
		if e.cfg.Horizontal {
			if err := in.TransposeInto(e.work); err != nil {
				return nil, fmt.Errorf("%w: %v", core.ErrStream, err)
			}
			src = e.work
		}
		if err := e.buf.Push(src); err != nil {
			return nil, err
		}
		e.metrics.FramesIn++
	} else {
		if err := e.buf.PushRepeatLast(); err != nil {
			return nil, err
		}
		e.metrics.FramesDrained++
	}

	for row, d := range e.delays {
		k, frac := profile.Split(d)
		older, err := e.buf.At(k)
		if err != nil {
			return nil, fmt.Errorf("row %d delay %v: %w", row, d, err)
		}
		newer, err := e.buf.At(k - 1)
		if err != nil {
			return nil, fmt.Errorf("row %d delay %v: %w", row, d, err)
		}
		interp.LerpBlock(e.out.Row(row), newer.Row(row), older.Row(row), frac)
	}

	if e.cfg.Horizontal {
		if err := e.out.TransposeInto(e.emit); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrNumeric, err)
		}
		return e.emit, nil
	}
	return e.out, nil
}

// Run pulls every frame from src, writes FrameCount+MaxSteps frames to sink
// and returns the first error. The context is checked between frames. A source
// that still has frames after FrameCount is reported with a warning. Run does
// not close sink.
func (e *Engine) Run(ctx context.Context, src Source, sink Sink) error {
	if info := src.Info(); info.Width != e.info.Width || info.Height != e.info.Height || info.Channels != e.info.Channels {
		return fmt.Errorf("%w: source is %dx%dx%d, engine expects %dx%dx%d", core.ErrStream,
			info.Width, info.Height, info.Channels, e.info.Width, e.info.Height, e.info.Channels)
	}
	n, err := src.FrameCount()
	if err != nil {
		return fmt.Errorf("%w: frame count: %w", core.ErrStream, err)
	}
	if n < 0 {
		return fmt.Errorf("%w: negative frame count %d", core.ErrStream, n)
	}

	e.Reset()
	total := e.OutputFrames(n)
	log := e.logger.WithFields(logrus.Fields{
		"function":     e.fn.String(),
		"zero":         e.cfg.Zero,
		"axis":         e.cfg.Axis(),
		"max_delay_ms": e.cfg.MaxDelayMs,
		"max_steps":    e.MaxSteps(),
		"scale":        e.profile.Scale(),
		"input":        n,
		"output":       total,
	})
	log.Info("Applying rolling shutter")

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("rolling shutter stopped at frame %d/%d: %w", i, total, err)
		}

		var in *frame.Frame
		if i < n {
			in, err = src.Next(ctx)
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: source ended after %d of %d frames", core.ErrStream, i, n)
			}
			if err != nil {
				return fmt.Errorf("%w: read frame %d: %w", core.ErrStream, i, err)
			}
		}

		out, err := e.Step(in)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if err := sink.Write(ctx, out); err != nil {
			return fmt.Errorf("%w: write frame %d: %w", core.ErrStream, i, err)
		}
		e.metrics.FramesOut++

		if e.progress != nil {
			e.progress(Progress{Frame: i, Total: total})
		}
	}

	if _, err := src.Next(ctx); err == nil {
		log.Warn("Source has frames beyond its declared count; they were not processed")
	} else if !errors.Is(err, io.EOF) {
		log.WithError(err).Debug("Source failed after its declared last frame")
	}

	log.WithFields(logrus.Fields{
		"frames_in":      e.metrics.FramesIn,
		"frames_out":     e.metrics.FramesOut,
		"frames_drained": e.metrics.FramesDrained,
	}).Info("Rolling shutter complete")
	return nil
}
