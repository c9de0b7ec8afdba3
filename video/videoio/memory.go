package videoio

import (
	"context"
	"fmt"
	"io"

	"github.com/byewokko/av-processing/video/frame"
	"github.com/byewokko/av-processing/video/shutter"
)

// MemorySource replays a fixed slice of frames.
type MemorySource struct {
	info   shutter.StreamInfo
	frames []*frame.Frame
	pos    int
}

// NewMemorySource returns a source over frames, which must all share a shape.
func NewMemorySource(fps float64, frames []*frame.Frame) (*MemorySource, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("memory source needs at least one frame")
	}
	first := frames[0]
	for i, f := range frames {
		if !first.SameShape(f) {
			return nil, fmt.Errorf("frame %d shape differs from frame 0", i)
		}
	}
	return &MemorySource{
		info: shutter.StreamInfo{
			Width:    first.Width(),
			Height:   first.Height(),
			Channels: first.Channels(),
			FPS:      fps,
		},
		frames: frames,
	}, nil
}

// Info implements shutter.Source.
func (s *MemorySource) Info() shutter.StreamInfo { return s.info }

// FrameCount implements shutter.Source.
func (s *MemorySource) FrameCount() (int, error) { return len(s.frames), nil }

// Next implements shutter.Source.
func (s *MemorySource) Next(ctx context.Context) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}

// MemorySink keeps a copy of every written frame.
type MemorySink struct {
	Frames []*frame.Frame
	closed bool
}

// Write implements shutter.Sink.
func (s *MemorySink) Write(_ context.Context, f *frame.Frame) error {
	if s.closed {
		return fmt.Errorf("write to closed memory sink")
	}
	s.Frames = append(s.Frames, f.Copy())
	return nil
}

// Close implements shutter.Sink.
func (s *MemorySink) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *MemorySink) Closed() bool { return s.closed }
