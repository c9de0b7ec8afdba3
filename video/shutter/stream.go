package shutter

import (
	"context"
	"fmt"

	"github.com/byewokko/av-processing/video/core"
	"github.com/byewokko/av-processing/video/frame"
)

// StreamInfo describes the frames a source produces.
type StreamInfo struct {
	Width    int
	Height   int
	Channels int
	FPS      float64
}

func (s StreamInfo) validate() error {
	if s.Width <= 0 || s.Height <= 0 || s.Channels <= 0 {
		return fmt.Errorf("%w: invalid frame size %dx%dx%d", core.ErrConfiguration, s.Width, s.Height, s.Channels)
	}
	return nil
}

func (s StreamInfo) matches(f *frame.Frame) bool {
	return f.Width() == s.Width && f.Height() == s.Height && f.Channels() == s.Channels
}

// Source yields decoded input frames in presentation order.
type Source interface {
	Info() StreamInfo
	// FrameCount returns the number of frames Next will yield.
	FrameCount() (int, error)
	// Next returns the next frame, or io.EOF once the stream is exhausted.
	// The engine copies what it keeps, so the source may reuse the frame.
	Next(ctx context.Context) (*frame.Frame, error)
}

// Sink persists output frames in the order they are written. The frame passed
// to Write is only valid until Write returns.
type Sink interface {
	Write(ctx context.Context, f *frame.Frame) error
	Close() error
}
