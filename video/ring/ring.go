// Package ring provides the sliding window of recent frames that the
// rolling shutter engine reads delayed rows from.
package ring

import (
	"fmt"

	"github.com/byewokko/av-processing/video/core"
	"github.com/byewokko/av-processing/video/frame"
)

// Buffer is a circular buffer holding the maxSteps+2 most recent frames.
//
// Slots are allocated on the first push and reused afterwards: pushing
// copies pixel data into the slot of the evicted frame, so a push never
// reallocates and memory stays bounded by the capacity.
type Buffer struct {
	slots    []*frame.Frame
	writePos int // slot that receives the next push
	filled   bool
}

// New returns an empty buffer for a maximum delay of maxSteps frames.
func New(maxSteps int) (*Buffer, error) {
	if maxSteps < 0 {
		return nil, fmt.Errorf("%w: max delay steps must be >= 0: %d", core.ErrConfiguration, maxSteps)
	}
	return &Buffer{slots: make([]*frame.Frame, maxSteps+2)}, nil
}

// Cap returns the fixed number of frames held once filled.
func (b *Buffer) Cap() int {
	return len(b.slots)
}

// Len returns the number of frames currently held: 0 before the first push,
// Cap afterwards.
func (b *Buffer) Len() int {
	if !b.filled {
		return 0
	}
	return len(b.slots)
}

// Push appends a copy of f, evicting the oldest frame. The first push fills
// the whole history with copies of f, as if the stream had shown f forever.
func (b *Buffer) Push(f *frame.Frame) error {
	if f == nil {
		return fmt.Errorf("%w: nil frame", core.ErrStream)
	}
	if !b.filled {
		for i, slot := range b.slots {
			if slot != nil && slot.SameShape(f) {
				_ = slot.CopyFrom(f)
				continue
			}
			b.slots[i] = f.Copy()
		}
		b.filled = true
		b.writePos = 0
		return nil
	}

	if err := b.slots[b.writePos].CopyFrom(f); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStream, err)
	}
	b.advance()
	return nil
}

// PushRepeatLast appends a copy of the newest frame, as if the stream held
// its last frame after ending.
func (b *Buffer) PushRepeatLast() error {
	if !b.filled {
		return fmt.Errorf("%w: repeat on empty frame buffer", core.ErrStream)
	}
	newest := b.slots[b.index(0)]
	// Distinct slots, so the copy cannot overlap.
	_ = b.slots[b.writePos].CopyFrom(newest)
	b.advance()
	return nil
}

// At returns the frame offset steps back from the newest one (0 = newest).
// The returned frame is owned by the buffer and is overwritten by later pushes.
func (b *Buffer) At(offset int) (*frame.Frame, error) {
	if offset < 0 || offset >= b.Len() {
		return nil, fmt.Errorf("%w: frame offset %d outside [0,%d)", core.ErrNumeric, offset, b.Len())
	}
	return b.slots[b.index(offset)], nil
}

// Reset drops all frames. The next push fills the buffer again, reusing the
// slots when the frame shape is unchanged.
func (b *Buffer) Reset() {
	b.writePos = 0
	b.filled = false
}

func (b *Buffer) advance() {
	b.writePos++
	if b.writePos >= len(b.slots) {
		b.writePos = 0
	}
}

func (b *Buffer) index(offset int) int {
	size := len(b.slots)
	return (b.writePos - 1 - offset + 2*size) % size
}
