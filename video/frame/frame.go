package frame

import (
	"errors"
	"fmt"
)

var errShape = errors.New("frame shape mismatch")

// Frame is a width x height grid of pixels with a fixed channel count.
type Frame struct {
	width    int
	height   int
	channels int
	pix      []float64
}

// New returns a zero-filled frame.
func New(width, height, channels int) (*Frame, error) {
	if width <= 0 || height <= 0 || channels <= 0 {
		return nil, fmt.Errorf("frame dimensions must be > 0: %dx%dx%d", width, height, channels)
	}
	return &Frame{
		width:    width,
		height:   height,
		channels: channels,
		pix:      make([]float64, width*height*channels),
	}, nil
}

// FromSlice wraps pix without copying. len(pix) must equal width*height*channels.
func FromSlice(width, height, channels int, pix []float64) (*Frame, error) {
	if width <= 0 || height <= 0 || channels <= 0 {
		return nil, fmt.Errorf("frame dimensions must be > 0: %dx%dx%d", width, height, channels)
	}
	if len(pix) != width*height*channels {
		return nil, fmt.Errorf("pixel data length %d does not match %dx%dx%d", len(pix), width, height, channels)
	}
	return &Frame{width: width, height: height, channels: channels, pix: pix}, nil
}

// Width returns the number of columns.
func (f *Frame) Width() int { return f.width }

// Height returns the number of rows.
func (f *Frame) Height() int { return f.height }

// Channels returns the number of values per pixel.
func (f *Frame) Channels() int { return f.channels }

// Stride returns the number of values in one row.
func (f *Frame) Stride() int { return f.width * f.channels }

// Pix returns the underlying interleaved pixel data.
func (f *Frame) Pix() []float64 { return f.pix }

// Row returns the values of row y. The slice aliases the frame.
func (f *Frame) Row(y int) []float64 {
	stride := f.Stride()
	return f.pix[y*stride : (y+1)*stride]
}

// At returns channel c of the pixel at (x, y).
func (f *Frame) At(x, y, c int) float64 {
	return f.pix[(y*f.width+x)*f.channels+c]
}

// Set assigns channel c of the pixel at (x, y).
func (f *Frame) Set(x, y, c int, v float64) {
	f.pix[(y*f.width+x)*f.channels+c] = v
}

// Fill sets every value to v.
func (f *Frame) Fill(v float64) {
	for i := range f.pix {
		f.pix[i] = v
	}
}

// SameShape reports whether f and o have identical dimensions.
func (f *Frame) SameShape(o *Frame) bool {
	return o != nil && f.width == o.width && f.height == o.height && f.channels == o.channels
}

// Copy returns a deep copy of the frame.
func (f *Frame) Copy() *Frame {
	pix := make([]float64, len(f.pix))
	copy(pix, f.pix)
	return &Frame{width: f.width, height: f.height, channels: f.channels, pix: pix}
}

// CopyFrom overwrites f with the contents of src. Both frames must share a shape.
func (f *Frame) CopyFrom(src *Frame) error {
	if !f.SameShape(src) {
		return fmt.Errorf("%w: %s vs %s", errShape, f.shape(), src.shape())
	}
	copy(f.pix, src.pix)
	return nil
}

// Equal reports whether both frames have the same shape and identical values.
func (f *Frame) Equal(o *Frame) bool {
	if !f.SameShape(o) {
		return false
	}
	for i, v := range f.pix {
		if o.pix[i] != v {
			return false
		}
	}
	return true
}

// Transpose returns a new frame with rows and columns swapped.
func (f *Frame) Transpose() *Frame {
	dst := &Frame{
		width:    f.height,
		height:   f.width,
		channels: f.channels,
		pix:      make([]float64, len(f.pix)),
	}
	transpose(dst, f)
	return dst
}

// TransposeInto writes the transpose of f into dst, which must be
// height x width with the same channel count.
func (f *Frame) TransposeInto(dst *Frame) error {
	if dst == nil || dst.width != f.height || dst.height != f.width || dst.channels != f.channels {
		return fmt.Errorf("%w: transpose of %s into %s", errShape, f.shape(), dst.shape())
	}
	transpose(dst, f)
	return nil
}

func transpose(dst, src *Frame) {
	ch := src.channels
	for y := 0; y < src.height; y++ {
		for x := 0; x < src.width; x++ {
			s := (y*src.width + x) * ch
			d := (x*dst.width + y) * ch
			copy(dst.pix[d:d+ch], src.pix[s:s+ch])
		}
	}
}

func (f *Frame) shape() string {
	if f == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%dx%dx%d", f.width, f.height, f.channels)
}
