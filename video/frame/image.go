package frame

import (
	"fmt"
	"image"
	"image/color"

	"github.com/byewokko/av-processing/video/core"
)

// FromBytes builds a frame from interleaved 8-bit samples such as an rgb24
// or rgba raw video frame.
func FromBytes(width, height, channels int, data []byte) (*Frame, error) {
	f, err := New(width, height, channels)
	if err != nil {
		return nil, err
	}
	if err := f.ReadBytes(data); err != nil {
		return nil, err
	}
	return f, nil
}

// ReadBytes overwrites f with interleaved 8-bit samples.
func (f *Frame) ReadBytes(data []byte) error {
	if len(data) != len(f.pix) {
		return fmt.Errorf("raw frame has %d bytes, want %d", len(data), len(f.pix))
	}
	for i, b := range data {
		f.pix[i] = float64(b)
	}
	return nil
}

// WriteBytes quantizes f into dst, rounding and clamping each value to 0..255.
func (f *Frame) WriteBytes(dst []byte) error {
	if len(dst) != len(f.pix) {
		return fmt.Errorf("raw frame buffer has %d bytes, want %d", len(dst), len(f.pix))
	}
	for i, v := range f.pix {
		dst[i] = core.Quantize8(v)
	}
	return nil
}

// FromImage converts img into a frame with 3 (RGB) or 4 (RGBA) channels.
func FromImage(img image.Image, channels int) (*Frame, error) {
	if channels != 3 && channels != 4 {
		return nil, fmt.Errorf("unsupported channel count %d", channels)
	}
	b := img.Bounds()
	f, err := New(b.Dx(), b.Dy(), channels)
	if err != nil {
		return nil, err
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			f.pix[i] = float64(c.R)
			f.pix[i+1] = float64(c.G)
			f.pix[i+2] = float64(c.B)
			if channels == 4 {
				f.pix[i+3] = float64(c.A)
			}
			i += channels
		}
	}
	return f, nil
}

// Image converts f into an 8-bit NRGBA image. Frames with fewer than three
// channels are rendered as gray; a missing alpha channel is opaque.
func (f *Frame) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			s := (y*f.width + x) * f.channels
			d := img.PixOffset(x, y)
			switch {
			case f.channels >= 3:
				img.Pix[d] = core.Quantize8(f.pix[s])
				img.Pix[d+1] = core.Quantize8(f.pix[s+1])
				img.Pix[d+2] = core.Quantize8(f.pix[s+2])
			default:
				g := core.Quantize8(f.pix[s])
				img.Pix[d], img.Pix[d+1], img.Pix[d+2] = g, g, g
			}
			img.Pix[d+3] = 255
			if f.channels == 4 || f.channels == 2 {
				img.Pix[d+3] = core.Quantize8(f.pix[s+f.channels-1])
			}
		}
	}
	return img
}
