package videoio

import (
	"bufio"
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/byewokko/av-processing/video/frame"
	"github.com/byewokko/av-processing/video/shutter"
)

// ImageSource reads a directory of PNG files in lexical order.
type ImageSource struct {
	info  shutter.StreamInfo
	paths []string
	pos   int
}

// NewImageSource lists the PNG files in dir. All images must share the
// dimensions of the first one. fps is the frame rate the sequence represents.
func NewImageSource(dir string, fps float64) (*ImageSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frame directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no png frames in %s", dir)
	}
	sort.Strings(paths)

	first, err := readPNG(paths[0])
	if err != nil {
		return nil, err
	}
	return &ImageSource{
		info: shutter.StreamInfo{
			Width:    first.Width(),
			Height:   first.Height(),
			Channels: first.Channels(),
			FPS:      fps,
		},
		paths: paths,
	}, nil
}

// Info implements shutter.Source.
func (s *ImageSource) Info() shutter.StreamInfo { return s.info }

// FrameCount implements shutter.Source.
func (s *ImageSource) FrameCount() (int, error) { return len(s.paths), nil }

// Next implements shutter.Source.
func (s *ImageSource) Next(ctx context.Context) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.paths) {
		return nil, io.EOF
	}
	f, err := readPNG(s.paths[s.pos])
	if err != nil {
		return nil, err
	}
	if f.Width() != s.info.Width || f.Height() != s.info.Height {
		return nil, fmt.Errorf("%s is %dx%d, sequence is %dx%d",
			s.paths[s.pos], f.Width(), f.Height(), s.info.Width, s.info.Height)
	}
	s.pos++
	return f, nil
}

func readPNG(path string) (*frame.Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	img, err := png.Decode(bufio.NewReader(fh))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return frame.FromImage(img, 3)
}

// ImageSink writes each frame as dir/<prefix>NNNNNN.png.
type ImageSink struct {
	dir    string
	prefix string
	n      int
}

// NewImageSink creates dir if needed.
func NewImageSink(dir, prefix string) (*ImageSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create frame directory: %w", err)
	}
	return &ImageSink{dir: dir, prefix: prefix}, nil
}

// Write implements shutter.Sink.
func (s *ImageSink) Write(ctx context.Context, f *frame.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%s%06d.png", s.prefix, s.n))
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(fh, 1<<20)
	if err := png.Encode(bw, f.Image()); err != nil {
		fh.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		fh.Close()
		return err
	}
	if err := fh.Close(); err != nil {
		return err
	}
	s.n++
	return nil
}

// Close implements shutter.Sink.
func (s *ImageSink) Close() error { return nil }

// Written returns the number of frames written so far.
func (s *ImageSink) Written() int { return s.n }
