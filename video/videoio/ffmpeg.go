package videoio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/byewokko/av-processing/video/frame"
	"github.com/byewokko/av-processing/video/shutter"
)

// Executables used for decoding and encoding. Override to point at a
// specific build.
var (
	FFmpegPath  = "ffmpeg"
	FFprobePath = "ffprobe"
)

const rgbChannels = 3

// Meta is the stream metadata reported by ffprobe.
type Meta struct {
	Width  int
	Height int
	FPS    float64
	Frames int
}

// Info returns the stream description of decoded rgb24 frames.
func (m Meta) Info() shutter.StreamInfo {
	return shutter.StreamInfo{Width: m.Width, Height: m.Height, Channels: rgbChannels, FPS: m.FPS}
}

type probeOutput struct {
	Streams []struct {
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		NbFrames     string `json:"nb_frames"`
		NbReadFrames string `json:"nb_read_frames"`
	} `json:"streams"`
}

// Probe reads the first video stream's size and frame rate, and counts its
// frames by decoding the stream once. Container frame counts are not
// trusted: they are often missing or disagree with what the decoder yields.
func Probe(ctx context.Context, path string) (Meta, error) {
	out, err := runProbe(ctx, path)
	if err != nil {
		return Meta{}, err
	}
	meta, err := parseProbe(out)
	if err != nil {
		return Meta{}, fmt.Errorf("probe %s: %w", path, err)
	}
	if meta.Frames <= 0 {
		return Meta{}, fmt.Errorf("probe %s: could not determine frame count", path)
	}
	return meta, nil
}

func runProbe(ctx context.Context, path string) ([]byte, error) {
	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-count_frames",
		"-show_entries", "stream=width,height,r_frame_rate,avg_frame_rate,nb_frames,nb_read_frames",
		"-of", "json",
		path,
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, FFprobePath, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

func parseProbe(data []byte) (Meta, error) {
	var p probeOutput
	if err := json.Unmarshal(data, &p); err != nil {
		return Meta{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(p.Streams) == 0 {
		return Meta{}, errors.New("no video stream")
	}
	s := p.Streams[0]
	if s.Width <= 0 || s.Height <= 0 {
		return Meta{}, fmt.Errorf("invalid video size %dx%d", s.Width, s.Height)
	}

	fps, err := ParseRate(s.AvgFrameRate)
	if err != nil || fps <= 0 {
		fps, err = ParseRate(s.RFrameRate)
		if err != nil {
			return Meta{}, err
		}
	}

	frames := 0
	for _, n := range []string{s.NbReadFrames, s.NbFrames} {
		if v, err := strconv.Atoi(n); err == nil && v > 0 {
			frames = v
			break
		}
	}
	return Meta{Width: s.Width, Height: s.Height, FPS: fps, Frames: frames}, nil
}

// ParseRate parses an ffmpeg rational such as "30000/1001" or a plain number.
func ParseRate(s string) (float64, error) {
	num, den, found := strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("bad frame rate %q: %w", s, err)
	}
	d := 1.0
	if found {
		d, err = strconv.ParseFloat(den, 64)
		if err != nil {
			return 0, fmt.Errorf("bad frame rate %q: %w", s, err)
		}
	}
	if d == 0 {
		return 0, fmt.Errorf("bad frame rate %q: zero denominator", s)
	}
	r := n / d
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		return 0, fmt.Errorf("bad frame rate %q", s)
	}
	return r, nil
}

// OutputPath derives the default output name: clip.mp4 becomes clip.out.mp4.
func OutputPath(in string) string {
	ext := filepath.Ext(in)
	return strings.TrimSuffix(in, ext) + ".out" + ext
}

// stderrBuffer collects ffmpeg diagnostics while the process runs.
type stderrBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *stderrBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *stderrBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(b.buf.String())
}

// FFmpegSource decodes a video file to rgb24 frames through an ffmpeg process.
type FFmpegSource struct {
	meta   Meta
	cmd    *exec.Cmd
	stdout io.ReadCloser
	r      *bufio.Reader
	stderr stderrBuffer
	raw    []byte
	frame  *frame.Frame
}

// NewFFmpegSource starts ffmpeg decoding path. The process lives until Close
// or until ctx is cancelled.
func NewFFmpegSource(ctx context.Context, path string, meta Meta) (*FFmpegSource, error) {
	f, err := frame.New(meta.Width, meta.Height, rgbChannels)
	if err != nil {
		return nil, err
	}
	s := &FFmpegSource{
		meta:  meta,
		raw:   make([]byte, meta.Width*meta.Height*rgbChannels),
		frame: f,
	}
	s.cmd = exec.CommandContext(ctx, FFmpegPath, decodeArgs(path)...)
	s.cmd.Stderr = &s.stderr
	s.stdout, err = s.cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := s.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	s.r = bufio.NewReaderSize(s.stdout, len(s.raw))
	return s, nil
}

func decodeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-i", path,
		"-map", "0:v:0",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-",
	}
}

// Info implements shutter.Source.
func (s *FFmpegSource) Info() shutter.StreamInfo { return s.meta.Info() }

// FrameCount implements shutter.Source.
func (s *FFmpegSource) FrameCount() (int, error) { return s.meta.Frames, nil }

// Next implements shutter.Source. The returned frame is reused by the next call.
func (s *FFmpegSource) Next(ctx context.Context) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(s.r, s.raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read raw frame: %w: %s", err, s.stderr.String())
	}
	if err := s.frame.ReadBytes(s.raw); err != nil {
		return nil, err
	}
	return s.frame, nil
}

// Close stops the decoder.
func (s *FFmpegSource) Close() error {
	_ = s.stdout.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	return nil
}

// EncodeOptions selects the output codec.
type EncodeOptions struct {
	Codec     string   // default libx264
	PixFmt    string   // default yuv420p
	ExtraArgs []string // inserted before the output path
}

func (o EncodeOptions) withDefaults() EncodeOptions {
	if o.Codec == "" {
		o.Codec = "libx264"
	}
	if o.PixFmt == "" {
		o.PixFmt = "yuv420p"
	}
	return o
}

// FFmpegSink encodes rgb24 frames to a video file through an ffmpeg process.
type FFmpegSink struct {
	info   shutter.StreamInfo
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	w      *bufio.Writer
	stderr stderrBuffer
	raw    []byte
	closed bool
}

// NewFFmpegSink starts ffmpeg writing path. Close must be called to finalize
// the container. Cancelling ctx does not stop the encoder: Close still lets
// it write the trailer, so a cancelled run leaves a playable file.
func NewFFmpegSink(ctx context.Context, path string, info shutter.StreamInfo, opts EncodeOptions) (*FFmpegSink, error) {
	if info.Width <= 0 || info.Height <= 0 || info.FPS <= 0 {
		return nil, fmt.Errorf("invalid output stream %dx%d @ %v fps", info.Width, info.Height, info.FPS)
	}
	s := &FFmpegSink{
		info: info,
		raw:  make([]byte, info.Width*info.Height*rgbChannels),
	}
	s.cmd = exec.CommandContext(context.WithoutCancel(ctx), FFmpegPath, encodeArgs(path, info, opts.withDefaults())...)
	s.cmd.Stderr = &s.stderr
	var err error
	s.stdin, err = s.cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	if err := s.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	s.w = bufio.NewWriterSize(s.stdin, len(s.raw))
	return s, nil
}

func encodeArgs(path string, info shutter.StreamInfo, opts EncodeOptions) []string {
	args := []string{
		"-y",
		"-v", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", info.Width, info.Height),
		"-r", strconv.FormatFloat(info.FPS, 'f', -1, 64),
		"-i", "-",
		"-c:v", opts.Codec,
		"-pix_fmt", opts.PixFmt,
	}
	args = append(args, opts.ExtraArgs...)
	return append(args, path)
}

// Write implements shutter.Sink.
func (s *FFmpegSink) Write(_ context.Context, f *frame.Frame) error {
	if s.closed {
		return errors.New("write to closed ffmpeg sink")
	}
	if f.Width() != s.info.Width || f.Height() != s.info.Height || f.Channels() != rgbChannels {
		return fmt.Errorf("frame is %dx%dx%d, encoder expects %dx%dx%d",
			f.Width(), f.Height(), f.Channels(), s.info.Width, s.info.Height, rgbChannels)
	}
	if err := f.WriteBytes(s.raw); err != nil {
		return err
	}
	if _, err := s.w.Write(s.raw); err != nil {
		return fmt.Errorf("write raw frame: %w: %s", err, s.stderr.String())
	}
	return nil
}

// Close flushes pending frames and waits for ffmpeg to finalize the file.
func (s *FFmpegSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	flushErr := s.w.Flush()
	closeErr := s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, s.stderr.String())
	}
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
