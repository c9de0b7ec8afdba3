// Command rollshutter applies a synthetic rolling shutter effect to a video.
//
// Usage:
//
//	rollshutter [flags] input.mp4
//	rollshutter [flags] -frames dir
//
// Each row of an output frame is taken from a different moment in the past.
// The delay per row follows a delay function anchored at -zero and peaking
// at -max-delay milliseconds. The output gets max-delay worth of extra
// frames at the end so the most delayed rows catch up.
//
// Examples:
//
//	rollshutter clip.mp4
//	rollshutter -f quad -z 0.5 -d 400 clip.mp4
//	rollshutter -x -f cos -a 3 -o wobble.mp4 clip.mp4
//	rollshutter -config preset.yaml clip.mp4
//	rollshutter -frames ./png -fps 24 -o ./png.out
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/byewokko/av-processing/internal/config"
	"github.com/byewokko/av-processing/video/core"
	"github.com/byewokko/av-processing/video/delayfn"
	"github.com/byewokko/av-processing/video/shutter"
	"github.com/byewokko/av-processing/video/videoio"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

type options struct {
	cfg      shutter.Config
	input    string // video file
	frames   string // PNG directory, replaces input
	fps      float64
	output   string
	codec    string
	every    int
	verbose  bool
	jsonLogs bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}

	log := newLogger(stderr, opts.verbose, opts.jsonLogs).WithField("run_id", uuid.NewString())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := process(ctx, opts, log); err != nil {
		log.WithError(err).Error("Rolling shutter failed")
		if errors.Is(err, core.ErrConfiguration) {
			return exitUsage
		}
		return exitFailed
	}
	return exitOK
}

func newLogger(w io.Writer, verbose, jsonLogs bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	if jsonLogs {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// parseArgs builds the run options. Values come from shutter.Default, then
// the -config preset, then any flag given explicitly on the command line.
func parseArgs(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("rollshutter", flag.ContinueOnError)
	fs.SetOutput(stderr)

	def := shutter.Default()
	var (
		horizontal bool
		zero       float64
		fn         string
		fnArgs     string
		maxDelay   int
		preset     string
		opts       options
	)
	fs.BoolVar(&horizontal, "horizontal", def.Horizontal, "delay varies across columns instead of rows")
	fs.BoolVar(&horizontal, "x", def.Horizontal, "shorthand for -horizontal")
	fs.Float64Var(&zero, "zero", def.Zero, "position in [0,1] where the delay function is anchored")
	fs.Float64Var(&zero, "z", def.Zero, "shorthand for -zero")
	fs.StringVar(&fn, "delay-fn", def.Function, "delay function: "+strings.Join(delayfn.Names(), ", "))
	fs.StringVar(&fn, "f", def.Function, "shorthand for -delay-fn")
	fs.StringVar(&fnArgs, "args", "", "comma separated delay function parameters")
	fs.StringVar(&fnArgs, "a", "", "shorthand for -args")
	fs.IntVar(&maxDelay, "max-delay", def.MaxDelayMs, "maximum delay in milliseconds")
	fs.IntVar(&maxDelay, "d", def.MaxDelayMs, "shorthand for -max-delay")
	fs.StringVar(&preset, "config", "", "YAML preset file; explicit flags override it")
	fs.StringVar(&opts.output, "o", "", "output path (default: <input>.out.<ext>, or <dir>.out for -frames)")
	fs.StringVar(&opts.frames, "frames", "", "read a directory of PNG frames instead of a video")
	fs.Float64Var(&opts.fps, "fps", 30, "frame rate of a -frames input")
	fs.StringVar(&opts.codec, "codec", "libx264", "ffmpeg video encoder")
	fs.IntVar(&opts.every, "progress", 100, "log progress every N frames (0 disables)")
	fs.BoolVar(&opts.verbose, "v", false, "verbose logging")
	fs.BoolVar(&opts.jsonLogs, "json", false, "log as JSON")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: rollshutter [flags] input\n")
		fmt.Fprintf(stderr, "       rollshutter [flags] -frames dir\n\n")
		fmt.Fprintf(stderr, "Applies a rolling shutter effect to a video.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	cfg := def
	if preset != "" {
		var err error
		if cfg, err = config.Load(preset); err != nil {
			return options{}, err
		}
	}

	var argErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "horizontal", "x":
			cfg.Horizontal = horizontal
		case "zero", "z":
			cfg.Zero = zero
		case "delay-fn", "f":
			if cfg.Function != fn {
				cfg.Args = nil
			}
			cfg.Function = fn
		case "max-delay", "d":
			cfg.MaxDelayMs = maxDelay
		}
	})
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "args" || f.Name == "a" {
			cfg.Args, argErr = delayfn.ParseArgs(fnArgs)
		}
	})
	if argErr != nil {
		return options{}, argErr
	}
	if err := cfg.Validate(); err != nil {
		return options{}, err
	}
	opts.cfg = cfg

	switch {
	case opts.frames != "" && fs.NArg() > 0:
		return options{}, fmt.Errorf("%w: give either an input file or -frames, not both", core.ErrConfiguration)
	case opts.frames != "":
		if opts.output == "" {
			opts.output = strings.TrimSuffix(opts.frames, string(os.PathSeparator)) + ".out"
		}
	case fs.NArg() == 1:
		opts.input = fs.Arg(0)
		if opts.output == "" {
			opts.output = videoio.OutputPath(opts.input)
		}
	default:
		fs.Usage()
		return options{}, fmt.Errorf("%w: expected exactly one input file", core.ErrConfiguration)
	}
	if opts.every < 0 {
		return options{}, fmt.Errorf("%w: -progress must be >= 0", core.ErrConfiguration)
	}
	return opts, nil
}
