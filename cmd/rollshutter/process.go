package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/byewokko/av-processing/video/shutter"
	"github.com/byewokko/av-processing/video/videoio"
)

// closingSource is a shutter.Source that owns an external resource.
type closingSource interface {
	shutter.Source
	Close() error
}

func openSource(ctx context.Context, opts options, log logrus.FieldLogger) (closingSource, error) {
	if opts.frames != "" {
		src, err := videoio.NewImageSource(opts.frames, opts.fps)
		if err != nil {
			return nil, err
		}
		return nopCloser{src}, nil
	}

	meta, err := videoio.Probe(ctx, opts.input)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"input":  opts.input,
		"width":  meta.Width,
		"height": meta.Height,
		"fps":    meta.FPS,
		"frames": meta.Frames,
	}).Debug("Probed input")
	return videoio.NewFFmpegSource(ctx, opts.input, meta)
}

type nopCloser struct{ shutter.Source }

func (nopCloser) Close() error { return nil }

func openSink(ctx context.Context, opts options, info shutter.StreamInfo) (shutter.Sink, error) {
	if opts.frames != "" {
		return videoio.NewImageSink(opts.output, "frame")
	}
	return videoio.NewFFmpegSink(ctx, opts.output, info, videoio.EncodeOptions{Codec: opts.codec})
}

// process runs one input through the engine. The sink is always closed so a
// partial output is still a readable file.
func process(ctx context.Context, opts options, log logrus.FieldLogger) (err error) {
	src, err := openSource(ctx, opts, log)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			log.WithError(cerr).Warn("Closing input failed")
		}
	}()

	info := src.Info()
	engine, err := shutter.New(opts.cfg, info,
		shutter.WithLogger(log),
		shutter.WithProgress(progressLogger(log, opts.every)),
	)
	if err != nil {
		return err
	}

	sink, err := openSink(ctx, opts, info)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer func() {
		err = errors.Join(err, sink.Close())
	}()

	if err := engine.Run(ctx, src, sink); err != nil {
		return err
	}
	log.WithField("output", opts.output).Info("Wrote output")
	return nil
}

func progressLogger(log logrus.FieldLogger, every int) func(shutter.Progress) {
	return func(p shutter.Progress) {
		done := p.Frame + 1
		if every <= 0 || (done%every != 0 && done != p.Total) {
			return
		}
		log.WithFields(logrus.Fields{
			"frame":   done,
			"total":   p.Total,
			"percent": fmt.Sprintf("%.1f", 100*float64(done)/float64(p.Total)),
		}).Info("Progress")
	}
}
