/*
Package shutter applies a synthetic rolling shutter to a video stream.

Every row (or column, with a horizontal axis) of an output frame is taken
from a different moment in the past. A delay function from package delayfn
maps the row's normalized position to a weight, package profile scales the
weights so the largest equals the configured maximum delay, and the engine
blends the two buffered frames that bracket each row's fractional delay.

The pipeline is strictly sequential: Run pulls one frame from a Source,
pushes it into a ring of the last maxSteps+2 frames, assembles one output
frame and writes it to a Sink. After the source is exhausted the engine
keeps emitting maxSteps frames, repeating the last input, so the most
delayed rows catch up with the end of the stream.

# Basic Usage

	src, _ := videoio.NewMemorySource(30, frames)
	cfg := shutter.Config{Zero: 0.5, Function: "quad", MaxDelayMs: 250}

	e, err := shutter.New(cfg, src.Info(), shutter.WithLogger(logrus.StandardLogger()))
	if err != nil {
		return err // configuration errors wrap core.ErrConfiguration
	}
	sink := &videoio.MemorySink{}
	if err := e.Run(ctx, src, sink); err != nil {
		return err
	}
	return sink.Close()
*/
package shutter
