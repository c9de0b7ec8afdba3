// Package videoio provides frame sources and sinks for the rolling shutter
// engine: ffmpeg process pipes for real video files, numbered PNG sequences,
// and in-memory streams.
//
// Every source implements [shutter.Source] and every sink implements
// [shutter.Sink].
package videoio
