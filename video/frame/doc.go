// Package frame provides the pixel grid the rolling shutter engine works on.
//
// A [Frame] stores interleaved channel intensities as float64 in row-major
// order. Intensities keep the 8-bit range of the source (0..255) but are
// processed in floating point so repeated blending does not accumulate
// rounding error. Conversion back to 8-bit happens only at the edges, in
// [Frame.WriteRGB] and [Frame.Image].
package frame
