// Package interp provides the temporal blend used to reconstruct a delayed
// row from the two buffered frames that bracket its fractional delay.
//
//   - [Lerp]:      scalar linear interpolation
//   - [LerpBlock]: the same over a whole row, vectorized through algo-vecmath
package interp
