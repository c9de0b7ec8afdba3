// Package delayfn defines the family of delay weighting functions used by the
// rolling shutter effect.
//
// Each function maps a normalized axis position x in [0,1] and a normalized
// zero reference in [0,1] to a non-negative weight. The weight is later
// normalized by [profile.Profile] so that its maximum maps to the configured
// maximum delay.
//
// Available kinds:
//
//   - [KindAbs]:     |x-zero|
//   - [KindNegAbs]:  1 - |x-zero|
//   - [KindQuad]:    (x-zero)^2
//   - [KindNegQuad]: 1 - (x-zero)^2
//   - [KindLogQuad]: log_base(1 + (x-zero)^2), base defaults to 10
//   - [KindCos]:     1 - cos(2*pi*freq*(x-zero)), freq defaults to 1
//   - [KindNorm]:    1 - exp(-0.5*((x-zero)/sigma)^2), sigma defaults to 1
//   - [KindSaw]:     (x-zero) mod period, period defaults to 1/3
//   - [KindSin]:     sin(2*pi*freq*(x-zero))^2, freq defaults to 2
//
// The set is closed: [New] switches over every [Kind] and [Parse] rejects
// unknown names with [core.ErrConfiguration].
package delayfn
