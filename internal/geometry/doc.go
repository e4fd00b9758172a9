// Package geometry reconciles logical (application unit) and physical (device
// pixel) surface sizes.
//
// Hosts describe a surface in one of two shapes:
//
//   - explicit physical size, when the host computes device pixels itself
//   - a device pixel ratio, when the host only exposes a scale factor
//
// Both are expressed as a [Descriptor] and normalized by [New] into a single
// canonical [Geometry] with whole-pixel physical dimensions. Both paths round
// with math.Round, so a ratio-derived geometry and the matching explicit one
// compare equal.
package geometry
