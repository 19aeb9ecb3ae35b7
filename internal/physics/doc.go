// Package physics provides the pointwise physics of the coupled model.
//
//   - [Potential]: interaction potential from density and its gradient
//   - [EField], [BField]: EM-like fields derived from the potential
//   - [Background]: the static external potential acting on the energy field
//
// Everything here is pure: no state, no allocation beyond returned slices.
package physics
