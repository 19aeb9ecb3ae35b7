// Package dynamo holds the state store for the coupled field–particle model.
//
// The package defines the data the integrators read and write:
//
//   - [Grid]: fixed spatial coordinates
//   - [TimeAxis]: fixed time coordinates
//   - [Field]: a T×L history arena, one row per time index
//   - [Series]: a length-T history for scalar quantities
//   - [State]: all histories plus the particle and the step cursor
//   - [Params]: the tunable coefficients and fixed constants
//
// # Example
//
//	grid, _ := dynamo.NewGrid(100, 1)
//	axis, _ := dynamo.NewTimeAxis(200, 0.01)
//	params := dynamo.DefaultParams()
//	st := dynamo.NewState(grid, axis, dynamo.DefaultInitial(), &params)
//
// # Thread Safety
//
// State is NOT thread-safe. A single driver owns it and writes each row exactly
// once, in increasing time order.
package dynamo
