// Package controllers provides parameter controllers for sim.Simulator.
//
// A controller runs before every step and may rewrite the tunable fields of
// the parameter record, standing in for the interactive sliders:
//
//   - [PID]: feedback on the particle position through one tunable parameter
//   - [None]: leaves parameters alone
//
// Values written through [dynamo.Params.SetParam] are clamped to the
// control ranges, so a controller can never push a parameter out of them.
package controllers
