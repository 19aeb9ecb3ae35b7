// Package viz is the terminal control surface for a running simulation.
//
// [Model] is a Bubble Tea model that steps the state on a frame timer and
// plots the latest energy, density and frequency-shift rows together with
// the particle trajectory. The preset picker in [RunInteractive] chooses a
// configuration before handing over to the live model.
//
// # Key Bindings
//
//	Space - Pause/Resume stepping
//	R     - Reset fields, particle and parameters
//	Tab   - Select the next tunable parameter
//	↑/↓   - Scale the selected parameter by ±5% within its range
//	+/-   - Playback speed, 0.5x to 2x
//	S     - Save a snapshot to the run store
//	?     - Show help overlay
package viz
