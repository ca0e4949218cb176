// Package viz provides the terminal lattice laboratory.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [App]: the laboratory, a deformed lattice next to a stats sidebar
//   - [Canvas]: Braille-based surface the renderer draws frames into
//   - Theme selection with 5 built-in color schemes
//
// Frames are drawn by a render loop owned by a supervisor. Any change to the
// knot list, density, branch, theme or terminal size stops the running loop
// and starts exactly one replacement; ticks scheduled for the old loop are
// dropped by generation.
//
// # Key Bindings
//
//	P/E/N - Inject a proton, electron or neutron at a random position
//	X     - Remove the most recent knot
//	C     - Clear all knots
//	R     - Reset to the configured scene
//	B     - Toggle the R-QNT-C / R-QNT-V branch
//	+/-   - Lattice density
//	T     - Cycle color themes
//	G     - Record a GIF of the current scene
//	Space - Pause/Resume
//	?     - Show full help
package viz
