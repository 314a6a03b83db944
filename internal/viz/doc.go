// Package viz shows the stage in a terminal.
//
// Two surfaces are provided:
//
//   - [Surface] feeds frames into a Bubble Tea program driven by [App]: the
//     stage on the left and the control panel on the right.
//   - [PlainSurface] repaints a bare terminal with escape codes.
//
// # Key Bindings
//
//	Tab/↑/↓   - Select control
//	←/→       - Adjust by one step (Shift for ten)
//	Enter     - Edit message or toggle font family
//	P         - Next preset
//	R         - Reset to defaults
//	T         - Cycle panel themes
//	H/?       - Hide or show the panel
//	Q         - Quit
package viz
