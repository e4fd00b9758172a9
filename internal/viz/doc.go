// Package viz is the terminal host for the fluid engine.
//
// The terminal is treated as a drawing surface: each character cell is one
// logical unit wide and two tall, and each braille dot is one physical
// pixel, so a cell holds 2x4 physical pixels. The engine is resized with an
// explicit physical size whenever the terminal changes.
//
//   - [Model]: live view driving one engine from a Bubble Tea tick
//   - [Canvas]: braille canvas painted from the engine framebuffer
//   - [RunInteractive]: preset picker in front of the live view
//
// # Key Bindings
//
//	Space - Pause/Resume
//	C     - Cycle color preset
//	D     - Cycle debug view
//	?     - Show help overlay
//	Q     - Quit
package viz
