// Package caps turns a message into a randomly capitalised, case-coloured
// rendering.
//
// Every letter of the message is drawn independently: with probability p it
// is shown uppercase in the uppercase colour, otherwise lowercase in the
// lowercase colour. Characters without a case distinction (digits,
// punctuation, whitespace, most non-Latin scripts) pass through unstyled.
//
//   - [Render]: one draw over the shared default [Engine]
//   - [Engine]: a draw source that can be seeded for reproducible output
//   - [Output]: the ordered runs, convertible to HTML, ANSI or plain text
//
// # Example
//
//	out := caps.Render(caps.Config{
//	    Message:     "Una rosa blanca de metal",
//	    Probability: 0.5,
//	    Uppercase:   "#ffffff",
//	    Lowercase:   "#ff0000",
//	})
//	surface.innerHTML = out.HTML()
//
// # Thread Safety
//
// Engine is safe for concurrent use; draws are serialised on an internal
// mutex. Output values are immutable once returned.
package caps
