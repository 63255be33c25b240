// Package text renders figure labels with a deterministic font stack.
//
// Fonts are embedded or registered explicitly; there is no filesystem
// font discovery, so the same test renders the same pixels on every
// machine. Shaping (glyph selection and advances) goes through
// go-text/typesetting; glyph rasterization goes through
// golang.org/x/image/font/opentype, with hinting and antialiasing
// controlled by the rc parameters.
//
// Rasterized glyph masks and measured string widths are cached. Both
// caches key on the hinting and antialias state, and the harness
// clears them between tests via ClearCaches.
package text
