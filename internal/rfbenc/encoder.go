// Package rfbenc implements the RFB rectangle encoders: Raw, and the
// Tight family (raw/gradient/adaptive filter selection, plus an
// optional JPEG sub-encoding). Each encoder writes its own 4-byte
// encoding-id followed by the rectangle payload; the session driver
// writes only the x,y,w,h position ahead of it.
package rfbenc

import "github.com/y-fujii/mfxvnc/internal/fb"

// Encoder turns one rectangle of the current framebuffer into wire
// bytes appended to out, returning the extended slice. Implementations
// read only from src; none read or write the detector's prev buffer.
type Encoder interface {
	Encode(out []byte, src *fb.Buffer, r fb.Rect) []byte
}

// ensureLen grows buf to length n, reusing its backing array when it
// already has enough capacity. Capacity is never released, matching
// the per-connection scratch-buffer arena the Tight codec path keeps
// for the lifetime of a connection.
func ensureLen(buf []byte, n int) []byte {
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]byte, n)
}

// bgrxToRGB extracts the R,G,B channels (dropping the undefined high
// byte) from a packed BGRX pixel, in that output order. Every Tight
// sub-encoder performs this same swap-and-drop before filtering.
func bgrxToRGB(v uint32) (r, g, b byte) {
	return byte(v >> 16), byte(v >> 8), byte(v)
}
