package rfbenc

import (
	"github.com/y-fujii/mfxvnc/internal/fb"
	"github.com/y-fujii/mfxvnc/internal/tight"
)

// TightRaw compresses the rectangle's RGB-packed pixels (BGR-swapped,
// alpha dropped) through a single Tight deflate stream with the copy
// filter.
type TightRaw struct {
	scratch []byte
	comp    tight.Compressor
}

func (e *TightRaw) Encode(out []byte, src *fb.Buffer, r fb.Rect) []byte {
	out = append(out, 0, 0, 0, 7) // encoding id: Tight.
	e.scratch = packRGB(e.scratch, src, r)
	return e.comp.Compress(out, e.scratch, 0, 0)
}

// packRGB writes the rectangle's pixels into dst as tightly packed
// R,G,B triples, growing dst (preserving its capacity) as needed.
func packRGB(dst []byte, src *fb.Buffer, r fb.Rect) []byte {
	w, h := r.Width(), r.Height()
	dst = ensureLen(dst, w*h*3)
	i := 0
	for y := 0; y < h; y++ {
		sy := r.Y0 + y
		for x := 0; x < w; x++ {
			rr, g, b := bgrxToRGB(src.AtMasked(r.X0+x, sy))
			dst[i+0] = rr
			dst[i+1] = g
			dst[i+2] = b
			i += 3
		}
	}
	return dst
}
