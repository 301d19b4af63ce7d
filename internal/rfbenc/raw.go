package rfbenc

import (
	"encoding/binary"

	"github.com/y-fujii/mfxvnc/internal/fb"
)

// Raw is the trivial encoder: uncompressed BGRX pixels in row order,
// stride-copied straight out of the captured frame.
type Raw struct{}

func (Raw) Encode(out []byte, src *fb.Buffer, r fb.Rect) []byte {
	out = append(out, 0, 0, 0, 0) // encoding id: Raw.
	w, h := r.Width(), r.Height()
	base := len(out)
	out = ensureLenAppend(out, base+w*h*4)
	for y := 0; y < h; y++ {
		rowOff := base + y*w*4
		for x := 0; x < w; x++ {
			v := src.At(r.X0+x, r.Y0+y)
			binary.LittleEndian.PutUint32(out[rowOff+x*4:], v)
		}
	}
	return out
}

// ensureLenAppend grows out to length n, preserving existing content.
func ensureLenAppend(out []byte, n int) []byte {
	if len(out) >= n {
		return out
	}
	if cap(out) >= n {
		return out[:n]
	}
	grown := make([]byte, n)
	copy(grown, out)
	return grown
}
