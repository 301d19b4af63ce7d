package rfbenc

import (
	"github.com/y-fujii/mfxvnc/internal/fb"
	"github.com/y-fujii/mfxvnc/internal/tight"
)

// TightGradient compresses the rectangle's gradient-filtered residual
// (predictor clamp(N+W-NW, 0, 255) per channel) through a single Tight
// deflate stream.
type TightGradient struct {
	scratch []byte
	comp    tight.Compressor
}

func (e *TightGradient) Encode(out []byte, src *fb.Buffer, r fb.Rect) []byte {
	out = append(out, 0, 0, 0, 7) // encoding id: Tight.
	e.scratch = packGradient(e.scratch, src, r)
	return e.comp.Compress(out, e.scratch, 0, 2)
}

// packGradient writes the rectangle's gradient residual into dst as
// R,G,B triples. Boundary pixels treat the missing neighbour as zero:
// the top row's predictor is just the left neighbour (zero at x=0),
// the left column's predictor is just the above neighbour (zero at
// y=0). Subtraction wraps as unsigned 8-bit arithmetic.
func packGradient(dst []byte, src *fb.Buffer, r fb.Rect) []byte {
	w, h := r.Width(), r.Height()
	dst = ensureLen(dst, w*h*3)
	i := 0
	for y := 0; y < h; y++ {
		sy := r.Y0 + y
		for x := 0; x < w; x++ {
			sx := r.X0 + x
			pr, pg, pb := bgrxToRGB(src.AtMasked(sx, sy))

			var predR, predG, predB byte
			switch {
			case x == 0 && y == 0:
				predR, predG, predB = 0, 0, 0
			case y == 0:
				predR, predG, predB = bgrxToRGB(src.AtMasked(sx-1, sy))
			case x == 0:
				predR, predG, predB = bgrxToRGB(src.AtMasked(sx, sy-1))
			default:
				nR, nG, nB := bgrxToRGB(src.AtMasked(sx, sy-1))
				wR, wG, wB := bgrxToRGB(src.AtMasked(sx-1, sy))
				nwR, nwG, nwB := bgrxToRGB(src.AtMasked(sx-1, sy-1))
				predR = clampPredictor(nR, wR, nwR)
				predG = clampPredictor(nG, wG, nwG)
				predB = clampPredictor(nB, wB, nwB)
			}

			dst[i+0] = pr - predR
			dst[i+1] = pg - predG
			dst[i+2] = pb - predB
			i += 3
		}
	}
	return dst
}

func clampPredictor(n, w, nw byte) byte {
	v := int(n) + int(w) - int(nw)
	if v < 0 {
		v = 0
	} else if v > 255 {
		v = 255
	}
	return byte(v)
}
