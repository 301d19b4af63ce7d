package rfbenc

import (
	"math"

	"github.com/y-fujii/mfxvnc/internal/fb"
	"github.com/y-fujii/mfxvnc/internal/tight"
)

// TightAdaptive computes both the raw and gradient-filtered encodings
// of a rectangle in one pass, estimates each stream's deflate cost,
// and emits whichever is cheaper: raw through stream 0 with the copy
// filter, gradient through stream 1 with the gradient filter, so the
// two content classes never pollute one another's dictionary.
type TightAdaptive struct {
	rawScratch []byte
	linScratch []byte
	comp       tight.Compressor
}

func (e *TightAdaptive) Encode(out []byte, src *fb.Buffer, r fb.Rect) []byte {
	out = append(out, 0, 0, 0, 7) // encoding id: Tight.

	rawBuf, linBuf, nMatches, sumL1 := packAdaptive(e.rawScratch, e.linScratch, src, r)
	e.rawScratch, e.linScratch = rawBuf, linBuf

	nPixels := r.Width() * r.Height()
	rawRatio := float64(nPixels-nMatches) / float64(nPixels)

	sum := sumL1[0] + sumL1[1] + sumL1[2]
	linRatio := 0.0
	if sum != 0 {
		mean := float64(sum) / float64(3*nPixels)
		linRatio = (1.0/math.Ln2+1.0)/8.0 + (1.0/8.0)*math.Log2(mean)
	}

	if rawRatio < linRatio {
		return e.comp.Compress(out, rawBuf, 0, 0)
	}
	return e.comp.Compress(out, linBuf, 1, 2)
}

// packAdaptive fills rawDst with the rectangle's plain R,G,B pixels and
// linDst with its gradient residual, while accumulating the match
// count and per-channel L1 residual sum used by the cost heuristic.
// The very first pixel (no left or above neighbour at all) contributes
// to neither statistic, matching the Tight-encoding convention this
// heuristic is drawn from.
func packAdaptive(rawDst, linDst []byte, src *fb.Buffer, r fb.Rect) (raw, lin []byte, nMatches int, sumL1 [3]int) {
	w, h := r.Width(), r.Height()
	rawDst = ensureLen(rawDst, w*h*3)
	linDst = ensureLen(linDst, w*h*3)

	i := 0
	for y := 0; y < h; y++ {
		sy := r.Y0 + y
		for x := 0; x < w; x++ {
			sx := r.X0 + x
			pr, pg, pb := bgrxToRGB(src.AtMasked(sx, sy))
			rawDst[i+0], rawDst[i+1], rawDst[i+2] = pr, pg, pb

			if x == 0 && y == 0 {
				linDst[i+0], linDst[i+1], linDst[i+2] = pr, pg, pb
				i += 3
				continue
			}

			var predR, predG, predB byte
			var match bool
			switch {
			case y == 0:
				wR, wG, wB := bgrxToRGB(src.AtMasked(sx-1, sy))
				predR, predG, predB = wR, wG, wB
				match = pr == wR && pg == wG && pb == wB
			case x == 0:
				nR, nG, nB := bgrxToRGB(src.AtMasked(sx, sy-1))
				predR, predG, predB = nR, nG, nB
				match = pr == nR && pg == nG && pb == nB
			default:
				nR, nG, nB := bgrxToRGB(src.AtMasked(sx, sy-1))
				wR, wG, wB := bgrxToRGB(src.AtMasked(sx-1, sy))
				nwR, nwG, nwB := bgrxToRGB(src.AtMasked(sx-1, sy-1))
				predR = clampPredictor(nR, wR, nwR)
				predG = clampPredictor(nG, wG, nwG)
				predB = clampPredictor(nB, wB, nwB)
				match = (pr == nR && pg == nG && pb == nB) || (pr == wR && pg == wG && pb == wB)
			}

			dR, dG, dB := pr-predR, pg-predG, pb-predB
			linDst[i+0], linDst[i+1], linDst[i+2] = dR, dG, dB

			if match {
				nMatches++
			}
			sumL1[0] += absResidual(dR)
			sumL1[1] += absResidual(dG)
			sumL1[2] += absResidual(dB)

			i += 3
		}
	}
	return rawDst, linDst, nMatches, sumL1
}

// absResidual treats v as a signed 8-bit wraparound residual and
// returns |v|.
func absResidual(v byte) int {
	s := int(int8(v))
	if s < 0 {
		s = -s
	}
	return s
}
