package damage

import "github.com/y-fujii/mfxvnc/internal/fb"

const (
	stripWidth   = 64
	stripMaxRows = 128
	stripQuiet   = 8
)

// Strip processes vertical strips of width 64. Within a strip it
// searches for the first differing row, then accumulates a bounding
// box downward for up to 128 rows, tolerating up to 8 consecutive
// quiet (unchanged) rows before closing the rectangle. This merges
// vertically contiguous change (carets, scroll bands) into tall
// rectangles while capping horizontal merging at the strip width.
type Strip struct{}

func (Strip) Compare(prev, next *fb.Buffer, emit func(fb.Rect)) {
	w, h := next.W, next.H
	for bx := 0; bx < w; bx += stripWidth {
		bx1 := min(bx+stripWidth, w)
		y := 0
		for y < h {
			// Search: advance until a differing row is found.
			for y < h && !stripRowDiffers(prev, next, bx, bx1, y) {
				y++
			}
			if y >= h {
				break
			}
			y0 := y

			// Accumulate: expand the bounding box, tolerating quiet rows.
			quiet := 0
			x0, x1 := bx1, bx
			yLimit := min(y0+stripMaxRows, h)
			for y < yLimit {
				rowChanged := false
				for x := bx; x < bx1; x++ {
					p := prev.At(x, y)
					q := next.AtMasked(x, y)
					if p != q {
						rowChanged = true
						if x < x0 {
							x0 = x
						}
						if x+1 > x1 {
							x1 = x + 1
						}
						prev.Set(x, y, q)
					}
				}
				if rowChanged {
					quiet = 0
				} else {
					if quiet >= stripQuiet {
						break
					}
					quiet++
				}
				y++
			}
			y1 := y - quiet

			if y0 < y1 {
				emit(fb.Rect{X0: x0, Y0: y0, X1: x1, Y1: y1})
			}
		}
	}
}

func stripRowDiffers(prev, next *fb.Buffer, x0, x1, y int) bool {
	for x := x0; x < x1; x++ {
		if prev.At(x, y) != next.AtMasked(x, y) {
			return true
		}
	}
	return false
}
