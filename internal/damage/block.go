package damage

import "github.com/y-fujii/mfxvnc/internal/fb"

const blockSize = 64

// Block tiles the frame into 64x64 blocks (edge blocks truncated) and
// emits the tight bounding box of differing pixels within each block
// that has any. Cheap, constant memory, many small rects for scattered
// change.
type Block struct{}

func (Block) Compare(prev, next *fb.Buffer, emit func(fb.Rect)) {
	w, h := next.W, next.H
	for by := 0; by < h; by += blockSize {
		for bx := 0; bx < w; bx += blockSize {
			bx1 := min(bx+blockSize, w)
			by1 := min(by+blockSize, h)

			x0, y0 := bx1, by1
			x1, y1 := bx, by
			for y := by; y < by1; y++ {
				for x := bx; x < bx1; x++ {
					p := prev.At(x, y)
					q := next.AtMasked(x, y)
					if p != q {
						if x < x0 {
							x0 = x
						}
						if y < y0 {
							y0 = y
						}
						if x+1 > x1 {
							x1 = x + 1
						}
						if y+1 > y1 {
							y1 = y + 1
						}
						prev.Set(x, y, q)
					}
				}
			}
			if x0 < x1 && y0 < y1 {
				emit(fb.Rect{X0: x0, Y0: y0, X1: x1, Y1: y1})
			}
		}
	}
}
