package damage

import "github.com/y-fujii/mfxvnc/internal/fb"

const (
	quadLeafArea  = 1024
	quadMaxWidth  = 2048
	quadMaxArea   = (2 << 22) / 3
	quadSlack     = 1024
	quadWasteNum  = 15
	quadWasteDen  = 16
)

// Quadtree recursively subdivides the frame until a region holds at
// most 1024 pixels, then computes the exact bounding box of differing
// pixels in that leaf. Sibling boxes are merged into one rectangle
// when the merge would not waste too much area; otherwise the smaller
// box is emitted immediately and the larger one is carried upward so
// it can still merge with its own sibling further up the tree.
type Quadtree struct{}

func (Quadtree) Compare(prev, next *fb.Buffer, emit func(fb.Rect)) {
	w, h := next.W, next.H
	if w == 0 || h == 0 {
		return
	}
	root := quadCompare(prev, next, fb.Rect{X0: 0, Y0: 0, X1: w, Y1: h}, emit)
	if !root.Empty() {
		emit(root)
	}
}

func quadCompare(prev, next *fb.Buffer, region fb.Rect, emit func(fb.Rect)) fb.Rect {
	if region.Area() <= quadLeafArea {
		return quadLeaf(prev, next, region)
	}

	var a, b fb.Rect
	if region.Width() >= region.Height() {
		mid := snap8(region.X0 + region.Width()/2)
		mid = clampMid(mid, region.X0, region.X1)
		a = fb.Rect{X0: region.X0, Y0: region.Y0, X1: mid, Y1: region.Y1}
		b = fb.Rect{X0: mid, Y0: region.Y0, X1: region.X1, Y1: region.Y1}
	} else {
		mid := snap8(region.Y0 + region.Height()/2)
		mid = clampMid(mid, region.Y0, region.Y1)
		a = fb.Rect{X0: region.X0, Y0: region.Y0, X1: region.X1, Y1: mid}
		b = fb.Rect{X0: region.X0, Y0: mid, X1: region.X1, Y1: region.Y1}
	}

	rA := quadCompare(prev, next, a, emit)
	rB := quadCompare(prev, next, b, emit)

	if m, ok := tryMerge(rA, rB); ok {
		return m
	}
	if rA.Area() <= rB.Area() {
		if !rA.Empty() {
			emit(rA)
		}
		return rB
	}
	if !rB.Empty() {
		emit(rB)
	}
	return rA
}

// tryMerge decides whether two sibling boxes should be reported as a
// single rectangle, per spec.md §4.1's three merge conditions.
func tryMerge(a, b fb.Rect) (fb.Rect, bool) {
	if a.Empty() {
		return b, true
	}
	if b.Empty() {
		return a, true
	}
	m := a.Union(b)
	if m.Width() > quadMaxWidth {
		return fb.Rect{}, false
	}
	if m.Area() > quadMaxArea {
		return fb.Rect{}, false
	}
	sum := a.Area() + b.Area()
	if m.Area() <= sum+quadSlack || quadWasteNum*m.Area() <= quadWasteDen*sum {
		return m, true
	}
	return fb.Rect{}, false
}

func quadLeaf(prev, next *fb.Buffer, region fb.Rect) fb.Rect {
	x0, y0, x1, y1 := region.X1, region.Y1, region.X0, region.Y0
	for y := region.Y0; y < region.Y1; y++ {
		for x := region.X0; x < region.X1; x++ {
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
		return fb.Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
	}
	return fb.Rect{}
}

func snap8(v int) int {
	return v - v%8
}

// clampMid keeps a split coordinate strictly inside (lo, hi) so both
// halves stay non-empty even after snapping to a multiple of 8.
func clampMid(mid, lo, hi int) int {
	if mid <= lo {
		mid = lo + 8
	}
	if mid >= hi {
		mid = hi - 8
	}
	if mid <= lo {
		mid = lo + 1
	}
	return mid
}
