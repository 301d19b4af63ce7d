// Package fb holds the BGRX framebuffer and rectangle types shared by
// the damage detector and the rectangle encoders.
package fb

import "encoding/binary"

// colorMask zeroes the undefined high (alpha/X) byte of a BGRX pixel.
const colorMask = 0x00ffffff

// Rect is a half-open axis-aligned rectangle [X0,X1) x [Y0,Y1).
type Rect struct {
	X0, Y0, X1, Y1 int
}

// Width returns X1-X0.
func (r Rect) Width() int { return r.X1 - r.X0 }

// Height returns Y1-Y0.
func (r Rect) Height() int { return r.Y1 - r.Y0 }

// Area returns Width()*Height().
func (r Rect) Area() int { return r.Width() * r.Height() }

// Empty reports whether the rectangle contains no pixels.
func (r Rect) Empty() bool { return r.X0 >= r.X1 || r.Y0 >= r.Y1 }

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	u := Rect{X0: r.X0, Y0: r.Y0, X1: r.X1, Y1: r.Y1}
	if o.X0 < u.X0 {
		u.X0 = o.X0
	}
	if o.Y0 < u.Y0 {
		u.Y0 = o.Y0
	}
	if o.X1 > u.X1 {
		u.X1 = o.X1
	}
	if o.Y1 > u.Y1 {
		u.Y1 = o.Y1
	}
	return u
}

// Buffer is a packed BGRX framebuffer: Stride pixels per row, W<=Stride
// columns used, H rows. Pix is exactly Stride*H*4 bytes long.
type Buffer struct {
	Pix    []byte
	Stride int
	W, H   int
}

// NewBuffer allocates a zeroed buffer of the given size, stride==w.
func NewBuffer(w, h int) *Buffer {
	return &Buffer{Pix: make([]byte, w*h*4), Stride: w, W: w, H: h}
}

// View wraps capture memory without copying; the caller guarantees the
// slice outlives the Buffer's use (spec: valid until the next Frame()
// call).
func View(pix []byte, stride, w, h int) *Buffer {
	return &Buffer{Pix: pix, Stride: stride, W: w, H: h}
}

// At returns the raw (unmasked) 32-bit BGRX pixel at (x,y).
func (b *Buffer) At(x, y int) uint32 {
	i := (y*b.Stride + x) * 4
	return binary.LittleEndian.Uint32(b.Pix[i : i+4])
}

// AtMasked returns the pixel at (x,y) with the high byte zeroed.
func (b *Buffer) AtMasked(x, y int) uint32 {
	return b.At(x, y) & colorMask
}

// Set writes a raw 32-bit BGRX pixel at (x,y).
func (b *Buffer) Set(x, y int, v uint32) {
	i := (y*b.Stride + x) * 4
	binary.LittleEndian.PutUint32(b.Pix[i:i+4], v)
}

// SameSize reports whether b and o have equal W and H.
func (b *Buffer) SameSize(o *Buffer) bool {
	return b.W == o.W && b.H == o.H
}
