package rfbenc

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/y-fujii/mfxvnc/internal/fb"
	"github.com/y-fujii/mfxvnc/internal/tight"
)

// jpegSubencoding is the Tight compact-length variant that carries a
// JPEG stream instead of a filtered+deflated one: no filter byte, the
// compact length frames the raw JPEG byte count directly.
const jpegSubencoding = 0x90

// Jpeg encodes the rectangle as a baseline JPEG image framed in a
// Tight sub-message. Unlike the deflate streams it has no persistent
// state across rectangles; every call is an independent JPEG stream.
type Jpeg struct {
	Quality int
	img     *image.NRGBA
	buf     bytes.Buffer
}

func (e *Jpeg) Encode(out []byte, src *fb.Buffer, r fb.Rect) []byte {
	out = append(out, 0, 0, 0, 7) // encoding id: Tight.
	out = append(out, jpegSubencoding)

	w, h := r.Width(), r.Height()
	if e.img == nil || e.img.Rect.Dx() != w || e.img.Rect.Dy() != h {
		e.img = image.NewNRGBA(image.Rect(0, 0, w, h))
	}
	for y := 0; y < h; y++ {
		sy := r.Y0 + y
		for x := 0; x < w; x++ {
			rr, g, b := bgrxToRGB(src.AtMasked(r.X0+x, sy))
			e.img.SetNRGBA(x, y, color.NRGBA{R: rr, G: g, B: b, A: 0xff})
		}
	}

	quality := e.Quality
	if quality == 0 {
		quality = jpeg.DefaultQuality
	}
	e.buf.Reset()
	if err := jpeg.Encode(&e.buf, e.img, &jpeg.Options{Quality: quality}); err != nil {
		// image/jpeg only fails on an unencodable image or a writer
		// error; an in-memory NRGBA into a bytes.Buffer never hits one.
		panic(err)
	}

	n := e.buf.Len()
	if n >= 1<<22 {
		panic("rfbenc: jpeg payload exceeds 22-bit Tight length")
	}
	lenIdx := len(out)
	out = append(out, 0, 0, 0)
	tight.PutCompactLength(out[lenIdx:lenIdx+3], n)
	return append(out, e.buf.Bytes()...)
}
