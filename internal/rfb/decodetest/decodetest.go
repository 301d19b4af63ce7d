// Package decodetest is a minimal client-side decoder for the Tight
// rectangle encodings this module's server emits, adapted from a real
// RFB client's decode path. It exists only to let the encoder tests
// verify a round trip pixel-for-pixel; it is not part of the server.
package decodetest

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"io"

	"github.com/klauspost/compress/flate"
)

// Decoder tracks the four persistent deflate streams a Tight-encoding
// connection may use, mirroring the server's per-connection state: one
// continuous deflate bitstream per stream id, not four independent
// zlib streams, since the encoder Sync-flushes the same stream across
// every rectangle instead of starting a fresh one each time.
type Decoder struct {
	streams [4]*streamDecoder
}

// Rect is the pixel-exact output of decoding one Tight rectangle: RGB
// triples in row-major order.
type Rect struct {
	W, H int
	RGB  []byte
}

// jpegSubencoding must match internal/rfbenc's constant of the same
// name: the one-byte header identifying a JPEG sub-message, which
// carries no second (filter) byte and no deflate stream of its own.
const jpegSubencoding = 0x90

// DecodeTight consumes one Tight-encoded rectangle's payload (the
// bytes following the 4-byte encoding id in the wire format) and
// returns its RGB pixels. The wire format here is this module's own:
// a control byte (0x40 | streamID<<4) selecting one of four persistent
// deflate streams, followed by an explicit filter byte (0 = copy, 2 =
// gradient), except the JPEG sub-message, which replaces both with a
// single 0x90 header byte.
func (d *Decoder) DecodeTight(data []byte, w, h int) (*Rect, error) {
	r := bytes.NewReader(data)

	control, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("decodetest: read control byte: %w", err)
	}
	if control == jpegSubencoding {
		return d.decodeJpeg(r, w, h)
	}

	streamID := int((control >> 4) & 0x3)

	filterID, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("decodetest: read filter byte: %w", err)
	}

	switch filterID {
	case 0:
		payload, err := d.readCompressedData(r, streamID, w*h*3)
		if err != nil {
			return nil, fmt.Errorf("decodetest (copy): %w", err)
		}
		return &Rect{W: w, H: h, RGB: payload}, nil
	case 2:
		return d.decodeGradient(r, streamID, w, h)
	default:
		return nil, fmt.Errorf("decodetest: unsupported filter id %d", filterID)
	}
}

func (d *Decoder) decodeGradient(r *bytes.Reader, streamID, w, h int) (*Rect, error) {
	residual, err := d.readCompressedData(r, streamID, w*h*3)
	if err != nil {
		return nil, fmt.Errorf("decodetest (gradient): %w", err)
	}

	pix := make([]byte, w*h*3)
	at := func(x, y, c int) byte { return pix[(y*w+x)*3+c] }

	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < 3; c++ {
				var n, wv, nw int
				if y > 0 {
					n = int(at(x, y-1, c))
				}
				if x > 0 {
					wv = int(at(x-1, y, c))
				}
				if x > 0 && y > 0 {
					nw = int(at(x-1, y-1, c))
				}
				pred := n + wv - nw
				if pred < 0 {
					pred = 0
				} else if pred > 255 {
					pred = 255
				}
				pix[(y*w+x)*3+c] = byte(pred) + residual[i]
				i++
			}
		}
	}
	return &Rect{W: w, H: h, RGB: pix}, nil
}

func (d *Decoder) decodeJpeg(r *bytes.Reader, w, h int) (*Rect, error) {
	n, err := readCompactLength(r)
	if err != nil {
		return nil, fmt.Errorf("decodetest (jpeg): %w", err)
	}
	jpegBytes := make([]byte, n)
	if _, err := io.ReadFull(r, jpegBytes); err != nil {
		return nil, fmt.Errorf("decodetest (jpeg): read payload: %w", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(jpegBytes))
	if err != nil {
		return nil, fmt.Errorf("decodetest (jpeg): %w", err)
	}
	pix := make([]byte, w*h*3)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			rr, gg, bb, _ := img.At(x, y).RGBA()
			pix[i+0] = byte(rr >> 8)
			pix[i+1] = byte(gg >> 8)
			pix[i+2] = byte(bb >> 8)
			i += 3
		}
	}
	return &Rect{W: w, H: h, RGB: pix}, nil
}

// redirectReader lets a persistent flate.Reader keep consuming from a
// sliding window of compressed bytes that gets replaced wholesale
// before every call, the mirror image of the server's redirectWriter
// in internal/tight: the underlying deflate state (history, Huffman
// tables) survives across calls, only the byte source changes.
type redirectReader struct {
	buf []byte
}

func (r *redirectReader) Read(p []byte) (int, error) {
	if len(r.buf) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

// streamDecoder is one persistent deflate stream: the server writes a
// single continuous Sync-flushed bitstream per stream id across the
// whole connection, so the decoder side must stay on one flate.Reader
// for the same reason, rather than treating each rectangle's payload
// as an independent compressed blob.
type streamDecoder struct {
	rr    *redirectReader
	fr    io.ReadCloser
	first bool
}

func newStreamDecoder() *streamDecoder {
	rr := &redirectReader{}
	return &streamDecoder{rr: rr, fr: flate.NewReader(rr), first: true}
}

// readCompressedData reads a compact length, then that many bytes of
// deflate-compressed data, from the persistent stream identified by
// stream. The first chunk ever seen on a stream carries a leading
// 0x78 0x01 zlib header (internal/tight.Compressor writes it once,
// before any deflate bytes); it is stripped here since the reader
// underneath is a raw flate.Reader, not a zlib one.
func (d *Decoder) readCompressedData(r *bytes.Reader, stream int, expectLen int) ([]byte, error) {
	n, err := readCompactLength(r)
	if err != nil {
		return nil, err
	}
	compressed := make([]byte, n)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, fmt.Errorf("read compressed data: %w", err)
	}

	sd := d.streams[stream]
	if sd == nil {
		sd = newStreamDecoder()
		d.streams[stream] = sd
	}
	if sd.first {
		if len(compressed) < 2 || compressed[0] != 0x78 || compressed[1] != 0x01 {
			return nil, fmt.Errorf("decodetest: stream %d missing leading zlib header", stream)
		}
		compressed = compressed[2:]
		sd.first = false
	}
	sd.rr.buf = compressed

	// Read exactly the known decompressed length. A Sync-flushed
	// deflate stream has no final-block marker, so reading even one
	// byte past expectLen would fault on the missing next block
	// header; stopping exactly at expectLen avoids ever touching that
	// boundary.
	out := make([]byte, expectLen)
	if _, err := io.ReadFull(sd.fr, out); err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	return out, nil
}

func readCompactLength(r *bytes.Reader) (int, error) {
	length := 0
	for i := 0; i < 3; i++ {
		part, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("read compact length part %d: %w", i, err)
		}
		if i == 2 {
			// The third byte carries a full 8 bits, with no continuation flag.
			length |= int(part) << 14
			break
		}
		length |= int(part&0x7f) << (uint(i) * 7)
		if part&0x80 == 0 {
			break
		}
	}
	return length, nil
}
