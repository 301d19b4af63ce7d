package rfbenc

import (
	"math/rand"
	"testing"

	"github.com/y-fujii/mfxvnc/internal/fb"
	"github.com/y-fujii/mfxvnc/internal/rfb/decodetest"
)

func setRGB(buf *fb.Buffer, x, y int, r, g, b byte) {
	buf.Set(x, y, uint32(r)<<16|uint32(g)<<8|uint32(b))
}

func fillRandom(buf *fb.Buffer, rnd *rand.Rand) {
	for y := 0; y < buf.H; y++ {
		for x := 0; x < buf.W; x++ {
			setRGB(buf, x, y, byte(rnd.Intn(256)), byte(rnd.Intn(256)), byte(rnd.Intn(256)))
		}
	}
}

func wantRGB(buf *fb.Buffer, r fb.Rect) []byte {
	want := make([]byte, 0, r.Area()*3)
	for y := r.Y0; y < r.Y1; y++ {
		for x := r.X0; x < r.X1; x++ {
			rr, gg, bb := bgrxToRGB(buf.AtMasked(x, y))
			want = append(want, rr, gg, bb)
		}
	}
	return want
}

func TestRawEncodeStrideCopy(t *testing.T) {
	buf := fb.NewBuffer(4, 3)
	setRGB(buf, 1, 1, 0x11, 0x22, 0x33)

	var enc Raw
	out := enc.Encode(nil, buf, fb.Rect{X0: 0, Y0: 0, X1: 4, Y1: 3})

	if out[0] != 0 || out[1] != 0 || out[2] != 0 || out[3] != 0 {
		t.Fatalf("encoding id = % x, want raw (0,0,0,0)", out[:4])
	}
	if len(out) != 4+4*3*4 {
		t.Fatalf("len(out) = %d, want %d", len(out), 4+4*3*4)
	}
	// Raw ships packed BGRX memory order unmodified: low byte is blue.
	px := out[4+(1*4+1)*4:]
	if px[0] != 0x33 || px[1] != 0x22 || px[2] != 0x11 {
		t.Fatalf("pixel bytes = % x, want 33 22 11 xx", px[:4])
	}
}

func TestTightRawRoundTrip(t *testing.T) {
	buf := fb.NewBuffer(16, 12)
	rnd := rand.New(rand.NewSource(1))
	fillRandom(buf, rnd)

	r := fb.Rect{X0: 2, Y0: 1, X1: 14, Y1: 11}
	var enc TightRaw
	out := enc.Encode(nil, buf, r)

	var dec decodetest.Decoder
	got, err := dec.DecodeTight(out[4:], r.Width(), r.Height())
	if err != nil {
		t.Fatalf("DecodeTight: %v", err)
	}

	want := wantRGB(buf, r)
	if string(got.RGB) != string(want) {
		t.Fatalf("decoded pixels do not match source rectangle")
	}
}

func TestTightGradientRoundTrip(t *testing.T) {
	buf := fb.NewBuffer(20, 18)
	rnd := rand.New(rand.NewSource(2))
	fillRandom(buf, rnd)

	r := fb.Rect{X0: 0, Y0: 0, X1: 20, Y1: 18}
	var enc TightGradient
	out := enc.Encode(nil, buf, r)

	var dec decodetest.Decoder
	got, err := dec.DecodeTight(out[4:], r.Width(), r.Height())
	if err != nil {
		t.Fatalf("DecodeTight: %v", err)
	}

	want := wantRGB(buf, r)
	if string(got.RGB) != string(want) {
		t.Fatalf("decoded gradient pixels do not match source rectangle")
	}
}

// TestTightGradientPersistsAcrossCalls exercises the second rectangle
// on the same stream, where the zlib header must not be repeated and
// the deflate window carries state from the first call.
func TestTightGradientPersistsAcrossCalls(t *testing.T) {
	buf := fb.NewBuffer(24, 24)
	rnd := rand.New(rand.NewSource(3))
	fillRandom(buf, rnd)

	r1 := fb.Rect{X0: 0, Y0: 0, X1: 24, Y1: 12}
	r2 := fb.Rect{X0: 0, Y0: 12, X1: 24, Y1: 24}

	var enc TightGradient
	out1 := enc.Encode(nil, buf, r1)
	out2 := enc.Encode(nil, buf, r2)

	var dec decodetest.Decoder
	got1, err := dec.DecodeTight(out1[4:], r1.Width(), r1.Height())
	if err != nil {
		t.Fatalf("decode rect 1: %v", err)
	}
	if string(got1.RGB) != string(wantRGB(buf, r1)) {
		t.Fatalf("rect 1 pixels mismatch")
	}

	got2, err := dec.DecodeTight(out2[4:], r2.Width(), r2.Height())
	if err != nil {
		t.Fatalf("decode rect 2: %v", err)
	}
	if string(got2.RGB) != string(wantRGB(buf, r2)) {
		t.Fatalf("rect 2 pixels mismatch")
	}
}

// TestAdaptivePicksGradientOnFlatRegion covers S6: a uniform rectangle
// should make n_matches = n_pixels-1 and lin_ratio collapse to 0,
// which is never greater than raw_ratio, so the gradient stream wins.
func TestAdaptivePicksGradientOnFlatRegion(t *testing.T) {
	buf := fb.NewBuffer(32, 32)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			setRGB(buf, x, y, 0x40, 0x80, 0xc0)
		}
	}
	r := fb.Rect{X0: 0, Y0: 0, X1: 32, Y1: 32}

	var enc TightAdaptive
	out := enc.Encode(nil, buf, r)

	// Stream id 1 / filter id 2 is the gradient branch: control byte
	// is 0b0101_0000, filter byte is 2.
	if out[4] != 0b0101_0000 {
		t.Fatalf("control byte = %08b, want gradient stream (0101_0000)", out[4])
	}
	if out[5] != 2 {
		t.Fatalf("filter byte = %d, want 2 (gradient)", out[5])
	}

	var dec decodetest.Decoder
	got, err := dec.DecodeTight(out[4:], r.Width(), r.Height())
	if err != nil {
		t.Fatalf("DecodeTight: %v", err)
	}
	if string(got.RGB) != string(wantRGB(buf, r)) {
		t.Fatalf("decoded pixels do not match source rectangle")
	}
}

// TestAdaptivePicksRawOnNoisyRegion covers the opposite end: pixels
// with no spatial correlation leave n_matches near zero, so raw_ratio
// is about 1, while the signed residuals average |r| ~= 64, giving
// lin_ratio ~= (1/ln2+1)/8 + 6/8 ~= 1.055. raw_ratio < lin_ratio, so
// raw must win when the content is pure per-pixel noise.
func TestAdaptivePicksRawOnNoisyRegion(t *testing.T) {
	buf := fb.NewBuffer(32, 32)
	rnd := rand.New(rand.NewSource(42))
	fillRandom(buf, rnd)
	r := fb.Rect{X0: 0, Y0: 0, X1: 32, Y1: 32}

	var enc TightAdaptive
	out := enc.Encode(nil, buf, r)

	if out[4] != 0b0100_0000 {
		t.Fatalf("control byte = %08b, want raw stream (0100_0000)", out[4])
	}
	if out[5] != 0 {
		t.Fatalf("filter byte = %d, want 0 (copy)", out[5])
	}

	var dec decodetest.Decoder
	got, err := dec.DecodeTight(out[4:], r.Width(), r.Height())
	if err != nil {
		t.Fatalf("DecodeTight: %v", err)
	}
	if string(got.RGB) != string(wantRGB(buf, r)) {
		t.Fatalf("decoded pixels do not match source rectangle")
	}
}

func TestJpegRoundTripDimensions(t *testing.T) {
	// Smooth ramps: per-pixel random colour defeats JPEG's chroma
	// subsampling and can err by far more than the bound below.
	buf := fb.NewBuffer(16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			setRGB(buf, x, y, byte(x*16), byte(y*16), 0x80)
		}
	}
	r := fb.Rect{X0: 0, Y0: 0, X1: 16, Y1: 16}

	enc := &Jpeg{Quality: 90}
	out := enc.Encode(nil, buf, r)

	if out[4] != jpegSubencoding {
		t.Fatalf("subencoding byte = 0x%02x, want 0x%02x", out[4], jpegSubencoding)
	}

	var dec decodetest.Decoder
	got, err := dec.DecodeTight(out[4:], r.Width(), r.Height())
	if err != nil {
		t.Fatalf("DecodeTight: %v", err)
	}
	if got.W != 16 || got.H != 16 {
		t.Fatalf("decoded size = %dx%d, want 16x16", got.W, got.H)
	}
	// JPEG is lossy: check the decode succeeds and stays visually close
	// rather than demanding pixel-exact equality.
	want := wantRGB(buf, r)
	var maxDiff int
	for i := range got.RGB {
		d := int(got.RGB[i]) - int(want[i])
		if d < 0 {
			d = -d
		}
		if d > maxDiff {
			maxDiff = d
		}
	}
	if maxDiff > 64 {
		t.Fatalf("max per-channel diff = %d, too large for quality 90", maxDiff)
	}
}
