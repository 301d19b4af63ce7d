package rfb

import (
	"fmt"

	"github.com/y-fujii/mfxvnc/internal/damage"
	"github.com/y-fujii/mfxvnc/internal/rfbenc"
	"github.com/y-fujii/mfxvnc/pkg/encodings"
)

// jpegDefaultQuality is the fixed JPEG quality every Jpeg encoder is
// built with; there is no per-connection quality negotiation.
const jpegDefaultQuality = 85

// NewDetector returns the damage detector for the named strategy.
// Detectors carry no per-connection state, so callers may share one
// instance across every accepted connection.
func NewDetector(name string) (damage.Detector, error) {
	switch name {
	case "block":
		return damage.Block{}, nil
	case "strip":
		return damage.Strip{}, nil
	case "quadtree":
		return damage.Quadtree{}, nil
	default:
		return nil, fmt.Errorf("rfb: unknown detector %q", name)
	}
}

// newEncoder builds a fresh rectangle encoder for the named strategy,
// plus the wire encoding-type it reports in logs. Tight-family
// encoders hold a persistent deflate stream, so each accepted
// connection gets its own instance; callers must not share one across
// connections.
func newEncoder(name string) (rfbenc.Encoder, encodings.Encoding, error) {
	switch name {
	case "raw":
		return rfbenc.Raw{}, encodings.Raw, nil
	case "tight-raw":
		return &rfbenc.TightRaw{}, encodings.Tight, nil
	case "tight-gradient":
		return &rfbenc.TightGradient{}, encodings.Tight, nil
	case "tight-adaptive":
		return &rfbenc.TightAdaptive{}, encodings.Tight, nil
	case "tight-jpeg":
		return &rfbenc.Jpeg{Quality: jpegDefaultQuality}, encodings.Tight, nil
	default:
		return nil, 0, fmt.Errorf("rfb: unknown encoder %q", name)
	}
}
