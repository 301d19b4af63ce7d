/*
Package encodings holds the wire identifiers for the RFB rectangle
encodings this server is able to emit.

https://tools.ietf.org/html/rfc6143#section-7.7
*/
package encodings

// Encoding identifies an RFB rectangle encoding on the wire.
type Encoding int32

const (
	// Raw is uncompressed pixel data in row order.
	Raw Encoding = 0
	// Tight carries a zlib/deflate-compressed, optionally filtered
	// payload; see internal/tight and internal/rfbenc.
	Tight Encoding = 7
)

// String implements fmt.Stringer.
func (e Encoding) String() string {
	switch e {
	case Raw:
		return "Raw"
	case Tight:
		return "Tight"
	default:
		return "Unknown"
	}
}
