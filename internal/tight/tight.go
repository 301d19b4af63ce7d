// Package tight implements the Tight encoding's streaming compressor:
// a deflate state whose sliding window is shared across every
// rectangle sent on one connection, framed into Tight sub-messages.
package tight

import (
	"github.com/klauspost/compress/flate"
)

// compressionLevel matches the Tight-encoding convention of a fast,
// greedy-parse deflate setting rather than maximum ratio.
const compressionLevel = 1

// maxPayloadLen is one past the largest value the 3-byte compact length
// field can hold (22 bits); payloads must be strictly shorter.
const maxPayloadLen = 1 << 22

// streamState is one of the (up to four) independent deflate contexts
// a Tight compressor may hold, one per stream_id actually used.
type streamState struct {
	w     *flate.Writer
	dst   *redirectWriter
	first bool
}

func newStreamState() *streamState {
	dst := &redirectWriter{}
	w, err := flate.NewWriter(dst, compressionLevel)
	if err != nil {
		// Only returns an error for an out-of-range level; ours is
		// constant and valid.
		panic(err)
	}
	return &streamState{w: w, dst: dst, first: true}
}

// Compressor holds per-connection Tight compression state: up to four
// persistent deflate streams, lazily created on first use, so the
// encoder's sliding window, and hence its compression ratio, improves
// across the lifetime of the connection.
type Compressor struct {
	streams [4]*streamState
}

// Compress appends one Tight sub-message for src to out and returns the
// extended slice. streamID selects which of the four persistent
// deflate contexts to use; filterID is the Tight filter byte (0 =
// copy, 2 = gradient) written verbatim into the sub-message.
func (c *Compressor) Compress(out []byte, src []byte, streamID, filterID byte) []byte {
	if streamID > 3 {
		panic("tight: stream id out of range")
	}
	out = append(out, 0b0100_0000|(streamID<<4))
	out = append(out, filterID)

	if len(src) < 12 {
		return append(out, src...)
	}

	if c.streams[streamID] == nil {
		c.streams[streamID] = newStreamState()
	}
	st := c.streams[streamID]

	lenIdx := len(out)
	out = append(out, 0, 0, 0)
	payloadStart := len(out)

	if st.first {
		out = append(out, 0x78, 0x01)
		st.first = false
	}

	st.dst.dst = st.dst.dst[:0]
	if _, err := st.w.Write(src); err != nil {
		panic(err)
	}
	if err := st.w.Flush(); err != nil {
		panic(err)
	}
	out = append(out, st.dst.dst...)

	payloadLen := len(out) - payloadStart
	if payloadLen >= maxPayloadLen {
		panic("tight: compressed payload exceeds 22-bit length field")
	}
	PutCompactLength(out[lenIdx:lenIdx+3], payloadLen)

	return out
}

// PutCompactLength writes L using the Tight compact-length encoding:
// byte0 = 0x80|(L&0x7f), byte1 = 0x80|((L>>7)&0x7f), byte2 = (L>>14)&0xff.
// Exported so the JPEG sub-encoding (which frames its own uncompressed
// byte stream the same way) can reuse it without going through a
// deflate stream.
func PutCompactLength(dst []byte, l int) {
	dst[0] = 0x80 | byte(l&0x7f)
	dst[1] = 0x80 | byte((l>>7)&0x7f)
	dst[2] = byte((l >> 14) & 0xff)
}
