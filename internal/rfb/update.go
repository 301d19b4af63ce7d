package rfb

import "encoding/binary"

const msgFramebufferUpdate = 0

// updateBuf accumulates one FramebufferUpdate message: a 4-byte header
// (message type, padding, rect count) followed by each rectangle's
// 8-byte position header and its encoder payload. The payload supplies
// its own 4-byte encoding-type field, so rectHeader writes only x, y,
// w, h; it does not know or care which encoding was chosen.
type updateBuf struct {
	buf       []byte
	nRectsPos int
	nRects    uint16
}

// reset starts a new message, keeping buf's capacity.
func (u *updateBuf) reset() {
	u.buf = u.buf[:0]
	u.buf = append(u.buf, msgFramebufferUpdate, 0, 0, 0)
	u.nRectsPos = 2
	u.nRects = 0
}

// rectHeader appends the 8-byte x/y/w/h rectangle position header. The
// encoding-type field and payload follow from a separate call to the
// chosen encoder's Encode.
func (u *updateBuf) rectHeader(x0, y0, x1, y1 int) {
	var hdr [8]byte
	binary.BigEndian.PutUint16(hdr[0:], uint16(x0))
	binary.BigEndian.PutUint16(hdr[2:], uint16(y0))
	binary.BigEndian.PutUint16(hdr[4:], uint16(x1-x0))
	binary.BigEndian.PutUint16(hdr[6:], uint16(y1-y0))
	u.buf = append(u.buf, hdr[:]...)
	u.nRects++
}

// appendPayload appends rectangle payload bytes produced by an
// encoder.
func (u *updateBuf) appendPayload(p []byte) {
	u.buf = append(u.buf, p...)
}

// finish backpatches the rectangle count and returns the message bytes,
// or nil if no rectangles were written (the caller should skip sending).
func (u *updateBuf) finish() []byte {
	if u.nRects == 0 {
		return nil
	}
	binary.BigEndian.PutUint16(u.buf[u.nRectsPos:], u.nRects)
	return u.buf
}
