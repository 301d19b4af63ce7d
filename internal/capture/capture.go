// Package capture defines the display-capture contract the session
// driver consumes. Real platform capture is out of scope; this package
// carries only the interface and a deterministic synthetic source used
// by tests and smoke-mode runs.
package capture

import "errors"

// ErrWouldBlock is returned by Source.Frame when no new frame is ready
// yet; the caller should sleep briefly and retry.
var ErrWouldBlock = errors.New("capture: would block")

// Source produces framebuffer frames. Frame returns a tightly packed
// BGRX buffer (len(data) == stride*h*4) valid only until the next call
// to Frame, or ErrWouldBlock, or a fatal error.
type Source interface {
	Frame() (data []byte, stride, w, h int, err error)
}
