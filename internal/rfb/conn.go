package rfb

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/golang/glog"
	"github.com/y-fujii/mfxvnc/internal/capture"
	"github.com/y-fujii/mfxvnc/internal/damage"
	"github.com/y-fujii/mfxvnc/internal/fb"
	"github.com/y-fujii/mfxvnc/internal/rfbenc"
)

// serverName is reported to the client in ServerInit.
const serverName = "mfxvnc"

// session drives the write side of one accepted connection: the
// handshake, the one-time ServerInit, and then the capture, diff,
// encode, send loop until the capture source or the socket fails.
//
// encoder is exclusive to this connection for its lifetime; Tight-family
// encoders hold a persistent deflate stream whose compression ratio
// improves across frames, so they must not be shared across
// connections. detector is stateless and may be shared.
type session struct {
	conn     net.Conn
	detector damage.Detector
	encoder  rfbenc.Encoder
	source   capture.Source

	prev *fb.Buffer
	upd  updateBuf
}

// run performs the handshake and, on success, drives frames until a
// fatal error. A handshake rejection is returned as-is; the caller
// logs it and closes the connection without treating it as a surprise.
func (s *session) run() error {
	if err := doHandshake(s.conn); err != nil {
		return err
	}
	return s.writeLoop()
}

func (s *session) writeLoop() error {
	sentServerInit := false
	for {
		data, stride, w, h, err := s.source.Frame()
		if err != nil {
			if errors.Is(err, capture.ErrWouldBlock) {
				time.Sleep(throttleInterval)
				continue
			}
			return fmt.Errorf("rfb: capture: %w", err)
		}
		next := fb.View(data, stride, w, h)

		if !sentServerInit {
			if err := writeServerInit(s.conn, w, h, serverName); err != nil {
				return err
			}
			sentServerInit = true
		}
		if s.prev == nil || !s.prev.SameSize(next) {
			s.prev = fb.NewBuffer(w, h)
		}

		prevLen := len(s.upd.buf)
		s.upd.reset()

		start := time.Now()
		s.detector.Compare(s.prev, next, func(r fb.Rect) {
			s.upd.rectHeader(r.X0, r.Y0, r.X1, r.Y1)
			s.upd.buf = s.encoder.Encode(s.upd.buf, next, r)
		})
		elapsed := time.Since(start)

		msg := s.upd.finish()
		if msg != nil {
			glog.V(1).Infof("rfb: encode %v, %d rects, %d KiB", elapsed, s.upd.nRects, len(msg)/1024)
			if _, err := s.conn.Write(msg); err != nil {
				return fmt.Errorf("rfb: write update: %w", err)
			}
		}

		throttle(s.conn, prevLen, len(s.upd.buf))
	}
}
