package rfb

import (
	"errors"
	"fmt"
	"net"

	"github.com/golang/glog"
	"github.com/y-fujii/mfxvnc/internal/capture"
	"github.com/y-fujii/mfxvnc/internal/config"
	"github.com/y-fujii/mfxvnc/internal/damage"
)

// readBufSize is the scratch buffer the reader goroutine drains
// client traffic into. This server never acts on client messages
// (SetPixelFormat, PointerEvent, ...); it only has to keep reading so
// the client's half of the socket does not stall.
const readBufSize = 4096

// ListenAndServe binds addr and serves RFB connections. It returns only
// when the detector name is invalid or the bind fails; accept errors
// are logged and the accept loop continues. One detector is shared across every
// connection; a fresh encoder and capture source are built per
// connection, since Tight-family encoders hold per-connection deflate
// state and a capture source owns per-connection resources.
func ListenAndServe(cfg *config.Config) error {
	detector, err := NewDetector(cfg.Detector)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("rfb: listen: %w", err)
	}
	defer ln.Close()
	glog.Infof("rfb: listening on %s", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			glog.Warningf("rfb: accept: %v", err)
			continue
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			tc.SetNoDelay(true)
		}
		go serveConn(conn, detector, cfg)
	}
}

// serveConn owns one accepted connection end to end: it never returns
// control to the accept loop, and it never lets a panic in the
// encoding path (the Tight compressor panics on a pathological
// oversize payload or an invalid stream id) escape past this
// connection.
func serveConn(conn net.Conn, detector damage.Detector, cfg *config.Config) {
	defer conn.Close()
	remote := conn.RemoteAddr()

	defer func() {
		if r := recover(); r != nil {
			glog.Errorf("rfb: connection %s panicked: %v", remote, r)
		}
	}()

	encoder, wireEncoding, err := newEncoder(cfg.Encoder)
	if err != nil {
		glog.Errorf("rfb: connection %s: %v", remote, err)
		return
	}
	source, err := newSource(cfg.Source)
	if err != nil {
		glog.Errorf("rfb: connection %s: %v", remote, err)
		return
	}

	done := make(chan struct{}, 1)
	go drain(conn, done)

	glog.Infof("rfb: connection %s using %s/%s", remote, cfg.Detector, wireEncoding)
	s := &session{conn: conn, detector: detector, encoder: encoder, source: source}
	if err := s.run(); err != nil {
		var reject *rejectReason
		if errors.As(err, &reject) {
			glog.Infof("rfb: connection %s: %v", remote, err)
		} else {
			glog.Warningf("rfb: connection %s: %v", remote, err)
		}
	}

	conn.Close()
	<-done
}

// drain discards everything the client sends; this server implements
// no client-to-server messages, but the socket must still be read or
// the peer's writes back up and eventually wedge the connection.
func drain(conn net.Conn, done chan<- struct{}) {
	defer func() { done <- struct{}{} }()
	buf := make([]byte, readBufSize)
	for {
		if _, err := conn.Read(buf); err != nil {
			return
		}
	}
}

// newSource builds the capture source named by cfg.Source. "auto"
// falls back to the synthetic source: platform screen capture is
// intentionally out of scope, so there is nothing else to try.
func newSource(name string) (capture.Source, error) {
	switch name {
	case "auto", "synthetic":
		return capture.NewSynthetic(1920, 1080), nil
	default:
		return nil, fmt.Errorf("rfb: unknown capture source %q", name)
	}
}
