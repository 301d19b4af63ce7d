package rfb

import (
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/y-fujii/mfxvnc/internal/capture"
	"github.com/y-fujii/mfxvnc/internal/damage"
	"github.com/y-fujii/mfxvnc/internal/rfbenc"
)

// clientHandshake drives the client half of doHandshake over conn,
// stopping right after ClientInit so the caller can read ServerInit
// and subsequent FramebufferUpdate messages.
func clientHandshake(t *testing.T, conn net.Conn) {
	t.Helper()
	var version [12]byte
	if _, err := io.ReadFull(conn, version[:]); err != nil {
		t.Fatalf("read version: %v", err)
	}
	if _, err := conn.Write([]byte(protocolVersion)); err != nil {
		t.Fatalf("write version: %v", err)
	}
	var secTypes [2]byte
	if _, err := io.ReadFull(conn, secTypes[:]); err != nil {
		t.Fatalf("read security types: %v", err)
	}
	if _, err := conn.Write([]byte{1}); err != nil {
		t.Fatalf("write security type: %v", err)
	}
	var result [4]byte
	if _, err := io.ReadFull(conn, result[:]); err != nil {
		t.Fatalf("read security result: %v", err)
	}
	if _, err := conn.Write([]byte{0}); err != nil {
		t.Fatalf("write client init: %v", err)
	}
}

func TestSessionSendsServerInitThenRawFrame(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	src := capture.NewSynthetic(16, 8)
	s := &session{
		conn:     server,
		detector: damage.Block{},
		encoder:  rfbenc.Raw{},
		source:   src,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := doHandshake(server); err != nil {
			errCh <- err
			return
		}
		errCh <- s.writeLoop()
	}()

	clientHandshake(t, client)

	var init [20]byte
	if _, err := io.ReadFull(client, init[:]); err != nil {
		t.Fatalf("read server init: %v", err)
	}
	w := binary.BigEndian.Uint16(init[0:])
	h := binary.BigEndian.Uint16(init[2:])
	if w != 16 || h != 8 {
		t.Fatalf("server init size = %dx%d, want 16x8", w, h)
	}
	var nameLen [4]byte
	io.ReadFull(client, nameLen[:])
	name := make([]byte, binary.BigEndian.Uint32(nameLen[:]))
	io.ReadFull(client, name)
	if string(name) != serverName {
		t.Fatalf("server name = %q, want %q", name, serverName)
	}

	var msgHdr [4]byte
	if _, err := io.ReadFull(client, msgHdr[:]); err != nil {
		t.Fatalf("read update header: %v", err)
	}
	if msgHdr[0] != msgFramebufferUpdate {
		t.Fatalf("message type = %d, want %d", msgHdr[0], msgFramebufferUpdate)
	}
	nRects := binary.BigEndian.Uint16(msgHdr[2:])
	if nRects == 0 {
		t.Fatal("first update carried zero rectangles, want at least one (the synthetic bar differs from a zeroed prev buffer)")
	}

	for i := uint16(0); i < nRects; i++ {
		var rectHdr [8]byte
		if _, err := io.ReadFull(client, rectHdr[:]); err != nil {
			t.Fatalf("read rect %d header: %v", i, err)
		}
		rw := binary.BigEndian.Uint16(rectHdr[4:])
		rh := binary.BigEndian.Uint16(rectHdr[6:])

		var encID [4]byte
		if _, err := io.ReadFull(client, encID[:]); err != nil {
			t.Fatalf("read rect %d encoding id: %v", i, err)
		}
		if binary.BigEndian.Uint32(encID[:]) != 0 {
			t.Fatalf("rect %d encoding id = %d, want 0 (Raw)", i, binary.BigEndian.Uint32(encID[:]))
		}
		payload := make([]byte, int(rw)*int(rh)*4)
		if _, err := io.ReadFull(client, payload); err != nil {
			t.Fatalf("read rect %d payload: %v", i, err)
		}
	}

	client.Close()
	select {
	case <-errCh:
	case <-time.After(time.Second):
		t.Fatal("session did not exit after client closed")
	}
}
