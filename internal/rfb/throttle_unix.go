//go:build unix

package rfb

import (
	"net"

	"golang.org/x/sys/unix"
)

// sendQueueBytes reports the kernel TCP send-queue depth for conn via
// TIOCOUTQ, so the write loop can throttle itself instead of growing
// an unbounded backlog of unsent FramebufferUpdate messages when the
// client reads slowly. ok is false for anything that is not a
// *net.TCPConn or when the ioctl itself fails.
func sendQueueBytes(conn net.Conn) (n int, ok bool) {
	tc, isTCP := conn.(*net.TCPConn)
	if !isTCP {
		return 0, false
	}
	raw, err := tc.SyscallConn()
	if err != nil {
		return 0, false
	}
	var queued int
	var ioctlErr error
	if err := raw.Control(func(fd uintptr) {
		queued, ioctlErr = unix.IoctlGetInt(int(fd), unix.TIOCOUTQ)
	}); err != nil || ioctlErr != nil {
		return 0, false
	}
	return queued, true
}
