package rfb

import (
	"net"
	"time"

	"github.com/golang/glog"
)

// throttleInterval is the polling granularity used both to wait for
// the send queue to drain and as the unit the logged throttle
// duration is expressed in.
const throttleInterval = time.Second / 120

// throttle blocks while conn's kernel send queue still holds at least
// prevLen+curLen bytes, i.e. while the client has not yet drunk down
// the previous update enough to make room for something close to the
// one just sent. On platforms without sendQueueBytes support this is a
// no-op; the blocking Write call upstream is the only backpressure.
func throttle(conn net.Conn, prevLen, curLen int) {
	threshold := prevLen + curLen
	n := 0
	for {
		queued, ok := sendQueueBytes(conn)
		if !ok || queued < threshold {
			break
		}
		time.Sleep(throttleInterval)
		n++
	}
	if n > 0 {
		glog.V(1).Infof("rfb: throttled %v", time.Duration(n)*throttleInterval)
	}
}
