package netio

import (
	"golang.org/x/sys/unix"

	"github.com/orizon-lang/netmux/internal/neterr"
)

// MakePipe creates the wake-up/control channel: a unidirectional pipe whose
// reader is registered with the multiplexer's pollset updater and whose
// writer foreign goroutines use to wake the worker after queuing an
// ADD/ENABLE/DISABLE/SHUTDOWN operation (section 4.5). The operations
// themselves are queued in memory; only a wake-up byte crosses the pipe.
func MakePipe() (reader, writer PipeSocket, err error) {
	var fds [2]int
	if e := unix.Pipe(fds[:]); e != nil {
		return PipeSocket{}, PipeSocket{}, neterr.SocketFailedf("pipe: %v", e)
	}
	return PipeSocket{Socket{FD: fds[0]}}, PipeSocket{Socket{FD: fds[1]}}, nil
}
