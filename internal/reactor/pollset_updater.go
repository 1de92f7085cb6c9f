package reactor

import (
	"time"

	"github.com/orizon-lang/netmux/internal/neterr"
	"github.com/orizon-lang/netmux/internal/netio"
)

// pollsetUpdater is the manager bound to the multiplexer's own control pipe
// reader: the only socket whose readiness is driven by foreign goroutines
// rather than network I/O (section 4.5). Its sole job is draining the wake
// byte(s) and applying whatever cross-thread operations were queued.
type pollsetUpdater struct {
	mx  *Multiplexer
	fd  int
	buf [256]byte
}

func newPollsetUpdater(mx *Multiplexer, fd int) *pollsetUpdater {
	return &pollsetUpdater{mx: mx, fd: fd}
}

func (u *pollsetUpdater) FD() int { return u.fd }

func (u *pollsetUpdater) Init() EventResult { return Ok }

func (u *pollsetUpdater) HandleReadEvent() EventResult {
	for {
		n, err := netio.Read(netio.Socket{FD: u.fd}, u.buf[:])
		if n > 0 {
			continue
		}
		if err != nil && netio.IsTemporary(err) {
			break
		}
		if err != nil {
			return Error
		}
		break
	}
	u.mx.drainPending()
	return Ok
}

// HandleWriteEvent is unreachable: the updater is only ever armed for read.
func (u *pollsetUpdater) HandleWriteEvent() EventResult {
	u.mx.log.Warnf("reactor: %v", neterr.RuntimeErrorf("pollset updater fd=%d armed for write", u.fd))
	return Error
}

// HandleTimeout is unreachable: the updater never arms a timeout.
func (u *pollsetUpdater) HandleTimeout(int64, time.Time) EventResult {
	u.mx.log.Warnf("reactor: %v", neterr.RuntimeErrorf("pollset updater fd=%d received unexpected timeout", u.fd))
	return Error
}
