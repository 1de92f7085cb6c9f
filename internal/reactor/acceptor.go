package reactor

import (
	"time"

	"github.com/orizon-lang/netmux/internal/neterr"
	"github.com/orizon-lang/netmux/internal/netio"
)

// DefaultMaxConsecutiveAccepts bounds how many connections one readiness
// event drains from the backlog before yielding back to the loop, the same
// bounded-work discipline section 4.7 applies to transport reads.
const DefaultMaxConsecutiveAccepts = 16

// Acceptor wraps a listening socket: on each readiness event it accepts
// connections until the backlog is drained (EAGAIN) or the per-turn bound
// is hit, handing each off to a SocketManagerFactory (section 4.4).
type Acceptor struct {
	mx         *Multiplexer
	ln         netio.TCPAcceptSocket
	factory    SocketManagerFactory
	maxAccepts int
}

func NewAcceptor(mx *Multiplexer, ln netio.TCPAcceptSocket, factory SocketManagerFactory, maxAccepts int) *Acceptor {
	if maxAccepts <= 0 {
		maxAccepts = DefaultMaxConsecutiveAccepts
	}
	return &Acceptor{mx: mx, ln: ln, factory: factory, maxAccepts: maxAccepts}
}

func (a *Acceptor) FD() int { return a.ln.FD }

func (a *Acceptor) Init() EventResult { return Ok }

func (a *Acceptor) HandleReadEvent() EventResult {
	for i := 0; i < a.maxAccepts; i++ {
		sock, err := netio.Accept(a.ln)
		if err != nil {
			if netio.IsTemporary(err) {
				return Ok
			}
			a.mx.log.Warnf("reactor: accept on fd=%d failed: %v", a.ln.FD, err)
			return Error
		}
		if err := netio.Nonblocking(sock.Socket, true); err != nil {
			_ = netio.Close(sock.Socket)
			continue
		}
		guard := netio.NewGuard(sock.Socket)
		mgr, mask := a.factory.Create(a.mx, sock)
		if mgr == nil {
			guard.Close()
			continue
		}
		guard.Release()
		if err := a.mx.registerLocal(mgr, mask); err != nil {
			a.mx.log.Warnf("reactor: registering accepted fd=%d failed: %v", sock.FD, err)
		}
	}
	return Ok
}

// HandleWriteEvent is unreachable: the acceptor is only ever armed for
// read (section 4.4). Being called here is a programming error.
func (a *Acceptor) HandleWriteEvent() EventResult {
	a.mx.log.Warnf("reactor: %v", neterr.RuntimeErrorf("acceptor fd=%d armed for write", a.ln.FD))
	return Error
}

// HandleTimeout is unreachable: the acceptor never arms a timeout.
func (a *Acceptor) HandleTimeout(int64, time.Time) EventResult {
	a.mx.log.Warnf("reactor: %v", neterr.RuntimeErrorf("acceptor fd=%d received unexpected timeout", a.ln.FD))
	return Error
}
