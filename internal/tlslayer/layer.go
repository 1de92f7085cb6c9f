// Package tlslayer implements the TLS intermediate layer from section 4.10:
// it sits between a stream transport and an application layer, presenting
// the same Layer/Down faces the transport adaptor does so the two can be
// swapped in and out of a connection's layer stack.
//
// Go's crypto/tls has no public BIO API to drive by hand the way the
// original's encrypt()/read_all_from_ssl() pump does, and tls.Conn treats
// any I/O error on its underlying net.Conn as terminal rather than
// retry-on-would-block. Both problems are solved the same way: net.Pipe
// stands in for the pair of memory BIOs, and three background goroutines —
// one driving the handshake and plaintext reads, one draining ciphertext the
// engine wants to send, one feeding inbound ciphertext to the engine — pump
// that pipe. Every result those goroutines produce is handed back to the
// single reactor worker goroutine through Down.Notify before it touches any
// layer or transport state, preserving the single-threaded ownership rule.
package tlslayer

import (
	"crypto/tls"
	"io"
	"net"
	"sync"
	"time"

	"github.com/orizon-lang/netmux/internal/reactor"
	"github.com/orizon-lang/netmux/internal/transport"
)

// NextFactory builds the application layer sitting above a TLS Layer, given
// the Down handle (the Layer itself) it should call back through.
type NextFactory func(down transport.Down) transport.Layer

// Layer is a TLS engine wedged between a transport and an application layer.
// It implements transport.Layer (called by the transport below) and
// transport.Down (presented to the application above).
type Layer struct {
	role Role
	cfg  *tls.Config
	down transport.Down
	next transport.Layer

	engineConn net.Conn
	netConn    net.Conn
	tlsConn    *tls.Conn

	mu         sync.Mutex
	state      State
	encryptBuf []byte

	inMu    sync.Mutex
	inQueue [][]byte
	inSig   chan struct{}

	closeOnce sync.Once
	closeCh   chan struct{}
}

// NewLayer builds a TLS layer for role using cfg, wired below down (normally
// a *transport.StreamTransport) and above whatever next constructs.
func NewLayer(role Role, cfg *tls.Config, down transport.Down, next NextFactory) *Layer {
	l := &Layer{
		role:    role,
		cfg:     cfg,
		down:    down,
		inSig:   make(chan struct{}, 1),
		closeCh: make(chan struct{}),
	}
	l.next = next(l)
	return l
}

// Init creates the engine and its BIO-substitute pipe, starts the pump
// goroutines, and — for clients — lets the handshake pump start driving the
// handshake immediately; servers simply wait on their first Read, which
// blocks until consume() delivers the peer's ClientHello bytes.
func (l *Layer) Init() reactor.EventResult {
	pa, pb := net.Pipe()
	l.engineConn = pa
	l.netConn = pb
	switch l.role {
	case RoleClient:
		l.tlsConn = tls.Client(pa, l.cfg)
	default:
		l.tlsConn = tls.Server(pa, l.cfg)
	}
	l.state = StateHandshaking

	l.down.ConfigureNextRead(transport.UpTo(2048))

	go l.pumpCipherIn()
	go l.pumpCipherOut()
	go l.pumpPlaintextIn()

	return l.next.Init()
}

// HasMoreData is true iff there is unflushed plaintext waiting to enter the
// engine, or the application above still has more to produce.
func (l *Layer) HasMoreData() bool {
	l.mu.Lock()
	pending := len(l.encryptBuf) > 0
	l.mu.Unlock()
	return pending || l.next.HasMoreData()
}

// Produce lets the application append more plaintext to the encrypt buffer,
// then hands whatever is pending off to the engine asynchronously. Ciphertext
// the engine produces in response reaches the transport later, out of band,
// via the cipher-out pump's Notify call — not synchronously from this call.
func (l *Layer) Produce() reactor.EventResult {
	if r := l.next.Produce(); r == reactor.Error {
		return reactor.Error
	}
	l.flushPending()
	return reactor.Ok
}

func (l *Layer) flushPending() {
	l.mu.Lock()
	if l.state != StateEstablished || len(l.encryptBuf) == 0 {
		l.mu.Unlock()
		return
	}
	pending := l.encryptBuf
	l.encryptBuf = nil
	l.mu.Unlock()
	go l.writePlaintext(pending)
}

func (l *Layer) writePlaintext(b []byte) {
	if _, err := l.tlsConn.Write(b); err != nil {
		l.down.Notify(func() { l.fail(err) })
	}
}

// Consume hands received ciphertext to the cipher-in pump. It never touches
// the pipe directly: net.Pipe's Write blocks until the peer end reads, and
// this method runs on the reactor's worker goroutine, which must never block.
func (l *Layer) Consume(b []byte) reactor.EventResult {
	l.mu.Lock()
	closed := l.state == StateClosing || l.state == StateClosed
	l.mu.Unlock()
	if closed {
		return reactor.Done
	}

	cp := append([]byte(nil), b...)
	l.inMu.Lock()
	l.inQueue = append(l.inQueue, cp)
	l.inMu.Unlock()
	select {
	case l.inSig <- struct{}{}:
	default:
	}
	return reactor.Ok
}

// HandleTimeout is forwarded to the application layer verbatim (section
// 4.10): the TLS layer itself never arms a timeout of its own.
func (l *Layer) HandleTimeout(id int64, now time.Time) reactor.EventResult {
	return l.next.HandleTimeout(id, now)
}

// pumpCipherIn drains queued inbound ciphertext into the engine's pipe end.
// Runs off the reactor thread so its blocking net.Pipe writes never stall it.
func (l *Layer) pumpCipherIn() {
	for {
		select {
		case <-l.inSig:
		case <-l.closeCh:
			return
		}
		for {
			l.inMu.Lock()
			if len(l.inQueue) == 0 {
				l.inMu.Unlock()
				break
			}
			chunk := l.inQueue[0]
			l.inQueue = l.inQueue[1:]
			l.inMu.Unlock()
			if _, err := l.netConn.Write(chunk); err != nil {
				return
			}
		}
	}
}

// pumpCipherOut drains ciphertext the engine wants to send and hands it to
// the transport below through Notify, arming write readiness behind it.
func (l *Layer) pumpCipherOut() {
	buf := make([]byte, 16*1024)
	for {
		n, err := l.netConn.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			l.down.Notify(func() {
				l.down.Enqueue(chunk)
				l.down.RegisterWriting()
			})
		}
		if err != nil {
			return
		}
	}
}

// pumpPlaintextIn drives the handshake, then repeatedly decrypts application
// data and forwards each chunk to the application layer through Notify.
func (l *Layer) pumpPlaintextIn() {
	if err := l.tlsConn.Handshake(); err != nil {
		l.down.Notify(func() { l.fail(err) })
		return
	}
	l.down.Notify(l.onEstablished)

	buf := make([]byte, 16*1024)
	for {
		n, err := l.tlsConn.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			l.down.Notify(func() {
				if r := l.next.Consume(chunk); r == reactor.Error {
					l.fail(io.ErrClosedPipe)
				}
			})
		}
		if err != nil {
			l.down.Notify(func() { l.fail(err) })
			return
		}
	}
}

func (l *Layer) onEstablished() {
	l.mu.Lock()
	if l.state != StateHandshaking {
		l.mu.Unlock()
		return
	}
	l.state = StateEstablished
	pending := l.encryptBuf
	l.encryptBuf = nil
	l.mu.Unlock()
	if len(pending) > 0 {
		go l.writePlaintext(pending)
	}
}

// fail transitions to Closing, reports err downward, and tears down the pipe
// so every blocked pump goroutine unblocks and exits.
func (l *Layer) fail(err error) {
	l.mu.Lock()
	already := l.state == StateClosing || l.state == StateClosed
	l.state = StateClosing
	l.mu.Unlock()
	if !already {
		l.down.HandleError(err)
	}
	l.closeEngine()
}

func (l *Layer) closeEngine() {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.state = StateClosed
		l.mu.Unlock()
		close(l.closeCh)
		_ = l.tlsConn.Close()
		_ = l.netConn.Close()
	})
}

// Downfacing surface presented to the application layer above.

// ConfigureNextRead is intentionally ignored: the TLS layer imposes its own
// chunking policy (up_to(2048)) on the transport beneath it (section 4.10).
func (l *Layer) ConfigureNextRead(transport.ReceivePolicy) {}

// WriteBuffer returns the encrypt buffer, not the transport's write buffer:
// plaintext the application appends here is encrypted before it ever reaches
// the wire.
func (l *Layer) WriteBuffer() transport.Buffer { return transport.NewBuffer(&l.encryptBuf) }

func (l *Layer) Enqueue(b []byte) {
	l.mu.Lock()
	l.encryptBuf = append(l.encryptBuf, b...)
	l.mu.Unlock()
}

func (l *Layer) HandleError(err error) { l.down.HandleError(err) }

func (l *Layer) RegisterWriting() { l.down.RegisterWriting() }

func (l *Layer) SetTimeoutIn(d time.Duration) int64 { return l.down.SetTimeoutIn(d) }

func (l *Layer) SetTimeoutAt(at time.Time) int64 { return l.down.SetTimeoutAt(at) }

func (l *Layer) Notify(cb func()) { l.down.Notify(cb) }
