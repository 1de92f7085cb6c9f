// Package reactor implements the single-threaded, multiplexed event loop:
// one worker goroutine owns a registration table of SocketManagers, polls
// an OS-specific backend for readiness, and dispatches at most one callback
// per ready direction (read, then write) per socket per turn (section 4.6).
package reactor

import (
	"sync"
	"time"

	"github.com/orizon-lang/netmux/internal/config"
	"github.com/orizon-lang/netmux/internal/netio"
	"github.com/orizon-lang/netmux/internal/xlog"
)

// Multiplexer is the reactor core. All table/poller mutation happens on its
// worker goroutine; every other goroutine must go through Submit* (which
// relays through the control pipe) rather than touching the table directly.
type Multiplexer struct {
	poller Poller
	log    *xlog.Logger

	table  map[int]SocketManager
	timers *timerSet

	pipeR, pipeW netio.PipeSocket

	pendMu  sync.Mutex
	pending []pendingOp

	runningMu sync.Mutex
	running   bool
	done      chan struct{}
}

type opcode uint8

const (
	opAdd opcode = iota
	opEnable
	opDisable
	opShutdown
	opNotify
)

type pendingOp struct {
	opcode  opcode
	fd      int
	op      Operation
	manager SocketManager
	notify  func()
}

// New builds a Multiplexer bound to the current platform's best available
// backend (epoll on Linux, kqueue on BSD/macOS, poll(2) elsewhere) and wires
// its own control pipe and pollset updater.
func New(cfg *config.Config, factory SocketManagerFactory, log *xlog.Logger) (*Multiplexer, uint16, error) {
	return newWithPoller(cfg, factory, log, newOSPoller())
}

// newWithPoller builds a Multiplexer against an arbitrary Poller; New passes
// the platform's OS backend.
func newWithPoller(cfg *config.Config, factory SocketManagerFactory, log *xlog.Logger, poller Poller) (*Multiplexer, uint16, error) {
	if log == nil {
		log = xlog.Default
	}
	if err := poller.Open(); err != nil {
		return nil, 0, err
	}
	r, w, err := netio.MakePipe()
	if err != nil {
		_ = poller.Close()
		return nil, 0, err
	}
	if err := netio.Nonblocking(r.Socket, true); err != nil {
		_ = poller.Close()
		return nil, 0, err
	}
	mx := &Multiplexer{
		poller: poller,
		log:    log,
		table:  make(map[int]SocketManager),
		timers: newTimerSet(),
		pipeR:  r,
		pipeW:  w,
		done:   make(chan struct{}),
	}
	updater := newPollsetUpdater(mx, r.FD)
	if err := mx.registerLocal(updater, Read); err != nil {
		_ = poller.Close()
		return nil, 0, err
	}

	if factory == nil {
		return mx, 0, nil
	}

	host := netio.AnyV4
	if cfg.Bool(config.KeyMultiplexerLocal, true) {
		host = netio.LoopbackV4
	}
	port := uint16(cfg.Int(config.KeyMultiplexerPort, 0))
	ln, boundPort, err := netio.MakeTCPAcceptSocket(netio.Endpoint{IP: host, Port: port}, netio.DefaultBacklog)
	if err != nil {
		_ = poller.Close()
		return nil, 0, err
	}
	if err := netio.Nonblocking(ln.Socket, true); err != nil {
		_ = netio.Close(ln.Socket)
		_ = poller.Close()
		return nil, 0, err
	}
	acceptor := NewAcceptor(mx, ln, factory, DefaultMaxConsecutiveAccepts)
	if err := mx.registerLocal(acceptor, Read); err != nil {
		_ = netio.Close(ln.Socket)
		_ = poller.Close()
		return nil, 0, err
	}
	return mx, boundPort, nil
}

// registerLocal adds m to the poller and table. Must only be called from
// the worker goroutine (or before Start, single-threaded setup).
func (mx *Multiplexer) registerLocal(m SocketManager, initial Operation) error {
	fd := m.FD()
	if err := mx.poller.Add(fd, initial); err != nil {
		return err
	}
	mx.table[fd] = m
	if r := m.Init(); r != Ok {
		mx.removeLocal(fd, r)
	}
	return nil
}

func (mx *Multiplexer) removeLocal(fd int, result EventResult) {
	if _, ok := mx.table[fd]; !ok {
		return
	}
	if result == Error {
		mx.log.Warnf("reactor: socket fd=%d removed after error", fd)
	}
	_ = mx.poller.Delete(fd)
	delete(mx.table, fd)
	mx.timers.Forget(fd)
}

func (mx *Multiplexer) modify(fd int, mask Operation) {
	_ = mx.poller.Modify(fd, mask)
}

func (mx *Multiplexer) setTimeout(fd int, at time.Time) int64 {
	return mx.timers.Set(fd, at)
}

func (mx *Multiplexer) clearTimeout(id int64) {
	mx.timers.Clear(id)
}

// AddBeforeStart registers m before the worker goroutine is running. Only
// valid prior to Start; afterwards use Submit via a manager constructed on
// the worker goroutine (e.g. from an Acceptor) or the cross-thread Submit*
// family.
func (mx *Multiplexer) AddBeforeStart(m SocketManager, initial Operation) error {
	return mx.registerLocal(m, initial)
}

// SubmitAdd registers m from any goroutine. The registration is applied on
// the worker goroutine the next time it wakes.
func (mx *Multiplexer) SubmitAdd(m SocketManager, initial Operation) error {
	return mx.submit(pendingOp{opcode: opAdd, fd: m.FD(), op: initial, manager: m})
}

// SubmitEnable arms additional bits on fd's mask from any goroutine.
func (mx *Multiplexer) SubmitEnable(fd int, op Operation) error {
	return mx.submit(pendingOp{opcode: opEnable, fd: fd, op: op})
}

// SubmitDisable clears bits on fd's mask from any goroutine.
func (mx *Multiplexer) SubmitDisable(fd int, op Operation) error {
	return mx.submit(pendingOp{opcode: opDisable, fd: fd, op: op})
}

// SubmitShutdown requests the worker goroutine stop after its current turn.
func (mx *Multiplexer) SubmitShutdown() error {
	return mx.submit(pendingOp{opcode: opShutdown})
}

// SubmitNotify schedules cb to run on the worker goroutine, serialized with
// every other callback. It is the general-purpose escape hatch background
// work (e.g. a TLS layer's handshake goroutine) uses to hand control back
// to the single-threaded reactor instead of touching manager state itself.
func (mx *Multiplexer) SubmitNotify(cb func()) error {
	return mx.submit(pendingOp{opcode: opNotify, notify: cb})
}

func (mx *Multiplexer) submit(op pendingOp) error {
	mx.pendMu.Lock()
	mx.pending = append(mx.pending, op)
	mx.pendMu.Unlock()
	_, err := netio.Write(mx.pipeW.Socket, []byte{1})
	if err != nil && !netio.IsTemporary(err) {
		return err
	}
	return nil
}

// drainPending applies every queued cross-thread operation. Runs only on
// the worker goroutine, invoked by the pollset updater's read handler.
func (mx *Multiplexer) drainPending() {
	mx.pendMu.Lock()
	ops := mx.pending
	mx.pending = nil
	mx.pendMu.Unlock()

	for _, op := range ops {
		switch op.opcode {
		case opAdd:
			if err := mx.registerLocal(op.manager, op.op); err != nil {
				mx.log.Warnf("reactor: cross-thread add fd=%d failed: %v", op.fd, err)
			}
		case opEnable:
			if mgr, ok := mx.table[op.fd]; ok {
				applyMaskChange(mgr, op.op, true)
			}
		case opDisable:
			if mgr, ok := mx.table[op.fd]; ok {
				applyMaskChange(mgr, op.op, false)
			}
		case opShutdown:
			mx.requestStop()
		case opNotify:
			if op.notify != nil {
				op.notify()
			}
		}
	}
}

// applyMaskChange lets the cross-thread path reuse the same monotone
// mask-add/mask-del semantics managers use locally, without requiring every
// SocketManager to expose its Base.
func applyMaskChange(m SocketManager, op Operation, enable bool) {
	type masked interface {
		RegisterReading()
		RegisterWriting()
		UnregisterReading()
		UnregisterWriting()
	}
	mm, ok := m.(masked)
	if !ok {
		return
	}
	if op.Has(Read) {
		if enable {
			mm.RegisterReading()
		} else {
			mm.UnregisterReading()
		}
	}
	if op.Has(Write) {
		if enable {
			mm.RegisterWriting()
		} else {
			mm.UnregisterWriting()
		}
	}
}

// disableDirection disarms op on mgr (section 4.6's disable(mgr, op,
// remove=true)): if the resulting mask is empty, the manager is removed
// entirely rather than left registered for nothing. Returns true iff mgr was
// removed.
func (mx *Multiplexer) disableDirection(mgr SocketManager, fd int, op Operation) bool {
	applyMaskChange(mgr, op, false)
	if mm, ok := mgr.(interface{ Mask() Operation }); ok && mm.Mask() == None {
		mx.removeLocal(fd, Done)
		return true
	}
	return false
}

func (mx *Multiplexer) requestStop() {
	mx.runningMu.Lock()
	mx.running = false
	mx.runningMu.Unlock()
}

func (mx *Multiplexer) isRunning() bool {
	mx.runningMu.Lock()
	defer mx.runningMu.Unlock()
	return mx.running
}

// computeWait returns how long poll_once should block: indefinitely (<0)
// with no armed timers, otherwise exactly long enough to reach the next
// deadline (never negative).
func (mx *Multiplexer) computeWait() time.Duration {
	at, ok := mx.timers.NextDeadline()
	if !ok {
		return -1
	}
	d := time.Until(at)
	if d < 0 {
		return 0
	}
	return d
}

// pollOnce runs a single iteration: wait for readiness or the next timer,
// dispatch at most one read and one write callback per ready socket, then
// fire every expired timeout.
func (mx *Multiplexer) pollOnce() error {
	events, err := mx.poller.Wait(mx.computeWait())
	if err != nil {
		return err
	}
	for _, ev := range events {
		mgr, ok := mx.table[ev.FD]
		if !ok {
			continue
		}
		if ev.HangUp {
			mx.removeLocal(ev.FD, Error)
			continue
		}
		removed := false
		if ev.Readable {
			switch mgr.HandleReadEvent() {
			case Error:
				mx.removeLocal(ev.FD, Error)
				removed = true
			case Done:
				removed = mx.disableDirection(mgr, ev.FD, Read)
			}
		}
		if !removed && ev.Writable {
			switch mgr.HandleWriteEvent() {
			case Error:
				mx.removeLocal(ev.FD, Error)
			case Done:
				mx.disableDirection(mgr, ev.FD, Write)
			}
		}
	}

	now := time.Now()
	for _, fire := range mx.timers.PopExpired(now) {
		mgr, ok := mx.table[fire.FD]
		if !ok {
			continue
		}
		if result := mgr.HandleTimeout(fire.ID, now); result != Ok {
			mx.removeLocal(fire.FD, result)
		}
	}
	return nil
}

// Start launches the worker goroutine. It is an error to call Start twice.
func (mx *Multiplexer) Start() {
	mx.runningMu.Lock()
	mx.running = true
	mx.runningMu.Unlock()
	go mx.run()
}

func (mx *Multiplexer) run() {
	defer close(mx.done)
	for mx.isRunning() {
		if err := mx.pollOnce(); err != nil {
			mx.log.Errorf("reactor: poll failed: %v", err)
			return
		}
	}
}

// Join blocks until the worker goroutine has returned after a shutdown.
func (mx *Multiplexer) Join() { <-mx.done }

// Close releases the poller and control pipe. Call after Join.
func (mx *Multiplexer) Close() error {
	_ = netio.Close(mx.pipeR.Socket)
	_ = netio.Close(mx.pipeW.Socket)
	return mx.poller.Close()
}
