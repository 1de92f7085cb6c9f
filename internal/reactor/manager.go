package reactor

import "time"

// EventResult is the tri-state outcome of every SocketManager callback
// (section 4.3): Ok keeps the manager registered; Done from a read or write
// handler disarms that direction only, and the manager is removed once its
// mask is empty (Done from Init or HandleTimeout removes it outright);
// Error removes it and logs the cause.
type EventResult int

const (
	Ok EventResult = iota
	Done
	Error
)

func (r EventResult) String() string {
	switch r {
	case Ok:
		return "ok"
	case Done:
		return "done"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// SocketManager is the abstract actor bound to one registered socket. The
// multiplexer calls exactly one of these methods per dispatched event and
// acts on the EventResult it returns.
type SocketManager interface {
	// Init runs once, immediately after registration, before any event can
	// be delivered for this socket.
	Init() EventResult
	HandleReadEvent() EventResult
	HandleWriteEvent() EventResult
	// HandleTimeout runs when the deadline identified by id elapses. id is
	// the value SetTimeoutIn/SetTimeoutAt returned when the timeout was
	// armed, letting the manager correlate this callback with the timer
	// that fired; now is the multiplexer's view of the current time at
	// dispatch.
	HandleTimeout(id int64, now time.Time) EventResult
	// FD identifies the socket this manager owns; used only for bookkeeping
	// in the registration table and control-pipe frames.
	FD() int
}

// Base is embedded by concrete managers to provide the mask/timeout
// bookkeeping section 4.3 calls "available to every manager": mask-add and
// mask-del are monotone; any number of timeouts may be armed concurrently,
// each identified by the id returned when it was set.
type Base struct {
	fd   int
	mux  *Multiplexer
	mask Operation
}

func NewBase(mux *Multiplexer, fd int, initial Operation) Base {
	return Base{fd: fd, mux: mux, mask: initial}
}

func (b *Base) FD() int { return b.fd }

func (b *Base) Mask() Operation { return b.mask }

// RegisterReading arms the read bit if it isn't already armed.
func (b *Base) RegisterReading() {
	next, grew := addOp(b.mask, Read)
	if !grew {
		return
	}
	b.mask = next
	b.mux.modify(b.fd, b.mask)
}

// RegisterWriting arms the write bit if it isn't already armed.
func (b *Base) RegisterWriting() {
	next, grew := addOp(b.mask, Write)
	if !grew {
		return
	}
	b.mask = next
	b.mux.modify(b.fd, b.mask)
}

// UnregisterReading disarms the read bit if it is armed.
func (b *Base) UnregisterReading() {
	next, shrank := delOp(b.mask, Read)
	if !shrank {
		return
	}
	b.mask = next
	b.mux.modify(b.fd, b.mask)
}

// UnregisterWriting disarms the write bit if it is armed.
func (b *Base) UnregisterWriting() {
	next, shrank := delOp(b.mask, Write)
	if !shrank {
		return
	}
	b.mask = next
	b.mux.modify(b.fd, b.mask)
}

// SetTimeoutIn arms a deadline d from now and returns its id, to be
// correlated with the later HandleTimeout(id, ...) delivery. Does not
// disturb any other timeout already armed for this socket.
func (b *Base) SetTimeoutIn(d time.Duration) int64 {
	return b.SetTimeoutAt(time.Now().Add(d))
}

// SetTimeoutAt arms an absolute deadline and returns its id.
func (b *Base) SetTimeoutAt(at time.Time) int64 {
	return b.mux.setTimeout(b.fd, at)
}

// ClearTimeout disarms the single timeout entry identified by id, if still
// live.
func (b *Base) ClearTimeout(id int64) {
	b.mux.clearTimeout(id)
}

// HandleError logs err against this socket. Layers forward I/O failures
// here rather than to the multiplexer directly (section 4.8's downfacing
// `handle_error`).
func (b *Base) HandleError(err error) {
	if err == nil || b.mux == nil {
		return
	}
	b.mux.log.Warnf("manager fd=%d: %v", b.fd, err)
}

// Notify schedules cb to run on the worker goroutine, serialized with every
// other callback this socket's manager receives. Background goroutines (a
// TLS engine's handshake pump, for instance) use this instead of touching
// manager or layer state directly from outside the reactor thread.
func (b *Base) Notify(cb func()) {
	if b.mux == nil {
		return
	}
	if err := b.mux.SubmitNotify(cb); err != nil {
		b.HandleError(err)
	}
}
