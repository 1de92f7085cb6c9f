package transport

import (
	"time"

	"github.com/orizon-lang/netmux/internal/reactor"
)

// Layer is the up-facing contract the transport (or the layer below) calls
// into (section 4.8). HandleTimeout takes the id SetTimeoutIn/SetTimeoutAt
// returned when the layer armed the deadline, so a layer juggling more than
// one outstanding timeout (a handshake deadline and a keepalive, say) can
// tell which one just fired.
type Layer interface {
	Init() reactor.EventResult
	HasMoreData() bool
	Produce() reactor.EventResult
	Consume(b []byte) reactor.EventResult
	HandleTimeout(id int64, now time.Time) reactor.EventResult
}

// Buffer is a thin handle onto a layer's outbound byte slice, letting an
// application append directly rather than always going through Enqueue.
// It must not be retained past the call that produced it.
type Buffer struct {
	data *[]byte
}

func (b Buffer) Append(p []byte) { *b.data = append(*b.data, p...) }
func (b Buffer) Len() int        { return len(*b.data) }
func (b Buffer) Bytes() []byte   { return *b.data }
func (b Buffer) Reset()          { *b.data = (*b.data)[:0] }

// NewBuffer wraps an existing byte slice pointer as a Buffer handle. Layers
// outside this package (the TLS layer's own encrypt buffer) use this to
// satisfy Down.WriteBuffer without exposing Buffer's field.
func NewBuffer(p *[]byte) Buffer { return Buffer{data: p} }

// Down is the downfacing contract a layer uses to talk to whatever sits
// below it — the stream transport directly, or an intervening layer such
// as TLS that reinterprets some of these calls (section 4.8/4.10).
type Down interface {
	ConfigureNextRead(policy ReceivePolicy)
	WriteBuffer() Buffer
	Enqueue(b []byte)
	HandleError(err error)
	RegisterWriting()
	SetTimeoutIn(d time.Duration) int64
	SetTimeoutAt(at time.Time) int64
	// Notify schedules cb to run on the reactor's worker goroutine. Layers
	// that hand work to background goroutines (TLS's handshake pump) use
	// this to bring results back under the single-threaded ownership rule
	// instead of mutating layer/manager state from outside it.
	Notify(cb func())
}
