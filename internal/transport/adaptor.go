package transport

import (
	"time"

	"github.com/orizon-lang/netmux/internal/reactor"
)

// Application is the up-facing contract an application-level layer
// implements when it sits directly on the transport (no TLS). It is
// identical in shape to Layer; the separate name documents intent at
// call sites.
type Application = Layer

// Adaptor is a pass-through layer (section 4.9): every up-facing call
// forwards to the application it wraps, and every down-facing call the
// application makes forwards straight to the transport. It exists purely
// so the transport and TLS layer can present the same Down surface to
// whatever sits above them.
type Adaptor struct {
	down Down
	app  Application
}

// NewAdaptor builds an Adaptor using down to reach whatever is beneath it
// (normally a *StreamTransport or a TLS layer). appFactory is handed the
// adaptor itself as the Down the application should call back through.
func NewAdaptor(down Down, appFactory func(Down) Application) *Adaptor {
	a := &Adaptor{down: down}
	a.app = appFactory(a)
	return a
}

func (a *Adaptor) Init() reactor.EventResult            { return a.app.Init() }
func (a *Adaptor) HasMoreData() bool                    { return a.app.HasMoreData() }
func (a *Adaptor) Produce() reactor.EventResult         { return a.app.Produce() }
func (a *Adaptor) Consume(b []byte) reactor.EventResult { return a.app.Consume(b) }

func (a *Adaptor) HandleTimeout(id int64, now time.Time) reactor.EventResult {
	return a.app.HandleTimeout(id, now)
}

// Down-facing pass-through: whatever the application calls on the adaptor
// lands unchanged on the transport (or TLS layer) beneath it.
func (a *Adaptor) ConfigureNextRead(policy ReceivePolicy) { a.down.ConfigureNextRead(policy) }
func (a *Adaptor) WriteBuffer() Buffer                    { return a.down.WriteBuffer() }
func (a *Adaptor) Enqueue(b []byte)                       { a.down.Enqueue(b) }
func (a *Adaptor) HandleError(err error)                  { a.down.HandleError(err) }
func (a *Adaptor) RegisterWriting()                       { a.down.RegisterWriting() }
func (a *Adaptor) SetTimeoutIn(d time.Duration) int64      { return a.down.SetTimeoutIn(d) }
func (a *Adaptor) SetTimeoutAt(at time.Time) int64         { return a.down.SetTimeoutAt(at) }
func (a *Adaptor) Notify(cb func())                        { a.down.Notify(cb) }
