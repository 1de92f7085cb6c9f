package transport_test

import (
	"sync"
	"testing"
	"time"

	"github.com/orizon-lang/netmux/internal/config"
	"github.com/orizon-lang/netmux/internal/netio"
	"github.com/orizon-lang/netmux/internal/reactor"
	"github.com/orizon-lang/netmux/internal/transport"
	"github.com/orizon-lang/netmux/internal/xlog"
)

// recordingApp records every chunk Consume receives and echoes nothing;
// it exists purely to observe the transport's framing decisions.
type recordingApp struct {
	mu     sync.Mutex
	chunks [][]byte
	down   transport.Down
}

func (a *recordingApp) Init() reactor.EventResult { return reactor.Ok }
func (a *recordingApp) HasMoreData() bool         { return false }
func (a *recordingApp) Produce() reactor.EventResult { return reactor.Ok }

func (a *recordingApp) Consume(b []byte) reactor.EventResult {
	a.mu.Lock()
	cp := append([]byte(nil), b...)
	a.chunks = append(a.chunks, cp)
	a.mu.Unlock()
	return reactor.Ok
}

func (a *recordingApp) HandleTimeout(int64, time.Time) reactor.EventResult { return reactor.Ok }

func (a *recordingApp) snapshot() [][]byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([][]byte, len(a.chunks))
	copy(out, a.chunks)
	return out
}

func TestStreamTransportExactReceivePolicy(t *testing.T) {
	cfg := config.Defaults()
	appCh := make(chan *recordingApp, 1)

	factory := reactor.SocketManagerFactoryFunc(func(mx *reactor.Multiplexer, sock netio.TCPStreamSocket) (reactor.SocketManager, reactor.Operation) {
		st := transport.New(mx, sock, cfg, nil, func(down transport.Down) transport.Layer {
			app := &recordingApp{down: down}
			down.ConfigureNextRead(transport.Exactly(1024))
			appCh <- app
			return transport.NewAdaptor(down, func(transport.Down) transport.Application { return app })
		})
		return st, reactor.Read
	})

	mx, port, err := reactor.New(cfg, factory, xlog.Default)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mx.Start()
	defer func() {
		_ = mx.SubmitShutdown()
		mx.Join()
		_ = mx.Close()
	}()

	client, err := netio.MakeConnectedTCPStreamSocket(netio.Endpoint{IP: netio.LoopbackV4, Port: port})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer netio.Close(client.Socket)

	payload := make([]byte, 2048)
	for i := range payload {
		payload[i] = byte(i)
	}
	for off := 0; off < len(payload); off += 512 {
		if _, err := netio.Write(client.Socket, payload[off:off+512]); err != nil {
			t.Fatalf("write segment at %d: %v", off, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	var app *recordingApp
	select {
	case app = <-appCh:
	case <-time.After(2 * time.Second):
		t.Fatalf("connection never reached the factory")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(app.snapshot()) >= 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	got := app.snapshot()
	if len(got) != 2 {
		t.Fatalf("expected exactly 2 consume calls, got %d", len(got))
	}
	for i, chunk := range got {
		if len(chunk) != 1024 {
			t.Fatalf("chunk %d: expected length 1024, got %d", i, len(chunk))
		}
	}
}
