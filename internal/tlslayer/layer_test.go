package tlslayer_test

import (
	"sync"
	"testing"
	"time"

	"github.com/orizon-lang/netmux/internal/config"
	"github.com/orizon-lang/netmux/internal/netio"
	"github.com/orizon-lang/netmux/internal/reactor"
	"github.com/orizon-lang/netmux/internal/tlslayer"
	"github.com/orizon-lang/netmux/internal/transport"
	"github.com/orizon-lang/netmux/internal/xlog"
)

// echoApp forwards every received chunk straight back out, exercising both
// the up-facing Consume path and the down-facing Enqueue path the TLS layer
// intercepts.
type echoApp struct {
	down transport.Down
}

func (a *echoApp) Init() reactor.EventResult { return reactor.Ok }
func (a *echoApp) HasMoreData() bool         { return false }
func (a *echoApp) Produce() reactor.EventResult { return reactor.Ok }

func (a *echoApp) Consume(b []byte) reactor.EventResult {
	a.down.Enqueue(b)
	a.down.RegisterWriting()
	return reactor.Ok
}

func (a *echoApp) HandleTimeout(int64, time.Time) reactor.EventResult { return reactor.Ok }

// recordingClientApp is the far side of the loopback: it sends one message
// via its own TLS layer and records whatever comes back.
type recordingClientApp struct {
	mu       sync.Mutex
	got      []byte
	down     transport.Down
	sentOnce sync.Once
	payload  []byte
}

func (a *recordingClientApp) Init() reactor.EventResult {
	a.sentOnce.Do(func() {
		a.down.Enqueue(a.payload)
		a.down.RegisterWriting()
	})
	return reactor.Ok
}
func (a *recordingClientApp) HasMoreData() bool            { return false }
func (a *recordingClientApp) Produce() reactor.EventResult { return reactor.Ok }

func (a *recordingClientApp) Consume(b []byte) reactor.EventResult {
	a.mu.Lock()
	a.got = append(a.got, b...)
	a.mu.Unlock()
	return reactor.Ok
}

func (a *recordingClientApp) HandleTimeout(int64, time.Time) reactor.EventResult { return reactor.Ok }

func (a *recordingClientApp) snapshot() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]byte, len(a.got))
	copy(out, a.got)
	return out
}

func TestTLSLayerRoundTrip(t *testing.T) {
	cfg := config.Defaults()
	serverTLSCfg, err := tlslayer.GenerateSelfSignedTLS([]string{"127.0.0.1", "localhost"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateSelfSignedTLS: %v", err)
	}
	clientTLSCfg := tlslayer.ClientConfig("localhost", true)

	payload := []byte("hello over tls")
	clientAppCh := make(chan *recordingClientApp, 1)

	serverFactory := reactor.SocketManagerFactoryFunc(func(mx *reactor.Multiplexer, sock netio.TCPStreamSocket) (reactor.SocketManager, reactor.Operation) {
		st := transport.New(mx, sock, cfg, nil, func(down transport.Down) transport.Layer {
			return tlslayer.NewLayer(tlslayer.RoleServer, serverTLSCfg, down, func(down transport.Down) transport.Layer {
				return &echoApp{down: down}
			})
		})
		return st, reactor.Read
	})

	serverMx, port, err := reactor.New(cfg, serverFactory, xlog.Default)
	if err != nil {
		t.Fatalf("server New: %v", err)
	}
	serverMx.Start()
	defer func() {
		_ = serverMx.SubmitShutdown()
		serverMx.Join()
		_ = serverMx.Close()
	}()

	clientSock, err := netio.MakeConnectedTCPStreamSocket(netio.Endpoint{IP: netio.LoopbackV4, Port: port})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	clientFactory := reactor.SocketManagerFactoryFunc(func(mx *reactor.Multiplexer, sock netio.TCPStreamSocket) (reactor.SocketManager, reactor.Operation) {
		st := transport.New(mx, sock, cfg, nil, func(down transport.Down) transport.Layer {
			return tlslayer.NewLayer(tlslayer.RoleClient, clientTLSCfg, down, func(down transport.Down) transport.Layer {
				app := &recordingClientApp{down: down, payload: payload}
				clientAppCh <- app
				return app
			})
		})
		return st, reactor.Read
	})

	clientMx, _, err := reactor.New(cfg, nil, xlog.Default)
	if err != nil {
		t.Fatalf("client New: %v", err)
	}
	mgr, initial := clientFactory.Create(clientMx, clientSock)
	if err := clientMx.AddBeforeStart(mgr, initial); err != nil {
		t.Fatalf("AddBeforeStart: %v", err)
	}
	clientMx.Start()
	defer func() {
		_ = clientMx.SubmitShutdown()
		clientMx.Join()
		_ = clientMx.Close()
	}()

	var clientApp *recordingClientApp
	select {
	case clientApp = <-clientAppCh:
	case <-time.After(2 * time.Second):
		t.Fatalf("client app never constructed")
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if string(clientApp.snapshot()) == string(payload) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("expected echoed payload %q, got %q", payload, clientApp.snapshot())
}
