package reactor

import (
	"testing"
	"time"

	"github.com/orizon-lang/netmux/internal/config"
	"github.com/orizon-lang/netmux/internal/netio"
	"github.com/orizon-lang/netmux/internal/xlog"
)

// echoManager reads whatever is available and writes it straight back,
// mirroring the minimal manager shape production code builds on top of.
type echoManager struct {
	Base
	sock netio.TCPStreamSocket
}

func (e *echoManager) Init() EventResult { return Ok }

func (e *echoManager) HandleReadEvent() EventResult {
	buf := make([]byte, 4096)
	n, err := netio.Read(e.sock.Socket, buf)
	if n == 0 && err == nil {
		return Done
	}
	if err != nil {
		if netio.IsTemporary(err) {
			return Ok
		}
		return Error
	}
	if _, werr := netio.Write(e.sock.Socket, buf[:n]); werr != nil && !netio.IsTemporary(werr) {
		return Error
	}
	return Ok
}

func (e *echoManager) HandleWriteEvent() EventResult { return Ok }

func (e *echoManager) HandleTimeout(int64, time.Time) EventResult { return Ok }

func TestMultiplexerEchoRoundTrip(t *testing.T) {
	factory := SocketManagerFactoryFunc(func(mx *Multiplexer, sock netio.TCPStreamSocket) (SocketManager, Operation) {
		m := &echoManager{sock: sock}
		m.Base = NewBase(mx, sock.FD, Read)
		return m, Read
	})

	cfg := config.Defaults()
	mx, port, err := New(cfg, factory, xlog.Default)
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

	payload := []byte("ping")
	if _, err := netio.Write(client.Socket, payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	buf := make([]byte, len(payload))
	got := 0
	for got < len(payload) && time.Now().Before(deadline) {
		n, err := netio.Read(client.Socket, buf[got:])
		if n > 0 {
			got += n
			continue
		}
		if err != nil && netio.IsTemporary(err) {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if err != nil {
			t.Fatalf("read: %v", err)
		}
	}
	if string(buf) != string(payload) {
		t.Fatalf("echo mismatch: got %q want %q", buf, payload)
	}
}

func TestMultiplexerTimerFires(t *testing.T) {
	mx, _, err := New(config.Defaults(), nil, xlog.Default)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mx.Start()
	defer func() {
		_ = mx.SubmitShutdown()
		mx.Join()
		_ = mx.Close()
	}()

	r, w, err := netio.MakePipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer netio.Close(w.Socket)
	_ = netio.Nonblocking(r.Socket, true)

	fired := make(chan int64, 1)
	m := &timeoutManager{fd: r.FD, fired: fired}
	m.Base = NewBase(mx, r.FD, None)
	if err := mx.SubmitAdd(m, None); err != nil {
		t.Fatalf("submit add: %v", err)
	}
	wantID := m.SetTimeoutIn(50 * time.Millisecond)

	select {
	case gotID := <-fired:
		if gotID != wantID {
			t.Fatalf("handle_timeout id = %d, want %d", gotID, wantID)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout callback never fired")
	}
}

// TestMultiplexerTimerMultiplePerSocket exercises the id-keyed timer set's
// core promise (section 3): a manager may have more than one live deadline
// at once, and both still fire rather than the later arm silently cancelling
// the earlier one.
func TestMultiplexerTimerMultiplePerSocket(t *testing.T) {
	mx, _, err := New(config.Defaults(), nil, xlog.Default)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mx.Start()
	defer func() {
		_ = mx.SubmitShutdown()
		mx.Join()
		_ = mx.Close()
	}()

	r, w, err := netio.MakePipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer netio.Close(w.Socket)
	_ = netio.Nonblocking(r.Socket, true)

	fired := make(chan int64, 2)
	m := &timeoutManager{fd: r.FD, fired: fired}
	m.Base = NewBase(mx, r.FD, None)
	if err := mx.SubmitAdd(m, None); err != nil {
		t.Fatalf("submit add: %v", err)
	}
	idA := m.SetTimeoutIn(10 * time.Millisecond)
	idB := m.SetTimeoutIn(20 * time.Millisecond)
	if idA == idB {
		t.Fatalf("expected distinct ids, got %d twice", idA)
	}

	got := make(map[int64]bool)
	for len(got) < 2 {
		select {
		case id := <-fired:
			got[id] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of 2 concurrent timeouts fired: %v", len(got), got)
		}
	}
	if !got[idA] || !got[idB] {
		t.Fatalf("expected both ids %d and %d to fire, got %v", idA, idB, got)
	}
}

type timeoutManager struct {
	Base
	fd    int
	fired chan int64
}

func (m *timeoutManager) FD() int                     { return m.fd }
func (m *timeoutManager) Init() EventResult            { return Ok }
func (m *timeoutManager) HandleReadEvent() EventResult { return Ok }

func (m *timeoutManager) HandleWriteEvent() EventResult { return Ok }

func (m *timeoutManager) HandleTimeout(id int64, _ time.Time) EventResult {
	m.fired <- id
	return Ok
}
