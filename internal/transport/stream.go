package transport

import (
	"time"

	"github.com/orizon-lang/netmux/internal/config"
	"github.com/orizon-lang/netmux/internal/netio"
	"github.com/orizon-lang/netmux/internal/reactor"
)

// NextFactory builds the layer stack sitting above a StreamTransport, given
// the Down handle the layer should call back through.
type NextFactory func(down Down) Layer

// StreamTransport is the per-connection socket manager from section 4.7: it
// owns the read/write buffers for one TCP stream and runs the bounded
// read/write loop, delivering framed chunks to the layer above via
// ReceivePolicy and pulling outbound bytes from it on write readiness.
type StreamTransport struct {
	reactor.Base

	sock netio.TCPStreamSocket
	next Layer
	pool *BufferPool

	readBuf     []byte
	received    int
	minReadSize int

	writeBuf []byte

	maxConsecutiveReads   int
	maxConsecutiveWrites  int
	maxConsecutiveFetches int
}

// New builds a StreamTransport bound to sock; it does not register it with
// mx (the caller, e.g. the Acceptor via a factory, does that). next is
// constructed immediately with the transport itself as its Down handle.
func New(mx *reactor.Multiplexer, sock netio.TCPStreamSocket, cfg *config.Config, pool *BufferPool, next NextFactory) *StreamTransport {
	if pool == nil {
		pool = DefaultBufferPool()
	}
	st := &StreamTransport{
		sock:                  sock,
		pool:                  pool,
		maxConsecutiveReads:   int(cfg.Int(config.KeyMaxConsecutiveReads, 20)),
		maxConsecutiveWrites:  int(cfg.Int(config.KeyMaxConsecutiveWrites, 20)),
		maxConsecutiveFetches: int(cfg.Int(config.KeyMaxConsecutiveFetches, 10)),
	}
	st.Base = reactor.NewBase(mx, sock.FD, reactor.Read)
	st.next = next(st)
	return st
}

func (st *StreamTransport) Init() reactor.EventResult {
	if err := netio.Nonblocking(st.sock.Socket, true); err != nil {
		st.HandleError(err)
		return reactor.Error
	}
	if len(st.readBuf) == 0 {
		st.ConfigureNextRead(UpTo(4096))
	}
	return st.next.Init()
}

func (st *StreamTransport) HandleReadEvent() reactor.EventResult {
	for i := 0; i < st.maxConsecutiveReads; i++ {
		if st.received >= len(st.readBuf) {
			return reactor.Ok
		}
		n, err := netio.Read(st.sock.Socket, st.readBuf[st.received:])
		switch {
		case n > 0:
			st.received += n
			if st.received < st.minReadSize {
				continue
			}
			result := st.next.Consume(st.readBuf[:st.received])
			st.received = 0
			if result == reactor.Error {
				return reactor.Error
			}
		case err == nil:
			return reactor.Error
		case netio.IsTemporary(err):
			return reactor.Ok
		default:
			st.HandleError(err)
			return reactor.Error
		}
	}
	return reactor.Ok
}

func (st *StreamTransport) HandleWriteEvent() reactor.EventResult {
	for i := 0; i < st.maxConsecutiveWrites; i++ {
		if len(st.writeBuf) == 0 {
			if r, ok := st.fetch(); !ok {
				return r
			}
		}
		n, err := netio.Write(st.sock.Socket, st.writeBuf)
		switch {
		case n > 0:
			st.writeBuf = st.writeBuf[n:]
			if len(st.writeBuf) == 0 {
				if r, ok := st.fetch(); !ok {
					return r
				}
			}
		case netio.IsTemporary(err):
			return reactor.Ok
		default:
			st.HandleError(err)
			return reactor.Error
		}
	}
	return reactor.Ok
}

// fetch asks the layer above for more outbound bytes. The bool return is
// false when the caller should return immediately with the accompanying
// EventResult (either an error from produce, or Done because nothing was
// produced).
func (st *StreamTransport) fetch() (reactor.EventResult, bool) {
	for i := 0; i < st.maxConsecutiveFetches && st.next.HasMoreData(); i++ {
		if r := st.next.Produce(); r == reactor.Error {
			return reactor.Error, false
		}
		if len(st.writeBuf) > 0 {
			return reactor.Ok, true
		}
	}
	if len(st.writeBuf) > 0 {
		return reactor.Ok, true
	}
	return reactor.Done, false
}

func (st *StreamTransport) HandleTimeout(id int64, now time.Time) reactor.EventResult {
	return st.next.HandleTimeout(id, now)
}

// ConfigureNextRead resizes the read buffer to policy.Max and resets the
// accumulation offset, per the downfacing contract (section 4.8).
func (st *StreamTransport) ConfigureNextRead(policy ReceivePolicy) {
	if cap(st.readBuf) != 0 {
		st.pool.Put(st.readBuf[:cap(st.readBuf)])
	}
	st.received = 0
	st.minReadSize = policy.Min
	if policy.Max == 0 {
		st.readBuf = nil
		return
	}
	st.readBuf = st.pool.GetFull(policy.Max)
}

func (st *StreamTransport) WriteBuffer() Buffer { return Buffer{data: &st.writeBuf} }

func (st *StreamTransport) Enqueue(b []byte) { st.writeBuf = append(st.writeBuf, b...) }
