// Package netio implements the typed socket family described in section
// 4.1: thin, nonblocking wrappers over raw OS file descriptors, driven
// directly through golang.org/x/sys/unix the way the teacher's kqueue
// backend drives its registrations, rather than through net.Conn.
package netio

import (
	"errors"

	"golang.org/x/sys/unix"

	"github.com/orizon-lang/netmux/internal/neterr"
)

// FD is the raw OS handle kind shared by every socket wrapper.
type FD = int

// InvalidFD is the sentinel for "no socket".
const InvalidFD FD = -1

// Socket is the common, kind-erased handle. Kind-specific wrappers embed it
// to carry a phantom type at the call-site without adding runtime cost.
type Socket struct {
	FD FD
}

// Invalid is the zero-value sentinel socket.
var Invalid = Socket{FD: InvalidFD}

func (s Socket) Valid() bool { return s.FD != InvalidFD }

func (s Socket) Equal(other Socket) bool { return s.FD == other.FD }

// StreamSocket is a connection-oriented, bidirectional byte stream endpoint.
type StreamSocket struct{ Socket }

// TCPStreamSocket is a StreamSocket known to be backed by TCP.
type TCPStreamSocket struct{ StreamSocket }

// TCPAcceptSocket is a listening TCP socket.
type TCPAcceptSocket struct{ Socket }

// UDPDatagramSocket is a connectionless datagram endpoint.
type UDPDatagramSocket struct{ Socket }

// PipeSocket is one end of a unidirectional control pipe.
type PipeSocket struct{ Socket }

// Close closes the underlying fd unconditionally. Callers normally reach
// this only through Guard or manager teardown.
func Close(s Socket) error {
	if !s.Valid() {
		return nil
	}
	return unix.Close(s.FD)
}

// Shutdown shuts down the socket for the given direction (unix.SHUT_RD,
// SHUT_WR, or SHUT_RDWR).
func Shutdown(s Socket, how int) error {
	if !s.Valid() {
		return nil
	}
	return unix.Shutdown(s.FD, how)
}

// Nonblocking enables or disables O_NONBLOCK on s.
func Nonblocking(s Socket, enabled bool) error {
	return unix.SetNonblock(s.FD, enabled)
}

// Reuseaddr enables or disables SO_REUSEADDR on s.
func Reuseaddr(s Socket, enabled bool) error {
	v := 0
	if enabled {
		v = 1
	}
	return unix.SetsockoptInt(s.FD, unix.SOL_SOCKET, unix.SO_REUSEADDR, v)
}

// Keepalive enables or disables SO_KEEPALIVE on a stream socket.
func Keepalive(s StreamSocket, enabled bool) error {
	v := 0
	if enabled {
		v = 1
	}
	return unix.SetsockoptInt(s.FD, unix.SOL_SOCKET, unix.SO_KEEPALIVE, v)
}

// Nodelay enables or disables TCP_NODELAY (Nagle's algorithm) on a TCP
// stream socket.
func Nodelay(s TCPStreamSocket, enabled bool) error {
	v := 0
	if enabled {
		v = 1
	}
	return unix.SetsockoptInt(s.FD, unix.IPPROTO_TCP, unix.TCP_NODELAY, v)
}

// PortOf returns the locally bound port of s, or an error if s is not bound.
func PortOf(s Socket) (uint16, error) {
	sa, err := unix.Getsockname(s.FD)
	if err != nil {
		return 0, neterr.SocketFailedf("getsockname: %v", err)
	}
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return uint16(a.Port), nil
	default:
		return 0, neterr.InvalidArgumentf("socket is not bound to an IPv4 endpoint")
	}
}

// IsTemporary reports whether err, as returned from a Read/Write/Accept
// syscall, indicates the caller should retry later rather than treat the
// operation as failed (EAGAIN/EWOULDBLOCK/EINTR).
func IsTemporary(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR)
}
