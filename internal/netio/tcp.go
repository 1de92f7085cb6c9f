package netio

import (
	"golang.org/x/sys/unix"

	"github.com/orizon-lang/netmux/internal/neterr"
)

// DefaultBacklog is the listen backlog used when the caller doesn't specify
// one, matching the original's max_conn_backlog.
const DefaultBacklog = 10

// MakeConnectedTCPStreamSocket creates a TCP socket and connects it to ep.
// The returned socket is already nonblocking-eligible; callers still decide
// when to flip O_NONBLOCK (a synchronous connect is sometimes useful for
// short-lived client tools).
func MakeConnectedTCPStreamSocket(ep Endpoint) (TCPStreamSocket, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return TCPStreamSocket{}, neterr.SocketFailedf("socket: %v", err)
	}
	sa, err := ep.sockaddr()
	if err != nil {
		_ = unix.Close(fd)
		return TCPStreamSocket{}, err
	}
	if err := unix.Connect(fd, sa); err != nil {
		_ = unix.Close(fd)
		return TCPStreamSocket{}, neterr.SocketFailedf("connect to %v: %v", ep, err)
	}
	return TCPStreamSocket{StreamSocket{Socket{FD: fd}}}, nil
}

// MakeTCPAcceptSocket creates, binds and listens on a TCP socket for ep.
// Port 0 requests an ephemeral port; the bound port is returned regardless.
func MakeTCPAcceptSocket(ep Endpoint, backlog int) (TCPAcceptSocket, uint16, error) {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return TCPAcceptSocket{}, 0, neterr.SocketFailedf("socket: %v", err)
	}
	sock := TCPAcceptSocket{Socket{FD: fd}}
	if err := Reuseaddr(sock.Socket, true); err != nil {
		_ = Close(sock.Socket)
		return TCPAcceptSocket{}, 0, neterr.SocketFailedf("setsockopt(SO_REUSEADDR): %v", err)
	}
	sa, err := ep.sockaddr()
	if err != nil {
		_ = Close(sock.Socket)
		return TCPAcceptSocket{}, 0, err
	}
	if err := unix.Bind(fd, sa); err != nil {
		_ = Close(sock.Socket)
		return TCPAcceptSocket{}, 0, neterr.SocketFailedf("bind to %v: %v", ep, err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		_ = Close(sock.Socket)
		return TCPAcceptSocket{}, 0, neterr.SocketFailedf("listen: %v", err)
	}
	port, err := PortOf(sock.Socket)
	if err != nil {
		_ = Close(sock.Socket)
		return TCPAcceptSocket{}, 0, err
	}
	return sock, port, nil
}

// Accept accepts one connection from a listening socket. A returned Invalid
// socket paired with a temporary error (see IsTemporary) means "try again
// once more events arrive"; any other error is fatal to the acceptor.
func Accept(ln TCPAcceptSocket) (TCPStreamSocket, error) {
	fd, _, err := unix.Accept(ln.FD)
	if err != nil {
		return TCPStreamSocket{StreamSocket{Invalid}}, err
	}
	return TCPStreamSocket{StreamSocket{Socket{FD: fd}}}, nil
}

// Read reads into buf, returning the C-style convention documented in
// section 4.1: n > 0 is progress, n == 0 with a nil error is peer EOF, and
// a non-nil error comes with a negative n and should be checked with
// IsTemporary.
func Read(s Socket, buf []byte) (int, error) {
	n, err := unix.Read(s.FD, buf)
	return n, err
}

// Write writes buf to s with the same convention as Read.
func Write(s Socket, buf []byte) (int, error) {
	n, err := unix.Write(s.FD, buf)
	return n, err
}
