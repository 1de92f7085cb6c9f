package netio

import (
	"golang.org/x/sys/unix"

	"github.com/orizon-lang/netmux/internal/neterr"
)

// MakeUDPDatagramSocket creates a UDP socket. When bindTo is non-nil the
// socket is bound (server/receiver role); a nil bindTo leaves it unbound so
// the caller can Connect it for a fixed-peer sender. This supplements the
// "secondary" udp-datagram kind named in section 3 but not elaborated on
// further than its name.
func MakeUDPDatagramSocket(bindTo *Endpoint) (UDPDatagramSocket, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return UDPDatagramSocket{}, neterr.SocketFailedf("socket: %v", err)
	}
	sock := UDPDatagramSocket{Socket{FD: fd}}
	if bindTo != nil {
		sa, err := bindTo.sockaddr()
		if err != nil {
			_ = Close(sock.Socket)
			return UDPDatagramSocket{}, err
		}
		if err := unix.Bind(fd, sa); err != nil {
			_ = Close(sock.Socket)
			return UDPDatagramSocket{}, neterr.SocketFailedf("bind to %v: %v", *bindTo, err)
		}
	}
	return sock, nil
}

// Connect fixes the peer for a UDP socket so Read/Write (rather than
// RecvFrom/SendTo) can be used.
func Connect(s UDPDatagramSocket, ep Endpoint) error {
	sa, err := ep.sockaddr()
	if err != nil {
		return err
	}
	if err := unix.Connect(s.FD, sa); err != nil {
		return neterr.SocketFailedf("connect to %v: %v", ep, err)
	}
	return nil
}

// RecvFrom receives one datagram, returning the sender's endpoint. A
// zero-length, nil-error result represents an empty datagram (not EOF —
// datagram sockets have no peer-closed signal).
func RecvFrom(s UDPDatagramSocket, buf []byte) (int, Endpoint, error) {
	n, sa, err := unix.Recvfrom(s.FD, buf, 0)
	if err != nil {
		return n, Endpoint{}, err
	}
	return n, endpointFromSockaddr(sa), nil
}

// SendTo sends one datagram to ep.
func SendTo(s UDPDatagramSocket, buf []byte, ep Endpoint) error {
	sa, err := ep.sockaddr()
	if err != nil {
		return err
	}
	return unix.Sendto(s.FD, buf, 0, sa)
}
