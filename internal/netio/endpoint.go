package netio

import (
	"net"

	"golang.org/x/sys/unix"

	"github.com/orizon-lang/netmux/internal/neterr"
)

// Endpoint is a minimal IPv4 host/port pair. Full URI parsing is explicitly
// out of scope (section 1); this is the typed address the original's
// ip::v4_endpoint represents, without dragging in a URI grammar.
type Endpoint struct {
	IP   net.IP
	Port uint16
}

// AnyV4 is 0.0.0.0, used when Local is not requested for the listening socket.
var AnyV4 = net.IPv4(0, 0, 0, 0)

// LoopbackV4 is 127.0.0.1.
var LoopbackV4 = net.IPv4(127, 0, 0, 1)

func (e Endpoint) sockaddr() (*unix.SockaddrInet4, error) {
	v4 := e.IP.To4()
	if v4 == nil {
		return nil, neterr.InvalidArgumentf("endpoint %v is not a valid IPv4 address", e.IP)
	}
	sa := &unix.SockaddrInet4{Port: int(e.Port)}
	copy(sa.Addr[:], v4)
	return sa, nil
}

func endpointFromSockaddr(sa unix.Sockaddr) Endpoint {
	if a, ok := sa.(*unix.SockaddrInet4); ok {
		return Endpoint{IP: net.IPv4(a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3]), Port: uint16(a.Port)}
	}
	return Endpoint{}
}
