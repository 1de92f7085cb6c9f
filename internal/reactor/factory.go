package reactor

import "github.com/orizon-lang/netmux/internal/netio"

// SocketManagerFactory builds the manager that takes ownership of a freshly
// accepted connection (section 4.11). Returning a nil manager tells the
// Acceptor to close the connection immediately (e.g. an admission-control
// rejection).
type SocketManagerFactory interface {
	Create(mx *Multiplexer, sock netio.TCPStreamSocket) (SocketManager, Operation)
}

// SocketManagerFactoryFunc adapts a plain function to SocketManagerFactory.
type SocketManagerFactoryFunc func(mx *Multiplexer, sock netio.TCPStreamSocket) (SocketManager, Operation)

func (f SocketManagerFactoryFunc) Create(mx *Multiplexer, sock netio.TCPStreamSocket) (SocketManager, Operation) {
	return f(mx, sock)
}
