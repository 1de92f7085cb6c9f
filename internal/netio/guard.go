package netio

// Guard exclusively owns a socket and closes it on Release-less teardown.
// It is the only correct way to transfer socket ownership into a manager
// (section 4.2): construct the socket, wrap it in a Guard, and either let
// the Guard close it on an error path or Release() it once a manager has
// taken ownership.
type Guard struct {
	sock Socket
}

// NewGuard wraps sock for scoped ownership.
func NewGuard(sock Socket) *Guard {
	return &Guard{sock: sock}
}

// Close closes the held socket unless it has already been released or is
// invalid. Safe to call multiple times.
func (g *Guard) Close() {
	if g == nil || !g.sock.Valid() {
		return
	}
	_ = Close(g.sock)
	g.sock = Invalid
}

// Release disarms the guard and returns the socket it was holding; the
// guard's held value becomes the invalid sentinel and it will no longer
// close anything.
func (g *Guard) Release() Socket {
	s := g.sock
	g.sock = Invalid
	return s
}

// Get returns the currently held socket without transferring ownership.
func (g *Guard) Get() Socket { return g.sock }
