// Package transport implements the per-connection stream transport and the
// layer-composition contract that sits above it (section 4.7-4.9): the
// bounded read/write loop, receive-policy-driven framing, and the
// up-facing/down-facing interface that lets a TLS layer or a bare
// pass-through adaptor plug in transparently.
package transport

// ReceivePolicy pairs a minimum and maximum read size: the transport sizes
// its read buffer to Max and withholds the upstream Consume call until at
// least Min bytes have accumulated. When a read would block before Min is
// reached, the partial bytes stay buffered until a later read completes them.
type ReceivePolicy struct {
	Min int
	Max int
}

// Exactly requires precisely n bytes per delivered chunk.
func Exactly(n int) ReceivePolicy { return ReceivePolicy{Min: n, Max: n} }

// UpTo delivers anything from one byte up to n per chunk.
func UpTo(n int) ReceivePolicy { return ReceivePolicy{Min: 1, Max: n} }

// Between delivers at least a bytes and at most b per chunk.
func Between(a, b int) ReceivePolicy { return ReceivePolicy{Min: a, Max: b} }

// Stop configures a zero-sized read buffer, pausing delivery entirely.
func Stop() ReceivePolicy { return ReceivePolicy{Min: 0, Max: 0} }
