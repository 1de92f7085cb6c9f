//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package reactor

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/orizon-lang/netmux/internal/neterr"
)

// pollFallback backs platforms without a native epoll/kqueue binding
// (section 4.6 allows any backend that satisfies the Poller contract). It
// keeps the same registration-map discipline as the teacher's portable
// poller but drives real OS readiness through poll(2) on the raw fd
// directly, so it needs none of that poller's peek-based write-starvation
// workaround: POLLOUT readiness here is the kernel's, not inferred.
type pollFallback struct {
	mu   sync.Mutex
	mask map[int]Operation
}

func newOSPoller() Poller {
	return &pollFallback{mask: make(map[int]Operation)}
}

func (p *pollFallback) Open() error { return nil }

func (p *pollFallback) Add(fd int, initial Operation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mask[fd] = initial
	return nil
}

func (p *pollFallback) Modify(fd int, mask Operation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.mask[fd]; !ok {
		return neterr.InvalidArgumentf("modify unregistered fd %d", fd)
	}
	p.mask[fd] = mask
	return nil
}

func (p *pollFallback) Delete(fd int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.mask, fd)
	return nil
}

func (p *pollFallback) Wait(timeout time.Duration) ([]PollEvent, error) {
	p.mu.Lock()
	fds := make([]unix.PollFd, 0, len(p.mask))
	for fd, mask := range p.mask {
		var events int16
		if mask.Has(Read) {
			events |= unix.POLLIN
		}
		if mask.Has(Write) {
			events |= unix.POLLOUT
		}
		if events == 0 {
			continue
		}
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: events})
	}
	p.mu.Unlock()

	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}
	n, err := unix.Poll(fds, ms)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, neterr.RuntimeErrorf("poll: %v", err)
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]PollEvent, 0, n)
	for _, pfd := range fds {
		if pfd.Revents == 0 {
			continue
		}
		out = append(out, PollEvent{
			FD:       int(pfd.Fd),
			Readable: pfd.Revents&(unix.POLLIN|unix.POLLPRI) != 0,
			Writable: pfd.Revents&unix.POLLOUT != 0,
			HangUp:   pfd.Revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0,
		})
	}
	return out, nil
}

func (p *pollFallback) Close() error { return nil }
