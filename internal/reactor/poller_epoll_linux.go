//go:build linux

package reactor

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/orizon-lang/netmux/internal/neterr"
)

// epollPoller is the Linux backend: an fd's operation mask translates
// directly to EPOLLIN/EPOLLOUT, armed with EPOLL_CTL_ADD at registration
// and re-armed with EPOLL_CTL_MOD on every mask change (section 4.6).
type epollPoller struct {
	epfd int
}

func newOSPoller() Poller { return &epollPoller{epfd: -1} }

func (p *epollPoller) Open() error {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return neterr.RuntimeErrorf("epoll_create1: %v", err)
	}
	p.epfd = fd
	return nil
}

func epollEventsFor(mask Operation) uint32 {
	var ev uint32
	if mask.Has(Read) {
		ev |= unix.EPOLLIN
	}
	if mask.Has(Write) {
		ev |= unix.EPOLLOUT
	}
	return ev
}

func (p *epollPoller) Add(fd int, initial Operation) error {
	ev := unix.EpollEvent{Events: epollEventsFor(initial), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return neterr.SocketFailedf("epoll_ctl(ADD, %d): %v", fd, err)
	}
	return nil
}

func (p *epollPoller) Modify(fd int, mask Operation) error {
	ev := unix.EpollEvent{Events: epollEventsFor(mask), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return neterr.SocketFailedf("epoll_ctl(MOD, %d): %v", fd, err)
	}
	return nil
}

func (p *epollPoller) Delete(fd int) error {
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil && err != unix.ENOENT && err != unix.EBADF {
		return neterr.SocketFailedf("epoll_ctl(DEL, %d): %v", fd, err)
	}
	return nil
}

func (p *epollPoller) Wait(timeout time.Duration) ([]PollEvent, error) {
	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}
	buf := make([]unix.EpollEvent, 128)
	n, err := unix.EpollWait(p.epfd, buf, ms)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, neterr.RuntimeErrorf("epoll_wait: %v", err)
	}
	out := make([]PollEvent, 0, n)
	for i := 0; i < n; i++ {
		e := buf[i]
		out = append(out, PollEvent{
			FD:       int(e.Fd),
			Readable: e.Events&(unix.EPOLLIN|unix.EPOLLPRI) != 0,
			Writable: e.Events&unix.EPOLLOUT != 0,
			HangUp:   e.Events&(unix.EPOLLHUP|unix.EPOLLRDHUP|unix.EPOLLERR) != 0,
		})
	}
	return out, nil
}

func (p *epollPoller) Close() error {
	if p.epfd < 0 {
		return nil
	}
	err := unix.Close(p.epfd)
	p.epfd = -1
	return err
}
