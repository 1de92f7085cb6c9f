//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package reactor

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/orizon-lang/netmux/internal/neterr"
)

// kqueuePoller is the BSD/macOS backend. Both filters are registered
// EV_DISABLEd at Add time and individually EV_ENABLEd / EV_DISABLEd on every
// Modify, matching the registration dance section 4.6 describes for kqueue.
type kqueuePoller struct {
	kq int
}

func newOSPoller() Poller { return &kqueuePoller{kq: -1} }

func (p *kqueuePoller) Open() error {
	fd, err := unix.Kqueue()
	if err != nil {
		return neterr.RuntimeErrorf("kqueue: %v", err)
	}
	p.kq = fd
	return nil
}

func (p *kqueuePoller) Add(fd int, initial Operation) error {
	changes := []unix.Kevent_t{
		{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_ADD | unix.EV_DISABLE},
		{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_ADD | unix.EV_DISABLE},
	}
	if _, err := unix.Kevent(p.kq, changes, nil, nil); err != nil {
		return neterr.SocketFailedf("kevent(ADD, %d): %v", fd, err)
	}
	return p.Modify(fd, initial)
}

func (p *kqueuePoller) Modify(fd int, mask Operation) error {
	readFlag := unix.EV_DISABLE
	if mask.Has(Read) {
		readFlag = unix.EV_ENABLE
	}
	writeFlag := unix.EV_DISABLE
	if mask.Has(Write) {
		writeFlag = unix.EV_ENABLE
	}
	changes := []unix.Kevent_t{
		{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: uint16(readFlag)},
		{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: uint16(writeFlag)},
	}
	if _, err := unix.Kevent(p.kq, changes, nil, nil); err != nil {
		return neterr.SocketFailedf("kevent(MOD, %d): %v", fd, err)
	}
	return nil
}

func (p *kqueuePoller) Delete(fd int) error {
	changes := []unix.Kevent_t{
		{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_DELETE},
		{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_DELETE},
	}
	_, _ = unix.Kevent(p.kq, changes, nil, nil)
	return nil
}

func (p *kqueuePoller) Wait(timeout time.Duration) ([]PollEvent, error) {
	var tsPtr *unix.Timespec
	if timeout >= 0 {
		ts := unix.NsecToTimespec(timeout.Nanoseconds())
		tsPtr = &ts
	}
	buf := make([]unix.Kevent_t, 128)
	n, err := unix.Kevent(p.kq, nil, buf, tsPtr)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, neterr.RuntimeErrorf("kevent wait: %v", err)
	}
	merged := make(map[int]*PollEvent, n)
	order := make([]int, 0, n)
	for i := 0; i < n; i++ {
		ev := buf[i]
		fd := int(ev.Ident)
		pe, ok := merged[fd]
		if !ok {
			pe = &PollEvent{FD: fd}
			merged[fd] = pe
			order = append(order, fd)
		}
		if ev.Flags&unix.EV_ERROR != 0 {
			pe.HangUp = true
			continue
		}
		if ev.Flags&unix.EV_EOF != 0 {
			pe.HangUp = true
		}
		switch ev.Filter {
		case unix.EVFILT_READ:
			pe.Readable = true
		case unix.EVFILT_WRITE:
			pe.Writable = true
		}
	}
	out := make([]PollEvent, 0, len(order))
	for _, fd := range order {
		out = append(out, *merged[fd])
	}
	return out, nil
}

func (p *kqueuePoller) Close() error {
	if p.kq < 0 {
		return nil
	}
	err := unix.Close(p.kq)
	p.kq = -1
	return err
}
