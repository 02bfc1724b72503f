// Package reactor implements the single-threaded, readiness-based event loop
// (C9): one goroutine owns the listening socket, every client connection and
// the store, driven by Linux epoll. No mutex guards the store because
// nothing outside this goroutine ever touches it.
//
// The token scheme mirrors the mio-based reactor this design is ported from:
// SERVER is always token 0, the shutdown wake is always token 1, and client
// connections are handed out monotonically increasing tokens starting at 2.
package reactor

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/akashmaji946/nullkv/internal/command"
	"github.com/akashmaji946/nullkv/internal/logging"
	"github.com/akashmaji946/nullkv/internal/resp"
	"github.com/akashmaji946/nullkv/internal/store"
)

const (
	tokenServer = 0
	tokenWake   = 1
	firstToken  = 2

	readBufSize   = 16 * 1024
	maxEvents     = 128
	defaultTickMs = 100
)

// Metrics is the subset of observability hooks the reactor drives; a nil
// Metrics disables them all. Kept as an interface so internal/metrics can supply a
// Prometheus-backed implementation without this package importing it.
type Metrics interface {
	ConnectionOpened()
	ConnectionClosed()
	CommandDispatched(name string, isError bool)
	KeysExpired(n int)
}

// Reactor owns the listening socket, the connection table and the store.
type Reactor struct {
	addr          string
	tickMs        int
	sweepInterval time.Duration
	store         *store.Store
	logger        *logging.Logger
	metrics       Metrics

	epfd     int
	listenFd int
	wakeFd   int

	conns     map[int]*conn
	nextToken int

	onReady func(addr string)
}

// SetTick overrides the epoll_wait poll timeout; Run uses defaultTickMs if
// this is never called. This bounds how promptly the loop notices a new
// readable/writable fd or a shutdown wake, not how often it sweeps expired
// keys - see SetSweepInterval for that.
func (r *Reactor) SetTick(d time.Duration) {
	if d <= 0 {
		return
	}
	r.tickMs = int(d / time.Millisecond)
	if r.tickMs <= 0 {
		r.tickMs = 1
	}
}

// SetSweepInterval overrides how often Run calls Store.ExpireKeys. Run uses
// defaultTickMs worth of time if this is never called.
func (r *Reactor) SetSweepInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	r.sweepInterval = d
}

// OnReady registers a callback invoked with the bound listen address once
// the socket is up, before the event loop starts. Mainly useful in tests
// that bind to port 0 and need to learn the OS-assigned port.
func (r *Reactor) OnReady(fn func(addr string)) {
	r.onReady = fn
}

type conn struct {
	fd       int
	token    int
	remote   string
	inbuf    []byte
	outbuf   bytes.Buffer
	wantsOut bool
	closing  bool
}

// New builds a Reactor bound to addr (e.g. "127.0.0.1:6379"). It does not
// start listening until Run is called.
func New(addr string, st *store.Store, logger *logging.Logger, metrics Metrics) *Reactor {
	if logger == nil {
		logger = logging.Default()
	}
	return &Reactor{
		addr:          addr,
		tickMs:        defaultTickMs,
		sweepInterval: defaultTickMs * time.Millisecond,
		store:         st,
		logger:        logger,
		metrics:       metrics,
		conns:         make(map[int]*conn),
		nextToken:     firstToken,
	}
}

// Run binds the listening socket and drives the event loop until ctx is
// canceled or an unrecoverable error occurs. It is not safe to call Run
// concurrently or more than once on the same Reactor.
func (r *Reactor) Run(ctx context.Context) error {
	lfd, err := r.bind()
	if err != nil {
		return err
	}
	r.listenFd = lfd
	defer unix.Close(lfd)

	if r.onReady != nil {
		r.onReady(r.boundAddr())
	}

	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return fmt.Errorf("reactor: epoll_create1: %w", err)
	}
	r.epfd = epfd
	defer unix.Close(epfd)

	wakeFd, err := unix.Eventfd(0, unix.EFD_NONBLOCK)
	if err != nil {
		return fmt.Errorf("reactor: eventfd: %w", err)
	}
	r.wakeFd = wakeFd
	defer unix.Close(wakeFd)

	if err := r.epollAdd(tokenServer, lfd, unix.EPOLLIN); err != nil {
		return err
	}
	if err := r.epollAdd(tokenWake, wakeFd, unix.EPOLLIN); err != nil {
		return err
	}

	stopped := make(chan struct{})
	go func() {
		<-ctx.Done()
		r.wake()
		close(stopped)
	}()

	r.logger.Printf("reactor: listening on %s", r.addr)

	nextTick := time.Now().Add(r.sweepInterval)

	events := make([]unix.EpollEvent, maxEvents)
	for {
		select {
		case <-stopped:
			r.closeAll()
			return ctx.Err()
		default:
		}

		n, err := unix.EpollWait(r.epfd, events, r.tickMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("reactor: epoll_wait: %w", err)
		}

		for i := 0; i < n; i++ {
			token := int(events[i].Fd)
			mask := events[i].Events
			switch token {
			case tokenServer:
				r.acceptLoop()
			case tokenWake:
				r.drainWake()
			default:
				r.handleConn(token, mask)
			}
		}

		if now := time.Now(); !now.Before(nextTick) {
			if n := r.store.ExpireKeys(); n > 0 && r.metrics != nil {
				r.metrics.KeysExpired(n)
			}
			nextTick = now.Add(r.sweepInterval)
		}
	}
}

func (r *Reactor) bind() (int, error) {
	sa, fam, err := resolveAddr(r.addr)
	if err != nil {
		return -1, err
	}

	fd, err := unix.Socket(fam, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return -1, fmt.Errorf("reactor: socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("reactor: setsockopt: %w", err)
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("reactor: bind %s: %w", r.addr, err)
	}
	if err := unix.Listen(fd, 128); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("reactor: listen: %w", err)
	}
	return fd, nil
}

// epollAdd registers fd under token, overloading EpollEvent.Fd to carry the
// fixed token rather than the raw descriptor, so the dispatch switch in Run
// can match on SERVER/WAKE without a separate token-to-fd lookup.
func (r *Reactor) epollAdd(token, fd int, events uint32) error {
	ev := unix.EpollEvent{Events: events, Fd: int32(token)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("reactor: epoll_ctl add token %d: %w", token, err)
	}
	return nil
}

func (r *Reactor) wake() {
	buf := make([]byte, 8)
	buf[0] = 1
	unix.Write(r.wakeFd, buf)
}

func (r *Reactor) drainWake() {
	buf := make([]byte, 8)
	unix.Read(r.wakeFd, buf)
}

func (r *Reactor) acceptLoop() {
	for {
		fd, sa, err := unix.Accept4(r.listenFd, unix.SOCK_NONBLOCK)
		if err != nil {
			if err == unix.EAGAIN {
				return
			}
			r.logger.Printf("reactor: accept: %v", err)
			return
		}

		token := r.nextToken
		r.nextToken++

		c := &conn{fd: fd, token: token, remote: remoteString(sa), inbuf: make([]byte, 0, readBufSize)}
		r.conns[token] = c

		ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(token)}
		if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
			r.logger.Printf("reactor: epoll_ctl add conn: %v", err)
			unix.Close(fd)
			delete(r.conns, token)
			continue
		}

		if r.metrics != nil {
			r.metrics.ConnectionOpened()
		}
		r.logger.Printf("reactor: accepted %s as token %d", c.remote, token)
	}
}

func (r *Reactor) handleConn(token int, mask uint32) {
	c, ok := r.conns[token]
	if !ok {
		return
	}

	if mask&(unix.EPOLLHUP|unix.EPOLLERR) != 0 {
		r.closeConn(c)
		return
	}

	if mask&unix.EPOLLIN != 0 {
		r.readConn(c)
		if c.closing {
			return
		}
	}

	if mask&unix.EPOLLOUT != 0 && c.wantsOut {
		r.flushConn(c)
	}
}

func (r *Reactor) readConn(c *conn) {
	buf := make([]byte, readBufSize)
	for {
		n, err := unix.Read(c.fd, buf)
		if err != nil {
			if err == unix.EAGAIN {
				break
			}
			r.closeConn(c)
			return
		}
		if n == 0 {
			r.closeConn(c)
			return
		}
		c.inbuf = append(c.inbuf, buf[:n]...)
		if n < len(buf) {
			break
		}
	}

	r.drainFrames(c)
}

func (r *Reactor) drainFrames(c *conn) {
	for {
		frame, consumed, err := resp.Parse(c.inbuf)
		if err == resp.ErrIncomplete {
			break
		}

		reply := command.Dispatch(frame, r.store)
		if r.metrics != nil {
			r.metrics.CommandDispatched(commandName(frame), reply.IsError())
		}
		resp.Serialize(&c.outbuf, reply)

		c.inbuf = c.inbuf[consumed:]
	}

	if len(c.inbuf) == 0 {
		c.inbuf = c.inbuf[:0]
	}

	if c.outbuf.Len() > 0 {
		r.flushConn(c)
	}
}

func (r *Reactor) flushConn(c *conn) {
	data := c.outbuf.Bytes()
	for len(data) > 0 {
		n, err := unix.Write(c.fd, data)
		if err != nil {
			if err == unix.EAGAIN {
				r.setWritable(c, true)
				c.outbuf.Next(c.outbuf.Len() - len(data))
				return
			}
			r.closeConn(c)
			return
		}
		data = data[n:]
	}
	c.outbuf.Reset()
	r.setWritable(c, false)
}

func (r *Reactor) setWritable(c *conn, want bool) {
	if c.wantsOut == want {
		return
	}
	c.wantsOut = want

	events := uint32(unix.EPOLLIN)
	if want {
		events |= unix.EPOLLOUT
	}
	ev := unix.EpollEvent{Events: events, Fd: int32(c.token)}
	unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, c.fd, &ev)
}

func (r *Reactor) closeConn(c *conn) {
	c.closing = true
	unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, c.fd, nil)
	unix.Close(c.fd)
	delete(r.conns, c.token)
	if r.metrics != nil {
		r.metrics.ConnectionClosed()
	}
	r.logger.Printf("reactor: closed token %d (%s)", c.token, c.remote)
}

func (r *Reactor) closeAll() {
	for _, c := range r.conns {
		unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, c.fd, nil)
		unix.Close(c.fd)
	}
	r.conns = make(map[int]*conn)
}

func commandName(frame resp.Frame) string {
	if frame.Kind != resp.KindArray || len(frame.Elems) == 0 {
		return ""
	}
	head := frame.Elems[0]
	if head.Kind != resp.KindBulkString {
		return ""
	}
	return string(bytes.ToLower(head.Bytes))
}
