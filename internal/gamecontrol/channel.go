// Package gamecontrol bridges HTTP requests to physical game controllers over
// broadcast UDP datagrams. Start commands are fire-and-forget; status queries
// correlate an asynchronous reply through a pending-request registry so
// concurrent queries sharing the socket cannot consume each other's replies.
package gamecontrol

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/manglesh1/Pixelpulse-sub002/internal/apperr"
)

const maxDatagram = 2048

// Options tunes a Channel.
type Options struct {
	// ReplyWait bounds how long one status query waits for its reply.
	ReplyWait time.Duration
	// Legacy marks controllers that do not echo correlation tokens. Status
	// payloads then omit the token and queries are serialized so only one is
	// in flight at a time.
	Legacy bool
}

type pending struct {
	token string // empty in legacy mode
	ch    chan string
}

// Channel owns one shared UDP socket used for every outbound command and
// every inbound controller reply.
type Channel struct {
	conn      *net.UDPConn
	replyWait time.Duration
	legacy    bool

	mu      sync.Mutex
	waiters map[string]*pending // keyed by token; legacy entry keyed by ""

	// serializes legacy status queries (single flight)
	legacyGate sync.Mutex

	done chan struct{}
}

// New binds the shared socket on an ephemeral port, enables broadcast sends
// and starts the reply reader.
func New(opts Options) (*Channel, error) {
	if opts.ReplyWait <= 0 {
		opts.ReplyWait = 5 * time.Second
	}
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, apperr.Transportf("bind control socket: %v", err)
	}
	enableBroadcast(conn)
	ch := &Channel{
		conn:      conn,
		replyWait: opts.ReplyWait,
		legacy:    opts.Legacy,
		waiters:   map[string]*pending{},
		done:      make(chan struct{}),
	}
	go ch.readLoop()
	return ch, nil
}

func enableBroadcast(conn *net.UDPConn) {
	sc, err := conn.SyscallConn()
	if err != nil {
		return
	}
	_ = sc.Control(func(fd uintptr) {
		if err := syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_BROADCAST, 1); err != nil {
			slog.Warn("SO_BROADCAST not set; directed broadcasts may fail", "err", err)
		}
	})
}

func (c *Channel) Close() error {
	close(c.done)
	return c.conn.Close()
}

// LocalPort returns the bound port of the shared socket.
func (c *Channel) LocalPort() int { return c.conn.LocalAddr().(*net.UDPAddr).Port }

// Start sends `start:<variantCode>` to (addr, port). Fire-and-forget: success
// means the datagram left this host, not that hardware acted on it.
func (c *Channel) Start(ctx context.Context, variantCode, addr string, port int) error {
	return c.send(ctx, "start:"+variantCode, addr, port)
}

// Status sends a status query and waits for its correlated reply. The
// outbound payload carries a per-request token (`status:<code>:<token>`)
// which the controller echoes back as `<token>:<payload>`; the registry
// routes each reply to exactly one waiter. In legacy mode the token is
// omitted, the next inbound datagram is taken as the reply, and queries are
// serialized so concurrent callers cannot cross-talk.
//
// A query with no reply inside the bounded window fails with apperr.ErrTimeout
// (callers map this to 504). No automatic retry; layer retry.Do if desired.
func (c *Channel) Status(ctx context.Context, gameCode, addr string, port int) (string, error) {
	if c.legacy {
		c.legacyGate.Lock()
		defer c.legacyGate.Unlock()
		return c.statusOnce(ctx, "status:"+gameCode, "", addr, port)
	}
	token := uuid.NewString()[:8]
	return c.statusOnce(ctx, fmt.Sprintf("status:%s:%s", gameCode, token), token, addr, port)
}

func (c *Channel) statusOnce(ctx context.Context, payload, token, addr string, port int) (string, error) {
	w := &pending{token: token, ch: make(chan string, 1)}
	c.mu.Lock()
	if _, busy := c.waiters[token]; busy {
		// only possible for the legacy key; the gate should prevent it
		c.mu.Unlock()
		return "", apperr.Transportf("status query already in flight")
	}
	c.waiters[token] = w
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.waiters, token)
		c.mu.Unlock()
	}()

	if err := c.send(ctx, payload, addr, port); err != nil {
		return "", err
	}
	timer := time.NewTimer(c.replyWait)
	defer timer.Stop()
	select {
	case reply := <-w.ch:
		return reply, nil
	case <-timer.C:
		return "", fmt.Errorf("%w: no status reply within %s", apperr.ErrTimeout, c.replyWait)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Channel) send(ctx context.Context, payload, addr string, port int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ip := net.ParseIP(strings.TrimSpace(addr))
	if ip == nil {
		return apperr.Validationf("bad controller address %q", addr)
	}
	n, err := c.conn.WriteToUDP([]byte(payload), &net.UDPAddr{IP: ip, Port: port})
	if err != nil {
		return apperr.Transportf("send to %s:%d: %v", addr, port, err)
	}
	slog.Debug("control datagram sent", "to", addr, "port", port, "bytes", n)
	return nil
}

// readLoop routes inbound datagrams to their waiters. Tokened replies look
// like `<token>:<payload>`; anything else is only meaningful in legacy mode.
// Unmatched or malformed datagrams are logged and dropped, never fatal.
func (c *Channel) readLoop() {
	buf := make([]byte, maxDatagram)
	for {
		n, from, err := c.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}
			slog.Warn("control socket read failed", "err", err)
			continue
		}
		msg := strings.TrimSpace(string(buf[:n]))
		if msg == "" {
			continue
		}
		if !c.dispatch(msg) {
			slog.Warn("dropping uncorrelated controller reply", "from", from.String(), "payload", msg)
		}
	}
}

func (c *Channel) dispatch(msg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tok, rest, ok := strings.Cut(msg, ":"); ok {
		if w, found := c.waiters[tok]; found {
			delete(c.waiters, tok)
			w.ch <- rest
			return true
		}
	}
	// legacy: the single in-flight query owns the next datagram
	if w, found := c.waiters[""]; found {
		delete(c.waiters, "")
		w.ch <- msg
		return true
	}
	return false
}
