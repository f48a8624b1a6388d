package gamecontrol

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/manglesh1/Pixelpulse-sub002/internal/apperr"
)

// fakeController is a loopback UDP endpoint standing in for game hardware.
type fakeController struct {
	conn *net.UDPConn

	mu       sync.Mutex
	received []string
}

func newFakeController(t *testing.T, reply func(payload string) string) *fakeController {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("bind fake controller: %v", err)
	}
	fc := &fakeController{conn: conn}
	t.Cleanup(func() { conn.Close() })
	go func() {
		buf := make([]byte, 2048)
		for {
			n, from, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			payload := string(buf[:n])
			fc.mu.Lock()
			fc.received = append(fc.received, payload)
			fc.mu.Unlock()
			if reply == nil {
				continue
			}
			if out := reply(payload); out != "" {
				_, _ = conn.WriteToUDP([]byte(out), from)
			}
		}
	}()
	return fc
}

func (fc *fakeController) port() int { return fc.conn.LocalAddr().(*net.UDPAddr).Port }

func (fc *fakeController) seen() []string {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return append([]string(nil), fc.received...)
}

func newChannel(t *testing.T, opts Options) *Channel {
	t.Helper()
	ch, err := New(opts)
	if err != nil {
		t.Fatalf("new channel: %v", err)
	}
	t.Cleanup(func() { ch.Close() })
	return ch
}

func TestStart_FireAndForget(t *testing.T) {
	fc := newFakeController(t, nil)
	ch := newChannel(t, Options{ReplyWait: time.Second})

	if err := ch.Start(context.Background(), "LM1", "127.0.0.1", fc.port()); err != nil {
		t.Fatalf("start: %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if got := fc.seen(); len(got) == 1 {
			if got[0] != "start:LM1" {
				t.Fatalf("datagram = %q", got[0])
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("controller never received the start datagram")
}

func TestStart_BadAddress(t *testing.T) {
	ch := newChannel(t, Options{ReplyWait: time.Second})
	err := ch.Start(context.Background(), "LM1", "not-an-ip", 9999)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

// echoStatus parses `status:<code>:<token>` and answers `<token>:running <code>`.
func echoStatus(payload string) string {
	parts := strings.Split(payload, ":")
	if len(parts) != 3 || parts[0] != "status" {
		return ""
	}
	return fmt.Sprintf("%s:running %s", parts[2], parts[1])
}

func TestStatus_CorrelatedReply(t *testing.T) {
	fc := newFakeController(t, echoStatus)
	ch := newChannel(t, Options{ReplyWait: 2 * time.Second})

	reply, err := ch.Status(context.Background(), "LM1", "127.0.0.1", fc.port())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if reply != "running LM1" {
		t.Fatalf("reply = %q", reply)
	}
}

func TestStatus_ConcurrentQueriesDoNotCrossTalk(t *testing.T) {
	fc := newFakeController(t, echoStatus)
	ch := newChannel(t, Options{ReplyWait: 3 * time.Second})

	codes := []string{"A1", "B2", "C3", "D4"}
	var wg sync.WaitGroup
	errs := make([]error, len(codes))
	replies := make([]string, len(codes))
	for i, code := range codes {
		wg.Add(1)
		go func(i int, code string) {
			defer wg.Done()
			replies[i], errs[i] = ch.Status(context.Background(), code, "127.0.0.1", fc.port())
		}(i, code)
	}
	wg.Wait()
	for i, code := range codes {
		if errs[i] != nil {
			t.Fatalf("status %s: %v", code, errs[i])
		}
		if want := "running " + code; replies[i] != want {
			t.Fatalf("query %s got someone else's reply: %q", code, replies[i])
		}
	}
}

func TestStatus_TimeoutWhenSilent(t *testing.T) {
	fc := newFakeController(t, nil) // never replies
	ch := newChannel(t, Options{ReplyWait: 50 * time.Millisecond})

	start := time.Now()
	_, err := ch.Status(context.Background(), "LM1", "127.0.0.1", fc.port())
	if !errors.Is(err, apperr.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("timeout was not bounded")
	}
}

func TestStatus_LegacyModeSerializesAndReplies(t *testing.T) {
	fc := newFakeController(t, func(payload string) string {
		if code, ok := strings.CutPrefix(payload, "status:"); ok {
			// legacy hardware: raw reply without any token
			return "idle " + code
		}
		return ""
	})
	ch := newChannel(t, Options{ReplyWait: 2 * time.Second, Legacy: true})

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reply, err := ch.Status(context.Background(), "LM9", "127.0.0.1", fc.port())
			if err != nil {
				t.Errorf("legacy status: %v", err)
				return
			}
			if reply != "idle LM9" {
				t.Errorf("legacy reply = %q", reply)
			}
		}()
	}
	wg.Wait()
}

func TestStatus_ContextCancel(t *testing.T) {
	fc := newFakeController(t, nil)
	ch := newChannel(t, Options{ReplyWait: 5 * time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := ch.Status(ctx, "LM1", "127.0.0.1", fc.port())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
