package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/pollchat-server/internal/core"
	"github.com/vovakirdan/pollchat-server/internal/dispatch"
)

// startTestServer wires a registry, dispatcher, and listener on a
// random port and returns the dial address.
func startTestServer(t *testing.T, workers, queueCapacity int) string {
	t.Helper()

	logger := zerolog.New(nil)
	registry := core.NewRegistry()
	handler := NewHandler(registry, 5*time.Second, &logger)
	dispatcher := dispatch.New(workers, queueCapacity, handler.Handle, &logger)
	dispatcher.Start()

	server := NewServer("127.0.0.1:0", dispatcher, &logger)
	if err := server.Listen(); err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = server.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		dispatcher.Stop()
	})

	return server.Addr().String()
}

// roundTrip sends one request line and parses the HTTP reply.
func roundTrip(t *testing.T, addr, line string) *http.Response {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if _, err := fmt.Fprintf(conn, "%s\r\n\r\n", line); err != nil {
		t.Fatalf("write request: %v", err)
	}
	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	if err != nil {
		t.Fatalf("read response to %q: %v", line, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func TestPushPullScenario(t *testing.T) {
	addr := startTestServer(t, 4, 64)

	// Push "hello" into lobby.
	resp := roundTrip(t, addr, "POST /lobby/push?msg=hello HTTP/1.0")
	if resp.StatusCode != 200 || readBody(t, resp) != "ack" {
		t.Fatalf("push not acked: %d", resp.StatusCode)
	}

	// Pull from cursor 0: exactly "hello", next cursor 1.
	resp = roundTrip(t, addr, "POST /lobby/pull?last=0 HTTP/1.0")
	if got := readBody(t, resp); got != "hello" {
		t.Fatalf("expected hello, got %q", got)
	}
	if next := resp.Header.Get("X-Next-Cursor"); next != "1" {
		t.Fatalf("expected next cursor 1, got %q", next)
	}

	// Pull from cursor 1: nothing new.
	resp = roundTrip(t, addr, "POST /lobby/pull?last=1 HTTP/1.0")
	if got := readBody(t, resp); got != "" {
		t.Fatalf("expected empty pull, got %q", got)
	}
	if next := resp.Header.Get("X-Next-Cursor"); next != "1" {
		t.Fatalf("expected next cursor 1, got %q", next)
	}

	// Push "world", pull from 1: exactly "world".
	roundTrip(t, addr, "POST /lobby/push?msg=world HTTP/1.0")
	resp = roundTrip(t, addr, "POST /lobby/pull?last=1 HTTP/1.0")
	if got := readBody(t, resp); got != "world" {
		t.Fatalf("expected world, got %q", got)
	}
	if next := resp.Header.Get("X-Next-Cursor"); next != "2" {
		t.Fatalf("expected next cursor 2, got %q", next)
	}
}

func TestRoomsDoNotLeakAcrossPulls(t *testing.T) {
	addr := startTestServer(t, 2, 16)

	roundTrip(t, addr, "POST /alpha/push?msg=secret HTTP/1.0")

	resp := roundTrip(t, addr, "POST /beta/pull?last=0 HTTP/1.0")
	if got := readBody(t, resp); got != "" {
		t.Fatalf("room beta saw alpha's message: %q", got)
	}
}

func TestEmptyRoomSegmentIsSharedDefault(t *testing.T) {
	addr := startTestServer(t, 2, 16)

	roundTrip(t, addr, "POST /push?msg=anon HTTP/1.0")
	resp := roundTrip(t, addr, "POST /DEFAULT/pull?last=0 HTTP/1.0")
	if got := readBody(t, resp); got != "anon" {
		t.Fatalf("default room pull got %q", got)
	}
}

func TestPageRequestServesChatPage(t *testing.T) {
	addr := startTestServer(t, 2, 16)

	resp := roundTrip(t, addr, "GET /lobby/ HTTP/1.0")
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html content type, got %q", ct)
	}
	if body := readBody(t, resp); !strings.Contains(body, "<html") {
		t.Fatal("page body does not look like the chat page")
	}
}

func TestMalformedRequestGetsNotFound(t *testing.T) {
	addr := startTestServer(t, 2, 16)

	resp := roundTrip(t, addr, "DELETE /lobby/ HTTP/1.0")
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if got := readBody(t, resp); got != "Malformed request." {
		t.Fatalf("expected reason string, got %q", got)
	}
}

func TestManyConcurrentClients(t *testing.T) {
	addr := startTestServer(t, 8, 256)

	const clients = 20
	errs := make(chan error, clients)
	for i := 0; i < clients; i++ {
		go func(i int) {
			conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
			if err != nil {
				errs <- err
				return
			}
			defer conn.Close()
			if _, err := fmt.Fprintf(conn, "POST /load/push?msg=m%d HTTP/1.0\r\n\r\n", i); err != nil {
				errs <- err
				return
			}
			resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
			if err != nil {
				errs <- err
				return
			}
			resp.Body.Close()
			errs <- nil
		}(i)
	}
	for i := 0; i < clients; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("client failed: %v", err)
		}
	}

	resp := roundTrip(t, addr, "POST /load/pull?last=0 HTTP/1.0")
	body := readBody(t, resp)
	if got := len(strings.Split(body, "\n")); got != clients {
		t.Fatalf("expected %d messages, got %d: %q", clients, got, body)
	}
}
