package irisfast

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func newTestClient(t *testing.T, handler fasthttp.RequestHandler) *Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = fasthttp.Serve(ln, handler) }()
	t.Cleanup(func() { _ = ln.Close() })

	c := NewClient("http://iris.test/",
		WithTimeout(2*time.Second),
		WithHeaderProvider(func() map[string]string { return map[string]string{"X-User-Id": "bot", "X-Empty": " "} }),
	)
	c.http.Dial = func(string) (net.Conn, error) { return ln.Dial() }
	c.backoff = func(int) time.Duration { return time.Millisecond }
	return c
}

func TestSendMessageRetriesServerErrors(t *testing.T) {
	var calls int32
	var got ReplyRequest
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		if atomic.AddInt32(&calls, 1) == 1 {
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			return
		}
		if string(ctx.Request.Header.Peek("X-User-Id")) != "bot" || len(ctx.Request.Header.Peek("X-Empty")) != 0 {
			ctx.SetStatusCode(fasthttp.StatusUnauthorized)
			return
		}
		_ = json.Unmarshal(ctx.PostBody(), &got)
		ctx.SetStatusCode(fasthttp.StatusOK)
	})

	if err := c.SendMessage(context.Background(), "roomA", "hello"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if got != (ReplyRequest{Type: "text", Room: "roomA", Data: "hello"}) {
		t.Fatalf("payload = %+v", got)
	}
}

func TestClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		atomic.AddInt32(&calls, 1)
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		ctx.SetBodyString("bad room")
	})
	err := c.SendImage(context.Background(), "roomA", "aGk=")
	var se *StatusError
	if !errors.As(err, &se) || se.Status != fasthttp.StatusBadRequest || se.Body != "bad room" {
		t.Fatalf("err = %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestGetConfigDecodes(t *testing.T) {
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Path()) != "/config" {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			return
		}
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"port":3000,"polling_speed":100,"message_rate":5,"web_server_endpoint":"http://x"}`)
	})
	cfg, err := c.GetConfig(context.Background())
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if cfg.Port != 3000 || cfg.WebserverEndpoint != "http://x" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestBackoffDuration(t *testing.T) {
	if backoffDuration(0) != 100*time.Millisecond || backoffDuration(3) != 400*time.Millisecond || backoffDuration(10) != 3200*time.Millisecond {
		t.Fatalf("unexpected backoff schedule")
	}
}

func TestMessageIdentity(t *testing.T) {
	name := " Alice "
	m := &Message{Sender: &name}
	if m.UserID() != "Alice" || m.SenderName() != "Alice" {
		t.Fatalf("sender-only identity: %q %q", m.UserID(), m.SenderName())
	}
	m.JSON = &MessageJSON{UserID: "12345"}
	if m.UserID() != "12345" || m.SenderName() != "Alice" {
		t.Fatalf("json identity: %q %q", m.UserID(), m.SenderName())
	}
	var nilMsg *Message
	if nilMsg.UserID() != "" {
		t.Fatalf("nil message identity")
	}
}
