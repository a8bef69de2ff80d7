package finnhub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// tradeServer accepts WebSocket connections, acknowledges subscribes and
// emits one trade frame per connection.
func tradeServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// first frame is the subscribe message
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		trade := `{"type":"trade","data":[{"s":"AAPL","p":190.25,"v":10,"t":1756134245000}]}`
		if err := conn.WriteMessage(websocket.TextMessage, []byte(trade)); err != nil {
			return
		}
		// keep reading so client pings are consumed until the client hangs up
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStreamDeliversTicks(t *testing.T) {
	srv := tradeServer(t)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := New("demo", wsURL(srv), []string{"AAPL"}, time.Millisecond, time.Second)
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()
	if !c.IsConnected() {
		t.Fatal("expected connected after Connect")
	}
	if err := c.Subscribe(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	ticks, errs := c.Read(ctx)
	select {
	case tick := <-ticks:
		if tick.Symbol != "AAPL" || tick.Price != 190.25 {
			t.Fatalf("unexpected tick %+v", tick)
		}
		if tick.Timestamp != 1756134245 {
			t.Fatalf("timestamp not converted to seconds: %d", tick.Timestamp)
		}
	case err := <-errs:
		t.Fatalf("stream error: %v", err)
	case <-ctx.Done():
		t.Fatal("timed out waiting for tick")
	}
}

func TestReconnectWithActiveKeepalive(t *testing.T) {
	srv := tradeServer(t)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// A very short ping interval makes the keepalive writer race any
	// concurrent writer if frames are not serialized.
	c := New("demo", wsURL(srv), []string{"AAPL"}, time.Millisecond, time.Millisecond)
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()
	if err := c.Subscribe(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	_, _ = c.Read(ctx)

	for i := 0; i < 5; i++ {
		if err := c.Reconnect(ctx); err != nil {
			t.Fatalf("reconnect %d: %v", i, err)
		}
		if !c.IsConnected() {
			t.Fatalf("expected connected after reconnect %d", i)
		}
		_, _ = c.Read(ctx)
	}
}

func TestReadWithoutConnectFails(t *testing.T) {
	c := New("demo", "ws://127.0.0.1:0", []string{"AAPL"}, time.Millisecond, time.Second)

	ticks, errs := c.Read(context.Background())
	select {
	case err := <-errs:
		if err == nil {
			t.Fatal("expected error when reading before connect")
		}
	case <-time.After(time.Second):
		t.Fatal("expected immediate error")
	}
	if _, ok := <-ticks; ok {
		t.Fatal("tick channel should be closed")
	}
}
