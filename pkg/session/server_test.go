package session

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/leafwire/leafwire/pkg/protocol"
)

const (
	testKey     = "hskey123"
	testProject = "proj1"
)

// fakeServer is a minimal socket.io v0.9 endpoint.
type fakeServer struct {
	t   *testing.T
	srv *httptest.Server

	// handshakeStatus overrides the discovery response status when set.
	handshakeStatus int
	// handshakeBody overrides the discovery response body when set.
	handshakeBody string
	// writeBufferSize forces fragmentation of larger messages when set.
	writeBufferSize int

	// greeting is sent right after the upgrade.
	greeting []string
	// onFrame is called for every frame the client sends.
	onFrame func(c *fakeConn, frame string)

	received chan string
	conns    chan *fakeConn
}

type fakeConn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *fakeConn) send(frame string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// The client may already be gone; tests assert on what it received.
	_ = c.ws.WriteMessage(websocket.TextMessage, []byte(frame))
}

func (c *fakeConn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.Close()
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{
		t:        t,
		greeting: []string{"1::"},
		received: make(chan string, 256),
		conns:    make(chan *fakeConn, 4),
	}

	r := chi.NewRouter()
	r.Get("/socket.io/1/", fs.handleHandshake)
	r.Get("/socket.io/1/websocket/{key}", fs.handleWebSocket)
	fs.srv = httptest.NewServer(r)
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeServer) url() *url.URL {
	u, err := url.Parse(fs.srv.URL)
	if err != nil {
		fs.t.Fatal(err)
	}
	return u
}

func (fs *fakeServer) handleHandshake(w http.ResponseWriter, r *http.Request) {
	if fs.handshakeStatus != 0 {
		w.WriteHeader(fs.handshakeStatus)
		return
	}
	if r.URL.Query().Get("projectId") != testProject {
		http.Error(w, "unknown project", http.StatusNotFound)
		return
	}
	body := fs.handshakeBody
	if body == "" {
		body = testKey + ":60:60:websocket,xhr-polling"
	}
	_, _ = io.WriteString(w, body)
}

func (fs *fakeServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "key") != testKey || r.URL.Query().Get("projectId") != testProject {
		http.Error(w, "bad key", http.StatusForbidden)
		return
	}

	upgrader := websocket.Upgrader{WriteBufferSize: fs.writeBufferSize}
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &fakeConn{ws: ws}
	defer c.close()
	fs.conns <- c

	for _, g := range fs.greeting {
		c.send(g)
	}

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			return
		}
		frame := string(msg)
		select {
		case fs.received <- frame:
		default:
		}
		if fs.onFrame != nil {
			fs.onFrame(c, frame)
		}
	}
}

// conn returns the server side of the current connection.
func (fs *fakeServer) conn() *fakeConn {
	fs.t.Helper()
	select {
	case c := <-fs.conns:
		return c
	case <-time.After(2 * time.Second):
		fs.t.Fatal("no websocket connection")
		return nil
	}
}

// expectFrame waits for the next client frame satisfying match.
func (fs *fakeServer) expectFrame(match func(string) bool) string {
	fs.t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case f := <-fs.received:
			if match(f) {
				return f
			}
		case <-deadline:
			fs.t.Fatal("expected frame not received")
			return ""
		}
	}
}

// respondToCalls answers every call with reply(method, args).
func (fs *fakeServer) respondToCalls(reply func(method string, args []string) string) {
	fs.onFrame = func(c *fakeConn, frame string) {
		p, err := protocol.Decode([]byte(frame))
		if err != nil || p.Opcode != protocol.OpEvent || !p.HasID {
			return
		}
		ev, err := protocol.DecodeEvent(p.Payload)
		if err != nil {
			return
		}
		args := make([]string, len(ev.Args))
		for i, a := range ev.Args {
			args[i] = string(a)
		}
		payload := reply(ev.Name, args)
		if payload == "" {
			return
		}
		ack := protocol.Packet{Opcode: protocol.OpAck, ID: p.ID, HasID: true, AckData: true, Payload: []byte(payload)}
		c.send(string(ack.Encode()))
	}
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg.RPCTimeout = time.Second
	return cfg
}

func connect(t *testing.T, fs *fakeServer, cfg *Config) *Session {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := Connect(ctx, fs.srv.Client(), fs.url(), testProject, cfg)
	if err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	t.Cleanup(func() { _ = s.Leave() })
	return s
}

// waitDone waits for the receive loop to stop.
func waitDone(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("receive loop did not stop")
	}
}
