package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// handshakePath is the socket.io v0.9 discovery endpoint.
const handshakePath = "/socket.io/1/"

// maxHandshakeBody caps how much of the discovery response is read.
const maxHandshakeBody = 4096

// Handshake is the parsed discovery response.
type Handshake struct {
	// Key authorizes the WebSocket upgrade.
	Key string

	// HeartbeatTimeout and CloseTimeout are advisory server timeouts.
	HeartbeatTimeout time.Duration
	CloseTimeout     time.Duration

	// Transports lists the transports the server offers.
	Transports []string
}

// ParseHandshake parses "key:heartbeat:close:transports". Timeouts are in
// seconds and may be empty.
func ParseHandshake(body string) (*Handshake, error) {
	parts := strings.Split(strings.TrimSpace(body), ":")
	if parts[0] == "" {
		return nil, fmt.Errorf("handshake response has no key")
	}
	hs := &Handshake{Key: parts[0]}

	seconds := func(i int) (time.Duration, error) {
		if len(parts) <= i || parts[i] == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return 0, fmt.Errorf("handshake field %d: %w", i, err)
		}
		return time.Duration(n) * time.Second, nil
	}

	var err error
	if hs.HeartbeatTimeout, err = seconds(1); err != nil {
		return nil, err
	}
	if hs.CloseTimeout, err = seconds(2); err != nil {
		return nil, err
	}
	if len(parts) > 3 && parts[3] != "" {
		hs.Transports = strings.Split(parts[3], ",")
	}
	return hs, nil
}

// SupportsWebSocket reports whether the server offers the websocket
// transport. An empty transport list is taken as yes.
func (h *Handshake) SupportsWebSocket() bool {
	return len(h.Transports) == 0 || slices.Contains(h.Transports, "websocket")
}

// OpenHandshake asks the server for a handshake key for projectID. client
// must already carry the session cookie.
func OpenHandshake(ctx context.Context, client *http.Client, server *url.URL, projectID string) (*Handshake, error) {
	u := server.JoinPath(handshakePath)
	q := url.Values{}
	q.Set("projectId", projectID)
	q.Set("t", strconv.FormatInt(time.Now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	// The endpoint requires the trailing slash.
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &ConnectionError{Op: "handshake", Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &ConnectionError{Op: "handshake", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ConnectionError{Op: "handshake", StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxHandshakeBody))
	if err != nil {
		return nil, &ConnectionError{Op: "handshake", StatusCode: resp.StatusCode, Err: err}
	}
	hs, err := ParseHandshake(string(body))
	if err != nil {
		return nil, &ConnectionError{Op: "handshake", StatusCode: resp.StatusCode, Err: err}
	}
	if !hs.SupportsWebSocket() {
		return nil, &ConnectionError{
			Op:  "handshake",
			Err: fmt.Errorf("server does not offer the websocket transport (offers %s)", strings.Join(hs.Transports, ",")),
		}
	}
	return hs, nil
}

// WebSocketURL builds the upgrade URL for a handshake key.
func WebSocketURL(server *url.URL, key, projectID string) (string, error) {
	u := *server
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server scheme %q", server.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + handshakePath + "websocket/" + url.PathEscape(key)
	u.RawPath = ""
	q := url.Values{}
	q.Set("projectId", projectID)
	u.RawQuery = q.Encode()
	u.Fragment = ""
	return u.String(), nil
}

// origin returns scheme://host of server for the Origin header.
func origin(server *url.URL) string {
	return (&url.URL{Scheme: server.Scheme, Host: server.Host}).String()
}
