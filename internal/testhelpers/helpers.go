// Package testhelpers provides helpers shared by the HTTP and WebSocket tests:
// dialling the chat endpoint, sending request frames and reading pushed
// frames back with a deadline.
package testhelpers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// DefaultOrigin is the origin sent by ConnectWebSocket.
const DefaultOrigin = "http://localhost:3000"

const readTimeout = 2 * time.Second

// Frame is a decoded server frame. Ack and Error are only set on
// acknowledgements.
type Frame struct {
	Event string          `json:"event"`
	Ack   *int64          `json:"ack,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *FrameError     `json:"error,omitempty"`
}

type FrameError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DecodeData unmarshals the frame payload into dst.
func (f Frame) DecodeData(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(f.Data, dst), "decoding %s payload %s", f.Event, string(f.Data))
}

// WebSocketURL turns the base URL of an httptest server into its /ws URL.
func WebSocketURL(serverURL string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
}

// MakeRequest executes an HTTP request with a 5-second timeout.
func MakeRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()

	client := &http.Client{
		Timeout:   5 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
	req, err := http.NewRequest(method, url, http.NoBody)
	require.NoError(t, err, "creating request")

	resp, err := client.Do(req)
	require.NoError(t, err, "making request")
	return resp
}

// ConnectWebSocket dials url with the given Origin header and fails the test
// on error. The connection is closed when the test ends.
func ConnectWebSocket(t *testing.T, url, origin string) *websocket.Conn {
	t.Helper()

	conn, resp, err := DialWebSocket(url, origin)
	if resp != nil {
		_ = resp.Body.Close()
	}
	require.NoError(t, err, "dialling %s", url)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// DialWebSocket dials url and returns the handshake response for inspection.
func DialWebSocket(url, origin string) (*websocket.Conn, *http.Response, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	headers := http.Header{}
	if origin != "" {
		headers.Set("Origin", origin)
	}
	return dialer.Dial(url, headers)
}

// SendEvent writes a request frame. A nil ack sends no ack id.
func SendEvent(t *testing.T, conn *websocket.Conn, event string, ack *int64, data any) {
	t.Helper()

	frame := map[string]any{"event": event}
	if ack != nil {
		frame["ack"] = *ack
	}
	if data != nil {
		frame["data"] = data
	}
	require.NoError(t, conn.WriteJSON(frame), "sending %s", event)
}

// SendRaw writes raw bytes as one text message.
func SendRaw(t *testing.T, conn *websocket.Conn, raw string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))
}

// ReadFrame reads the next frame.
func ReadFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readTimeout)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err, "reading frame")

	var frame Frame
	require.NoError(t, json.Unmarshal(raw, &frame), "decoding frame %s", string(raw))
	return frame
}

// ExpectEvent reads the next frame and requires it to be event.
func ExpectEvent(t *testing.T, conn *websocket.Conn, event string) Frame {
	t.Helper()
	frame := ReadFrame(t, conn)
	require.Equal(t, event, frame.Event, "unexpected frame %+v", frame)
	return frame
}

// ExpectAck reads the next frame and requires it to acknowledge id.
func ExpectAck(t *testing.T, conn *websocket.Conn, id int64) Frame {
	t.Helper()
	frame := ExpectEvent(t, conn, "ack")
	require.NotNil(t, frame.Ack)
	require.Equal(t, id, *frame.Ack)
	return frame
}

// ExpectNoFrame requires that nothing arrives within wait. The connection
// cannot be read from afterwards.
func ExpectNoFrame(t *testing.T, conn *websocket.Conn, wait time.Duration) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(wait)))
	_, raw, err := conn.ReadMessage()
	require.Error(t, err, "unexpected frame %s", string(raw))

	var netErr net.Error
	require.True(t, errors.As(err, &netErr) && netErr.Timeout(), "expected a read timeout, got %v", err)
}

// CloseWebSocket sends a close frame and closes the connection.
func CloseWebSocket(conn *websocket.Conn) error {
	err := conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		return err
	}
	return conn.Close()
}

// Ack returns a pointer to id for SendEvent.
func Ack(id int64) *int64 {
	return &id
}
