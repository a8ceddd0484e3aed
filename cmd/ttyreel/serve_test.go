package main

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// writeRecording drops a matching timing/typescript pair in a temp dir.
func writeRecording(t *testing.T, timingContent, scriptContent string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	timingPath := filepath.Join(dir, "tty.timing")
	scriptPath := filepath.Join(dir, "typescript")
	if err := os.WriteFile(timingPath, []byte(timingContent), 0644); err != nil {
		t.Fatalf("writing timing file: %v", err)
	}
	if err := os.WriteFile(scriptPath, []byte(scriptContent), 0644); err != nil {
		t.Fatalf("writing typescript: %v", err)
	}
	return timingPath, scriptPath
}

func dialPreview(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", url, err)
	}
	return conn
}

// TestPreviewStream verifies a connected viewer receives every chunk as a
// binary message, in order
func TestPreviewStream(t *testing.T) {
	timingPath, scriptPath := writeRecording(t,
		"0.0 3\n0.0 4\n",
		"Script started on Tue\nabcwxyz")

	s := newPreviewServer(timingPath, scriptPath, 1000)
	srv := httptest.NewServer(s.routes())
	defer srv.Close()

	conn := dialPreview(t, srv)
	defer conn.Close()

	want := []string{"abc", "wxyz"}
	for i, chunk := range want {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("reading chunk %d: %v", i, err)
		}
		if messageType != websocket.BinaryMessage {
			t.Errorf("chunk %d: message type = %d, want binary", i, messageType)
		}
		if string(data) != chunk {
			t.Errorf("chunk %d = %q, want %q", i, data, chunk)
		}
	}
}

// TestPreviewReloadBroadcast verifies clients get a reload notification
// once the replay is done and the files change
func TestPreviewReloadBroadcast(t *testing.T) {
	timingPath, scriptPath := writeRecording(t,
		"0.0 2\n",
		"Script started on Tue\nhi")

	s := newPreviewServer(timingPath, scriptPath, 1000)
	srv := httptest.NewServer(s.routes())
	defer srv.Close()

	conn := dialPreview(t, srv)
	defer conn.Close()

	// Drain the replay itself; the socket then stays open for
	// notifications.
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, data, err := conn.ReadMessage(); err != nil || string(data) != "hi" {
		t.Fatalf("reading replay chunk: %q, %v", data, err)
	}

	s.broadcastReload()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	messageType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading reload message: %v", err)
	}
	if messageType != websocket.TextMessage {
		t.Errorf("message type = %d, want text", messageType)
	}
	var msg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshaling %q: %v", data, err)
	}
	if msg.Type != "reload" {
		t.Errorf("type = %q, want %q", msg.Type, "reload")
	}
}

// TestPreviewIndexPage verifies the index handler serves the embedded page
func TestPreviewIndexPage(t *testing.T) {
	timingPath, scriptPath := writeRecording(t, "", "hdr\n")
	s := newPreviewServer(timingPath, scriptPath, 1)
	srv := httptest.NewServer(s.routes())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q, want text/html", ct)
	}
}
