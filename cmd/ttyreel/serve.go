package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local preview only
	},
}

// previewClient is one connected browser. gorilla/websocket is not safe
// for concurrent writes, so the replay goroutine and reload broadcasts
// share writeMu.
type previewClient struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *previewClient) send(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

// previewServer replays a recording to browsers over websockets, re-reading
// the input files for every connection so edits and re-recordings are
// picked up. This surface is best-effort preview: a replay error closes
// that client's socket and is logged, it does not kill the server.
type previewServer struct {
	timingPath string
	scriptPath string
	speed      float64

	mu      sync.Mutex
	clients map[*previewClient]bool
}

func newPreviewServer(timingPath, scriptPath string, speed float64) *previewServer {
	return &previewServer{
		timingPath: timingPath,
		scriptPath: scriptPath,
		speed:      speed,
		clients:    make(map[*previewClient]bool),
	}
}

// handleServe implements `ttyreel serve <timingfile> <typescript>`.
func handleServe(cfg config, args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.Addr, "listen address")
	speed := fs.Float64("speed", 1.0, "playback speed multiplier")
	fs.Parse(args)

	if fs.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "Usage: ttyreel serve [options] <timingfile> <typescript>\n")
		os.Exit(1)
	}
	if *speed <= 0 {
		fatalf("ttyreel: -speed must be positive")
	}

	s := newPreviewServer(fs.Arg(0), fs.Arg(1), *speed)
	if err := s.listen(*addr); err != nil {
		fatalf("ttyreel: %v", err)
	}
}

func (s *previewServer) listen(addr string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer watcher.Close()

	for _, path := range []string{s.timingPath, s.scriptPath} {
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
	}
	go s.watchLoop(watcher)

	log.Printf("preview of %s listening on %s", s.scriptPath, addr)
	return http.ListenAndServe(addr, s.routes())
}

func (s *previewServer) routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWS)
	return r
}

// watchLoop tells connected clients to reload whenever either recording
// file changes on disk.
func (s *previewServer) watchLoop(w *fsnotify.Watcher) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				log.Printf("%s changed, notifying clients", ev.Name)
				s.broadcastReload()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Printf("watch error: %v", err)
		}
	}
}

func (s *previewServer) broadcastReload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		if err := c.send(websocket.TextMessage, []byte(`{"type":"reload"}`)); err != nil {
			log.Printf("viewer %s: reload notify failed: %v", c.id, err)
		}
	}
}

func (s *previewServer) addClient(c *previewClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = true
}

func (s *previewServer) removeClient(c *previewClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c)
}

func (s *previewServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	c := &previewClient{id: uuid.NewString(), conn: conn}
	s.addClient(c)
	defer s.removeClient(c)

	log.Printf("viewer %s connected", c.id)
	if err := s.stream(c); err != nil {
		log.Printf("viewer %s: %v", c.id, err)
		return
	}
	log.Printf("viewer %s: replay finished", c.id)

	// Keep the socket open so the client can receive reload
	// notifications; returns when the browser goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// stream replays the recording over one websocket, paced by the timing
// file scaled by the speed multiplier.
func (s *previewServer) stream(c *previewClient) error {
	timing, err := os.Open(s.timingPath)
	if err != nil {
		return fmt.Errorf("opening timing file: %w", err)
	}
	defer timing.Close()

	script, err := os.Open(s.scriptPath)
	if err != nil {
		return fmt.Errorf("opening typescript: %w", err)
	}
	defer script.Close()

	reader := newScriptReader(script)
	if err := reader.discardHeader(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(timing)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		rec, err := parseTimingLine(lineNum, scanner.Text())
		if err != nil {
			return err
		}

		time.Sleep(time.Duration(rec.Delay / s.speed * float64(time.Second)))

		chunk, err := reader.readChunk(rec.Bytes)
		if err != nil {
			return err
		}
		if err := c.send(websocket.BinaryMessage, chunk); err != nil {
			return fmt.Errorf("sending chunk: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading timing file: %w", err)
	}
	return nil
}

const previewPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>ttyreel preview</title>
<style>
  body { background: #111; color: #ddd; font-family: monospace; margin: 1rem; }
  pre { white-space: pre-wrap; word-break: break-all; }
</style>
</head>
<body>
<pre id="term"></pre>
<script>
  const term = document.getElementById("term");
  const decoder = new TextDecoder();
  function connect() {
    const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
    ws.binaryType = "arraybuffer";
    ws.onmessage = (ev) => {
      if (typeof ev.data === "string") {
        const msg = JSON.parse(ev.data);
        if (msg.type === "reload") {
          term.textContent = "";
          ws.close();
          connect();
        }
        return;
      }
      term.textContent += decoder.decode(new Uint8Array(ev.data));
    };
  }
  connect();
</script>
</body>
</html>
`

func (s *previewServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, previewPage)
}
