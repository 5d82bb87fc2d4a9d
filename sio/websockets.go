package sio

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSockets is a Couplings that serves requests over WebSockets.
//
// Each text message is a Request, and each Request gets a Result
// message on the same connection.  The same server also answers a
// POSTed Request at /api/match.
type WebSockets struct {
	// Addr is the listen address (like ":8080").
	Addr string

	// Path is the WebSocket endpoint.  Default is "/ws/api".
	Path string

	// UI, if true, serves a little test page at /ws/ui.
	UI bool

	// ReadLimit bounds the size of a request message.
	ReadLimit int64

	// Verbose turns on logging.
	Verbose bool

	listener net.Listener
	server   *http.Server

	// mu guards stopped and the wg.Add calls.
	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// NewWebSockets makes a WebSockets for the given listen address.
func NewWebSockets(addr string) *WebSockets {
	return &WebSockets{
		Addr:      addr,
		Path:      "/ws/api",
		ReadLimit: 1 << 20,
	}
}

func (s *WebSockets) logf(format string, args ...interface{}) {
	if s.Verbose {
		log.Printf("WebSockets "+format, args...)
	}
}

// Start listens on s.Addr.
func (s *WebSockets) Start(ctx context.Context) error {
	l, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.listener = l
	s.logf("listening on %s", l.Addr())
	return nil
}

// ListenAddr returns the actual listen address, which is useful when
// Addr asked for any port.
func (s *WebSockets) ListenAddr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

var upgrader = websocket.Upgrader{} // use default options

// track counts a new connection unless Stop has been called.
func (s *WebSockets) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.wg.Add(1)
	return true
}

// Handler returns an http.Handler for the WebSocket endpoint, the
// match endpoint, and (optionally) the test page.
func (s *WebSockets) Handler(ctx context.Context, p Processor) http.Handler {
	path := s.Path
	if path == "" {
		path = "/ws/api"
	}

	mux := http.NewServeMux()

	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if !s.track() {
			http.Error(w, "stopped", http.StatusServiceUnavailable)
			return
		}
		defer s.wg.Done()

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error", err)
			return
		}
		defer c.Close()

		if 0 < s.ReadLimit {
			c.SetReadLimit(s.ReadLimit)
		}

		// A closed context closes the connection, which ends the
		// read loop.
		stop := context.AfterFunc(ctx, func() {
			c.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(time.Second))
			c.Close()
		})
		defer stop()

		for {
			mt, message, err := c.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.logf("read error %s", err)
				}
				return
			}
			if mt != websocket.TextMessage {
				continue
			}

			var res *Result
			var req Request
			if err := json.Unmarshal(message, &req); err != nil {
				res = &Result{Error: "can't parse: " + err.Error()}
			} else {
				res = p.Process(ctx, &req)
			}
			if err = c.WriteJSON(res); err != nil {
				s.logf("write error %s", err)
				return
			}
		}
	})

	mux.HandleFunc("/api/match", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST a request", http.StatusMethodNotAllowed)
			return
		}
		var req Request
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res := p.Process(r.Context(), &req)
		w.Header().Set("Content-Type", "application/json")
		if res.Error != "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}
		json.NewEncoder(w).Encode(res)
	})

	if s.UI {
		mux.HandleFunc("/ws/ui", func(w http.ResponseWriter, r *http.Request) {
			uiTemplate.Execute(w, r.Host+path)
		})
	}

	return mux
}

// Serve serves HTTP on the listener from Start until ctx is done.
func (s *WebSockets) Serve(ctx context.Context, p Processor) error {
	if s.listener == nil {
		return errors.New("WebSockets not started")
	}
	s.server = &http.Server{
		Handler: s.Handler(ctx, p),
	}

	go func() {
		<-ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}()

	err := s.server.Serve(s.listener)
	if err == http.ErrServerClosed {
		err = nil
	}
	return err
}

// Stop refuses new WebSocket connections and waits for open ones to
// finish.
func (s *WebSockets) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.wg.Wait()
	return nil
}

var uiTemplate = template.Must(template.New("").Parse(`
<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<script>
window.addEventListener("load", function(evt) {

    var output = document.getElementById("output");
    var input = document.getElementById("input");
    var ws;

    var print = function(message) {
        var d = document.createElement("div");
        d.textContent = message;
        output.insertBefore(d, output.firstChild);
    };

    document.getElementById("open").onclick = function(evt) {
        if (ws) {
            return false;
        }
        ws = new WebSocket("ws://{{.}}");
        ws.onopen = function(evt) {
            print("OPEN");
        }
        ws.onclose = function(evt) {
            print("CLOSE");
            ws = null;
        }
        ws.onmessage = function(evt) {
            print("RESULT: " + evt.data);
        }
        ws.onerror = function(evt) {
            print("ERROR: " + evt.data);
        }
        return false;
    };

    document.getElementById("send").onclick = function(evt) {
        if (!ws) {
            return false;
        }
        print("SEND: " + input.value);
        ws.send(input.value);
        return false;
    };

    document.getElementById("close").onclick = function(evt) {
        if (!ws) {
            return false;
        }
        ws.close();
        return false;
    };

});
</script>
<style>
body { margin: 2em }
</style>
</head>
<body>
<form>
<button id="open">Open connection</button>
<button id="close">Close connection</button>
<br><input id="input" size="100" type="text" value='{"id":"1","expression":"\"coin\"+","sequence":["coin","coin"]}'>
<br><button id="send">Send</button>
</form>
<hr>
<div id="output"></div>
</body>
</html>
`))
