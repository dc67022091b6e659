package wsserver

import (
	"net/http/httptest"
	"strings"
	"sync"

	"golang.org/x/net/websocket"
)

// Script drives a single accepted websocket connection.
type Script func(s *Session)

// Session wraps one accepted connection on the scripted server.
type Session struct {
	ws *websocket.Conn
}

// Send pushes a text frame to the client.
func (s *Session) Send(frame string) error {
	return websocket.Message.Send(s.ws, frame)
}

// Wait blocks until the peer closes the connection.
func (s *Session) Wait() {
	var msg []byte
	for {
		if err := websocket.Message.Receive(s.ws, &msg); err != nil {
			return
		}
	}
}

// Server is an in-process websocket backend whose accepted connections
// are driven by scripts. Connection i runs scripts[i]; once the scripts
// are exhausted the last one handles all further connections.
type Server struct {
	httpSrv *httptest.Server

	mu      sync.Mutex
	scripts []Script
	next    int
	conns   int
}

func New(scripts ...Script) *Server {
	srv := &Server{scripts: scripts}
	srv.httpSrv = httptest.NewServer(websocket.Handler(srv.handle))
	return srv
}

// URL returns the ws:// endpoint of the server.
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.httpSrv.URL, "http")
}

// Connections returns how many connections were accepted so far.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conns
}

func (s *Server) Close() {
	s.httpSrv.Close()
}

func (s *Server) handle(ws *websocket.Conn) {
	s.mu.Lock()
	s.conns++
	var script Script
	if len(s.scripts) > 0 {
		script = s.scripts[s.next]
	}
	if s.next < len(s.scripts)-1 {
		s.next++
	}
	s.mu.Unlock()
	if script != nil {
		script(&Session{ws: ws})
	}
}

// SendFrames returns a script that sends the given frames in order and
// then closes the connection.
func SendFrames(frames ...string) Script {
	return func(s *Session) {
		for _, f := range frames {
			if err := s.Send(f); err != nil {
				return
			}
		}
	}
}

// SendAndHold returns a script that sends the given frames and then
// keeps the connection open until the client hangs up.
func SendAndHold(frames ...string) Script {
	return func(s *Session) {
		for _, f := range frames {
			if err := s.Send(f); err != nil {
				return
			}
		}
		s.Wait()
	}
}

// Idle returns a script that keeps the connection open without sending
// anything until the client hangs up.
func Idle() Script {
	return func(s *Session) {
		s.Wait()
	}
}
