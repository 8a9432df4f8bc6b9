// Package server accepts WebSocket connections and hands each one to its own
// session goroutine. Ordinary close and error close are distinct, non-fatal
// outcomes logged for operators.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ai-companion/internal/session"
)

type Server struct {
	addr       string
	upgrader   websocket.Upgrader
	newSession func() *session.Session
}

func New(addr string, newSession func() *session.Session) *Server {
	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Single-user local agent; no origin policy.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		newSession: newSession,
	}
}

// Run serves until ctx is cancelled. Cancellation both stops the listener
// and closes every active connection, so sessions blocked on a read or a
// long generation unwind promptly.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.handleWS(ctx, w, r)
	})
	srv := &http.Server{Addr: s.addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on ws://%s", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}
	defer func(conn *websocket.Conn) {
		err := conn.Close()
		if err != nil {
		}
	}(conn)

	// Hijacked connections outlive srv.Shutdown; close them ourselves when
	// the server context ends so blocked reads unblock.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(2 * time.Second)
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
			_ = conn.Close()
		case <-done:
		}
	}()

	log.Printf("client connected: %s", r.RemoteAddr)

	sess := s.newSession()
	err = sess.Run(ctx, &wsConn{conn: conn})
	switch {
	case err == nil:
		log.Printf("client %s exited", r.RemoteAddr)
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
		log.Printf("client disconnected (OK): %s", r.RemoteAddr)
	default:
		log.Printf("client disconnected with error: %v", err)
	}
}

// wsConn adapts a gorilla connection to the session's duplex text channel.
type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsConn) ReadMessage() (string, error) {
	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if mt != websocket.TextMessage {
			continue
		}
		return string(data), nil
	}
}

func (c *wsConn) WriteMessage(text string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}
