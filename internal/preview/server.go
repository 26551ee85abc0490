// Package preview streams generated islands and layout cells to browser
// clients over a websocket.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Faultbox/skyisles/internal/island"
	"github.com/Faultbox/skyisles/internal/layout"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeTimeout    = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Server keeps the current scene and pushes every change to connected clients.
// It implements island.Sink and layout.CellSink.
type Server struct {
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	islands map[string]IslandData
	order   []string
	cells   []CellData

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex
}

var (
	_ island.Sink     = (*Server)(nil)
	_ layout.CellSink = (*Server)(nil)
)

// NewServer creates a preview server. A nil logger disables diagnostics.
func NewServer(log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local development tool
			},
		},
		islands: make(map[string]IslandData),
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Submit stores a copy of the island meshes and broadcasts them.
func (s *Server) Submit(id string, r island.Renderable) {
	if r.Mesh == nil {
		return
	}
	data := newIslandData(id, r)

	s.mu.Lock()
	if _, ok := s.islands[id]; !ok {
		s.order = append(s.order, id)
	}
	s.islands[id] = data
	s.mu.Unlock()

	s.broadcast(Message{Type: TypeIsland, Island: &data})
}

// Release drops an island and tells clients to remove it.
func (s *Server) Release(id string) {
	s.mu.Lock()
	if _, ok := s.islands[id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.islands, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.broadcast(Message{Type: TypeRelease, ID: id})
}

// SubmitCell stores a cell's debug geometry and broadcasts it.
func (s *Server) SubmitCell(c *layout.Cell) {
	data := newCellData(c)

	s.mu.Lock()
	s.cells = append(s.cells, data)
	s.mu.Unlock()

	s.broadcast(Message{Type: TypeCell, Cell: &data})
}

// Scene returns a snapshot of everything submitted so far.
func (s *Server) Scene() Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scene := Scene{
		Islands: make([]IslandData, 0, len(s.order)),
		Cells:   append([]CellData(nil), s.cells...),
	}
	for _, id := range s.order {
		scene.Islands = append(scene.Islands, s.islands[id])
	}
	return scene
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Handler returns the HTTP routes: /ws and /scene.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/scene", s.handleScene)
	return mux
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("preview server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("preview server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.closeClients()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("preview server shutdown: %w", err)
	}
	s.log.Info("preview server stopped")
	return nil
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Scene()); err != nil {
		s.log.Warn("scene encode failed", zap.Error(err))
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	connMu := &sync.Mutex{}
	s.clientsMu.Lock()
	s.clients[conn] = connMu
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
	}()

	s.log.Debug("client connected", zap.String("remote", r.RemoteAddr))
	s.sendScene(conn, connMu)

	// Clients may ask for a fresh snapshot; anything else is ignored.
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("websocket read ended", zap.Error(err))
			}
			return
		}
		if msg.Type == TypeScene {
			s.sendScene(conn, connMu)
		}
	}
}

func (s *Server) sendScene(conn *websocket.Conn, connMu *sync.Mutex) {
	scene := s.Scene()
	connMu.Lock()
	defer connMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(Message{Type: TypeScene, Scene: &scene}); err != nil {
		s.log.Debug("scene write failed", zap.Error(err))
	}
}

func (s *Server) broadcast(msg Message) {
	s.clientsMu.RLock()
	var failed []*websocket.Conn
	for conn, connMu := range s.clients {
		connMu.Lock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		err := conn.WriteJSON(msg)
		connMu.Unlock()
		if err != nil {
			s.log.Debug("websocket write failed", zap.Error(err))
			conn.Close()
			failed = append(failed, conn)
		}
	}
	s.clientsMu.RUnlock()

	if len(failed) > 0 {
		s.clientsMu.Lock()
		for _, conn := range failed {
			delete(s.clients, conn)
		}
		s.clientsMu.Unlock()
	}
}

func (s *Server) closeClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn, connMu := range s.clients {
		connMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
			time.Now().Add(time.Second))
		connMu.Unlock()
		conn.Close()
	}
}
