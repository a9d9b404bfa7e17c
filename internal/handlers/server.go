// internal/handlers/server.go
package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cardden/server/internal/database"
	"github.com/cardden/server/internal/game"
)

// Server owns the room registry and the live websocket connections. One
// connection can hold at most one seat; the conn->room index is only for
// cleanup on disconnect, game routing always goes through the room code the
// client supplies.
type Server struct {
	Logger   *logrus.Logger
	Registry *game.Registry

	mu    sync.Mutex
	conns map[uuid.UUID]*websocket.Conn
	rooms map[uuid.UUID]string // connID -> room code, for disconnect cleanup
}

// NewServer builds a Server around a fresh registry.
func NewServer(logger *logrus.Logger) *Server {
	return &Server{
		Logger:   logger,
		Registry: game.NewRegistry(),
		conns:    make(map[uuid.UUID]*websocket.Conn),
		rooms:    make(map[uuid.UUID]string),
	}
}

// register stores a new connection under a fresh id.
func (s *Server) register(c *websocket.Conn) uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	s.conns[id] = c
	s.mu.Unlock()
	return id
}

// unregister drops the connection and detaches it from its room, if any.
// A seat abandoned mid-round is handed to a bot by Room.Leave.
func (s *Server) unregister(connID uuid.UUID) {
	s.mu.Lock()
	delete(s.conns, connID)
	code := s.rooms[connID]
	delete(s.rooms, connID)
	s.mu.Unlock()

	if code == "" {
		return
	}
	if r, ok := s.Registry.Find(code); ok {
		r.Leave(connID)
		r.LeaveSpectate(connID)
	}
}

// trackRoom remembers which room a connection is attached to.
func (s *Server) trackRoom(connID uuid.UUID, code string) {
	s.mu.Lock()
	s.rooms[connID] = code
	s.mu.Unlock()
}

// Send marshals one event and writes it to the connection asynchronously.
// This is the Room.SendFn implementation: it is called while the room lock
// is held, so the write must not block game logic.
func (s *Server) Send(connID uuid.UUID, ev game.Event) {
	s.mu.Lock()
	c := s.conns[connID]
	s.mu.Unlock()
	if c == nil {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		s.Logger.Errorf("failed to marshal event %s: %v", ev.Type, err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := c.Write(ctx, websocket.MessageText, data); err != nil {
			s.Logger.Warnf("failed to write %s event to %s: %v", ev.Type, connID, err)
		}
	}()
}

// RecordResult is the Room.RecordResultFn implementation: it persists one
// seat's outcome. Already running off the game goroutine; errors are logged
// and dropped.
func (s *Server) RecordResult(res game.MatchResult) {
	if database.DB == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := database.RecordMatchResult(ctx, res.DisplayName, string(res.Variant), res.Outcome, res.Details)
	if err != nil {
		s.Logger.Warnf("failed to record %s result for %s: %v", res.Outcome, res.DisplayName, err)
	}
}
