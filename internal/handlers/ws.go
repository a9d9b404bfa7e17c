// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/cardden/server/internal/game"
	"github.com/cardden/server/internal/middleware"
)

// ClientMessage is the single inbound message shape. Type selects the
// operation; the other fields are read per-type and ignored otherwise.
type ClientMessage struct {
	Type string `json:"type"`

	Code     string `json:"code,omitempty"`     // room code
	Name     string `json:"name,omitempty"`     // display name
	Variant  string `json:"variant,omitempty"`  // "pairs" or "mau", create only
	Capacity int    `json:"capacity,omitempty"` // create only

	TargetSeat int    `json:"targetSeat,omitempty"` // draw target / challenge target / kick target
	CardIndex  *int   `json:"cardIndex,omitempty"`  // optional index into target hand
	CardID     string `json:"cardId,omitempty"`     // card to play
	Color      string `json:"color,omitempty"`      // wild color
}

// actionTypes maps the in-game message types onto engine actions. Messages
// not in this map are room-level operations handled directly.
var actionTypes = map[string]game.ActionType{
	"draw":                  game.ActionDraw,
	"play_card":             game.ActionPlayCard,
	"choose_color":          game.ActionChooseColor,
	"draw_card":             game.ActionDrawCard,
	"declare":               game.ActionDeclare,
	"challenge_declaration": game.ActionChallengeDeclaration,
	"challenge_wild_four":   game.ActionChallengeWildFour,
}

// WSHandler upgrades the connection and runs its read loop until it closes.
// Every connection gets a fresh identity; rejoining after a drop is a new
// seat, the old one is handed to a bot.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"cardden"},
			OriginPatterns: []string{"*"}, // adjust for production security
		})
		if err != nil {
			s.Logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler exit")

		if c.Subprotocol() != "cardden" {
			c.Close(websocket.StatusPolicyViolation, "client must use the 'cardden' subprotocol")
			return
		}
		middleware.LogWebSocketConnect(s.Logger, r.RemoteAddr, r.URL.Path)

		connID := s.register(c)
		defer s.unregister(connID)

		s.readMessages(r.Context(), c, connID)
		middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, r.URL.Path, nil)
	}
}

// readMessages reads and dispatches client messages until error or closure.
func (s *Server) readMessages(ctx context.Context, c *websocket.Conn, connID uuid.UUID) {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				s.Logger.Infof("websocket closed normally for conn %s", connID)
			} else if strings.Contains(err.Error(), "context canceled") {
				s.Logger.Infof("websocket context canceled for conn %s", connID)
			} else {
				s.Logger.Warnf("websocket read error for conn %s: %v", connID, err)
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(connID, "invalid JSON")
			continue
		}
		s.Logger.Debugf("conn %s: %s", connID, msg.Type)
		s.dispatch(connID, msg)
	}
}

// dispatch routes one client message. Validation failures are reported only
// to the acting connection; they never mutate room state.
func (s *Server) dispatch(connID uuid.UUID, msg ClientMessage) {
	if at, ok := actionTypes[msg.Type]; ok {
		s.gameAction(connID, msg, at)
		return
	}

	switch msg.Type {
	case "create_room":
		s.createRoom(connID, msg)
	case "join_room":
		s.withRoom(connID, msg.Code, func(r *game.Room) error {
			if err := r.Join(connID, msg.Name); err != nil {
				return err
			}
			s.trackRoom(connID, r.Code)
			return nil
		})
	case "leave_room":
		s.withRoom(connID, msg.Code, func(r *game.Room) error {
			r.Leave(connID)
			return nil
		})
	case "spectate":
		s.withRoom(connID, msg.Code, func(r *game.Room) error {
			r.Spectate(connID)
			s.trackRoom(connID, r.Code)
			return nil
		})
	case "leave_spectate":
		s.withRoom(connID, msg.Code, func(r *game.Room) error {
			r.LeaveSpectate(connID)
			return nil
		})
	case "kick":
		s.withRoom(connID, msg.Code, func(r *game.Room) error {
			return r.Kick(connID, msg.TargetSeat)
		})
	case "start_game":
		s.withRoom(connID, msg.Code, func(r *game.Room) error {
			return r.Start(connID)
		})
	case "ping":
		s.Send(connID, game.Event{Type: "pong"})
	default:
		s.sendError(connID, "unknown message type: "+msg.Type)
	}
}

// createRoom mints a room with the sender as host and wires the room's
// outbound collaborators.
func (s *Server) createRoom(connID uuid.UUID, msg ClientMessage) {
	var variant game.Variant
	switch msg.Variant {
	case "pairs":
		variant = game.VariantPairs
	case "mau":
		variant = game.VariantMau
	default:
		s.sendError(connID, "unknown variant: "+msg.Variant)
		return
	}

	host := &game.Seat{ConnID: connID, Name: msg.Name}
	r, err := s.Registry.CreateRoom(variant, msg.Capacity, host)
	if err != nil {
		s.sendError(connID, err.Error())
		return
	}
	r.SendFn = s.Send
	r.RecordResultFn = s.RecordResult
	s.trackRoom(connID, r.Code)

	// Join is idempotent for the host; it triggers the first membership
	// broadcast so the creator learns the room code.
	if err := r.Join(connID, msg.Name); err != nil {
		s.sendError(connID, err.Error())
	}
}

// gameAction translates the message into a typed engine action and hands it
// to the room.
func (s *Server) gameAction(connID uuid.UUID, msg ClientMessage, at game.ActionType) {
	act := game.Action{
		Type:       at,
		TargetSeat: msg.TargetSeat,
		CardIndex:  msg.CardIndex,
		Color:      msg.Color,
	}
	if msg.CardID != "" {
		id, err := uuid.Parse(msg.CardID)
		if err != nil {
			s.sendError(connID, "invalid cardId")
			return
		}
		act.CardID = id
	}
	s.withRoom(connID, msg.Code, func(r *game.Room) error {
		return r.HandleAction(connID, act)
	})
}

// withRoom resolves the room by code and runs fn, reporting any error back
// to the acting connection only.
func (s *Server) withRoom(connID uuid.UUID, code string, fn func(r *game.Room) error) {
	r, ok := s.Registry.Find(code)
	if !ok {
		s.sendError(connID, game.ErrRoomNotFound.Error())
		return
	}
	if err := fn(r); err != nil {
		s.sendError(connID, err.Error())
	}
}

// sendError delivers a structured error event to one connection.
func (s *Server) sendError(connID uuid.UUID, reason string) {
	s.Send(connID, game.Event{Type: game.EventError, Reason: reason})
}
