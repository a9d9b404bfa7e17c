// internal/game/events.go
package game

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cardden/server/internal/cache"
	"github.com/cardden/server/internal/models"
)

// EventType is an enum-like type for broadcasting room and game events.
type EventType string

const (
	EventMembership  EventType = "room_membership"  // seat list changed (join/leave/kick/start)
	EventRoomState   EventType = "room_state"       // per-recipient masked snapshot
	EventCardPlayed  EventType = "card_played"      // effect summary of a successful play
	EventCardDrawn   EventType = "card_drawn"       // public draw notification (count only)
	EventColorChosen EventType = "color_chosen"     // pending wild color resolved
	EventDeclared    EventType = "declared"         // one-card declaration announced
	EventChallenge   EventType = "challenge_result" // declaration or wild-four challenge outcome
	EventPlayerTurn  EventType = "player_turn"      // whose turn it is now
	EventGameOver    EventType = "game_over"        // terminal result
	EventKicked      EventType = "kicked"           // sent to a removed seat
	EventError       EventType = "error"            // delivered only to the acting connection
)

// Event is the single outbound message shape. Fields are omitted when not
// relevant to the event type.
type Event struct {
	Type EventType `json:"type"`
	Code string    `json:"code,omitempty"`

	Seat   *int   `json:"seat,omitempty"`   // acting seat index; pointer so seat 0 is not omitted
	Target *int   `json:"target,omitempty"` // target seat index (draws, challenges)
	Name   string `json:"name,omitempty"`   // acting seat display name

	Card  *models.Card `json:"card,omitempty"`
	Color string       `json:"color,omitempty"`
	Count int          `json:"count,omitempty"` // cards drawn / penalty size

	Turn        *int  `json:"turn,omitempty"` // pointer so seat 0's turn is not omitted
	Direction   int   `json:"direction,omitempty"`
	Accumulator int   `json:"accumulator,omitempty"`
	Success     *bool `json:"success,omitempty"` // challenge outcome; pointer so a failed one is not omitted

	Winner string `json:"winner,omitempty"`
	Loser  string `json:"loser,omitempty"`

	Reason string     `json:"reason,omitempty"` // error text
	Seats  []SeatView `json:"seats,omitempty"`  // membership snapshots
	State  *RoomView  `json:"state,omitempty"`  // room_state payload
}

// logAction pushes a record of a validated action onto the historian queue.
// Best effort: a nil Redis client or a failed push never affects game state.
// Assumes the room lock is held.
func (r *Room) logAction(seat int, actionType string, payload map[string]interface{}) {
	r.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	rec := cache.RoomActionRecord{
		RoomCode:    r.Code,
		ActionIndex: r.actionIndex,
		ActorSeat:   seat,
		ActionType:  actionType,
		Payload:     payload,
		Timestamp:   time.Now().UnixMilli(),
	}
	go func(rec cache.RoomActionRecord) {
		if cache.Rdb == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishRoomAction(ctx, rec); err != nil {
			logrus.Warnf("room %s: failed to publish action %d to historian: %v", rec.RoomCode, rec.ActionIndex, err)
		}
	}(rec)
}
