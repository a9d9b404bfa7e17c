// internal/game/seat.go
package game

import (
	"github.com/google/uuid"

	"github.com/cardden/server/internal/models"
)

// Seat is a participant slot: either backed by a live connection or synthetic
// (bot). Seats are created at room creation/join and are never destroyed
// mid-round; Finished only ever flips false -> true.
type Seat struct {
	ConnID uuid.UUID // uuid.Nil for bots
	Name   string
	IsHost bool
	IsBot  bool

	Hand     []*models.Card
	Finished bool

	// Shedding-game per-turn flags.
	Declared         bool // announced a one-card hand this turn
	PendingChallenge bool // reached one card without declaring; catchable

	Stats SeatStats
}

// SeatStats accumulates per-variant session statistics reported alongside the
// match result.
type SeatStats struct {
	Wins               int `json:"wins"`
	Losses             int `json:"losses"`
	Declarations       int `json:"declarations"`
	FailedDeclarations int `json:"failedDeclarations"`
}

// handIndex returns the index of the card with the given id, or -1.
func (s *Seat) handIndex(cardID uuid.UUID) int {
	for i, c := range s.Hand {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

// removeCard takes the card at idx out of the hand, preserving order.
func (s *Seat) removeCard(idx int) *models.Card {
	c := s.Hand[idx]
	s.Hand = append(s.Hand[:idx], s.Hand[idx+1:]...)
	return c
}
