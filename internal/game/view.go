// internal/game/view.go
package game

import "github.com/cardden/server/internal/models"

// SeatView is one seat as seen by a recipient: the hand is present only for
// the recipient's own seat, every other hand is its count.
type SeatView struct {
	Index     int            `json:"index"`
	Name      string         `json:"name"`
	IsHost    bool           `json:"isHost"`
	IsBot     bool           `json:"isBot"`
	Finished  bool           `json:"finished"`
	HandCount int            `json:"handCount"`
	Declared  bool           `json:"declared"`
	Hand      []*models.Card `json:"hand,omitempty"`
	Stats     SeatStats      `json:"stats"`
}

// RuleView holds the shared rule-state fields, identical for every recipient.
type RuleView struct {
	Turn         int          `json:"turn"`
	Direction    int          `json:"direction,omitempty"`
	CurrentColor string       `json:"currentColor,omitempty"`
	Accumulator  int          `json:"accumulator,omitempty"`
	PendingColor bool         `json:"pendingColor,omitempty"`
	TopCard      *models.Card `json:"topCard,omitempty"`
	DrawSize     int          `json:"drawSize"`
	DiscardSize  int          `json:"discardSize"`
}

// RoomView is the masked projection of a room for one recipient.
type RoomView struct {
	Code    string     `json:"code"`
	Variant Variant    `json:"variant"`
	Status  Status     `json:"status"`
	Rules   RuleView   `json:"rules"`
	Seats   []SeatView `json:"seats"`
}

// seatViews builds the seat list revealing only forSeat's hand; pass -1 for
// the spectator projection (all hands hidden). Assumes lock is held.
func (r *Room) seatViews(forSeat int) []SeatView {
	views := make([]SeatView, len(r.Seats))
	for i, s := range r.Seats {
		views[i] = SeatView{
			Index:     i,
			Name:      s.Name,
			IsHost:    s.IsHost,
			IsBot:     s.IsBot,
			Finished:  s.Finished,
			HandCount: len(s.Hand),
			Declared:  s.Declared,
			Stats:     s.Stats,
		}
		if i == forSeat {
			views[i].Hand = s.Hand
		}
	}
	return views
}

// viewFor derives the masked room projection for the seat at forSeat, or the
// spectator projection when forSeat is -1. Assumes lock is held.
func (r *Room) viewFor(forSeat int) *RoomView {
	v := &RoomView{
		Code:    r.Code,
		Variant: r.Variant,
		Status:  r.Status,
		Seats:   r.seatViews(forSeat),
	}
	if r.engine != nil {
		v.Rules = r.engine.RuleView()
	}
	return v
}
