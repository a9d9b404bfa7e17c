// internal/game/engine.go
package game

import "github.com/google/uuid"

// Variant identifies which rule engine a room runs.
type Variant string

const (
	// VariantPairs is the pairing-elimination game (draw from a neighbor,
	// shed pairs, last seat holding cards loses).
	VariantPairs Variant = "pairs"
	// VariantMau is the shedding/stacking game (match color/value/kind,
	// stack draw cards, declare on one card).
	VariantMau Variant = "mau"
)

// ActionType enumerates every inbound player action. The websocket layer maps
// message types onto these one-to-one.
type ActionType string

const (
	ActionDraw                 ActionType = "draw"                  // pairs: draw from a target seat
	ActionPlayCard             ActionType = "play_card"             // mau
	ActionChooseColor          ActionType = "choose_color"          // mau
	ActionDrawCard             ActionType = "draw_card"             // mau: voluntary or forced draw
	ActionDeclare              ActionType = "declare"               // mau
	ActionChallengeDeclaration ActionType = "challenge_declaration" // mau
	ActionChallengeWildFour    ActionType = "challenge_wild_four"   // mau
)

// Action is the typed envelope dispatched into a rule engine. Exactly one
// subset of fields is meaningful per ActionType.
type Action struct {
	Type       ActionType
	TargetSeat int       // pairs draw target, declaration challenge target
	CardIndex  *int      // pairs: optional index into the target hand
	CardID     uuid.UUID // mau: card to play
	Color      string    // mau: chosen wild color
}

// Engine is implemented by both rule engines. All methods assume the owning
// Room's lock is held; engines mutate seats and piles directly and report
// effects through the Room's broadcast helpers.
type Engine interface {
	Variant() Variant

	// Deal builds the deck, deals every seat, and applies any opening
	// effects. Called exactly once, by Room.Start.
	Deal() error

	// Handle validates and applies one action for the seat at seatIdx.
	// Validation failures return an error and leave state untouched.
	Handle(seatIdx int, act Action) error

	// RuleView returns the shared (non-private) rule-state fields for the
	// projector; identical for every recipient.
	RuleView() RuleView

	// CardCount returns the total number of cards in play (hands plus
	// piles); constant for the life of a round.
	CardCount() int

	// Turn returns the index of the seat to act.
	Turn() int

	// BotAction returns the legal default action for a bot at seatIdx, or
	// false when no action applies.
	BotAction(seatIdx int) (Action, bool)
}
