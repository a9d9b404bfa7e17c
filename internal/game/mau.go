// internal/game/mau.go
package game

import (
	"github.com/cardden/server/internal/deck"
	"github.com/cardden/server/internal/models"
)

const mauHandSize = 7

// mauEngine runs the shedding/stacking game. Rule state per the room: whose
// turn it is, play direction, the color in effect, the forced-draw
// accumulator built by stacked draw cards, and the pending color choice that
// suspends everything after an undeclared wild.
type mauEngine struct {
	room *Room

	draw    *deck.Pile
	discard *deck.Pile

	turn         int
	direction    int
	currentColor string
	accumulator  int

	pendingColor     bool
	pendingColorSeat int
	pendingCard      *models.Card

	lastPlayed    *models.Card
	lastPlayerIdx int

	firstWinner string
	total       int
}

func newMauEngine(r *Room) *mauEngine {
	return &mauEngine{
		room:          r,
		draw:          deck.NewPile(nil),
		discard:       deck.NewPile(nil),
		direction:     1,
		lastPlayerIdx: -1,
	}
}

func (e *mauEngine) Variant() Variant { return VariantMau }
func (e *mauEngine) Turn() int        { return e.turn }

func (e *mauEngine) CardCount() int {
	n := e.draw.Len() + e.discard.Len()
	for _, s := range e.room.Seats {
		n += len(s.Hand)
	}
	return n
}

func (e *mauEngine) RuleView() RuleView {
	return RuleView{
		Turn:         e.turn,
		Direction:    e.direction,
		CurrentColor: e.currentColor,
		Accumulator:  e.accumulator,
		PendingColor: e.pendingColor,
		TopCard:      e.discard.Top(),
		DrawSize:     e.draw.Len(),
		DiscardSize:  e.discard.Len(),
	}
}

// Deal shuffles the 108-card deck, deals seven cards per seat, and flips a
// non-wild opening card whose effect is applied as if it had been played by
// the dealer (a two-player reverse opens as a skip).
func (e *mauEngine) Deal() error {
	cards := deck.NewSheddingDeck(e.room.Rng)
	e.total = len(cards)
	e.draw = deck.NewPile(cards)

	seats := e.room.Seats
	for i := 0; i < mauHandSize; i++ {
		for _, s := range seats {
			s.Hand = append(s.Hand, e.draw.Draw())
		}
	}

	// Wild flips are requeued to the bottom and redrawn.
	opening := e.draw.Draw()
	for opening.IsWild() {
		e.draw.PushBottom(opening)
		opening = e.draw.Draw()
	}
	e.applyOpening(opening)
	return nil
}

// applyOpening seeds the rule state from the opening flip, as if the dealer
// had played it: a skip passes the first turn along, a reverse starts play
// backwards (or acts as a skip with two seats), a draw-two seeds the
// accumulator.
func (e *mauEngine) applyOpening(opening *models.Card) {
	e.discard.Push(opening)
	e.lastPlayed = opening
	e.currentColor = opening.Color

	n := len(e.room.Seats)
	switch opening.Kind {
	case models.KindSkip:
		e.turn = 1 % n
	case models.KindReverse:
		if n == 2 {
			e.turn = 1
		} else {
			e.direction = -1
			e.turn = n - 1
		}
	case models.KindDrawTwo:
		e.accumulator = 2
		e.turn = 0
	default:
		e.turn = 0
	}
}

// Handle routes one action. Assumes room lock is held.
func (e *mauEngine) Handle(seatIdx int, act Action) error {
	switch act.Type {
	case ActionPlayCard:
		return e.play(seatIdx, act)
	case ActionChooseColor:
		return e.chooseColor(seatIdx, act.Color)
	case ActionDrawCard:
		return e.drawAction(seatIdx)
	case ActionDeclare:
		return e.declare(seatIdx)
	case ActionChallengeDeclaration:
		return e.challengeDeclaration(seatIdx, act.TargetSeat)
	case ActionChallengeWildFour:
		return e.challengeWildFour(seatIdx)
	default:
		return ErrBadAction
	}
}

// BotAction: drawing is the always-legal default, except when the bot itself
// owes a color choice (a seat handed to a bot mid-wild).
func (e *mauEngine) BotAction(seatIdx int) (Action, bool) {
	if e.pendingColor {
		if e.pendingColorSeat != seatIdx {
			return Action{}, false
		}
		color := models.Colors[e.room.Rng.Intn(len(models.Colors))]
		return Action{Type: ActionChooseColor, Color: color}, true
	}
	return Action{Type: ActionDrawCard}, true
}

// legal implements the card legality matrix against the top card and the
// color in effect. The stacking rule is checked separately.
func (e *mauEngine) legal(card *models.Card) bool {
	if card.IsWild() {
		return true
	}
	top := e.discard.Top()
	if card.Color == e.currentColor {
		return true
	}
	if card.Kind == models.KindNumber && top.Kind == models.KindNumber && card.Value == top.Value {
		return true
	}
	if card.Kind != models.KindNumber && !top.IsWild() && card.Kind == top.Kind {
		return true
	}
	return false
}

// dealCards moves up to n cards from the draw pile into the hand, recycling
// the discard pile when the draw pile empties. Running completely dry is a
// structural condition: the draw simply stops short.
func (e *mauEngine) dealCards(s *Seat, n int) int {
	drawn := 0
	for i := 0; i < n; i++ {
		if e.draw.Len() == 0 {
			deck.Recycle(e.draw, e.discard, e.room.Rng)
		}
		c := e.draw.Draw()
		if c == nil {
			break
		}
		s.Hand = append(s.Hand, c)
		drawn++
	}
	return drawn
}

// activeSeats counts seats still in the round.
func (e *mauEngine) activeSeats() int {
	n := 0
	for _, s := range e.room.Seats {
		if !s.Finished {
			n++
		}
	}
	return n
}

// applyEffect advances the turn according to the played card: skip jumps a
// seat, reverse flips direction (or acts as a skip with two active seats),
// draw cards grow the accumulator and advance one seat.
func (e *mauEngine) applyEffect(card *models.Card, fromIdx int) {
	seats := e.room.Seats
	switch card.Kind {
	case models.KindSkip:
		e.turn = nextEligible(seats, fromIdx, e.direction, 1)
	case models.KindReverse:
		if e.activeSeats() == 2 {
			e.turn = nextEligible(seats, fromIdx, e.direction, 1)
		} else {
			e.direction = -e.direction
			e.turn = nextEligible(seats, fromIdx, e.direction, 0)
		}
	case models.KindDrawTwo:
		e.accumulator += 2
		e.turn = nextEligible(seats, fromIdx, e.direction, 0)
	case models.KindWildFour:
		e.accumulator += 4
		e.turn = nextEligible(seats, fromIdx, e.direction, 0)
	default:
		e.turn = nextEligible(seats, fromIdx, e.direction, 0)
	}
}

// finishSeat marks a seat done, first time only, and records the win.
func (e *mauEngine) finishSeat(s *Seat) {
	if s.Finished {
		return
	}
	s.Finished = true
	s.Stats.Wins++
	if e.firstWinner == "" {
		e.firstWinner = s.Name
	}
	e.room.recordResult(s, "win", nil)
}

// checkEnd ends the round when exactly one seat remains active: it is marked
// finished as the loser and the room is torn down. Returns true on game end.
func (e *mauEngine) checkEnd() bool {
	var last *Seat
	active := 0
	for _, s := range e.room.Seats {
		if !s.Finished {
			active++
			last = s
		}
	}
	if active != 1 {
		return false
	}
	last.Finished = true
	last.Stats.Losses++
	e.room.recordResult(last, "loss", nil)
	e.room.finishRound(e.firstWinner, last.Name)
	return true
}
