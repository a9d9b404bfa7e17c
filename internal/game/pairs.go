// internal/game/pairs.go
package game

import (
	"github.com/cardden/server/internal/deck"
	"github.com/cardden/server/internal/models"
)

// pairsEngine runs the pairing-elimination game: the deck is a standard one
// with a single queen removed, so after all pairs are shed exactly one queen
// can never be matched. Players draw blind from each other; whoever empties
// their hand is safe, the last seat holding cards loses.
type pairsEngine struct {
	room    *Room
	discard *deck.Pile
	turn    int
	loser   int // -1 until terminal
	total   int
}

func newPairsEngine(r *Room) *pairsEngine {
	return &pairsEngine{room: r, discard: deck.NewPile(nil), loser: -1}
}

func (e *pairsEngine) Variant() Variant { return VariantPairs }
func (e *pairsEngine) Turn() int        { return e.turn }

func (e *pairsEngine) CardCount() int {
	n := e.discard.Len()
	for _, s := range e.room.Seats {
		n += len(s.Hand)
	}
	return n
}

func (e *pairsEngine) RuleView() RuleView {
	return RuleView{Turn: e.turn, DiscardSize: e.discard.Len()}
}

// Deal distributes the whole deck round-robin, then every seat sheds its
// same-rank pairs. A seat dealt nothing but pairs is finished immediately.
func (e *pairsEngine) Deal() error {
	cards := deck.NewPairingDeck(e.room.Rng)
	e.total = len(cards)
	seats := e.room.Seats
	for i, c := range cards {
		s := seats[i%len(seats)]
		s.Hand = append(s.Hand, c)
	}
	for _, s := range seats {
		e.shedPairs(s)
	}
	for _, s := range seats {
		if len(s.Hand) == 0 {
			e.finishSeat(s)
		}
	}
	if seats[e.turn].Finished {
		e.turn = nextEligible(seats, e.turn, 1, 0)
	}
	e.checkEnd()
	return nil
}

// shedPairs discards same-rank pairs from the hand in deterministic order:
// the hand is scanned left to right and each card pairs with the earliest
// unmatched card of its rank.
func (e *pairsEngine) shedPairs(s *Seat) {
	open := make(map[string]int) // rank -> index of an unmatched card
	var kept []*models.Card
	for _, c := range s.Hand {
		if j, ok := open[c.Rank]; ok {
			e.discard.Push(kept[j])
			e.discard.Push(c)
			kept = append(kept[:j], kept[j+1:]...)
			delete(open, c.Rank)
			// reindex open entries past the removed slot
			for rank, idx := range open {
				if idx > j {
					open[rank] = idx - 1
				}
			}
			continue
		}
		open[c.Rank] = len(kept)
		kept = append(kept, c)
	}
	s.Hand = kept
}

// Handle accepts only the draw action. Assumes room lock is held.
func (e *pairsEngine) Handle(seatIdx int, act Action) error {
	if act.Type != ActionDraw {
		return ErrBadAction
	}
	return e.draw(seatIdx, act.TargetSeat, act.CardIndex)
}

// BotAction draws from the next eligible seat at a random index.
func (e *pairsEngine) BotAction(seatIdx int) (Action, bool) {
	target := nextEligible(e.room.Seats, seatIdx, 1, 0)
	if target == seatIdx {
		return Action{}, false
	}
	return Action{Type: ActionDraw, TargetSeat: target}, true
}

// draw moves one card from target's hand into actor's hand; if it completes a
// pair there, both cards are discarded instead. A caller-specified index is
// honored when valid, otherwise the card is picked uniformly at random.
func (e *pairsEngine) draw(actorIdx, targetIdx int, cardIndex *int) error {
	seats := e.room.Seats
	if actorIdx != e.turn {
		return ErrNotYourTurn
	}
	if targetIdx < 0 || targetIdx >= len(seats) || targetIdx == actorIdx {
		return ErrNoSuchSeat
	}
	actor, target := seats[actorIdx], seats[targetIdx]
	if len(target.Hand) == 0 {
		return ErrEmptyTargetHand
	}

	idx := e.room.Rng.Intn(len(target.Hand))
	if cardIndex != nil && *cardIndex >= 0 && *cardIndex < len(target.Hand) {
		idx = *cardIndex
	}
	drawn := target.removeCard(idx)

	paired := false
	if j := e.rankIndex(actor, drawn.Rank); j >= 0 {
		e.discard.Push(actor.removeCard(j))
		e.discard.Push(drawn)
		paired = true
	} else {
		actor.Hand = append(actor.Hand, drawn)
	}

	// Drawn-card identity stays private; the summary carries counts only.
	e.room.broadcast(Event{
		Type:    EventCardDrawn,
		Code:    e.room.Code,
		Seat:    &actorIdx,
		Name:    actor.Name,
		Target:  &targetIdx,
		Count:   1,
		Success: &paired,
	})

	if len(target.Hand) == 0 {
		e.finishSeat(target)
	}
	if len(actor.Hand) == 0 {
		e.finishSeat(actor)
	}
	if e.checkEnd() {
		return nil
	}
	e.turn = nextEligible(seats, e.turn, 1, 0)
	e.room.broadcastTurn()
	return nil
}

func (e *pairsEngine) rankIndex(s *Seat, rank string) int {
	for i, c := range s.Hand {
		if c.Rank == rank {
			return i
		}
	}
	return -1
}

// finishSeat marks a seat safe, first time only, and records the win.
func (e *pairsEngine) finishSeat(s *Seat) {
	if s.Finished {
		return
	}
	s.Finished = true
	s.Stats.Wins++
	e.room.recordResult(s, "win", nil)
}

// checkEnd detects the terminal state: exactly one unfinished seat remains
// and is the loser. The "rival" who caused the loss is intentionally left
// unrecorded. Returns true when the round ended.
func (e *pairsEngine) checkEnd() bool {
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
	for i, s := range e.room.Seats {
		if s == last {
			e.loser = i
		}
	}
	last.Finished = true
	last.Stats.Losses++
	e.room.recordResult(last, "loss", map[string]interface{}{
		"heldOddCard": e.rankIndex(last, deck.OddRank) >= 0,
		"rival":       "",
	})
	e.room.finishRound("", last.Name)
	return true
}
