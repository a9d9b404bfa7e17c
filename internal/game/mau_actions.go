// internal/game/mau_actions.go
package game

import (
	"github.com/cardden/server/internal/models"
)

// play runs the full play pipeline: stacking/legality validation, hand
// removal with declaration bookkeeping, discard and color update, win check,
// then the card's turn effect. A wild played without a color suspends the
// room until chooseColor resolves it.
func (e *mauEngine) play(seatIdx int, act Action) error {
	if e.pendingColor {
		return ErrWaitingForColor
	}
	if seatIdx != e.turn {
		return ErrNotYourTurn
	}
	seat := e.room.Seats[seatIdx]
	j := seat.handIndex(act.CardID)
	if j < 0 {
		return ErrNotInHand
	}
	card := seat.Hand[j]

	if e.accumulator > 0 {
		if card.Kind != e.lastPlayed.Kind {
			return ErrMustStack
		}
	} else if !e.legal(card) {
		return ErrIllegalCard
	}

	seat.removeCard(j)
	declaredBefore := seat.Declared
	seat.Declared = false
	if len(seat.Hand) == 1 && !declaredBefore {
		seat.PendingChallenge = true
	}

	e.discard.Push(card)
	e.lastPlayed = card
	e.lastPlayerIdx = seatIdx

	pending := false
	if card.IsWild() {
		if models.ValidColor(act.Color) {
			card.Color = act.Color
			e.currentColor = act.Color
		} else {
			pending = true
		}
	} else {
		e.currentColor = card.Color
	}

	e.room.broadcast(Event{
		Type:  EventCardPlayed,
		Code:  e.room.Code,
		Seat:  &seatIdx,
		Name:  seat.Name,
		Card:  card,
		Color: e.currentColor,
	})

	if len(seat.Hand) == 0 {
		e.finishSeat(seat)
		if e.checkEnd() {
			return nil
		}
	}

	if pending {
		// Everything waits on the color; turn does not advance.
		e.pendingColor = true
		e.pendingColorSeat = seatIdx
		e.pendingCard = card
		return nil
	}

	e.applyEffect(card, seatIdx)
	e.room.broadcastTurn()
	return nil
}

// chooseColor resolves a suspended wild: the chosen color takes effect and
// the card's deferred turn effect is applied only now. A seat that emptied
// its hand with the wild still owes the choice.
func (e *mauEngine) chooseColor(seatIdx int, color string) error {
	if !e.pendingColor || seatIdx != e.pendingColorSeat {
		return ErrNotChoosingColor
	}
	if !models.ValidColor(color) {
		return ErrBadColor
	}

	card := e.pendingCard
	card.Color = color
	e.currentColor = color
	e.pendingColor = false
	e.pendingCard = nil

	e.room.broadcast(Event{
		Type:  EventColorChosen,
		Code:  e.room.Code,
		Seat:  &seatIdx,
		Name:  e.room.Seats[seatIdx].Name,
		Color: color,
	})

	e.applyEffect(card, seatIdx)
	e.room.broadcastTurn()
	return nil
}

// drawAction takes the accumulated penalty, or a single card when no penalty
// is pending, then passes the turn. Drawing always ends the turn.
func (e *mauEngine) drawAction(seatIdx int) error {
	if e.pendingColor {
		return ErrWaitingForColor
	}
	if seatIdx != e.turn {
		return ErrNotYourTurn
	}
	seat := e.room.Seats[seatIdx]

	n := e.accumulator
	if n == 0 {
		n = 1
	}
	drawn := e.dealCards(seat, n)
	e.accumulator = 0
	seat.Declared = false
	seat.PendingChallenge = false

	e.room.broadcast(Event{
		Type:  EventCardDrawn,
		Code:  e.room.Code,
		Seat:  &seatIdx,
		Name:  seat.Name,
		Count: drawn,
	})

	e.turn = nextEligible(e.room.Seats, seatIdx, e.direction, 0)
	e.room.broadcastTurn()
	return nil
}

// declare announces a one-card hand. Accepted down to two cards so the
// announcement can precede the play that leaves one; larger hands have
// nothing to announce.
func (e *mauEngine) declare(seatIdx int) error {
	seat := e.room.Seats[seatIdx]
	if len(seat.Hand) > 2 || seat.Finished {
		return ErrBadAction
	}
	seat.Declared = true
	seat.PendingChallenge = false
	seat.Stats.Declarations++
	e.room.broadcast(Event{
		Type: EventDeclared,
		Code: e.room.Code,
		Seat: &seatIdx,
		Name: seat.Name,
	})
	return nil
}

// challengeDeclaration penalizes a seat caught holding one card without
// having declared. Only effective while the missed declaration is still
// open; the turn order is untouched.
func (e *mauEngine) challengeDeclaration(seatIdx, targetIdx int) error {
	if targetIdx < 0 || targetIdx >= len(e.room.Seats) || targetIdx == seatIdx {
		return ErrNoSuchSeat
	}
	target := e.room.Seats[targetIdx]
	if len(target.Hand) != 1 || !target.PendingChallenge {
		return ErrNothingToChallenge
	}

	drawn := e.dealCards(target, 2)
	target.PendingChallenge = false
	target.Stats.FailedDeclarations++

	caught := true
	e.room.broadcast(Event{
		Type:    EventChallenge,
		Code:    e.room.Code,
		Seat:    &seatIdx,
		Target:  &targetIdx,
		Name:    target.Name,
		Count:   drawn,
		Success: &caught,
	})
	return nil
}

// challengeWildFour lets the seat facing a wild-four penalty accuse the
// player of having held a playable color. The card under the wild-four
// decides: if the previous hand matches its color (or holds another wild),
// the accusation stands and the player draws four; otherwise the accuser
// draws six. Either way the accumulator clears and the turn moves on.
func (e *mauEngine) challengeWildFour(seatIdx int) error {
	if e.pendingColor {
		return ErrWaitingForColor
	}
	if e.lastPlayed == nil || e.lastPlayed.Kind != models.KindWildFour ||
		e.accumulator == 0 || e.lastPlayerIdx < 0 {
		return ErrNothingToChallenge
	}
	if seatIdx != e.turn {
		return ErrNotYourTurn
	}

	below := e.discard.Peek(1)
	prev := e.room.Seats[e.lastPlayerIdx]
	guilty := false
	if below != nil {
		for _, c := range prev.Hand {
			if c.IsWild() || c.Color == below.Color {
				guilty = true
				break
			}
		}
	}

	var drawn, target int
	if guilty {
		target = e.lastPlayerIdx
		drawn = e.dealCards(prev, 4)
	} else {
		target = seatIdx
		drawn = e.dealCards(e.room.Seats[seatIdx], 6)
	}
	e.accumulator = 0

	e.room.broadcast(Event{
		Type:    EventChallenge,
		Code:    e.room.Code,
		Seat:    &seatIdx,
		Target:  &target,
		Name:    prev.Name,
		Count:   drawn,
		Success: &guilty,
	})

	e.turn = nextEligible(e.room.Seats, seatIdx, e.direction, 0)
	e.room.broadcastTurn()
	return nil
}
