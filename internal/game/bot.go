// internal/game/bot.go
package game

import "time"

// maybeScheduleBot arms the bot timer when the seat to act is bot-controlled.
// The previous timer, if any, is stopped first so at most one is pending per
// room. Assumes lock is held.
func (r *Room) maybeScheduleBot() {
	if r.botTimer != nil {
		r.botTimer.Stop()
		r.botTimer = nil
	}
	if r.Status != StatusPlaying || r.engine == nil {
		return
	}
	turn := r.engine.Turn()
	if turn < 0 || turn >= len(r.Seats) || !r.Seats[turn].IsBot {
		return
	}
	code := r.Code
	reg := r.registry
	r.botTimer = time.AfterFunc(r.BotDelay, func() {
		// The room may have ended during the delay; resolve it through the
		// registry again and re-validate everything under the lock rather
		// than act on stale state.
		room, ok := reg.Find(code)
		if !ok || room != r {
			return
		}
		room.botAct(turn)
	})
}

// botAct performs exactly one legal default action for a bot seat. Every
// precondition is re-checked first: the timer may fire after the game ended,
// after the seat finished, or after the turn moved on.
func (r *Room) botAct(seatIdx int) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Status != StatusPlaying || r.engine == nil {
		return
	}
	if r.engine.Turn() != seatIdx {
		return
	}
	// A finished seat can still hold the turn when it owes a color choice
	// (wild played as the last card, then the seat was handed to a bot), so
	// the engine decides whether an action applies, not the finished flag.
	if !r.Seats[seatIdx].IsBot {
		return
	}

	act, ok := r.engine.BotAction(seatIdx)
	if !ok {
		return
	}
	if err := r.dispatch(seatIdx, act); err != nil {
		// A rejected default action means the engine state moved between
		// scheduling and firing; the next schedule pass will retry.
		r.maybeScheduleBot()
	}
}
