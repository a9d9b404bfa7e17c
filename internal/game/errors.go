// internal/game/errors.go
package game

import "errors"

// Validation errors are reported only to the offending connection; room state
// is never mutated before they are returned.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrAlreadyStarted     = errors.New("game has already started")
	ErrNotStarted         = errors.New("game has not started")
	ErrNotHost            = errors.New("only the host can do that")
	ErrNotEnoughPlayers   = errors.New("not enough players to start")
	ErrNoSuchSeat         = errors.New("no such seat")
	ErrNotSeated          = errors.New("you are not seated in this room")
	ErrNotYourTurn        = errors.New("it's not your turn")
	ErrNotInHand          = errors.New("card is not in your hand")
	ErrIllegalCard        = errors.New("card cannot be played on the current discard")
	ErrWaitingForColor    = errors.New("waiting for a color to be chosen")
	ErrNotChoosingColor   = errors.New("no color choice is pending for you")
	ErrEmptyTargetHand    = errors.New("target hand is empty")
	ErrNothingToChallenge = errors.New("nothing to challenge")
	ErrBadAction          = errors.New("action not valid for this game")
	ErrBadColor           = errors.New("not a playable color")
)

// ErrMustStack is returned when a forced draw is pending and the played card
// does not continue the stack; the client shows the accumulated draw count.
var ErrMustStack = errors.New("must stack a matching draw card or draw the penalty")
