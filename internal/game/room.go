// internal/game/room.go
package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cardden/server/internal/deck"
)

// Status is the room lifecycle phase. Once finished, the room is removed from
// the registry and has no further lifecycle.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// maxSeats bounds room capacity for both variants.
const maxSeats = 8

// defaultBotDelay is how long a bot seat waits before taking its action.
const defaultBotDelay = 2 * time.Second

// MatchResult is handed to the external statistics collaborator when a seat
// finishes a round. Recording is best effort and never blocks game logic.
type MatchResult struct {
	DisplayName string
	Variant     Variant
	Outcome     string // "win" or "loss"
	Details     map[string]interface{}
}

// Room owns one rule engine instance, its membership and host identity, and
// routes validated actions into the engine. All mutable state is guarded by
// Mu; every mutation completes before the lock is released, so timers and
// broadcasts only ever observe consistent snapshots.
type Room struct {
	Code     string
	Variant  Variant
	Capacity int
	Status   Status
	Seats    []*Seat

	Mu sync.Mutex

	// SendFn delivers an event to one connection. Injected by the transport
	// layer; nil-safe for tests.
	SendFn func(connID uuid.UUID, ev Event)

	// RecordResultFn hands a finished seat's result to the statistics
	// collaborator. Called on its own goroutine; failures are its problem.
	RecordResultFn func(res MatchResult)

	// BotDelay and Rng are overridable before Start for deterministic tests.
	BotDelay time.Duration
	Rng      *rand.Rand

	registry   *Registry
	engine     Engine
	spectators map[uuid.UUID]bool
	botTimer   *time.Timer

	actionIndex int
}

func newRoom(reg *Registry, code string, variant Variant, capacity int, host *Seat) *Room {
	return &Room{
		Code:       code,
		Variant:    variant,
		Capacity:   capacity,
		Status:     StatusWaiting,
		Seats:      []*Seat{host},
		BotDelay:   defaultBotDelay,
		Rng:        deck.NewRand(),
		registry:   reg,
		spectators: make(map[uuid.UUID]bool),
	}
}

// seatByConn returns the seat index for a connection, or -1.
// Assumes lock is held.
func (r *Room) seatByConn(connID uuid.UUID) int {
	if connID == uuid.Nil {
		return -1
	}
	for i, s := range r.Seats {
		if s.ConnID == connID {
			return i
		}
	}
	return -1
}

// hostConn returns the host seat's connection id. Assumes lock is held.
func (r *Room) hostConn() uuid.UUID {
	for _, s := range r.Seats {
		if s.IsHost {
			return s.ConnID
		}
	}
	return uuid.Nil
}

// Join seats a connection in a waiting room. Re-joining with the same
// connection identity updates the display name and never duplicates the seat.
func (r *Room) Join(connID uuid.UUID, name string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if idx := r.seatByConn(connID); idx >= 0 {
		r.Seats[idx].Name = name
		r.broadcastMembership()
		return nil
	}
	if r.Status != StatusWaiting {
		return ErrAlreadyStarted
	}
	if len(r.Seats) >= r.Capacity {
		return ErrRoomFull
	}
	r.Seats = append(r.Seats, &Seat{ConnID: connID, Name: name})
	r.broadcastMembership()
	return nil
}

// Leave detaches a connection from the room. In a waiting room the seat is
// removed (the room is deleted if the host leaves or it empties); in a
// playing room the seat is handed to a bot so the round can continue.
func (r *Room) Leave(connID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	idx := r.seatByConn(connID)
	if idx < 0 {
		delete(r.spectators, connID)
		return
	}
	seat := r.Seats[idx]

	switch r.Status {
	case StatusWaiting:
		r.Seats = append(r.Seats[:idx], r.Seats[idx+1:]...)
		if seat.IsHost || len(r.Seats) == 0 {
			r.Status = StatusFinished
			r.registry.Delete(r.Code)
			return
		}
		r.broadcastMembership()
	case StatusPlaying:
		// Bot fallback: the seat stays, a synthetic player takes over.
		seat.ConnID = uuid.Nil
		seat.IsBot = true
		r.broadcastMembership()
		r.maybeScheduleBot()
	}
}

// Spectate attaches a connection as a spectator and sends it the masked
// spectator snapshot.
func (r *Room) Spectate(connID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.spectators[connID] = true
	r.send(connID, Event{Type: EventRoomState, Code: r.Code, State: r.viewFor(-1)})
}

// LeaveSpectate detaches a spectator; unknown connections are a no-op.
func (r *Room) LeaveSpectate(connID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	delete(r.spectators, connID)
}

// Kick removes a seat from a waiting room. Host only; the removed seat is
// notified before the membership rebroadcast.
func (r *Room) Kick(actorConn uuid.UUID, targetIdx int) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if actorConn != r.hostConn() {
		return ErrNotHost
	}
	if r.Status != StatusWaiting {
		return ErrAlreadyStarted
	}
	if targetIdx < 0 || targetIdx >= len(r.Seats) {
		return ErrNoSuchSeat
	}
	target := r.Seats[targetIdx]
	if target.IsHost {
		return ErrNoSuchSeat
	}
	r.send(target.ConnID, Event{Type: EventKicked, Code: r.Code})
	r.Seats = append(r.Seats[:targetIdx], r.Seats[targetIdx+1:]...)
	r.broadcastMembership()
	return nil
}

// Start backfills unfilled capacity with bot seats, constructs the rule
// engine, deals, and transitions the room to playing. Host only.
func (r *Room) Start(actorConn uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if actorConn != r.hostConn() {
		return ErrNotHost
	}
	if r.Status != StatusWaiting {
		return ErrAlreadyStarted
	}
	if len(r.Seats) == 0 {
		return ErrNotEnoughPlayers
	}
	for i := len(r.Seats); i < r.Capacity; i++ {
		r.Seats = append(r.Seats, &Seat{IsBot: true, Name: fmt.Sprintf("Bot %d", i+1)})
	}
	if len(r.Seats) < 2 {
		return ErrNotEnoughPlayers
	}

	switch r.Variant {
	case VariantMau:
		r.engine = newMauEngine(r)
	default:
		r.engine = newPairsEngine(r)
	}
	if err := r.engine.Deal(); err != nil {
		return err
	}
	// The deal itself can be terminal (a pairing deal that sheds every seat
	// but one empty); the room is already finished and deregistered then.
	if r.Status == StatusFinished {
		return nil
	}
	r.Status = StatusPlaying
	r.logAction(-1, "start_game", nil)
	r.broadcastMembership()
	r.broadcastState()
	r.broadcastTurn()
	r.maybeScheduleBot()
	return nil
}

// HandleAction is the single entry point for in-game actions. The seat lookup
// and engine dispatch happen under the room lock; the turn-ownership check
// inside the engine is the sole arbiter between racing connections.
func (r *Room) HandleAction(connID uuid.UUID, act Action) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Status != StatusPlaying {
		return ErrNotStarted
	}
	idx := r.seatByConn(connID)
	if idx < 0 {
		return ErrNotSeated
	}
	return r.dispatch(idx, act)
}

// dispatch runs one validated action for seatIdx. Assumes lock is held.
func (r *Room) dispatch(seatIdx int, act Action) error {
	if err := r.engine.Handle(seatIdx, act); err != nil {
		return err
	}
	r.logAction(seatIdx, string(act.Type), nil)
	if r.Status == StatusPlaying {
		r.broadcastState()
		r.maybeScheduleBot()
	}
	return nil
}

// send delivers an event to a single connection; bots and detached
// connections are skipped. Assumes lock is held.
func (r *Room) send(connID uuid.UUID, ev Event) {
	if r.SendFn == nil || connID == uuid.Nil {
		return
	}
	r.SendFn(connID, ev)
}

// broadcast sends an event to every seated connection and every spectator.
// Assumes lock is held.
func (r *Room) broadcast(ev Event) {
	for _, s := range r.Seats {
		r.send(s.ConnID, ev)
	}
	for connID := range r.spectators {
		r.send(connID, ev)
	}
}

// broadcastMembership sends the current seat list to everyone.
// Assumes lock is held.
func (r *Room) broadcastMembership() {
	r.broadcast(Event{Type: EventMembership, Code: r.Code, Seats: r.seatViews(-1)})
}

// broadcastState sends each recipient its own masked projection: seats see
// their own hand, spectators see none. Assumes lock is held.
func (r *Room) broadcastState() {
	for i, s := range r.Seats {
		if s.ConnID == uuid.Nil {
			continue
		}
		r.send(s.ConnID, Event{Type: EventRoomState, Code: r.Code, State: r.viewFor(i)})
	}
	specView := r.viewFor(-1)
	for connID := range r.spectators {
		r.send(connID, Event{Type: EventRoomState, Code: r.Code, State: specView})
	}
}

// broadcastTurn announces whose turn it is. Assumes lock is held.
func (r *Room) broadcastTurn() {
	if r.engine == nil {
		return
	}
	rv := r.engine.RuleView()
	r.broadcast(Event{
		Type:        EventPlayerTurn,
		Code:        r.Code,
		Turn:        &rv.Turn,
		Direction:   rv.Direction,
		Accumulator: rv.Accumulator,
	})
}

// recordResult hands a seat's outcome to the statistics collaborator on its
// own goroutine. Bots are not recorded. Assumes lock is held.
func (r *Room) recordResult(s *Seat, outcome string, details map[string]interface{}) {
	if s.IsBot || r.RecordResultFn == nil {
		return
	}
	if details == nil {
		details = make(map[string]interface{})
	}
	details["stats"] = s.Stats
	res := MatchResult{DisplayName: s.Name, Variant: r.Variant, Outcome: outcome, Details: details}
	go r.RecordResultFn(res)
}

// finishRound ends the round: broadcasts the terminal result, stops any
// pending bot timer, and removes the room from the registry. Further actions
// against this code fail with ErrRoomNotFound at the registry. Assumes lock
// is held.
func (r *Room) finishRound(winner, loser string) {
	if r.Status == StatusFinished {
		return
	}
	r.Status = StatusFinished
	if r.botTimer != nil {
		r.botTimer.Stop()
		r.botTimer = nil
	}
	r.broadcast(Event{Type: EventGameOver, Code: r.Code, Winner: winner, Loser: loser})
	r.logAction(-1, "game_over", map[string]interface{}{"winner": winner, "loser": loser})
	r.registry.Delete(r.Code)
}
