// internal/game/registry.go
package game

import (
	"errors"
	"sync"

	"github.com/cardden/server/internal/deck"
)

// codeCharset deliberately omits 0/O/1/I to keep codes readable.
const codeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// codeSuffixLen is the number of random characters after the variant prefix.
const codeSuffixLen = 5

// variantPrefix lets a generic "join by code" entry point route to the right
// engine without a lookup.
var variantPrefix = map[Variant]byte{
	VariantPairs: 'P',
	VariantMau:   'M',
}

// ErrCodesExhausted is returned when a fresh code cannot be minted; with a
// 32^5 space per variant this practically never happens.
var ErrCodesExhausted = errors.New("room code space exhausted")

// Registry is the process-wide directory of active rooms, keyed by room code.
// It is the only place new codes are minted; a code is never reused while a
// room with that code exists.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
	rng   interface{ Intn(int) int }
}

// NewRegistry returns an empty registry with a time-seeded code generator.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		rng:   deck.NewRand(),
	}
}

// CreateRoom mints a code, builds a Room in waiting status with the host as
// sole seat, and stores it.
func (reg *Registry) CreateRoom(variant Variant, capacity int, host *Seat) (*Room, error) {
	if capacity < 2 {
		capacity = 2
	}
	if capacity > maxSeats {
		capacity = maxSeats
	}
	host.IsHost = true

	reg.mu.Lock()
	defer reg.mu.Unlock()

	code, err := reg.mintCode(variant)
	if err != nil {
		return nil, err
	}
	r := newRoom(reg, code, variant, capacity, host)
	reg.rooms[code] = r
	return r, nil
}

// Find resolves a room by code.
func (reg *Registry) Find(code string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[code]
	return r, ok
}

// Delete removes the room; called exactly once, when a round reaches a
// terminal state (or a waiting room empties). Deleting an absent code is a
// no-op.
func (reg *Registry) Delete(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, code)
}

// Len reports the number of active rooms.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

// mintCode generates a prefixed code not currently in use. Assumes the
// registry lock is held.
func (reg *Registry) mintCode(variant Variant) (string, error) {
	for attempt := 0; attempt < 64; attempt++ {
		buf := make([]byte, codeSuffixLen+1)
		buf[0] = variantPrefix[variant]
		for i := 1; i < len(buf); i++ {
			buf[i] = codeCharset[reg.rng.Intn(len(codeCharset))]
		}
		code := string(buf)
		if _, taken := reg.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", ErrCodesExhausted
}
