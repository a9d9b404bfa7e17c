// internal/models/card.go
package models

import "github.com/google/uuid"

// CardKind distinguishes the rule behavior of a card. Standard playing cards
// (pairing game) are KindStandard; the shedding game uses the rest.
type CardKind string

const (
	KindStandard CardKind = "standard"
	KindNumber   CardKind = "number"
	KindSkip     CardKind = "skip"
	KindReverse  CardKind = "reverse"
	KindDrawTwo  CardKind = "draw_two"
	KindWild     CardKind = "wild"
	KindWildFour CardKind = "wild_four"
)

// Shedding-game colors. ColorWild is the neutral marker carried by wild cards
// until a color is chosen (and restored when the discard pile is recycled).
const (
	ColorRed    = "red"
	ColorYellow = "yellow"
	ColorGreen  = "green"
	ColorBlue   = "blue"
	ColorWild   = "wild"
)

// Colors lists the four playable shedding-game colors.
var Colors = []string{ColorRed, ColorYellow, ColorGreen, ColorBlue}

// Card is immutable once created; identity is its ID, never a slice position.
// Ownership moves between hands and piles by moving the pointer.
//
// For KindStandard, Rank is "A".."K" and Color is a suit letter ("H","D","C","S").
// For KindNumber, Value is 0..9 and Rank mirrors it as a string.
// Wild cards mutate Color only when a color is chosen at play time; that is the
// single sanctioned exception to immutability.
type Card struct {
	ID    uuid.UUID `json:"id"`
	Kind  CardKind  `json:"kind"`
	Rank  string    `json:"rank,omitempty"`
	Value int       `json:"value"`
	Color string    `json:"color"`
}

// IsWild reports whether the card is one of the two wild kinds.
func (c *Card) IsWild() bool {
	return c.Kind == KindWild || c.Kind == KindWildFour
}

// ValidColor reports whether s names one of the four playable colors.
func ValidColor(s string) bool {
	for _, c := range Colors {
		if c == s {
			return true
		}
	}
	return false
}
