// internal/deck/deck.go
package deck

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cardden/server/internal/models"
)

// suits for the standard 52-card deck used by the pairing game.
var suits = []string{"H", "D", "C", "S"}

// ranks for the standard deck.
var ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "T", "J", "Q", "K"}

// OddRank is the rank left unmatched in the pairing deck: one queen is removed
// before dealing, so exactly one queen can never be paired.
const OddRank = "Q"

// oddSuit is the suit of the removed queen.
const oddSuit = "C"

// NewRand returns a time-seeded rand source; tests pass their own seeded one.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Shuffle permutes cards in place using r.
func Shuffle(cards []*models.Card, r *rand.Rand) {
	r.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// NewPairingDeck builds the 51-card pairing deck: a standard deck minus the
// queen of clubs, shuffled with r.
func NewPairingDeck(r *rand.Rand) []*models.Card {
	var cards []*models.Card
	for _, suit := range suits {
		for _, rank := range ranks {
			if rank == OddRank && suit == oddSuit {
				continue
			}
			id, _ := uuid.NewRandom()
			cards = append(cards, &models.Card{ID: id, Kind: models.KindStandard, Rank: rank, Color: suit})
		}
	}
	Shuffle(cards, r)
	return cards
}

// NewSheddingDeck builds the 108-card shedding deck: per color one "0", two
// each of "1".."9", and two each of skip/reverse/draw-two; plus four wild and
// four wild-draw-four cards. Shuffled with r.
func NewSheddingDeck(r *rand.Rand) []*models.Card {
	var cards []*models.Card
	add := func(kind models.CardKind, rank string, value int, color string) {
		id, _ := uuid.NewRandom()
		cards = append(cards, &models.Card{ID: id, Kind: kind, Rank: rank, Value: value, Color: color})
	}
	for _, color := range models.Colors {
		add(models.KindNumber, "0", 0, color)
		for v := 1; v <= 9; v++ {
			add(models.KindNumber, strconv.Itoa(v), v, color)
			add(models.KindNumber, strconv.Itoa(v), v, color)
		}
		for i := 0; i < 2; i++ {
			add(models.KindSkip, "skip", 0, color)
			add(models.KindReverse, "reverse", 0, color)
			add(models.KindDrawTwo, "+2", 0, color)
		}
	}
	for i := 0; i < 4; i++ {
		add(models.KindWild, "wild", 0, models.ColorWild)
		add(models.KindWildFour, "+4", 0, models.ColorWild)
	}
	Shuffle(cards, r)
	return cards
}

// Pile is an ordered stack of cards. The draw end is the tail of the slice.
type Pile struct {
	cards []*models.Card
}

// NewPile wraps cards in a pile; the last element is the top.
func NewPile(cards []*models.Card) *Pile {
	return &Pile{cards: cards}
}

func (p *Pile) Len() int { return len(p.cards) }

// Push puts c on top of the pile.
func (p *Pile) Push(c *models.Card) {
	p.cards = append(p.cards, c)
}

// PushBottom puts c under the pile (used to requeue a wild opening flip).
func (p *Pile) PushBottom(c *models.Card) {
	p.cards = append([]*models.Card{c}, p.cards...)
}

// Draw removes and returns the top card, or nil when the pile is empty.
func (p *Pile) Draw() *models.Card {
	if len(p.cards) == 0 {
		return nil
	}
	c := p.cards[len(p.cards)-1]
	p.cards = p.cards[:len(p.cards)-1]
	return c
}

// Top returns the top card without removing it, or nil when empty.
func (p *Pile) Top() *models.Card {
	if len(p.cards) == 0 {
		return nil
	}
	return p.cards[len(p.cards)-1]
}

// Peek returns the card at offset below the top (0 = top), or nil when out of
// range. The wild-four challenge inspects offset 1.
func (p *Pile) Peek(offset int) *models.Card {
	idx := len(p.cards) - 1 - offset
	if idx < 0 {
		return nil
	}
	return p.cards[idx]
}

// Recycle moves all but the top discard card into the draw pile and shuffles
// it. Wild cards get their color reset to the neutral marker first, so a
// recycled wild is undeclared again. No-op if the discard pile has fewer than
// two cards.
func Recycle(draw, discard *Pile, r *rand.Rand) int {
	if discard.Len() < 2 {
		return 0
	}
	top := discard.cards[len(discard.cards)-1]
	moved := discard.cards[:len(discard.cards)-1]
	for _, c := range moved {
		if c.IsWild() {
			c.Color = models.ColorWild
		}
	}
	draw.cards = append(draw.cards, moved...)
	discard.cards = []*models.Card{top}
	Shuffle(draw.cards, r)
	return len(moved)
}
