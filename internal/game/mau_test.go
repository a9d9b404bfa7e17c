// internal/game/mau_test.go
package game

import (
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardden/server/internal/models"
)

func numCard(value int, color string) *models.Card {
	return &models.Card{ID: uuid.New(), Kind: models.KindNumber, Rank: strconv.Itoa(value), Value: value, Color: color}
}

func actionCard(kind models.CardKind, color string) *models.Card {
	return &models.Card{ID: uuid.New(), Kind: kind, Color: color}
}

func wildCard(kind models.CardKind) *models.Card {
	return &models.Card{ID: uuid.New(), Kind: kind, Color: models.ColorWild}
}

// newMauFixture builds a playing room with scripted hands, an empty draw
// pile, and the given card on the discard pile. Turn starts at 0.
func newMauFixture(t *testing.T, top *models.Card, hands ...[]*models.Card) (*Room, *mauEngine, *eventSink) {
	t.Helper()
	_, r, sink, _ := newTestRoom(t, VariantMau, len(hands))
	r.BotDelay = time.Hour
	names := []string{"host", "bob", "carol", "dave"}
	for i := 1; i < len(hands); i++ {
		require.NoError(t, r.Join(uuid.New(), names[i]))
	}
	e := newMauEngine(r)
	total := 1
	for i, h := range hands {
		r.Seats[i].Hand = h
		total += len(h)
	}
	e.discard.Push(top)
	e.lastPlayed = top
	e.currentColor = top.Color
	e.total = total
	r.engine = e
	r.Status = StatusPlaying
	return r, e, sink
}

func playCard(r *Room, seat int, c *models.Card, color string) error {
	return r.HandleAction(r.Seats[seat].ConnID, Action{Type: ActionPlayCard, CardID: c.ID, Color: color})
}

func TestDealInvariants(t *testing.T) {
	_, r, _, hostConn := newTestRoom(t, VariantMau, 4)
	r.BotDelay = time.Hour
	require.NoError(t, r.Start(hostConn))

	e := r.engine.(*mauEngine)
	for _, s := range r.Seats {
		assert.Len(t, s.Hand, 7)
	}
	assert.Equal(t, 108, e.CardCount())

	top := e.discard.Top()
	require.NotNil(t, top)
	assert.False(t, top.IsWild())
	assert.Equal(t, top.Color, e.currentColor)
	assert.GreaterOrEqual(t, e.turn, 0)
	assert.Less(t, e.turn, 4)
}

func TestOpeningEffects(t *testing.T) {
	tests := []struct {
		name     string
		seats    int
		opening  *models.Card
		wantTurn int
		wantDir  int
		wantAcc  int
	}{
		{"number", 3, numCard(5, models.ColorRed), 0, 1, 0},
		{"skip", 3, actionCard(models.KindSkip, models.ColorRed), 1, 1, 0},
		{"reverse", 4, actionCard(models.KindReverse, models.ColorRed), 3, -1, 0},
		{"reverse two seats acts as skip", 2, actionCard(models.KindReverse, models.ColorRed), 1, 1, 0},
		{"draw two", 3, actionCard(models.KindDrawTwo, models.ColorRed), 0, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, r, _, _ := newTestRoom(t, VariantMau, tt.seats)
			for i := 1; i < tt.seats; i++ {
				require.NoError(t, r.Join(uuid.New(), "p"))
			}
			e := newMauEngine(r)
			e.applyOpening(tt.opening)

			assert.Equal(t, tt.wantTurn, e.turn)
			assert.Equal(t, tt.wantDir, e.direction)
			assert.Equal(t, tt.wantAcc, e.accumulator)
			assert.Equal(t, tt.opening.Color, e.currentColor)
		})
	}
}

func TestLegalityMatrix(t *testing.T) {
	top := numCard(5, models.ColorRed)
	_, e, _ := newMauFixture(t, top, []*models.Card{})

	assert.True(t, e.legal(numCard(9, models.ColorRed)), "same color")
	assert.True(t, e.legal(numCard(5, models.ColorBlue)), "same value")
	assert.True(t, e.legal(actionCard(models.KindSkip, models.ColorRed)), "action in color")
	assert.True(t, e.legal(wildCard(models.KindWild)), "wild")
	assert.True(t, e.legal(wildCard(models.KindWildFour)), "wild four")
	assert.False(t, e.legal(numCard(9, models.ColorBlue)), "off color off value")
	assert.False(t, e.legal(actionCard(models.KindSkip, models.ColorBlue)), "action off color on number")

	// Kind matches kind regardless of color.
	e.discard.Push(actionCard(models.KindSkip, models.ColorRed))
	assert.True(t, e.legal(actionCard(models.KindSkip, models.ColorGreen)))
	assert.False(t, e.legal(actionCard(models.KindReverse, models.ColorGreen)))
}

func TestPlayNumberAdvancesTurn(t *testing.T) {
	c := numCard(7, models.ColorRed)
	r, e, sink := newMauFixture(t, numCard(5, models.ColorRed),
		[]*models.Card{c, numCard(2, models.ColorBlue)},
		[]*models.Card{numCard(1, models.ColorGreen)},
		[]*models.Card{numCard(1, models.ColorYellow)},
	)

	require.NoError(t, playCard(r, 0, c, ""))
	assert.Equal(t, 1, e.turn)
	assert.Equal(t, models.ColorRed, e.currentColor)
	assert.Len(t, r.Seats[0].Hand, 1)

	played := sink.byType(r.Seats[1].ConnID, EventCardPlayed)
	require.Len(t, played, 1)
	assert.Same(t, c, played[0].Card)
}

func TestPlayValidation(t *testing.T) {
	held := numCard(9, models.ColorBlue)
	r, _, _ := newMauFixture(t, numCard(5, models.ColorRed),
		[]*models.Card{held},
		[]*models.Card{numCard(1, models.ColorGreen)},
	)

	assert.ErrorIs(t, playCard(r, 1, numCard(1, models.ColorGreen), ""), ErrNotYourTurn)
	assert.ErrorIs(t, playCard(r, 0, numCard(5, models.ColorRed), ""), ErrNotInHand)
	assert.ErrorIs(t, playCard(r, 0, held, ""), ErrIllegalCard)
	// Nothing mutated by the rejections.
	assert.Len(t, r.Seats[0].Hand, 1)
}

func TestSkipJumpsASeat(t *testing.T) {
	c := actionCard(models.KindSkip, models.ColorRed)
	r, e, _ := newMauFixture(t, numCard(5, models.ColorRed),
		[]*models.Card{c, numCard(2, models.ColorBlue)},
		[]*models.Card{numCard(1, models.ColorGreen)},
		[]*models.Card{numCard(1, models.ColorYellow)},
	)
	require.NoError(t, playCard(r, 0, c, ""))
	assert.Equal(t, 2, e.turn)
}

func TestReverseFlipsDirection(t *testing.T) {
	c := actionCard(models.KindReverse, models.ColorRed)
	r, e, _ := newMauFixture(t, numCard(5, models.ColorRed),
		[]*models.Card{c, numCard(2, models.ColorBlue)},
		[]*models.Card{numCard(1, models.ColorGreen)},
		[]*models.Card{numCard(1, models.ColorYellow)},
	)
	require.NoError(t, playCard(r, 0, c, ""))
	assert.Equal(t, -1, e.direction)
	assert.Equal(t, 2, e.turn)
}

func TestReverseWithTwoSeatsActsAsSkip(t *testing.T) {
	c := actionCard(models.KindReverse, models.ColorRed)
	r, e, _ := newMauFixture(t, numCard(5, models.ColorRed),
		[]*models.Card{c, numCard(2, models.ColorBlue)},
		[]*models.Card{numCard(1, models.ColorGreen)},
	)
	require.NoError(t, playCard(r, 0, c, ""))
	// The actor goes again; direction is untouched.
	assert.Equal(t, 0, e.turn)
	assert.Equal(t, 1, e.direction)
}

func TestDrawTwoStacking(t *testing.T) {
	first := actionCard(models.KindDrawTwo, models.ColorRed)
	second := actionCard(models.KindDrawTwo, models.ColorBlue)
	blocked := numCard(3, models.ColorBlue)
	r, e, _ := newMauFixture(t, numCard(5, models.ColorRed),
		[]*models.Card{first, numCard(2, models.ColorBlue)},
		[]*models.Card{second, blocked},
		[]*models.Card{numCard(1, models.ColorYellow), numCard(4, models.ColorYellow)},
	)
	for i := 0; i < 6; i++ {
		e.draw.Push(numCard(i, models.ColorGreen))
	}
	e.total += 6

	require.NoError(t, playCard(r, 0, first, ""))
	assert.Equal(t, 2, e.accumulator)
	assert.Equal(t, 1, e.turn)

	// Stacking a second draw-two grows the penalty instead of paying it.
	require.NoError(t, playCard(r, 1, second, ""))
	assert.Equal(t, 4, e.accumulator)
	assert.Equal(t, 2, e.turn)

	// The facing seat cannot dodge with an ordinary card.
	err := playCard(r, 2, r.Seats[2].Hand[0], "")
	assert.ErrorIs(t, err, ErrMustStack)

	require.NoError(t, r.HandleAction(r.Seats[2].ConnID, Action{Type: ActionDrawCard}))
	assert.Len(t, r.Seats[2].Hand, 6)
	assert.Equal(t, 0, e.accumulator)
	assert.Equal(t, 0, e.turn)
	assert.Equal(t, e.total, e.CardCount())
}

func TestVoluntaryDrawTakesOneAndPasses(t *testing.T) {
	r, e, sink := newMauFixture(t, numCard(5, models.ColorRed),
		[]*models.Card{numCard(9, models.ColorBlue)},
		[]*models.Card{numCard(1, models.ColorGreen)},
	)
	e.draw.Push(numCard(7, models.ColorGreen))
	e.total++

	require.NoError(t, r.HandleAction(r.Seats[0].ConnID, Action{Type: ActionDrawCard}))
	assert.Len(t, r.Seats[0].Hand, 2)
	assert.Equal(t, 1, e.turn)

	drawn := sink.byType(r.Seats[1].ConnID, EventCardDrawn)
	require.Len(t, drawn, 1)
	assert.Equal(t, 1, drawn[0].Count)
	assert.Nil(t, drawn[0].Card)
}

func TestDrawRecyclesDiscard(t *testing.T) {
	r, e, _ := newMauFixture(t, numCard(5, models.ColorRed),
		[]*models.Card{numCard(9, models.ColorBlue)},
		[]*models.Card{numCard(1, models.ColorGreen)},
	)
	// Two buried cards under the top; the draw pile is empty.
	e.discard.PushBottom(numCard(2, models.ColorYellow))
	e.discard.PushBottom(numCard(3, models.ColorYellow))
	e.total += 2

	require.NoError(t, r.HandleAction(r.Seats[0].ConnID, Action{Type: ActionDrawCard}))
	assert.Len(t, r.Seats[0].Hand, 2)
	assert.Equal(t, 1, e.discard.Len())
	assert.Equal(t, 1, e.draw.Len())
	assert.Equal(t, e.total, e.CardCount())
}

func TestWildSuspendsUntilColorChosen(t *testing.T) {
	w := wildCard(models.KindWild)
	r, e, sink := newMauFixture(t, numCard(5, models.ColorRed),
		[]*models.Card{w, numCard(2, models.ColorBlue)},
		[]*models.Card{numCard(1, models.ColorGreen)},
		[]*models.Card{numCard(1, models.ColorYellow)},
	)

	require.NoError(t, playCard(r, 0, w, ""))
	assert.True(t, e.pendingColor)
	assert.Equal(t, 0, e.turn, "turn must not advance while suspended")

	// Everything else is suspended.
	err := r.HandleAction(r.Seats[1].ConnID, Action{Type: ActionDrawCard})
	assert.ErrorIs(t, err, ErrWaitingForColor)
	err = r.HandleAction(r.Seats[1].ConnID, Action{Type: ActionChooseColor, Color: models.ColorBlue})
	assert.ErrorIs(t, err, ErrNotChoosingColor)
	err = r.HandleAction(r.Seats[0].ConnID, Action{Type: ActionChooseColor, Color: "purple"})
	assert.ErrorIs(t, err, ErrBadColor)

	require.NoError(t, r.HandleAction(r.Seats[0].ConnID, Action{Type: ActionChooseColor, Color: models.ColorGreen}))
	assert.False(t, e.pendingColor)
	assert.Equal(t, models.ColorGreen, e.currentColor)
	assert.Equal(t, models.ColorGreen, w.Color)
	assert.Equal(t, 1, e.turn)

	chosen := sink.byType(r.Seats[1].ConnID, EventColorChosen)
	require.Len(t, chosen, 1)
	assert.Equal(t, models.ColorGreen, chosen[0].Color)
}

func TestWildWithImmediateColor(t *testing.T) {
	w := wildCard(models.KindWildFour)
	r, e, _ := newMauFixture(t, numCard(5, models.ColorRed),
		[]*models.Card{w, numCard(2, models.ColorBlue)},
		[]*models.Card{numCard(1, models.ColorGreen)},
	)

	require.NoError(t, playCard(r, 0, w, models.ColorBlue))
	assert.False(t, e.pendingColor)
	assert.Equal(t, models.ColorBlue, e.currentColor)
	assert.Equal(t, 4, e.accumulator)
	assert.Equal(t, 1, e.turn)
}

func TestDeclarationAndChallenge(t *testing.T) {
	c := numCard(7, models.ColorRed)
	r, e, _ := newMauFixture(t, numCard(5, models.ColorRed),
		[]*models.Card{c, numCard(2, models.ColorBlue)},
		[]*models.Card{numCard(1, models.ColorGreen)},
		[]*models.Card{numCard(1, models.ColorYellow)},
	)
	for i := 0; i < 3; i++ {
		e.draw.Push(numCard(i, models.ColorGreen))
	}
	e.total += 3

	// Reaching one card without declaring is catchable.
	require.NoError(t, playCard(r, 0, c, ""))
	assert.True(t, r.Seats[0].PendingChallenge)

	require.NoError(t, r.HandleAction(r.Seats[1].ConnID, Action{Type: ActionChallengeDeclaration, TargetSeat: 0}))
	assert.Len(t, r.Seats[0].Hand, 3)
	assert.False(t, r.Seats[0].PendingChallenge)
	assert.Equal(t, 1, r.Seats[0].Stats.FailedDeclarations)
	assert.Equal(t, 1, e.turn, "challenge leaves the turn order untouched")

	// The same miss cannot be punished twice.
	err := r.HandleAction(r.Seats[2].ConnID, Action{Type: ActionChallengeDeclaration, TargetSeat: 0})
	assert.ErrorIs(t, err, ErrNothingToChallenge)
}

func TestDeclarationProtectsAgainstChallenge(t *testing.T) {
	c := numCard(7, models.ColorRed)
	r, _, sink := newMauFixture(t, numCard(5, models.ColorRed),
		[]*models.Card{c, numCard(2, models.ColorBlue)},
		[]*models.Card{numCard(1, models.ColorGreen)},
	)

	require.NoError(t, r.HandleAction(r.Seats[0].ConnID, Action{Type: ActionDeclare}))
	assert.Equal(t, 1, r.Seats[0].Stats.Declarations)
	require.NotEmpty(t, sink.byType(r.Seats[1].ConnID, EventDeclared))

	require.NoError(t, playCard(r, 0, c, ""))
	assert.False(t, r.Seats[0].PendingChallenge)

	err := r.HandleAction(r.Seats[1].ConnID, Action{Type: ActionChallengeDeclaration, TargetSeat: 0})
	assert.ErrorIs(t, err, ErrNothingToChallenge)
}

func TestWildFourChallengeGuilty(t *testing.T) {
	w := wildCard(models.KindWildFour)
	w.Color = models.ColorBlue // color already chosen at play time
	r, e, sink := newMauFixture(t, w,
		[]*models.Card{numCard(9, models.ColorRed)}, // held a red card: guilty
		[]*models.Card{numCard(1, models.ColorGreen)},
	)
	// The card below the wild four was red.
	e.discard.PushBottom(numCard(5, models.ColorRed))
	e.total++
	e.currentColor = models.ColorBlue
	e.lastPlayerIdx = 0
	e.accumulator = 4
	e.turn = 1
	for i := 0; i < 4; i++ {
		e.draw.Push(numCard(i, models.ColorGreen))
	}
	e.total += 4

	require.NoError(t, r.HandleAction(r.Seats[1].ConnID, Action{Type: ActionChallengeWildFour}))
	assert.Len(t, r.Seats[0].Hand, 5, "guilty player takes the four")
	assert.Len(t, r.Seats[1].Hand, 1)
	assert.Equal(t, 0, e.accumulator)
	assert.Equal(t, 0, e.turn)

	results := sink.byType(r.Seats[0].ConnID, EventChallenge)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Success)
	assert.True(t, *results[0].Success)
	assert.Equal(t, e.total, e.CardCount())
}

func TestWildFourChallengeInnocent(t *testing.T) {
	w := wildCard(models.KindWildFour)
	w.Color = models.ColorBlue
	r, e, _ := newMauFixture(t, w,
		[]*models.Card{numCard(9, models.ColorGreen)}, // nothing red: innocent
		[]*models.Card{numCard(1, models.ColorGreen)},
	)
	e.discard.PushBottom(numCard(5, models.ColorRed))
	e.total++
	e.currentColor = models.ColorBlue
	e.lastPlayerIdx = 0
	e.accumulator = 4
	e.turn = 1
	for i := 0; i < 6; i++ {
		e.draw.Push(numCard(i, models.ColorYellow))
	}
	e.total += 6

	require.NoError(t, r.HandleAction(r.Seats[1].ConnID, Action{Type: ActionChallengeWildFour}))
	assert.Len(t, r.Seats[0].Hand, 1)
	assert.Len(t, r.Seats[1].Hand, 7, "failed accusation costs six")
	assert.Equal(t, 0, e.accumulator)
	assert.Equal(t, 0, e.turn)
}

func TestWildFourChallengeOnlyWhenFacingIt(t *testing.T) {
	r, _, _ := newMauFixture(t, numCard(5, models.ColorRed),
		[]*models.Card{numCard(9, models.ColorRed)},
		[]*models.Card{numCard(1, models.ColorGreen)},
	)
	err := r.HandleAction(r.Seats[0].ConnID, Action{Type: ActionChallengeWildFour})
	assert.ErrorIs(t, err, ErrNothingToChallenge)
}

func TestWinAndLastSeatLoses(t *testing.T) {
	c := numCard(7, models.ColorRed)
	r, _, sink := newMauFixture(t, numCard(5, models.ColorRed),
		[]*models.Card{c},
		[]*models.Card{numCard(1, models.ColorGreen)},
	)
	require.NoError(t, r.HandleAction(r.Seats[0].ConnID, Action{Type: ActionDeclare}))
	require.NoError(t, playCard(r, 0, c, ""))

	assert.True(t, r.Seats[0].Finished)
	assert.True(t, r.Seats[1].Finished)
	assert.Equal(t, StatusFinished, r.Status)
	assert.Equal(t, 1, r.Seats[0].Stats.Wins)
	assert.Equal(t, 1, r.Seats[1].Stats.Losses)

	over := sink.byType(r.Seats[0].ConnID, EventGameOver)
	require.Len(t, over, 1)
	assert.Equal(t, "host", over[0].Winner)
	assert.Equal(t, "bob", over[0].Loser)
}

func TestThreeSeatsPlayOnAfterFirstWin(t *testing.T) {
	c := numCard(7, models.ColorRed)
	r, e, _ := newMauFixture(t, numCard(5, models.ColorRed),
		[]*models.Card{c},
		[]*models.Card{numCard(1, models.ColorGreen)},
		[]*models.Card{numCard(1, models.ColorYellow)},
	)
	require.NoError(t, r.HandleAction(r.Seats[0].ConnID, Action{Type: ActionDeclare}))
	require.NoError(t, playCard(r, 0, c, ""))

	assert.True(t, r.Seats[0].Finished)
	assert.Equal(t, StatusPlaying, r.Status)
	assert.Equal(t, 1, e.turn)

	// Finished seats are skipped by the scheduler from here on.
	e.draw.Push(numCard(8, models.ColorGreen))
	e.total++
	require.NoError(t, r.HandleAction(r.Seats[1].ConnID, Action{Type: ActionDrawCard}))
	assert.Equal(t, 2, e.turn)
}

func TestBotResolvesOwedColorAfterHandoff(t *testing.T) {
	// A seat that empties its hand with an undeclared wild still owes the
	// color choice. If that connection drops, the bot taking over must
	// resolve it so the round can continue.
	w := wildCard(models.KindWild)
	r, e, _ := newMauFixture(t, numCard(5, models.ColorRed),
		[]*models.Card{w},
		[]*models.Card{numCard(1, models.ColorGreen)},
		[]*models.Card{numCard(1, models.ColorYellow)},
	)
	r.BotDelay = 5 * time.Millisecond

	require.NoError(t, r.HandleAction(r.Seats[0].ConnID, Action{Type: ActionDeclare}))
	require.NoError(t, playCard(r, 0, w, ""))
	assert.True(t, r.Seats[0].Finished)
	assert.True(t, e.pendingColor)

	r.Leave(r.Seats[0].ConnID)

	require.Eventually(t, func() bool {
		r.Mu.Lock()
		defer r.Mu.Unlock()
		return !e.pendingColor && e.turn == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, models.ValidColor(e.currentColor))
}

func TestBotDefaultsToDrawing(t *testing.T) {
	_, e, _ := newMauFixture(t, numCard(5, models.ColorRed),
		[]*models.Card{numCard(9, models.ColorBlue)},
		[]*models.Card{numCard(1, models.ColorGreen)},
	)
	act, ok := e.BotAction(0)
	require.True(t, ok)
	assert.Equal(t, ActionDrawCard, act.Type)

	// A bot inheriting a suspended wild resolves the color instead.
	e.pendingColor = true
	e.pendingColorSeat = 0
	act, ok = e.BotAction(0)
	require.True(t, ok)
	assert.Equal(t, ActionChooseColor, act.Type)
	assert.True(t, models.ValidColor(act.Color))
}

func TestRecycleResetsWildColors(t *testing.T) {
	r, e, _ := newMauFixture(t, numCard(5, models.ColorRed),
		[]*models.Card{numCard(9, models.ColorBlue)},
		[]*models.Card{numCard(1, models.ColorGreen)},
	)
	w := wildCard(models.KindWild)
	w.Color = models.ColorBlue
	e.discard.PushBottom(w)
	e.total++

	require.NoError(t, r.HandleAction(r.Seats[0].ConnID, Action{Type: ActionDrawCard}))
	// The buried wild was recycled into the draw pile, undeclared again.
	assert.Equal(t, models.ColorWild, w.Color)
	assert.Len(t, r.Seats[0].Hand, 2)
}
