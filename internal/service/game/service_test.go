package game_test

import (
	"context"
	"errors"
	"fmt"
	mrand "math/rand"
	"reflect"
	"sync"
	"testing"

	"blackjack-service/internal/model"
	"blackjack-service/internal/service/game"
	"blackjack-service/internal/service/player"
	appErr "blackjack-service/pkg/errors"
	"blackjack-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newGameService(t *testing.T) (*gorm.DB, *game.Service, *player.Service) {
	t.Helper()

	logger.Log = zap.NewNop()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Player{}, &model.Game{}); err != nil {
		t.Fatalf("failed to migrate models: %v", err)
	}

	players := player.NewService(db)
	svc := game.NewService(db, nil, players).WithRand(mrand.New(mrand.NewSource(42)))
	return db, svc, players
}

func seedPlayer(t *testing.T, players *player.Service, name string) int64 {
	t.Helper()
	p, err := players.Register(context.Background(), name)
	if err != nil {
		t.Fatalf("failed to register player %s: %v", name, err)
	}
	return p.ID
}

func TestCreateSinglePlayerGame(t *testing.T) {
	ctx := context.Background()
	_, svc, players := newGameService(t)

	g, err := svc.CreateSinglePlayerGame(ctx, "alice")
	if err != nil {
		t.Fatalf("create game failed: %v", err)
	}

	if g.ID == "" || g.State != game.StateOngoing {
		t.Fatalf("unexpected game header: %+v", g)
	}
	if len(g.Players) != 1 {
		t.Fatalf("expected one seat, got %d", len(g.Players))
	}
	seat := g.Players[0]
	if len(seat.Hand) != 2 || seat.Action != game.ActionPlaying {
		t.Fatalf("unexpected seat after deal: %+v", seat)
	}
	if seat.Score != game.HandValue(seat.Hand) {
		t.Fatalf("seat score %d out of sync with hand %v", seat.Score, seat.Hand)
	}
	if len(g.DealerHand) != 2 || g.DealerScore != game.HandValue(g.DealerHand) {
		t.Fatalf("unexpected dealer after deal: %v score %d", g.DealerHand, g.DealerScore)
	}
	if len(g.Deck) != 52-4 {
		t.Fatalf("expected 48 cards left, got %d", len(g.Deck))
	}

	ranked, err := players.Rankings(ctx)
	if err != nil {
		t.Fatalf("rankings failed: %v", err)
	}
	if len(ranked) != 1 || ranked[0].Name != "alice" {
		t.Fatalf("expected registered player in rankings, got %+v", ranked)
	}
}

func TestStartNewGameSeatingOrder(t *testing.T) {
	ctx := context.Background()
	_, svc, players := newGameService(t)

	a := seedPlayer(t, players, "a")
	b := seedPlayer(t, players, "b")
	c := seedPlayer(t, players, "c")

	g, err := svc.StartNewGame(ctx, []int64{c, a, b})
	if err != nil {
		t.Fatalf("start game failed: %v", err)
	}

	if len(g.Players) != 3 {
		t.Fatalf("expected three seats, got %d", len(g.Players))
	}
	order := []int64{g.Players[0].PlayerID, g.Players[1].PlayerID, g.Players[2].PlayerID}
	want := []int64{c, a, b}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("seating order %v, want %v", order, want)
	}
	if len(g.Deck) != 52-8 {
		t.Fatalf("expected 44 cards left after dealing 3 seats and dealer, got %d", len(g.Deck))
	}
}

func TestStartNewGameUnknownPlayer(t *testing.T) {
	ctx := context.Background()
	_, svc, players := newGameService(t)

	known := seedPlayer(t, players, "known")
	_, err := svc.StartNewGame(ctx, []int64{known, 9999})
	if !errors.Is(err, appErr.ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestApplyMoveUnknownGame(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newGameService(t)

	_, err := svc.ApplyMove(ctx, "missing-game", 1, game.MoveHit, 0)
	if !errors.Is(err, appErr.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestApplyMoveStandResolvesRound(t *testing.T) {
	ctx := context.Background()
	_, svc, players := newGameService(t)

	created, err := svc.CreateSinglePlayerGame(ctx, "bob")
	if err != nil {
		t.Fatalf("create game failed: %v", err)
	}
	playerID := created.Players[0].PlayerID

	g, err := svc.ApplyMove(ctx, created.ID, playerID, game.MoveStand, 10)
	if err != nil {
		t.Fatalf("stand failed: %v", err)
	}

	if g.State != game.StateFinished {
		t.Fatalf("expected FINISHED after the only seat stands, got %s", g.State)
	}
	if g.DealerScore < 17 {
		t.Fatalf("dealer stopped below 17 with cards remaining: %d", g.DealerScore)
	}
	if len(g.Results) != 1 {
		t.Fatalf("expected one outcome, got %v", g.Results)
	}

	p, err := players.GetPlayer(ctx, playerID)
	if err != nil {
		t.Fatalf("get player failed: %v", err)
	}
	switch g.Results[0].Outcome {
	case game.OutcomeWin:
		if p.TotalWins != 1 || p.TotalLosses != 0 {
			t.Fatalf("ranking out of sync with win: %+v", p)
		}
	case game.OutcomeLose:
		if p.TotalWins != 0 || p.TotalLosses != 1 {
			t.Fatalf("ranking out of sync with loss: %+v", p)
		}
	case game.OutcomePush:
		if p.TotalWins != 0 || p.TotalLosses != 0 {
			t.Fatalf("ranking out of sync with push: %+v", p)
		}
	}
}

func TestApplyMoveOnFinishedGame(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newGameService(t)

	created, err := svc.CreateSinglePlayerGame(ctx, "carol")
	if err != nil {
		t.Fatalf("create game failed: %v", err)
	}
	playerID := created.Players[0].PlayerID

	if _, err := svc.ApplyMove(ctx, created.ID, playerID, game.MoveSurrender, 0); err != nil {
		t.Fatalf("surrender failed: %v", err)
	}

	_, err = svc.ApplyMove(ctx, created.ID, playerID, game.MoveHit, 0)
	if !errors.Is(err, appErr.ErrGameFinished) {
		t.Fatalf("expected ErrGameFinished, got %v", err)
	}
}

func TestGetGameDetailsIdempotent(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newGameService(t)

	created, err := svc.CreateSinglePlayerGame(ctx, "dave")
	if err != nil {
		t.Fatalf("create game failed: %v", err)
	}

	first, err := svc.GetGameDetails(ctx, created.ID)
	if err != nil {
		t.Fatalf("first read failed: %v", err)
	}
	second, err := svc.GetGameDetails(ctx, created.ID)
	if err != nil {
		t.Fatalf("second read failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated reads differ:\n%+v\n%+v", first, second)
	}
}

func TestDeleteGame(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newGameService(t)

	created, err := svc.CreateSinglePlayerGame(ctx, "erin")
	if err != nil {
		t.Fatalf("create game failed: %v", err)
	}

	if err := svc.DeleteGame(ctx, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.GetGameDetails(ctx, created.ID); !errors.Is(err, appErr.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound after delete, got %v", err)
	}
	if err := svc.DeleteGame(ctx, created.ID); !errors.Is(err, appErr.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound on second delete, got %v", err)
	}
}

// Concurrent hits on one game must stay serialized: whatever interleaving
// wins, the deck and all hands remain a disjoint partition of the original
// 52-card pack.
func TestConcurrentMovesKeepCardsDisjoint(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newGameService(t)

	created, err := svc.CreateSinglePlayerGame(ctx, "frank")
	if err != nil {
		t.Fatalf("create game failed: %v", err)
	}
	playerID := created.Players[0].PlayerID

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Later hits legitimately fail once the seat busts or the
			// round resolves; only unexpected kinds are a problem.
			_, err := svc.ApplyMove(ctx, created.ID, playerID, game.MoveHit, 0)
			if err != nil &&
				!errors.Is(err, appErr.ErrStateNotAllowed) &&
				!errors.Is(err, appErr.ErrGameFinished) {
				t.Errorf("unexpected move error: %v", err)
			}
		}()
	}
	wg.Wait()

	g, err := svc.GetGameDetails(ctx, created.ID)
	if err != nil {
		t.Fatalf("read after concurrent moves failed: %v", err)
	}

	seen := make(map[game.Card]int)
	total := 0
	for _, card := range g.Deck {
		seen[card]++
		total++
	}
	for _, seat := range g.Players {
		for _, card := range seat.Hand {
			seen[card]++
			total++
		}
	}
	for _, card := range g.DealerHand {
		seen[card]++
		total++
	}

	if total != 52 {
		t.Fatalf("expected 52 cards across deck and hands, got %d", total)
	}
	for card, count := range seen {
		if count != 1 {
			t.Fatalf("card %s appears %d times", card, count)
		}
	}
}
