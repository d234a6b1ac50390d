package game

import (
	"context"
	mrand "math/rand"
	"sync"
	"time"

	"blackjack-service/internal/config"
	"blackjack-service/internal/model"
	"blackjack-service/internal/service/player"
	appErr "blackjack-service/pkg/errors"
	"blackjack-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Config struct {
	PackCount      int
	DetailCacheTTL time.Duration
}

func defaultConfig() Config {
	return Config{
		PackCount:      1,
		DetailCacheTTL: 5 * time.Minute,
	}
}

func configFromGlobal() Config {
	cfg := defaultConfig()
	gc := config.GlobalConfig
	if gc == nil {
		return cfg
	}
	if gc.Blackjack.PackCount > 0 {
		cfg.PackCount = gc.Blackjack.PackCount
	}
	if gc.Blackjack.DetailCacheTTLSeconds > 0 {
		cfg.DetailCacheTTL = time.Duration(gc.Blackjack.DetailCacheTTLSeconds) * time.Second
	}
	return cfg
}

// Service is the session coordinator: it serializes mutating operations per
// game id and runs the load -> validate/mutate -> save cycle around the turn
// state machine and the round engine.
type Service struct {
	db      *gorm.DB
	rdb     *redis.Client
	players *player.Service
	cfg     Config

	rngMu sync.Mutex
	rng   *mrand.Rand

	locks sync.Map // game id -> *sync.Mutex
	watch *watchHub
}

func NewService(db *gorm.DB, rdb *redis.Client, players *player.Service) *Service {
	return &Service{
		db:      db,
		rdb:     rdb,
		players: players,
		cfg:     configFromGlobal(),
		rng:     mrand.New(mrand.NewSource(time.Now().UnixNano())),
		watch:   newWatchHub(),
	}
}

// WithRand replaces the shuffle source. Tests supply a seeded source to get
// deterministic decks.
func (s *Service) WithRand(r *mrand.Rand) *Service {
	s.rng = r
	return s
}

// lockGame gives the caller exclusive access to one game id. Distinct ids
// proceed in parallel; overlapping calls on the same id queue on the mutex,
// which rules out interleaved load-modify-save cycles.
func (s *Service) lockGame(gameID string) func() {
	v, _ := s.locks.LoadOrStore(gameID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Service) newShoe() Deck {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return NewShuffledDeck(s.cfg.PackCount, s.rng)
}

func newGame(id string, playerIDs []int64, deck Deck) *Game {
	states := make([]*PlayerState, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		states = append(states, &PlayerState{
			PlayerID: playerID,
			Hand:     []Card{},
			Action:   ActionPlaying,
		})
	}
	return &Game{
		ID:         id,
		State:      StateOngoing,
		Players:    states,
		Deck:       deck,
		DealerHand: []Card{},
	}
}

// CreateSinglePlayerGame registers a fresh ranking entry for playerName and
// starts a one-seat game with the initial deal already run.
func (s *Service) CreateSinglePlayerGame(ctx context.Context, playerName string) (*Game, error) {
	p, err := s.players.Register(ctx, playerName)
	if err != nil {
		return nil, err
	}
	return s.startGame(ctx, []int64{p.ID})
}

// StartNewGame seats the given registered players in request order. Every id
// must resolve to a ranking row, otherwise the whole creation fails.
func (s *Service) StartNewGame(ctx context.Context, playerIDs []int64) (*Game, error) {
	if len(playerIDs) == 0 {
		return nil, appErr.ErrPlayerNotFound
	}
	found, err := s.players.FindPlayers(ctx, playerIDs)
	if err != nil {
		return nil, err
	}
	known := make(map[int64]model.Player, len(found))
	for _, p := range found {
		known[p.ID] = p
	}
	for _, playerID := range playerIDs {
		if _, ok := known[playerID]; !ok {
			return nil, appErr.ErrPlayerNotFound
		}
	}
	return s.startGame(ctx, playerIDs)
}

func (s *Service) startGame(ctx context.Context, playerIDs []int64) (*Game, error) {
	g := newGame(uuid.NewString(), playerIDs, s.newShoe())
	if err := initialDeal(g); err != nil {
		return nil, err
	}

	rec, err := encodeGame(g, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}
	s.cacheDetail(ctx, g)

	logger.Log.Info("game started",
		zap.String("gameID", g.ID),
		zap.Int("players", len(g.Players)),
		zap.Int("deckSize", len(g.Deck)),
	)
	return g, nil
}

// ApplyMove runs one player action under the per-game lock. When the action
// leaves every seat terminal, the round engine finishes the game and the
// outcomes are forwarded to the ranking collaborator.
func (s *Service) ApplyMove(ctx context.Context, gameID string, playerID int64, move MoveType, bet int64) (*Game, error) {
	unlock := s.lockGame(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if err := applyMove(g, playerID, move, bet); err != nil {
		return nil, err
	}

	finished := false
	if g.State == StateOngoing && roundComplete(g) {
		finishRound(g)
		finished = true
	}

	if err := s.saveGame(ctx, g); err != nil {
		return nil, err
	}

	if finished {
		s.recordOutcomes(ctx, g)
		logger.Log.Info("round finished",
			zap.String("gameID", gameID),
			zap.Int("dealerScore", g.DealerScore),
			zap.Int("results", len(g.Results)),
		)
	}

	s.watch.Broadcast(gameID, snapshotOf(g))
	return g, nil
}

// recordOutcomes reports win/loss tallies to the ranking collaborator. The
// round result is already persisted; a ranking failure is logged, not
// surfaced to the caller.
func (s *Service) recordOutcomes(ctx context.Context, g *Game) {
	for _, res := range g.Results {
		var result player.RoundResult
		switch res.Outcome {
		case OutcomeWin:
			result = player.ResultWin
		case OutcomeLose:
			result = player.ResultLose
		default:
			result = player.ResultPush
		}
		if err := s.players.RecordOutcome(ctx, res.PlayerID, result); err != nil {
			logger.Log.Warn("ranking update failed",
				zap.String("gameID", g.ID),
				zap.Int64("playerID", res.PlayerID),
				zap.Error(err),
			)
		}
	}
}

// GetGameDetails returns a consistent snapshot of the aggregate without
// taking the per-game lock. Reads never mutate the game.
func (s *Service) GetGameDetails(ctx context.Context, gameID string) (*Game, error) {
	if g := s.cachedDetail(ctx, gameID); g != nil {
		return g, nil
	}

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	s.cacheDetail(ctx, g)
	return g, nil
}

func (s *Service) DeleteGame(ctx context.Context, gameID string) error {
	unlock := s.lockGame(gameID)
	defer unlock()

	res := s.db.WithContext(ctx).Delete(&model.Game{}, "id = ?", gameID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return appErr.ErrGameNotFound
	}

	s.dropDetail(ctx, gameID)
	s.watch.Drop(gameID)
	s.locks.Delete(gameID)

	logger.Log.Info("game deleted", zap.String("gameID", gameID))
	return nil
}

// Watch subscribes a spectator stream for gameID and pushes the current
// snapshot as the first message.
func (s *Service) Watch(ctx context.Context, gameID string) (int64, <-chan OutgoingMessage, error) {
	g, err := s.GetGameDetails(ctx, gameID)
	if err != nil {
		return 0, nil, err
	}
	watcherID, ch := s.watch.Subscribe(gameID, snapshotOf(g))
	return watcherID, ch, nil
}

func (s *Service) Unwatch(gameID string, watcherID int64) {
	s.watch.Unsubscribe(gameID, watcherID)
}
