package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"blackjack-service/internal/model"
	appErr "blackjack-service/pkg/errors"
	"blackjack-service/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type dealerDoc struct {
	Hand  []Card `json:"hand"`
	Score int    `json:"score"`
}

func encodeGame(g *Game, now time.Time) (model.Game, error) {
	playersRaw, err := json.Marshal(g.Players)
	if err != nil {
		return model.Game{}, err
	}
	deckRaw, err := json.Marshal(g.Deck)
	if err != nil {
		return model.Game{}, err
	}
	dealerRaw, err := json.Marshal(dealerDoc{Hand: g.DealerHand, Score: g.DealerScore})
	if err != nil {
		return model.Game{}, err
	}
	resultsRaw, err := json.Marshal(g.Results)
	if err != nil {
		return model.Game{}, err
	}

	return model.Game{
		ID:          g.ID,
		State:       string(g.State),
		PlayersJSON: datatypes.JSON(playersRaw),
		DeckJSON:    datatypes.JSON(deckRaw),
		DealerJSON:  datatypes.JSON(dealerRaw),
		ResultsJSON: datatypes.JSON(resultsRaw),
		UpdatedAt:   now,
	}, nil
}

func decodeGame(rec model.Game) (*Game, error) {
	g := &Game{
		ID:         rec.ID,
		State:      GameState(rec.State),
		Players:    []*PlayerState{},
		Deck:       Deck{},
		DealerHand: []Card{},
	}

	if len(rec.PlayersJSON) > 0 {
		if err := json.Unmarshal(rec.PlayersJSON, &g.Players); err != nil {
			return nil, fmt.Errorf("decode players for game %s: %w", rec.ID, err)
		}
	}
	if len(rec.DeckJSON) > 0 {
		if err := json.Unmarshal(rec.DeckJSON, &g.Deck); err != nil {
			return nil, fmt.Errorf("decode deck for game %s: %w", rec.ID, err)
		}
	}
	if len(rec.DealerJSON) > 0 {
		var dealer dealerDoc
		if err := json.Unmarshal(rec.DealerJSON, &dealer); err != nil {
			return nil, fmt.Errorf("decode dealer for game %s: %w", rec.ID, err)
		}
		if dealer.Hand != nil {
			g.DealerHand = dealer.Hand
		}
		g.DealerScore = dealer.Score
	}
	if len(rec.ResultsJSON) > 0 {
		if err := json.Unmarshal(rec.ResultsJSON, &g.Results); err != nil {
			return nil, fmt.Errorf("decode results for game %s: %w", rec.ID, err)
		}
	}
	return g, nil
}

func (s *Service) loadGame(ctx context.Context, gameID string) (*Game, error) {
	var rec model.Game
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErr.ErrGameNotFound
		}
		return nil, err
	}
	return decodeGame(rec)
}

func (s *Service) saveGame(ctx context.Context, g *Game) error {
	rec, err := encodeGame(g, time.Now())
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return err
	}
	s.cacheDetail(ctx, g)
	return nil
}

func buildDetailKey(gameID string) string {
	return fmt.Sprintf("game:detail:%s", gameID)
}

// cacheDetail refreshes the read-side snapshot. Cache failures are logged and
// ignored; the database row is the source of truth.
func (s *Service) cacheDetail(ctx context.Context, g *Game) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(g)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, buildDetailKey(g.ID), data, s.cfg.DetailCacheTTL).Err(); err != nil {
		logger.Log.Warn("game detail cache write failed",
			zap.String("gameID", g.ID),
			zap.Error(err),
		)
	}
}

func (s *Service) cachedDetail(ctx context.Context, gameID string) *Game {
	if s.rdb == nil {
		return nil
	}
	data, err := s.rdb.Get(ctx, buildDetailKey(gameID)).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("game detail cache read failed",
				zap.String("gameID", gameID),
				zap.Error(err),
			)
		}
		return nil
	}
	var g Game
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		return nil
	}
	return &g
}

func (s *Service) dropDetail(ctx context.Context, gameID string) {
	if s.rdb == nil {
		return
	}
	s.rdb.Del(ctx, buildDetailKey(gameID))
}
