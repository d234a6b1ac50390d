package player

import (
	"context"
	"strings"
	"time"

	"blackjack-service/internal/model"
	appErr "blackjack-service/pkg/errors"
	"blackjack-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RoundResult is one player's result against the dealer in a finished round.
type RoundResult string

const (
	ResultWin  RoundResult = "win"
	ResultLose RoundResult = "lose"
	ResultPush RoundResult = "push"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Register(ctx context.Context, name string) (*model.Player, error) {
	player := model.Player{Name: strings.TrimSpace(name)}
	if err := s.db.WithContext(ctx).Create(&player).Error; err != nil {
		return nil, err
	}
	return &player, nil
}

// FindPlayers resolves ranking rows for the given ids. Callers compare the
// result length against the request to detect unknown players.
func (s *Service) FindPlayers(ctx context.Context, ids []int64) ([]model.Player, error) {
	players := make([]model.Player, 0, len(ids))
	if len(ids) == 0 {
		return players, nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&players).Error; err != nil {
		return nil, err
	}
	return players, nil
}

func (s *Service) GetPlayer(ctx context.Context, playerID int64) (*model.Player, error) {
	var player model.Player
	if err := s.db.WithContext(ctx).First(&player, playerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, appErr.ErrPlayerNotFound
		}
		return nil, err
	}
	return &player, nil
}

// Rankings lists all players ordered by score descending.
func (s *Service) Rankings(ctx context.Context) ([]model.Player, error) {
	players := make([]model.Player, 0)
	if err := s.db.WithContext(ctx).
		Order("score DESC, id ASC").
		Find(&players).Error; err != nil {
		return nil, err
	}
	return players, nil
}

func (s *Service) Rename(ctx context.Context, playerID int64, newName string) (*model.Player, error) {
	newName = strings.TrimSpace(newName)

	res := s.db.WithContext(ctx).Model(&model.Player{}).
		Where("id = ?", playerID).
		Updates(map[string]interface{}{
			"name":       newName,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, appErr.ErrPlayerNotFound
	}

	return s.GetPlayer(ctx, playerID)
}

// RecordOutcome bumps the ranking counters for one finished round. A push
// leaves the row untouched.
func (s *Service) RecordOutcome(ctx context.Context, playerID int64, result RoundResult) error {
	var updates map[string]interface{}
	switch result {
	case ResultWin:
		updates = map[string]interface{}{
			"score":      gorm.Expr("score + ?", 1),
			"total_wins": gorm.Expr("total_wins + ?", 1),
		}
	case ResultLose:
		updates = map[string]interface{}{
			"total_losses": gorm.Expr("total_losses + ?", 1),
		}
	case ResultPush:
		return nil
	default:
		return nil
	}

	res := s.db.WithContext(ctx).Model(&model.Player{}).
		Where("id = ?", playerID).
		UpdateColumns(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		logger.Log.Warn("outcome for unknown player dropped",
			zap.Int64("playerID", playerID),
			zap.String("result", string(result)),
		)
	}
	return nil
}
