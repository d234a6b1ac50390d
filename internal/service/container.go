package service

import (
	"blackjack-service/internal/service/game"
	"blackjack-service/internal/service/player"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Game   *game.Service
	Player *player.Service
}

func NewContainer(db *gorm.DB, rdb *redis.Client) *Container {
	players := player.NewService(db)
	return &Container{
		Player: players,
		Game:   game.NewService(db, rdb, players),
	}
}
