package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"blackjack-service/internal/service"
	gamesvc "blackjack-service/internal/service/game"
	"blackjack-service/internal/ws"
	appErr "blackjack-service/pkg/errors"
	"blackjack-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	services *service.Container
}

func RegisterRoutes(r *gin.Engine, services *service.Container) {
	handler := &Handler{services: services}
	wsHandler := ws.NewHandler(services.Game)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong"})
	})

	v1 := r.Group("/blackjack/v1")
	{
		gameGroup := v1.Group("/game")
		{
			gameGroup.POST("/new", handler.NewGame)
			gameGroup.POST("/start", handler.StartGame)
			gameGroup.GET("/:id", handler.GetGame)
			gameGroup.POST("/:id/play", handler.Play)
			gameGroup.DELETE("/:id", handler.DeleteGame)
		}

		v1.GET("/ranking", handler.Rankings)
		v1.PUT("/player/:playerId", handler.RenamePlayer)
	}

	r.GET("/ws/game/:gameId", wsHandler.HandleGameWS)
}

type newGameBody struct {
	PlayerName string `json:"playerName" binding:"required"`
}

type startGameBody struct {
	PlayerIDs []int64 `json:"playerIds" binding:"required,min=1"`
}

type playBody struct {
	PlayerID  int64  `json:"playerId" binding:"required"`
	MoveType  string `json:"moveType" binding:"required"`
	AmountBet int64  `json:"amountBet" binding:"gte=0"`
}

type renamePlayerBody struct {
	NewName string `json:"newName" binding:"required"`
}

// statusForError maps engine failures to distinguishable HTTP statuses so a
// caller never has to string-match messages.
func statusForError(err error) int {
	switch {
	case errors.Is(err, appErr.ErrGameNotFound), errors.Is(err, appErr.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, appErr.ErrGameFinished),
		errors.Is(err, appErr.ErrStateNotAllowed),
		errors.Is(err, appErr.ErrDeckExhausted):
		return http.StatusConflict
	case errors.Is(err, appErr.ErrInvalidMoveType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) NewGame(c *gin.Context) {
	var body newGameBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	g, err := h.services.Game.CreateSinglePlayerGame(c.Request.Context(), body.PlayerName)
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.JSON(c, http.StatusCreated, g, "game created")
}

func (h *Handler) StartGame(c *gin.Context) {
	var body startGameBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	g, err := h.services.Game.StartNewGame(c.Request.Context(), body.PlayerIDs)
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.JSON(c, http.StatusCreated, g, "game created")
}

func (h *Handler) GetGame(c *gin.Context) {
	g, err := h.services.Game.GetGameDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.Success(c, g)
}

func (h *Handler) Play(c *gin.Context) {
	var body playBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	move, err := gamesvc.ParseMoveType(body.MoveType)
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}

	g, err := h.services.Game.ApplyMove(c.Request.Context(), c.Param("id"), body.PlayerID, move, body.AmountBet)
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.Success(c, g)
}

func (h *Handler) DeleteGame(c *gin.Context) {
	if err := h.services.Game.DeleteGame(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.SuccessWithMsg(c, gin.H{}, "game deleted")
}

func (h *Handler) Rankings(c *gin.Context) {
	players, err := h.services.Player.Rankings(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, players)
}

func (h *Handler) RenamePlayer(c *gin.Context) {
	playerID, err := parseIDParam(c, "playerId")
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	var body renamePlayerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.services.Player.Rename(c.Request.Context(), playerID, body.NewName)
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.Success(c, p)
}

func parseIDParam(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}
