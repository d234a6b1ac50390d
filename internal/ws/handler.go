package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"blackjack-service/internal/service/game"
	appErr "blackjack-service/pkg/errors"
	"blackjack-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler streams read-only game snapshots to spectators. Moves go through
// the HTTP API; the socket never mutates a game.
type Handler struct {
	gameSvc *game.Service
}

func NewHandler(gameSvc *game.Service) *Handler {
	return &Handler{gameSvc: gameSvc}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

func (h *Handler) HandleGameWS(c *gin.Context) {
	gameID := c.Param("gameId")
	if gameID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}

	watcherID, outbound, err := h.gameSvc.Watch(c.Request.Context(), gameID)
	if err != nil {
		if errors.Is(err, appErr.ErrGameNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load game"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.gameSvc.Unwatch(gameID, watcherID)
		logger.Log.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	logger.Log.Info("New WebSocket spectator",
		zap.String("gameID", gameID),
		zap.Int64("watcherID", watcherID),
	)

	client := newClient(conn, gameID, watcherID, h.gameSvc, outbound)
	client.run()
}

type client struct {
	conn      *websocket.Conn
	gameID    string
	watcherID int64
	gameSvc   *game.Service
	outbound  <-chan game.OutgoingMessage
	done      chan struct{}
	pingEvery time.Duration
}

func newClient(conn *websocket.Conn, gameID string, watcherID int64, gameSvc *game.Service, outbound <-chan game.OutgoingMessage) *client {
	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	return &client{
		conn:      conn,
		gameID:    gameID,
		watcherID: watcherID,
		gameSvc:   gameSvc,
		outbound:  outbound,
		done:      make(chan struct{}),
		pingEvery: 25 * time.Second,
	}
}

func (c *client) run() {
	go c.writePump()
	c.readPump()
}

func (c *client) readPump() {
	defer func() {
		close(c.done)
		c.gameSvc.Unwatch(c.gameID, c.watcherID)
		c.conn.Close()
	}()

	for {
		mt, message, err := c.conn.ReadMessage()
		if err != nil {
			logger.Log.Info("WS read error", zap.Error(err), zap.String("gameID", c.gameID))
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		var incoming struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(message, &incoming); err != nil {
			c.safeWrite(game.OutgoingMessage{
				Type: "error",
				Data: gin.H{"message": "invalid payload"},
			})
			continue
		}

		switch incoming.Type {
		case "ping":
			c.safeWrite(game.OutgoingMessage{
				Type: "pong",
				Data: gin.H{"message": "pong"},
			})
		case "":
			// ignore
		default:
			c.safeWrite(game.OutgoingMessage{
				Type: "error",
				Data: gin.H{"message": "spectator stream is read-only"},
			})
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.pingEvery)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.outbound:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				logger.Log.Info("WS write error", zap.Error(err), zap.String("gameID", c.gameID))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *client) safeWrite(msg game.OutgoingMessage) {
	if err := c.conn.WriteJSON(msg); err != nil {
		logger.Log.Info("WS write error", zap.Error(err), zap.String("gameID", c.gameID))
	}
}
