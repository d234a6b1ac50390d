package game

import (
	"sync"

	"blackjack-service/pkg/logger"

	"go.uber.org/zap"
)

type OutgoingMessage struct {
	Type string      `json:"type"`
	Seq  int64       `json:"seq"`
	Data interface{} `json:"data"`
}

// Snapshot is the spectator view of a game. The shoe contents stay hidden;
// only its remaining size is visible.
type Snapshot struct {
	GameID      string          `json:"gameId"`
	State       GameState       `json:"state"`
	Players     []PlayerState   `json:"players"`
	DealerHand  []Card          `json:"dealerHand"`
	DealerScore int             `json:"dealerScore"`
	DeckSize    int             `json:"deckSize"`
	Results     []PlayerOutcome `json:"results,omitempty"`
}

func snapshotOf(g *Game) Snapshot {
	players := make([]PlayerState, 0, len(g.Players))
	for _, ps := range g.Players {
		cp := *ps
		cp.Hand = append([]Card(nil), ps.Hand...)
		players = append(players, cp)
	}
	return Snapshot{
		GameID:      g.ID,
		State:       g.State,
		Players:     players,
		DealerHand:  append([]Card(nil), g.DealerHand...),
		DealerScore: g.DealerScore,
		DeckSize:    len(g.Deck),
		Results:     append([]PlayerOutcome(nil), g.Results...),
	}
}

// watchHub fans game snapshots out to websocket spectators. Watchers are
// read-only; a slow watcher drops messages rather than blocking a mutation.
type watchHub struct {
	mu    sync.Mutex
	games map[string]*gameWatch
}

type gameWatch struct {
	seq     int64
	nextID  int64
	streams map[int64]chan OutgoingMessage
}

func newWatchHub() *watchHub {
	return &watchHub{games: make(map[string]*gameWatch)}
}

// Subscribe registers a watcher and pushes the given snapshot as its first
// message.
func (h *watchHub) Subscribe(gameID string, snap Snapshot) (int64, <-chan OutgoingMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	gw, ok := h.games[gameID]
	if !ok {
		gw = &gameWatch{streams: make(map[int64]chan OutgoingMessage)}
		h.games[gameID] = gw
	}
	gw.nextID++
	ch := make(chan OutgoingMessage, 8)
	gw.streams[gw.nextID] = ch
	gw.seq++
	ch <- OutgoingMessage{Type: "state", Seq: gw.seq, Data: snap}
	return gw.nextID, ch
}

func (h *watchHub) Unsubscribe(gameID string, watcherID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	gw, ok := h.games[gameID]
	if !ok {
		return
	}
	if ch, ok := gw.streams[watcherID]; ok {
		delete(gw.streams, watcherID)
		close(ch)
	}
	if len(gw.streams) == 0 {
		delete(h.games, gameID)
	}
}

func (h *watchHub) Broadcast(gameID string, snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	gw, ok := h.games[gameID]
	if !ok {
		return
	}
	gw.seq++
	msg := OutgoingMessage{Type: "state", Seq: gw.seq, Data: snap}
	for watcherID, ch := range gw.streams {
		select {
		case ch <- msg:
		default:
			logger.Log.Warn("ws watcher channel full",
				zap.String("gameID", gameID),
				zap.Int64("watcherID", watcherID),
			)
		}
	}
}

// Drop closes every stream of a deleted game.
func (h *watchHub) Drop(gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	gw, ok := h.games[gameID]
	if !ok {
		return
	}
	for _, ch := range gw.streams {
		close(ch)
	}
	delete(h.games, gameID)
}
