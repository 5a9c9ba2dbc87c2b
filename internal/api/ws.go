package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local client, any origin
	},
}

// HandleWS streams price ticks to a UI client over WebSocket. The
// client may send {"pair": "BTC/USDT"} at any time to narrow the
// stream to one pair; by default every tick is forwarded and the
// client filters on its side.
func (h *Handler) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ticks, unsubscribe := h.Bus.Subscribe(32)
	defer unsubscribe()

	var mu sync.Mutex
	pair := ""

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var req struct {
				Pair string `json:"pair"`
			}
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			mu.Lock()
			pair = req.Pair
			mu.Unlock()
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case tick, ok := <-ticks:
			if !ok {
				return
			}
			mu.Lock()
			filter := pair
			mu.Unlock()
			if filter != "" && tick.Pair != filter {
				continue
			}

			data, err := json.Marshal(tick)
			if err != nil {
				slog.Error("tick marshal failed", "err", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}
