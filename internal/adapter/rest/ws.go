package rest

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/simaogato/walletfx-backend/internal/domain"
	"github.com/simaogato/walletfx-backend/internal/usecase/conversion"
)

const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type quoteMessage struct {
	Seq   uint64 `json:"seq"`
	Error string `json:"error,omitempty"`
	quoteResponse
}

// GET /ws/quotes
// Every text frame {"from","to","amount"} restarts the quiet window; only the
// quote for the latest input is pushed back.
func (h *handler) streamQuotes(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.deps.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	write := func(msg quoteMessage) {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			h.deps.Logger.Debug("failed to push quote", zap.Error(err))
		}
	}

	debouncer := conversion.NewQuoteDebouncer(h.deps.Converter, func(result conversion.DebouncedQuote) {
		msg := quoteMessage{
			Seq:           result.Seq,
			quoteResponse: newQuoteResponse(result.From.String(), result.To.String(), result.Amount, result.Quote),
		}
		if result.Err != nil {
			msg.Error = result.Err.Error()
		}
		write(msg)
	}, conversion.WithQuietWindow(h.deps.QuietWindow))
	defer debouncer.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.deps.Logger.Debug("quote stream closed", zap.Error(err))
			}
			return
		}

		var req convertRequest
		if err := json.Unmarshal(data, &req); err != nil {
			write(quoteMessage{Error: "invalid request body"})
			continue
		}
		if req.From == "" || req.To == "" {
			write(quoteMessage{Error: "from and to currencies are required"})
			continue
		}

		if err := debouncer.Request(domain.CurrencyCode(req.From), domain.CurrencyCode(req.To), req.Amount); err != nil {
			return
		}
	}
}
