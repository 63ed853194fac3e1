package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ArjunMal1311/meme-coin/internal/domain"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
	wsEventBuffer  = 64
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The feed is broadcast-only launchpad state; no credentialed
	// actions ride this connection.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSEvent is one frame on the /ws feed.
type WSEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// WSCreated is the payload of a "created" frame.
type WSCreated struct {
	TokenID   string `json:"token_id"`
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	Creator   string `json:"creator"`
	Timestamp int64  `json:"timestamp"`
}

// WSPurchased is the payload of a "purchased" frame.
type WSPurchased struct {
	TokenID   string `json:"token_id"`
	Buyer     string `json:"buyer"`
	Amount    string `json:"amount"`
	Cost      string `json:"cost"`
	NewSold   string `json:"new_sold"`
	NewRaised string `json:"new_raised"`
	Closed    bool   `json:"closed"`
	Timestamp int64  `json:"timestamp"`
}

// wsFrame converts a bus event to its wire form.
func wsFrame(ev domain.Event) WSEvent {
	switch e := ev.(type) {
	case *domain.CreatedEvent:
		return WSEvent{Type: e.EventType(), Data: WSCreated{
			TokenID:   e.TokenID,
			Name:      e.Name,
			Symbol:    e.Symbol,
			Creator:   e.Creator,
			Timestamp: e.Timestamp,
		}}
	case *domain.PurchasedEvent:
		return WSEvent{Type: e.EventType(), Data: WSPurchased{
			TokenID:   e.TokenID,
			Buyer:     e.Buyer,
			Amount:    domain.FormatAmount(e.Amount),
			Cost:      domain.FormatAmount(e.Cost),
			NewSold:   domain.FormatAmount(e.NewSold),
			NewRaised: domain.FormatAmount(e.NewRaised),
			Closed:    e.Closed,
			Timestamp: e.Timestamp,
		}}
	default:
		return WSEvent{Type: ev.EventType()}
	}
}

// handleWS upgrades the connection and streams launchpad events until
// the client disconnects. Slow clients miss events rather than stall
// the factory.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		s.logger.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	ch, cancel := s.bus.Subscribe(wsEventBuffer)
	defer cancel()

	if s.metrics != nil {
		s.metrics.WSClients.Inc()
		defer s.metrics.WSClients.Dec()
	}

	// Reader goroutine: we never expect client frames, but reading is
	// required to notice the close handshake.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case ev, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(wsFrame(ev)); err != nil {
				return
			}
		}
	}
}
