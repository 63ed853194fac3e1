package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWSStreamsEvents(t *testing.T) {
	env := newTestEnv(t)

	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if resp != nil {
		resp.Body.Close()
	}

	// The subscription is registered inside the handler goroutine.
	deadline := time.Now().Add(2 * time.Second)
	for env.bus.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("ws handler never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	sale := env.createSale(t)
	if code := env.post(t, "/api/buy", BuyRequest{
		TokenID: sale.TokenID,
		Buyer:   apiBuyer,
		Amount:  "100",
		Payment: "0.01",
	}, nil); code != http.StatusOK {
		t.Fatalf("buy status = %d", code)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var created WSEvent
	if err := conn.ReadJSON(&created); err != nil {
		t.Fatalf("read created frame: %v", err)
	}
	if created.Type != "created" {
		t.Fatalf("first frame type = %s, want created", created.Type)
	}

	var purchased struct {
		Type string      `json:"type"`
		Data WSPurchased `json:"data"`
	}
	if err := conn.ReadJSON(&purchased); err != nil {
		t.Fatalf("read purchased frame: %v", err)
	}
	if purchased.Type != "purchased" {
		t.Fatalf("second frame type = %s, want purchased", purchased.Type)
	}
	if purchased.Data.TokenID != sale.TokenID || purchased.Data.Amount != "100" || purchased.Data.Cost != "0.01" {
		t.Fatalf("purchased frame = %+v", purchased.Data)
	}
}
