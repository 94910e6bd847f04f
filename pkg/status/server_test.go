package status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/libp2p/go-libp2p"
	"go.uber.org/zap"

	"github.com/ShreejithBabuG/kameo-ping/pkg/ping"
)

func TestStatusEndpoint(t *testing.T) {
	h, err := libp2p.New(libp2p.ListenAddrStrings("/ip4/127.0.0.1/tcp/0"))
	if err != nil {
		t.Fatalf("libp2p.New: %v", err)
	}
	defer h.Close()

	pingActor := ping.NewActor(zap.NewNop())

	// Process a couple of pings so the counter is non-zero
	for i := 1; i <= 2; i++ {
		p := &ping.Ping{Message: "hi", Sequence: uint64(i)}
		payload, _ := p.Marshal()
		if _, err := pingActor.Handle(context.Background(), payload); err != nil {
			t.Fatalf("Handle: %v", err)
		}
	}

	srv := httptest.NewServer(NewServer(h, pingActor, "ping-actor", zap.NewNop()).Router())
	defer srv.Close()

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/v1/health")
		if err != nil {
			t.Fatalf("GET /v1/health: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d; want 200", resp.StatusCode)
		}
	})

	t.Run("status", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/v1/status")
		if err != nil {
			t.Fatalf("GET /v1/status: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d; want 200", resp.StatusCode)
		}

		var body StatusResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.PeerID != h.ID().String() {
			t.Fatalf("peer_id = %q; want %q", body.PeerID, h.ID())
		}
		if body.Actor != "ping-actor" {
			t.Fatalf("actor = %q; want ping-actor", body.Actor)
		}
		if body.TotalPings != 2 {
			t.Fatalf("total_pings = %d; want 2", body.TotalPings)
		}
	})
}
