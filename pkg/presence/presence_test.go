package presence

import (
	"context"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"go.uber.org/zap"
)

const testTopic = "kameo-ping-test/presence/v1"

func newPubSubHost(t *testing.T, ctx context.Context) (host.Host, *pubsub.PubSub) {
	t.Helper()
	h, err := libp2p.New(libp2p.ListenAddrStrings("/ip4/127.0.0.1/tcp/0"))
	if err != nil {
		t.Fatalf("libp2p.New: %v", err)
	}
	t.Cleanup(func() { h.Close() })

	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		t.Fatalf("NewGossipSub: %v", err)
	}
	return h, ps
}

func connect(t *testing.T, ctx context.Context, a, b host.Host) {
	t.Helper()
	a.Peerstore().AddAddrs(b.ID(), b.Addrs(), time.Hour)
	if err := a.Connect(ctx, peer.AddrInfo{ID: b.ID(), Addrs: b.Addrs()}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
}

func TestAnnouncerAndWatcher(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	serverHost, serverPS := newPubSubHost(t, ctx)
	clientHost, clientPS := newPubSubHost(t, ctx)
	connect(t, ctx, clientHost, serverHost)

	watcher, err := NewWatcher(clientHost, clientPS, testTopic, "ping-actor", zap.NewNop())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer watcher.Stop()

	announcer, err := NewAnnouncer(serverHost, serverPS, testTopic, zap.NewNop())
	if err != nil {
		t.Fatalf("NewAnnouncer: %v", err)
	}
	announcer.Start("ping-actor", 200*time.Millisecond)
	defer announcer.Stop()

	select {
	case info := <-watcher.Found():
		if info.ID != serverHost.ID() {
			t.Fatalf("announced peer = %s; want %s", info.ID, serverHost.ID())
		}
		if len(clientHost.Peerstore().Addrs(info.ID)) == 0 {
			t.Fatalf("announced addresses were not recorded in the peerstore")
		}
	case <-ctx.Done():
		t.Fatalf("no announcement received before timeout")
	}
}

// Announcements for other actors must not satisfy the watcher
func TestWatcher_IgnoresOtherActors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	serverHost, serverPS := newPubSubHost(t, ctx)
	clientHost, clientPS := newPubSubHost(t, ctx)
	connect(t, ctx, clientHost, serverHost)

	watcher, err := NewWatcher(clientHost, clientPS, testTopic, "wanted-actor", zap.NewNop())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer watcher.Stop()

	announcer, err := NewAnnouncer(serverHost, serverPS, testTopic, zap.NewNop())
	if err != nil {
		t.Fatalf("NewAnnouncer: %v", err)
	}
	announcer.Start("other-actor", 100*time.Millisecond)
	defer announcer.Stop()

	select {
	case info := <-watcher.Found():
		t.Fatalf("watcher matched announcement for a different actor: %s", info.ID)
	case <-time.After(3 * time.Second):
		// expected: nothing delivered
	}
}
