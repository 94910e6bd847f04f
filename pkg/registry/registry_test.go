package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"go.uber.org/zap"
)

func TestNamespace(t *testing.T) {
	if got := Namespace("ping-actor"); got != "kameo-ping/actor/ping-actor" {
		t.Fatalf("Namespace() = %q", got)
	}
}

func newDHTHost(t *testing.T, ctx context.Context) (host.Host, *dht.IpfsDHT) {
	t.Helper()
	h, err := libp2p.New(libp2p.ListenAddrStrings("/ip4/127.0.0.1/tcp/0"))
	if err != nil {
		t.Fatalf("libp2p.New: %v", err)
	}
	t.Cleanup(func() { h.Close() })

	kdht, err := dht.New(ctx, h, dht.Mode(dht.ModeServer))
	if err != nil {
		t.Fatalf("dht.New: %v", err)
	}
	t.Cleanup(func() { kdht.Close() })

	return h, kdht
}

func connectDHTs(t *testing.T, ctx context.Context, ha, hb host.Host, da, db *dht.IpfsDHT) {
	t.Helper()
	ha.Peerstore().AddAddrs(hb.ID(), hb.Addrs(), time.Hour)
	if err := ha.Connect(ctx, peer.AddrInfo{ID: hb.ID(), Addrs: hb.Addrs()}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if _, err := da.RoutingTable().TryAddPeer(hb.ID(), true, true); err != nil {
		t.Fatalf("TryAddPeer (a<-b): %v", err)
	}
	if _, err := db.RoutingTable().TryAddPeer(ha.ID(), true, true); err != nil {
		t.Fatalf("TryAddPeer (b<-a): %v", err)
	}
}

func TestAdvertiseAndResolve(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	serverHost, serverDHT := newDHTHost(t, ctx)
	clientHost, clientDHT := newDHTHost(t, ctx)
	connectDHTs(t, ctx, clientHost, serverHost, clientDHT, serverDHT)

	serverReg := New(serverHost, serverDHT, zap.NewNop())
	clientReg := New(clientHost, clientDHT, zap.NewNop())

	serverReg.Advertise(ctx, "ping-actor")

	info, err := clientReg.ResolveWithRetry(ctx, "ping-actor", RetryConfig{
		Attempts: 30,
		Interval: 500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("ResolveWithRetry: %v", err)
	}
	if info.ID != serverHost.ID() {
		t.Fatalf("resolved peer = %s; want %s", info.ID, serverHost.ID())
	}
}

func TestResolveWithRetry_ExhaustsAttempts(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	serverHost, serverDHT := newDHTHost(t, ctx)
	clientHost, clientDHT := newDHTHost(t, ctx)
	connectDHTs(t, ctx, clientHost, serverHost, clientDHT, serverDHT)

	reg := New(clientHost, clientDHT, zap.NewNop())

	_, err := reg.ResolveWithRetry(ctx, "never-registered", RetryConfig{
		Attempts: 3,
		Interval: 100 * time.Millisecond,
	})
	if err == nil {
		t.Fatalf("expected resolution to fail for an unregistered name")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v; want wrapped ErrNotFound", err)
	}
}

func TestResolveWithRetry_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	serverHost, serverDHT := newDHTHost(t, ctx)
	clientHost, clientDHT := newDHTHost(t, ctx)
	connectDHTs(t, ctx, clientHost, serverHost, clientDHT, serverDHT)

	reg := New(clientHost, clientDHT, zap.NewNop())

	resolveCtx, resolveCancel := context.WithCancel(ctx)
	go func() {
		time.Sleep(200 * time.Millisecond)
		resolveCancel()
	}()

	_, err := reg.ResolveWithRetry(resolveCtx, "never-registered", RetryConfig{
		Attempts: 0, // unbounded
		Interval: 100 * time.Millisecond,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v; want context.Canceled", err)
	}
}
