package node

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p/core/crypto"

	"github.com/ShreejithBabuG/kameo-ping/pkg/config"
	"github.com/ShreejithBabuG/kameo-ping/pkg/logging"
)

func testLogger(t *testing.T) *logging.ColoredLogger {
	t.Helper()
	logger, err := logging.NewColoredLogger(logging.ComponentNode, false)
	if err != nil {
		t.Fatalf("NewColoredLogger: %v", err)
	}
	return logger
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.DefaultServerConfig()
	cfg.Node.DataDir = t.TempDir()
	cfg.Node.ListenAddresses = []string{"/ip4/127.0.0.1/tcp/0"}
	return cfg
}

func TestPeerID_WhenNoHost(t *testing.T) {
	n := NewNode(testConfig(t), testLogger(t))
	if id := n.PeerID(); id != "" {
		t.Fatalf("PeerID() = %q; want empty string before Start", id)
	}
}

func TestLoadOrCreateIdentity(t *testing.T) {
	t.Run("first run creates file with correct perms and round-trips", func(t *testing.T) {
		cfg := testConfig(t)
		n := NewNode(cfg, testLogger(t))

		priv, err := n.loadOrCreateIdentity()
		if err != nil {
			t.Fatalf("loadOrCreateIdentity() error: %v", err)
		}
		if priv == nil {
			t.Fatalf("returned private key is nil")
		}

		identityFile := filepath.Join(cfg.Node.DataDir, "identity.key")

		fi, err := os.Stat(identityFile)
		if err != nil {
			t.Fatalf("identity file not created: %v", err)
		}
		if got := fi.Mode().Perm(); got != 0o600 {
			t.Fatalf("identity file permissions are incorrect: %v", got)
		}

		data, err := os.ReadFile(identityFile)
		if err != nil {
			t.Fatalf("failed to read identity file: %v", err)
		}
		priv2, err := crypto.UnmarshalPrivateKey(data)
		if err != nil {
			t.Fatalf("UnmarshalPrivateKey: %v", err)
		}

		b1, err := crypto.MarshalPrivateKey(priv)
		if err != nil {
			t.Fatalf("MarshalPrivateKey(priv): %v", err)
		}
		b2, err := crypto.MarshalPrivateKey(priv2)
		if err != nil {
			t.Fatalf("MarshalPrivateKey(priv2): %v", err)
		}
		if !bytes.Equal(b1, b2) {
			t.Fatalf("saved key differs from returned key")
		}
	})

	t.Run("second run returns same identity", func(t *testing.T) {
		cfg := testConfig(t)

		n1 := NewNode(cfg, testLogger(t))
		priv1, err := n1.loadOrCreateIdentity()
		if err != nil {
			t.Fatalf("loadOrCreateIdentity(first) error: %v", err)
		}

		n2 := NewNode(cfg, testLogger(t))
		priv2, err := n2.loadOrCreateIdentity()
		if err != nil {
			t.Fatalf("loadOrCreateIdentity(second) error: %v", err)
		}

		if !priv1.Equals(priv2) {
			t.Fatalf("identity changed between runs")
		}
	})
}

func TestNode_StartAndConnect(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := NewNode(testConfig(t), testLogger(t))
	if err := a.Start(ctx); err != nil {
		t.Fatalf("Start (a): %v", err)
	}
	defer a.Stop()

	b := NewNode(testConfig(t), testLogger(t))
	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start (b): %v", err)
	}
	defer b.Stop()

	if a.PeerID() == "" || b.PeerID() == "" {
		t.Fatalf("started nodes must have peer IDs")
	}
	if a.PeerID() == b.PeerID() {
		t.Fatalf("distinct data dirs produced identical identities")
	}

	addr := fmt.Sprintf("%s/p2p/%s", a.Host().Addrs()[0], a.PeerID())
	if err := b.ConnectPeer(ctx, addr); err != nil {
		t.Fatalf("ConnectPeer: %v", err)
	}

	if len(b.Host().Network().Peers()) == 0 {
		t.Fatalf("no connection established")
	}
}

func TestConnectPeer_InvalidAddr(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n := NewNode(testConfig(t), testLogger(t))
	if err := n.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer n.Stop()

	if err := n.ConnectPeer(ctx, "not-a-multiaddr"); err == nil {
		t.Fatalf("expected error for invalid multiaddr")
	}
	if err := n.ConnectPeer(ctx, "/ip4/127.0.0.1/tcp/1"); err == nil {
		t.Fatalf("expected error for multiaddr without peer identity")
	}
}
