package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ShreejithBabuG/kameo-ping/pkg/actor"
	"github.com/ShreejithBabuG/kameo-ping/pkg/config"
	"github.com/ShreejithBabuG/kameo-ping/pkg/logging"
	"github.com/ShreejithBabuG/kameo-ping/pkg/node"
	"github.com/ShreejithBabuG/kameo-ping/pkg/ping"
	"github.com/ShreejithBabuG/kameo-ping/pkg/presence"
	"github.com/ShreejithBabuG/kameo-ping/pkg/registry"
	"github.com/ShreejithBabuG/kameo-ping/pkg/status"
)

func main() {
	configPath := flag.String("config", "", "Path to config YAML file (overrides defaults)")
	dataDir := flag.String("data", "", "Data directory (identity storage)")
	port := flag.Int("port", 36341, "LibP2P listen port")
	actorName := flag.String("actor", "", "Actor name to register")
	bootstrap := flag.String("bootstrap", "", "Comma-separated bootstrap peer multiaddrs")
	httpAddr := flag.String("http", "", "Status endpoint listen address (empty = disabled)")
	flag.Parse()

	logger, err := logging.NewDefaultLogger(logging.ComponentNode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg := config.DefaultServerConfig()
	if *configPath != "" {
		if err := config.LoadYAML(*configPath, cfg); err != nil {
			logger.Error("Failed to load config", zap.Error(err))
			os.Exit(1)
		}
		logger.ComponentInfo(logging.ComponentNode, "Configuration loaded",
			zap.String("path", *configPath))
	}
	applyFlags(cfg, *dataDir, *port, *actorName, *bootstrap, *httpAddr)

	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			logger.Error("Invalid configuration", zap.Error(e))
		}
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	doneChan := make(chan struct{})
	go func() {
		if err := run(ctx, cfg, logger); err != nil {
			errChan <- err
		}
		close(doneChan)
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		logger.ComponentError(logging.ComponentNode, "Server failed", zap.Error(err))
		os.Exit(1)
	case <-c:
		logger.ComponentInfo(logging.ComponentNode, "Shutting down...")
		cancel()
		<-doneChan
		logger.ComponentInfo(logging.ComponentNode, "Shutdown complete")
	}
}

// applyFlags applies command line overrides to the config
func applyFlags(cfg *config.Config, dataDir string, port int, actorName, bootstrap, httpAddr string) {
	if dataDir != "" {
		cfg.Node.DataDir = dataDir
	}
	if port != 36341 {
		cfg.Node.ListenAddresses = []string{
			fmt.Sprintf("/ip4/0.0.0.0/tcp/%d", port),
			fmt.Sprintf("/ip4/0.0.0.0/udp/%d/quic-v1", port),
		}
	}
	if actorName != "" {
		cfg.Ping.ActorName = actorName
	}
	if bootstrap != "" {
		cfg.Discovery.BootstrapPeers = strings.Split(bootstrap, ",")
	}
	if httpAddr != "" {
		cfg.HTTP.Enabled = true
		cfg.HTTP.ListenAddr = httpAddr
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logging.ColoredLogger) error {
	n := node.NewNode(cfg, logger)
	if err := n.Start(ctx); err != nil {
		return fmt.Errorf("failed to start node: %w", err)
	}
	defer n.Stop()

	// Spawn the ping actor
	pingActor := ping.NewActor(logger.Logger)
	system := actor.NewSystem(n.Host(), logger.Logger)
	defer system.Stop()
	if err := system.Spawn(cfg.Ping.ActorName, pingActor); err != nil {
		return fmt.Errorf("failed to spawn ping actor: %w", err)
	}

	// Advertise the actor name in the DHT registry
	reg := registry.New(n.Host(), n.DHT(), logger.Logger)
	reg.Advertise(ctx, cfg.Ping.ActorName)

	// Announce presence over GossipSub for LAN-fast discovery
	announcer, err := presence.NewAnnouncer(n.Host(), n.PubSub(), cfg.Discovery.PresenceTopic, logger.Logger)
	if err != nil {
		return fmt.Errorf("failed to join presence topic: %w", err)
	}
	announcer.Start(cfg.Ping.ActorName, cfg.Discovery.PresenceInterval)
	defer announcer.Stop()

	// Optional HTTP status endpoint
	if cfg.HTTP.Enabled {
		statusSrv := status.NewServer(n.Host(), pingActor, cfg.Ping.ActorName, logger.Logger)
		statusSrv.Start(cfg.HTTP.ListenAddr)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			statusSrv.Stop(shutdownCtx)
		}()
	}

	savePeerInfo(cfg, n, logger)

	logger.ComponentInfo(logging.ComponentPing, "Ping actor registered, waiting for clients",
		zap.String("actor", cfg.Ping.ActorName),
		zap.String("peer_id", n.PeerID()))

	<-ctx.Done()
	return nil
}

// savePeerInfo writes the dialable multiaddr to the data dir so clients can be
// pointed at this server without discovery
func savePeerInfo(cfg *config.Config, n *node.Node, logger *logging.ColoredLogger) {
	peerInfoFile := filepath.Join(cfg.Node.DataDir, "peer.info")

	var dialAddr string
	for _, addr := range n.Host().Addrs() {
		if strings.Contains(addr.String(), "/tcp/") {
			dialAddr = fmt.Sprintf("%s/p2p/%s", addr, n.PeerID())
			break
		}
	}
	if dialAddr == "" {
		return
	}

	if err := os.WriteFile(peerInfoFile, []byte(dialAddr), 0644); err != nil {
		logger.Warn("Failed to save peer info", zap.Error(err))
		return
	}
	logger.Info("Peer info saved",
		zap.String("path", peerInfoFile),
		zap.String("multiaddr", dialAddr))
}
