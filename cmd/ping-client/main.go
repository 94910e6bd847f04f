package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"
	"go.uber.org/zap"

	"github.com/ShreejithBabuG/kameo-ping/pkg/actor"
	"github.com/ShreejithBabuG/kameo-ping/pkg/config"
	"github.com/ShreejithBabuG/kameo-ping/pkg/logging"
	"github.com/ShreejithBabuG/kameo-ping/pkg/node"
	"github.com/ShreejithBabuG/kameo-ping/pkg/ping"
	"github.com/ShreejithBabuG/kameo-ping/pkg/presence"
	"github.com/ShreejithBabuG/kameo-ping/pkg/registry"
)

func main() {
	configPath := flag.String("config", "", "Path to config YAML file (overrides defaults)")
	dataDir := flag.String("data", "", "Data directory (identity storage)")
	serverAddr := flag.String("server", "", "Server multiaddr (e.g., /ip4/1.2.3.4/tcp/36341/p2p/<id>); empty = discover")
	bootstrap := flag.String("bootstrap", "", "Comma-separated bootstrap peer multiaddrs")
	count := flag.Int("count", 0, "Number of pings to send")
	interval := flag.Duration("interval", 0, "Delay between pings")
	actorName := flag.String("actor", "", "Actor name to resolve")
	flag.Parse()

	logger, err := logging.NewDefaultLogger(logging.ComponentClient)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg := config.DefaultClientConfig()
	if *configPath != "" {
		if err := config.LoadYAML(*configPath, cfg); err != nil {
			logger.Error("Failed to load config", zap.Error(err))
			os.Exit(1)
		}
	}
	if *dataDir != "" {
		cfg.Node.DataDir = *dataDir
	}
	if *serverAddr != "" {
		cfg.Ping.ServerAddr = *serverAddr
	}
	if *bootstrap != "" {
		cfg.Discovery.BootstrapPeers = strings.Split(*bootstrap, ",")
	}
	if *count > 0 {
		cfg.Ping.Count = *count
	}
	if *interval > 0 {
		cfg.Ping.Interval = *interval
	}
	if *actorName != "" {
		cfg.Ping.ActorName = *actorName
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			logger.Error("Invalid configuration", zap.Error(e))
		}
		os.Exit(1)
	}

	// Cancel the run on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		logger.ComponentInfo(logging.ComponentClient, "Interrupted, stopping...")
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil && err != context.Canceled {
		logger.ComponentError(logging.ComponentClient, "Client failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logging.ColoredLogger) error {
	n := node.NewNode(cfg, logger)
	if err := n.Start(ctx); err != nil {
		return fmt.Errorf("failed to start node: %w", err)
	}
	defer n.Stop()

	// Watch presence announcements as a discovery fast path
	watcher, err := presence.NewWatcher(n.Host(), n.PubSub(), cfg.Discovery.PresenceTopic, cfg.Ping.ActorName, logger.Logger)
	if err != nil {
		return fmt.Errorf("failed to join presence topic: %w", err)
	}
	defer watcher.Stop()

	info, err := locateResponder(ctx, cfg, n, watcher, logger)
	if err != nil {
		return err
	}

	// Make sure a connection exists before the first ask
	connectCtx, connectCancel := context.WithTimeout(ctx, 30*time.Second)
	err = n.Host().Connect(connectCtx, info)
	connectCancel()
	if err != nil {
		return fmt.Errorf("failed to connect to responder %s: %w", info.ID, err)
	}

	ref := actor.NewRef(n.Host(), info.ID, cfg.Ping.ActorName, logger.Logger)

	logger.ComponentInfo(logging.ComponentPing, "Starting ping sequence",
		zap.String("actor", cfg.Ping.ActorName),
		zap.String("responder", info.ID.String()),
		zap.Int("count", cfg.Ping.Count),
		zap.Duration("interval", cfg.Ping.Interval))

	pinger := ping.NewPinger(ref, ping.Config{
		Count:         cfg.Ping.Count,
		Interval:      cfg.Ping.Interval,
		AskTimeout:    cfg.Ping.AskTimeout,
		MessagePrefix: cfg.Ping.ClientPrefix,
	}, logger.Logger)

	stats, runErr := pinger.Run(ctx)

	logger.ComponentInfo(logging.ComponentPing, "Ping run finished",
		zap.Int("sent", stats.Sent),
		zap.Int("succeeded", stats.Succeeded()),
		zap.Int("failed", stats.Failed),
		zap.Duration("elapsed", stats.Elapsed),
		zap.Duration("average", stats.Average()),
		zap.Duration("rtt_min", stats.MinRTT()),
		zap.Duration("rtt_mean", stats.MeanRTT()),
		zap.Duration("rtt_max", stats.MaxRTT()))
	fmt.Println(stats.Summary())

	return runErr
}

// locateResponder finds the peer hosting the ping actor: an explicit server
// address wins, then presence announcements, then the DHT registry with its
// retry loop.
func locateResponder(ctx context.Context, cfg *config.Config, n *node.Node, watcher *presence.Watcher, logger *logging.ColoredLogger) (peer.AddrInfo, error) {
	if cfg.Ping.ServerAddr != "" {
		ma, err := multiaddr.NewMultiaddr(cfg.Ping.ServerAddr)
		if err != nil {
			return peer.AddrInfo{}, fmt.Errorf("invalid server multiaddr: %w", err)
		}
		info, err := peer.AddrInfoFromP2pAddr(ma)
		if err != nil {
			return peer.AddrInfo{}, fmt.Errorf("server multiaddr must include /p2p/<id>: %w", err)
		}
		logger.ComponentInfo(logging.ComponentClient, "Using explicit server address",
			zap.String("addr", cfg.Ping.ServerAddr))
		return *info, nil
	}

	logger.ComponentInfo(logging.ComponentRegistry, "Resolving actor name",
		zap.String("actor", cfg.Ping.ActorName),
		zap.Int("max_attempts", cfg.Discovery.ResolveAttempts),
		zap.Duration("retry_interval", cfg.Discovery.ResolveInterval))

	// A presence announcement short-circuits the DHT lookup
	resolveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	reg := registry.New(n.Host(), n.DHT(), logger.Logger)
	type resolveResult struct {
		info peer.AddrInfo
		err  error
	}
	resolved := make(chan resolveResult, 1)
	go func() {
		info, err := reg.ResolveWithRetry(resolveCtx, cfg.Ping.ActorName, registry.RetryConfig{
			Attempts: cfg.Discovery.ResolveAttempts,
			Interval: cfg.Discovery.ResolveInterval,
		})
		resolved <- resolveResult{info: info, err: err}
	}()

	select {
	case info := <-watcher.Found():
		logger.ComponentInfo(logging.ComponentPresence, "Responder located via presence announcement",
			zap.String("peer", info.ID.String()))
		return info, nil
	case res := <-resolved:
		if res.err != nil {
			return peer.AddrInfo{}, fmt.Errorf("failed to resolve actor %q: %w", cfg.Ping.ActorName, res.err)
		}
		logger.ComponentInfo(logging.ComponentRegistry, "Responder located via DHT registry",
			zap.String("peer", res.info.ID.String()))
		return res.info, nil
	case <-ctx.Done():
		return peer.AddrInfo{}, ctx.Err()
	}
}
