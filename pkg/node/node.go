package node

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/libp2p/go-libp2p"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	noise "github.com/libp2p/go-libp2p/p2p/security/noise"
	libp2pquic "github.com/libp2p/go-libp2p/p2p/transport/quic"
	"github.com/libp2p/go-libp2p/p2p/transport/tcp"
	"github.com/multiformats/go-multiaddr"
	"go.uber.org/zap"

	"github.com/ShreejithBabuG/kameo-ping/pkg/config"
	"github.com/ShreejithBabuG/kameo-ping/pkg/logging"
)

// Node is one overlay participant: a libp2p host with a Kademlia DHT,
// GossipSub, and mDNS local discovery.
type Node struct {
	config *config.Config
	logger *logging.ColoredLogger

	host   host.Host
	dht    *dht.IpfsDHT
	pubsub *pubsub.PubSub
	mdns   *mdnsService
}

// NewNode creates a new overlay node
func NewNode(cfg *config.Config, logger *logging.ColoredLogger) *Node {
	return &Node{
		config: cfg,
		logger: logger,
	}
}

// Start brings up the libp2p host, the DHT, pubsub and local discovery
func (n *Node) Start(ctx context.Context) error {
	n.logger.ComponentInfo(logging.ComponentNode, "Starting node",
		zap.String("data_dir", n.config.Node.DataDir))

	if err := os.MkdirAll(n.config.Node.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := n.startLibP2P(ctx); err != nil {
		return fmt.Errorf("failed to start libp2p: %w", err)
	}

	var listenAddrs []string
	for _, addr := range n.host.Addrs() {
		listenAddrs = append(listenAddrs, addr.String())
	}

	n.logger.ComponentInfo(logging.ComponentNode, "Node started",
		zap.String("peer_id", n.host.ID().String()),
		zap.Strings("listen_addrs", listenAddrs))

	return nil
}

// startLibP2P initializes the libp2p host, DHT and pubsub
func (n *Node) startLibP2P(ctx context.Context) error {
	n.logger.ComponentInfo(logging.ComponentLibP2P, "Starting libp2p host")

	listenAddrs, err := n.config.ParseMultiaddrs()
	if err != nil {
		return fmt.Errorf("failed to parse listen addresses: %w", err)
	}

	identity, err := n.loadOrCreateIdentity()
	if err != nil {
		return fmt.Errorf("failed to load identity: %w", err)
	}

	h, err := libp2p.New(
		libp2p.Identity(identity),
		libp2p.ListenAddrs(listenAddrs...),
		libp2p.Security(noise.ID, noise.New),
		libp2p.Transport(tcp.NewTCPTransport),
		libp2p.Transport(libp2pquic.NewTransport),
		libp2p.DefaultMuxers,
	)
	if err != nil {
		return err
	}
	n.host = h

	// Server mode keeps this peer answering DHT queries, which is what makes
	// the actor registration visible to other peers.
	kademliaDHT, err := dht.New(ctx, h, dht.Mode(dht.ModeServer))
	if err != nil {
		return fmt.Errorf("failed to create DHT: %w", err)
	}
	n.dht = kademliaDHT

	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		return fmt.Errorf("failed to create pubsub: %w", err)
	}
	n.pubsub = ps

	if err := n.connectToBootstrapPeers(ctx); err != nil {
		n.logger.Warn("Failed to connect to bootstrap peers", zap.Error(err))
		// Not fatal, mDNS or an explicit dial can still find peers
	}

	if err := kademliaDHT.Bootstrap(ctx); err != nil {
		n.logger.Warn("Failed to bootstrap DHT", zap.Error(err))
	} else {
		n.logger.ComponentInfo(logging.ComponentDHT, "DHT bootstrap initiated")
	}

	if err := n.startMDNS(); err != nil {
		n.logger.Warn("Failed to start mDNS discovery", zap.Error(err))
	}

	n.logger.ComponentInfo(logging.ComponentLibP2P, "libp2p host started",
		zap.String("peer_id", h.ID().String()))

	return nil
}

// connectToBootstrapPeers connects to the configured bootstrap peers
func (n *Node) connectToBootstrapPeers(ctx context.Context) error {
	if len(n.config.Discovery.BootstrapPeers) == 0 {
		n.logger.ComponentDebug(logging.ComponentDHT, "No bootstrap peers configured")
		return nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, bootstrapAddr := range n.config.Discovery.BootstrapPeers {
		if err := n.ConnectPeer(connectCtx, bootstrapAddr); err != nil {
			n.logger.Warn("Failed to connect to bootstrap peer",
				zap.String("addr", bootstrapAddr),
				zap.Error(err))
			continue
		}
	}

	return nil
}

// ConnectPeer dials a peer given its full multiaddr (including /p2p/<id>) and
// records its address in the peerstore for later DHT traffic.
func (n *Node) ConnectPeer(ctx context.Context, addr string) (err error) {
	ma, err := multiaddr.NewMultiaddr(addr)
	if err != nil {
		return fmt.Errorf("invalid multiaddr: %w", err)
	}

	peerInfo, err := peer.AddrInfoFromP2pAddr(ma)
	if err != nil {
		return fmt.Errorf("failed to extract peer info: %w", err)
	}

	if err := n.host.Connect(ctx, *peerInfo); err != nil {
		return fmt.Errorf("failed to connect to peer: %w", err)
	}

	n.host.Peerstore().AddAddrs(peerInfo.ID, peerInfo.Addrs, time.Hour*24)
	if _, err := n.dht.RoutingTable().TryAddPeer(peerInfo.ID, true, true); err != nil {
		n.logger.ComponentDebug(logging.ComponentDHT, "Could not add peer to routing table",
			zap.String("peer", peerInfo.ID.String()),
			zap.Error(err))
	}

	n.logger.Info("Connected to peer",
		zap.String("peer", peerInfo.ID.String()),
		zap.String("addr", addr))

	return nil
}

// Stop shuts the node down in reverse start order
func (n *Node) Stop() error {
	n.logger.ComponentInfo(logging.ComponentNode, "Stopping node")

	if n.mdns != nil {
		n.mdns.stop()
	}
	if n.dht != nil {
		n.dht.Close()
	}
	if n.host != nil {
		n.host.Close()
	}

	n.logger.ComponentInfo(logging.ComponentNode, "Node stopped")
	return nil
}

// Host returns the libp2p host
func (n *Node) Host() host.Host { return n.host }

// DHT returns the Kademlia DHT instance
func (n *Node) DHT() *dht.IpfsDHT { return n.dht }

// PubSub returns the GossipSub instance
func (n *Node) PubSub() *pubsub.PubSub { return n.pubsub }

// PeerID returns the peer ID of this node, or empty before Start
func (n *Node) PeerID() string {
	if n.host == nil {
		return ""
	}
	return n.host.ID().String()
}
