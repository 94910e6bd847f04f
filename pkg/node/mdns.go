package node

import (
	"context"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/p2p/discovery/mdns"
	"go.uber.org/zap"
)

// mdnsService wraps the libp2p mDNS service for LAN peer discovery
type mdnsService struct {
	service mdns.Service
}

// startMDNS enables mDNS discovery so peers on the same network find each
// other without bootstrap peers
func (n *Node) startMDNS() error {
	service := mdns.NewMdnsService(n.host, n.config.Discovery.MDNSServiceTag, &discoveryNotifee{
		node:   n,
		logger: n.logger.Logger,
	})
	if err := service.Start(); err != nil {
		return err
	}
	n.mdns = &mdnsService{service: service}
	n.logger.Info("Started mDNS discovery",
		zap.String("service_tag", n.config.Discovery.MDNSServiceTag))
	return nil
}

func (m *mdnsService) stop() {
	_ = m.service.Close()
}

// discoveryNotifee handles mDNS peer discovery notifications
type discoveryNotifee struct {
	node   *Node
	logger *zap.Logger
}

func (d *discoveryNotifee) HandlePeerFound(pi peer.AddrInfo) {
	d.logger.Info("mDNS discovered peer",
		zap.String("peer", pi.ID.String()),
		zap.Int("addrs", len(pi.Addrs)))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.node.host.Connect(ctx, pi); err != nil {
		d.logger.Debug("Failed to connect to mDNS discovered peer",
			zap.String("peer", pi.ID.String()),
			zap.Error(err))
		return
	}

	// Feed the DHT so rendezvous lookups work before the bootstrap walk
	if d.node.dht != nil {
		if _, err := d.node.dht.RoutingTable().TryAddPeer(pi.ID, true, true); err != nil {
			d.logger.Debug("Could not add mDNS peer to routing table",
				zap.String("peer", pi.ID.String()),
				zap.Error(err))
		}
	}

	d.logger.Info("Connected to mDNS discovered peer",
		zap.String("peer", pi.ID.String()))
}
