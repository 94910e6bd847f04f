// Package registry resolves human-readable actor names to reachable peers.
// Names are advertised as rendezvous points on the Kademlia DHT, so a
// registration becomes visible to other peers only after DHT propagation.
package registry

import (
	"context"
	"fmt"
	"time"

	dht "github.com/libp2p/go-libp2p-kad-dht"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	drouting "github.com/libp2p/go-libp2p/p2p/discovery/routing"
	dutil "github.com/libp2p/go-libp2p/p2p/discovery/util"
	"go.uber.org/zap"
)

// Rendezvous namespace prefix for registered actor names
const namespacePrefix = "kameo-ping/actor/"

// ErrNotFound is returned when a name has no reachable registration yet
var ErrNotFound = fmt.Errorf("registry: name not found")

// RetryConfig bounds the resolution retry loop
type RetryConfig struct {
	Attempts int           // 0 means retry until the context is canceled
	Interval time.Duration // Delay between attempts
}

// Registry advertises and resolves actor names over the DHT
type Registry struct {
	host      host.Host
	discovery *drouting.RoutingDiscovery
	logger    *zap.Logger
}

// New creates a registry backed by the given DHT
func New(h host.Host, kdht *dht.IpfsDHT, logger *zap.Logger) *Registry {
	return &Registry{
		host:      h,
		discovery: drouting.NewRoutingDiscovery(kdht),
		logger:    logger,
	}
}

// Namespace returns the rendezvous namespace for an actor name
func Namespace(name string) string {
	return namespacePrefix + name
}

// Advertise registers this host under the given actor name and keeps the
// registration alive in the background until ctx is canceled. The DHT needs
// at least one peer in its routing table before the advertisement can be
// stored, so callers typically invoke this after connecting to the network.
func (r *Registry) Advertise(ctx context.Context, name string) {
	ns := Namespace(name)
	dutil.Advertise(ctx, r.discovery, ns)
	r.logger.Info("Advertising actor name",
		zap.String("name", name),
		zap.String("namespace", ns))
}

// Resolve performs a single lookup of the given actor name and returns the
// first reachable peer registered under it. Returns ErrNotFound when nothing
// usable is visible yet.
func (r *Registry) Resolve(ctx context.Context, name string) (peer.AddrInfo, error) {
	ns := Namespace(name)

	peerChan, err := r.discovery.FindPeers(ctx, ns)
	if err != nil {
		return peer.AddrInfo{}, fmt.Errorf("failed to query registry: %w", err)
	}

	for info := range peerChan {
		if info.ID == "" || info.ID == r.host.ID() {
			continue
		}
		// A provider record without addresses is useless unless the
		// peerstore already knows how to reach the peer.
		if len(info.Addrs) == 0 && len(r.host.Peerstore().Addrs(info.ID)) == 0 {
			r.logger.Debug("Skipping provider without addresses",
				zap.String("peer", info.ID.String()))
			continue
		}

		r.logger.Debug("Resolved actor name",
			zap.String("name", name),
			zap.String("peer", info.ID.String()),
			zap.Int("addrs", len(info.Addrs)))
		return info, nil
	}

	if err := ctx.Err(); err != nil {
		return peer.AddrInfo{}, err
	}
	return peer.AddrInfo{}, ErrNotFound
}

// ResolveWithRetry resolves a name, retrying with a fixed delay while the
// registration is not yet visible. Registrations propagate through the DHT
// eventually, so not-found is treated as transient until the attempt budget
// is exhausted.
func (r *Registry) ResolveWithRetry(ctx context.Context, name string, retry RetryConfig) (peer.AddrInfo, error) {
	attempt := 0
	for {
		attempt++

		info, err := r.Resolve(ctx, name)
		if err == nil {
			return info, nil
		}
		if err != ErrNotFound {
			return peer.AddrInfo{}, err
		}

		if retry.Attempts > 0 && attempt >= retry.Attempts {
			return peer.AddrInfo{}, fmt.Errorf("name %q not found after %d attempts: %w", name, attempt, ErrNotFound)
		}

		r.logger.Warn("Actor name not visible yet, retrying",
			zap.String("name", name),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", retry.Attempts))

		select {
		case <-ctx.Done():
			return peer.AddrInfo{}, ctx.Err()
		case <-time.After(retry.Interval):
		}
	}
}
