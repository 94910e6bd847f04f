// Package presence broadcasts and observes actor availability over GossipSub.
// It is a fast path next to the DHT registry: peers already connected (for
// example via mDNS on a LAN) learn about a registered actor from the first
// announcement instead of waiting for DHT records to propagate.
package presence

import (
	"context"
	"time"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"go.uber.org/zap"
)

// Announcer periodically publishes an Announcement for one actor
type Announcer struct {
	host   host.Host
	topic  *pubsub.Topic
	logger *zap.Logger
	cancel context.CancelFunc
}

// NewAnnouncer joins the presence topic on the given pubsub instance
func NewAnnouncer(h host.Host, ps *pubsub.PubSub, topicName string, logger *zap.Logger) (*Announcer, error) {
	topic, err := ps.Join(topicName)
	if err != nil {
		return nil, err
	}
	return &Announcer{
		host:   h,
		topic:  topic,
		logger: logger,
	}, nil
}

// Start begins announcing the actor at the given interval until Stop is called
func (a *Announcer) Start(actor string, interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	go func() {
		// First announcement immediately, then on the ticker
		a.announce(ctx, actor)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.announce(ctx, actor)
			}
		}
	}()
}

func (a *Announcer) announce(ctx context.Context, actor string) {
	var addrs []string
	for _, addr := range a.host.Addrs() {
		addrs = append(addrs, addr.String())
	}

	ann := &Announcement{
		Actor:     actor,
		PeerID:    a.host.ID().String(),
		Addrs:     addrs,
		Timestamp: time.Now().UTC(),
	}

	data, err := ann.Marshal()
	if err != nil {
		a.logger.Error("Failed to marshal presence announcement", zap.Error(err))
		return
	}

	if err := a.topic.Publish(ctx, data); err != nil {
		a.logger.Debug("Failed to publish presence announcement", zap.Error(err))
		return
	}

	a.logger.Debug("Published presence announcement",
		zap.String("actor", actor),
		zap.Int("addrs", len(addrs)))
}

// Stop stops announcing and leaves the topic
func (a *Announcer) Stop() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.topic != nil {
		_ = a.topic.Close()
	}
}
