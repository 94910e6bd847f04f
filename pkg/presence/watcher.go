package presence

import (
	"context"
	"time"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/peerstore"
	"github.com/multiformats/go-multiaddr"
	"go.uber.org/zap"
)

// Watcher subscribes to the presence topic and records announcing peers in
// the host's peerstore so they can be dialed directly.
type Watcher struct {
	host   host.Host
	topic  *pubsub.Topic
	sub    *pubsub.Subscription
	logger *zap.Logger
	cancel context.CancelFunc

	found chan peer.AddrInfo
	actor string
}

// NewWatcher joins the presence topic and watches for announcements of the
// given actor name
func NewWatcher(h host.Host, ps *pubsub.PubSub, topicName, actor string, logger *zap.Logger) (*Watcher, error) {
	topic, err := ps.Join(topicName)
	if err != nil {
		return nil, err
	}
	sub, err := topic.Subscribe()
	if err != nil {
		topic.Close()
		return nil, err
	}

	w := &Watcher{
		host:   h,
		topic:  topic,
		sub:    sub,
		logger: logger,
		found:  make(chan peer.AddrInfo, 1),
		actor:  actor,
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go w.loop(ctx)

	return w, nil
}

// Found returns a channel that yields the announcing peer once an
// announcement for the watched actor arrives. The channel holds at most the
// first match.
func (w *Watcher) Found() <-chan peer.AddrInfo {
	return w.found
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		msg, err := w.sub.Next(ctx)
		if err != nil {
			return // subscription canceled
		}
		if msg.ReceivedFrom == w.host.ID() {
			continue
		}

		var ann Announcement
		if err := ann.Unmarshal(msg.Data); err != nil {
			w.logger.Debug("Ignoring malformed presence announcement", zap.Error(err))
			continue
		}
		if ann.Actor != w.actor {
			continue
		}
		if ann.StaleAfter(time.Minute) {
			continue
		}

		info, err := announcementAddrInfo(&ann)
		if err != nil {
			w.logger.Debug("Ignoring presence announcement with bad identity",
				zap.Error(err))
			continue
		}

		// Remember the announced addresses so the peer can be dialed
		w.host.Peerstore().AddAddrs(info.ID, info.Addrs, peerstore.TempAddrTTL)

		w.logger.Info("Presence announcement received",
			zap.String("actor", ann.Actor),
			zap.String("peer", info.ID.String()),
			zap.Time("announced_at", ann.Timestamp))

		select {
		case w.found <- info:
		default: // already delivered a match
		}
	}
}

// Stop cancels the subscription and leaves the topic
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	if w.sub != nil {
		w.sub.Cancel()
	}
	if w.topic != nil {
		_ = w.topic.Close()
	}
}

func announcementAddrInfo(ann *Announcement) (peer.AddrInfo, error) {
	id, err := peer.Decode(ann.PeerID)
	if err != nil {
		return peer.AddrInfo{}, err
	}

	var addrs []multiaddr.Multiaddr
	for _, s := range ann.Addrs {
		if ma, err := multiaddr.NewMultiaddr(s); err == nil {
			addrs = append(addrs, ma)
		}
	}
	return peer.AddrInfo{ID: id, Addrs: addrs}, nil
}

// StaleAfter reports whether an announcement is older than the given age
func (a *Announcement) StaleAfter(age time.Duration) bool {
	return time.Since(a.Timestamp) > age
}
