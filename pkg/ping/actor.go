// Package ping holds the ping/pong exchange: the responder's counting actor
// and the initiator's sequential send loop with timing statistics.
package ping

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

// DefaultActorName is the name the responder registers its actor under.
// Client and server must agree on it.
const DefaultActorName = "ping-actor"

// Actor answers pings with an incrementing process-global counter. Handling
// runs on a single mailbox goroutine; the counter is atomic only so the
// status endpoint can read it concurrently. It is incremented exactly once
// per processed request and never resets while the process lives.
type Actor struct {
	pingCount atomic.Uint64
	logger    *zap.Logger
}

// NewActor creates a ping actor with a zero counter
func NewActor(logger *zap.Logger) *Actor {
	return &Actor{logger: logger}
}

// Handle processes one Ping and returns the matching Pong
func (a *Actor) Handle(ctx context.Context, payload []byte) ([]byte, error) {
	var ping Ping
	if err := ping.Unmarshal(payload); err != nil {
		return nil, fmt.Errorf("malformed ping: %w", err)
	}

	total := a.pingCount.Add(1)

	a.logger.Info("Received ping",
		zap.Uint64("sequence", ping.Sequence),
		zap.String("message", ping.Message),
		zap.Uint64("total_pings", total))

	pong := &Pong{
		Message:    fmt.Sprintf("Pong! Responding to: %s", ping.Message),
		Sequence:   ping.Sequence,
		TotalPings: total,
	}
	return pong.Marshal()
}

// Count returns the number of pings processed so far
func (a *Actor) Count() uint64 {
	return a.pingCount.Load()
}
