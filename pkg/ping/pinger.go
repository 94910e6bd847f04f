package ping

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Asker sends a payload to the remote actor and waits for its reply.
// *actor.Ref satisfies this; tests substitute an in-process implementation.
type Asker interface {
	Ask(ctx context.Context, payload []byte) ([]byte, error)
}

// Config controls one run of the ping loop
type Config struct {
	Count         int           // Number of pings to send
	Interval      time.Duration // Sleep between consecutive pings
	AskTimeout    time.Duration // Per-request timeout
	MessagePrefix string        // Prefix of the message carried in each ping
}

// Pinger drives the sequential ping/pong exchange: one request in flight at a
// time, each response observed before the next request is sent.
type Pinger struct {
	ref    Asker
	config Config
	logger *zap.Logger
}

// NewPinger creates a pinger against the given remote actor
func NewPinger(ref Asker, config Config, logger *zap.Logger) *Pinger {
	return &Pinger{
		ref:    ref,
		config: config,
		logger: logger,
	}
}

// Run sends the configured number of pings and returns timing statistics.
// Individual request failures are logged and counted, not fatal; ctx
// cancellation stops the loop early.
func (p *Pinger) Run(ctx context.Context) (*Stats, error) {
	stats := newStats()
	start := time.Now()

	for i := 1; i <= p.config.Count; i++ {
		if err := ctx.Err(); err != nil {
			stats.Elapsed = time.Since(start)
			return stats, err
		}

		seq := uint64(i)
		ping := &Ping{
			Message:  fmt.Sprintf("%s, ping #%d", p.config.MessagePrefix, seq),
			Sequence: seq,
		}

		payload, err := ping.Marshal()
		if err != nil {
			return stats, fmt.Errorf("failed to marshal ping #%d: %w", seq, err)
		}

		p.logger.Info("Sending ping", zap.Uint64("sequence", seq))

		askCtx, cancel := context.WithTimeout(ctx, p.config.AskTimeout)
		sent := time.Now()
		responseData, err := p.ref.Ask(askCtx, payload)
		rtt := time.Since(sent)
		cancel()

		if err != nil {
			stats.Failed++
			p.logger.Error("Ping failed",
				zap.Uint64("sequence", seq),
				zap.Error(err))
		} else {
			var pong Pong
			if err := pong.Unmarshal(responseData); err != nil {
				stats.Failed++
				p.logger.Error("Malformed pong",
					zap.Uint64("sequence", seq),
					zap.Error(err))
			} else if pong.Sequence != seq {
				stats.Failed++
				p.logger.Error("Pong sequence mismatch",
					zap.Uint64("sent", seq),
					zap.Uint64("received", pong.Sequence))
			} else {
				stats.record(rtt)
				p.logger.Info("Received pong",
					zap.Uint64("sequence", pong.Sequence),
					zap.Uint64("total_pings", pong.TotalPings),
					zap.Duration("rtt", rtt))
			}
		}
		stats.Sent++

		// No sleep after the final ping
		if i < p.config.Count {
			select {
			case <-ctx.Done():
				stats.Elapsed = time.Since(start)
				return stats, ctx.Err()
			case <-time.After(p.config.Interval):
			}
		}
	}

	stats.Elapsed = time.Since(start)
	return stats, nil
}
