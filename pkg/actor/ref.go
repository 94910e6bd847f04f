package actor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"go.uber.org/zap"
)

const defaultAskTimeout = 30 * time.Second

// Ref is a remote reference to a named actor on a specific peer
type Ref struct {
	host   host.Host
	peer   peer.ID
	name   string
	logger *zap.Logger
}

// NewRef creates a remote actor reference
func NewRef(h host.Host, p peer.ID, name string, logger *zap.Logger) *Ref {
	return &Ref{
		host:   h,
		peer:   p,
		name:   name,
		logger: logger,
	}
}

// Peer returns the peer hosting the actor
func (r *Ref) Peer() peer.ID { return r.peer }

// Name returns the actor's registered name
func (r *Ref) Name() string { return r.name }

// Ask sends a payload to the remote actor and waits for its reply
func (r *Ref) Ask(ctx context.Context, payload []byte) ([]byte, error) {
	request := &Request{
		ID:      uuid.New().String(),
		Actor:   r.name,
		Payload: payload,
	}

	stream, err := r.host.NewStream(ctx, r.peer, ProtocolID)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}
	defer stream.Close()

	// Bound the exchange by the context deadline
	if deadline, ok := ctx.Deadline(); ok {
		stream.SetDeadline(deadline)
	} else {
		stream.SetDeadline(time.Now().Add(defaultAskTimeout))
	}

	requestData, err := request.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	if _, err := stream.Write(requestData); err != nil {
		return nil, fmt.Errorf("failed to write request: %w", err)
	}

	// Close write side to signal end of request
	if err := stream.CloseWrite(); err != nil {
		return nil, fmt.Errorf("failed to close write: %w", err)
	}

	responseData, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var response Response
	if err := response.Unmarshal(responseData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if response.ID != request.ID {
		return nil, fmt.Errorf("response id %q does not match request id %q", response.ID, request.ID)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("actor %q: %s", r.name, response.Error)
	}

	r.logger.Debug("Actor ask completed",
		zap.String("actor", r.name),
		zap.String("peer", r.peer.String()),
		zap.String("id", request.ID))

	return response.Payload, nil
}
