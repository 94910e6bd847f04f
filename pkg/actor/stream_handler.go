package actor

import (
	"context"
	"io"

	"github.com/libp2p/go-libp2p/core/network"
	"go.uber.org/zap"
)

// handleStream handles incoming actor protocol streams
func (s *System) handleStream(stream network.Stream) {
	defer stream.Close()

	// Read request
	data, err := io.ReadAll(stream)
	if err != nil {
		s.logger.Error("Failed to read actor request", zap.Error(err))
		return
	}

	var request Request
	if err := request.Unmarshal(data); err != nil {
		s.logger.Error("Failed to unmarshal actor request", zap.Error(err))
		return
	}

	// Dispatch to the actor's mailbox
	response := s.Deliver(context.Background(), &request)

	// Send response
	responseData, err := response.Marshal()
	if err != nil {
		s.logger.Error("Failed to marshal actor response", zap.Error(err))
		return
	}

	if _, err := stream.Write(responseData); err != nil {
		s.logger.Error("Failed to write actor response", zap.Error(err))
		return
	}

	s.logger.Debug("Handled actor request",
		zap.String("actor", request.Actor),
		zap.String("id", request.ID),
		zap.String("remote", stream.Conn().RemotePeer().String()),
		zap.Bool("success", response.Error == ""),
	)
}
