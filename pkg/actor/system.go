package actor

import (
	"context"
	"fmt"
	"sync"

	"github.com/libp2p/go-libp2p/core/host"
	"go.uber.org/zap"
)

// Handler processes one message addressed to a named actor and returns the
// reply payload. Handlers run on the actor's mailbox goroutine, so state held
// by a handler needs no synchronization.
type Handler interface {
	Handle(ctx context.Context, payload []byte) ([]byte, error)
}

// HandlerFunc adapts a function to the Handler interface
type HandlerFunc func(ctx context.Context, payload []byte) ([]byte, error)

func (f HandlerFunc) Handle(ctx context.Context, payload []byte) ([]byte, error) {
	return f(ctx, payload)
}

// System owns the local actors and serves the actor protocol on a libp2p host.
// Each registered actor gets a mailbox goroutine that handles messages one at
// a time, preserving strict per-actor ordering.
type System struct {
	host   host.Host
	logger *zap.Logger

	mu     sync.RWMutex
	actors map[string]*mailbox
}

// NewSystem creates an actor system and installs its stream handler on the host
func NewSystem(h host.Host, logger *zap.Logger) *System {
	s := &System{
		host:   h,
		logger: logger,
		actors: make(map[string]*mailbox),
	}
	h.SetStreamHandler(ProtocolID, s.handleStream)
	return s
}

// Spawn registers a named actor and starts its mailbox
func (s *System) Spawn(name string, handler Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.actors[name]; exists {
		return fmt.Errorf("actor %q already registered", name)
	}

	mb := newMailbox(name, handler, s.logger)
	mb.start()
	s.actors[name] = mb

	s.logger.Info("Actor spawned", zap.String("actor", name))
	return nil
}

// Stop shuts down all mailboxes and removes the stream handler
func (s *System) Stop() {
	s.host.RemoveStreamHandler(ProtocolID)

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, mb := range s.actors {
		mb.stop()
		delete(s.actors, name)
	}
}

// Deliver routes a request to the named actor's mailbox and waits for the
// reply. Used by the stream handler and by in-process callers in tests.
func (s *System) Deliver(ctx context.Context, req *Request) *Response {
	s.mu.RLock()
	mb, ok := s.actors[req.Actor]
	s.mu.RUnlock()

	if !ok {
		return &Response{
			ID:    req.ID,
			Error: fmt.Sprintf("no actor registered under %q", req.Actor),
		}
	}

	payload, err := mb.deliver(ctx, req.Payload)
	if err != nil {
		return &Response{ID: req.ID, Error: err.Error()}
	}
	return &Response{ID: req.ID, Payload: payload}
}
