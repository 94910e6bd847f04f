package actor

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const mailboxCapacity = 64

// envelope pairs a payload with the channel its reply is sent on
type envelope struct {
	ctx     context.Context
	payload []byte
	reply   chan result
}

type result struct {
	payload []byte
	err     error
}

// mailbox serializes message handling for one actor. All handler invocations
// happen on the mailbox goroutine, so actor state needs no locks.
type mailbox struct {
	name    string
	handler Handler
	logger  *zap.Logger
	inbox   chan envelope
	done    chan struct{}
}

func newMailbox(name string, handler Handler, logger *zap.Logger) *mailbox {
	return &mailbox{
		name:    name,
		handler: handler,
		logger:  logger,
		inbox:   make(chan envelope, mailboxCapacity),
		done:    make(chan struct{}),
	}
}

func (m *mailbox) start() {
	go m.run()
}

func (m *mailbox) run() {
	for {
		select {
		case <-m.done:
			return
		case env := <-m.inbox:
			payload, err := m.handler.Handle(env.ctx, env.payload)
			select {
			case env.reply <- result{payload: payload, err: err}:
			case <-env.ctx.Done():
				m.logger.Debug("Caller gone before actor reply",
					zap.String("actor", m.name))
			}
		}
	}
}

func (m *mailbox) stop() {
	close(m.done)
}

// deliver enqueues a message and blocks until the actor replies or the
// context is canceled
func (m *mailbox) deliver(ctx context.Context, payload []byte) ([]byte, error) {
	env := envelope{
		ctx:     ctx,
		payload: payload,
		reply:   make(chan result, 1),
	}

	select {
	case m.inbox <- env:
	case <-m.done:
		return nil, fmt.Errorf("actor %q stopped", m.name)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-env.reply:
		return res.payload, res.err
	case <-m.done:
		return nil, fmt.Errorf("actor %q stopped", m.name)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
