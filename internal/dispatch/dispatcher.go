// Package dispatch serializes inbound events per user
package dispatch

import (
	"context"
	"errors"
	"sync"

	"schedulebot/internal/domain"

	"go.uber.org/zap"
)

// ErrClosed is returned by Submit after Close
var ErrClosed = errors.New("dispatcher closed")

// Handler processes one event
type Handler interface {
	Handle(ctx context.Context, ev domain.Event) error
}

// Dispatcher runs events of one user strictly in arrival order while
// different users are handled concurrently. Each user with pending events
// owns a mailbox drained by a single goroutine.
type Dispatcher struct {
	handler Handler
	logger  *zap.Logger

	mu        sync.Mutex
	mailboxes map[int64][]domain.Event
	closed    bool
	wg        sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a dispatcher delivering events to handler
func New(handler Handler, logger *zap.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		handler:   handler,
		logger:    logger,
		mailboxes: make(map[int64][]domain.Event),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Submit queues an event for its user
func (d *Dispatcher) Submit(ev domain.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	queue, running := d.mailboxes[ev.PeerID]
	d.mailboxes[ev.PeerID] = append(queue, ev)
	if !running {
		d.wg.Add(1)
		go d.drain(ev.PeerID)
	}
	return nil
}

// drain handles queued events of a user until the mailbox is empty
func (d *Dispatcher) drain(peerID int64) {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		queue := d.mailboxes[peerID]
		if len(queue) == 0 {
			delete(d.mailboxes, peerID)
			d.mu.Unlock()
			return
		}
		ev := queue[0]
		d.mailboxes[peerID] = queue[1:]
		d.mu.Unlock()

		d.handle(ev)
	}
}

func (d *Dispatcher) handle(ev domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Panic while handling event",
				zap.Int64("user_id", ev.PeerID),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()

	if err := d.handler.Handle(d.ctx, ev); err != nil {
		d.logger.Warn("Failed to handle event", zap.Int64("user_id", ev.PeerID), zap.Error(err))
	}
}

// Close stops accepting events and waits for queued ones to finish.
// Handlers still running when ctx expires see their context cancelled.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}
