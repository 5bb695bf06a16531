// Package notify sends account emails in the background. Callers enqueue and
// return immediately; delivery failures are logged and never reported back.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"taskmanager/internal/logging"
)

const sendTimeout = 10 * time.Second

// Notifier sends account lifecycle emails without blocking the caller.
type Notifier interface {
	SendWelcome(ctx context.Context, email, name string)
	SendCancellation(ctx context.Context, email, name string)
}

// Dispatcher queues messages on a buffered channel drained by one worker.
type Dispatcher struct {
	sender Sender
	logger logging.Logger
	queue  chan Message
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

var _ Notifier = (*Dispatcher)(nil)

// NewDispatcher starts a dispatcher with room for size pending messages.
func NewDispatcher(sender Sender, logger logging.Logger, size int) *Dispatcher {
	d := &Dispatcher{
		sender: sender,
		logger: logger,
		queue:  make(chan Message, size),
		done:   make(chan struct{}),
	}

	// Start async mail worker
	go d.worker()

	return d
}

// SendWelcome queues the welcome email for a new account.
func (d *Dispatcher) SendWelcome(ctx context.Context, email, name string) {
	d.enqueue(ctx, Message{
		To:      email,
		ToName:  name,
		Subject: "Welcome to the Task Manager App!",
		Text:    fmt.Sprintf("Welcome to the app, %s. Let me know how you get along with the app!", name),
	})
}

// SendCancellation queues the goodbye email for a deleted account.
func (d *Dispatcher) SendCancellation(ctx context.Context, email, name string) {
	d.enqueue(ctx, Message{
		To:      email,
		ToName:  name,
		Subject: "We're sorry to see you go!",
		Text: fmt.Sprintf("%s, thank you for being a great member of this app and we're sorry to see you go. "+
			"If you wouldn't mind leaving a review of what made you leave our app, that can help us improve "+
			"to make the experience better.\n\nWe look forward to hearing from you soon", name),
	})
}

// enqueue never blocks: when the queue is full or closed the message is dropped.
func (d *Dispatcher) enqueue(ctx context.Context, msg Message) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn(ctx, "mail dropped: dispatcher closed", "to", msg.To, "subject", msg.Subject)
		return
	}

	select {
	case d.queue <- msg:
	default:
		d.logger.Warn(ctx, "mail dropped: queue full", "to", msg.To, "subject", msg.Subject)
	}
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := d.sender.Send(ctx, msg); err != nil {
			d.logger.Error(ctx, "mail delivery failed", "to", msg.To, "subject", msg.Subject, "error", err)
		}
		cancel()
	}
}

// Close stops accepting messages and waits until the queue is drained or ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
