package app

import (
	"context"
	"log/slog"
)

const commandQueueSize = 16

// CommandQueue is the foreground actor: user commands and the capture loop's
// cancel request are posted to it and executed one at a time, in order.
type CommandQueue struct {
	logger *slog.Logger
	ch     chan func()
}

// NewCommandQueue returns an idle queue; call Run to start executing.
func NewCommandQueue(logger *slog.Logger) *CommandQueue {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CommandQueue{logger: logger, ch: make(chan func(), commandQueueSize)}
}

// Post enqueues fn without blocking. It reports false when the queue is full.
func (q *CommandQueue) Post(fn func()) bool {
	if q == nil || fn == nil {
		return false
	}
	select {
	case q.ch <- fn:
		return true
	default:
		q.logger.Warn("command queue full; command dropped")
		return false
	}
}

// Run executes posted commands until ctx is done.
func (q *CommandQueue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-q.ch:
			q.exec(fn)
		}
	}
}

func (q *CommandQueue) exec(fn func()) {
	defer recoverLog(q.logger, "command panic")
	fn()
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		if logger != nil {
			logger.Error(msg, "error", r)
		}
	}
}
