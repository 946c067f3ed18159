package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	sweepInterval  = time.Minute
	sessionTimeout = time.Hour
)

const expiryNotice = "Your form has expired! Please execute the command again in the server to start a new form."

// RunSweeper reclaims abandoned sessions until ctx is cancelled. It is
// the only forced termination path a session has; age is measured from
// creation, not last activity.
func (e *Engine) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.SweepOnce(ctx)
		}
	}
}

// SweepOnce expires every session older than the timeout and returns
// how many were removed. Holding each session's lock while expiring it
// keeps a sweep from tearing a session out from under an answer that
// is being processed for the same user.
func (e *Engine) SweepOnce(ctx context.Context) int {
	now := e.now()
	expired := 0
	for _, s := range e.store.Snapshot() {
		s.mu.Lock()
		if !s.closed && now.Sub(s.StartedAt) > e.timeout {
			s.closed = true
			e.store.Delete(s)
			_ = e.transport.SendMessage(ctx, s.DMChat, expiryNotice)
			e.log.Info("form session expired", zap.Int64("user", s.User), zap.Int64("form", s.Form.ID))
			expired++
		}
		s.mu.Unlock()
	}
	return expired
}
