package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	auditdomain "org-membership-service/internal/audit/domain"
)

// emitTimeout is the max time allowed for a single async emit.
const emitTimeout = 5 * time.Second

// EntryEmitter forwards one audit entry to an external sink.
type EntryEmitter interface {
	Emit(ctx context.Context, entry *auditdomain.AuditLog) error
}

// AsyncEmitter runs the wrapped emitter in a goroutine so the request path is not blocked.
// Best-effort: failures are logged. Wait drains in-flight emits before the sink shuts down.
type AsyncEmitter struct {
	next EntryEmitter
	log  logrus.FieldLogger
	wg   sync.WaitGroup
}

// NewAsyncEmitter wraps next. log may be nil.
func NewAsyncEmitter(next EntryEmitter, log logrus.FieldLogger) *AsyncEmitter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AsyncEmitter{next: next, log: log}
}

// Emit schedules entry and returns immediately. The goroutine uses context.Background() with
// emitTimeout so request cancellation does not abort an in-flight emit.
func (a *AsyncEmitter) Emit(_ context.Context, entry *auditdomain.AuditLog) error {
	if a == nil || a.next == nil || entry == nil {
		return nil
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		emitCtx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := a.next.Emit(emitCtx, entry); err != nil {
			a.log.WithError(err).WithField("action", entry.Action).Warn("telemetry: async emit failed")
		}
	}()
	return nil
}

// Wait blocks until all scheduled emits finish or ctx is done.
func (a *AsyncEmitter) Wait(ctx context.Context) error {
	if a == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
