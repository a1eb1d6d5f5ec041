// internal/app/system/workers/sessioncleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/information/internal/app/system/timeouts"
	"github.com/dalemusser/information/internal/app/system/websession"
	"go.uber.org/zap"
)

// DefaultSweepInterval is how often expired sessions are removed.
const DefaultSweepInterval = 10 * time.Minute

// SessionCleanup is a background worker that removes expired sessions from
// backends without native expiry (in-memory and filesystem).
type SessionCleanup struct {
	sweeper  websession.Sweeper
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSessionCleanup creates a session cleanup worker. A non-positive interval
// uses DefaultSweepInterval.
func NewSessionCleanup(sweeper websession.Sweeper, logger *zap.Logger, interval time.Duration) *SessionCleanup {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &SessionCleanup{
		sweeper:  sweeper,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *SessionCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("session cleanup worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. It is safe to
// call more than once.
func (w *SessionCleanup) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("session cleanup worker stopped")
	})
}

func (w *SessionCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

func (w *SessionCleanup) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*timeouts.Session())
	defer cancel()

	count, err := w.sweeper.Sweep(ctx)
	if err != nil {
		w.log.Error("failed to remove expired sessions", zap.Error(err))
		return
	}
	if count > 0 {
		w.log.Info("removed expired sessions", zap.Int("count", count))
	}
}
