package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultRetryInterval is the default interval between resubmissions.
const DefaultRetryInterval = 5 * time.Second

// Worker periodically resends queued messages.
type Worker struct {
	Logger   *zap.Logger
	Outbox   *Outbox
	Send     SendFunc
	Interval time.Duration
}

// Run resends queued messages until ctx is done. Always returns nil.
func (w *Worker) Run(ctx context.Context) error {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultRetryInterval
	}

	log := w.Logger
	if log == nil {
		log = zap.NewNop()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("outbox worker started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox worker stopped", zap.Int("pending", w.Outbox.Len()))
			return nil
		case <-ticker.C:
			if w.Outbox.Len() == 0 {
				continue
			}

			n, err := w.Outbox.Retry(w.Send)
			if err != nil {
				log.Error("outbox retry failed", zap.Error(err))
				continue
			}

			if n > 0 {
				log.Debug("outbox retry round finished", zap.Int("delivered", n))
			}
		}
	}
}
