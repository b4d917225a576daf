package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/web3ix-api/internal/metrics"
	"go.uber.org/zap"
)

type expiredCodeStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Reaper periodically removes expired verification codes. Expiry is already
// enforced on read, so this only reclaims storage that DynamoDB TTL has not
// swept yet.
type Reaper struct {
	cron    *cron.Cron
	store   expiredCodeStore
	log     *zap.Logger
	metrics *metrics.Provisioning
	timeout time.Duration
	now     func() time.Time
}

func NewReaper(store expiredCodeStore, log *zap.Logger, m *metrics.Provisioning) *Reaper {
	return &Reaper{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		store:   store,
		log:     log,
		metrics: m,
		timeout: time.Minute,
		now:     time.Now,
	}
}

// Start registers the sweep on schedule (standard cron or @every syntax)
// and starts the scheduler.
func (r *Reaper) Start(schedule string) error {
	if _, err := r.cron.AddFunc(schedule, r.sweep); err != nil {
		return fmt.Errorf("register code reaper %q: %w", schedule, err)
	}
	r.cron.Start()
	r.log.Info("code reaper started", zap.String("schedule", schedule))
	return nil
}

// Stop waits for a running sweep to finish or ctx to expire.
func (r *Reaper) Stop(ctx context.Context) {
	select {
	case <-r.cron.Stop().Done():
		r.log.Info("code reaper stopped")
	case <-ctx.Done():
		r.log.Warn("code reaper stop timed out")
	}
}

func (r *Reaper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	n, err := r.store.DeleteExpired(ctx, r.now())
	r.metrics.Reaped(n)
	if err != nil {
		r.log.Error("expired code sweep failed", zap.Int("deleted", n), zap.Error(err))
		return
	}
	if n > 0 {
		r.log.Info("expired codes removed", zap.Int("deleted", n))
	}
}
