package worker

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sweepLockKey = "upload_sweep_lock"

type uploadRemover interface {
	RemoveOlderThan(age time.Duration) (int, error)
}

// Sweeper periodically deletes uploads that outlived their request, e.g. after
// a crash between save and remove. With Redis configured only one replica
// sweeps per interval.
type Sweeper struct {
	uploads   uploadRemover
	redis     *redis.Client
	interval  time.Duration
	retention time.Duration
	log       *zap.SugaredLogger
	stopChan  chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
}

func NewSweeper(uploads uploadRemover, redisClient *redis.Client, interval, retention time.Duration, log *zap.SugaredLogger) *Sweeper {
	return &Sweeper{
		uploads:   uploads,
		redis:     redisClient,
		interval:  interval,
		retention: retention,
		log:       log,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	if s.interval <= 0 {
		close(s.done)
		s.log.Info("Upload sweeper disabled")
		return
	}

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				s.log.Info("Upload sweeper shutting down")
				return
			case <-ticker.C:
				s.sweepOnce(context.Background())
			}
		}
	}()

	s.log.Infow("Started upload sweeper", "interval", s.interval, "retention", s.retention)
}

// Stop halts the sweeper and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	<-s.done
}

func (s *Sweeper) sweepOnce(ctx context.Context) int {
	if s.redis != nil {
		// Held for most of an interval so slower replicas skip this round.
		locked, err := s.redis.SetNX(ctx, sweepLockKey, "1", s.interval*9/10).Result()
		if err != nil {
			s.log.Warnw("Upload sweep lock failed", "error", err)
			return 0
		}
		if !locked {
			return 0
		}
	}

	removed, err := s.uploads.RemoveOlderThan(s.retention)
	if err != nil {
		s.log.Warnw("Upload sweep incomplete", "removed", removed, "error", err)
	} else if removed > 0 {
		s.log.Infow("Removed stale uploads", "count", removed)
	}
	return removed
}
