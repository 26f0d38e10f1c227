package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/hubspot_pipeline/config"
)

var ErrExportRunning = errors.New("another export holds the run lock")

func RunLockKey(target string) string {
	return "hubspot-pipeline:export-lock:" + target
}

// ObtainRunLock takes the export lock for target when Redis is connected and
// returns its release func. Without Redis it is a no-op.
func ObtainRunLock(ctx context.Context, target string, ttl time.Duration) (func(), error) {
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}, nil
	}
	lock, err := locker.Obtain(ctx, RunLockKey(target), ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrExportRunning
	}
	if err != nil {
		return nil, err
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			config.GetLogger().WithError(err).Warn("release export lock")
		}
	}, nil
}
