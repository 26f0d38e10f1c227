package config

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	rdb    *redis.Client
	locker *redislock.Client
)

// Redis is optional for every tool: with no client the helpers below are
// no-ops and report cache misses.

func GetRedisLock() *redislock.Client {
	return locker
}

func GetRedisValue(ctx context.Context, key string) (string, bool, error) {
	if rdb == nil {
		return "", false, nil
	}
	val, err := rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

func SetRedisValue(ctx context.Context, key string, value string, exp time.Duration) error {
	if rdb == nil {
		return nil
	}
	return rdb.Set(ctx, key, value, exp).Err()
}

// ConnectRedis pings once and sets the global Redis client + lock client.
// An empty address leaves Redis disabled.
func ConnectRedis(ctx context.Context, addr, password string) error {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0, // use default DB
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return err
	}
	rdb = client
	locker = redislock.New(rdb)
	logg.WithFields(logrus.Fields{"addr": addr}).Info("connected to redis")
	return nil
}

func CloseRedis() {
	if rdb == nil {
		return
	}
	_ = rdb.Close()
	rdb = nil
	locker = nil
}
