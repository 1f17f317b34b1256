package redis_client

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects, pings, and returns a ready client.
// Every room key lives in this one Redis, so the pool is sized generously.
func NewRedisClient(host string, port uint16) (*redis.Client, error) {
	poolSize := runtime.NumCPU() * 8
	if poolSize > 256 {
		poolSize = 256
	}

	rdc := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		PoolSize:     poolSize,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdc.Ping(ctx).Err(); err != nil {
		err = errors.New("Redis connection failed: " + err.Error())
		zap.L().Error("redis_connect", zap.Error(err))
		return nil, err
	}
	return rdc, nil
}
