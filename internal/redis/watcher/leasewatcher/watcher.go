// Package leasewatcher turns Redis key-expiry notifications for controller
// leases into push events, so phones on the relay transport learn they lost
// the slot without polling. Purely advisory: the stateless surface discovers
// the same thing through controller_lost on its next call.
package leasewatcher

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const leaseKeyPrefix = "trivia:lease:"

// Notifier is the slice of the ws hub this watcher needs.
type Notifier interface {
	BroadcastEvent(roomCode, event string, body any)
}

// Run subscribes to expiry events and must be started once at service boot.
func Run(ctx context.Context, rdb *redis.Client, hub Notifier) {
	if err := rdb.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err(); err != nil {
		zap.L().Warn("leasewatcher.config", zap.Error(err))
	}
	ps := rdb.PSubscribe(ctx, "__keyevent@*__:expired")
	defer ps.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ps.Channel():
			if !ok {
				return
			}
			if !strings.HasPrefix(m.Payload, leaseKeyPrefix) {
				continue
			}
			roomCode := strings.TrimPrefix(m.Payload, leaseKeyPrefix)
			zap.L().Info("controller_lease_expired", zap.String("roomCode", roomCode))
			hub.BroadcastEvent(roomCode, "controller_lost", map[string]string{"roomCode": roomCode})
		}
	}
}
