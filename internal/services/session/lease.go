package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Join grants, resumes, or takes over the single controller slot of a room.
//
// Two concurrent joins race on a read-then-write of the lease key with no
// cross-request lock; the store's single-key set atomicity means last write
// wins. There is a narrow window where two takeovers can both believe they
// succeeded. Accepted: the loser's next Authorize fails with controller_lost.
func (svc *sessionService) Join(ctx context.Context, roomCode, passkey, sessionID string) (*JoinResult, error) {
	if err := svc.ValidatePasskey(passkey); err != nil {
		return nil, err
	}
	room, err := svc.GetRoom(ctx, roomCode)
	if err != nil {
		return nil, err
	}
	if !room.Active {
		return nil, ErrRoomNotFound
	}

	var lease Lease
	held, err := svc.store.GetJSON(ctx, keyLease(roomCode), &lease)
	if err != nil {
		return nil, dependencyErr(err)
	}
	now := svc.clock.Now()

	if held && lease.ControllerToken != "" {
		// Same session reconnecting: refresh and hand back the same token.
		if lease.SessionID == sessionID {
			lease.LastSeen = now
			if err := svc.store.SetJSON(ctx, keyLease(roomCode), &lease, svc.opts.RoomTTL); err != nil {
				return nil, dependencyErr(err)
			}
			return &JoinResult{RoomCode: roomCode, ControllerToken: lease.ControllerToken, Resumed: true}, nil
		}

		// Different session: only a stale controller may be kicked.
		if now.Sub(lease.LastSeen) <= svc.opts.StaleThreshold {
			return nil, ErrControllerTaken
		}
		fresh := mintLease(sessionID, now)
		if err := svc.store.SetJSON(ctx, keyLease(roomCode), fresh, svc.opts.RoomTTL); err != nil {
			return nil, dependencyErr(err)
		}
		zap.L().Info("controller_takeover",
			zap.String("roomCode", roomCode),
			zap.Duration("staleness", now.Sub(lease.LastSeen)),
		)
		return &JoinResult{RoomCode: roomCode, ControllerToken: fresh.ControllerToken, Takeover: true}, nil
	}

	fresh := mintLease(sessionID, now)
	if err := svc.store.SetJSON(ctx, keyLease(roomCode), fresh, svc.opts.RoomTTL); err != nil {
		return nil, dependencyErr(err)
	}
	return &JoinResult{RoomCode: roomCode, ControllerToken: fresh.ControllerToken}, nil
}

// Authorize checks that the caller holds the current lease, requiring an
// exact match on both token and session. On success the lastSeen heartbeat is
// refreshed at most once per HeartbeatInterval to bound write amplification.
func (svc *sessionService) Authorize(ctx context.Context, roomCode, controllerToken, sessionID string) (*Lease, error) {
	var lease Lease
	held, err := svc.store.GetJSON(ctx, keyLease(roomCode), &lease)
	if err != nil {
		return nil, dependencyErr(err)
	}
	if !held || lease.ControllerToken == "" {
		return nil, ErrControllerLost
	}
	if lease.ControllerToken != controllerToken || lease.SessionID != sessionID {
		return nil, ErrControllerLost
	}

	now := svc.clock.Now()
	if now.Sub(lease.LastSeen) > svc.opts.HeartbeatInterval {
		lease.LastSeen = now
		// Opportunistic refresh; a failed write must not fail an authorized
		// request.
		if err := svc.store.SetJSON(ctx, keyLease(roomCode), &lease, svc.opts.RoomTTL); err != nil {
			zap.L().Warn("lease_heartbeat_write_failed", zap.String("roomCode", roomCode), zap.Error(err))
		}
	}
	return &lease, nil
}

// Release frees the controller slot together with the answer mailbox and its
// sequence counter. Idempotent.
func (svc *sessionService) Release(ctx context.Context, roomCode string) error {
	err := svc.store.Del(ctx, keyLease(roomCode), keyAnswer(roomCode), keySeq(roomCode))
	if err != nil {
		return dependencyErr(err)
	}
	return nil
}

func mintLease(sessionID string, now time.Time) *Lease {
	return &Lease{
		ControllerToken: newToken("ctrl"),
		SessionID:       sessionID,
		JoinedAt:        now,
		LastSeen:        now,
	}
}
