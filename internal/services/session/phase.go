package session

import (
	"context"

	"go.uber.org/zap"
)

// PublishState overwrites the room's game state. Only the host drives phase
// transitions; there is no automatic advancement here. Publishing reset or
// splash frees the controller slot and the answer mailbox first, so the next
// guest can join cleanly.
func (svc *sessionService) PublishState(ctx context.Context, roomCode, hostToken string, state *GameState) error {
	room, err := svc.GetRoom(ctx, roomCode)
	if err != nil {
		return err
	}
	if room.HostToken != hostToken {
		return ErrInvalidHostToken
	}
	if state == nil || !state.Phase.Valid() {
		return ErrInvalidPhase
	}

	if state.Phase == PhaseReset || state.Phase == PhaseSplash {
		if err := svc.Release(ctx, roomCode); err != nil {
			return err
		}
		zap.L().Info("controller_released", zap.String("roomCode", roomCode), zap.String("phase", string(state.Phase)))
	}

	now := svc.clock.Now()
	state.UpdatedAt = now
	state.TouchedAt = now
	if err := svc.store.SetJSON(ctx, keyState(roomCode), state, svc.opts.RoomTTL); err != nil {
		return dependencyErr(err)
	}
	return nil
}

// FetchState is the controller's poll: it doubles as the heartbeat that keeps
// the lease fresh (throttled inside Authorize). The state record's TTL is
// extended at most once per StateTouchInterval.
func (svc *sessionService) FetchState(ctx context.Context, roomCode, controllerToken, sessionID string) (*GameState, error) {
	if _, err := svc.Authorize(ctx, roomCode, controllerToken, sessionID); err != nil {
		return nil, err
	}

	state, err := svc.CurrentState(ctx, roomCode)
	if err != nil {
		return nil, err
	}

	now := svc.clock.Now()
	if now.Sub(state.TouchedAt) > svc.opts.StateTouchInterval {
		state.TouchedAt = now
		// A lost write only shortens the TTL horizon.
		if err := svc.store.SetJSON(ctx, keyState(roomCode), state, svc.opts.RoomTTL); err != nil {
			zap.L().Warn("state_touch_write_failed", zap.String("roomCode", roomCode), zap.Error(err))
		}
	}
	return state, nil
}

// CurrentState reads the snapshot without any credential. The push relay uses
// it to seed newly joined connections; state is not a secret.
func (svc *sessionService) CurrentState(ctx context.Context, roomCode string) (*GameState, error) {
	var state GameState
	found, err := svc.store.GetJSON(ctx, keyState(roomCode), &state)
	if err != nil {
		return nil, dependencyErr(err)
	}
	if !found {
		return nil, ErrRoomStateMissing
	}
	return &state, nil
}
