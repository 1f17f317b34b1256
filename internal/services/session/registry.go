package session

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// CreateRoom allocates a fresh room code and seeds its three records: the
// metadata, a splash state, and an empty answer envelope. The three writes
// are not atomic as a group; a crash in between leaves a partially
// initialized room, which readers surface as room_state_missing and treat as
// "retry or wait", not as fatal.
func (svc *sessionService) CreateRoom(ctx context.Context) (*Room, error) {
	for attempt := 0; attempt < svc.opts.CodeAttempts; attempt++ {
		code, err := newRoomCode()
		if err != nil {
			return nil, dependencyErr(err)
		}

		var existing Room
		taken, err := svc.store.GetJSON(ctx, keyRoom(code), &existing)
		if err != nil {
			return nil, dependencyErr(err)
		}
		if taken {
			zap.L().Debug("room_code_collision", zap.String("roomCode", code))
			continue
		}

		now := svc.clock.Now()
		room := &Room{
			RoomCode:  code,
			HostToken: newToken("host"),
			CreatedAt: now,
			Active:    true,
		}
		if err := svc.store.SetJSON(ctx, keyRoom(code), room, svc.opts.RoomTTL); err != nil {
			return nil, dependencyErr(err)
		}
		if err := svc.store.SetJSON(ctx, keyState(code), NewSplashState(now), svc.opts.RoomTTL); err != nil {
			return nil, dependencyErr(err)
		}
		if err := svc.store.SetJSON(ctx, keyAnswer(code), &AnswerEnvelope{}, svc.opts.RoomTTL); err != nil {
			return nil, dependencyErr(err)
		}
		return room, nil
	}
	return nil, ErrAllocationExhausted
}

func (svc *sessionService) GetRoom(ctx context.Context, roomCode string) (*Room, error) {
	var room Room
	found, err := svc.store.GetJSON(ctx, keyRoom(roomCode), &room)
	if err != nil {
		return nil, dependencyErr(err)
	}
	if !found || room.HostToken == "" {
		return nil, ErrRoomNotFound
	}
	return &room, nil
}

// CloseRoom marks the room logically deleted and frees the controller slot.
// The records stay in the store until TTL reclaims them. Idempotent: closing
// a missing or already-closed room succeeds.
func (svc *sessionService) CloseRoom(ctx context.Context, roomCode, hostToken string) error {
	room, err := svc.GetRoom(ctx, roomCode)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return nil
		}
		return err
	}
	if room.HostToken != hostToken {
		return ErrInvalidHostToken
	}
	if room.Active {
		room.Active = false
		if err := svc.store.SetJSON(ctx, keyRoom(roomCode), room, svc.opts.RoomTTL); err != nil {
			return dependencyErr(err)
		}
	}
	return svc.Release(ctx, roomCode)
}
