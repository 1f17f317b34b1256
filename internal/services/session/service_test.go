package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triviarelay/internal/store"
)

const testPasskey = "letmein"

func newTestService(t *testing.T) (ISessionService, *clockwork.FakeClock, store.Store) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdc.Close() })

	st := store.NewRedisStore(rdc)
	clk := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := NewSessionService(st, clk, Options{
		Passkey:            testPasskey,
		RoomTTL:            2 * time.Hour,
		StaleThreshold:     45 * time.Second,
		HeartbeatInterval:  30 * time.Second,
		StateTouchInterval: 60 * time.Second,
		CodeAttempts:       5,
	})
	return svc, clk, st
}

func mustCreateRoom(t *testing.T, svc ISessionService) *Room {
	t.Helper()
	room, err := svc.CreateRoom(context.Background())
	require.NoError(t, err)
	return room
}

func mustJoin(t *testing.T, svc ISessionService, roomCode, sessionID string) *JoinResult {
	t.Helper()
	res, err := svc.Join(context.Background(), roomCode, testPasskey, sessionID)
	require.NoError(t, err)
	return res
}

func publishPhase(t *testing.T, svc ISessionService, room *Room, phase Phase) {
	t.Helper()
	err := svc.PublishState(context.Background(), room.RoomCode, room.HostToken, &GameState{
		Phase: phase,
		Total: 20,
	})
	require.NoError(t, err)
}

func TestValidatePasskey(t *testing.T) {
	svc, _, _ := newTestService(t)

	require.NoError(t, svc.ValidatePasskey(testPasskey))
	assert.ErrorIs(t, svc.ValidatePasskey("wrong"), ErrInvalidPasskey)
	assert.ErrorIs(t, svc.ValidatePasskey(""), ErrInvalidPasskey)
}

func TestClassifyChoice(t *testing.T) {
	kind, choice, ok := ClassifyChoice(" b ")
	require.True(t, ok)
	assert.Equal(t, KindAnswer, kind)
	assert.Equal(t, "B", choice)

	kind, choice, ok = ClassifyChoice("Request-Start")
	require.True(t, ok)
	assert.Equal(t, KindCommand, kind)
	assert.Equal(t, CommandRequestStart, choice)

	_, _, ok = ClassifyChoice("E")
	assert.False(t, ok)
	_, _, ok = ClassifyChoice("")
	assert.False(t, ok)
}
