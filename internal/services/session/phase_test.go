package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishStateOverwritesAndStamps(t *testing.T) {
	svc, clk, _ := newTestService(t)
	ctx := context.Background()
	room := mustCreateRoom(t, svc)

	clk.Advance(5 * time.Minute)
	deadline := clk.Now().Add(30 * time.Second)
	err := svc.PublishState(ctx, room.RoomCode, room.HostToken, &GameState{
		Phase:          PhaseLive,
		Total:          20,
		QuestionIndex:  3,
		Score:          2,
		QuestionEndsAt: &deadline,
	})
	require.NoError(t, err)

	state, err := svc.CurrentState(ctx, room.RoomCode)
	require.NoError(t, err)
	assert.Equal(t, PhaseLive, state.Phase)
	assert.Equal(t, 3, state.QuestionIndex)
	assert.True(t, state.UpdatedAt.Equal(clk.Now()))
	require.NotNil(t, state.QuestionEndsAt)
}

func TestPublishStateGuards(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	room := mustCreateRoom(t, svc)

	err := svc.PublishState(ctx, room.RoomCode, "host_forged", &GameState{Phase: PhaseLive})
	assert.ErrorIs(t, err, ErrInvalidHostToken)

	err = svc.PublishState(ctx, "NOSUCH", room.HostToken, &GameState{Phase: PhaseLive})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	err = svc.PublishState(ctx, room.RoomCode, room.HostToken, &GameState{Phase: "warmup"})
	assert.ErrorIs(t, err, ErrInvalidPhase)

	err = svc.PublishState(ctx, room.RoomCode, room.HostToken, nil)
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

// Entering reset clears the lease and the answer envelope; the old controller
// token dies with it.
func TestResetReleasesControllerAndMailbox(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	room := mustCreateRoom(t, svc)
	res := mustJoin(t, svc, room.RoomCode, "s1")
	publishPhase(t, svc, room, PhaseLive)

	_, err := svc.Submit(ctx, room.RoomCode, res.ControllerToken, "s1", "B")
	require.NoError(t, err)

	publishPhase(t, svc, room, PhaseReset)

	_, err = svc.Authorize(ctx, room.RoomCode, res.ControllerToken, "s1")
	assert.ErrorIs(t, err, ErrControllerLost)

	poll, err := svc.Poll(ctx, room.RoomCode, room.HostToken, 0)
	require.NoError(t, err)
	assert.Nil(t, poll.Answer)

	// The next guest starts clean, no takeover needed.
	next := mustJoin(t, svc, room.RoomCode, "s2")
	assert.False(t, next.Resumed)
	assert.False(t, next.Takeover)
}

func TestReturnToSplashAlsoReleases(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	room := mustCreateRoom(t, svc)
	res := mustJoin(t, svc, room.RoomCode, "s1")

	publishPhase(t, svc, room, PhaseSplash)

	_, err := svc.Authorize(ctx, room.RoomCode, res.ControllerToken, "s1")
	assert.ErrorIs(t, err, ErrControllerLost)
}

func TestRevealKeepsLease(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	room := mustCreateRoom(t, svc)
	res := mustJoin(t, svc, room.RoomCode, "s1")

	publishPhase(t, svc, room, PhaseLive)
	publishPhase(t, svc, room, PhaseReveal)

	_, err := svc.Authorize(ctx, room.RoomCode, res.ControllerToken, "s1")
	require.NoError(t, err)
}

func TestFetchStateRequiresLease(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	room := mustCreateRoom(t, svc)
	res := mustJoin(t, svc, room.RoomCode, "s1")

	state, err := svc.FetchState(ctx, room.RoomCode, res.ControllerToken, "s1")
	require.NoError(t, err)
	assert.Equal(t, PhaseSplash, state.Phase)

	_, err = svc.FetchState(ctx, room.RoomCode, "ctrl_forged", "s1")
	assert.ErrorIs(t, err, ErrControllerLost)
}

// A half-initialized room (metadata without state) is retryable, not fatal.
func TestMissingStateIsRetryable(t *testing.T) {
	svc, _, st := newTestService(t)
	ctx := context.Background()
	room := mustCreateRoom(t, svc)
	res := mustJoin(t, svc, room.RoomCode, "s1")

	require.NoError(t, st.Del(ctx, keyState(room.RoomCode)))

	_, err := svc.FetchState(ctx, room.RoomCode, res.ControllerToken, "s1")
	assert.ErrorIs(t, err, ErrRoomStateMissing)

	// Answers are refused rather than erroring hard.
	_, err = svc.Submit(ctx, room.RoomCode, res.ControllerToken, "s1", "B")
	assert.ErrorIs(t, err, ErrNotAcceptingAnswers)
}

func TestFetchStateTouchThrottle(t *testing.T) {
	svc, clk, st := newTestService(t)
	ctx := context.Background()
	room := mustCreateRoom(t, svc)
	res := mustJoin(t, svc, room.RoomCode, "s1")
	createdAt := clk.Now()

	readState := func() GameState {
		var s GameState
		found, err := st.GetJSON(ctx, keyState(room.RoomCode), &s)
		require.NoError(t, err)
		require.True(t, found)
		return s
	}

	clk.Advance(30 * time.Second)
	_, err := svc.FetchState(ctx, room.RoomCode, res.ControllerToken, "s1")
	require.NoError(t, err)
	assert.True(t, readState().TouchedAt.Equal(createdAt), "no touch inside the interval")

	clk.Advance(45 * time.Second) // 75s since creation, past the 60s interval
	_, err = svc.FetchState(ctx, room.RoomCode, res.ControllerToken, "s1")
	require.NoError(t, err)
	assert.True(t, readState().TouchedAt.Equal(clk.Now()), "touched once past the interval")
}
