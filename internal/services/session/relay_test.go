package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitGatedOnLivePhase(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	room := mustCreateRoom(t, svc)
	res := mustJoin(t, svc, room.RoomCode, "s1")

	// Fresh rooms sit in splash: answers bounce.
	_, err := svc.Submit(ctx, room.RoomCode, res.ControllerToken, "s1", "B")
	assert.ErrorIs(t, err, ErrNotAcceptingAnswers)

	publishPhase(t, svc, room, PhaseLive)

	seq, err := svc.Submit(ctx, room.RoomCode, res.ControllerToken, "s1", "B")
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	publishPhase(t, svc, room, PhaseReveal)
	_, err = svc.Submit(ctx, room.RoomCode, res.ControllerToken, "s1", "C")
	assert.ErrorIs(t, err, ErrNotAcceptingAnswers)
}

// Control commands are out-of-band: request-start exists for exactly the
// phases where answers are refused.
func TestCommandsBypassPhaseGate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	room := mustCreateRoom(t, svc)
	res := mustJoin(t, svc, room.RoomCode, "s1")

	seq, err := svc.Submit(ctx, room.RoomCode, res.ControllerToken, "s1", CommandRequestStart)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	poll, err := svc.Poll(ctx, room.RoomCode, room.HostToken, 0)
	require.NoError(t, err)
	require.NotNil(t, poll.Answer)
	assert.Equal(t, KindCommand, poll.Answer.Kind)
	assert.Equal(t, CommandRequestStart, poll.Answer.Choice)
}

func TestSubmitRequiresLease(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	room := mustCreateRoom(t, svc)
	res := mustJoin(t, svc, room.RoomCode, "s1")
	publishPhase(t, svc, room, PhaseLive)

	_, err := svc.Submit(ctx, room.RoomCode, "ctrl_forged", "s1", "B")
	assert.ErrorIs(t, err, ErrControllerLost)

	_, err = svc.Submit(ctx, room.RoomCode, res.ControllerToken, "s2", "B")
	assert.ErrorIs(t, err, ErrControllerLost)
}

func TestSubmitRejectsUnknownChoice(t *testing.T) {
	svc, _, _ := newTestService(t)
	room := mustCreateRoom(t, svc)
	res := mustJoin(t, svc, room.RoomCode, "s1")
	publishPhase(t, svc, room, PhaseLive)

	_, err := svc.Submit(context.Background(), room.RoomCode, res.ControllerToken, "s1", "Z")
	assert.ErrorIs(t, err, ErrInvalidChoice)
}

// Sequence numbers strictly increase across answers and interleaved commands.
func TestSequenceStrictlyIncreasing(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	room := mustCreateRoom(t, svc)
	res := mustJoin(t, svc, room.RoomCode, "s1")
	publishPhase(t, svc, room, PhaseLive)

	var last int64
	for _, choice := range []string{"A", CommandRequestStart, "B", "C", CommandRequestReset, "D"} {
		seq, err := svc.Submit(ctx, room.RoomCode, res.ControllerToken, "s1", choice)
		require.NoError(t, err)
		assert.Greater(t, seq, last)
		last = seq
	}
	assert.Equal(t, int64(6), last)
}

// The envelope is a last-value mailbox: only the most recent submission
// survives a slow poller.
func TestMailboxKeepsLatestOnly(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	room := mustCreateRoom(t, svc)
	res := mustJoin(t, svc, room.RoomCode, "s1")
	publishPhase(t, svc, room, PhaseLive)

	for _, choice := range []string{"A", "B", "C"} {
		_, err := svc.Submit(ctx, room.RoomCode, res.ControllerToken, "s1", choice)
		require.NoError(t, err)
	}

	poll, err := svc.Poll(ctx, room.RoomCode, room.HostToken, 0)
	require.NoError(t, err)
	require.NotNil(t, poll.Answer)
	assert.Equal(t, int64(3), poll.Seq)
	assert.Equal(t, "C", poll.Answer.Choice)
}

func TestPollWatermark(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	room := mustCreateRoom(t, svc)
	res := mustJoin(t, svc, room.RoomCode, "s1")
	publishPhase(t, svc, room, PhaseLive)

	_, err := svc.Submit(ctx, room.RoomCode, res.ControllerToken, "s1", "B")
	require.NoError(t, err)

	got, err := svc.Poll(ctx, room.RoomCode, room.HostToken, 0)
	require.NoError(t, err)
	require.NotNil(t, got.Answer)
	assert.Equal(t, int64(1), got.Seq)
	assert.Equal(t, "B", got.Answer.Choice)
	assert.Equal(t, "s1", got.Answer.SessionID)

	// Watermark caught up: same seq, no envelope.
	got, err = svc.Poll(ctx, room.RoomCode, room.HostToken, 1)
	require.NoError(t, err)
	assert.Nil(t, got.Answer)
	assert.Equal(t, int64(1), got.Seq)
}

func TestPollRequiresHostToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	room := mustCreateRoom(t, svc)

	_, err := svc.Poll(ctx, room.RoomCode, "host_forged", 0)
	assert.ErrorIs(t, err, ErrInvalidHostToken)

	_, err = svc.Poll(ctx, "NOSUCH", room.HostToken, 0)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

// RecordAnswer is the push-relay path: no lease, same sequence discipline.
func TestRecordAnswerSharesSequence(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	room := mustCreateRoom(t, svc)
	res := mustJoin(t, svc, room.RoomCode, "s1")
	publishPhase(t, svc, room, PhaseLive)

	env, err := svc.RecordAnswer(ctx, room.RoomCode, "u1", "A")
	require.NoError(t, err)
	assert.Equal(t, int64(1), env.Seq)
	assert.Equal(t, KindAnswer, env.Kind)

	seq, err := svc.Submit(ctx, room.RoomCode, res.ControllerToken, "s1", "B")
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)
}
