package session

import (
	"context"
	"errors"
)

// Submit accepts one answer or control command from the authorized
// controller. The sequence is advanced through the store's atomic increment,
// never by read-modify-write, so two concurrent submissions can never mint
// the same number. Only the latest envelope is retained (last-value mailbox):
// a host polling too slowly misses intermediate submissions.
func (svc *sessionService) Submit(ctx context.Context, roomCode, controllerToken, sessionID, choice string) (int64, error) {
	kind, normalized, ok := ClassifyChoice(choice)
	if !ok {
		return 0, ErrInvalidChoice
	}
	if _, err := svc.Authorize(ctx, roomCode, controllerToken, sessionID); err != nil {
		return 0, err
	}

	// Answers are gated on the live phase. Control commands are out-of-band:
	// request-start exists precisely for the phases where answers are not
	// accepted.
	if kind == KindAnswer {
		if err := svc.requireLive(ctx, roomCode); err != nil {
			return 0, err
		}
	}

	env, err := svc.storeEnvelope(ctx, roomCode, kind, normalized, sessionID)
	if err != nil {
		return 0, err
	}
	return env.Seq, nil
}

// RecordAnswer is the push-relay variant of Submit: authorization is
// connection-scoped on that transport, so no lease check happens here. The
// store still assigns the sequence and keeps the envelope so a host can
// resynchronize after a reconnect.
func (svc *sessionService) RecordAnswer(ctx context.Context, roomCode, sessionID, choice string) (*AnswerEnvelope, error) {
	kind, normalized, ok := ClassifyChoice(choice)
	if !ok {
		return nil, ErrInvalidChoice
	}
	if kind == KindAnswer {
		if err := svc.requireLive(ctx, roomCode); err != nil {
			return nil, err
		}
	}
	return svc.storeEnvelope(ctx, roomCode, kind, normalized, sessionID)
}

// Poll hands the host the current envelope if it is newer than the host's
// watermark, else a nil answer with the current sequence so the watermark can
// still advance.
func (svc *sessionService) Poll(ctx context.Context, roomCode, hostToken string, afterSeq int64) (*PollResult, error) {
	room, err := svc.GetRoom(ctx, roomCode)
	if err != nil {
		return nil, err
	}
	if room.HostToken != hostToken {
		return nil, ErrInvalidHostToken
	}

	var env AnswerEnvelope
	found, err := svc.store.GetJSON(ctx, keyAnswer(roomCode), &env)
	if err != nil {
		return nil, dependencyErr(err)
	}
	if !found || env.Seq == 0 {
		return &PollResult{Seq: afterSeq}, nil
	}
	if env.Seq > afterSeq {
		return &PollResult{Seq: env.Seq, Answer: &env}, nil
	}
	return &PollResult{Seq: env.Seq}, nil
}

func (svc *sessionService) requireLive(ctx context.Context, roomCode string) error {
	state, err := svc.CurrentState(ctx, roomCode)
	if err != nil {
		if errors.Is(err, ErrRoomStateMissing) {
			return ErrNotAcceptingAnswers
		}
		return err
	}
	if state.Phase != PhaseLive {
		return ErrNotAcceptingAnswers
	}
	return nil
}

func (svc *sessionService) storeEnvelope(ctx context.Context, roomCode string, kind EnvelopeKind, choice, sessionID string) (*AnswerEnvelope, error) {
	seq, err := svc.store.Incr(ctx, keySeq(roomCode), svc.opts.RoomTTL)
	if err != nil {
		return nil, dependencyErr(err)
	}
	env := &AnswerEnvelope{
		Seq:         seq,
		Kind:        kind,
		Choice:      choice,
		SessionID:   sessionID,
		SubmittedAt: svc.clock.Now(),
	}
	if err := svc.store.SetJSON(ctx, keyAnswer(roomCode), env, svc.opts.RoomTTL); err != nil {
		return nil, dependencyErr(err)
	}
	return env, nil
}
