// Package session implements the coordination protocol between one host
// (presentation screen) and one controller (phone) sharing a room through an
// external key/value store. All authoritative state lives in the store;
// handlers are stateless and must tolerate interleavings (see the race notes
// on Join and Submit).
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"triviarelay/internal/store"
)

const (
	roomCodeLength = 6

	// Ambiguous characters (0/O, 1/I/L) are excluded so codes survive being
	// read off a projector.
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

type ISessionService interface {
	// Registry
	CreateRoom(ctx context.Context) (*Room, error)
	GetRoom(ctx context.Context, roomCode string) (*Room, error)
	CloseRoom(ctx context.Context, roomCode, hostToken string) error
	ValidatePasskey(passkey string) error

	// Controller lease
	Join(ctx context.Context, roomCode, passkey, sessionID string) (*JoinResult, error)
	Authorize(ctx context.Context, roomCode, controllerToken, sessionID string) (*Lease, error)
	Release(ctx context.Context, roomCode string) error

	// Answer relay
	Submit(ctx context.Context, roomCode, controllerToken, sessionID, choice string) (int64, error)
	RecordAnswer(ctx context.Context, roomCode, sessionID, choice string) (*AnswerEnvelope, error)
	Poll(ctx context.Context, roomCode, hostToken string, afterSeq int64) (*PollResult, error)

	// Phase state machine
	PublishState(ctx context.Context, roomCode, hostToken string, state *GameState) error
	FetchState(ctx context.Context, roomCode, controllerToken, sessionID string) (*GameState, error)
	CurrentState(ctx context.Context, roomCode string) (*GameState, error)
}

// Options carries the protocol tunables. The reference values are empirically
// tuned defaults, not load-bearing constants.
type Options struct {
	Passkey            string
	RoomTTL            time.Duration
	StaleThreshold     time.Duration
	HeartbeatInterval  time.Duration
	StateTouchInterval time.Duration
	CodeAttempts       int
}

type sessionService struct {
	store store.Store
	clock clockwork.Clock
	opts  Options
}

var _ ISessionService = (*sessionService)(nil)

func NewSessionService(st store.Store, clock clockwork.Clock, opts Options) ISessionService {
	if opts.RoomTTL <= 0 {
		opts.RoomTTL = 2 * time.Hour
	}
	if opts.StaleThreshold <= 0 {
		opts.StaleThreshold = 45 * time.Second
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = 30 * time.Second
	}
	if opts.StateTouchInterval <= 0 {
		opts.StateTouchInterval = 60 * time.Second
	}
	if opts.CodeAttempts <= 0 {
		opts.CodeAttempts = 5
	}
	return &sessionService{store: st, clock: clock, opts: opts}
}

// ValidatePasskey gates the controller UI before join. Not a cryptographic
// boundary, just a shared-secret check.
func (svc *sessionService) ValidatePasskey(passkey string) error {
	if passkey == "" || passkey != svc.opts.Passkey {
		return ErrInvalidPasskey
	}
	return nil
}

func newToken(prefix string) string {
	u := uuid.New()
	return prefix + "_" + hex.EncodeToString(u[:])
}

func newRoomCode() (string, error) {
	code := make([]byte, roomCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(roomCodeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = roomCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
