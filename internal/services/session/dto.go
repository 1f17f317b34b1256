package session

import (
	"strings"
	"time"
)

// Room is the per-session metadata record. Active=false is a logical delete;
// physical reclamation is left to the store TTL.
type Room struct {
	RoomCode  string    `json:"roomCode"`
	HostToken string    `json:"hostToken"`
	CreatedAt time.Time `json:"createdAt"`
	Active    bool      `json:"active"`
}

// Lease grants the single controller slot of a room to one session.
// At most one non-expired lease exists per room.
type Lease struct {
	ControllerToken string    `json:"controllerToken"`
	SessionID       string    `json:"sessionId"`
	JoinedAt        time.Time `json:"joinedAt"`
	LastSeen        time.Time `json:"lastSeen"`
}

type Phase string

const (
	PhaseSplash   Phase = "splash"
	PhaseLive     Phase = "live"
	PhaseReveal   Phase = "reveal"
	PhaseFinished Phase = "finished"
	PhaseReset    Phase = "reset"
)

func (p Phase) Valid() bool {
	switch p {
	case PhaseSplash, PhaseLive, PhaseReveal, PhaseFinished, PhaseReset:
		return true
	}
	return false
}

// GameState is the single authoritative game snapshot, written only by the
// host path. Question deadlines are advisory data for client countdowns,
// never enforced here.
type GameState struct {
	Phase          Phase          `json:"phase"`
	Total          int            `json:"total"`
	QuestionIndex  int            `json:"qIndex"`
	Score          int            `json:"score"`
	QuestionEndsAt *time.Time     `json:"questionEndsAt"`
	AnswerTally    map[string]int `json:"answerTally,omitempty"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	TouchedAt      time.Time      `json:"touchedAt"`
}

func NewSplashState(now time.Time) *GameState {
	return &GameState{
		Phase:     PhaseSplash,
		Total:     20,
		UpdatedAt: now,
		TouchedAt: now,
	}
}

type EnvelopeKind string

const (
	KindAnswer  EnvelopeKind = "answer"
	KindCommand EnvelopeKind = "command"
)

// AnswerEnvelope is a last-value mailbox, not a queue: only the latest
// submission survives, and Seq is how a reader detects "new since last read".
type AnswerEnvelope struct {
	Seq         int64        `json:"seq"`
	Kind        EnvelopeKind `json:"kind,omitempty"`
	Choice      string       `json:"choice,omitempty"`
	SessionID   string       `json:"sessionId,omitempty"`
	SubmittedAt time.Time    `json:"ts,omitzero"`
}

type JoinResult struct {
	RoomCode        string
	ControllerToken string
	Resumed         bool
	Takeover        bool
}

type PollResult struct {
	Seq    int64
	Answer *AnswerEnvelope
}

const (
	CommandRequestStart = "request-start"
	CommandRequestReset = "request-reset"
)

// ClassifyChoice normalizes a raw submission into either an answer letter or
// a recognized control command. The kind discriminator lets the host tell the
// two apart without guessing.
func ClassifyChoice(raw string) (EnvelopeKind, string, bool) {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToUpper(trimmed) {
	case "A", "B", "C", "D":
		return KindAnswer, strings.ToUpper(trimmed), true
	}
	switch strings.ToLower(trimmed) {
	case CommandRequestStart, CommandRequestReset:
		return KindCommand, strings.ToLower(trimmed), true
	}
	return "", "", false
}
