package ws

import "encoding/json"

// Envelope wraps every WS frame.
type Envelope struct {
	Event string          `json:"event"`          // e.g. "user_answer"
	Body  json.RawMessage `json:"body,omitempty"` // arbitrary JSON object
}

// ──────────────────────────── Request / Response DTOs ─────────────────────────

// HostCreateRoomRequest claims an existing room (roomCode + hostToken) or,
// with an empty roomCode, creates a fresh one.
type HostCreateRoomRequest struct {
	RoomCode  string `json:"roomCode"`
	HostToken string `json:"hostToken"`
}

type RoomCreatedBody struct {
	RoomCode  string `json:"roomCode"`
	HostToken string `json:"hostToken,omitempty"`
}

type HostStateRequest struct {
	RoomCode string          `json:"roomCode"`
	State    json.RawMessage `json:"state"`
}

type HostNextQuestionRequest struct {
	RoomCode      string `json:"roomCode"`
	QuestionIndex int    `json:"qIndex"`
}

type UserJoinRoomRequest struct {
	RoomCode string `json:"roomCode"`
}

type RoomJoinedBody struct {
	RoomCode string `json:"roomCode"`
	UserID   string `json:"userId"`
}

type UserAnswerRequest struct {
	RoomCode string `json:"roomCode"`
	Choice   string `json:"choice"`
}

type UserAnswerBody struct {
	RoomCode string `json:"roomCode"`
	Choice   string `json:"choice"`
	Kind     string `json:"kind"`
	Seq      int64  `json:"seq"`
	UserID   string `json:"userId"`
}

// Empty ACK body (useful for many handlers).
type AckBody struct{}

// ErrorBody is returned for failures.
type ErrorBody struct {
	Error string `json:"error"`
}
