package sessionhandler

import "encoding/json"

type CloseRoomBody struct {
	RoomCode  string `json:"roomCode"  binding:"required" example:"KWXT7P"`
	HostToken string `json:"hostToken" binding:"required" example:"host_1f0c"`
} // @name CloseRoomRequest

type JoinBody struct {
	RoomCode  string `json:"roomCode"  binding:"required" example:"KWXT7P"`
	Passkey   string `json:"passkey"   binding:"required" example:"letmein"`
	SessionID string `json:"sessionId" binding:"required" example:"s1"`
} // @name JoinRequest

type AnswerBody struct {
	RoomCode        string `json:"roomCode"        binding:"required" example:"KWXT7P"`
	ControllerToken string `json:"controllerToken" binding:"required" example:"ctrl_9a2e"`
	SessionID       string `json:"sessionId"       binding:"required" example:"s1"`
	Choice          string `json:"choice"          binding:"required" example:"B"`
} // @name AnswerRequest

type HostStateBody struct {
	RoomCode  string          `json:"roomCode"  binding:"required" example:"KWXT7P"`
	HostToken string          `json:"hostToken" binding:"required" example:"host_1f0c"`
	State     json.RawMessage `json:"state"     binding:"required"`
} // @name HostStateRequest

type FetchStateBody struct {
	RoomCode        string `json:"roomCode"        binding:"required" example:"KWXT7P"`
	ControllerToken string `json:"controllerToken" binding:"required" example:"ctrl_9a2e"`
	SessionID       string `json:"sessionId"       binding:"required" example:"s1"`
} // @name FetchStateRequest

type ValidatePasskeyBody struct {
	Passkey string `json:"passkey" binding:"required" example:"letmein"`
} // @name ValidatePasskeyRequest

type PollAnswerQuery struct {
	RoomCode  string `form:"roomCode"  binding:"required"`
	HostToken string `form:"hostToken" binding:"required"`
	AfterSeq  int64  `form:"afterSeq,default=0" binding:"gte=0"`
} // @name PollAnswerQuery

type ErrorResponse struct {
	Ok      bool   `json:"ok" example:"false"`
	Error   string `json:"error" example:"controller_taken"`
	Message string `json:"message,omitempty"`
} // @name ErrorResponse
