package sessionhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"triviarelay/internal/services/session"
)

type Handler struct {
	svc session.ISessionService
}

func New(svc session.ISessionService) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/api/rooms", h.createRoom)
	r.POST("/api/rooms/close", h.closeRoom)
	r.POST("/api/join", h.join)
	r.POST("/api/answer", h.answer)
	r.POST("/api/host-state", h.hostState)
	r.POST("/api/state", h.fetchState)
	r.GET("/api/poll-answer", h.pollAnswer)
	r.POST("/api/validate-passkey", h.validatePasskey)
}

// @Summary		Create a room
// @Description	Allocates a fresh room code and host credential.
// @Tags			Rooms
// @Success		200	{object}	map[string]any
// @Failure		500	{object}	ErrorResponse
// @Router			/api/rooms [post]
func (h *Handler) createRoom(c *gin.Context) {
	room, err := h.svc.CreateRoom(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"roomCode":  room.RoomCode,
		"hostToken": room.HostToken,
	})
}

// @Summary		Close a room
// @Description	Marks the room inactive and frees the controller slot.
// @Tags			Rooms
// @Param			body	body	CloseRoomBody	true	"Close payload"
// @Success		200	{object}	map[string]any
// @Failure		403	{object}	ErrorResponse
// @Router			/api/rooms/close [post]
func (h *Handler) closeRoom(c *gin.Context) {
	var body CloseRoomBody
	if err := c.ShouldBindJSON(&body); err != nil {
		missingField(c, err)
		return
	}
	if err := h.svc.CloseRoom(c.Request.Context(), body.RoomCode, body.HostToken); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// @Summary		Join as controller
// @Description	Grants, resumes, or takes over the room's single controller slot.
// @Tags			Controller
// @Param			body	body	JoinBody	true	"Join payload"
// @Success		200	{object}	map[string]any
// @Failure		401	{object}	ErrorResponse
// @Failure		404	{object}	ErrorResponse
// @Failure		409	{object}	ErrorResponse
// @Router			/api/join [post]
func (h *Handler) join(c *gin.Context) {
	var body JoinBody
	if err := c.ShouldBindJSON(&body); err != nil {
		missingField(c, err)
		return
	}
	res, err := h.svc.Join(c.Request.Context(), body.RoomCode, body.Passkey, body.SessionID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":              true,
		"roomCode":        res.RoomCode,
		"controllerToken": res.ControllerToken,
		"resumed":         res.Resumed,
		"takeover":        res.Takeover,
	})
}

// @Summary		Submit an answer
// @Description	Accepts an answer letter or a control command from the current controller.
// @Tags			Controller
// @Param			body	body	AnswerBody	true	"Answer payload"
// @Success		200	{object}	map[string]any
// @Failure		400	{object}	ErrorResponse
// @Failure		403	{object}	ErrorResponse
// @Failure		409	{object}	ErrorResponse
// @Router			/api/answer [post]
func (h *Handler) answer(c *gin.Context) {
	var body AnswerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		missingField(c, err)
		return
	}
	seq, err := h.svc.Submit(c.Request.Context(), body.RoomCode, body.ControllerToken, body.SessionID, body.Choice)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "seq": seq})
}

// @Summary		Publish host state
// @Description	Host overwrites the authoritative game state; reset/splash frees the controller.
// @Tags			Host
// @Param			body	body	HostStateBody	true	"State payload"
// @Success		200	{object}	map[string]any
// @Failure		400	{object}	ErrorResponse
// @Failure		403	{object}	ErrorResponse
// @Failure		404	{object}	ErrorResponse
// @Router			/api/host-state [post]
func (h *Handler) hostState(c *gin.Context) {
	var body HostStateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		missingField(c, err)
		return
	}
	var state session.GameState
	if err := json.Unmarshal(body.State, &state); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_state", Message: err.Error()})
		return
	}
	if err := h.svc.PublishState(c.Request.Context(), body.RoomCode, body.HostToken, &state); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// @Summary		Fetch game state
// @Description	Controller polls the current state; doubles as its heartbeat.
// @Tags			Controller
// @Param			body	body	FetchStateBody	true	"Fetch payload"
// @Success		200	{object}	map[string]any
// @Failure		403	{object}	ErrorResponse
// @Failure		404	{object}	ErrorResponse
// @Router			/api/state [post]
func (h *Handler) fetchState(c *gin.Context) {
	var body FetchStateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		missingField(c, err)
		return
	}
	state, err := h.svc.FetchState(c.Request.Context(), body.RoomCode, body.ControllerToken, body.SessionID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "state": state})
}

// @Summary		Poll for the latest answer
// @Description	Host drains the answer mailbox: returns the envelope only when newer than afterSeq.
// @Tags			Host
// @Param			roomCode	query	string	true	"Room code"
// @Param			hostToken	query	string	true	"Host credential"
// @Param			afterSeq	query	int		false	"Watermark"	default(0)
// @Success		200	{object}	map[string]any
// @Failure		403	{object}	ErrorResponse
// @Failure		404	{object}	ErrorResponse
// @Router			/api/poll-answer [get]
func (h *Handler) pollAnswer(c *gin.Context) {
	var q PollAnswerQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		missingField(c, err)
		return
	}
	res, err := h.svc.Poll(c.Request.Context(), q.RoomCode, q.HostToken, q.AfterSeq)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "seq": res.Seq, "answer": res.Answer})
}

// @Summary		Validate the shared secret
// @Description	Pre-join check for the controller UI.
// @Tags			Controller
// @Param			body	body	ValidatePasskeyBody	true	"Passkey payload"
// @Success		200	{object}	map[string]any
// @Failure		401	{object}	ErrorResponse
// @Router			/api/validate-passkey [post]
func (h *Handler) validatePasskey(c *gin.Context) {
	var body ValidatePasskeyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		missingField(c, err)
		return
	}
	if err := h.svc.ValidatePasskey(body.Passkey); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ---------------------------------------------------------------------------
//  Error mapping
// ---------------------------------------------------------------------------

func missingField(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing_field", Message: err.Error()})
}

// fail maps the error-kind taxonomy onto HTTP statuses: validation 400,
// authorization 401/403, conflict 409, not_found 404, dependency 500.
func fail(c *gin.Context, err error) {
	var se *session.Error
	if !errors.As(err, &se) {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "server_error", Message: err.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch se.Kind {
	case session.ErrorKindValidation:
		status = http.StatusBadRequest
	case session.ErrorKindAuthorization:
		status = http.StatusForbidden
		if se.Code == "invalid_passkey" {
			status = http.StatusUnauthorized
		}
	case session.ErrorKindConflict:
		status = http.StatusConflict
	case session.ErrorKindNotFound:
		status = http.StatusNotFound
	case session.ErrorKindDependency:
		status = http.StatusInternalServerError
	}
	c.JSON(status, ErrorResponse{Error: se.Code, Message: se.Msg})
}
