package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"triviarelay/internal/services/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 10 * time.Second // must be < pongWait
)

// ConnContext is the per-connection identity. On this transport
// authorization is connection-scoped: whoever claimed the room on this hub is
// the host, and joined users may answer without a lease. Strictly weaker than
// the token-based HTTP surface; treat as a lower-assurance deployment mode.
type ConnContext struct {
	UserID    string
	RoomCode  string
	HostToken string
	IsHost    bool
	conn      *clientConn
}

type WsServer struct {
	hub      *Hub
	router   *Router
	svc      session.ISessionService
	upgrader websocket.Upgrader
}

func NewWsServer(h *Hub, svc session.ISessionService) *WsServer {
	srv := &WsServer{
		hub:    h,
		router: NewRouter(),
		svc:    svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// dev-only
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	srv.registerHandlers() // ← all WS endpoints configured here
	return srv
}

// ---------------------------------------------------------------------------
//  Public: Gin entry-point
// ---------------------------------------------------------------------------

func (s *WsServer) Handle(ginCtx *gin.Context) {
	rawConn, err := s.upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.upgrade", zap.Error(err))
		return
	}
	rawConn.SetReadLimit(4096)

	wsConn := &clientConn{rawConn: rawConn}
	cc := &ConnContext{
		// short id for debugging
		UserID: uuid.NewString()[:6],
		conn:   wsConn,
	}

	go s.reader(cc)
	go s.pinger(wsConn)
}

// ---------------------------------------------------------------------------
//  Event handlers
// ---------------------------------------------------------------------------

func (s *WsServer) registerHandlers() {
	// 🔹 host_create_room --------------------------------------------------
	Register(s.router, "host_create_room",
		func(ctx context.Context, cc *ConnContext, req HostCreateRoomRequest) (RoomCreatedBody, error) {
			var room *session.Room
			var err error
			if req.RoomCode == "" {
				room, err = s.svc.CreateRoom(ctx)
			} else {
				// Reclaim after a kiosk restart: the stored credential must
				// be presented once, then identity sticks to the connection.
				room, err = s.svc.GetRoom(ctx, req.RoomCode)
				if err == nil && room.HostToken != req.HostToken {
					err = session.ErrInvalidHostToken
				}
			}
			if err != nil {
				return RoomCreatedBody{}, err
			}

			cc.RoomCode = room.RoomCode
			cc.HostToken = room.HostToken
			cc.IsHost = true
			s.hub.SetHost(room.RoomCode, cc.conn)

			// Replay the last known state so a refreshed host catches up.
			if state, serr := s.svc.CurrentState(ctx, room.RoomCode); serr == nil {
				_ = cc.conn.writeJSON(map[string]any{
					"event": "host_state",
					"body":  gin.H{"roomCode": room.RoomCode, "state": state},
				})
			}
			return RoomCreatedBody{RoomCode: room.RoomCode, HostToken: room.HostToken}, nil
		},
	)

	// 🔹 host_state --------------------------------------------------------
	Register(s.router, "host_state",
		func(ctx context.Context, cc *ConnContext, req HostStateRequest) (AckBody, error) {
			if !cc.IsHost || cc.RoomCode != req.RoomCode {
				return AckBody{}, session.ErrInvalidHostToken
			}
			var state session.GameState
			if err := json.Unmarshal(req.State, &state); err != nil {
				return AckBody{}, session.ErrInvalidPhase
			}
			if err := s.svc.PublishState(ctx, req.RoomCode, cc.HostToken, &state); err != nil {
				return AckBody{}, err
			}

			// Fan out to the phones only, never back to the publisher.
			raw, _ := json.Marshal(map[string]any{
				"event": "host_state",
				"body":  gin.H{"roomCode": req.RoomCode, "state": &state},
			})
			s.hub.BroadcastExcept(req.RoomCode, cc.conn, raw)
			return AckBody{}, nil
		},
	)

	// 🔹 host_next_question ------------------------------------------------
	Register(s.router, "host_next_question",
		func(ctx context.Context, cc *ConnContext, req HostNextQuestionRequest) (AckBody, error) {
			if !cc.IsHost || cc.RoomCode != req.RoomCode {
				return AckBody{}, session.ErrInvalidHostToken
			}
			raw, _ := json.Marshal(map[string]any{
				"event": "host_next_question",
				"body":  gin.H{"roomCode": req.RoomCode, "qIndex": req.QuestionIndex},
			})
			s.hub.BroadcastExcept(req.RoomCode, cc.conn, raw)
			return AckBody{}, nil
		},
	)

	// 🔹 user_join_room ----------------------------------------------------
	Register(s.router, "user_join_room",
		func(ctx context.Context, cc *ConnContext, req UserJoinRoomRequest) (RoomJoinedBody, error) {
			room, err := s.svc.GetRoom(ctx, req.RoomCode)
			if err != nil {
				return RoomJoinedBody{}, err
			}
			if !room.Active {
				return RoomJoinedBody{}, session.ErrRoomNotFound
			}

			cc.RoomCode = room.RoomCode
			s.hub.Join(room.RoomCode, cc.conn)

			joined, _ := json.Marshal(map[string]any{
				"event": "room_joined",
				"body":  RoomJoinedBody{RoomCode: room.RoomCode, UserID: cc.UserID},
			})
			s.hub.SendHost(room.RoomCode, joined)

			// Seed the phone with the current question immediately.
			if state, serr := s.svc.CurrentState(ctx, room.RoomCode); serr == nil {
				_ = cc.conn.writeJSON(map[string]any{
					"event": "host_state",
					"body":  gin.H{"roomCode": room.RoomCode, "state": state},
				})
			}
			return RoomJoinedBody{RoomCode: room.RoomCode, UserID: cc.UserID}, nil
		},
	)

	// 🔹 user_answer -------------------------------------------------------
	Register(s.router, "user_answer",
		func(ctx context.Context, cc *ConnContext, req UserAnswerRequest) (UserAnswerBody, error) {
			if cc.IsHost || cc.RoomCode == "" || cc.RoomCode != req.RoomCode {
				return UserAnswerBody{}, session.ErrControllerLost
			}
			env, err := s.svc.RecordAnswer(ctx, req.RoomCode, cc.UserID, req.Choice)
			if err != nil {
				return UserAnswerBody{}, err
			}

			body := UserAnswerBody{
				RoomCode: req.RoomCode,
				Choice:   env.Choice,
				Kind:     string(env.Kind),
				Seq:      env.Seq,
				UserID:   cc.UserID,
			}
			// Relay ONLY to the big screen.
			raw, _ := json.Marshal(map[string]any{"event": "user_answer", "body": body})
			if !s.hub.SendHost(req.RoomCode, raw) {
				zap.L().Debug("ws.no_host_conn", zap.String("roomCode", req.RoomCode))
			}
			return body, nil
		},
	)
}

// ---------------------------------------------------------------------------
//  Connection loops
// ---------------------------------------------------------------------------

func (s *WsServer) reader(cc *ConnContext) {
	conn := cc.conn
	defer func() {
		if cc.RoomCode != "" {
			s.hub.Leave(cc.RoomCode, conn)
		} else {
			conn.rawConn.Close()
		}
	}()

	_ = conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	conn.rawConn.SetPongHandler(func(string) error {
		return conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env Envelope
		if err := conn.rawConn.ReadJSON(&env); err != nil {
			return // client closed or errored
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1900*time.Millisecond)
		res, err := s.router.dispatch(ctx, cc, env)
		cancel()

		// ---- error -> {"event":"error", "body":{...}} ---------------
		if err != nil {
			_ = conn.writeJSON(map[string]any{
				"event": "error",
				"body":  ErrorBody{Error: errCode(err)},
			})
			continue
		}

		// ---- success -> {"event":"<evt>-ack", "body":{...}} --------
		reply := map[string]any{"event": env.Event + "-ack"}
		if res != nil {
			reply["body"] = res
		}
		_ = conn.writeJSON(reply)
	}
}

func (s *WsServer) pinger(conn *clientConn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.write(websocket.PingMessage, nil); err != nil {
			conn.rawConn.Close()
			return
		}
	}
}

// errCode keeps wire errors machine-readable instead of leaking Go strings.
func errCode(err error) string {
	var se *session.Error
	if errors.As(err, &se) {
		return se.Code
	}
	return err.Error()
}
