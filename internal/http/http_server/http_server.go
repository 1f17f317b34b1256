package http_server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abrar71/swaggerfilesv2" // swagger embed files

	"triviarelay/internal/http/sessionhandler"
	"triviarelay/internal/services/session"
	"triviarelay/internal/ws"
)

type httpServer struct {
	listenPort uint16
	srv        http.Server
	ln         net.Listener
	sessionSvc session.ISessionService
	wsSrv      *ws.WsServer
	ctx        context.Context
}

func NewHttpServer(ctx context.Context, listenPort uint16, wsSrv *ws.WsServer, sessionSvc session.ISessionService) *httpServer {
	return &httpServer{
		listenPort: listenPort,
		wsSrv:      wsSrv,
		sessionSvc: sessionSvc,
		ctx:        ctx,
	}
}

func (h *httpServer) Start() error {
	var err error
	listenAddr := fmt.Sprintf(":%d", h.listenPort)
	h.ln, err = net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	routerEngine := gin.New()

	// Swagger UI and API specs
	routerEngine.StaticFS("/swagger-apis", http.FS(swaggerfilesv2.FS))
	routerEngine.Static("/api-specs", "api_specs")

	// Static pages: big screen and phone
	routerEngine.StaticFile("", "public/index.html")
	routerEngine.StaticFile("/user", "public/user.html")

	routerEngine.Use(ginzap.RecoveryWithZap(zap.L(), true))

	// push-relay endpoint
	routerEngine.GET("/ws", h.wsSrv.Handle)

	// stateless request/response surface
	sh := sessionhandler.New(h.sessionSvc)
	sh.Register(routerEngine)

	h.srv = http.Server{
		Handler: routerEngine,
	}

	return h.srv.Serve(h.ln)
}

// Dispose gracefully shuts the HTTP server down.
// It waits up to 10 s for in-flight requests to finish.
func (h *httpServer) Dispose() error {
	ctx, cancel := context.WithTimeout(h.ctx, 10*time.Second)
	defer cancel()

	if err := h.srv.Shutdown(ctx); err != nil {
		zap.L().Error("http_dispose", zap.Error(err))
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		zap.L().Error("http_dispose", zap.Error(errors.New("shutdown timed out")))
	}
	return nil
}
