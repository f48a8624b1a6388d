// Package httpserver exposes the REST surface of the arcade backend: scoped
// CRUD over the store, game-control endpoints bridging to UDP hardware, and
// the live score push channel.
package httpserver

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/manglesh1/Pixelpulse-sub002/internal/apperr"
	"github.com/manglesh1/Pixelpulse-sub002/internal/auth/token"
	"github.com/manglesh1/Pixelpulse-sub002/internal/gamecontrol"
	"github.com/manglesh1/Pixelpulse-sub002/internal/livescore"
	"github.com/manglesh1/Pixelpulse-sub002/internal/retry"
	"github.com/manglesh1/Pixelpulse-sub002/internal/server/store"
	"github.com/manglesh1/Pixelpulse-sub002/internal/tenant"
)

const tenantKey = "tenant"

type Server struct {
	st      *store.Store
	jwtMgr  *token.Manager
	control *gamecontrol.Channel
	hub     *livescore.Hub

	httpSrv *http.Server
}

func New(st *store.Store, jwtMgr *token.Manager, control *gamecontrol.Channel, hub *livescore.Hub) *Server {
	return &Server{st: st, jwtMgr: jwtMgr, control: control, hub: hub}
}

// Engine builds the gin engine with the full middleware chain and routes.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.Use(s.ginReqID(), s.ginCORS(), s.ginLogger(), s.ginAuth(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/ws/scores", livescore.Handler(s.hub))

	s.addControlRoutes(r)
	s.addGameRoutes(r)
	s.addPlayerRoutes(r)
	return r
}

func (s *Server) Run(addr string) error {
	s.httpSrv = &http.Server{Addr: addr, Handler: s.Engine(), ReadHeaderTimeout: 10 * time.Second}
	slog.Info("http server listening", "addr", addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// ---- middleware ----

// ginReqID injects/propagates an X-Request-ID for traceability.
func (s *Server) ginReqID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.Request.Header.Get("X-Request-ID")
		if strings.TrimSpace(rid) == "" {
			b := make([]byte, 16)
			if _, err := rand.Read(b); err == nil {
				rid = hex.EncodeToString(b)
			} else {
				rid = fmt.Sprintf("%d", time.Now().UnixNano())
			}
		}
		c.Set("reqid", rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

func (s *Server) ginCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		w := c.Writer
		allowOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOW_ORIGINS"))
		if allowOrigins == "" {
			allowOrigins = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", allowOrigins)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) ginLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		st := c.Writer.Status()
		lvl := slog.LevelInfo
		if st >= 500 {
			lvl = slog.LevelError
		} else if st >= 400 {
			lvl = slog.LevelWarn
		}
		rid, _ := c.Get("reqid")
		slog.Log(c, lvl, "http",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", st,
			"remote", c.ClientIP(),
			"reqid", rid,
			"dur_ms", time.Since(start).Milliseconds(),
		)
	}
}

// ginAuth verifies the session token and attaches the immutable TenantContext
// for the request. /healthz and the kiosk push channel stay public.
func (s *Server) ginAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Next()
			return
		}
		tok := bearerToken(c.Request)
		if tok == "" {
			s.respondError(c, http.StatusUnauthorized, "unauthorized")
			c.Abort()
			return
		}
		claims, err := s.jwtMgr.Verify(tok)
		if err != nil {
			s.respondError(c, http.StatusUnauthorized, "unauthorized")
			c.Abort()
			return
		}
		tc := tenant.FromClaims(claims.Role, claims.LocationID)
		if !tc.Admin() && tc.LocationID == nil {
			// non-admins must be pinned to a location; never let an
			// authenticated outsider reach the fail-open scope
			s.respondError(c, http.StatusForbidden, "no location assigned")
			c.Abort()
			return
		}
		c.Set(tenantKey, tc)
		c.Next()
	}
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// tenantFrom reads the TenantContext the auth middleware attached.
func tenantFrom(c *gin.Context) tenant.Context {
	if v, ok := c.Get(tenantKey); ok {
		if tc, ok := v.(tenant.Context); ok {
			return tc
		}
	}
	return tenant.Context{Role: tenant.RoleUser}
}

// ---- error envelope ----

// respondError writes the small JSON error body; internals never leak.
func (s *Server) respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// fail maps a taxonomy error onto its HTTP status. Anything unclassified is
// logged with context and surfaced as a generic 500.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		s.respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		s.respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrForbidden):
		s.respondError(c, http.StatusForbidden, "Cross-location access denied")
	case errors.Is(err, apperr.ErrTimeout):
		s.respondError(c, http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, retry.ErrExhausted):
		s.respondError(c, http.StatusBadGateway, "upstream retries exhausted")
	case errors.Is(err, apperr.ErrTransport):
		s.respondError(c, http.StatusInternalServerError, err.Error())
	default:
		rid, _ := c.Get("reqid")
		slog.Error("unexpected error", "path", c.Request.URL.Path, "reqid", rid, "err", err)
		s.respondError(c, http.StatusInternalServerError, "internal error")
	}
}
