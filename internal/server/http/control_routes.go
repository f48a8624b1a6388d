package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/manglesh1/Pixelpulse-sub002/internal/retry"
)

// statusAttempts bounds how many status exchanges one request may cost; each
// attempt is already capped by the channel's reply wait.
const statusAttempts = 2

// addControlRoutes wires the gameplay-control endpoints that bridge HTTP to
// the UDP control channel. Query parameter names match the kiosk clients.
func (s *Server) addControlRoutes(r *gin.Engine) {
	r.GET("/api/games/start", func(c *gin.Context) {
		variantCode := strings.TrimSpace(c.Query("variantCode"))
		if variantCode == "" {
			s.respondError(c, http.StatusBadRequest, "variantCode is required")
			return
		}
		addr, port, ok := s.controllerTarget(c)
		if !ok {
			return
		}
		if err := s.control.Start(c.Request.Context(), variantCode, addr, port); err != nil {
			s.fail(c, err)
			return
		}
		// fire-and-forget: the datagram left this host, nothing more
		c.JSON(http.StatusOK, gin.H{"message": "Game started successfully"})
	})

	r.GET("/api/games/status", func(c *gin.Context) {
		gameCode := strings.TrimSpace(c.Query("gameCode"))
		if gameCode == "" {
			s.respondError(c, http.StatusBadRequest, "gameCode is required")
			return
		}
		addr, port, ok := s.controllerTarget(c)
		if !ok {
			return
		}
		status, err := retry.Do(c.Request.Context(), func(ctx context.Context) (string, error) {
			return s.control.Status(ctx, gameCode, addr, port)
		}, statusAttempts, 0)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": status})
	})
}

// controllerTarget validates the IpAddress/port query pair; writes the 400
// itself on failure.
func (s *Server) controllerTarget(c *gin.Context) (string, int, bool) {
	addr := strings.TrimSpace(c.Query("IpAddress"))
	rawPort := strings.TrimSpace(c.Query("port"))
	if addr == "" {
		s.respondError(c, http.StatusBadRequest, "IpAddress is required")
		return "", 0, false
	}
	if rawPort == "" {
		s.respondError(c, http.StatusBadRequest, "port is required")
		return "", 0, false
	}
	port, err := strconv.Atoi(rawPort)
	if err != nil || port < 1 || port > 65535 {
		s.respondError(c, http.StatusBadRequest, "port is invalid")
		return "", 0, false
	}
	return addr, port, true
}
