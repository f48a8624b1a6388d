package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// GuardConfig declares, per route, how to resolve the tenant of the record a
// request touches: the ownership-rule key and where the primary-key identifier
// comes from (path param or body field). All values are startup constants.
type GuardConfig struct {
	Model     string
	IDParam   string // path parameter carrying the identifier
	BodyField string // body field carrying the identifier (alternative to IDParam)
}

// guard enforces that the referenced record belongs to the caller's location.
// Admins pass regardless; a caller with no location is trusted (internal call
// sites only, unreachable unauthenticated). Exactly one record fetch, with
// the one-hop join folded into the same query by the ownership rule.
func (s *Server) guard(cfg GuardConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := tenantFrom(c)
		if tc.Admin() || tc.LocationID == nil {
			c.Next()
			return
		}
		id, ok := s.guardIdentifier(c, cfg)
		if !ok {
			s.respondError(c, http.StatusBadRequest, "missing "+cfg.identifierName())
			c.Abort()
			return
		}
		loc, found, err := s.st.ResolveLocation(c.Request.Context(), cfg.Model, "id", id)
		if err != nil {
			// data-access failures propagate, never silently allowed
			s.fail(c, err)
			c.Abort()
			return
		}
		if !found {
			s.respondError(c, http.StatusNotFound, cfg.Model+" not found")
			c.Abort()
			return
		}
		if loc != *tc.LocationID {
			s.respondError(c, http.StatusForbidden, "Cross-location access denied")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (g GuardConfig) identifierName() string {
	if g.IDParam != "" {
		return g.IDParam
	}
	return g.BodyField
}

// guardIdentifier pulls the record identifier from the path or the body,
// restoring the body for downstream binding.
func (s *Server) guardIdentifier(c *gin.Context, cfg GuardConfig) (any, bool) {
	if cfg.IDParam != "" {
		v := strings.TrimSpace(c.Param(cfg.IDParam))
		if v == "" {
			return nil, false
		}
		return v, true
	}
	body, err := peekBody(c)
	if err != nil {
		return nil, false
	}
	v, ok := body[cfg.BodyField]
	if !ok || v == nil {
		return nil, false
	}
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, false
		}
		return t, true
	case float64:
		if t <= 0 {
			return nil, false
		}
		return uint(t), true
	default:
		return nil, false
	}
}

// peekBody decodes the JSON body into a map and puts the raw bytes back so
// handlers can still bind.
func peekBody(c *gin.Context) (map[string]any, error) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	var m map[string]any
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// replaceBody swaps the request body for the re-serialized map.
func replaceBody(c *gin.Context, m map[string]any) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	c.Request.ContentLength = int64(len(raw))
	return nil
}
