package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// EnforceConfig declares how create/update bodies get their location pinned.
// ParentModel/ParentField name an optional parent reference (one hop) whose
// location is adopted when the body has no direct location field.
type EnforceConfig struct {
	LocationField string // body field holding the direct location id, e.g. "LocationID"
	ParentModel   string // ownership-rule key of the referenced parent, optional
	ParentField   string // body field referencing the parent id, e.g. "GameID"
}

var mutating = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// enforceWriteLocation rewrites mutation bodies so a non-admin can never
// write into another tenant's partition. Policy, in priority order:
//  1. body carries the direct location field -> overwrite with the caller's
//     location unconditionally, forged or not;
//  2. otherwise, a resolvable parent reference donates its location, falling
//     back to the caller's own.
//
// After this stage every non-admin mutation is attributable to exactly one
// location that the caller could legitimately write.
func (s *Server) enforceWriteLocation(cfg EnforceConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := tenantFrom(c)
		if !mutating[c.Request.Method] || tc.Admin() || tc.LocationID == nil {
			c.Next()
			return
		}
		body, err := peekBody(c)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, "malformed JSON body")
			c.Abort()
			return
		}
		loc := *tc.LocationID
		if _, present := body[cfg.LocationField]; !present && cfg.ParentField != "" {
			if pid, ok := body[cfg.ParentField]; ok {
				if id, ok := pid.(float64); ok && id > 0 {
					parentLoc, found, err := s.st.ResolveLocation(c.Request.Context(), cfg.ParentModel, "id", uint(id))
					if err != nil {
						s.fail(c, err)
						c.Abort()
						return
					}
					if found {
						loc = parentLoc
					}
				}
			}
		}
		body[cfg.LocationField] = loc
		if err := replaceBody(c, body); err != nil {
			s.fail(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
