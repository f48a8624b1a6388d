package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/manglesh1/Pixelpulse-sub002/internal/server/models"
)

func (s *Server) addPlayerRoutes(r *gin.Engine) {
	r.GET("/api/players", func(c *gin.Context) {
		page := paginate(c, []string{"created_at", "last_name"})
		players, total, err := s.st.ListPlayers(c.Request.Context(), tenantFrom(c), page)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"players": players, "total": total, "page": page.Page, "pageSize": page.PageSize})
	})

	r.POST("/api/players",
		s.enforceWriteLocation(EnforceConfig{LocationField: "LocationID"}),
		func(c *gin.Context) {
			var p models.Player
			if err := c.ShouldBindJSON(&p); err != nil {
				s.respondError(c, http.StatusBadRequest, "invalid payload")
				return
			}
			if strings.TrimSpace(p.FirstName) == "" && strings.TrimSpace(p.LastName) == "" {
				s.respondError(c, http.StatusBadRequest, "player name is required")
				return
			}
			if err := s.st.CreatePlayer(c.Request.Context(), &p); err != nil {
				s.fail(c, err)
				return
			}
			c.JSON(http.StatusCreated, gin.H{"id": p.ID})
		})

	r.GET("/api/playerScores", func(c *gin.Context) {
		page := paginate(c, []string{"created_at", "points"})
		scores, total, err := s.st.ListScores(c.Request.Context(), tenantFrom(c), page)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"playerScores": scores, "total": total, "page": page.Page, "pageSize": page.PageSize})
	})

	// scores reference a player; the body guard rejects posting a score for
	// another site's player, the enforcer pins the score's own location
	r.POST("/api/playerScores",
		s.guard(GuardConfig{Model: "Player", BodyField: "PlayerID"}),
		s.enforceWriteLocation(EnforceConfig{LocationField: "LocationID", ParentModel: "Player", ParentField: "PlayerID"}),
		func(c *gin.Context) {
			var sc models.PlayerScore
			if err := c.ShouldBindJSON(&sc); err != nil {
				s.respondError(c, http.StatusBadRequest, "invalid payload")
				return
			}
			if sc.PlayerID == 0 || sc.GamesVariantID == 0 {
				s.respondError(c, http.StatusBadRequest, "PlayerID and GamesVariantID are required")
				return
			}
			if err := s.st.CreateScore(c.Request.Context(), &sc); err != nil {
				s.fail(c, err)
				return
			}
			c.JSON(http.StatusCreated, gin.H{"id": sc.ID})
		})

	r.GET("/api/stats/topScores", func(c *gin.Context) {
		limit := 10
		if v := parseUint(c.Query("limit")); v > 0 {
			limit = int(v)
		}
		rows, err := s.st.TopScores(c.Request.Context(), tenantFrom(c), limit)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"topScores": rows})
	})

	// wristband lookups resolve their tenant through the player (one hop).
	// Codes get reissued across sites, so the location check runs against the
	// exact row returned, not against whichever row matches the code first.
	r.GET("/api/wristbands/:code", func(c *gin.Context) {
		code := strings.TrimSpace(c.Param("code"))
		if code == "" {
			s.respondError(c, http.StatusBadRequest, "missing code")
			return
		}
		wt, loc, err := s.st.LatestWristband(c.Request.Context(), code)
		if err != nil {
			s.fail(c, err)
			return
		}
		tc := tenantFrom(c)
		if !tc.Admin() && tc.LocationID != nil && loc != *tc.LocationID {
			s.respondError(c, http.StatusForbidden, "Cross-location access denied")
			return
		}
		c.JSON(http.StatusOK, wt)
	})
}
