package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/manglesh1/Pixelpulse-sub002/internal/livescore"
	"github.com/manglesh1/Pixelpulse-sub002/internal/pagination"
	"github.com/manglesh1/Pixelpulse-sub002/internal/server/models"
)

// parseUint converts a decimal string id to uint (0 if invalid).
func parseUint(s string) uint {
	if v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64); err == nil {
		return uint(v)
	}
	return 0
}

// paginate reads the list-query contract shared by every list endpoint.
func paginate(c *gin.Context, allowed []string) pagination.Page {
	return pagination.Paginate(
		c.DefaultQuery("page", "1"),
		c.DefaultQuery("pageSize", ""),
		c.Query("sortBy"),
		c.Query("sortDir"),
		allowed,
	)
}

func (s *Server) addGameRoutes(r *gin.Engine) {
	r.GET("/api/games", func(c *gin.Context) {
		page := paginate(c, []string{"created_at", "name"})
		games, total, err := s.st.ListGames(c.Request.Context(), tenantFrom(c), page)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"games": games, "total": total, "page": page.Page, "pageSize": page.PageSize})
	})

	r.POST("/api/games",
		s.enforceWriteLocation(EnforceConfig{LocationField: "LocationID"}),
		func(c *gin.Context) {
			var g models.Game
			if err := c.ShouldBindJSON(&g); err != nil {
				s.respondError(c, http.StatusBadRequest, "invalid payload")
				return
			}
			if strings.TrimSpace(g.Name) == "" {
				s.respondError(c, http.StatusBadRequest, "name is required")
				return
			}
			if err := s.st.CreateGame(c.Request.Context(), &g); err != nil {
				s.fail(c, err)
				return
			}
			c.JSON(http.StatusCreated, gin.H{"id": g.ID})
		})

	r.GET("/api/games/:id",
		s.guard(GuardConfig{Model: "Game", IDParam: "id"}),
		func(c *gin.Context) {
			g, err := s.st.GetGame(c.Request.Context(), tenantFrom(c), parseUint(c.Param("id")))
			if err != nil {
				s.fail(c, err)
				return
			}
			c.JSON(http.StatusOK, g)
		})

	r.PUT("/api/games/:id",
		s.guard(GuardConfig{Model: "Game", IDParam: "id"}),
		s.enforceWriteLocation(EnforceConfig{LocationField: "LocationID"}),
		func(c *gin.Context) {
			tc := tenantFrom(c)
			id := parseUint(c.Param("id"))
			g, err := s.st.GetGame(c.Request.Context(), tc, id)
			if err != nil {
				s.fail(c, err)
				return
			}
			var in models.Game
			if err := c.ShouldBindJSON(&in); err != nil {
				s.respondError(c, http.StatusBadRequest, "invalid payload")
				return
			}
			g.Name = in.Name
			g.Description = in.Description
			g.IPAddress = in.IPAddress
			g.LocalPort = in.LocalPort
			g.Enabled = in.Enabled
			if in.LocationID != 0 {
				g.LocationID = in.LocationID
			}
			if err := s.st.UpdateGame(c.Request.Context(), g); err != nil {
				s.fail(c, err)
				return
			}
			c.JSON(http.StatusOK, g)
		})

	r.DELETE("/api/games/:id",
		s.guard(GuardConfig{Model: "Game", IDParam: "id"}),
		func(c *gin.Context) {
			if err := s.st.DeleteGame(c.Request.Context(), parseUint(c.Param("id"))); err != nil {
				s.fail(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": "deleted"})
		})

	r.GET("/api/gamesVariants", func(c *gin.Context) {
		page := paginate(c, []string{"created_at", "name"})
		vars, total, err := s.st.ListVariants(c.Request.Context(), tenantFrom(c), page)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"gamesVariants": vars, "total": total, "page": page.Page, "pageSize": page.PageSize})
	})

	// creating a variant references a parent game; the body guard stops a
	// non-admin from hanging a variant off another site's game
	r.POST("/api/gamesVariants",
		s.guard(GuardConfig{Model: "Game", BodyField: "GameID"}),
		func(c *gin.Context) {
			var v models.GamesVariant
			if err := c.ShouldBindJSON(&v); err != nil {
				s.respondError(c, http.StatusBadRequest, "invalid payload")
				return
			}
			if v.GameID == 0 {
				s.respondError(c, http.StatusBadRequest, "GameID is required")
				return
			}
			if err := s.st.CreateVariant(c.Request.Context(), &v); err != nil {
				s.fail(c, err)
				return
			}
			c.JSON(http.StatusCreated, gin.H{"id": v.ID})
		})

	// authoritative state push from the game runtime, fanned out to kiosks
	r.POST("/api/livescore", func(c *gin.Context) {
		var st livescore.State
		if err := c.ShouldBindJSON(&st); err != nil {
			s.respondError(c, http.StatusBadRequest, "invalid payload")
			return
		}
		s.hub.Broadcast(st)
		c.JSON(http.StatusOK, gin.H{"message": "broadcast"})
	})
}
