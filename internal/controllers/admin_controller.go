package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ArtfulOneXD/MetaTest/internal/services"
)

// AdminController holds the operational endpoints.
type AdminController struct {
	sessions *services.SessionService
}

func NewAdminController(sessions *services.SessionService) *AdminController {
	return &AdminController{sessions: sessions}
}

// Sweep finalizes every session that has been inactive for at least one
// window. The deployment can hit this from a cron as a fallback to the
// per-session timers; the two paths share one guard, so a session is never
// finalized twice.
func (c *AdminController) Sweep(ctx *gin.Context) {
	finalized := c.sessions.SweepInactive(time.Now())
	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"finalized": finalized,
		"active":    c.sessions.ActiveSessions(),
	})
}
