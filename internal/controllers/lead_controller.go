package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArtfulOneXD/MetaTest/internal/services"
	"github.com/ArtfulOneXD/MetaTest/internal/utils"
)

// LeadController exposes the local lead store.
type LeadController struct {
	leads *services.LeadService
}

func NewLeadController(leads *services.LeadService) *LeadController {
	return &LeadController{leads: leads}
}

// GetAllLeads lists stored leads; ?followUp=true narrows to leads flagged
// for follow-up.
func (c *LeadController) GetAllLeads(ctx *gin.Context) {
	followUpOnly := ctx.Query("followUp") == "true"

	leads := c.leads.All(followUpOnly)
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(leads),
		"leads":   leads,
	})
}

// GetLeadStats returns store-wide counters.
func (c *LeadController) GetLeadStats(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   c.leads.Stats(),
	})
}

// GetLeadsForUser lists the leads extracted from one user's past sessions.
func (c *LeadController) GetLeadsForUser(ctx *gin.Context) {
	psid := ctx.Param("psid")
	if err := utils.ValidatePSID(psid); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	leads := c.leads.ForUser(psid)
	if len(leads) == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "No leads for this user",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(leads),
		"leads":   leads,
	})
}
