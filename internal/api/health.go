package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openclaw/missionctl/internal/models"
	"gorm.io/gorm"
)

// handleHealth reports liveness plus row counts for quick sanity checks.
func handleHealth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var agents, events, sessions, costEvents int64
		db.Model(&models.Agent{}).Count(&agents)
		db.Model(&models.Event{}).Count(&events)
		db.Model(&models.Session{}).Count(&sessions)
		db.Model(&models.CostEvent{}).Count(&costEvents)

		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"agents":      agents,
			"events":      events,
			"sessions":    sessions,
			"cost_events": costEvents,
		})
	}
}
