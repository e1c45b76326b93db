package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hearth/internal/services"
)

// HealthHandler exposes the monthly summary and the financial health score.
type HealthHandler struct {
	healthService services.HealthServicer
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(healthService services.HealthServicer) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

// GetSummary returns the user's monthly financial summary.
func (h *HealthHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.healthService.GetSummary(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetHealthScore returns the 0-100 financial health score with
// recommendations.
func (h *HealthHandler) GetHealthScore(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	score, err := h.healthService.GetHealthScore(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"health": score})
}
