package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DashboardStats 按角色返回仪表盘数据
func (a *API) DashboardStats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Token is missing")
		return
	}

	stats, err := a.dashboard.Stats(c.Request.Context(), user)
	if err != nil {
		handleServiceError(c, err, "Failed to load dashboard")
		return
	}

	if stats.Patient != nil {
		c.JSON(http.StatusOK, stats.Patient)
		return
	}
	c.JSON(http.StatusOK, stats.Clinician)
}
