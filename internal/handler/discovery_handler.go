package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/revivewell/internal/scraper"
)

type eventsRequest struct {
	Query string `json:"query"`
}

type meetingsRequest struct {
	Location string `json:"location"`
}

// GetEvents 抓取活动列表，没有结果时返回单个错误条目
func (a *API) GetEvents(c *gin.Context) {
	var payload eventsRequest
	if c.Request.Method == http.MethodPost {
		if !bindOptionalJSON(c, &payload, "Invalid request body") {
			return
		}
	}
	query := strings.TrimSpace(payload.Query)
	if query == "" {
		query = c.Query("query")
	}

	listings, err := a.events.FetchListings(c.Request.Context(), query)
	if err != nil {
		c.Error(err)
		listings = nil
	}
	if len(listings) == 0 {
		c.JSON(http.StatusOK, []gin.H{{"error": "No events found"}})
		return
	}

	c.JSON(http.StatusOK, listings)
}

// Meetings 返回附近的互助会；实时查询失败时返回内置数据并附带 warning
func (a *API) Meetings(c *gin.Context) {
	location := c.Query("location")
	if c.Request.Method == http.MethodPost {
		var payload meetingsRequest
		if !bindOptionalJSON(c, &payload, "Invalid request body") {
			return
		}
		if strings.TrimSpace(payload.Location) != "" {
			location = payload.Location
		}
	}

	result := a.meetings.FindMeetings(c.Request.Context(), location)
	if result.Meetings == nil {
		result.Meetings = []scraper.Meeting{}
	}
	c.JSON(http.StatusOK, result)
}
