package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/revivewell/internal/service"
)

// flexInt 接受数字或数字字符串，滑块控件提交的值是字符串
type flexInt int

func (v *flexInt) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) > 0 && raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return err
		}
		raw = []byte(strings.TrimSpace(text))
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return fmt.Errorf("not an integer: %s", data)
	}
	*v = flexInt(n)
	return nil
}

func (v *flexInt) intPtr() *int {
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}

type checkinRequest struct {
	Mood                 *flexInt `json:"mood"`
	Cravings             *flexInt `json:"cravings"`
	Challenges           string   `json:"challenges"`
	Goals                string   `json:"goals"`
	NeedCounselor        bool     `json:"needCounselor"`
	NeedSupportGroup     bool     `json:"needSupportGroup"`
	NeedEmergencyContact bool     `json:"needEmergencyContact"`
}

// CreateCheckin 记录一次每日打卡
func (a *API) CreateCheckin(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Token is missing")
		return
	}

	var payload checkinRequest
	if !bindOptionalJSON(c, &payload, "Invalid check-in data") {
		return
	}

	checkin, err := a.checkins.Create(c.Request.Context(), user, service.CheckinInput{
		Mood:                 payload.Mood.intPtr(),
		Cravings:             payload.Cravings.intPtr(),
		Challenges:           payload.Challenges,
		Goals:                payload.Goals,
		NeedCounselor:        payload.NeedCounselor,
		NeedSupportGroup:     payload.NeedSupportGroup,
		NeedEmergencyContact: payload.NeedEmergencyContact,
	})
	if err != nil {
		handleServiceError(c, err, "Failed to submit check-in")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Check-in submitted successfully",
		"checkinId": checkin.ID,
	})
}

// ListCheckins 返回可见的打卡记录及模型生成的建议
func (a *API) ListCheckins(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Token is missing")
		return
	}

	records, err := a.checkins.List(c.Request.Context(), user)
	if err != nil {
		handleServiceError(c, err, "Failed to load check-ins")
		return
	}
	if records == nil {
		records = []service.CheckinRecord{}
	}

	insights, err := a.insights.GenerateInsights(c.Request.Context(), records)
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch LLM response: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checkins":          records,
		"llm_insights":      insights,
		"llm_insights_html": renderMarkdown(insights),
	})
}
