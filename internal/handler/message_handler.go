package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/revivewell/internal/service"
)

type messageRequest struct {
	Content      string `json:"content"`
	ReceiverID   string `json:"receiverId"`
	IsBotMessage bool   `json:"isBotMessage"`
}

// ListMessages 无 partnerId 时返回收件箱，否则返回与对方的会话
func (a *API) ListMessages(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Token is missing")
		return
	}

	records, err := a.messages.List(c.Request.Context(), user, c.Query("partnerId"))
	if err != nil {
		handleServiceError(c, err, "Failed to load messages")
		return
	}
	if records == nil {
		records = []service.MessageRecord{}
	}

	c.JSON(http.StatusOK, records)
}

// SendMessage 发送消息；isBotMessage 为真时会同时写入脚本回复
func (a *API) SendMessage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Token is missing")
		return
	}

	var payload messageRequest
	if !bindOptionalJSON(c, &payload, "Invalid message data") {
		return
	}

	message, err := a.messages.Send(c.Request.Context(), user, service.SendInput{
		Content:    payload.Content,
		ReceiverID: payload.ReceiverID,
		IsBot:      payload.IsBotMessage,
	})
	if err != nil {
		handleServiceError(c, err, "Failed to send message")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Message sent successfully",
		"messageId": message.ID,
	})
}
