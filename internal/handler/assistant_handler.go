package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/revivewell/internal/classifier"
	"github.com/revivewell/internal/service"
)

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

type predictRequest struct {
	Features []float64 `json:"features" binding:"required,min=1"`
}

// Chat 转发给康复顾问模型，无需登录
func (a *API) Chat(c *gin.Context) {
	var payload chatRequest
	if !bindJSON(c, &payload, "Message is required") {
		return
	}

	reply, err := a.chat.Reply(c.Request.Context(), payload.Message)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			respondError(c, http.StatusBadRequest, "Message is required")
			return
		}
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch response: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// Predict 使用预训练模型对特征向量做推理
func (a *API) Predict(c *gin.Context) {
	if a.predictor == nil {
		respondError(c, http.StatusInternalServerError, "Classifier model is not available")
		return
	}

	var payload predictRequest
	if !bindJSON(c, &payload, "Features must be a list of numbers") {
		return
	}

	prediction, err := a.predictor.Predict(payload.Features)
	if err != nil {
		if errors.Is(err, classifier.ErrFeatureMismatch) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "Prediction failed")
		return
	}

	c.JSON(http.StatusOK, prediction)
}
