package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/revivewell/internal/auth"
	"github.com/revivewell/internal/db"
	"github.com/revivewell/internal/logging"
	"github.com/revivewell/internal/metrics"
	"github.com/revivewell/internal/service"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	UserType string `json:"userType" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register 创建账号并直接签发令牌
func (a *API) Register(c *gin.Context) {
	var payload registerRequest
	if !bindJSON(c, &payload, "Invalid request body") {
		return
	}

	user, err := a.users.CreateUser(c.Request.Context(), service.NewUserInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		Role:     payload.UserType,
	})
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			respondError(c, http.StatusConflict, "User with this email already exists")
			return
		}
		handleServiceError(c, err, "Failed to register user")
		return
	}

	a.respondWithToken(c, http.StatusCreated, "User registered successfully", *user)
}

// Login 校验凭据并签发令牌
func (a *API) Login(c *gin.Context) {
	var payload loginRequest
	if !bindJSON(c, &payload, "Missing email or password") {
		return
	}

	user, err := a.users.Authenticate(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			metrics.AuthFailures.WithLabelValues("bad_credentials").Inc()
		}
		handleServiceError(c, err, "Failed to log in")
		return
	}

	a.respondWithToken(c, http.StatusOK, "Login successful", *user)
}

func (a *API) respondWithToken(c *gin.Context, status int, message string, user db.User) {
	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		handleServiceError(c, err, "Failed to issue token")
		return
	}

	c.JSON(status, gin.H{
		"message": message,
		"token":   token,
		"user":    userPayload(user),
	})
}

// AuthRequired 校验 Bearer 令牌并加载当前用户，失败时返回 401
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			a.rejectToken(c, "missing", "Token is missing")
			return
		}

		userID, err := a.tokens.Verify(raw)
		if err != nil {
			reason := "invalid"
			if errors.Is(err, auth.ErrTokenExpired) {
				reason = "expired"
			}
			a.rejectToken(c, reason, "Invalid token")
			return
		}

		user, err := a.users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				a.rejectToken(c, "unknown_user", "Invalid token")
				return
			}
			handleServiceError(c, err, "Failed to load user")
			c.Abort()
			return
		}

		c.Set(currentUserContextKey, *user)
		c.Set(logging.UserIDContextKey, user.ID)
		c.Next()
	}
}

func (a *API) rejectToken(c *gin.Context, reason, message string) {
	metrics.AuthFailures.WithLabelValues(reason).Inc()
	logging.Debug().Str("reason", reason).Str("path", c.Request.URL.Path).Msg("request rejected by access guard")
	respondError(c, http.StatusUnauthorized, message)
	c.Abort()
}

func userPayload(user db.User) gin.H {
	return gin.H{
		"id":       user.ID,
		"name":     user.Name,
		"email":    user.Email,
		"userType": user.UserType,
	}
}
