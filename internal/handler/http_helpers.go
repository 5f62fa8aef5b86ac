package handler

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/revivewell/internal/db"
	"github.com/revivewell/internal/logging"
	"github.com/revivewell/internal/service"
)

const currentUserContextKey = "__current_user"

var registerJSONNames sync.Once

// 校验错误中使用 JSON 字段名，与客户端提交的键保持一致
func useJSONFieldNames() {
	registerJSONNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
	})
}

// respondError 输出错误响应；前端读取 message，error 保留给旧客户端
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message, "error": message})
}

// bindJSON 解析请求体；校验失败时返回第一个出错字段，其它解析错误使用 message
func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	useJSONFieldNames()
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, bindErrorMessage(err, message))
		return false
	}
	return true
}

// bindOptionalJSON 与 bindJSON 相同，但允许空请求体
func bindOptionalJSON(c *gin.Context, dst interface{}, message string) bool {
	useJSONFieldNames()
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, bindErrorMessage(err, message))
		return false
	}
	return true
}

func bindErrorMessage(err error, fallback string) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fallback
	}

	field := verrs[0]
	if field.Tag() == "required" {
		return "Missing required field: " + field.Field()
	}
	return "Invalid field: " + field.Field()
}

func currentUser(c *gin.Context) (db.User, bool) {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return db.User{}, false
	}
	user, ok := value.(db.User)
	return user, ok
}

// handleServiceError 将服务层错误映射为 HTTP 状态码
func handleServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, errorDetail(err, service.ErrInvalidInput))
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrConflict):
		respondError(c, http.StatusConflict, errorDetail(err, service.ErrConflict))
	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, errorDetail(err, service.ErrForbidden))
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, errorDetail(err, service.ErrNotFound))
	default:
		c.Error(err)
		logging.Error().Err(err).Str("route", c.FullPath()).Msg(fallback)
		respondError(c, http.StatusInternalServerError, fallback)
	}
}

// errorDetail 去掉哨兵前缀，首字母大写后返回给客户端
func errorDetail(err, sentinel error) string {
	detail := strings.TrimPrefix(err.Error(), sentinel.Error())
	detail = strings.TrimSpace(strings.TrimPrefix(detail, ":"))
	if detail == "" {
		detail = sentinel.Error()
	}
	return strings.ToUpper(detail[:1]) + detail[1:]
}
