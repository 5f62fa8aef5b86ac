package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/revivewell/internal/config"
	"github.com/revivewell/internal/handler"
	"github.com/revivewell/internal/logging"
	"github.com/revivewell/internal/metrics"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, cfg config.AppConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger())
	r.Use(metrics.Middleware())
	r.Use(handler.CORS(cfg.CORSAllowedOrigins))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 无需令牌的辅助接口
	r.POST("/chat", api.Chat)
	r.POST("/getEvents", api.GetEvents)
	r.GET("/getEvents", api.GetEvents)
	r.GET("/meetings", api.Meetings)
	r.POST("/meetings", api.Meetings)
	r.POST("/predict", api.Predict)

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/register", api.Register)
		apiGroup.POST("/login", api.Login)

		// 需要令牌的接口
		protected := apiGroup.Group("")
		protected.Use(api.AuthRequired())
		{
			protected.GET("/profile", api.GetProfile)
			protected.PUT("/profile", api.UpdateProfile)
			protected.GET("/user/profile", api.GetProfile)
			protected.PUT("/user/profile", api.UpdateProfile)
			protected.POST("/new-user-form", api.SubmitNewUserForm)

			protected.POST("/daily-checkin", api.CreateCheckin)
			protected.GET("/daily-checkins", api.ListCheckins)

			protected.GET("/appointments", api.ListAppointments)
			protected.POST("/appointments", api.CreateAppointment)

			protected.GET("/messages", api.ListMessages)
			protected.POST("/messages", api.SendMessage)

			protected.GET("/dashboard-stats", api.DashboardStats)
		}
	}

	return r
}
