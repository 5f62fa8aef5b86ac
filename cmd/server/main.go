package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/revivewell/internal/auth"
	"github.com/revivewell/internal/classifier"
	"github.com/revivewell/internal/config"
	"github.com/revivewell/internal/db"
	"github.com/revivewell/internal/handler"
	"github.com/revivewell/internal/logging"
	"github.com/revivewell/internal/router"
)

func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		logging.Error().Err(err).Str("path", cfg.DatabasePath).Msg("failed to initialize database")
		os.Exit(1)
	}

	secret := cfg.TokenSecret
	if secret == "" {
		generated, err := auth.RandomSecret()
		if err != nil {
			logging.Error().Err(err).Msg("failed to generate token secret")
			os.Exit(1)
		}
		secret = generated
		logging.Warn().Msg("TOKEN_SECRET is not set; using a random secret, tokens will not survive a restart")
	}

	tokens, err := auth.NewTokenService(secret, auth.DefaultTokenTTL)
	if err != nil {
		logging.Error().Err(err).Msg("failed to create token service")
		os.Exit(1)
	}

	if cfg.LLMAPIKey == "" {
		logging.Warn().Msg("LLM_API_KEY is not set; insights and chat will fail")
	}

	var collab handler.Collaborators
	if model, err := classifier.Load(cfg.ClassifierModelPath); err != nil {
		logging.Warn().Err(err).Str("path", cfg.ClassifierModelPath).Msg("classifier model unavailable")
	} else {
		collab.Predictor = model
	}

	api := handler.NewAPI(db.DB, cfg, tokens, collab)

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, cfg)
	logging.Info().Str("addr", cfg.ListenAddr).Msg("server starting")
	if err := r.Run(cfg.ListenAddr); err != nil {
		logging.Error().Err(err).Msg("failed to run server")
		os.Exit(1)
	}
}
