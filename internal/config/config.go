package config

import (
	"fmt"
	"os"
	"strings"
)

// 临床人员查看打卡记录的范围
const (
	CheckinScopeAll      = "all"
	CheckinScopeCaseload = "caseload"
)

// AppConfig 汇总运行服务所需的基础配置。
// 密钥类配置只从环境变量读取，不提供源码内的默认值。
type AppConfig struct {
	ListenAddr            string
	Port                  string
	DatabasePath          string
	GinMode               string
	TokenSecret           string
	LLMBaseURL            string
	LLMModel              string
	LLMAPIKey             string
	ClassifierModelPath   string
	ClinicianCheckinScope string
	CORSAllowedOrigins    []string
	LogLevel              string
	LogFormat             string
	GeocoderBaseURL       string
	MeetingsBaseURL       string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := envOrDefault("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	scope := strings.ToLower(envOrDefault("CLINICIAN_CHECKIN_SCOPE", CheckinScopeAll))
	if scope != CheckinScopeCaseload {
		scope = CheckinScopeAll
	}

	return AppConfig{
		ListenAddr:            listenAddr,
		Port:                  port,
		DatabasePath:          envOrDefault("DATABASE_PATH", "revivewell.db"),
		GinMode:               envOrDefault("GIN_MODE", "release"),
		TokenSecret:           strings.TrimSpace(os.Getenv("TOKEN_SECRET")),
		LLMBaseURL:            envOrDefault("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:              envOrDefault("LLM_MODEL", "llama-3.3-70b-versatile"),
		LLMAPIKey:             strings.TrimSpace(os.Getenv("LLM_API_KEY")),
		ClassifierModelPath:   envOrDefault("CLASSIFIER_MODEL_PATH", "models/classifier.yaml"),
		ClinicianCheckinScope: scope,
		CORSAllowedOrigins:    splitList(envOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:              envOrDefault("LOG_LEVEL", "info"),
		LogFormat:             envOrDefault("LOG_FORMAT", "json"),
		GeocoderBaseURL:       envOrDefault("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		MeetingsBaseURL:       envOrDefault("MEETINGS_BASE_URL", "https://www.aa.org/find-aa/north-america"),
	}
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
