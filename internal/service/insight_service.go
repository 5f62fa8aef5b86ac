package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// InsightGenerator 将打卡记录交给外部模型，返回自由文本建议
type InsightGenerator interface {
	GenerateInsights(ctx context.Context, checkins []CheckinRecord) (string, error)
}

// ChatResponder 处理无需登录的自由对话
type ChatResponder interface {
	Reply(ctx context.Context, message string) (string, error)
}

const (
	insightSystemPrompt = "You are a mental health and addiction recovery expert. " +
		"Based on the following user check-in data, provide a personalized recovery plan, " +
		"including practical coping strategies, emotional support, and do's and don'ts. " +
		"Your advice should be positive, research-backed, and aligned with professional therapy recommendations."

	chatSystemPrompt = "You are an addiction recovery consultant and mental health supporter. " +
		"You provide compassionate, research-backed advice on overcoming substance addiction, " +
		"coping mechanisms, therapy recommendations, and emotional support. " +
		"You do NOT discuss unrelated topics and always encourage professional consultation when necessary."

	defaultInsightMaxTokens   = 600
	defaultInsightTemperature = 0.4
	defaultChatTemperature    = 0.7
)

// AIService 基于 OpenAI 兼容接口实现 InsightGenerator 与 ChatResponder
type AIService struct {
	client *aiChatClient
}

// NewAIService 构造 AIService
func NewAIService(cfg LLMConfig) *AIService {
	return &AIService{client: newAIChatClient(cfg)}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (s *AIService) SetHTTPClient(client httpDoer) {
	s.client.SetHTTPClient(client)
}

// SetBaseURL 覆盖接口地址。
func (s *AIService) SetBaseURL(base string) {
	s.client.SetBaseURL(base)
}

// GenerateInsights 根据打卡记录生成简短的康复建议
func (s *AIService) GenerateInsights(ctx context.Context, checkins []CheckinRecord) (string, error) {
	userPrompt, err := buildInsightPrompt(checkins)
	if err != nil {
		return "", err
	}
	logAIExchange("INSIGHT", "prompt", userPrompt)

	result, err := s.client.complete(ctx, aiChatRequest{
		SystemPrompt: insightSystemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    defaultInsightMaxTokens,
		Temperature:  defaultInsightTemperature,
	})
	if err != nil {
		return "", err
	}

	logAIExchange("INSIGHT", "response", result.Content)
	return result.Content, nil
}

// Reply 以康复顾问身份回复自由文本
func (s *AIService) Reply(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	logAIExchange("CHAT", "prompt", message)

	result, err := s.client.complete(ctx, aiChatRequest{
		SystemPrompt: chatSystemPrompt,
		UserPrompt:   message,
		Temperature:  defaultChatTemperature,
	})
	if err != nil {
		return "", err
	}

	logAIExchange("CHAT", "response", result.Content)
	return result.Content, nil
}

func buildInsightPrompt(checkins []CheckinRecord) (string, error) {
	encoded, err := json.Marshal(checkins)
	if err != nil {
		return "", fmt.Errorf("encode checkins: %w", err)
	}

	var builder strings.Builder
	builder.WriteString("Here are the latest check-ins:\n")
	builder.Write(encoded)
	builder.WriteString("\nGenerate a structured response. Make it short, just two points in each section.")
	return builder.String(), nil
}
