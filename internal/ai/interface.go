package ai

import (
	"context"
	"errors"
)

var (
	// ErrCompletionUnavailable сетевая ошибка или ошибка API провайдера
	ErrCompletionUnavailable = errors.New("AI провайдер недоступен")
	// ErrInvalidResponse ответ провайдера не содержит текста в ожидаемом формате
	ErrInvalidResponse = errors.New("некорректный ответ AI провайдера")
)

// Message представляет сообщение для AI
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response представляет ответ от AI
type Response struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	Usage        Usage  `json:"usage"`
	FinishReason string `json:"finish_reason"`
	Provider     string `json:"provider"`
}

// Usage представляет статистику использования токенов
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerationOptions опции для генерации ответа
type GenerationOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// AIClient интерфейс для работы с AI провайдерами
type AIClient interface {
	// GenerateResponse генерирует ответ на основе сообщений
	GenerateResponse(ctx context.Context, messages []Message, options GenerationOptions) (*Response, error)

	// GetName возвращает название провайдера
	GetName() string
}

// AIConfig содержит конфигурацию для AI клиентов
type AIConfig struct {
	Provider   string
	Model      string
	DeepSeek   DeepSeekConfig
	OpenRouter OpenRouterConfig
}

// DeepSeekConfig конфигурация DeepSeek
type DeepSeekConfig struct {
	APIKey  string
	BaseURL string
}

// OpenRouterConfig конфигурация OpenRouter
type OpenRouterConfig struct {
	APIKey   string
	BaseURL  string
	SiteURL  string
	SiteName string
}
