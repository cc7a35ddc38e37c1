package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"english-practice-bot/internal/metrics"

	"go.uber.org/zap"
)

// FallbackResponse отправляется пользователю, если провайдер вернул пустой или битый ответ
const FallbackResponse = "No response"

// Completer превращает один промпт в один ответ провайдера
type Completer struct {
	client  AIClient
	options GenerationOptions
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewCompleter создает новый Completer поверх AI клиента
func NewCompleter(client AIClient, options GenerationOptions, m *metrics.Metrics, logger *zap.Logger) *Completer {
	return &Completer{
		client:  client,
		options: options,
		metrics: m,
		logger:  logger,
	}
}

// Complete отправляет prompt как единственное сообщение пользователя.
// Некорректный ответ провайдера превращается в FallbackResponse без ошибки;
// сетевые ошибки и ошибки API возвращаются вызывающему с ErrCompletionUnavailable.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	resp, err := c.client.GenerateResponse(ctx, []Message{
		{
			Role:    "user",
			Content: prompt,
		},
	}, c.options)
	elapsed := time.Since(start).Seconds()

	switch {
	case errors.Is(err, ErrInvalidResponse):
		c.logger.Warn("некорректный ответ AI, используем заглушку",
			zap.String("provider", c.client.GetName()),
			zap.Error(err))
		c.metrics.RecordAIRequest("fallback", elapsed)
		return FallbackResponse, nil

	case err != nil:
		c.metrics.RecordAIRequest("failed", elapsed)
		if !errors.Is(err, ErrCompletionUnavailable) {
			err = fmt.Errorf("%w: %w", ErrCompletionUnavailable, err)
		}
		return "", err
	}

	if strings.TrimSpace(resp.Content) == "" {
		c.logger.Warn("пустой ответ AI, используем заглушку", zap.String("provider", c.client.GetName()))
		c.metrics.RecordAIRequest("fallback", elapsed)
		return FallbackResponse, nil
	}

	c.metrics.RecordAIRequest("success", elapsed)
	return resp.Content, nil
}
