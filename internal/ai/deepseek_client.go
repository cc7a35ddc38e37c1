package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultDeepSeekBaseURL = "https://api.deepseek.com/v1"
	defaultDeepSeekModel   = "deepseek-chat"
)

// DeepSeekClient отправляет промпты упражнений в chat completions API DeepSeek
type DeepSeekClient struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewDeepSeekClient(apiKey, baseURL, model string, logger *zap.Logger) *DeepSeekClient {
	if baseURL == "" {
		baseURL = defaultDeepSeekBaseURL
	}
	if model == "" {
		model = defaultDeepSeekModel
	}

	return &DeepSeekClient{
		endpoint:   strings.TrimRight(baseURL, "/") + "/chat/completions",
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger.With(zap.String("provider", "deepseek")),
	}
}

type DeepSeekRequest struct {
	Model       string            `json:"model"`
	Messages    []DeepSeekMessage `json:"messages"`
	Temperature float64           `json:"temperature,omitempty"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Stream      bool              `json:"stream"`
}

type DeepSeekMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type DeepSeekResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      DeepSeekMessage `json:"message"`
		FinishReason string          `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

type deepSeekError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *DeepSeekClient) GenerateResponse(ctx context.Context, messages []Message, options GenerationOptions) (*Response, error) {
	payload := DeepSeekRequest{
		Model:       c.model,
		Messages:    make([]DeepSeekMessage, 0, len(messages)),
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
	}
	for _, msg := range messages {
		payload.Messages = append(payload.Messages, DeepSeekMessage{Role: msg.Role, Content: msg.Content})
	}

	body, err := c.post(ctx, payload)
	if err != nil {
		return nil, err
	}

	var completion DeepSeekResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, fmt.Errorf("%w: DeepSeek вернул не JSON: %v", ErrInvalidResponse, err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: в ответе DeepSeek нет choices", ErrInvalidResponse)
	}

	first := completion.Choices[0]
	c.logger.Debug("упражнение сгенерировано",
		zap.String("model", completion.Model),
		zap.Int("total_tokens", completion.Usage.TotalTokens),
		zap.String("finish_reason", first.FinishReason))

	return &Response{
		Content:      first.Message.Content,
		Model:        completion.Model,
		Usage:        completion.Usage,
		FinishReason: first.FinishReason,
		Provider:     "deepseek",
	}, nil
}

// post выполняет запрос и возвращает тело успешного ответа
func (c *DeepSeekClient) post(ctx context.Context, payload DeepSeekRequest) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("не удалось закодировать запрос к DeepSeek: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("не удалось подготовить запрос к DeepSeek: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Debug("запрос упражнения", zap.String("model", payload.Model), zap.Int("messages", len(payload.Messages)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: DeepSeek недоступен: %w", ErrCompletionUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: обрыв ответа DeepSeek: %w", ErrCompletionUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		reason := string(body)
		var apiErr deepSeekError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			reason = apiErr.Error.Message
		}
		c.logger.Warn("DeepSeek отклонил запрос",
			zap.Int("status_code", resp.StatusCode),
			zap.String("reason", reason))
		return nil, fmt.Errorf("%w: DeepSeek ответил %d: %s", ErrCompletionUnavailable, resp.StatusCode, reason)
	}

	return body, nil
}

func (c *DeepSeekClient) GetName() string {
	return "DeepSeek"
}
