package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// maxBodySize ограничение на размер одного обновления
const maxBodySize = 1 << 20

// Dispatcher обрабатывает обновление Telegram
type Dispatcher interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update) error
}

// TelegramWebhookHandler принимает обновления, которые Telegram присылает на webhook
type TelegramWebhookHandler struct {
	dispatcher Dispatcher
	logger     *zap.Logger
}

// NewTelegramWebhookHandler создает новый обработчик webhook'ов
func NewTelegramWebhookHandler(dispatcher Dispatcher, logger *zap.Logger) *TelegramWebhookHandler {
	return &TelegramWebhookHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// ServeHTTP обрабатывает одно обновление.
// Ошибка обработки логируется, Telegram всегда получает 200, чтобы не повторять доставку.
func (h *TelegramWebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Проверяем метод запроса
	if r.Method != http.MethodPost {
		h.logger.Warn("неверный метод webhook запроса", zap.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Читаем тело запроса
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.logger.Error("ошибка чтения тела запроса", zap.Error(err))
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		h.logger.Error("ошибка парсинга обновления", zap.Error(err))
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	h.logger.Debug("получено обновление через webhook", zap.Int("update_id", update.UpdateID))

	if err := h.dispatcher.HandleUpdate(r.Context(), update); err != nil {
		h.logger.Error("ошибка обработки обновления",
			zap.Int("update_id", update.UpdateID),
			zap.Error(err))
	}

	w.WriteHeader(http.StatusOK)
}
