package bot

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"english-practice-bot/internal/ai"
	"english-practice-bot/internal/metrics"
	"english-practice-bot/pkg/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// BotAPI часть Telegram API, которую использует обработчик
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// LevelService сохраняет выбранный уровень
type LevelService interface {
	SetLevel(ctx context.Context, userID int64, level string) error
}

// Completer получает ответ модели на промпт
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Handler представляет обработчик сообщений Telegram
type Handler struct {
	bot       BotAPI
	levels    LevelService
	completer Completer
	messages  *Messages
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewHandler создает новый обработчик
func NewHandler(
	bot BotAPI,
	levels LevelService,
	completer Completer,
	metrics *metrics.Metrics,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:       bot,
		levels:    levels,
		completer: completer,
		messages:  NewMessages(),
		metrics:   metrics,
		logger:    logger,
	}
}

// RegisterCommands публикует меню команд бота
func (h *Handler) RegisterCommands() error {
	if _, err := h.bot.Request(tgbotapi.NewSetMyCommands(h.messages.Commands()...)); err != nil {
		return err
	}
	return nil
}

// HandleUpdate обрабатывает одно обновление Telegram
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	// Обрабатываем inline кнопки
	if update.CallbackQuery != nil {
		h.metrics.RecordUpdate("callback")
		return h.handleCallbackQuery(ctx, update.CallbackQuery)
	}

	message := update.Message
	if message == nil || message.Chat == nil || strings.Trim(message.Text, asciiSpace) == "" {
		h.metrics.RecordUpdate("ignored")
		return nil
	}

	h.logger.Debug("получено обновление",
		zap.Int64("chat_id", message.Chat.ID),
		zap.String("text", message.Text))

	// Обрабатываем команды
	if message.IsCommand() {
		switch message.Command() {
		case "start":
			h.metrics.RecordUpdate("command")
			return h.sendLevelChoice(message.Chat.ID, h.messages.Welcome())
		case "change":
			h.metrics.RecordUpdate("command")
			return h.sendLevelChoice(message.Chat.ID, h.messages.ChangeLevel())
		}
	}

	h.metrics.RecordUpdate("message")
	return h.handleMessage(ctx, message)
}

// handleCallbackQuery сохраняет выбранный уровень и начинает первое упражнение
func (h *Handler) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	level := callback.Data
	if !models.IsValidLevel(level) {
		h.logger.Debug("неизвестный callback", zap.String("data", level))
		return nil
	}

	var userID int64
	if callback.From != nil {
		userID = callback.From.ID
	}
	chatID := userID
	if callback.Message != nil && callback.Message.Chat != nil {
		chatID = callback.Message.Chat.ID
	}

	// Отвечаем на callback (убираем "загрузку" кнопки)
	defer h.answerCallback(callback.ID)

	h.logger.Info("обрабатываем выбор уровня", zap.Int64("user_id", userID), zap.String("level", level))

	if err := h.levels.SetLevel(ctx, userID, level); err != nil {
		h.logger.Error("ошибка сохранения уровня пользователя",
			zap.Int64("user_id", userID),
			zap.Error(err))
		if sendErr := h.sendMessage(chatID, h.messages.StorageFailed()); sendErr != nil {
			return errors.Join(err, sendErr)
		}
		return err
	}
	h.metrics.RecordLevelChange(level)

	if err := h.sendMessage(chatID, h.messages.LevelSet(level)); err != nil {
		return err
	}

	return h.sendMessage(chatID, h.complete(ctx, userID, GreetingPrompt(level)))
}

// handleMessage отвечает на свободный текст пользователя
func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	var userID int64
	if message.From != nil {
		userID = message.From.ID
	}

	// Проверяем исходный текст: юникодные пробелы по краям тоже не ASCII
	if !isASCII(message.Text) {
		h.logger.Debug("сообщение не на английском", zap.Int64("user_id", userID))
		return h.sendMessage(message.Chat.ID, h.messages.EnglishOnly())
	}

	text := strings.Trim(message.Text, asciiSpace)
	return h.sendMessage(message.Chat.ID, h.complete(ctx, userID, AnswerPrompt(text)))
}

// complete возвращает текст ответа модели; при ошибке провайдера возвращает заглушку
func (h *Handler) complete(ctx context.Context, userID int64, prompt string) string {
	reply, err := h.completer.Complete(ctx, prompt)
	if err != nil {
		h.logger.Error("ошибка генерации ответа AI",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return ai.FallbackResponse
	}
	return reply
}

func (h *Handler) answerCallback(callbackID string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		h.logger.Error("ошибка ответа на callback", zap.Error(err))
	}
}

// sendMessage отправляет текст без разметки
func (h *Handler) sendMessage(chatID int64, text string) error {
	if _, err := h.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		h.logger.Error("ошибка отправки сообщения",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return err
	}
	return nil
}

// sendLevelChoice отправляет сообщение с клавиатурой выбора уровня
func (h *Handler) sendLevelChoice(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = h.messages.LevelKeyboard()

	if _, err := h.bot.Send(msg); err != nil {
		h.logger.Error("ошибка отправки сообщения с клавиатурой",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return err
	}
	return nil
}

// asciiSpace пробельные символы, которые обрезаются у текста сообщения
const asciiSpace = " \t\n\v\f\r"

// isASCII проверяет, что все символы текста имеют код меньше 128
func isASCII(text string) bool {
	for _, r := range text {
		if r >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
