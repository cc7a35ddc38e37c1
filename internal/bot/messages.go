package bot

import (
	"fmt"

	"english-practice-bot/pkg/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Тексты ответов пользователю
const (
	welcomeText       = "Welcome! Please choose your English level:"
	changeLevelText   = "Please choose your new English level:"
	englishOnlyText   = "Sorry, I can only understand English. Please write in English."
	storageFailedText = "Sorry, something went wrong. Please try again later."
)

// Messages собирает ответы бота
type Messages struct{}

// NewMessages создает набор сообщений
func NewMessages() *Messages {
	return &Messages{}
}

func (m *Messages) Welcome() string {
	return welcomeText
}

func (m *Messages) ChangeLevel() string {
	return changeLevelText
}

// LevelSet подтверждает сохранение уровня
func (m *Messages) LevelSet(level string) string {
	return fmt.Sprintf("Your level is set to %s.", level)
}

func (m *Messages) EnglishOnly() string {
	return englishOnlyText
}

func (m *Messages) StorageFailed() string {
	return storageFailedText
}

// LevelKeyboard возвращает inline клавиатуру с кнопкой на каждый уровень.
// Данные кнопки совпадают с кодом уровня.
func (m *Messages) LevelKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(models.AllLevels()))
	for _, level := range models.AllLevels() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(level, level),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Commands возвращает меню команд бота
func (m *Messages) Commands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "Choose your English level"},
		{Command: "change", Description: "Change your English level"},
	}
}
