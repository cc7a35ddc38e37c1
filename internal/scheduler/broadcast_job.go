package scheduler

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"english-practice-bot/internal/bot"
	"english-practice-bot/internal/metrics"
	"english-practice-bot/pkg/models"
)

// Sender отправляет сообщения в Telegram
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// LevelLister возвращает уровни всех пользователей
type LevelLister interface {
	ListLevels(ctx context.Context) ([]*models.UserLevel, error)
}

// BroadcastJob рассылает каждому пользователю приветствие с вопросом под его уровень
type BroadcastJob struct {
	levels    LevelLister
	completer bot.Completer
	sender    Sender
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewBroadcastJob создает новую джобу рассылки
func NewBroadcastJob(
	levels LevelLister,
	completer bot.Completer,
	sender Sender,
	metrics *metrics.Metrics,
	logger *zap.Logger,
) *BroadcastJob {
	return &BroadcastJob{
		levels:    levels,
		completer: completer,
		sender:    sender,
		metrics:   metrics,
		logger:    logger,
	}
}

// Run рассылает сообщения всем пользователям по очереди.
// Ошибка для одного пользователя не прерывает рассылку остальным.
func (j *BroadcastJob) Run(ctx context.Context) error {
	j.logger.Info("запуск рассылки")

	users, err := j.levels.ListLevels(ctx)
	if err != nil {
		j.logger.Error("ошибка получения пользователей для рассылки", zap.Error(err))
		return fmt.Errorf("ошибка получения пользователей для рассылки: %w", err)
	}
	j.metrics.SetRegisteredUsers(len(users))

	var sent, failed int
	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := j.SendTo(ctx, user); err != nil {
			failed++
			j.logger.Error("ошибка отправки рассылки пользователю",
				zap.Error(err),
				zap.Int64("user_id", user.UserID),
				zap.String("level", user.Level))
			continue
		}
		sent++
	}

	j.logger.Info("рассылка завершена",
		zap.Int("users", len(users)),
		zap.Int("sent", sent),
		zap.Int("failed", failed))
	return nil
}

// SendTo генерирует приветствие для уровня пользователя и отправляет его
func (j *BroadcastJob) SendTo(ctx context.Context, user *models.UserLevel) error {
	text, err := j.completer.Complete(ctx, bot.GreetingPrompt(user.Level))
	if err != nil {
		j.metrics.RecordBroadcastMessage(false)
		return fmt.Errorf("ошибка генерации приветствия: %w", err)
	}

	if _, err := j.sender.Send(tgbotapi.NewMessage(user.UserID, text)); err != nil {
		j.metrics.RecordBroadcastMessage(false)
		return fmt.Errorf("ошибка отправки сообщения: %w", err)
	}

	j.metrics.RecordBroadcastMessage(true)
	return nil
}
