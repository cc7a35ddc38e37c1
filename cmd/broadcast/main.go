package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"english-practice-bot/internal/ai"
	"english-practice-bot/internal/config"
	"english-practice-bot/internal/metrics"
	"english-practice-bot/internal/migrations"
	"english-practice-bot/internal/scheduler"
	"english-practice-bot/internal/store"
	"english-practice-bot/internal/user"
	"english-practice-bot/pkg/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	var (
		userID = flag.Int64("user", 0, "ID пользователя для рассылки (0 = все пользователи)")
		dryRun = flag.Bool("dry-run", false, "Сгенерировать сообщения и вывести в лог без отправки")
	)
	flag.Parse()

	// Инициализация логгера
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Ошибка инициализации логгера:", err)
	}
	defer logger.Sync()

	single, err := singleTarget(*userID)
	if err != nil {
		logger.Fatal("Некорректный флаг -user", zap.Int64("user", *userID), zap.Error(err))
	}

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Ошибка загрузки конфигурации", zap.Error(err))
	}

	if err := migrations.RunMigrations(cfg, logger); err != nil {
		logger.Fatal("Ошибка применения миграций", zap.Error(err))
	}

	// Подключение к базе данных
	store, err := store.NewStore(cfg, logger)
	if err != nil {
		logger.Fatal("Ошибка подключения к базе данных", zap.Error(err))
	}
	defer store.Close()

	aiClient, err := ai.NewAIClient(&ai.AIConfig{
		Provider: cfg.AI.Provider,
		Model:    cfg.AI.Model,
		DeepSeek: ai.DeepSeekConfig{
			APIKey:  cfg.AI.DeepSeek.APIKey,
			BaseURL: cfg.AI.DeepSeek.BaseURL,
		},
		OpenRouter: ai.OpenRouterConfig{
			APIKey:   cfg.AI.OpenRouter.APIKey,
			BaseURL:  cfg.AI.OpenRouter.BaseURL,
			SiteURL:  cfg.AI.OpenRouter.SiteURL,
			SiteName: cfg.AI.OpenRouter.SiteName,
		},
	}, logger)
	if err != nil {
		logger.Fatal("Ошибка создания AI клиента", zap.Error(err))
	}

	// Метрики одноразового запуска никуда не публикуются
	metricsSystem := metrics.New(logger, prometheus.NewRegistry())
	completer := ai.NewCompleter(aiClient, ai.GenerationOptions{
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
	}, metricsSystem, logger)

	var sender scheduler.Sender
	if *dryRun {
		sender = &logSender{logger: logger}
	} else {
		botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			logger.Fatal("Ошибка инициализации Telegram бота", zap.Error(err))
		}
		sender = botAPI
	}

	userService := user.NewService(store, logger)
	job := scheduler.NewBroadcastJob(userService, completer, sender, metricsSystem, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if single {
		// Рассылка конкретному пользователю
		err = broadcastToUser(ctx, userService, job, *userID)
	} else {
		// Рассылка всем пользователям
		err = job.Run(ctx)
	}

	if err != nil {
		logger.Error("Ошибка рассылки", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Рассылка завершена успешно", zap.Bool("dry_run", *dryRun))
}

// singleTarget сообщает, адресована ли рассылка одному пользователю.
// 0 означает всех пользователей, отрицательный ID считается ошибкой.
func singleTarget(userID int64) (bool, error) {
	switch {
	case userID < 0:
		return false, fmt.Errorf("ID пользователя должен быть положительным: %d", userID)
	case userID == 0:
		return false, nil
	default:
		return true, nil
	}
}

type levelLookup interface {
	GetLevel(ctx context.Context, userID int64) (string, error)
}

type userSender interface {
	SendTo(ctx context.Context, user *models.UserLevel) error
}

func broadcastToUser(ctx context.Context, users levelLookup, job userSender, userID int64) error {
	level, err := users.GetLevel(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return errors.New("пользователь не выбрал уровень")
	}
	if err != nil {
		return err
	}

	return job.SendTo(ctx, &models.UserLevel{UserID: userID, Level: level})
}

// logSender выводит сообщения в лог вместо отправки
type logSender struct {
	logger *zap.Logger
}

func (s *logSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		s.logger.Info("DRY RUN: сообщение не отправлено",
			zap.Int64("chat_id", msg.ChatID),
			zap.String("text", msg.Text))
	}
	return tgbotapi.Message{}, nil
}
