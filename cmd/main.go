package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"english-practice-bot/internal/ai"
	"english-practice-bot/internal/bot"
	"english-practice-bot/internal/config"
	"english-practice-bot/internal/metrics"
	"english-practice-bot/internal/migrations"
	"english-practice-bot/internal/scheduler"
	"english-practice-bot/internal/store"
	"english-practice-bot/internal/user"
	"english-practice-bot/internal/webhook"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера
	logger, err := initLogger(&cfg.App)
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("запуск English Practice Bot", zap.String("env", cfg.App.Env))

	// Применение миграций
	if err := migrations.RunMigrations(cfg, logger); err != nil {
		logger.Fatal("ошибка применения миграций", zap.Error(err))
	}

	// Инициализация базы данных
	store, err := store.NewStore(cfg, logger)
	if err != nil {
		logger.Fatal("ошибка инициализации базы данных", zap.Error(err))
	}
	defer store.Close()

	// Инициализация метрик
	metricsSystem := metrics.New(logger, prometheus.DefaultRegisterer)
	metricsHandler := metrics.NewHandler(metricsSystem, store, logger)

	// Инициализация AI клиента
	logger.Info("конфигурация AI",
		zap.String("provider", cfg.AI.Provider),
		zap.String("model", cfg.AI.Model))

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
		logger.Fatal("ошибка создания AI клиента", zap.Error(err))
	}

	completer := ai.NewCompleter(aiClient, ai.GenerationOptions{
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
	}, metricsSystem, logger)

	// Инициализация сервисов
	userService := user.NewService(store, logger)

	// Инициализация Telegram бота
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Fatal("ошибка инициализации Telegram бота", zap.Error(err))
	}

	logger.Info("Telegram бот инициализирован",
		zap.String("username", botAPI.Self.UserName),
		zap.Int64("id", botAPI.Self.ID))

	// Инициализация обработчика
	handler := bot.NewHandler(botAPI, userService, completer, metricsSystem, logger)
	if err := handler.RegisterCommands(); err != nil {
		logger.Warn("не удалось зарегистрировать команды бота", zap.Error(err))
	}

	// Инициализация планировщика рассылки
	loc, err := cfg.Scheduler.Location()
	if err != nil {
		logger.Fatal("ошибка загрузки часового пояса", zap.Error(err))
	}
	taskScheduler := scheduler.NewDailyScheduler(scheduler.Window{
		StartHour: cfg.Scheduler.StartHour,
		EndHour:   cfg.Scheduler.EndHour,
		Location:  loc,
	}, logger)
	taskScheduler.AddJob(scheduler.NewBroadcastJob(userService, completer, botAPI, metricsSystem, logger))

	// Создание канала для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Обработка сигналов для graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup

	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsHandler.MetricsHandler())
	mux.HandleFunc("/health", metricsHandler.HealthHandler)

	if cfg.Telegram.WebhookEnabled() {
		// Webhook endpoint для Telegram
		wh, err := tgbotapi.NewWebhook(cfg.Telegram.GetWebhookURL())
		if err != nil {
			logger.Fatal("некорректный адрес webhook'а", zap.Error(err))
		}
		if _, err := botAPI.Request(wh); err != nil {
			logger.Fatal("ошибка установки webhook'а", zap.Error(err))
		}
		mux.Handle(cfg.Telegram.GetWebhookPath(), webhook.NewTelegramWebhookHandler(handler, logger))
		logger.Info("бот работает через webhook")
	} else {
		if _, err := botAPI.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			logger.Warn("не удалось удалить webhook", zap.Error(err))
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			updateConfig := tgbotapi.NewUpdate(0)
			updateConfig.Timeout = 60
			handler.Poll(ctx, botAPI.GetUpdatesChan(updateConfig))
		}()
		logger.Info("бот работает через long polling")
	}

	// Запуск HTTP сервера
	wg.Add(1)
	go func() {
		defer wg.Done()
		startHTTPServer(ctx, cfg.App.Port, mux, logger)
	}()

	// Запуск планировщика рассылки
	wg.Add(1)
	go func() {
		defer wg.Done()
		taskScheduler.Start(ctx)
	}()

	logger.Info("приложение запущено и готово к работе",
		zap.String("address", fmt.Sprintf("http://localhost:%d", cfg.App.Port)),
	)

	// Ожидание сигнала завершения
	<-sigChan
	logger.Info("получен сигнал завершения, начинаем graceful shutdown")

	// Останавливаем получение обновлений
	if !cfg.Telegram.WebhookEnabled() {
		botAPI.StopReceivingUpdates()
	}
	cancel()
	wg.Wait()

	logger.Info("приложение завершено")
}

// initLogger инициализирует логгер для окружения приложения
func initLogger(app *config.AppConfig) (*zap.Logger, error) {
	// Создаем директорию для логов если её нет
	if err := os.MkdirAll("logs", 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории логов: %w", err)
	}

	loggerConfig := app.LoggerConfig()
	return loggerConfig.Build()
}

// startHTTPServer запускает HTTP сервер для метрик и webhook'а
func startHTTPServer(ctx context.Context, port int, mux *http.ServeMux, logger *zap.Logger) {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("HTTP сервер запущен", zap.String("address", server.Addr))

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("ошибка HTTP сервера", zap.Error(err))
		}
	}()

	// Ожидание сигнала завершения
	<-ctx.Done()

	// Graceful shutdown HTTP сервера
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("ошибка при остановке HTTP сервера", zap.Error(err))
	}

	logger.Info("HTTP сервер остановлен")
}
