package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Metrics содержит все метрики приложения
type Metrics struct {
	logger *zap.Logger

	// Счетчики
	updates           *prometheus.CounterVec
	aiRequests        *prometheus.CounterVec
	levelChanges      *prometheus.CounterVec
	broadcastMessages *prometheus.CounterVec

	// Гистограммы
	aiResponseTime prometheus.Histogram

	// Gauge метрики
	registeredUsers prometheus.Gauge

	mu sync.RWMutex
}

// New создает новый экземпляр метрик и регистрирует их в registerer
func New(logger *zap.Logger, registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		logger: logger,

		updates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bot_updates_total",
				Help: "Общее количество обработанных обновлений Telegram",
			},
			[]string{"type"}, // command, callback, message, ignored
		),

		aiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_requests_total",
				Help: "Общее количество запросов к AI",
			},
			[]string{"status"}, // success, fallback, failed
		),

		levelChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "level_changes_total",
				Help: "Количество выборов уровня",
			},
			[]string{"level"},
		),

		broadcastMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "broadcast_messages_total",
				Help: "Сообщения ежедневной рассылки",
			},
			[]string{"status"}, // sent, failed
		),

		aiResponseTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ai_response_time_seconds",
				Help:    "Время ответа AI в секундах",
				Buckets: prometheus.DefBuckets,
			},
		),

		registeredUsers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "registered_users",
				Help: "Количество пользователей с выбранным уровнем на момент последней рассылки",
			},
		),
	}

	registerer.MustRegister(
		m.updates,
		m.aiRequests,
		m.levelChanges,
		m.broadcastMessages,
		m.aiResponseTime,
		m.registeredUsers,
	)

	return m
}

// IncrementCounter увеличивает счетчик
func (m *Metrics) IncrementCounter(name string, labels ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var counter *prometheus.CounterVec

	switch name {
	case "bot_updates_total":
		counter = m.updates
	case "ai_requests_total":
		counter = m.aiRequests
	case "level_changes_total":
		counter = m.levelChanges
	case "broadcast_messages_total":
		counter = m.broadcastMessages
	default:
		m.logger.Error("неизвестная метрика", zap.String("name", name))
		return
	}

	counter.WithLabelValues(labels...).Inc()
}

// SetGauge устанавливает значение gauge метрики
func (m *Metrics) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch name {
	case "registered_users":
		m.registeredUsers.Set(value)
	default:
		m.logger.Error("неизвестная gauge метрика", zap.String("name", name))
	}
}

// ObserveHistogram добавляет наблюдение в гистограмму
func (m *Metrics) ObserveHistogram(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch name {
	case "ai_response_time":
		m.aiResponseTime.Observe(value)
	default:
		m.logger.Error("неизвестная гистограмма", zap.String("name", name))
	}
}

// RecordUpdate записывает обработанное обновление
func (m *Metrics) RecordUpdate(updateType string) {
	m.IncrementCounter("bot_updates_total", updateType)
}

// RecordAIRequest записывает запрос к AI
func (m *Metrics) RecordAIRequest(status string, responseTime float64) {
	m.IncrementCounter("ai_requests_total", status)
	m.ObserveHistogram("ai_response_time", responseTime)
}

// RecordLevelChange записывает выбор уровня
func (m *Metrics) RecordLevelChange(level string) {
	m.IncrementCounter("level_changes_total", level)
}

// RecordBroadcastMessage записывает результат отправки одному пользователю
func (m *Metrics) RecordBroadcastMessage(success bool) {
	status := "sent"
	if !success {
		status = "failed"
	}
	m.IncrementCounter("broadcast_messages_total", status)
}

// SetRegisteredUsers обновляет количество пользователей
func (m *Metrics) SetRegisteredUsers(count int) {
	m.SetGauge("registered_users", float64(count))
}
