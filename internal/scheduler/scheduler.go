package scheduler

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job интерфейс для периодических задач
type Job interface {
	Run(ctx context.Context) error
}

// Window окно рассылки: по одному запуску в каждый час с StartHour по EndHour включительно
type Window struct {
	StartHour int
	EndHour   int
	Location  *time.Location
}

func (w Window) location() *time.Location {
	if w.Location == nil {
		return time.Local
	}
	return w.Location
}

// Option настраивает DailyScheduler
type Option func(*DailyScheduler)

// WithRand задает источник случайных минут
func WithRand(rnd *rand.Rand) Option {
	return func(s *DailyScheduler) {
		s.rnd = rnd
	}
}

// WithClock подменяет текущее время
func WithClock(now func() time.Time) Option {
	return func(s *DailyScheduler) {
		s.now = now
	}
}

// DailyScheduler запускает задачи раз в час в случайную минуту внутри дневного окна
type DailyScheduler struct {
	window Window
	logger *zap.Logger
	jobs   []Job
	now    func() time.Time

	mu   sync.Mutex
	rnd  *rand.Rand
	plan []time.Time
}

// NewDailyScheduler создает новый планировщик задач
func NewDailyScheduler(window Window, logger *zap.Logger, opts ...Option) *DailyScheduler {
	s := &DailyScheduler{
		window: window,
		logger: logger,
		jobs:   make([]Job, 0),
		now:    time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddJob добавляет задачу в планировщик
func (s *DailyScheduler) AddJob(job Job) {
	s.jobs = append(s.jobs, job)
}

// Arm заменяет план запусков планом на указанный день
func (s *DailyScheduler) Arm(day time.Time) []time.Time {
	loc := s.window.location()
	y, m, d := day.In(loc).Date()

	s.mu.Lock()
	defer s.mu.Unlock()

	plan := make([]time.Time, 0, s.window.EndHour-s.window.StartHour+1)
	for hour := s.window.StartHour; hour <= s.window.EndHour; hour++ {
		plan = append(plan, time.Date(y, m, d, hour, s.rnd.Intn(60), 0, 0, loc))
	}
	s.plan = plan

	s.logger.Info("план рассылки обновлен",
		zap.String("date", day.In(loc).Format(time.DateOnly)),
		zap.Int("firings", len(plan)))

	return append([]time.Time(nil), plan...)
}

// Plan возвращает копию текущего плана запусков
func (s *DailyScheduler) Plan() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan := append([]time.Time(nil), s.plan...)
	sort.Slice(plan, func(i, j int) bool { return plan[i].Before(plan[j]) })
	return plan
}

// next возвращает ближайший запуск после now
func (s *DailyScheduler) next(now time.Time) (time.Time, bool) {
	for _, t := range s.Plan() {
		if t.After(now) {
			return t, true
		}
	}
	return time.Time{}, false
}

// Start запускает планировщик и блокируется до отмены контекста
func (s *DailyScheduler) Start(ctx context.Context) {
	s.logger.Info("запуск планировщика задач",
		zap.Int("start_hour", s.window.StartHour),
		zap.Int("end_hour", s.window.EndHour),
		zap.Int("jobs_count", len(s.jobs)))

	s.Arm(s.now())

	for {
		now := s.now()
		at, ok := s.next(now)
		if !ok {
			// План на сегодня исчерпан
			y, m, d := now.In(s.window.location()).Date()
			s.Arm(time.Date(y, m, d+1, 0, 0, 0, 0, s.window.location()))
			continue
		}

		s.logger.Debug("следующий запуск рассылки", zap.Time("at", at))

		timer := time.NewTimer(at.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("остановка планировщика задач")
			return
		case <-timer.C:
			s.runJobs(ctx)
		}
	}
}

// runJobs запускает все зарегистрированные задачи
func (s *DailyScheduler) runJobs(ctx context.Context) {
	for i, job := range s.jobs {
		s.logger.Debug("запуск задачи", zap.Int("job_index", i))

		if err := job.Run(ctx); err != nil {
			s.logger.Error("ошибка выполнения задачи",
				zap.Error(err),
				zap.Int("job_index", i))
		}
	}
}
