package user

import (
	"context"
	"errors"
	"fmt"

	"english-practice-bot/internal/store"
	"english-practice-bot/pkg/models"

	"go.uber.org/zap"
)

// ErrInvalidLevel возвращается для кода уровня вне шкалы CEFR
var ErrInvalidLevel = errors.New("некорректный уровень")

// Service представляет сервис для работы с уровнями пользователей
type Service struct {
	store  store.Store
	logger *zap.Logger
}

// NewService создает новый сервис пользователей
func NewService(store store.Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// SetLevel сохраняет уровень пользователя, перезаписывая предыдущий
func (s *Service) SetLevel(ctx context.Context, userID int64, level string) error {
	if !models.IsValidLevel(level) {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, level)
	}

	if err := s.store.Level().Upsert(ctx, userID, level); err != nil {
		return fmt.Errorf("ошибка сохранения уровня: %w", err)
	}

	s.logger.Info("уровень пользователя сохранен",
		zap.Int64("user_id", userID),
		zap.String("level", level))

	return nil
}

// GetLevel возвращает сохраненный уровень пользователя.
// Если уровень не выбран, возвращается ошибка store.ErrNotFound.
func (s *Service) GetLevel(ctx context.Context, userID int64) (string, error) {
	ul, err := s.store.Level().GetByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("ошибка получения уровня: %w", err)
	}
	return ul.Level, nil
}

// ListLevels возвращает уровни всех пользователей для рассылки
func (s *Service) ListLevels(ctx context.Context) ([]*models.UserLevel, error) {
	levels, err := s.store.Level().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка пользователей: %w", err)
	}
	return levels, nil
}
