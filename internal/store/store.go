package store

import (
	"context"
	"errors"
	"fmt"

	"english-practice-bot/internal/config"
	"english-practice-bot/pkg/models"

	"go.uber.org/zap"
)

var (
	// ErrNotFound возвращается, когда у пользователя нет сохраненного уровня
	ErrNotFound = errors.New("уровень пользователя не найден")
	// ErrStorageUnavailable возвращается, когда хранилище недоступно
	ErrStorageUnavailable = errors.New("хранилище недоступно")
)

// Store представляет интерфейс для работы с базой данных
type Store interface {
	Level() LevelRepository
	Ping(ctx context.Context) error
	Close() error
}

// LevelRepository интерфейс для работы с уровнями пользователей
type LevelRepository interface {
	Upsert(ctx context.Context, userID int64, level string) error
	GetByUserID(ctx context.Context, userID int64) (*models.UserLevel, error)
	GetAll(ctx context.Context) ([]*models.UserLevel, error)
}

// NewStore создает хранилище для драйвера из конфигурации
func NewStore(cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return NewPostgresStore(cfg, logger)
	case config.DriverSQLite:
		return NewSQLiteStore(&cfg.Database, logger)
	default:
		return nil, fmt.Errorf("неподдерживаемый драйвер базы данных: %s", cfg.Database.Driver)
	}
}

// unavailable помечает ошибку драйвера как недоступность хранилища
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
