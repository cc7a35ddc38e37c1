package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"english-practice-bot/internal/config"
	"english-practice-bot/pkg/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// postgresStore реализует интерфейс Store поверх PostgreSQL
type postgresStore struct {
	db     *pgxpool.Pool
	logger *zap.Logger
	level  LevelRepository
}

// NewPostgresStore создает новое подключение к PostgreSQL
func NewPostgresStore(cfg *config.Config, logger *zap.Logger) (Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Создание пула подключений
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}

	// Настройка пула
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	// Проверка подключения
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка проверки подключения к базе данных: %w", err)
	}

	logger.Info("успешное подключение к базе данных PostgreSQL")

	return &postgresStore{
		db:     db,
		logger: logger,
		level:  NewPostgresLevelRepository(db, logger),
	}, nil
}

// Level возвращает репозиторий уровней
func (s *postgresStore) Level() LevelRepository {
	return s.level
}

// Ping проверяет доступность базы данных
func (s *postgresStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Close закрывает подключение к базе данных
func (s *postgresStore) Close() error {
	s.logger.Info("закрытие подключения к базе данных")
	s.db.Close()
	return nil
}

const (
	upsertLevelQuery = `
		INSERT INTO users (user_id, level)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET level = EXCLUDED.level`

	selectLevelQuery = `SELECT user_id, level FROM users WHERE user_id = $1`

	selectAllLevelsQuery = `SELECT user_id, level FROM users`
)

// postgresLevelRepository реализует LevelRepository
type postgresLevelRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresLevelRepository создает новый репозиторий уровней
func NewPostgresLevelRepository(db *pgxpool.Pool, logger *zap.Logger) LevelRepository {
	return &postgresLevelRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert сохраняет уровень пользователя, перезаписывая предыдущий
func (r *postgresLevelRepository) Upsert(ctx context.Context, userID int64, level string) error {
	if _, err := r.db.Exec(ctx, upsertLevelQuery, userID, level); err != nil {
		return unavailable("ошибка сохранения уровня", err)
	}
	return nil
}

// GetByUserID получает уровень пользователя по Telegram ID
func (r *postgresLevelRepository) GetByUserID(ctx context.Context, userID int64) (*models.UserLevel, error) {
	ul := &models.UserLevel{}
	err := r.db.QueryRow(ctx, selectLevelQuery, userID).Scan(&ul.UserID, &ul.Level)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("ошибка получения уровня", err)
	}

	return ul, nil
}

// GetAll получает уровни всех пользователей
func (r *postgresLevelRepository) GetAll(ctx context.Context) ([]*models.UserLevel, error) {
	rows, err := r.db.Query(ctx, selectAllLevelsQuery)
	if err != nil {
		r.logger.Error("ошибка получения всех пользователей", zap.Error(err))
		return nil, unavailable("ошибка получения всех пользователей", err)
	}
	defer rows.Close()

	var levels []*models.UserLevel
	for rows.Next() {
		ul := &models.UserLevel{}
		if err := rows.Scan(&ul.UserID, &ul.Level); err != nil {
			r.logger.Error("ошибка сканирования пользователя", zap.Error(err))
			continue
		}
		levels = append(levels, ul)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("ошибка чтения пользователей", err)
	}

	return levels, nil
}
