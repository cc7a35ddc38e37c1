package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"english-practice-bot/internal/config"
	"english-practice-bot/pkg/models"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const (
	sqliteUpsertLevelQuery = `
		INSERT INTO users (user_id, level)
		VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET level = excluded.level`

	sqliteSelectLevelQuery = `SELECT user_id, level FROM users WHERE user_id = ?`

	sqliteSelectAllLevelsQuery = `SELECT user_id, level FROM users`
)

// sqliteStore реализует интерфейс Store поверх файла SQLite рядом с процессом
type sqliteStore struct {
	db     *sql.DB
	logger *zap.Logger
	level  LevelRepository
}

// NewSQLiteStore открывает файл базы данных SQLite
func NewSQLiteStore(cfg *config.DatabaseConfig, logger *zap.Logger) (Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := sql.Open(config.DriverSQLite, cfg.GetSQLiteDSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}

	// SQLite допускает только одного писателя
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка проверки подключения к базе данных: %w", err)
	}

	logger.Info("успешное подключение к базе данных SQLite", zap.String("path", cfg.Path))

	return &sqliteStore{
		db:     db,
		logger: logger,
		level:  NewSQLiteLevelRepository(db, logger),
	}, nil
}

// Level возвращает репозиторий уровней
func (s *sqliteStore) Level() LevelRepository {
	return s.level
}

// Ping проверяет доступность базы данных
func (s *sqliteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Close закрывает подключение к базе данных
func (s *sqliteStore) Close() error {
	s.logger.Info("закрытие подключения к базе данных")
	return s.db.Close()
}

type sqliteLevelRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteLevelRepository создает репозиторий уровней поверх SQLite
func NewSQLiteLevelRepository(db *sql.DB, logger *zap.Logger) LevelRepository {
	return &sqliteLevelRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert сохраняет уровень пользователя, перезаписывая предыдущий
func (r *sqliteLevelRepository) Upsert(ctx context.Context, userID int64, level string) error {
	if _, err := r.db.ExecContext(ctx, sqliteUpsertLevelQuery, userID, level); err != nil {
		return unavailable("ошибка сохранения уровня", err)
	}
	return nil
}

// GetByUserID получает уровень пользователя по Telegram ID
func (r *sqliteLevelRepository) GetByUserID(ctx context.Context, userID int64) (*models.UserLevel, error) {
	ul := &models.UserLevel{}
	err := r.db.QueryRowContext(ctx, sqliteSelectLevelQuery, userID).Scan(&ul.UserID, &ul.Level)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("ошибка получения уровня", err)
	}

	return ul, nil
}

// GetAll получает уровни всех пользователей
func (r *sqliteLevelRepository) GetAll(ctx context.Context) ([]*models.UserLevel, error) {
	rows, err := r.db.QueryContext(ctx, sqliteSelectAllLevelsQuery)
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
