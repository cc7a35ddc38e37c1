package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"english-practice-bot/internal/config"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var embedMigrations embed.FS

const migrationDir = "sql"

// RunMigrations применяет миграции к базе данных из конфигурации
func RunMigrations(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("начало применения миграций", zap.String("driver", cfg.Database.Driver))

	// Создаем временное подключение к базе данных для миграций
	var dsn string
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		dsn = cfg.Database.GetURL()
	case config.DriverSQLite:
		dsn = cfg.Database.GetSQLiteDSN()
	default:
		return fmt.Errorf("неподдерживаемый драйвер базы данных: %s", cfg.Database.Driver)
	}

	db, err := sql.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return fmt.Errorf("ошибка подключения к базе данных для миграций: %w", err)
	}
	defer db.Close()

	return Up(db, cfg.Database.Driver, logger)
}

// Up применяет встроенные миграции через открытое подключение.
// Повторный вызов безопасен: goose пропускает уже примененные версии.
func Up(db *sql.DB, dialect string, logger *zap.Logger) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(zap.NewStdLog(logger))

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("ошибка установки диалекта: %w", err)
	}

	if err := goose.Up(db, migrationDir); err != nil {
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	logger.Info("миграции успешно применены")
	return nil
}
