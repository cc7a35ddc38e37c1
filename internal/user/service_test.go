package user

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"english-practice-bot/internal/config"
	"english-practice-bot/internal/migrations"
	"english-practice-bot/internal/store"
	"english-practice-bot/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type memoryStore struct {
	levels map[int64]string
	err    error
}

func (m *memoryStore) Level() store.LevelRepository   { return m }
func (m *memoryStore) Ping(ctx context.Context) error { return m.err }
func (m *memoryStore) Close() error                   { return nil }

func (m *memoryStore) Upsert(ctx context.Context, userID int64, level string) error {
	if m.err != nil {
		return m.err
	}
	m.levels[userID] = level
	return nil
}

func (m *memoryStore) GetByUserID(ctx context.Context, userID int64) (*models.UserLevel, error) {
	if m.err != nil {
		return nil, m.err
	}
	level, ok := m.levels[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &models.UserLevel{UserID: userID, Level: level}, nil
}

func (m *memoryStore) GetAll(ctx context.Context) ([]*models.UserLevel, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.UserLevel
	for id, level := range m.levels {
		out = append(out, &models.UserLevel{UserID: id, Level: level})
	}
	return out, nil
}

func newTestService() (*Service, *memoryStore) {
	st := &memoryStore{levels: map[int64]string{}}
	return NewService(st, zap.NewNop()), st
}

func TestSetAndGetLevel(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	require.NoError(t, svc.SetLevel(ctx, 42, models.LevelB1))
	level, err := svc.GetLevel(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, models.LevelB1, level)

	require.NoError(t, svc.SetLevel(ctx, 42, models.LevelC2))
	level, err = svc.GetLevel(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, models.LevelC2, level)
}

func TestSetLevelRejectsUnknownCode(t *testing.T) {
	svc, st := newTestService()

	err := svc.SetLevel(context.Background(), 1, "D1")
	assert.ErrorIs(t, err, ErrInvalidLevel)
	assert.Empty(t, st.levels)
}

func TestGetLevelNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetLevel(context.Background(), 7)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStorageErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService()
	st.err = errors.Join(store.ErrStorageUnavailable, errors.New("disk I/O error"))

	assert.ErrorIs(t, svc.SetLevel(ctx, 1, models.LevelA1), store.ErrStorageUnavailable)

	_, err := svc.GetLevel(ctx, 1)
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)

	_, err = svc.ListLevels(ctx)
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
}

func TestListLevels(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	require.NoError(t, svc.SetLevel(ctx, 1, models.LevelA1))
	require.NoError(t, svc.SetLevel(ctx, 2, models.LevelB2))

	levels, err := svc.ListLevels(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []*models.UserLevel{
		{UserID: 1, Level: models.LevelA1},
		{UserID: 2, Level: models.LevelB2},
	}, levels)
}

func TestSetLevelLogsOncePerUpsert(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "levels.db"),
	}}
	require.NoError(t, migrations.RunMigrations(cfg, zap.NewNop()))
	st, err := store.NewStore(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := NewService(st, logger)
	require.NoError(t, svc.SetLevel(context.Background(), 42, models.LevelA2))

	saved := logs.FilterMessage("уровень пользователя сохранен").AllUntimed()
	require.Len(t, saved, 1)
	assert.Equal(t, zapcore.InfoLevel, saved[0].Level)
	assert.Equal(t, int64(42), saved[0].ContextMap()["user_id"])
	assert.Equal(t, models.LevelA2, saved[0].ContextMap()["level"])
}
