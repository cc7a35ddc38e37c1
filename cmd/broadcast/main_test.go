package main

import (
	"context"
	"errors"
	"testing"

	"english-practice-bot/internal/store"
	"english-practice-bot/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleTarget(t *testing.T) {
	tests := []struct {
		name    string
		userID  int64
		single  bool
		wantErr bool
	}{
		{name: "all users", userID: 0, single: false},
		{name: "one user", userID: 42, single: true},
		{name: "negative id", userID: -5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			single, err := singleTarget(tt.userID)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, single)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.single, single)
		})
	}
}

type stubLevels map[int64]string

func (s stubLevels) GetLevel(ctx context.Context, userID int64) (string, error) {
	level, ok := s[userID]
	if !ok {
		return "", store.ErrNotFound
	}
	return level, nil
}

type recordingSender struct {
	sent []*models.UserLevel
}

func (r *recordingSender) SendTo(ctx context.Context, user *models.UserLevel) error {
	r.sent = append(r.sent, user)
	return nil
}

func TestBroadcastToUser(t *testing.T) {
	levels := stubLevels{42: models.LevelB1}
	sender := &recordingSender{}

	require.NoError(t, broadcastToUser(context.Background(), levels, sender, 42))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, &models.UserLevel{UserID: 42, Level: models.LevelB1}, sender.sent[0])

	err := broadcastToUser(context.Background(), levels, sender, 7)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, store.ErrNotFound))
	assert.Len(t, sender.sent, 1)
}
