package webhook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingDispatcher struct {
	updates []tgbotapi.Update
	err     error
}

func (d *recordingDispatcher) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	d.updates = append(d.updates, update)
	return d.err
}

const updateJSON = `{"update_id":1001,"message":{"message_id":5,"from":{"id":42,"is_bot":false,"first_name":"Ann"},"chat":{"id":42,"type":"private"},"date":1700000000,"text":"Hello"}}`

func TestWebhookDispatchesUpdate(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "success"},
		{name: "dispatch error", err: errors.New("send failed")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := &recordingDispatcher{err: tt.err}
			handler := NewTelegramWebhookHandler(dispatcher, zap.NewNop())

			req := httptest.NewRequest(http.MethodPost, "/webhook/token", strings.NewReader(updateJSON))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, w.Body.String())

			require.Len(t, dispatcher.updates, 1)
			update := dispatcher.updates[0]
			assert.Equal(t, 1001, update.UpdateID)
			require.NotNil(t, update.Message)
			assert.Equal(t, "Hello", update.Message.Text)
			assert.Equal(t, int64(42), update.Message.Chat.ID)
		})
	}
}

func TestWebhookRejectsNonPost(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	handler := NewTelegramWebhookHandler(dispatcher, zap.NewNop())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/webhook/token", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Empty(t, dispatcher.updates)
}

func TestWebhookRejectsBadJSON(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	handler := NewTelegramWebhookHandler(dispatcher, zap.NewNop())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhook/token", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, dispatcher.updates)
}
