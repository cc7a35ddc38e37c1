package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Poll обрабатывает обновления из канала long polling, пока канал открыт
// или не отменен контекст. Возвращается только после завершения всех
// запущенных обработчиков.
func (h *Handler) Poll(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}

			// Обрабатываем обновление в горутине
			wg.Add(1)
			go func(update tgbotapi.Update) {
				defer wg.Done()
				if err := h.HandleUpdate(ctx, update); err != nil {
					h.logger.Error("ошибка обработки обновления",
						zap.Int64("chat_id", updateChatID(update)),
						zap.Error(err))
				}
			}(update)

		case <-ctx.Done():
			h.logger.Info("остановка обработки обновлений")
			return
		}
	}
}

func updateChatID(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}
