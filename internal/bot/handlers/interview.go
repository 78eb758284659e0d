package handlers

import (
	"context"
	"sync"

	"github.com/Spok95/telegram-homework-bot/internal/bot/menu"
	"github.com/Spok95/telegram-homework-bot/internal/ctxutil"
	"github.com/Spok95/telegram-homework-bot/internal/db"
	"github.com/Spok95/telegram-homework-bot/internal/metrics"
	"github.com/Spok95/telegram-homework-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Ожидание причины пропуска: chatID → дата, за которую спрашивали.
// Новая регистрация перезаписывает старую; таймаута нет — состояние
// блокирует только захват причины, не обычные сценарии.
var (
	reasonMu      sync.Mutex
	reasonPending = make(map[int64]string)
)

// RegisterInterview — пометить пользователя как ожидающего вопрос о причине.
func RegisterInterview(chatID int64, date string) {
	reasonMu.Lock()
	defer reasonMu.Unlock()
	reasonPending[chatID] = date
}

// UnregisterInterview — снять ожидание (ошибка доставки приглашения:
// не оставляем висящий вопрос, на который никто не ответит).
func UnregisterInterview(chatID int64) {
	reasonMu.Lock()
	defer reasonMu.Unlock()
	delete(reasonPending, chatID)
}

// InterviewPending — ждём ли от пользователя причину (для тестов).
func InterviewPending(chatID int64) bool {
	reasonMu.Lock()
	defer reasonMu.Unlock()
	_, ok := reasonPending[chatID]
	return ok
}

func claimInterview(chatID int64) (string, bool) {
	reasonMu.Lock()
	defer reasonMu.Unlock()
	date, ok := reasonPending[chatID]
	if ok {
		delete(reasonPending, chatID)
	}
	return date, ok
}

// TryConsumeReason — перехват свободного текста как причины пропуска.
// Диспетчер отдаёт ему текст раньше fallback-классификатора (причина не
// должна быть случайно распознана как сдача), но уже после команд и кнопок
// меню: они обрабатываются обычным путём, ожидание при этом сохраняется.
// Возвращает true, если текст поглощён.
func (e *Env) TryConsumeReason(ctx context.Context, msg *tgbotapi.Message) bool {
	chatID := msg.Chat.ID
	date, ok := claimInterview(chatID)
	if !ok {
		return false
	}

	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	if err := db.UpsertReason(dbCtx, e.DB, chatID, date, msg.Text); err != nil {
		e.Log.Errorw("save miss reason", "user", chatID, "date", date, "err", err)
		metrics.HandlerErrors.Inc()
		// вернём ожидание: пользователь сможет ответить ещё раз
		RegisterInterview(chatID, date)
		_, _ = tg.Send(e.Bot, tgbotapi.NewMessage(chatID, "⚠️ Не получилось сохранить ответ, попробуй ещё раз."))
		return true
	}

	out := tgbotapi.NewMessage(chatID, "Спасибо — причина пропуска за "+date+" сохранена.")
	out.ReplyMarkup = menu.Main(e.isAdmin(chatID))
	if _, err := tg.Send(e.Bot, out); err != nil {
		metrics.HandlerErrors.Inc()
	}
	return true
}
