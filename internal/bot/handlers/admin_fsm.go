package handlers

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/Spok95/telegram-homework-bot/internal/bot/menu"
	"github.com/Spok95/telegram-homework-bot/internal/db"
	"github.com/Spok95/telegram-homework-bot/internal/metrics"
	"github.com/Spok95/telegram-homework-bot/internal/observability"
	"github.com/Spok95/telegram-homework-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Ожидаемый текстовый ввод админа: "export_user" или "delete_user".
// Не больше одного отложенного действия на чат.
var (
	adminMu      sync.Mutex
	adminPending = make(map[int64]string)
)

func setAdminPending(chatID int64, action string) {
	adminMu.Lock()
	defer adminMu.Unlock()
	adminPending[chatID] = action
}

func claimAdminPending(chatID int64) string {
	adminMu.Lock()
	defer adminMu.Unlock()
	action := adminPending[chatID]
	delete(adminPending, chatID)
	return action
}

func clearAdminPending(chatID int64) {
	adminMu.Lock()
	defer adminMu.Unlock()
	delete(adminPending, chatID)
}

// HandleAdminPanel — кнопка «Админ-панель».
func (e *Env) HandleAdminPanel(msg *tgbotapi.Message) {
	if !e.isAdmin(msg.Chat.ID) {
		return
	}
	out := tgbotapi.NewMessage(msg.Chat.ID, "🛠️ Админ-панель. Выбери действие:")
	out.ReplyMarkup = menu.Admin()
	if _, err := tg.Send(e.Bot, out); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

// HandleAdminCallback — callback'и вида "admin|<action>". Ошибки операций
// показываются админу как есть: он единственный, кому текст ошибки полезен.
func (e *Env) HandleAdminCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	chatID := cq.From.ID
	if !e.isAdmin(chatID) {
		e.answerAlert(cq.ID, "Недостаточно прав.")
		return
	}
	action := strings.TrimPrefix(cq.Data, "admin|")
	e.answerCallback(cq.ID, "")

	switch action {
	case "daily_full", "send_daily_now":
		if err := e.SendDailyReport(ctx, e.Cfg.Today()); err != nil {
			e.adminErr(ctx, "дневной отчёт", err)
		}
	case "full_history":
		if err := e.SendFullHistory(ctx); err != nil {
			e.adminErr(ctx, "история", err)
		}
	case "export_user":
		setAdminPending(chatID, "export_user")
		e.sendToAdmin("Пришли ID или @username пользователя для экспорта.")
	case "delete_user":
		setAdminPending(chatID, "delete_user")
		e.sendToAdmin("Пришли ID или @username пользователя для удаления. Операция необратима.")
	case "reset_all":
		e.resetAll(ctx)
	default:
		e.answerAlert(cq.ID, "Неизвестное действие.")
	}
}

// HandleAdminText — текст админа, когда панель ждёт ввода. Возвращает true,
// если сообщение поглощено.
func (e *Env) HandleAdminText(ctx context.Context, msg *tgbotapi.Message) bool {
	if !e.isAdmin(msg.Chat.ID) {
		return false
	}
	action := claimAdminPending(msg.Chat.ID)
	if action == "" {
		return false
	}
	identifier := strings.TrimSpace(msg.Text)
	user, err := db.FindUser(ctx, e.DB, identifier)
	if err != nil {
		e.adminErr(ctx, "поиск пользователя", err)
		return true
	}
	if user == nil {
		e.sendToAdmin("Пользователь «" + identifier + "» не найден.")
		return true
	}

	switch action {
	case "export_user":
		if err := e.exportUser(ctx, user); err != nil {
			e.adminErr(ctx, "экспорт пользователя", err)
		}
	case "delete_user":
		if err := db.PurgeUser(ctx, e.DB, user.ID); err != nil {
			e.adminErr(ctx, "удаление пользователя", err)
			return true
		}
		if err := e.Files.PurgeUser(user.ID); err != nil {
			e.Log.Warnw("purge user files", "user_id", user.ID, "err", err)
		}
		e.sendToAdmin("🗑️ Пользователь " + user.DisplayName() + " и все его данные удалены.")
	}
	return true
}

func (e *Env) resetAll(ctx context.Context) {
	if err := db.ResetAll(ctx, e.DB); err != nil {
		e.adminErr(ctx, "полный сброс", err)
		return
	}
	if err := e.Files.Reset(); err != nil {
		e.Log.Warnw("reset content dir", "err", err)
	}
	e.sendToAdmin("♻️ База и сохранённые конспекты очищены.")
}

// HandleGetUser — команда /get_user <id|@username>: краткая карточка.
func (e *Env) HandleGetUser(ctx context.Context, msg *tgbotapi.Message) {
	if !e.isAdmin(msg.Chat.ID) {
		return
	}
	identifier := strings.TrimSpace(msg.CommandArguments())
	if identifier == "" {
		e.sendToAdmin("Использование: /get_user <id | @username>")
		return
	}
	user, err := db.FindUser(ctx, e.DB, identifier)
	if err != nil {
		e.adminErr(ctx, "поиск пользователя", err)
		return
	}
	if user == nil {
		e.sendToAdmin("Пользователь «" + identifier + "» не найден.")
		return
	}
	total, err := db.TotalByUser(ctx, e.DB, user.ID)
	if err != nil {
		e.adminErr(ctx, "подсчёт сдач", err)
		return
	}
	out := tgbotapi.NewMessage(e.Cfg.AdminID,
		user.MentionHTML()+"\nID: <code>"+strconv.FormatInt(user.ID, 10)+"</code>\nВсего сдач: "+strconv.Itoa(total))
	out.ParseMode = tgbotapi.ModeHTML
	if _, err := tg.Send(e.Bot, out); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

func (e *Env) sendToAdmin(text string) {
	if _, err := tg.Send(e.Bot, tgbotapi.NewMessage(e.Cfg.AdminID, text)); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

func (e *Env) adminErr(ctx context.Context, op string, err error) {
	metrics.HandlerErrors.Inc()
	observability.CaptureErr(err)
	e.Log.Errorw("admin op", "op", op, "err", err)
	e.sendToAdmin("⚠️ Ошибка (" + op + "): " + err.Error())
}
