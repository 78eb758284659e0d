package handlers

import (
	"context"
	"fmt"

	"github.com/Spok95/telegram-homework-bot/internal/bot/menu"
	"github.com/Spok95/telegram-homework-bot/internal/db"
	"github.com/Spok95/telegram-homework-bot/internal/metrics"
	"github.com/Spok95/telegram-homework-bot/internal/models"
	"github.com/Spok95/telegram-homework-bot/internal/observability"
	"github.com/Spok95/telegram-homework-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandleStart — /start и /menu: регистрирует пользователя и показывает
// главное меню.
func (e *Env) HandleStart(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	u := models.User{ID: chatID}
	if msg.From != nil {
		u.Username = msg.From.UserName
		u.FirstName = msg.From.FirstName
	}
	if err := db.UpsertUser(ctx, e.DB, u); err != nil {
		observability.CaptureErr(err)
		e.Log.Errorw("upsert user", "user_id", chatID, "err", err)
	}

	out := tgbotapi.NewMessage(chatID,
		"Привет! Я принимаю домашки и конспекты.\n"+
			"Нажми «Сдать ДЗ» или «Сдать конспект», выбери тему и пришли текст или фото.")
	out.ReplyMarkup = menu.Main(e.isAdmin(chatID))
	if _, err := tg.Send(e.Bot, out); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

// HandleMainMenu — кнопка «Главное меню»: сброс активного сценария.
func (e *Env) HandleMainMenu(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	ClearIntake(chatID)
	clearAdminPending(chatID)

	out := tgbotapi.NewMessage(chatID, "📌 Главное меню.")
	out.ReplyMarkup = menu.Main(e.isAdmin(chatID))
	if _, err := tg.Send(e.Bot, out); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

// HandleMyConspects — кнопка «Мои конспекты»: ZIP с сохранёнными файлами.
func (e *Env) HandleMyConspects(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !e.Files.HasFiles(chatID) {
		if _, err := tg.Send(e.Bot, tgbotapi.NewMessage(chatID, "У тебя пока нет сохранённых конспектов.")); err != nil {
			metrics.HandlerErrors.Inc()
		}
		return
	}
	data, err := e.Files.ZipUserDir(chatID)
	if err != nil {
		metrics.HandlerErrors.Inc()
		observability.CaptureErr(err)
		e.Log.Errorw("zip conspects", "user_id", chatID, "err", err)
		if _, err := tg.Send(e.Bot, tgbotapi.NewMessage(chatID, "⚠️ Не получилось собрать архив, попробуй позже.")); err != nil {
			metrics.HandlerErrors.Inc()
		}
		return
	}
	name := fmt.Sprintf("conspects_%d.zip", chatID)
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := tg.Send(e.Bot, doc); err != nil {
		metrics.HandlerErrors.Inc()
	}
}
