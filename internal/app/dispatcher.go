package app

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/telegram-homework-bot/internal/bot/handlers"
	"github.com/Spok95/telegram-homework-bot/internal/bot/menu"
	"github.com/Spok95/telegram-homework-bot/internal/metrics"
	"github.com/Spok95/telegram-homework-bot/internal/models"
	"github.com/Spok95/telegram-homework-bot/internal/tg"
)

// Dispatch — маршрутизация одного апдейта. Вызывается под ChatLimiter,
// поэтому внутри одного чата апдейты обрабатываются строго по одному.
func Dispatch(ctx context.Context, env *handlers.Env, update tgbotapi.Update) {
	metrics.BotUpdates.Inc()

	switch {
	case update.CallbackQuery != nil:
		handleCallback(ctx, env, update.CallbackQuery)
	case update.Message != nil:
		handleMessage(ctx, env, update.Message)
	}
}

func handleCallback(ctx context.Context, env *handlers.Env, cq *tgbotapi.CallbackQuery) {
	data := cq.Data
	switch {
	case strings.HasPrefix(data, "sec|"):
		env.HandleSectionCallback(cq)
	case strings.HasPrefix(data, "topic|"):
		env.HandleTopicCallback(cq)
	case strings.HasPrefix(data, "admin|"):
		env.HandleAdminCallback(ctx, cq)
	case data == "cancel":
		env.HandleCancelCallback(cq)
	}
}

func handleMessage(ctx context.Context, env *handlers.Env, msg *tgbotapi.Message) {
	if msg.Chat == nil || !msg.Chat.IsPrivate() {
		return
	}
	if len(msg.Photo) > 0 {
		env.HandlePhoto(ctx, msg)
		return
	}
	if msg.Text == "" {
		return
	}

	// Причина пропуска перехватывается раньше fallback-классификатора,
	// но команды и кнопки меню выигрывают: ожидание остаётся до первого
	// действительно свободного текста.
	if consumableAsReason(msg) && env.TryConsumeReason(ctx, msg) {
		return
	}
	if env.HandleAdminText(ctx, msg) {
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "menu":
			env.HandleStart(ctx, msg)
		case "get_user":
			env.HandleGetUser(ctx, msg)
		default:
			hint := tgbotapi.NewMessage(msg.Chat.ID, "⚠️ Неизвестная команда. Используй /start")
			if _, err := tg.Send(env.Bot, hint); err != nil {
				metrics.HandlerErrors.Inc()
			}
		}
		return
	}

	switch msg.Text {
	case menu.BtnSendDZ:
		env.StartIntake(msg, models.KindDZ)
		return
	case menu.BtnSendConspect:
		env.StartIntake(msg, models.KindConspect)
		return
	case menu.BtnMyConspects:
		env.HandleMyConspects(ctx, msg)
		return
	case menu.BtnMainMenu:
		env.HandleMainMenu(msg)
		return
	case menu.BtnAdminPanel:
		env.HandleAdminPanel(msg)
		return
	}

	if env.HandleContentText(ctx, msg) {
		return
	}
	hint := tgbotapi.NewMessage(msg.Chat.ID,
		"Не понял. Нажми «Сдать ДЗ» или «Сдать конспект», либо начни сообщение со слова «дз» или «конспект».")
	if _, err := tg.Send(env.Bot, hint); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

func isMenuButton(text string) bool {
	switch text {
	case menu.BtnSendDZ, menu.BtnSendConspect, menu.BtnMyConspects, menu.BtnMainMenu, menu.BtnAdminPanel:
		return true
	}
	return false
}

// consumableAsReason — свободный ли это текст: команды и кнопки меню к
// причинам пропуска не относятся, их обрабатывают свои ветки.
func consumableAsReason(msg *tgbotapi.Message) bool {
	return !msg.IsCommand() && !isMenuButton(msg.Text)
}
