package menu

import (
	"github.com/Spok95/telegram-homework-bot/internal/topics"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	BtnSendDZ       = "📚 Сдать ДЗ"
	BtnSendConspect = "📘 Сдать конспект"
	BtnMyConspects  = "📁 Мои конспекты"
	BtnMainMenu     = "📌 Главное меню"
	BtnAdminPanel   = "🛠️ Админ-панель"
)

// Main — основная reply-клавиатура; админ получает дополнительную кнопку.
func Main(isAdmin bool) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		{tgbotapi.NewKeyboardButton(BtnSendDZ)},
		{tgbotapi.NewKeyboardButton(BtnSendConspect)},
		{tgbotapi.NewKeyboardButton(BtnMyConspects)},
		{tgbotapi.NewKeyboardButton(BtnMainMenu)},
	}
	if isAdmin {
		rows = append(rows, []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(BtnAdminPanel)})
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func Sections() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, name := range topics.SectionNames() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(name, "sec|"+name)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "cancel")))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func Topics(section string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if s, ok := topics.SectionByName(section); ok {
		for _, t := range s.Topics {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(t.Title, "topic|"+section+"|"+t.ID)))
		}
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "cancel")))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func Admin() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Дневной отчёт (подробный)", "admin|daily_full")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📤 Выслать таблицу сейчас", "admin|send_daily_now")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Исторический отчёт (ALL)", "admin|full_history")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👤 Выгрузить ученика (Excel + фото ZIP)", "admin|export_user")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑️ Удалить ученика (полностью)", "admin|delete_user")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("♻️ Сбросить все данные", "admin|reset_all")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "cancel")),
	)
}
