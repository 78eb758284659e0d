package app

import (
	"testing"

	"github.com/Spok95/telegram-homework-bot/internal/bot/handlers"
	"github.com/Spok95/telegram-homework-bot/internal/bot/menu"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func commandMsg(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text: text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(text)},
		},
	}
}

func TestConsumableAsReason(t *testing.T) {
	t.Run("команда уходит своему обработчику", func(t *testing.T) {
		if consumableAsReason(commandMsg("/start")) {
			t.Fatal("команда не должна перехватываться как причина пропуска")
		}
	})

	t.Run("кнопки меню уходят своим обработчикам", func(t *testing.T) {
		buttons := []string{
			menu.BtnSendDZ, menu.BtnSendConspect, menu.BtnMyConspects,
			menu.BtnMainMenu, menu.BtnAdminPanel,
		}
		for _, b := range buttons {
			if consumableAsReason(&tgbotapi.Message{Text: b}) {
				t.Fatalf("кнопка %q не должна перехватываться как причина", b)
			}
		}
	})

	t.Run("свободный текст перехватывается", func(t *testing.T) {
		if !consumableAsReason(&tgbotapi.Message{Text: "болел, был у врача"}) {
			t.Fatal("свободный текст должен уходить в перехват причины")
		}
	})

	t.Run("текст с префиксом сдачи тоже перехватывается", func(t *testing.T) {
		// причина важнее fallback-классификатора
		if !consumableAsReason(&tgbotapi.Message{Text: "дз не успел сделать"}) {
			t.Fatal("ожидали перехват текста с префиксом «дз»")
		}
	})
}

func TestCommandKeepsInterviewPending(t *testing.T) {
	const chatID int64 = 555
	handlers.RegisterInterview(chatID, "2026-03-01")
	defer handlers.UnregisterInterview(chatID)

	msg := commandMsg("/start")
	msg.Chat = &tgbotapi.Chat{ID: chatID, Type: "private"}

	if consumableAsReason(msg) {
		t.Fatal("команда при ожидании причины должна обрабатываться как команда")
	}
	if !handlers.InterviewPending(chatID) {
		t.Fatal("ожидание причины должно сохраниться до свободного текста")
	}
}
