package handlers

import (
	"context"
	"math/rand"
	"strings"

	"github.com/Spok95/telegram-homework-bot/internal/ctxutil"
	"github.com/Spok95/telegram-homework-bot/internal/db"
	"github.com/Spok95/telegram-homework-bot/internal/models"
)

var genericPraise = []string{
	"Молодец, отличная работа!",
	"Здорово, так держать!",
	"Круто, ты справился!",
	"Умница, ДЗ принято!",
	"Ты — будущий 100-балльник!",
}

var contextPraise = []string{
	"Отлично поработал над «{topic}» — заметен прогресс!",
	"Круто! Тема «{topic}» покоряется тебе всё лучше.",
	"Хорошая работа по «{topic}» — продолжай в том же духе!",
}

var photoPraise = []string{
	"Фото принято — выглядит аккуратно!",
	"Классный снимок, спасибо!",
	"Фото получено — спасибо за старание!",
}

// praise — пара тёплых слов, иногда с контекстом темы и бонусом за серию.
func (e *Env) praise(ctx context.Context, userID int64, topicTitle string, ct models.ContentType) string {
	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	total, err := db.TotalByUser(dbCtx, e.DB, userID)
	if err != nil {
		total = 0
	}

	var messages []string
	if topicTitle != "" {
		line := contextPraise[rand.Intn(len(contextPraise))]
		messages = append(messages, strings.ReplaceAll(line, "{topic}", topicTitle))
	}
	if ct == models.ContentPhoto || ct == models.ContentAlbum {
		messages = append(messages, photoPraise[rand.Intn(len(photoPraise))])
	} else {
		messages = append(messages, genericPraise[rand.Intn(len(genericPraise))])
	}
	switch {
	case total >= 10:
		messages = append(messages, "Ты постоянный участник — это впечатляет! 🔥")
	case total >= 3:
		messages = append(messages, "Отлично, ты активно сдаёшь. Продолжай!")
	}

	n := 1
	if rand.Float64() > 0.4 {
		n = 2
	}
	if n > len(messages) {
		n = len(messages)
	}
	return strings.Join(messages[:n], " ")
}
