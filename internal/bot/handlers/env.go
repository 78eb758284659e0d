package handlers

import (
	"database/sql"

	"github.com/Spok95/telegram-homework-bot/internal/album"
	"github.com/Spok95/telegram-homework-bot/internal/config"
	"github.com/Spok95/telegram-homework-bot/internal/content"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Env — зависимости обработчиков. Состояния сценариев живут в картах
// пакета, сами обработчики — методы на Env, чтобы не таскать пять
// аргументов через каждую функцию.
type Env struct {
	Bot    *tgbotapi.BotAPI
	DB     *sql.DB
	Cfg    *config.Config
	Files  *content.Storage
	Albums *album.Aggregator
	Log    *zap.SugaredLogger
}

func (e *Env) isAdmin(chatID int64) bool { return chatID == e.Cfg.AdminID }
