package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/Spok95/telegram-homework-bot/internal/album"
	"github.com/Spok95/telegram-homework-bot/internal/app"
	"github.com/Spok95/telegram-homework-bot/internal/bot/handlers"
	"github.com/Spok95/telegram-homework-bot/internal/config"
	"github.com/Spok95/telegram-homework-bot/internal/content"
	"github.com/Spok95/telegram-homework-bot/internal/db"
	"github.com/Spok95/telegram-homework-bot/internal/jobs"
	"github.com/Spok95/telegram-homework-bot/internal/logging"
	"github.com/Spok95/telegram-homework-bot/internal/observability"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Нет .env файла, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("конфигурация: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("логгер: %v", err)
	}
	defer lg.Closer()
	sugar := lg.Sugar

	closeSentry, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, "homework-bot")
	if err != nil {
		sugar.Warnw("sentry init", "err", err)
	} else {
		defer closeSentry()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		sugar.Fatalw("подключение к БД", "err", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		sugar.Fatalw("миграции", "err", err)
	}

	files, err := content.New(cfg.ContentDir)
	if err != nil {
		sugar.Fatalw("хранилище конспектов", "err", err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		sugar.Fatalw("запуск бота", "err", err)
	}
	sugar.Infow("бот запущен", "username", bot.Self.UserName)

	env := &handlers.Env{
		Bot:   bot,
		DB:    database,
		Cfg:   cfg,
		Files: files,
		Log:   sugar,
	}
	env.Albums = album.New(cfg.AlbumQuiet, env.FinalizeAlbum)

	app.StartHTTP(ctx, cfg.HTTPAddr, database)

	runner := jobs.New(ctx)
	runner.Every(cfg.SweepEvery, "album_sweep", jobs.AlbumSweep(env))
	runner.DailyAt(cfg.ReminderAt, cfg.Location, "reminder", jobs.Reminder(env))
	runner.DailyAt(cfg.HistoryAt, cfg.Location, "full_history", jobs.FullHistory(env))
	runner.DailyAt(cfg.ReportAt, cfg.Location, "daily_report", jobs.DailyReport(env))
	runner.DailyAt(cfg.InterviewAt, cfg.Location, "interview", jobs.Interview(env))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	limiter := app.NewChatLimiter()
	for {
		select {
		case <-ctx.Done():
			sugar.Info("остановка по сигналу")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			chatID := updateChatID(update)
			if chatID == 0 {
				continue
			}
			upd := update
			go limiter.Do(chatID, func() {
				app.Dispatch(ctx, env, upd)
			})
		}
	}
}

func updateChatID(u tgbotapi.Update) int64 {
	switch {
	case u.Message != nil:
		return u.Message.Chat.ID
	case u.CallbackQuery != nil:
		return u.CallbackQuery.From.ID
	}
	return 0
}
