package jobs

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/telegram-homework-bot/internal/bot/handlers"
	"github.com/Spok95/telegram-homework-bot/internal/db"
	"github.com/Spok95/telegram-homework-bot/internal/models"
	"github.com/Spok95/telegram-homework-bot/internal/tg"
)

// Reminder — вечернее напоминание всем известным пользователям, включая уже
// сдавших. Ошибка доставки одному пользователю не прерывает рассылку.
func Reminder(env *handlers.Env) Job {
	return func(ctx context.Context) error {
		users, err := db.ListUsers(ctx, env.DB)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		broadcast(userIDs(users), func(chatID int64) error {
			msg := tgbotapi.NewMessage(chatID,
				"⏰ Напоминание: не забудь сдать ДЗ или конспект до конца дня!")
			_, err := tg.Send(env.Bot, msg)
			return err
		}, func(chatID int64, err error) {
			env.Log.Warnw("reminder delivery", "user_id", chatID, "err", err)
		})
		return nil
	}
}

func userIDs(users []models.User) []int64 {
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

// broadcast — рассылка по одному получателю: ошибка доставки уходит в warn
// и не прерывает остальных.
func broadcast(ids []int64, send func(chatID int64) error, warn func(chatID int64, err error)) {
	for _, id := range ids {
		if err := send(id); err != nil {
			warn(id, err)
		}
	}
}

// Interview — вечерний опрос: каждому, кто за date ничего не сдал и ещё
// не называл причину, отправляется вопрос, и его следующий текст
// перехватывается как ответ. Повторный запуск за ту же дату безопасен:
// сдавшие и уже ответившие исключаются, остальные опрашиваются заново.
// Если приглашение не доставлено, ожидание не ставится.
func Interview(env *handlers.Env) Job {
	return func(ctx context.Context) error {
		date := env.Cfg.Today()
		users, err := db.ListUsers(ctx, env.DB)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		submitted, err := submittedForInterview(ctx, env, date)
		if err != nil {
			return fmt.Errorf("submitted ids: %w", err)
		}
		reasons, err := db.ReasonsForDate(ctx, env.DB, date)
		if err != nil {
			return fmt.Errorf("reasons: %w", err)
		}
		sendInterviewPrompts(date, selectInterviewees(users, submitted, reasons),
			func(chatID int64) error {
				msg := tgbotapi.NewMessage(chatID,
					fmt.Sprintf("Сегодня (%s) ты ничего не сдал(а). Напиши, пожалуйста, почему — одним сообщением.", date))
				_, err := tg.Send(env.Bot, msg)
				return err
			}, func(chatID int64, err error) {
				env.Log.Warnw("interview delivery", "user_id", chatID, "err", err)
			})
		return nil
	}
}

// selectInterviewees — кого опрашивать: все известные пользователи минус
// сдавшие минус уже назвавшие причину.
func selectInterviewees(users []models.User, submitted map[int64]struct{}, reasons map[int64]string) []int64 {
	var ids []int64
	for _, u := range users {
		if _, ok := submitted[u.ID]; ok {
			continue
		}
		if _, ok := reasons[u.ID]; ok {
			continue
		}
		ids = append(ids, u.ID)
	}
	return ids
}

// sendInterviewPrompts — ожидание ответа ставится только после успешной
// доставки вопроса: висящий вопрос, которого пользователь не видел,
// перехватил бы его следующий текст без повода.
func sendInterviewPrompts(date string, ids []int64, send func(chatID int64) error, warn func(chatID int64, err error)) {
	for _, id := range ids {
		if err := send(id); err != nil {
			warn(id, err)
			continue
		}
		handlers.RegisterInterview(id, date)
	}
}

// submittedForInterview — кто освобождён от опроса сдачей. При выключенном
// COUNT_LATE сдача после вечернего опроса не считается: повторный запуск за
// ту же дату опросит пользователя заново.
func submittedForInterview(ctx context.Context, env *handlers.Env, date string) (map[int64]struct{}, error) {
	if env.Cfg.CountLate {
		return db.SubmittedUserIDs(ctx, env.DB, date)
	}
	now := time.Now().In(env.Cfg.Location)
	cutoff := time.Date(now.Year(), now.Month(), now.Day(),
		env.Cfg.InterviewAt.Hour, env.Cfg.InterviewAt.Minute, 0, 0, env.Cfg.Location)
	return db.SubmittedUserIDsBefore(ctx, env.DB, date, cutoff)
}

// DailyReport — вечерняя сверка: Excel-отчёт за сегодня админу.
func DailyReport(env *handlers.Env) Job {
	return func(ctx context.Context) error {
		return env.SendDailyReport(ctx, env.Cfg.Today())
	}
}

// FullHistory — накопительная история всех дней админу.
func FullHistory(env *handlers.Env) Job {
	return func(ctx context.Context) error {
		return env.SendFullHistory(ctx)
	}
}

// AlbumSweep — обход альбомных буферов: финализирует те, где тишина
// продлилась дольше ALBUM_QUIET.
func AlbumSweep(env *handlers.Env) Job {
	return func(ctx context.Context) error {
		return env.Albums.Sweep(ctx)
	}
}
