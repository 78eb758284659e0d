package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Spok95/telegram-homework-bot/internal/db"
	"github.com/Spok95/telegram-homework-bot/internal/export"
	"github.com/Spok95/telegram-homework-bot/internal/metrics"
	"github.com/Spok95/telegram-homework-bot/internal/models"
	"github.com/Spok95/telegram-homework-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SendDailyReport — собирает дневной отчёт за date, сохраняет в REPORTS_DIR
// и отправляет админу документом вместе с короткой сводкой по числам.
func (e *Env) SendDailyReport(ctx context.Context, date string) error {
	statuses, err := db.DayStatuses(ctx, e.DB, date)
	if err != nil {
		return fmt.Errorf("day statuses: %w", err)
	}
	raw, err := db.SubmissionsForDate(ctx, e.DB, date)
	if err != nil {
		return fmt.Errorf("raw submissions: %w", err)
	}
	names := make(map[int64]string, len(statuses))
	for _, st := range statuses {
		names[st.UserID] = st.DisplayName
	}

	f, err := export.BuildDailyWorkbook(statuses, raw, names)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	path, err := export.SaveDaily(f, e.Cfg.ReportsDir, date)
	if err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	if err := e.sendDocument(path); err != nil {
		return err
	}

	dz, err := db.CountByKind(ctx, e.DB, date, models.KindDZ)
	if err != nil {
		return fmt.Errorf("count dz: %w", err)
	}
	conspects, err := db.CountByKind(ctx, e.DB, date, models.KindConspect)
	if err != nil {
		return fmt.Errorf("count conspects: %w", err)
	}
	missing := 0
	for _, st := range statuses {
		if !st.DZ && !st.Conspect {
			missing++
		}
	}
	summary := fmt.Sprintf("📊 Отчёт за %s\nДЗ: %d\nКонспекты: %d\nБез сдач: %d из %d",
		date, dz, conspects, missing, len(statuses))
	e.sendToAdmin(summary)
	return nil
}

// SendFullHistory — накопительная история по всем дням с хотя бы одной
// записью.
func (e *Env) SendFullHistory(ctx context.Context) error {
	dates, err := db.DistinctDates(ctx, e.DB)
	if err != nil {
		return fmt.Errorf("distinct dates: %w", err)
	}
	if len(dates) == 0 {
		e.sendToAdmin("История пуста: ещё не было ни одной сдачи.")
		return nil
	}
	byDate := make(map[string][]models.DayStatus, len(dates))
	for _, date := range dates {
		statuses, err := db.DayStatuses(ctx, e.DB, date)
		if err != nil {
			return fmt.Errorf("day statuses %s: %w", date, err)
		}
		byDate[date] = statuses
	}
	f, err := export.BuildHistoryWorkbook(byDate, dates)
	if err != nil {
		return fmt.Errorf("build history: %w", err)
	}
	path, err := export.SaveHistory(f, e.Cfg.ReportsDir)
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return e.sendDocument(path)
}

func (e *Env) exportUser(ctx context.Context, user *models.User) error {
	subs, err := db.SubmissionsByUser(ctx, e.DB, user.ID)
	if err != nil {
		return fmt.Errorf("user submissions: %w", err)
	}
	f, name, err := export.BuildUserWorkbook(*user, subs)
	if err != nil {
		return fmt.Errorf("build user workbook: %w", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("serialize workbook: %w", err)
	}
	doc := tgbotapi.NewDocument(e.Cfg.AdminID, tgbotapi.FileBytes{Name: name, Bytes: buf.Bytes()})
	if _, err := tg.Send(e.Bot, doc); err != nil {
		metrics.HandlerErrors.Inc()
		return fmt.Errorf("send workbook: %w", err)
	}

	// ZIP с сохранёнными конспектами идёт вторым документом, если есть что слать.
	if e.Files.HasFiles(user.ID) {
		data, err := e.Files.ZipUserDir(user.ID)
		if err != nil {
			return fmt.Errorf("zip conspects: %w", err)
		}
		zipName := fmt.Sprintf("conspects_%d.zip", user.ID)
		zipDoc := tgbotapi.NewDocument(e.Cfg.AdminID, tgbotapi.FileBytes{Name: zipName, Bytes: data})
		if _, err := tg.Send(e.Bot, zipDoc); err != nil {
			metrics.HandlerErrors.Inc()
			return fmt.Errorf("send zip: %w", err)
		}
	}
	return nil
}

func (e *Env) sendDocument(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}
	doc := tgbotapi.NewDocument(e.Cfg.AdminID, tgbotapi.FileBytes{Name: filepath.Base(path), Bytes: data})
	if _, err := tg.Send(e.Bot, doc); err != nil {
		metrics.HandlerErrors.Inc()
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}
