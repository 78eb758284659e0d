package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Spok95/telegram-homework-bot/internal/album"
	"github.com/Spok95/telegram-homework-bot/internal/bot/menu"
	"github.com/Spok95/telegram-homework-bot/internal/ctxutil"
	"github.com/Spok95/telegram-homework-bot/internal/db"
	"github.com/Spok95/telegram-homework-bot/internal/metrics"
	"github.com/Spok95/telegram-homework-bot/internal/models"
	"github.com/Spok95/telegram-homework-bot/internal/observability"
	"github.com/Spok95/telegram-homework-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// recordSubmission — единая точка эмиссии сдачи: пользователь, запись в БД,
// файлы конспекта, похвала, уведомление админа. rawText непуст только для
// текстовых сдач (его сохраняем на диск для конспектов). prefix добавляется
// перед похвалой в ответе пользователю.
func (e *Env) recordSubmission(ctx context.Context, from *tgbotapi.User, sub *models.Submission, rawText, prefix string) {
	sub.Date = e.Cfg.Today()
	sub.SubmittedAt = time.Now().In(e.Cfg.Location)

	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	user := models.User{ID: sub.UserID}
	if from != nil {
		user.Username = from.UserName
		user.FirstName = from.FirstName
	}
	if err := db.UpsertUser(dbCtx, e.DB, user); err != nil {
		e.Log.Errorw("upsert user", "user", sub.UserID, "err", err)
	}

	if err := db.AddSubmission(dbCtx, e.DB, sub); err != nil {
		// пользователь обязан узнать, что сдача могла не записаться
		e.Log.Errorw("add submission", "user", sub.UserID, "err", err)
		observability.CaptureErr(err)
		metrics.HandlerErrors.Inc()
		out := tgbotapi.NewMessage(sub.UserID, "⚠️ Не удалось сохранить сдачу. Попробуй ещё раз чуть позже.")
		out.ReplyMarkup = menu.Main(e.isAdmin(sub.UserID))
		_, _ = tg.Send(e.Bot, out)
		return
	}
	metrics.Submissions.WithLabelValues(string(sub.Kind), string(sub.ContentType)).Inc()

	if sub.Kind == models.KindConspect {
		e.persistConspect(ctx, sub, rawText)
	}

	praise := e.praise(ctx, sub.UserID, sub.TopicTitle, sub.ContentType)
	out := tgbotapi.NewMessage(sub.UserID, prefix+praise)
	out.ReplyMarkup = menu.Main(e.isAdmin(sub.UserID))
	if _, err := tg.Send(e.Bot, out); err != nil {
		metrics.HandlerErrors.Inc()
	}

	e.notifyAdmin(ctx, sub)
}

// persistConspect — копия конспекта на диске. Ошибки не фатальны: сдача уже
// записана, файл — бонус.
func (e *Env) persistConspect(ctx context.Context, sub *models.Submission, rawText string) {
	switch sub.ContentType {
	case models.ContentText:
		if _, err := e.Files.SaveText(sub.UserID, sub.Section, sub.TopicID, rawText); err != nil {
			e.Log.Warnw("save conspect text", "user", sub.UserID, "err", err)
		}
	case models.ContentPhoto, models.ContentAlbum:
		for i, fileID := range strings.Split(sub.FileIDs, ";") {
			if fileID == "" {
				continue
			}
			data, err := tg.DownloadFileBytes(ctx, e.Bot, fileID)
			if err != nil {
				e.Log.Warnw("download conspect photo", "user", sub.UserID, "err", err)
				continue
			}
			name := fmt.Sprintf("photo_%d_%s.jpg", i+1, time.Now().UTC().Format("20060102_150405"))
			if _, err := e.Files.SaveFile(sub.UserID, sub.Section, sub.TopicID, name, data); err != nil {
				e.Log.Warnw("save conspect photo", "user", sub.UserID, "err", err)
			}
		}
	}
}

// notifyAdmin — сводка о сдаче админу плюс пересылка исходного фото.
func (e *Env) notifyAdmin(ctx context.Context, sub *models.Submission) {
	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	mention := fmt.Sprintf("<a href='tg://user?id=%d'>user_%d</a>", sub.UserID, sub.UserID)
	if u, err := db.GetUser(dbCtx, e.DB, sub.UserID); err == nil && u != nil {
		mention = u.MentionHTML()
	}

	icon := "✅"
	suffix := ""
	switch sub.ContentType {
	case models.ContentPhoto:
		icon = "📸"
	case models.ContentAlbum:
		icon = "📸"
		suffix = " (альбом)"
	}
	text := fmt.Sprintf("%s %s прислал %s%s: %s — %s\n%s",
		icon, mention, strings.ToUpper(string(sub.Kind)), suffix,
		sub.Section, sub.TopicTitle, sub.ContentSummary)

	out := tgbotapi.NewMessage(e.Cfg.AdminID, text)
	out.ParseMode = tgbotapi.ModeHTML
	if _, err := tg.Send(e.Bot, out); err != nil {
		e.Log.Warnw("notify admin", "err", err)
	}

	if sub.ContentType == models.ContentPhoto && sub.MessageID != 0 {
		fwd := tgbotapi.NewForward(e.Cfg.AdminID, sub.UserID, int(sub.MessageID))
		if _, err := tg.Send(e.Bot, fwd); err != nil {
			e.Log.Warnw("forward to admin", "err", err)
		}
	}
}

// FinalizeAlbum — FinalizeFunc для агрегатора: серия фото → одна сдача.
func (e *Env) FinalizeAlbum(ctx context.Context, fin album.Finalized) {
	metrics.AlbumsFinalized.Inc()
	sub := &models.Submission{
		UserID:         fin.UserID,
		Kind:           fin.Target.Kind,
		Section:        fin.Target.Section,
		TopicID:        fin.Target.TopicID,
		TopicTitle:     fin.Target.TopicTitle,
		ContentType:    models.ContentAlbum,
		ContentSummary: fin.Summary(),
		FileIDs:        strings.Join(fin.FileIDs, ";"),
	}
	e.recordSubmission(ctx, nil, sub, "", "")
}
