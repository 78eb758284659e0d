package handlers

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Spok95/telegram-homework-bot/internal/album"
	"github.com/Spok95/telegram-homework-bot/internal/bot/menu"
	"github.com/Spok95/telegram-homework-bot/internal/metrics"
	"github.com/Spok95/telegram-homework-bot/internal/models"
	"github.com/Spok95/telegram-homework-bot/internal/tg"
	"github.com/Spok95/telegram-homework-bot/internal/topics"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// IntakeState — незавершённый сценарий сдачи. Живёт только в памяти
// процесса; на пользователя — не больше одного (новый старт молча
// выбрасывает старый).
type IntakeState struct {
	Kind      models.Kind
	Section   string
	Topic     *topics.Topic
	StartedAt time.Time
}

var (
	intakeMu sync.Mutex
	intakes  = make(map[int64]*IntakeState)
)

func getIntake(chatID int64) *IntakeState {
	intakeMu.Lock()
	defer intakeMu.Unlock()
	return intakes[chatID]
}

// claimIntake — атомарно изъять готовый сценарий. Эмиссия сдачи всегда
// идёт через claim, а не через read-then-delete: между чтением и записью
// другой обработчик мог сбросить или заменить состояние.
func claimIntake(chatID int64) *IntakeState {
	intakeMu.Lock()
	defer intakeMu.Unlock()
	st := intakes[chatID]
	if st == nil || st.Section == "" || st.Topic == nil {
		return nil
	}
	delete(intakes, chatID)
	return st
}

// ClearIntake — сброс сценария (отмена, навигация по меню, новый старт).
func ClearIntake(chatID int64) {
	intakeMu.Lock()
	defer intakeMu.Unlock()
	delete(intakes, chatID)
}

// SnapshotTarget — снимок текущего сценария для альбомного буфера.
// Незавершённый сценарий (или его отсутствие) даёт цель по умолчанию.
func SnapshotTarget(chatID int64) album.Target {
	intakeMu.Lock()
	defer intakeMu.Unlock()
	st := intakes[chatID]
	if st == nil {
		return album.DefaultTarget()
	}
	t := album.Target{Kind: st.Kind, Section: st.Section, TopicID: topics.NoTopicID, TopicTitle: topics.AlbumTopic}
	if st.Section == "" {
		t.Section = topics.DefaultSection
	}
	if st.Topic != nil {
		t.TopicID = st.Topic.ID
		t.TopicTitle = st.Topic.Title
	}
	return t
}

// StartIntake — Idle → AwaitingSection.
func (e *Env) StartIntake(msg *tgbotapi.Message, kind models.Kind) {
	chatID := msg.Chat.ID
	intakeMu.Lock()
	intakes[chatID] = &IntakeState{Kind: kind, StartedAt: time.Now()}
	intakeMu.Unlock()

	out := tgbotapi.NewMessage(chatID, "Выбери раздел:")
	out.ReplyMarkup = menu.Sections()
	if _, err := tg.Send(e.Bot, out); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

type sectionOutcome int

const (
	sectionSet sectionOutcome = iota
	sectionNoIntake
	sectionUnknown
)

// setIntakeSection — валидация раньше мутации: неизвестный раздел не трогает
// уже выбранные раздел и тему.
func setIntakeSection(chatID int64, section string) sectionOutcome {
	_, known := topics.SectionByName(section)

	intakeMu.Lock()
	defer intakeMu.Unlock()
	st := intakes[chatID]
	if st == nil {
		return sectionNoIntake
	}
	if !known {
		return sectionUnknown
	}
	st.Section = section
	st.Topic = nil
	return sectionSet
}

// HandleSectionCallback — AwaitingSection → AwaitingTopic.
func (e *Env) HandleSectionCallback(cq *tgbotapi.CallbackQuery) {
	chatID := cq.From.ID
	section := strings.TrimPrefix(cq.Data, "sec|")

	switch setIntakeSection(chatID, section) {
	case sectionNoIntake:
		// протухшая кнопка — ошибка пользователя, не системы
		e.answerAlert(cq.ID, "Нет активного действия. Нажми «Сдать ДЗ» или «Сдать конспект» в меню.")
		return
	case sectionUnknown:
		e.answerAlert(cq.ID, "Раздел не найден.")
		return
	}

	out := tgbotapi.NewMessage(chatID, "Выбран раздел: "+section+"\nВыбери тему:")
	out.ReplyMarkup = menu.Topics(section)
	if _, err := tg.Send(e.Bot, out); err != nil {
		metrics.HandlerErrors.Inc()
	}
	e.answerCallback(cq.ID, "")
}

// HandleTopicCallback — AwaitingTopic → AwaitingContent.
// Тема с запретом ДЗ отклоняется без изменения состояния.
func (e *Env) HandleTopicCallback(cq *tgbotapi.CallbackQuery) {
	chatID := cq.From.ID
	parts := strings.SplitN(cq.Data, "|", 3)
	if len(parts) != 3 {
		e.answerCallback(cq.ID, "")
		return
	}
	section, topicID := parts[1], parts[2]

	topic, found := topics.Find(section, topicID)

	intakeMu.Lock()
	st := intakes[chatID]
	valid := st != nil && st.Section != ""
	policyOK := found && (st == nil || st.Kind != models.KindDZ || topic.DZAllowed)
	if valid && found && policyOK {
		st.Topic = &topic
	}
	kind := models.KindDZ
	if st != nil {
		kind = st.Kind
	}
	intakeMu.Unlock()

	switch {
	case !valid:
		e.answerAlert(cq.ID, "Нет активного действия. Сначала нажми «Сдать ДЗ» или «Сдать конспект».")
		return
	case !found:
		e.answerAlert(cq.ID, "Тема не найдена.")
		return
	case !policyOK:
		e.answerAlert(cq.ID, "Для этой темы ДЗ не предусмотрено. Выбери другую тему или сдай конспект.")
		return
	}

	text := "Тема: " + topic.Title + "\nТеперь отправь " + kind.Label() +
		" текстом или фото. В подписи к фото можно указать подробности."
	if _, err := tg.Send(e.Bot, tgbotapi.NewMessage(chatID, text)); err != nil {
		metrics.HandlerErrors.Inc()
	}
	e.answerCallback(cq.ID, "")
}

// HandleCancelCallback — любое состояние → Idle, без эмиссии.
func (e *Env) HandleCancelCallback(cq *tgbotapi.CallbackQuery) {
	chatID := cq.From.ID
	ClearIntake(chatID)
	clearAdminPending(chatID)

	out := tgbotapi.NewMessage(chatID, "Операция отменена.")
	out.ReplyMarkup = menu.Main(e.isAdmin(chatID))
	if _, err := tg.Send(e.Bot, out); err != nil {
		metrics.HandlerErrors.Inc()
	}
	e.answerCallback(cq.ID, "")
}

// HandleContentText — AwaitingContent + текст → сдача. Возвращает true,
// если текст поглощён сценарием или fallback-классификатором.
func (e *Env) HandleContentText(ctx context.Context, msg *tgbotapi.Message) bool {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if st := claimIntake(chatID); st != nil {
		sub := &models.Submission{
			UserID:         chatID,
			Kind:           st.Kind,
			Section:        st.Section,
			TopicID:        st.Topic.ID,
			TopicTitle:     st.Topic.Title,
			ContentType:    models.ContentText,
			ContentSummary: topics.Truncate(text),
			MessageID:      int64(msg.MessageID),
		}
		e.recordSubmission(ctx, msg.From, sub, text, "")
		return true
	}

	// свободный текст: узкий fallback по ключевому префиксу
	kind, ok := topics.Classify(text)
	if !ok {
		return false
	}
	sub := &models.Submission{
		UserID:         chatID,
		Kind:           kind,
		Section:        topics.DefaultSection,
		TopicID:        topics.NoTopicID,
		TopicTitle:     topics.FallbackTitle(text),
		ContentType:    models.ContentText,
		ContentSummary: topics.Truncate(text),
		MessageID:      int64(msg.MessageID),
	}
	e.recordSubmission(ctx, msg.From, sub, text, "Записал без выбора темы. В следующий раз выбери тему через меню.\n\n")
	return true
}

// HandlePhoto — одиночное фото финализирует сценарий сразу; фото из серии
// уходит в агрегатор, эмиссию делает sweep.
func (e *Env) HandlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	caption := strings.TrimSpace(msg.Caption)
	fileID := largestPhotoID(msg)
	if fileID == "" {
		return
	}

	if msg.MediaGroupID != "" {
		e.Albums.AddItem(chatID, msg.MediaGroupID, fileID, caption, func() album.Target {
			return SnapshotTarget(chatID)
		})
		out := tgbotapi.NewMessage(chatID, "Фото получено — обрабатываю альбом...")
		out.ReplyMarkup = menu.Main(e.isAdmin(chatID))
		if _, err := tg.Send(e.Bot, out); err != nil {
			metrics.HandlerErrors.Inc()
		}
		return
	}

	if st := claimIntake(chatID); st != nil {
		summary := caption
		if summary == "" {
			summary = "Фото"
		}
		sub := &models.Submission{
			UserID:         chatID,
			Kind:           st.Kind,
			Section:        st.Section,
			TopicID:        st.Topic.ID,
			TopicTitle:     st.Topic.Title,
			ContentType:    models.ContentPhoto,
			ContentSummary: topics.Truncate(summary),
			FileIDs:        fileID,
			MessageID:      int64(msg.MessageID),
		}
		e.recordSubmission(ctx, msg.From, sub, "", "")
		return
	}

	// фото без сценария: fallback по подписи
	if kind, ok := topics.Classify(caption); ok {
		sub := &models.Submission{
			UserID:         chatID,
			Kind:           kind,
			Section:        topics.DefaultSection,
			TopicID:        topics.NoTopicID,
			TopicTitle:     topics.FallbackTitle(caption),
			ContentType:    models.ContentPhoto,
			ContentSummary: topics.Truncate(caption),
			FileIDs:        fileID,
			MessageID:      int64(msg.MessageID),
		}
		e.recordSubmission(ctx, msg.From, sub, "", "Принял (без выбора темы). ")
		return
	}

	out := tgbotapi.NewMessage(chatID, "Чтобы сдать ДЗ: сначала нажми кнопку в меню, выбери тему, затем отправь фото.")
	out.ReplyMarkup = menu.Main(e.isAdmin(chatID))
	if _, err := tg.Send(e.Bot, out); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

func largestPhotoID(msg *tgbotapi.Message) string {
	if len(msg.Photo) == 0 {
		return ""
	}
	return msg.Photo[len(msg.Photo)-1].FileID
}

func (e *Env) answerCallback(id, text string) {
	if _, err := tg.Request(e.Bot, tgbotapi.NewCallback(id, text)); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

func (e *Env) answerAlert(id, text string) {
	if _, err := tg.Request(e.Bot, tgbotapi.NewCallbackWithAlert(id, text)); err != nil {
		metrics.HandlerErrors.Inc()
	}
}
