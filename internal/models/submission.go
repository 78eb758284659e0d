package models

import "time"

type Kind string

const (
	KindDZ       Kind = "dz"
	KindConspect Kind = "conspect"
)

// Label — название типа для сообщений пользователю.
func (k Kind) Label() string {
	if k == KindConspect {
		return "конспект"
	}
	return "ДЗ"
}

type ContentType string

const (
	ContentText  ContentType = "text"
	ContentPhoto ContentType = "photo"
	ContentAlbum ContentType = "photo_album"
)

// Submission — одна сдача. После записи в БД не редактируется.
type Submission struct {
	ID             int64
	UserID         int64
	Kind           Kind
	Section        string
	TopicID        string
	TopicTitle     string
	ContentType    ContentType
	ContentSummary string // превью, ≤300 символов
	FileIDs        string // file_id'ы Telegram, через ";" для альбомов
	MessageID      int64  // исходное сообщение для deep-link, 0 если нет
	Date           string // календарный день в TZ бота, YYYY-MM-DD
	SubmittedAt    time.Time
}

// AbsenceReason — причина пропуска; не больше одной на (user, date),
// повторный ответ перезаписывает предыдущий.
type AbsenceReason struct {
	UserID int64
	Date   string
	Reason string
}

// DayStatus — строка дневного отчёта по одному ученику.
type DayStatus struct {
	UserID      int64
	Username    string
	FirstName   string
	DisplayName string
	Date        string
	DZ          bool
	Conspect    bool
	MissReason  string
	TaskFlag    string // topic_id (или заголовок) последней сдачи за день
	MessageID   int64  // последнее сообщение за день, 0 если нет
}
