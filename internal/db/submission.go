package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/Spok95/telegram-homework-bot/internal/models"
)

func AddSubmission(ctx context.Context, database *sql.DB, s *models.Submission) error {
	return database.QueryRowContext(ctx, `
INSERT INTO submissions (
    user_id, type, section, topic_id, topic_title,
    content_type, content_summary, file_ids, message_id, date, submitted_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id`,
		s.UserID, string(s.Kind), s.Section, s.TopicID, s.TopicTitle,
		string(s.ContentType), s.ContentSummary, s.FileIDs, s.MessageID,
		s.Date, s.SubmittedAt,
	).Scan(&s.ID)
}

// SubmittedUserIDs — кто сдал хоть что-нибудь за дату.
func SubmittedUserIDs(ctx context.Context, database *sql.DB, date string) (map[int64]struct{}, error) {
	return scanUserIDs(database.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM submissions WHERE date = $1`, date))
}

// SubmittedUserIDsBefore — кто сдал за дату до момента cutoff. Нужен при
// выключенном COUNT_LATE: сдача после вечерней сверки не освобождает от
// опроса при её повторном запуске.
func SubmittedUserIDsBefore(ctx context.Context, database *sql.DB, date string, cutoff time.Time) (map[int64]struct{}, error) {
	return scanUserIDs(database.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM submissions WHERE date = $1 AND submitted_at < $2`,
		date, cutoff))
}

func scanUserIDs(rows *sql.Rows, err error) (map[int64]struct{}, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func SubmissionsForDate(ctx context.Context, database *sql.DB, date string) ([]models.Submission, error) {
	return querySubmissions(ctx, database, `
SELECT id, user_id, type, section, topic_id, topic_title,
       content_type, content_summary, file_ids, message_id, date, submitted_at
FROM submissions WHERE date = $1 ORDER BY submitted_at`, date)
}

func SubmissionsByUser(ctx context.Context, database *sql.DB, userID int64) ([]models.Submission, error) {
	return querySubmissions(ctx, database, `
SELECT id, user_id, type, section, topic_id, topic_title,
       content_type, content_summary, file_ids, message_id, date, submitted_at
FROM submissions WHERE user_id = $1 ORDER BY submitted_at`, userID)
}

func querySubmissions(ctx context.Context, database *sql.DB, query string, arg any) ([]models.Submission, error) {
	rows, err := database.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		var s models.Submission
		var kind, ct string
		if err := rows.Scan(&s.ID, &s.UserID, &kind, &s.Section, &s.TopicID, &s.TopicTitle,
			&ct, &s.ContentSummary, &s.FileIDs, &s.MessageID, &s.Date, &s.SubmittedAt); err != nil {
			return nil, err
		}
		s.Kind = models.Kind(kind)
		s.ContentType = models.ContentType(ct)
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// CountByKind — сколько сдач данного типа за дату (короткая сводка админу).
func CountByKind(ctx context.Context, database *sql.DB, date string, kind models.Kind) (int, error) {
	var n int
	err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM submissions WHERE date = $1 AND type = $2`,
		date, string(kind)).Scan(&n)
	return n, err
}

// TotalByUser — сколько всего сдач у пользователя (для похвалы за серию).
func TotalByUser(ctx context.Context, database *sql.DB, userID int64) (int, error) {
	var n int
	err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM submissions WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

// DistinctDates — все даты, за которые есть сдачи, по возрастанию.
func DistinctDates(ctx context.Context, database *sql.DB) ([]string, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT DISTINCT date FROM submissions ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// DayStatuses — строка отчёта на каждого известного пользователя за дату.
// Пустые строки (ничего не сдал, причины нет) не отфильтровываются — этим
// занимается кумулятивный отчёт.
func DayStatuses(ctx context.Context, database *sql.DB, date string) ([]models.DayStatus, error) {
	users, err := ListUsers(ctx, database)
	if err != nil {
		return nil, err
	}
	subs, err := SubmissionsForDate(ctx, database, date)
	if err != nil {
		return nil, err
	}
	reasons, err := ReasonsForDate(ctx, database, date)
	if err != nil {
		return nil, err
	}

	type agg struct {
		dz, cons bool
		last     *models.Submission
	}
	byUser := make(map[int64]*agg)
	for i := range subs {
		s := &subs[i]
		a := byUser[s.UserID]
		if a == nil {
			a = &agg{}
			byUser[s.UserID] = a
		}
		switch s.Kind {
		case models.KindDZ:
			a.dz = true
		case models.KindConspect:
			a.cons = true
		}
		a.last = s // subs отсортированы по submitted_at
	}

	statuses := make([]models.DayStatus, 0, len(users))
	for _, u := range users {
		st := models.DayStatus{
			UserID:      u.ID,
			Username:    u.Username,
			FirstName:   u.FirstName,
			DisplayName: u.DisplayName(),
			Date:        date,
			MissReason:  reasons[u.ID],
		}
		if a := byUser[u.ID]; a != nil {
			st.DZ = a.dz
			st.Conspect = a.cons
			if a.last.TopicID != "" && a.last.TopicID != "none" {
				st.TaskFlag = a.last.TopicID
			} else {
				st.TaskFlag = a.last.TopicTitle
			}
			st.MessageID = a.last.MessageID
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}
