//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/Spok95/telegram-homework-bot/internal/db"
	"github.com/Spok95/telegram-homework-bot/internal/models"
	"github.com/Spok95/telegram-homework-bot/internal/testutil/testdb"
)

func newSubmission(userID int64, kind models.Kind, date string) *models.Submission {
	return &models.Submission{
		UserID:         userID,
		Kind:           kind,
		Section:        "ЕГЭ 1-27",
		TopicID:        "ege5",
		TopicTitle:     "Задание 5",
		ContentType:    models.ContentText,
		ContentSummary: "решение",
		Date:           date,
		SubmittedAt:    time.Now().UTC(),
	}
}

func TestUsers_UpsertKeepsIdentity(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if err := db.UpsertUser(ctx, h.DB, models.User{ID: 1, Username: "vasya", FirstName: "Вася"}); err != nil {
		t.Fatal(err)
	}
	// повторный upsert с пустыми полями не должен затирать имя
	if err := db.UpsertUser(ctx, h.DB, models.User{ID: 1}); err != nil {
		t.Fatal(err)
	}
	u, err := db.GetUser(ctx, h.DB, 1)
	if err != nil {
		t.Fatal(err)
	}
	if u == nil || u.Username != "vasya" || u.FirstName != "Вася" {
		t.Fatalf("идентичность затёрта: %+v", u)
	}

	// новые непустые значения выигрывают
	if err := db.UpsertUser(ctx, h.DB, models.User{ID: 1, Username: "vasiliy"}); err != nil {
		t.Fatal(err)
	}
	u, _ = db.GetUser(ctx, h.DB, 1)
	if u.Username != "vasiliy" {
		t.Fatalf("обновление username: %+v", u)
	}

	t.Run("find_by_username", func(t *testing.T) {
		u, err := db.FindUser(ctx, h.DB, "@VASILIY")
		if err != nil || u == nil || u.ID != 1 {
			t.Fatalf("поиск по @username: %+v, %v", u, err)
		}
	})
	t.Run("find_by_id", func(t *testing.T) {
		u, err := db.FindUser(ctx, h.DB, "1")
		if err != nil || u == nil || u.Username != "vasiliy" {
			t.Fatalf("поиск по id: %+v, %v", u, err)
		}
	})
	t.Run("find_missing", func(t *testing.T) {
		u, err := db.FindUser(ctx, h.DB, "@nobody")
		if err != nil || u != nil {
			t.Fatalf("несуществующий: %+v, %v", u, err)
		}
	})
}

func TestSubmissions_CountsAndDates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	for _, id := range []int64{1, 2} {
		if err := db.UpsertUser(ctx, h.DB, models.User{ID: id, FirstName: "u"}); err != nil {
			t.Fatal(err)
		}
	}

	s1 := newSubmission(1, models.KindDZ, "2026-02-01")
	if err := db.AddSubmission(ctx, h.DB, s1); err != nil {
		t.Fatal(err)
	}
	if s1.ID == 0 {
		t.Fatal("AddSubmission не вернул id")
	}
	if err := db.AddSubmission(ctx, h.DB, newSubmission(1, models.KindConspect, "2026-02-01")); err != nil {
		t.Fatal(err)
	}
	if err := db.AddSubmission(ctx, h.DB, newSubmission(2, models.KindDZ, "2026-02-02")); err != nil {
		t.Fatal(err)
	}

	ids, err := db.SubmittedUserIDs(ctx, h.DB, "2026-02-01")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ids[1]; !ok || len(ids) != 1 {
		t.Fatalf("сдавшие за 01: %v", ids)
	}

	n, err := db.CountByKind(ctx, h.DB, "2026-02-01", models.KindDZ)
	if err != nil || n != 1 {
		t.Fatalf("CountByKind dz: %d, %v", n, err)
	}
	total, err := db.TotalByUser(ctx, h.DB, 1)
	if err != nil || total != 2 {
		t.Fatalf("TotalByUser: %d, %v", total, err)
	}

	dates, err := db.DistinctDates(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 2 || dates[0] != "2026-02-01" {
		t.Fatalf("даты: %v", dates)
	}

	t.Run("cutoff", func(t *testing.T) {
		before, err := db.SubmittedUserIDsBefore(ctx, h.DB, "2026-02-01", s1.SubmittedAt.Add(-time.Minute))
		if err != nil {
			t.Fatal(err)
		}
		if len(before) != 0 {
			t.Fatalf("сдача позже порога не должна учитываться: %v", before)
		}
		after, err := db.SubmittedUserIDsBefore(ctx, h.DB, "2026-02-01", s1.SubmittedAt.Add(time.Minute))
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := after[1]; !ok || len(after) != 1 {
			t.Fatalf("сдача раньше порога должна учитываться: %v", after)
		}
	})
}

func TestReasons_LastWins(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if err := db.UpsertUser(ctx, h.DB, models.User{ID: 5, FirstName: "u"}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertReason(ctx, h.DB, 5, "2026-02-01", "болел"); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertReason(ctx, h.DB, 5, "2026-02-01", "уехал"); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetReason(ctx, h.DB, 5, "2026-02-01")
	if err != nil || got != "уехал" {
		t.Fatalf("повторный ответ должен перезаписывать: %q, %v", got, err)
	}
	got, err = db.GetReason(ctx, h.DB, 5, "2026-02-02")
	if err != nil || got != "" {
		t.Fatalf("чужая дата: %q, %v", got, err)
	}
}

func TestDayStatuses_Composition(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	for id, name := range map[int64]string{1: "vasya", 2: "petya", 3: "masha"} {
		if err := db.UpsertUser(ctx, h.DB, models.User{ID: id, Username: name}); err != nil {
			t.Fatal(err)
		}
	}
	const date = "2026-02-01"
	if err := db.AddSubmission(ctx, h.DB, newSubmission(1, models.KindDZ, date)); err != nil {
		t.Fatal(err)
	}
	late := newSubmission(1, models.KindConspect, date)
	late.TopicID = "ege7"
	late.SubmittedAt = time.Now().UTC().Add(time.Minute)
	if err := db.AddSubmission(ctx, h.DB, late); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertReason(ctx, h.DB, 2, date, "болел"); err != nil {
		t.Fatal(err)
	}

	statuses, err := db.DayStatuses(ctx, h.DB, date)
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 3 {
		t.Fatalf("строк %d, ожидали по одной на пользователя", len(statuses))
	}
	byID := make(map[int64]models.DayStatus)
	for _, st := range statuses {
		byID[st.UserID] = st
	}
	if st := byID[1]; !st.DZ || !st.Conspect || st.TaskFlag != "ege7" {
		t.Fatalf("флаг темы берётся из последней сдачи: %+v", st)
	}
	if st := byID[2]; st.DZ || st.Conspect || st.MissReason != "болел" {
		t.Fatalf("пропуск с причиной: %+v", st)
	}
	if st := byID[3]; st.DZ || st.Conspect || st.MissReason != "" {
		t.Fatalf("молчун: %+v", st)
	}
}

func TestAdmin_PurgeAndReset(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	for _, id := range []int64{1, 2} {
		if err := db.UpsertUser(ctx, h.DB, models.User{ID: id, FirstName: "u"}); err != nil {
			t.Fatal(err)
		}
		if err := db.AddSubmission(ctx, h.DB, newSubmission(id, models.KindDZ, "2026-02-01")); err != nil {
			t.Fatal(err)
		}
		if err := db.UpsertReason(ctx, h.DB, id, "2026-02-01", "причина"); err != nil {
			t.Fatal(err)
		}
	}

	if err := db.PurgeUser(ctx, h.DB, 1); err != nil {
		t.Fatal(err)
	}
	if u, _ := db.GetUser(ctx, h.DB, 1); u != nil {
		t.Fatal("пользователь остался после purge")
	}
	if total, _ := db.TotalByUser(ctx, h.DB, 1); total != 0 {
		t.Fatal("сдачи остались после purge")
	}
	if got, _ := db.GetReason(ctx, h.DB, 1, "2026-02-01"); got != "" {
		t.Fatal("причина осталась после purge")
	}
	// второй пользователь не задет
	if u, _ := db.GetUser(ctx, h.DB, 2); u == nil {
		t.Fatal("purge задел чужие данные")
	}

	if err := db.ResetAll(ctx, h.DB); err != nil {
		t.Fatal(err)
	}
	users, err := db.ListUsers(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 0 {
		t.Fatalf("после reset осталось %d пользователей", len(users))
	}
}
