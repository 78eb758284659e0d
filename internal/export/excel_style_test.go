package export

import (
	"testing"
	"time"

	"github.com/Spok95/telegram-homework-bot/internal/models"
)

func TestColName(t *testing.T) {
	cases := map[int]string{1: "A", 2: "B", 26: "Z", 27: "AA", 52: "AZ", 53: "BA", 703: "AAA"}
	for n, want := range cases {
		if got := colName(n); got != want {
			t.Errorf("colName(%d) = %q, ожидали %q", n, got, want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"user_42_@vasya.xlsx", "user_42_@vasya.xlsx"},
		{`a/b\c:d*e?f"g<h>i|j`, "a_b_c_d_e_f_g_h_i_j"},
		{"  много   пробелов  ", "много пробелов"},
	}
	for _, c := range cases {
		if got := sanitizeFileName(c.in); got != c.want {
			t.Errorf("sanitizeFileName(%q) = %q, ожидали %q", c.in, got, c.want)
		}
	}
}

func TestBuildDailyWorkbook(t *testing.T) {
	statuses := []models.DayStatus{
		{UserID: 1, DisplayName: "@vasya", Date: "2026-02-01", DZ: true, TaskFlag: "ege5", MessageID: 10},
		{UserID: 2, DisplayName: "Петя", Date: "2026-02-01", MissReason: "болел"},
	}
	raw := []models.Submission{
		{UserID: 1, Kind: models.KindDZ, Section: "ЕГЭ 1-27", TopicID: "ege5",
			TopicTitle: "Задание 5", ContentType: models.ContentText,
			ContentSummary: "решение", Date: "2026-02-01", SubmittedAt: time.Now()},
	}
	f, err := BuildDailyWorkbook(statuses, raw, map[int64]string{1: "@vasya"})
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	// строка без сдач остаётся в сводке
	got, err := f.GetCellValue(summarySheet, "F3")
	if err != nil || got != "болел" {
		t.Fatalf("причина пропуска: %q, %v", got, err)
	}
	got, err = f.GetCellValue(summarySheet, "D2")
	if err != nil || got != "1" {
		t.Fatalf("флаг ДЗ: %q, %v", got, err)
	}
	got, err = f.GetCellValue(rawSheet, "H2")
	if err != nil || got != "решение" {
		t.Fatalf("сырой лист: %q, %v", got, err)
	}
}

func TestBuildHistoryWorkbook_SkipsEmptyRows(t *testing.T) {
	byDate := map[string][]models.DayStatus{
		"2026-02-01": {
			{UserID: 1, DisplayName: "@vasya", Date: "2026-02-01", DZ: true},
			{UserID: 2, DisplayName: "Петя", Date: "2026-02-01"}, // полностью пустая
		},
		"2026-02-02": {
			{UserID: 2, DisplayName: "Петя", Date: "2026-02-02", MissReason: "болел"},
		},
	}
	f, err := BuildHistoryWorkbook(byDate, []string{"2026-02-01", "2026-02-02"})
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(historySheet)
	if err != nil {
		t.Fatal(err)
	}
	// заголовок + две непустые строки
	if len(rows) != 3 {
		t.Fatalf("строк %d, ожидали 3", len(rows))
	}
	if rows[1][3] != "2026-02-01" || rows[2][3] != "2026-02-02" {
		t.Fatalf("порядок дат: %v / %v", rows[1], rows[2])
	}
}

func TestBuildUserWorkbook(t *testing.T) {
	user := models.User{ID: 7, Username: "vasya"}
	subs := []models.Submission{
		{ID: 1, UserID: 7, Kind: models.KindConspect, Section: "Основы Питона",
			TopicID: "op3", TopicTitle: "Цикл for", ContentType: models.ContentText,
			ContentSummary: "конспект", Date: "2026-02-01", SubmittedAt: time.Now()},
	}
	f, name, err := BuildUserWorkbook(user, subs)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if name != "user_7_@vasya.xlsx" {
		t.Fatalf("имя файла: %q", name)
	}
	got, err := f.GetCellValue("submissions", "E2")
	if err != nil || got != "Цикл for" {
		t.Fatalf("тема: %q, %v", got, err)
	}
}
