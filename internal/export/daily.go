package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Spok95/telegram-homework-bot/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "daily_summary"
	rawSheet     = "raw_submissions"
)

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func userLink(userID int64) string {
	return fmt.Sprintf("tg://user?id=%d", userID)
}

func messageLink(userID, messageID int64) string {
	return fmt.Sprintf("tg://openmessage?chat_id=%d&message_id=%d", userID, messageID)
}

// BuildDailyWorkbook — дневной отчёт: лист-сводка по каждому известному
// пользователю (пустые строки остаются — отсутствие сдачи тоже факт) плюс
// сырой журнал сдач за день. names — отображаемые имена по user_id для
// сырого листа.
func BuildDailyWorkbook(statuses []models.DayStatus, raw []models.Submission, names map[int64]string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(rawSheet); err != nil {
		return nil, err
	}

	sumHeader := []string{"user_id", "username", "date", "dz_submitted", "conspect_submitted", "miss_reason", "task_flag", "message_link"}
	for c, h := range sumHeader {
		if err := f.SetCellStr(summarySheet, fmt.Sprintf("%s1", colName(c+1)), h); err != nil {
			return nil, err
		}
	}
	for r, st := range statuses {
		row := r + 2
		_ = f.SetCellValue(summarySheet, "A"+strconv.Itoa(row), st.UserID)
		nameCell := "B" + strconv.Itoa(row)
		_ = f.SetCellStr(summarySheet, nameCell, st.DisplayName)
		_ = f.SetCellHyperLink(summarySheet, nameCell, userLink(st.UserID), "External")
		_ = f.SetCellStr(summarySheet, "C"+strconv.Itoa(row), st.Date)
		_ = f.SetCellValue(summarySheet, "D"+strconv.Itoa(row), boolFlag(st.DZ))
		_ = f.SetCellValue(summarySheet, "E"+strconv.Itoa(row), boolFlag(st.Conspect))
		_ = f.SetCellStr(summarySheet, "F"+strconv.Itoa(row), st.MissReason)
		_ = f.SetCellStr(summarySheet, "G"+strconv.Itoa(row), st.TaskFlag)
		if st.MessageID != 0 {
			cell := "H" + strconv.Itoa(row)
			_ = f.SetCellStr(summarySheet, cell, "Open")
			_ = f.SetCellHyperLink(summarySheet, cell, messageLink(st.UserID, st.MessageID), "External")
		}
	}
	if err := ApplyDefaultFormatting(f, summarySheet); err != nil {
		return nil, err
	}

	rawHeader := []string{"user_id", "username", "type", "section", "topic_id", "topic_title", "content_type", "content_summary", "file_ids", "date", "ts"}
	for c, h := range rawHeader {
		if err := f.SetCellStr(rawSheet, fmt.Sprintf("%s1", colName(c+1)), h); err != nil {
			return nil, err
		}
	}
	for r, s := range raw {
		row := r + 2
		_ = f.SetCellValue(rawSheet, "A"+strconv.Itoa(row), s.UserID)
		nameCell := "B" + strconv.Itoa(row)
		name := names[s.UserID]
		if name == "" {
			name = fmt.Sprintf("user_%d", s.UserID)
		}
		_ = f.SetCellStr(rawSheet, nameCell, name)
		_ = f.SetCellHyperLink(rawSheet, nameCell, userLink(s.UserID), "External")
		_ = f.SetCellStr(rawSheet, "C"+strconv.Itoa(row), string(s.Kind))
		_ = f.SetCellStr(rawSheet, "D"+strconv.Itoa(row), s.Section)
		_ = f.SetCellStr(rawSheet, "E"+strconv.Itoa(row), s.TopicID)
		_ = f.SetCellStr(rawSheet, "F"+strconv.Itoa(row), s.TopicTitle)
		_ = f.SetCellStr(rawSheet, "G"+strconv.Itoa(row), string(s.ContentType))
		_ = f.SetCellStr(rawSheet, "H"+strconv.Itoa(row), s.ContentSummary)
		_ = f.SetCellStr(rawSheet, "I"+strconv.Itoa(row), s.FileIDs)
		_ = f.SetCellStr(rawSheet, "J"+strconv.Itoa(row), s.Date)
		_ = f.SetCellStr(rawSheet, "K"+strconv.Itoa(row), s.SubmittedAt.Format(time.RFC3339))
	}
	if err := ApplyDefaultFormatting(f, rawSheet); err != nil {
		return nil, err
	}
	return f, nil
}

// SaveDaily — сохраняет отчёт в REPORTS_DIR и возвращает путь.
func SaveDaily(f *excelize.File, reportsDir, date string) (string, error) {
	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		return "", err
	}
	name := sanitizeFileName(fmt.Sprintf("daily_report_%s_%d.xlsx", date, time.Now().Unix()))
	path := filepath.Join(reportsDir, name)
	if err := f.SaveAs(path); err != nil {
		return "", err
	}
	return path, nil
}
