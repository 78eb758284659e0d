package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Spok95/telegram-homework-bot/internal/models"
	"github.com/xuri/excelize/v2"
)

// BuildUserWorkbook — все сдачи одного пользователя, для админского экспорта.
func BuildUserWorkbook(user models.User, subs []models.Submission) (*excelize.File, string, error) {
	f := excelize.NewFile()
	sheet := "submissions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", err
	}
	header := []string{"id", "type", "section", "topic_id", "topic_title", "content_type", "content_summary", "file_ids", "date", "ts"}
	for c, h := range header {
		if err := f.SetCellStr(sheet, fmt.Sprintf("%s1", colName(c+1)), h); err != nil {
			return nil, "", err
		}
	}
	for r, s := range subs {
		row := r + 2
		_ = f.SetCellValue(sheet, "A"+strconv.Itoa(row), s.ID)
		_ = f.SetCellStr(sheet, "B"+strconv.Itoa(row), string(s.Kind))
		_ = f.SetCellStr(sheet, "C"+strconv.Itoa(row), s.Section)
		_ = f.SetCellStr(sheet, "D"+strconv.Itoa(row), s.TopicID)
		_ = f.SetCellStr(sheet, "E"+strconv.Itoa(row), s.TopicTitle)
		_ = f.SetCellStr(sheet, "F"+strconv.Itoa(row), string(s.ContentType))
		_ = f.SetCellStr(sheet, "G"+strconv.Itoa(row), s.ContentSummary)
		_ = f.SetCellStr(sheet, "H"+strconv.Itoa(row), s.FileIDs)
		_ = f.SetCellStr(sheet, "I"+strconv.Itoa(row), s.Date)
		_ = f.SetCellStr(sheet, "J"+strconv.Itoa(row), s.SubmittedAt.Format(time.RFC3339))
	}
	if err := ApplyDefaultFormatting(f, sheet); err != nil {
		return nil, "", err
	}
	name := sanitizeFileName(fmt.Sprintf("user_%d_%s.xlsx", user.ID, user.DisplayName()))
	return f, name, nil
}
