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

const historySheet = "ALL"

// BuildHistoryWorkbook — накопительная история: один лист со строками по
// каждой паре (пользователь, дата). Полностью пустые строки (нет ДЗ, нет
// конспекта, нет причины) пропускаются, иначе лист разрастается
// бессмысленными нулями.
func BuildHistoryWorkbook(byDate map[string][]models.DayStatus, dates []string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return nil, err
	}
	header := []string{"user_id", "name", "tag", "date", "dz", "conspect", "miss_reason", "task_flag", "message_link"}
	for c, h := range header {
		if err := f.SetCellStr(historySheet, fmt.Sprintf("%s1", colName(c+1)), h); err != nil {
			return nil, err
		}
	}
	row := 2
	for _, date := range dates {
		for _, st := range byDate[date] {
			if !st.DZ && !st.Conspect && st.MissReason == "" {
				continue
			}
			_ = f.SetCellValue(historySheet, "A"+strconv.Itoa(row), st.UserID)
			nameCell := "B" + strconv.Itoa(row)
			_ = f.SetCellStr(historySheet, nameCell, st.DisplayName)
			_ = f.SetCellHyperLink(historySheet, nameCell, userLink(st.UserID), "External")
			tag := ""
			if st.Username != "" {
				tag = "@" + st.Username
			}
			_ = f.SetCellStr(historySheet, "C"+strconv.Itoa(row), tag)
			_ = f.SetCellStr(historySheet, "D"+strconv.Itoa(row), st.Date)
			_ = f.SetCellValue(historySheet, "E"+strconv.Itoa(row), boolFlag(st.DZ))
			_ = f.SetCellValue(historySheet, "F"+strconv.Itoa(row), boolFlag(st.Conspect))
			_ = f.SetCellStr(historySheet, "G"+strconv.Itoa(row), st.MissReason)
			_ = f.SetCellStr(historySheet, "H"+strconv.Itoa(row), st.TaskFlag)
			if st.MessageID != 0 {
				cell := "I" + strconv.Itoa(row)
				_ = f.SetCellStr(historySheet, cell, "Open")
				_ = f.SetCellHyperLink(historySheet, cell, messageLink(st.UserID, st.MessageID), "External")
			}
			row++
		}
	}
	if err := ApplyDefaultFormatting(f, historySheet); err != nil {
		return nil, err
	}
	return f, nil
}

// SaveHistory — сохраняет историю в REPORTS_DIR и возвращает путь.
func SaveHistory(f *excelize.File, reportsDir string) (string, error) {
	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		return "", err
	}
	name := sanitizeFileName(fmt.Sprintf("full_history_%d.xlsx", time.Now().Unix()))
	path := filepath.Join(reportsDir, name)
	if err := f.SaveAs(path); err != nil {
		return "", err
	}
	return path, nil
}
