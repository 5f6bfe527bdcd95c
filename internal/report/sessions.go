package report

import (
	"fmt"
	"time"

	"github.com/Pritam-2002/firness-track/internal/appstate"

	"github.com/xuri/excelize/v2"
)

const SheetSessions = "Sessions"

var sessionColumns = []struct {
	title string
	width float64
}{
	{"Date", 12},
	{"Workout", 28},
	{"Start", 8},
	{"Duration (min)", 15},
	{"Exercises done", 15},
	{"Calories", 10},
	{"Notes", 40},
}

type sheetStyles struct {
	header, text, number, total int
}

// SessionsWorkbook lays out the session history, one row per session and a
// totals row at the bottom. The caller closes the returned file.
func SessionsWorkbook(sessions []appstate.WorkoutSession) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSessions); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	styles, err := createStyles(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create styles: %w", err)
	}

	for i, col := range sessionColumns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetSessions, name, name, col.width); err != nil {
			f.Close()
			return nil, err
		}
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetSessions, cell, col.title); err != nil {
			f.Close()
			return nil, err
		}
	}
	last, _ := excelize.ColumnNumberToName(len(sessionColumns))
	if err := f.SetCellStyle(SheetSessions, "A1", last+"1", styles.header); err != nil {
		f.Close()
		return nil, err
	}

	row := 2
	for _, ws := range sessions {
		values := []any{
			appstate.CompletionDate(ws),
			ws.TemplateName,
			startTime(ws.StartTime),
			ws.DurationMin,
			fmt.Sprintf("%d/%d", ws.CompletedExercises(), len(ws.Exercises)),
			ws.TotalCalories,
			ws.Notes,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetSessions, cell, &values); err != nil {
			f.Close()
			return nil, err
		}
		_ = f.SetCellStyle(SheetSessions, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), styles.text)
		_ = f.SetCellStyle(SheetSessions, fmt.Sprintf("D%d", row), fmt.Sprintf("F%d", row), styles.number)
		_ = f.SetCellStyle(SheetSessions, fmt.Sprintf("G%d", row), fmt.Sprintf("G%d", row), styles.text)
		row++
	}

	stats := appstate.SessionStats(sessions)
	totals := []any{"Total", fmt.Sprintf("%d sessions", stats.Sessions), "", stats.Minutes, "", stats.Calories, ""}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(SheetSessions, cell, &totals); err != nil {
		f.Close()
		return nil, err
	}
	_ = f.SetCellStyle(SheetSessions, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", last, row), styles.total)

	if err := f.SetPanes(SheetSessions, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func startTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("15:04")
}

func createStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error
	border := []excelize.Border{
		{Type: "left", Color: "#D9D9D9", Style: 1},
		{Type: "right", Color: "#D9D9D9", Style: 1},
		{Type: "top", Color: "#D9D9D9", Style: 1},
		{Type: "bottom", Color: "#D9D9D9", Style: 1},
	}

	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#2E75B6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return s, err
	}
	s.text, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return s, err
	}
	s.number, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return s, err
	}
	s.total, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 10},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Border: border,
	})
	return s, err
}
