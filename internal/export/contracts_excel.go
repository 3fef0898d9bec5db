package export

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/student-contracts-backend/internal/db"
)

type SheetSpec struct {
	Title  string
	Header []string
	Rows   [][]string
}

type Workbook struct {
	File *excelize.File
}

// BuildContractsWorkbook — реестр всех контрактов одним листом.
func BuildContractsWorkbook(ctx context.Context, database *sql.DB) (*Workbook, error) {
	rows, err := db.ListContractRows(ctx, database)
	if err != nil {
		return nil, fmt.Errorf("реестр контрактов: %w", err)
	}

	sheet := SheetSpec{
		Title: "Контракты",
		Header: []string{
			"ID", "Тип", "Тема", "Курс", "Семестр", "Год",
			"Студент", "Email", "Статус", "Руководители", "Экзаменаторы",
			"Конвинер", "Подан", "Утверждён",
		},
	}
	for _, r := range rows {
		sheet.Rows = append(sheet.Rows, []string{
			strconv.FormatInt(r.ID, 10),
			contractTypeLabel(r.Type),
			r.Title,
			r.CourseName,
			strconv.Itoa(r.Semester),
			strconv.Itoa(r.Year),
			r.OwnerName,
			r.OwnerEmail,
			stateLabel(r.State),
			r.Supervisors,
			r.Examiners,
			nullStr(r.ConvenerName),
			nullDate(r.SubmitDate),
			nullDate(r.ApproveDate),
		})
	}
	return NewWorkbook([]SheetSpec{sheet})
}

func NewWorkbook(sheets []SheetSpec) (*Workbook, error) {
	f := excelize.NewFile()

	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	// автофильтр только в первой строке
	for i, s := range sheets {
		name := s.Title
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("new sheet: %w", err)
			}
		}
		// заголовки
		for col, h := range s.Header {
			cell := fmt.Sprintf("%s1", colName(col+1))
			if err := f.SetCellStr(name, cell, h); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
		// стиль заголовков + автофильтр
		end := colName(len(s.Header)) + "1"
		_ = f.SetCellStyle(name, "A1", end, bold)
		_ = f.AutoFilter(name, "A1:"+end, nil)

		// строки
		for r, row := range s.Rows {
			for c, val := range row {
				cell := fmt.Sprintf("%s%d", colName(c+1), r+2)
				if err := f.SetCellStr(name, cell, val); err != nil {
					return nil, fmt.Errorf("set cell %s: %w", cell, err)
				}
			}
		}
		// эвристическая ширина: по длине заголовка и первых строк
		for c := 1; c <= len(s.Header); c++ {
			maxim := len(s.Header[c-1])
			for r := 0; r < minim(50, len(s.Rows)); r++ {
				if l := len(s.Rows[r][c-1]); l > maxim {
					maxim = l
				}
			}
			w := float64(maxim) * 0.9
			if w < 12 {
				w = 12
			}
			if w > 40 {
				w = 40
			}
			_ = f.SetColWidth(name, colName(c), colName(c), w)
		}
	}
	return &Workbook{File: f}, nil
}

func FileName() string {
	return fmt.Sprintf("contracts_%s.xlsx", time.Now().Format("2006-01-02"))
}

func contractTypeLabel(t string) string {
	switch t {
	case "individual_project":
		return "Индивидуальный проект"
	case "special_topic":
		return "Спецтема"
	}
	return t
}

func stateLabel(s string) string {
	switch s {
	case "draft":
		return "Черновик"
	case "submitted":
		return "На согласовании"
	case "finalized":
		return "Утверждён"
	}
	return s
}

func nullStr(s sql.NullString) string {
	if !s.Valid {
		return ""
	}
	return s.String
}

func nullDate(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}
	return t.Time.Format("02.01.2006")
}

// helpers
func colName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

func minim(a, b int) int {
	if a < b {
		return a
	}
	return b
}
