package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/dkravt/eventops-payments/internal/locale"
	"github.com/dkravt/eventops-payments/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.MonthlyPaymentsReport) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Сводка"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, report); err != nil {
		return nil, err
	}

	usedNames := map[string]struct{}{summarySheet: {}}
	for _, group := range report.Months {
		sheetName := buildSheetName(group.Month, usedNames)
		usedNames[sheetName] = struct{}{}

		file.NewSheet(sheetName)
		if err := g.writeMonth(file, sheetName, group); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, report model.MonthlyPaymentsReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Отчет")
	set("B1", "Выплаты персоналу")
	if report.Personnel != nil {
		set("A2", "Сотрудник")
		set("B2", report.Personnel.FullName)
	}
	set("A3", "Сформирован")
	set("B3", report.GeneratedAt.Format("2006-01-02"))

	tableRow := 5
	headers := []string{"Месяц", "Запланировано", "Выплачено", "Просрочено", "Итого"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, group := range report.Months {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), formatMonth(group.Month))
		set(fmt.Sprintf("B%d", row), formatAmount(group.Planned))
		set(fmt.Sprintf("C%d", row), formatAmount(group.Paid))
		set(fmt.Sprintf("D%d", row), formatAmount(group.Overdue))
		set(fmt.Sprintf("E%d", row), formatAmount(group.Total))
	}

	_ = file.SetColWidth(sheet, "A", "A", 20)
	_ = file.SetColWidth(sheet, "B", "E", 16)
	return nil
}

func (g *Generator) writeMonth(file *excelize.File, sheet string, group model.PaymentMonthGroup) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Месяц")
	set("B1", formatMonth(group.Month))
	set("A2", "Итого, BYN")
	set("B2", formatAmount(group.Total))

	tableRow := 4
	headers := []string{"Сотрудник", "Сумма, BYN", "Статус", "Дата выплаты", "Примечание"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, row := range group.Rows {
		line := tableRow + 1 + i
		set(fmt.Sprintf("A%d", line), row.PersonnelName)
		set(fmt.Sprintf("B%d", line), formatAmount(row.Payment.Amount))
		set(fmt.Sprintf("C%d", line), locale.PaymentStatus(row.Payment.Status))
		set(fmt.Sprintf("D%d", line), formatDatePtr(row.Payment.PaymentDate))
		set(fmt.Sprintf("E%d", line), row.Payment.Notes)
	}

	_ = file.SetColWidth(sheet, "A", "A", 32)
	_ = file.SetColWidth(sheet, "B", "D", 16)
	_ = file.SetColWidth(sheet, "E", "E", 40)
	return nil
}

func buildSheetName(month time.Time, used map[string]struct{}) string {
	base := sanitizeSheetName(formatMonth(month))
	if len(base) > 31 {
		base = base[:31]
	}

	nameCandidate := base
	counter := 2
	for {
		if _, exists := used[nameCandidate]; !exists {
			return nameCandidate
		}
		nameCandidate = fmt.Sprintf("%s-%d", base, counter)
		counter++
	}
}

func sanitizeSheetName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Лист"
	}

	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = replacer.Replace(value)
	value = strings.TrimSpace(value)
	if value == "" {
		return "Лист"
	}
	return value
}

func formatMonth(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01")
}

func formatDatePtr(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatAmount(value decimal.Decimal) string {
	return value.StringFixed(2)
}
