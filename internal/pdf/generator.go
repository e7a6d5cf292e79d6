package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/dkravt/eventops-payments/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() (*Generator, error) {
	return &Generator{fontName: "Helvetica"}, nil
}

func (g *Generator) Generate(estimate model.Estimate) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Event Estimate", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Estimate %s, version %d", estimate.EstimateNumber, estimate.Version), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Calculation: %s, status: %s", estimate.CalculationType, estimate.Status), "", 1, "C", false, 0, "")
	if estimate.USDRate != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("USD rate snapshot: %s", estimate.USDRate.StringFixed(4)), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Items", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)

	headers := []string{"Type", "Qty", "Days/km", "Price", "Total USD", "Total BYN"}
	colWidths := []float64{50, 20, 25, 28, 32, 32}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)

	for _, item := range estimate.Items {
		row := []string{
			itemLabel(item),
			fmt.Sprintf("%d", item.Quantity),
			scaleLabel(item),
			item.PriceUSD.StringFixed(2),
			formatAmount(item.TotalUSD),
			formatAmount(item.TotalBYN),
		}
		drawTableRow(pdf, g.fontName, row, colWidths, false)
	}

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total USD: %s", formatAmount(estimate.TotalUSD)), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Total BYN: %s", formatAmount(estimate.TotalBYN)), "", 1, "R", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s", time.Now().UTC().Format("2006-01-02")), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func itemLabel(item model.EstimateItem) string {
	if item.ItemType == model.EstimateItemWork && strings.TrimSpace(item.WorkType) != "" {
		return fmt.Sprintf("%s: %s", item.ItemType, item.WorkType)
	}
	return string(item.ItemType)
}

func scaleLabel(item model.EstimateItem) string {
	if item.ItemType == model.EstimateItemDelivery && item.DistanceKM != nil {
		return fmt.Sprintf("%s km", item.DistanceKM.StringFixed(1))
	}
	return fmt.Sprintf("%d d", item.Days)
}

func formatAmount(value decimal.Decimal) string {
	return value.StringFixed(2)
}
