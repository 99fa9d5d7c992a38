package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"p9e.in/flytta/config"
	"p9e.in/flytta/models"
)

// financeColumns drive both the header row and the column widths of the
// settlement export.
var financeColumns = []string{
	"Settled", "Quotation type", "Supplier", "Customer ID",
	"Moving (SEK)", "Additional (SEK)", "Truck (SEK)", "RUT (SEK)",
	"Insurance (SEK)", "Final price (SEK)", "Initial (SEK)", "Remaining (SEK)",
	"Payment status", "Order status",
}

// supplierNames resolves supplier display names for the export. A supplier's
// company name wins over the personal name when present.
func supplierNames(accepted []models.AcceptedBid) map[uuid.UUID]string {
	ids := make([]uuid.UUID, 0, len(accepted))
	seen := map[uuid.UUID]bool{}
	for _, ab := range accepted {
		if !seen[ab.SupplierID] {
			seen[ab.SupplierID] = true
			ids = append(ids, ab.SupplierID)
		}
	}

	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names
	}
	var suppliers []models.User
	if err := config.DB.Where("id IN ?", ids).Find(&suppliers).Error; err != nil {
		return names
	}
	for _, s := range suppliers {
		if s.CompanyName != nil && *s.CompanyName != "" {
			names[s.ID] = *s.CompanyName
		} else {
			names[s.ID] = s.Name
		}
	}
	return names
}

// ExportSettlements streams settled orders as an xlsx workbook for the
// finance team. Optional from/to query parameters (YYYY-MM-DD) bound the
// settlement date.
func ExportSettlements(w http.ResponseWriter, r *http.Request) {
	query := config.DB.Model(&models.AcceptedBid{}).Order("created_at ASC")
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			http.Error(w, "invalid from date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		query = query.Where("created_at >= ?", t)
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			http.Error(w, "invalid to date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		query = query.Where("created_at < ?", t.AddDate(0, 0, 1))
	}

	var accepted []models.AcceptedBid
	if err := query.Find(&accepted).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	f, err := createSettlementWorkbook(accepted)
	if err != nil {
		http.Error(w, "failed to generate Excel file", http.StatusInternalServerError)
		return
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		http.Error(w, "failed to write Excel file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("settlements_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))

	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}

// createSettlementWorkbook builds the export: title, header row, one data row
// per settled order and a totals block at the bottom.
func createSettlementWorkbook(accepted []models.AcceptedBid) (*excelize.File, error) {
	f := excelize.NewFile()
	sheetName := "Settlements"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 16,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
	})
	f.SetCellValue(sheetName, "A1", "Settled orders")
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	f.SetRowHeight(sheetName, 1, 30)
	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")))

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	for colIdx, header := range financeColumns {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 4)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
		col, _ := excelize.ColumnNumberToName(colIdx + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	names := supplierNames(accepted)
	totalFinal := decimal.Zero
	totalRut := decimal.Zero
	for rowIdx, ab := range accepted {
		supplier := names[ab.SupplierID]
		if supplier == "" {
			supplier = ab.SupplierID.String()
		}
		values := []interface{}{
			ab.CreatedAt.Format("2006-01-02 15:04"),
			string(ab.QuotationType),
			supplier,
			ab.CustomerID.String(),
			ab.MovingWithCommission.InexactFloat64(),
			ab.AdditionalWithCommission.InexactFloat64(),
			ab.TruckWithCommission.InexactFloat64(),
			ab.RutDeduction.InexactFloat64(),
			ab.InsuranceFee.InexactFloat64(),
			ab.FinalPrice.InexactFloat64(),
			ab.InitialPayment.InexactFloat64(),
			ab.RemainingPayment.InexactFloat64(),
			ab.PaymentStatus,
			ab.OrderStatus,
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+5)
			f.SetCellValue(sheetName, cell, value)
		}
		totalFinal = totalFinal.Add(ab.FinalPrice)
		totalRut = totalRut.Add(ab.RutDeduction)
	}

	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E7E6E6"},
			Pattern: 1,
		},
	})
	summaryRow := len(accepted) + 7
	cell, _ := excelize.CoordinatesToCellName(1, summaryRow)
	f.SetCellValue(sheetName, cell, "Summary")
	f.SetCellStyle(sheetName, cell, cell, summaryStyle)

	summary := [][2]interface{}{
		{"Orders", len(accepted)},
		{"Total final price (SEK)", totalFinal.InexactFloat64()},
		{"Total RUT deducted (SEK)", totalRut.InexactFloat64()},
	}
	for i, kv := range summary {
		keyCell, _ := excelize.CoordinatesToCellName(1, summaryRow+1+i)
		valueCell, _ := excelize.CoordinatesToCellName(2, summaryRow+1+i)
		f.SetCellValue(sheetName, keyCell, kv[0])
		f.SetCellValue(sheetName, valueCell, kv[1])
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}
