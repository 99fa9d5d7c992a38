package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"p9e.in/flytta/models"
)

// InvoiceService renders the settlement receipt as a PDF under the uploads
// directory. When a GCS bucket is configured the file is also copied there;
// the local path stays the source of truth for email attachments.
type InvoiceService struct {
	dir    string
	bucket string
}

func NewInvoiceService() *InvoiceService {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "./uploads"
	}
	return &InvoiceService{
		dir:    dir,
		bucket: os.Getenv("GCS_BUCKET"),
	}
}

// InvoiceData is the settlement snapshot an invoice is rendered from.
type InvoiceData struct {
	Number          string
	IssuedAt        time.Time
	CustomerName    string
	CustomerEmail   string
	PickupAddress   string
	DeliveryAddress string
	QuotationType   models.QuotationType
	Pricing         PricingResult
}

// InvoiceDataFromOutcome builds the invoice input from a committed settlement.
func InvoiceDataFromOutcome(out *SettlementOutcome) InvoiceData {
	now := time.Now()
	return InvoiceData{
		Number:          invoiceNumber(now, out.Accepted.ID),
		IssuedAt:        now,
		CustomerName:    out.Quotation.CustomerName,
		CustomerEmail:   out.Quotation.CustomerEmail,
		PickupAddress:   out.Quotation.PickupAddress,
		DeliveryAddress: out.Quotation.DeliveryAddress,
		QuotationType:   out.Quotation.Type,
		Pricing:         out.Pricing,
	}
}

// invoiceNumber builds a stable, human-readable invoice reference.
func invoiceNumber(t time.Time, id uuid.UUID) string {
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:8]
	return fmt.Sprintf("FLY-%s-%s", t.Format("20060102"), short)
}

// GenerateInvoice writes the receipt PDF and returns its path.
func (is *InvoiceService) GenerateInvoice(data InvoiceData) (string, error) {
	if err := os.MkdirAll(is.dir, 0755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Flytta AB")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Invoice %s", data.Number))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Issued %s", data.IssuedAt.Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Customer")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, data.CustomerName)
	pdf.Ln(5)
	pdf.Cell(0, 6, data.CustomerEmail)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Move")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Service: %s", data.QuotationType))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("From: %s", data.PickupAddress))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("To:   %s", data.DeliveryAddress))
	pdf.Ln(10)

	writeRow := func(label string, amount decimal.Decimal) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(120, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, amount.StringFixed(2)+" SEK", "", 1, "R", false, 0, "")
	}

	p := data.Pricing
	writeRow("Moving (incl. commission)", p.MovingWithCommission)
	if p.AdditionalWithCommission.IsPositive() {
		writeRow("Additional services (incl. commission)", p.AdditionalWithCommission)
	}
	if p.TruckWithCommission.IsPositive() {
		writeRow("Truck (incl. commission)", p.TruckWithCommission)
	}
	if p.RutDeduction.IsPositive() {
		writeRow("RUT deduction", p.RutDeduction.Neg())
	}
	if p.InsuranceFee.IsPositive() {
		writeRow("Extra insurance", p.InsuranceFee)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(120, 8, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(50, 8, p.FinalPrice.StringFixed(2)+" SEK", "T", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	writeRow("Initial payment due (20%)", p.InitialPayment)
	writeRow("Remaining payment (80%)", p.RemainingPayment)

	filename := fmt.Sprintf("invoice-%s.pdf", data.Number)
	path := filepath.Join(is.dir, filename)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write invoice pdf: %w", err)
	}

	if is.bucket != "" {
		if err := is.uploadToGCS(path, filename); err != nil {
			// The local copy is enough to proceed.
			log.Printf("⚠️  Failed to upload invoice %s to GCS: %v", filename, err)
		}
	}
	return path, nil
}

// uploadToGCS copies a generated invoice into the configured bucket.
func (is *InvoiceService) uploadToGCS(localPath, objectName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := storage.NewClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := client.Bucket(is.bucket).Object("invoices/" + objectName).NewWriter(ctx)
	w.ContentType = "application/pdf"
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
