// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"

	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/order"
)

// Service handles order receipt PDF generation
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// receiptData is the data passed to the receipt template.
type receiptData struct {
	StoreName string
	Currency  string
	Order     *order.Order
	Paid      bool
}

// GenerateReceipt renders a PDF receipt for an order. Requires the
// wkhtmltopdf binary on the host.
func (s *Service) GenerateReceipt(o *order.Order) (*bytes.Buffer, error) {
	html, err := s.RenderHTML(o)
	if err != nil {
		return nil, err
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)

	page := wkhtmltopdf.NewPageReader(strings.NewReader(html))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderHTML renders the receipt markup without converting it to PDF.
func (s *Service) RenderHTML(o *order.Order) (string, error) {
	data := receiptData{
		StoreName: s.config.App.Name,
		Currency:  s.config.Payment.Currency,
		Order:     o,
		Paid:      o.Payment != nil && o.Payment.Status == "success",
	}

	tmpl := template.Must(template.New("receipt").Funcs(template.FuncMap{
		"money": func(amount int64) string {
			return fmt.Sprintf("%.2f", float64(amount)/100)
		},
	}).Parse(receiptTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute receipt template: %w", err)
	}
	return buf.String(), nil
}
