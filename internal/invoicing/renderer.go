package invoicing

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"crm-backend/internal/models"
)

// ErrRenderFailed is returned for any fault while producing the invoice document.
var ErrRenderFailed = errors.New("render failed")

// A4 in points.
const (
	pageWidth  = 595.0
	pageHeight = 842.0
	margin     = 50.0

	colDescription = 60.0
	colQuantity    = 350.0
	colRate        = 400.0
	colAmount      = 480.0
	totalsLabelX   = 400.0
	totalsValueX   = 480.0
)

// Document is everything the renderer needs to lay out one invoice.
type Document struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	Total       float64
	TaxRate     float64
	Discount    float64
	Client      models.InvoiceClient
	ProjectName string
	Notes       string
	Items       []models.LineItem
}

// DocumentFrom flattens a stored invoice projection into render input.
func DocumentFrom(p *models.InvoiceProjection) Document {
	doc := Document{
		ID:        p.ID,
		CreatedAt: p.CreatedAt,
		Total:     p.Total,
		TaxRate:   p.Tax,
		Discount:  p.Discount,
		Client:    p.Client,
		Notes:     p.Notes,
		Items:     p.Items,
	}
	if p.Project != nil {
		doc.ProjectName = p.Project.Name
	}
	return doc
}

// Rendered is a finished PDF.
// SubtotalApproximated is set when the document had no line items and the
// subtotal was reconstructed from the stored total, tax and discount.
type Rendered struct {
	Bytes                []byte
	Subtotal             float64
	SubtotalApproximated bool
}

type Renderer struct {
	compress bool
	loc      *time.Location
}

type Option func(*Renderer)

// WithoutCompression leaves page streams uncompressed.
func WithoutCompression() Option {
	return func(r *Renderer) { r.compress = false }
}

// WithLocation sets the zone the invoice date is printed in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(r *Renderer) {
		if loc != nil {
			r.loc = loc
		}
	}
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{compress: true, loc: time.UTC}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render lays out a single A4 page and returns its bytes.
// Identical documents produce identical bytes.
func (r *Renderer) Render(doc Document) (out *Rendered, err error) {
	if strings.TrimSpace(doc.Client.Name) == "" {
		return nil, fmt.Errorf("%w: client name is required", ErrRenderFailed)
	}
	if doc.CreatedAt.IsZero() {
		return nil, fmt.Errorf("%w: created_at is required", ErrRenderFailed)
	}
	if err := checkEncodable(doc); err != nil {
		return nil, err
	}

	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrRenderFailed, rec)
		}
	}()

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
	})
	pdf.SetCompression(r.compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(doc.CreatedAt)
	pdf.SetModificationDate(doc.CreatedAt)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(margin, margin, margin)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(x, y float64, s string) {
		pdf.Text(x, y, tr(s))
	}

	y := margin

	// Header
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(51, 51, 51)
	text(margin, y, "INVOICE")

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(102, 102, 102)
	text(pageWidth-150, y, "#"+strings.ToUpper(models.ShortID(doc.ID)))

	y += 30
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	text(pageWidth-150, y, "Date: "+doc.CreatedAt.In(r.loc).Format("1/2/2006"))

	// Bill to
	y += 40
	pdf.SetFont("Helvetica", "B", 12)
	text(margin, y, "Bill To:")

	y += 20
	pdf.SetFont("Helvetica", "", 10)
	text(margin, y, doc.Client.Name)
	y += 15
	if doc.Client.Company != "" {
		text(margin, y, doc.Client.Company)
		y += 15
	}
	text(margin, y, doc.Client.Email)
	y += 40

	if doc.ProjectName != "" {
		pdf.SetFont("Helvetica", "B", 10)
		text(margin, y, "Project: "+doc.ProjectName)
		y += 30
	}

	// Item table
	pdf.SetFillColor(242, 242, 242)
	pdf.Rect(margin, y, pageWidth-2*margin, 20, "F")

	pdf.SetFont("Helvetica", "B", 10)
	text(colDescription, y+15, "Description")
	text(colQuantity, y+15, "Qty")
	text(colRate, y+15, "Rate")
	text(colAmount, y+15, "Amount")

	y += 40
	pdf.SetFont("Helvetica", "", 9)

	approximated := len(doc.Items) == 0
	var subtotal float64
	if approximated {
		pdf.SetTextColor(128, 128, 128)
		text(colDescription, y, "Line details not available")
		pdf.SetTextColor(0, 0, 0)
		y += 20
		subtotal = (doc.Total + doc.Discount) / (1 + doc.TaxRate/100)
	} else {
		for _, item := range doc.Items {
			text(colDescription, y, item.Description)
			text(colQuantity+10, y, strconv.FormatFloat(item.Quantity, 'f', -1, 64))
			text(colRate, y, money(item.Rate))
			text(colAmount, y, money(item.Amount))
			y += 20
		}
		subtotal = ComputeTotals(doc.Items, 0, 0).Subtotal
	}

	// Totals
	y += 20
	pdf.SetFont("Helvetica", "", 10)
	text(totalsLabelX, y, "Subtotal:")
	text(totalsValueX, y, money(subtotal))
	y += 20

	if doc.TaxRate > 0 {
		text(totalsLabelX, y, "Tax ("+strconv.FormatFloat(doc.TaxRate, 'f', -1, 64)+"%):")
		text(totalsValueX, y, money(subtotal*doc.TaxRate/100))
		y += 20
	}

	if doc.Discount > 0 {
		text(totalsLabelX, y, "Discount:")
		text(totalsValueX, y, "-"+money(doc.Discount))
		y += 20
	}

	pdf.SetFillColor(51, 51, 51)
	pdf.Rect(totalsLabelX-10, y-20, 155, 25, "F")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(255, 255, 255)
	text(totalsLabelX, y-5, "TOTAL:")
	text(totalsValueX, y-5, money(doc.Total))
	pdf.SetTextColor(0, 0, 0)

	if strings.TrimSpace(doc.Notes) != "" {
		y += 60
		pdf.SetFont("Helvetica", "B", 10)
		text(margin, y, "Notes:")
		y += 15

		pdf.SetFont("Helvetica", "", 9)
		for _, line := range wrap(pdf, tr(doc.Notes), pageWidth-2*margin) {
			pdf.Text(margin, y, line)
			y += 12
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	return &Rendered{
		Bytes:                buf.Bytes(),
		Subtotal:             subtotal,
		SubtotalApproximated: approximated,
	}, nil
}

// checkEncodable rejects text the core fonts cannot draw. The cp1252 translator
// would otherwise replace those characters with dots.
func checkEncodable(doc Document) error {
	fields := []string{doc.Client.Name, doc.Client.Company, doc.Client.Email, doc.ProjectName, doc.Notes}
	for _, item := range doc.Items {
		fields = append(fields, item.Description)
	}

	for _, f := range fields {
		for _, r := range f {
			if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
				return fmt.Errorf("%w: cannot encode %q in the invoice font", ErrRenderFailed, r)
			}
		}
	}
	return nil
}

// wrap breaks already-translated text into lines no wider than maxWidth using the current font.
// Explicit newlines start a new line; a single word wider than maxWidth keeps its own line.
func wrap(pdf *gofpdf.Fpdf, s string, maxWidth float64) []string {
	var lines []string
	for _, paragraph := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		current := words[0]
		for _, w := range words[1:] {
			candidate := current + " " + w
			if pdf.GetStringWidth(candidate) > maxWidth {
				lines = append(lines, current)
				current = w
				continue
			}
			current = candidate
		}
		lines = append(lines, current)
	}
	return lines
}

func money(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}
