package services

import (
	"bytes"
	"html/template"

	"github.com/shopspring/decimal"

	"crm-backend/internal/models"
)

var invoiceEmailTemplate = template.Must(template.New("invoice").Parse(`
<h2>Invoice from Freelance CRM</h2>
<p>Dear {{.ClientName}},</p>
<p>Please find attached your invoice.</p>
<p><strong>Total Amount: ${{.Total}}</strong></p>
{{if .ProjectName}}<p>Project: {{.ProjectName}}</p>
{{end}}<p>Thank you for your business!</p>
`))

func invoiceEmailHTML(invoice *models.InvoiceProjection) (string, error) {
	data := struct {
		ClientName  string
		Total       string
		ProjectName string
	}{
		ClientName: invoice.Client.Name,
		Total:      decimal.NewFromFloat(invoice.Total).StringFixed(2),
	}
	if invoice.Project != nil {
		data.ProjectName = invoice.Project.Name
	}

	var buf bytes.Buffer
	if err := invoiceEmailTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
