package email

import (
	"bytes"
	"html/template"
)

// TemplateManager holds the parsed email templates.
type TemplateManager struct {
	OrderEventTmpl *template.Template
}

// NewTemplateManager parses all email templates at startup.
func NewTemplateManager() (*TemplateManager, error) {
	orderEventTmpl, err := template.New("orderEvent").Parse(orderEventTemplate)
	if err != nil {
		return nil, err
	}
	return &TemplateManager{OrderEventTmpl: orderEventTmpl}, nil
}

// TemplateData holds the dynamic data for an email template.
type TemplateData struct {
	Name       string
	OrderTitle string
	Message    string
}

// GenerateOrderEventEmailHTML executes the order event template with the
// provided data.
func (tm *TemplateManager) GenerateOrderEventEmailHTML(data TemplateData) (string, error) {
	var body bytes.Buffer
	if err := tm.OrderEventTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// --- HTML Template Definitions ---

const orderEventTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Order Update</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h2>Hello {{.Name}},</h2>
	<p>{{.Message}}</p>
	<p>Order: <strong>{{.OrderTitle}}</strong></p>
	<p>Open the Fixoo app to see the details.</p>
</body>
</html>
`
