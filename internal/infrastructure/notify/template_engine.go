package notify

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/messaging"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

// saoPaulo is the zone dates are shown in; falls back to UTC on hosts without tzdata
var saoPaulo = loadLocation("America/Sao_Paulo")

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// subjects are text templates rendered with the same data as the body
var subjects = map[messaging.TemplateName]string{
	messaging.TemplateOrderConfirmation: "Pedido {{.OrderNumber}} confirmado",
	messaging.TemplatePayoutPaid:        "Seu resgate de {{formatBRL .Amount}} foi pago",
	messaging.TemplateInvoiceIssued:     "NF-e {{.InvoiceNumber}} emitida",
}

type compiledTemplate struct {
	subject *texttemplate.Template
	html    *htmltemplate.Template
	text    *texttemplate.Template
}

// TemplateEngine renders the pt-BR transactional templates. All templates are
// parsed once at construction so a broken template fails at startup.
type TemplateEngine struct {
	templates map[messaging.TemplateName]compiledTemplate
}

// NewTemplateEngine parses the embedded templates
func NewTemplateEngine() (*TemplateEngine, error) {
	funcs := templateFuncs()
	e := &TemplateEngine{templates: make(map[messaging.TemplateName]compiledTemplate, len(subjects))}
	for name, subject := range subjects {
		var (
			ct  compiledTemplate
			err error
		)
		if ct.subject, err = texttemplate.New(string(name) + ".subject").Funcs(funcs).Parse(subject); err != nil {
			return nil, fmt.Errorf("parse %s subject: %w", name, err)
		}
		if ct.html, err = htmltemplate.New(string(name) + ".html").Funcs(htmltemplate.FuncMap(funcs)).ParseFS(templateFS, "templates/"+string(name)+".html"); err != nil {
			return nil, fmt.Errorf("parse %s html: %w", name, err)
		}
		if ct.text, err = texttemplate.New(string(name) + ".txt").Funcs(funcs).ParseFS(templateFS, "templates/"+string(name)+".txt"); err != nil {
			return nil, fmt.Errorf("parse %s text: %w", name, err)
		}
		e.templates[name] = ct
	}
	return e, nil
}

// Render expands a named template
func (e *TemplateEngine) Render(name messaging.TemplateName, data any) (*messaging.Rendered, error) {
	ct, ok := e.templates[name]
	if !ok {
		return nil, messaging.ErrUnknownTemplate
	}
	var subject, html, text bytes.Buffer
	if err := ct.subject.Execute(&subject, data); err != nil {
		return nil, fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := ct.html.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render %s html: %w", name, err)
	}
	if err := ct.text.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("render %s text: %w", name, err)
	}
	return &messaging.Rendered{
		Subject: strings.TrimSpace(subject.String()),
		HTML:    html.String(),
		Text:    strings.TrimSpace(text.String()) + "\n",
	}, nil
}

var _ messaging.Renderer = (*TemplateEngine)(nil)

// ---------------------------------------------------------------------------
// Template functions
// ---------------------------------------------------------------------------

func templateFuncs() texttemplate.FuncMap {
	return texttemplate.FuncMap{
		"formatBRL":      valueobject.FormatBRL,
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,
		"formatPercent":  formatPercent,
		"title":          titleCase,
		"upper":          strings.ToUpper,
		"default":        defaultString,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(saoPaulo).Format("02/01/2006")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(saoPaulo).Format("02/01/2006 15:04")
}

// formatPercent renders 12.5 as "12,5%"
func formatPercent(d decimal.Decimal) string {
	return strings.Replace(d.String(), ".", ",", 1) + "%"
}

func titleCase(s string) string {
	return cases.Title(language.BrazilianPortuguese).String(strings.ToLower(s))
}

func defaultString(val, def string) string {
	if strings.TrimSpace(val) == "" {
		return def
	}
	return val
}
