// Package notify renders the confirmation message sent for a valid record.
package notify

import (
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/kursadbilgin/orderflow/internal/domain"
	"github.com/kursadbilgin/orderflow/internal/schema"
)

// Message is a rendered notification.
type Message struct {
	Subject string
	Body    string
}

// Renderer fills the dataset's confirmation template from a record. It is safe for concurrent use.
type Renderer struct {
	subject *template.Template
	body    *template.Template
}

func NewRenderer(s schema.Schema) (*Renderer, error) {
	set, ok := templateSets[s.Name]
	if !ok {
		return nil, fmt.Errorf("%w: no notification template for dataset %q", domain.ErrValidation, s.Name)
	}

	funcs := template.FuncMap{
		"grouped": func(v any, decimals int) string {
			n, ok := v.(float64)
			if !ok {
				return fmt.Sprint(v)
			}
			return message.NewPrinter(language.English).Sprint(number.Decimal(n, number.Scale(decimals)))
		},
		"statusMessage": func(status any) string {
			if msg, ok := set.statuses[fmt.Sprint(status)]; ok {
				return msg
			}
			return set.fallback
		},
	}

	subject, err := template.New(s.Name + "-subject").Funcs(funcs).Option("missingkey=error").Parse(set.subject)
	if err != nil {
		return nil, fmt.Errorf("failed to parse subject template: %w", err)
	}
	body, err := template.New(s.Name + "-body").Funcs(funcs).Option("missingkey=error").Parse(set.body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse body template: %w", err)
	}

	return &Renderer{subject: subject, body: body}, nil
}

func (r *Renderer) Render(record domain.Record) (Message, error) {
	data := templateData(record)

	var subject, body strings.Builder
	if err := r.subject.Execute(&subject, data); err != nil {
		return Message{}, fmt.Errorf("failed to render subject for %s: %w", record.Label(), err)
	}
	if err := r.body.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("failed to render body for %s: %w", record.Label(), err)
	}

	return Message{
		Subject: strings.TrimSpace(subject.String()),
		Body:    strings.TrimSpace(body.String()),
	}, nil
}

// templateData exposes numbers as float64 and everything else as text.
func templateData(record domain.Record) map[string]any {
	fields := record.Fields()
	data := make(map[string]any, len(fields))
	for _, name := range fields {
		v := record.Get(name)
		if n, ok := v.Num(); ok {
			data[name] = n
			continue
		}
		data[name] = v.Text()
	}
	return data
}
