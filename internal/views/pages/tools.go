package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"backoffice/internal/views/components"
	"backoffice/internal/views/layout"
)

// ImportSummary reports the outcome of a price sheet import.
type ImportSummary struct {
	FileName string
	Created  int
	Updated  int
	Skipped  []string
}

// Tools renders the price sheet import page.
func Tools(message string, summary *ImportSummary) templ.Component {
	return layout.Layout("Import price sheet", components.Sidebar(sidebar(SectionTools)), ToolsPanel(message, summary), true)
}

// ToolsPanel renders the upload form and the result of the last import.
func ToolsPanel(message string, summary *ImportSummary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<section id="tools-panel"><h1>Import price sheet</h1>`); err != nil {
			return err
		}
		if err := writeMessage(w, message); err != nil {
			return err
		}
		if summary != nil {
			if _, err := fmt.Fprintf(w,
				`<div class="import-summary"><p>%s: %d created, %d updated, %d skipped.</p>`,
				templ.EscapeString(summary.FileName), summary.Created, summary.Updated, len(summary.Skipped),
			); err != nil {
				return err
			}
			if len(summary.Skipped) > 0 {
				if _, err := io.WriteString(w, `<ul class="import-skipped">`); err != nil {
					return err
				}
				for _, row := range summary.Skipped {
					if _, err := fmt.Fprintf(w, `<li>%s</li>`, templ.EscapeString(row)); err != nil {
						return err
					}
				}
				if _, err := io.WriteString(w, `</ul>`); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</div>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `<form method="post" action="/app/tools/import-ingredients" enctype="multipart/form-data" hx-post="/app/tools/import-ingredients" hx-encoding="multipart/form-data" hx-target="#tools-panel" hx-swap="outerHTML"><label>Price sheet (CSV, YAML or PDF) <input type="file" name="price_sheet" accept=".csv,.txt,.yaml,.yml,.pdf" required></label><button type="submit">Import</button></form></section>`)
		return err
	})
}
