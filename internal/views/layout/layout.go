package layout

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Layout renders the console shell around a sidebar and the main content.
func Layout(title string, sidebar, content templ.Component, sidebarOpen bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s</title><link rel="stylesheet" href="/assets/app.css"><script src="https://unpkg.com/htmx.org@1.9.12" defer></script></head><body class="min-h-screen bg-stone-50 text-stone-900"><div class="%s">`,
			templ.EscapeString(title), bodyWrapperClass(sidebarOpen),
		); err != nil {
			return err
		}
		if sidebar != nil {
			if err := sidebar.Render(ctx, w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, `<main id="workspace" class="%s">`, mainClass(sidebarOpen)); err != nil {
			return err
		}
		if content != nil {
			if err := content.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</main></div></body></html>`)
		return err
	})
}

func bodyWrapperClass(sidebarOpen bool) string {
	if sidebarOpen {
		return "console-shell with-sidebar"
	}
	return "console-shell"
}

func mainClass(sidebarOpen bool) string {
	if sidebarOpen {
		return "console-main pl-64"
	}
	return "console-main"
}
