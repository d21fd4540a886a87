package components

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// SidebarLink is a navigation entry in the console sidebar.
type SidebarLink struct {
	Label   string
	Path    string
	Section string
}

// SidebarData drives the sidebar; Active names the highlighted section.
type SidebarData struct {
	Active string
	Links  []SidebarLink
}

// Sidebar renders the console navigation.
func Sidebar(data SidebarData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<aside class="console-sidebar"><nav><ul>`); err != nil {
			return err
		}
		for _, link := range data.Links {
			if _, err := fmt.Fprintf(w,
				`<li><a href="%s" hx-get="%s" hx-target="#workspace" hx-push-url="true" data-nav-section="%s" data-state="%s">%s</a></li>`,
				templ.EscapeString(string(templ.URL(link.Path))),
				templ.EscapeString(string(templ.URL(link.Path))),
				templ.EscapeString(link.Section),
				linkState(link.Section, data.Active),
				templ.EscapeString(link.Label),
			); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul></nav><form method="post" action="/logout"><button type="submit">Sign out</button></form></aside>`)
		return err
	})
}

// StatCard renders a headline figure with an optional delta and caption.
func StatCard(title, value, delta, caption string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="stat-card"><p class="stat-title">%s</p><p class="stat-value">%s</p><p class="stat-delta">%s</p><p class="stat-caption">%s</p></div>`,
			templ.EscapeString(title),
			templ.EscapeString(value),
			templ.EscapeString(delta),
			templ.EscapeString(caption),
		)
		return err
	})
}

func linkState(section, active string) string {
	if section == active {
		return "active"
	}
	return "inactive"
}
