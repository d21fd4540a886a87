package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// trustedHTML is markup built by this package. markup.printf writes it as is.
type trustedHTML string

// markup writes HTML fragments and keeps the first write error, so a
// component can emit a run of fragments and check once at the end.
type markup struct {
	w   io.Writer
	err error
}

func (m *markup) raw(s string) {
	if m.err == nil {
		_, m.err = io.WriteString(m.w, s)
	}
}

// printf is fmt.Fprintf with every string argument HTML-escaped. Other
// argument types, trustedHTML included, are formatted unchanged.
func (m *markup) printf(format string, args ...any) {
	if m.err != nil {
		return
	}
	escaped := make([]any, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case string:
			escaped[i] = templ.EscapeString(v)
		case trustedHTML:
			escaped[i] = string(v)
		default:
			escaped[i] = arg
		}
	}
	_, m.err = fmt.Fprintf(m.w, format, escaped...)
}

func (m *markup) component(ctx context.Context, c templ.Component) {
	if m.err == nil {
		m.err = c.Render(ctx, m.w)
	}
}
