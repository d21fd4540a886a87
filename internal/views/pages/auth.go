package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"backoffice/internal/views/layout"
)

// Login renders the full sign-in page.
func Login(message, email string) templ.Component {
	return layout.Layout("Staff sign-in", nil, LoginPartial(message, email), false)
}

// LoginPartial renders only the sign-in form, for HTMX swaps.
func LoginPartial(message, email string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<section id="auth-panel"><h1>Costing console</h1><p>Sign in with your staff account to price menus and recipes.</p>`); err != nil {
			return err
		}
		if err := writeMessage(w, message); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w,
			`<form method="post" action="/login" hx-post="/login" hx-target="#auth-panel" hx-swap="outerHTML"><label>Work email <input type="email" name="email" value="%s" required></label><label>Password <input type="password" name="password" required></label><button type="submit">Sign in</button></form><p><a href="/signup">New to the team? Create a staff account</a></p></section>`,
			templ.EscapeString(email),
		)
		return err
	})
}

// Signup renders the full account creation page.
func Signup(message, name, email string) templ.Component {
	return layout.Layout("New staff account", nil, SignupPartial(message, name, email), false)
}

// SignupPartial renders only the account creation form.
func SignupPartial(message, name, email string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<section id="auth-panel"><h1>New staff account</h1>`); err != nil {
			return err
		}
		if err := writeMessage(w, message); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w,
			`<form method="post" action="/signup" hx-post="/signup" hx-target="#auth-panel" hx-swap="outerHTML"><label>Name <input type="text" name="name" value="%s"></label><label>Work email <input type="email" name="email" value="%s" required></label><label>Password <input type="password" name="password" minlength="8" required></label><label>Confirm password <input type="password" name="confirm_password" minlength="8" required></label><button type="submit">Create account</button></form><p><a href="/login">Already on the team? Sign in</a></p></section>`,
			templ.EscapeString(name),
			templ.EscapeString(email),
		)
		return err
	})
}

func writeMessage(w io.Writer, message string) error {
	if message == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, `<p class="form-message" role="alert">%s</p>`, templ.EscapeString(message))
	return err
}
