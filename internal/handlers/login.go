package handlers

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"

	applog "backoffice/internal/log"
	"backoffice/internal/views/pages"
)

// credentials is a submitted sign-in form.
type credentials struct {
	Email    string
	Password string
}

func parseCredentials(r *http.Request) (credentials, error) {
	if err := r.ParseForm(); err != nil {
		return credentials{}, err
	}
	return credentials{
		Email:    strings.ToLower(strings.TrimSpace(r.PostFormValue("email"))),
		Password: r.PostFormValue("password"),
	}, nil
}

// Login serves the staff sign-in form and checks submitted credentials.
func Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		showLogin(w, r)
	case http.MethodPost:
		submitLogin(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func showLogin(w http.ResponseWriter, r *http.Request) {
	if ActiveSession(r) {
		redirectToApp(w, r)
		return
	}
	renderLogin(w, r, popFlash(r), "")
}

func submitLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if sessionManager == nil || database == nil {
		applog.Warn(ctx, "sign-in attempted without a staff directory", "hasSession", sessionManager != nil, "hasDatabase", database != nil)
		http.Error(w, "sign-in is unavailable", http.StatusServiceUnavailable)
		return
	}

	form, err := parseCredentials(r)
	if err != nil {
		applog.Debug(ctx, "failed to parse login form", "error", err)
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	if form.Email == "" || form.Password == "" {
		renderLogin(w, r, "Enter your staff email and password.", form.Email)
		return
	}

	if !authenticate(w, r, form.Email, form.Password) {
		message := popFlash(r)
		if message == "" {
			message = msgSignInFailed
		}
		renderLogin(w, r, message, form.Email)
		return
	}
	redirectAfterSignIn(w, r)
}

func renderLogin(w http.ResponseWriter, r *http.Request, message, email string) {
	var component templ.Component
	if isHTMX(r) {
		component = pages.LoginPartial(message, email)
	} else {
		component = pages.Login(message, email)
	}
	renderComponent(w, r, component)
}
