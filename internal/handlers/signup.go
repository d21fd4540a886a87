package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/a-h/templ"
	"gorm.io/gorm"

	applog "backoffice/internal/log"
	"backoffice/internal/views/pages"
)

const minPasswordLength = 8

const msgAccountFailed = "The staff account could not be created right now. Please try again."

// staffAccountForm is a submitted signup form.
type staffAccountForm struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

func parseStaffAccountForm(r *http.Request) (staffAccountForm, error) {
	if err := r.ParseForm(); err != nil {
		return staffAccountForm{}, err
	}
	return staffAccountForm{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.ToLower(strings.TrimSpace(r.PostFormValue("email"))),
		Password: r.PostFormValue("password"),
		Confirm:  r.PostFormValue("confirm_password"),
	}, nil
}

// problem returns the first reason the form cannot create an account, or "".
func (f staffAccountForm) problem() string {
	switch {
	case !validEmail(f.Email):
		return "Enter a valid work email address."
	case len(f.Password) < minPasswordLength:
		return fmt.Sprintf("Passwords need at least %d characters.", minPasswordLength)
	case f.Password != f.Confirm:
		return "The two passwords do not match."
	default:
		return ""
	}
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// Signup registers a new staff account and signs it in.
func Signup(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if ActiveSession(r) {
			redirectToApp(w, r)
			return
		}
		renderSignup(w, r, "", staffAccountForm{})
	case http.MethodPost:
		submitSignup(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func submitSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if sessionManager == nil || database == nil {
		applog.Warn(ctx, "signup attempted without a staff directory", "hasSession", sessionManager != nil, "hasDatabase", database != nil)
		http.Error(w, "registration is unavailable", http.StatusServiceUnavailable)
		return
	}

	form, err := parseStaffAccountForm(r)
	if err != nil {
		applog.Debug(ctx, "failed to parse signup form", "error", err)
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	if problem := form.problem(); problem != "" {
		applog.Debug(ctx, "signup rejected", "reason", problem)
		renderSignup(w, r, problem, form)
		return
	}

	_, err = findUserByEmail(r, form.Email)
	switch {
	case err == nil:
		renderSignup(w, r, "That email already has a staff account. Sign in instead.", form)
		return
	case !errors.Is(err, gorm.ErrRecordNotFound):
		applog.Error(ctx, "failed to check existing staff account", "error", err)
		renderSignup(w, r, msgAccountFailed, form)
		return
	}

	user, err := createUser(r, form.Email, form.Name, form.Password)
	if err != nil {
		applog.Error(ctx, "failed to create staff account", "error", err)
		renderSignup(w, r, msgAccountFailed, form)
		return
	}
	if err := establishSession(r, user); err != nil {
		applog.Error(ctx, "failed to sign in new staff account", "error", err, "userID", user.ID)
		renderSignup(w, r, msgAccountFailed, form)
		return
	}

	applog.Info(ctx, "staff account created", "userID", user.ID)
	redirectAfterSignIn(w, r)
}

func renderSignup(w http.ResponseWriter, r *http.Request, message string, form staffAccountForm) {
	var component templ.Component
	if isHTMX(r) {
		component = pages.SignupPartial(message, form.Name, form.Email)
	} else {
		component = pages.Signup(message, form.Name, form.Email)
	}
	renderComponent(w, r, component)
}
