package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	applog "backoffice/internal/log"
	"backoffice/models"
)

// Session keys for the signed-in staff member.
const (
	sessionAuthenticatedKey = "staff:authenticated"
	sessionLoginMessageKey  = "staff:flash"
	sessionReturnPathKey    = "staff:return"
	sessionUserIDKey        = "staff:id"
	sessionUserEmailKey     = "staff:email"
	sessionUserNameKey      = "staff:name"
)

const (
	msgBadCredentials = "No staff account matches that email and password."
	msgSignInFailed   = "Sign-in is unavailable right now. Please try again shortly."
)

const defaultCurrencySymbol = "$"

var (
	sessionManager *scs.SessionManager
	database       *gorm.DB
	currencySymbol = defaultCurrencySymbol
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(sm *scs.SessionManager, db *gorm.DB) {
	sessionManager = sm
	database = db
}

// ConfigureCosting sets the currency symbol used when rendering costs.
func ConfigureCosting(symbol string) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		symbol = defaultCurrencySymbol
	}
	currencySymbol = symbol
}

func createUser(r *http.Request, email, name, password string) (*models.User, error) {
	if database == nil {
		return nil, gorm.ErrInvalidDB
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        strings.ToLower(email),
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hashed),
	}

	if err := database.WithContext(r.Context()).Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

func findUserByEmail(r *http.Request, email string) (*models.User, error) {
	if database == nil {
		return nil, gorm.ErrInvalidDB
	}

	user := &models.User{}
	err := database.WithContext(r.Context()).Where("lower(email) = ?", strings.ToLower(email)).First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// authenticate checks the staff credentials and opens a session on success.
// On failure the reason is left in the session flash for the login form.
func authenticate(w http.ResponseWriter, r *http.Request, email, password string) bool {
	if sessionManager == nil {
		http.Error(w, "authentication not available", http.StatusServiceUnavailable)
		return false
	}

	user, err := findUserByEmail(r, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		sessionManager.Put(r.Context(), sessionLoginMessageKey, msgBadCredentials)
		return false
	case err != nil:
		applog.Error(r.Context(), "failed to load staff account", "error", err)
		sessionManager.Put(r.Context(), sessionLoginMessageKey, msgSignInFailed)
		return false
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		applog.Info(r.Context(), "staff sign-in rejected", "userID", user.ID)
		sessionManager.Put(r.Context(), sessionLoginMessageKey, msgBadCredentials)
		return false
	}

	if err := establishSession(r, user); err != nil {
		applog.Error(r.Context(), "failed to establish session", "error", err, "userID", user.ID)
		sessionManager.Put(r.Context(), sessionLoginMessageKey, msgSignInFailed)
		return false
	}

	applog.Info(r.Context(), "staff signed in", "userID", user.ID)
	return true
}

// popFlash returns and clears the message queued for the login form.
func popFlash(r *http.Request) string {
	if sessionManager == nil {
		return ""
	}
	return sessionManager.PopString(r.Context(), sessionLoginMessageKey)
}

func establishSession(r *http.Request, user *models.User) error {
	if sessionManager == nil {
		return errors.New("session manager not configured")
	}
	if err := sessionManager.RenewToken(r.Context()); err != nil {
		return err
	}
	sessionManager.Put(r.Context(), sessionAuthenticatedKey, true)
	sessionManager.Put(r.Context(), sessionUserIDKey, int(user.ID))
	sessionManager.Put(r.Context(), sessionUserEmailKey, user.Email)
	sessionManager.Put(r.Context(), sessionUserNameKey, user.Name)
	return nil
}

func currentUserID(r *http.Request) (uint, bool) {
	if sessionManager == nil {
		return 0, false
	}
	id := sessionManager.GetInt(r.Context(), sessionUserIDKey)
	if id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// RequireAuthentication sends anonymous requests to the login form. A console
// page requested with GET is remembered so the user lands back on it after
// signing in.
func RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ActiveSession(r) {
			next.ServeHTTP(w, r)
			return
		}
		if sessionManager != nil && r.Method == http.MethodGet {
			if path := consoleReturnPath(r.URL.Path); path != "" {
				sessionManager.Put(r.Context(), sessionReturnPathKey, path)
			}
		}
		applog.Debug(r.Context(), "anonymous console request", "path", r.URL.Path)
		redirectToLogin(w, r)
	})
}

// redirectAfterSignIn returns the user to the console page that sent them to
// the login form, or to the dashboard.
func redirectAfterSignIn(w http.ResponseWriter, r *http.Request) {
	target := consolePath
	if sessionManager != nil {
		if path := consoleReturnPath(sessionManager.PopString(r.Context(), sessionReturnPathKey)); path != "" {
			target = path
		}
	}
	redirect(w, r, target)
}

// Logout destroys the current session and redirects the user to the login screen.
func Logout(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodPost:
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if sessionManager != nil {
		if userID, ok := currentUserID(r); ok {
			applog.Info(r.Context(), "staff signed out", "userID", userID)
		}
		if err := sessionManager.Destroy(r.Context()); err != nil {
			applog.Error(r.Context(), "failed to destroy session", "error", err)
		}
	}

	redirectToLogin(w, r)
}

// ActiveSession returns true when the current request has an authenticated session.
func ActiveSession(r *http.Request) bool {
	if sessionManager == nil {
		return false
	}
	return sessionManager.GetBool(r.Context(), sessionAuthenticatedKey) && sessionManager.GetInt(r.Context(), sessionUserIDKey) > 0
}
