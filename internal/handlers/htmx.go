package handlers

import (
	"net/http"
	"strings"
)

const (
	hxRequestHeader  = "HX-Request"
	hxBoostedHeader  = "HX-Boosted"
	hxRedirectHeader = "HX-Redirect"
)

const (
	loginPath   = "/login"
	consolePath = "/app"
)

// isHTMX reports whether the request came from htmx, either as an hx-* call
// or as a boosted link. Such requests get the panel without the layout.
func isHTMX(r *http.Request) bool {
	return r.Header.Get(hxRequestHeader) == "true" || r.Header.Get(hxBoostedHeader) == "true"
}

// redirect sends the browser to target. htmx follows a 303 inside the swap
// target, so htmx callers get HX-Redirect and a full page load instead.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set(hxRedirectHeader, target)
		w.WriteHeader(http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	redirect(w, r, loginPath)
}

func redirectToApp(w http.ResponseWriter, r *http.Request) {
	redirect(w, r, consolePath)
}

// consoleReturnPath returns path when it is a console page a signed-in user
// can be sent back to, and "" otherwise. API and upload endpoints are never
// returned to since a browser GET on them makes no sense.
func consoleReturnPath(path string) string {
	if path != consolePath && !strings.HasPrefix(path, consolePath+"/") {
		return ""
	}
	if strings.HasPrefix(path, consolePath+"/api/") || strings.Contains(path, "//") || strings.Contains(path, `\`) {
		return ""
	}
	return path
}
