package handlers

import "net/http"

// Home sends visitors to the costing console, which in turn asks for a login
// when no session is active.
func Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/app", http.StatusFound)
}
