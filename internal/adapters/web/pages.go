package web

import (
	"io/fs"
	"net/http"

	webui "pos-admin/web"
)

// index handles GET / and serves the single-page admin shell. The page talks
// to the JSON API; authentication is checked there, not here.
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	page, err := fs.ReadFile(webui.Static, "static/index.html")
	if err != nil {
		h.logger.Error("index page missing from embed", "error", err)
		writeError(w, r, "index page unavailable", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(page)
}
