package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/conneroisu/folio/internal/contact"
	"github.com/conneroisu/folio/internal/gallery"
	"github.com/conneroisu/folio/internal/htmlsurface"
	"github.com/conneroisu/folio/internal/version"
)

const maxFormBytes = 64 << 10

func (s *PreviewServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	if filter == "" {
		filter = gallery.FilterAll
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := Page(s.pageData(r.Context(), filter)).Render(r.Context(), w); err != nil {
		s.logger.Error(r.Context(), err, "Failed to render page")
	}
}

// handleContact runs one attempt for a client without scripting. The page
// is rendered, the submitted values are written into its form, the
// controller drives it through the attempt and the terminal display is
// returned. The reset to idle is
// left to the next page load.
func (s *PreviewServer) handleContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	fields := contact.Fields{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Message: r.PostForm.Get("message"),
	}

	var buf bytes.Buffer
	if err := Page(s.pageData(r.Context(), gallery.FilterAll)).Render(r.Context(), &buf); err != nil {
		s.logger.Error(r.Context(), err, "Failed to render page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	doc, err := htmlsurface.Parse(&buf)
	if err != nil {
		s.logger.Error(r.Context(), err, "Failed to parse rendered page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	doc.SetFields(fields)

	ctrl := contact.NewController(doc, s.sender,
		contact.WithLogger(s.logger),
		contact.WithLabels(s.labels()),
		contact.WithScheduler(s.scheduler),
	)
	defer ctrl.Close()

	out := ctrl.Submit(r.Context(), fields)

	code := http.StatusOK
	switch out.Status {
	case contact.StatusIdle:
		code = http.StatusUnprocessableEntity
	case contact.StatusFailed:
		code = http.StatusBadGateway
	case contact.StatusSucceeded:
		w.Header().Set("Refresh", "2; url=/#contact")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := doc.Render(w); err != nil {
		s.logger.Error(r.Context(), err, "Failed to write contact page")
	}
}

func (s *PreviewServer) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	mode, err := s.themes.Toggle()
	if err != nil {
		s.logger.Error(r.Context(), err, "Failed to toggle theme")
		http.Error(w, "Could not store theme preference", http.StatusInternalServerError)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		writeJSON(w, http.StatusOK, map[string]string{"theme": mode.String()})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *PreviewServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"version":      version.GetVersion(),
		"live_clients": s.live.ConnectedClients(),
		"projects":     len(s.Projects()),
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
