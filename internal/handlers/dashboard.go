package handlers

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/cory321/threadfolio/internal/store"
	"github.com/cory321/threadfolio/internal/ws"
)

type DashboardHandler struct {
	Store        *store.Store
	SessionStore *sessions.CookieStore
	Templates    *TemplateCache
	Hub          *ws.Hub
}

func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	// ServeMux's "/" pattern is a catch-all; anything else is a 404.
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	session, _ := h.SessionStore.Get(r, sessionName)
	uid := userID(session)

	stats, err := h.Store.GetDashboardStats(r.Context(), uid)
	if err != nil {
		http.Error(w, "Error fetching stats", http.StatusInternalServerError)
		return
	}

	tmpl := h.Templates.Get("dashboard.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"Stats":   stats,
		"Flashes": GetFlash(session),
	}
	session.Save(r, w) // Save session to clear flashes
	tmpl.Execute(w, data)
}

// Events upgrades to a websocket feeding live order events to the
// dashboard.
func (h *DashboardHandler) Events(w http.ResponseWriter, r *http.Request) {
	h.Hub.ServeWS(w, r)
}
