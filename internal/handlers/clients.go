package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/cory321/threadfolio/internal/models"
	"github.com/cory321/threadfolio/internal/store"
)

type ClientHandler struct {
	Store        *store.Store
	SessionStore *sessions.CookieStore
	Templates    *TemplateCache
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	uid := userID(session)

	clients, err := h.Store.GetClients(r.Context(), uid)
	if err != nil {
		slog.Error("Failed to fetch clients", "user_id", uid, "error", err)
		http.Error(w, "Error fetching clients", http.StatusInternalServerError)
		return
	}

	tmpl := h.Templates.Get("clients.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"Clients":   clients,
		"Flashes":   GetFlash(session),
		"CsrfField": csrf.TemplateField(r),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *ClientHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	tmpl := h.Templates.Get("client_form.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, sessionName)
	data := map[string]interface{}{
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)

	if err := r.ParseForm(); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid form data."})
		http.Redirect(w, r, "/clients/new", http.StatusSeeOther)
		return
	}

	form := ParseClientForm(r.PostForm)
	if errs := form.Validate(); errs.Any() {
		for _, msg := range errs {
			session.AddFlash(FlashMessage{Type: "error", Message: msg})
		}
		http.Redirect(w, r, "/clients/new", http.StatusSeeOther)
		return
	}

	client := &models.Client{
		UserID:         uid,
		FullName:       form.FullName,
		Email:          form.Email,
		Phone:          form.Phone,
		MailingAddress: form.MailingAddress,
		Notes:          form.Notes,
	}
	if err := h.Store.CreateClient(r.Context(), client); err != nil {
		slog.Error("Failed to create client", "user_id", uid, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to save client. Please try again."})
		http.Redirect(w, r, "/clients/new", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: client.FullName + " added!"})
	http.Redirect(w, r, "/clients/"+strconv.Itoa(client.ID), http.StatusSeeOther)
}

func (h *ClientHandler) Detail(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	uid := userID(session)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	client, err := h.Store.GetClientByID(r.Context(), uid, id)
	if err != nil {
		slog.Error("Failed to fetch client", "client_id", id, "error", err)
		http.Error(w, "Error fetching client", http.StatusInternalServerError)
		return
	}
	if client == nil {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}

	tmpl := h.Templates.Get("client_detail.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"Client":    client,
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid form data."})
		http.Redirect(w, r, "/clients/"+strconv.Itoa(id), http.StatusSeeOther)
		return
	}

	form := ParseClientForm(r.PostForm)
	if errs := form.Validate(); errs.Any() {
		for _, msg := range errs {
			session.AddFlash(FlashMessage{Type: "error", Message: msg})
		}
		http.Redirect(w, r, "/clients/"+strconv.Itoa(id), http.StatusSeeOther)
		return
	}

	client := &models.Client{
		ID:             id,
		UserID:         uid,
		FullName:       form.FullName,
		Email:          form.Email,
		Phone:          form.Phone,
		MailingAddress: form.MailingAddress,
		Notes:          form.Notes,
	}
	if err := h.Store.UpdateClient(r.Context(), client); err != nil {
		slog.Error("Failed to update client", "client_id", id, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to update client."})
	} else {
		session.AddFlash(FlashMessage{Type: "success", Message: "Client updated!"})
	}
	http.Redirect(w, r, "/clients/"+strconv.Itoa(id), http.StatusSeeOther)
}
