package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/cory321/threadfolio/internal/models"
	"github.com/cory321/threadfolio/internal/payments"
	"github.com/cory321/threadfolio/internal/store"
)

type SettingsHandler struct {
	Store        *store.Store
	SessionStore *sessions.CookieStore
	Templates    *TemplateCache
	Payments     *payments.Client
	BaseURL      string // public URL for payment onboarding redirects
}

func (h *SettingsHandler) Show(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	uid := userID(session)

	user, err := h.Store.GetUserByID(r.Context(), uid)
	if err != nil || user == nil {
		http.Error(w, "Error fetching account", http.StatusInternalServerError)
		return
	}
	stages, err := h.Store.GetStages(r.Context(), uid)
	if err != nil {
		slog.Error("Failed to fetch stages", "user_id", uid, "error", err)
		http.Error(w, "Error fetching stages", http.StatusInternalServerError)
		return
	}
	catalog, err := h.Store.GetServiceCatalog(r.Context(), uid)
	if err != nil {
		slog.Error("Failed to fetch service catalog", "user_id", uid, "error", err)
		http.Error(w, "Error fetching services", http.StatusInternalServerError)
		return
	}

	tmpl := h.Templates.Get("settings.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"User":            user,
		"Stages":          stages,
		"Catalog":         catalog,
		"Units":           models.ServiceUnits,
		"PaymentsEnabled": h.Payments.Enabled(),
		"Flashes":         GetFlash(session),
		"CsrfField":       csrf.TemplateField(r),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *SettingsHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)

	if err := r.ParseForm(); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid form data."})
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}
	form, errs := ParseSettingsForm(r.PostForm)
	if errs.Any() {
		for _, msg := range errs {
			session.AddFlash(FlashMessage{Type: "error", Message: msg})
		}
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}

	user := &models.User{
		ID:           uid,
		BusinessName: form.BusinessName,
		Phone:        form.Phone,
		SMSEnabled:   form.SMSEnabled,
	}
	if err := h.Store.UpdateUserSettings(r.Context(), user); err != nil {
		slog.Error("Failed to update settings", "user_id", uid, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to save settings."})
	} else {
		session.AddFlash(FlashMessage{Type: "success", Message: "Settings saved."})
	}
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

func (h *SettingsHandler) CreateStage(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)

	name := strings.TrimSpace(r.FormValue("name"))
	color := strings.TrimSpace(r.FormValue("color"))
	if name == "" {
		session.AddFlash(FlashMessage{Type: "error", Message: "Stage name is required."})
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}
	if color == "" {
		color = "#9e9e9e"
	}

	st := &models.Stage{UserID: uid, Name: name, Color: color}
	if err := h.Store.CreateStage(r.Context(), st); err != nil {
		slog.Error("Failed to create stage", "user_id", uid, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to add stage."})
	} else {
		session.AddFlash(FlashMessage{Type: "success", Message: "Stage added."})
	}
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

func (h *SettingsHandler) UpdateStage(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid stage ID", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	color := strings.TrimSpace(r.FormValue("color"))
	if name == "" {
		session.AddFlash(FlashMessage{Type: "error", Message: "Stage name is required."})
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}

	st := &models.Stage{ID: id, UserID: uid, Name: name, Color: color}
	if err := h.Store.UpdateStage(r.Context(), st); err != nil {
		slog.Error("Failed to update stage", "stage_id", id, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to update stage."})
	} else {
		session.AddFlash(FlashMessage{Type: "success", Message: "Stage updated."})
	}
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

// ReorderStages takes the full stage order as a comma-separated id list.
func (h *SettingsHandler) ReorderStages(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)

	var ids []int
	for _, part := range strings.Split(r.FormValue("order"), ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			session.AddFlash(FlashMessage{Type: "error", Message: "Invalid stage order."})
			http.Redirect(w, r, "/settings", http.StatusSeeOther)
			return
		}
		ids = append(ids, id)
	}

	if err := h.Store.ReorderStages(r.Context(), uid, ids); err != nil {
		slog.Error("Failed to reorder stages", "user_id", uid, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to reorder stages."})
	}
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

func (h *SettingsHandler) CreateCatalogService(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)

	if err := r.ParseForm(); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid form data."})
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}
	form, errs := ParseCatalogServiceForm(r.PostForm)
	if errs.Any() {
		for _, msg := range errs {
			session.AddFlash(FlashMessage{Type: "error", Message: msg})
		}
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}

	svc := &models.Service{
		UserID:       uid,
		Name:         form.Name,
		Description:  form.Description,
		DefaultUnit:  form.DefaultUnit,
		DefaultPrice: form.DefaultPrice,
	}
	if err := h.Store.CreateCatalogService(r.Context(), svc); err != nil {
		slog.Error("Failed to create catalog service", "user_id", uid, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to add service."})
	} else {
		session.AddFlash(FlashMessage{Type: "success", Message: form.Name + " added to catalog."})
	}
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

func (h *SettingsHandler) UpdateCatalogService(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid form data."})
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}
	form, errs := ParseCatalogServiceForm(r.PostForm)
	if errs.Any() {
		for _, msg := range errs {
			session.AddFlash(FlashMessage{Type: "error", Message: msg})
		}
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}

	svc := &models.Service{
		ID:           id,
		UserID:       uid,
		Name:         form.Name,
		Description:  form.Description,
		DefaultUnit:  form.DefaultUnit,
		DefaultPrice: form.DefaultPrice,
	}
	if err := h.Store.UpdateCatalogService(r.Context(), svc); err != nil {
		slog.Error("Failed to update catalog service", "service_id", id, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to update service."})
	} else {
		session.AddFlash(FlashMessage{Type: "success", Message: "Service updated."})
	}
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

func (h *SettingsHandler) DeleteCatalogService(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}

	if err := h.Store.DeleteCatalogService(r.Context(), uid, id); err != nil {
		slog.Error("Failed to delete catalog service", "service_id", id, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to remove service."})
	} else {
		session.AddFlash(FlashMessage{Type: "success", Message: "Service removed."})
	}
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

// ConnectPayments provisions an external payment account on first use
// and redirects to the provider's hosted onboarding flow.
func (h *SettingsHandler) ConnectPayments(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)

	if !h.Payments.Enabled() {
		session.AddFlash(FlashMessage{Type: "error", Message: "Payments are not configured."})
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}

	user, err := h.Store.GetUserByID(r.Context(), uid)
	if err != nil || user == nil {
		http.Error(w, "Error fetching account", http.StatusInternalServerError)
		return
	}

	accountID := user.PaymentAccountID
	if accountID == "" {
		accountID, err = h.Payments.CreateAccount(r.Context(), user.Username)
		if err != nil {
			slog.Error("Failed to create payment account", "user_id", uid, "error", err)
			session.AddFlash(FlashMessage{Type: "error", Message: "Failed to set up payments. Please try again."})
			http.Redirect(w, r, "/settings", http.StatusSeeOther)
			return
		}
		if err := h.Store.SetPaymentAccountID(r.Context(), uid, accountID); err != nil {
			slog.Error("Failed to save payment account id", "user_id", uid, "error", err)
			session.AddFlash(FlashMessage{Type: "error", Message: "Failed to set up payments. Please try again."})
			http.Redirect(w, r, "/settings", http.StatusSeeOther)
			return
		}
	}

	link, err := h.Payments.CreateOnboardingLink(r.Context(), accountID, h.BaseURL+"/settings", h.BaseURL+"/settings")
	if err != nil {
		slog.Error("Failed to create onboarding link", "user_id", uid, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to start payment onboarding."})
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, link, http.StatusSeeOther)
}
