package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/cory321/threadfolio/internal/metrics"
	"github.com/cory321/threadfolio/internal/models"
	"github.com/cory321/threadfolio/internal/store"
	"github.com/cory321/threadfolio/internal/wizard"
	"github.com/cory321/threadfolio/internal/ws"
)

// WizardHandler drives the three-step order creation flow. Every
// mutation reloads the tenant's draft, applies the change, and saves it
// back, so a reload or a second tab always sees the latest draft.
type WizardHandler struct {
	Store        *store.Store
	Drafts       *wizard.DraftStore
	SessionStore *sessions.CookieStore
	Templates    *TemplateCache
	Hub          *ws.Hub
}

// stepTemplates maps the active step to its page.
var stepTemplates = map[int]string{
	wizard.StepClient:  "wizard_client.html",
	wizard.StepGarment: "wizard_garment.html",
	wizard.StepSummary: "wizard_summary.html",
}

func (h *WizardHandler) loadState(r *http.Request, uid int) *wizard.State {
	st, ok, err := h.Drafts.Load(r.Context(), uid)
	if err != nil {
		slog.Error("Failed to load order draft", "user_id", uid, "error", err)
	}
	if !ok {
		return wizard.NewState()
	}
	return st
}

func (h *WizardHandler) saveState(r *http.Request, uid int, st *wizard.State) {
	if err := h.Drafts.Save(r.Context(), uid, st); err != nil {
		slog.Error("Failed to save order draft", "user_id", uid, "error", err)
	}
}

// Show renders the current step. ?garment=<id> on the garment step loads
// a committed draft back into the editor.
func (h *WizardHandler) Show(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	uid := userID(session)
	st := h.loadState(r, uid)

	if gid := r.URL.Query().Get("garment"); gid != "" && st.ActiveStep == wizard.StepGarment {
		if d := st.FindGarment(gid); d != nil {
			st.SetGarmentDraft(d)
			h.saveState(r, uid, st)
		}
	}

	data := map[string]interface{}{
		"State":     st,
		"Flashes":   GetFlash(session),
		"CsrfField": csrf.TemplateField(r),
	}

	switch st.ActiveStep {
	case wizard.StepClient:
		clients, err := h.Store.GetClients(r.Context(), uid)
		if err != nil {
			slog.Error("Failed to fetch clients for wizard", "user_id", uid, "error", err)
			http.Error(w, "Error fetching clients", http.StatusInternalServerError)
			return
		}
		data["Clients"] = clients
	case wizard.StepGarment:
		data["Units"] = models.ServiceUnits
		catalog, err := h.Store.GetServiceCatalog(r.Context(), uid)
		if err != nil {
			slog.Error("Failed to fetch service catalog", "user_id", uid, "error", err)
			http.Error(w, "Error fetching services", http.StatusInternalServerError)
			return
		}
		data["Catalog"] = catalog
	case wizard.StepSummary:
		data["OrderTotal"] = st.OrderTotal()
	}

	tmpl := h.Templates.Get(stepTemplates[st.ActiveStep])
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

// SelectClient binds the order to a client and advances to garment entry.
func (h *WizardHandler) SelectClient(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)
	st := h.loadState(r, uid)

	clientID, err := strconv.Atoi(r.FormValue("client_id"))
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Please select a client."})
		http.Redirect(w, r, "/orders/new", http.StatusSeeOther)
		return
	}

	client, err := h.Store.GetClientByID(r.Context(), uid, clientID)
	if err != nil {
		slog.Error("Failed to fetch client for wizard", "client_id", clientID, "error", err)
		http.Error(w, "Error fetching client", http.StatusInternalServerError)
		return
	}
	if client == nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Client not found."})
		http.Redirect(w, r, "/orders/new", http.StatusSeeOther)
		return
	}

	st.SetSelectedClient(client)
	if st.CanAdvance() {
		st.SetActiveStep(wizard.StepGarment)
	}
	h.saveState(r, uid, st)
	http.Redirect(w, r, "/orders/new", http.StatusSeeOther)
}

// serviceLinesFromForm collects the indexed line-item fields posted by
// the garment form. Each index is validated independently.
func serviceLinesFromForm(form url.Values) ([]wizard.ServiceLine, FieldErrors) {
	names := form["service_name"]
	var lines []wizard.ServiceLine
	for i, name := range names {
		if name == "" {
			continue
		}
		single := url.Values{}
		single.Set("service_name", name)
		for _, key := range []string{"service_description", "quantity", "unit", "unit_price"} {
			if vals := form[key]; i < len(vals) {
				single.Set(key, vals[i])
			}
		}
		f, errs := ParseServiceLineForm(single)
		if errs.Any() {
			return nil, errs
		}
		lines = append(lines, wizard.ServiceLine{
			Name:        f.Name,
			Description: f.Description,
			Quantity:    f.Quantity,
			Unit:        f.Unit,
			UnitPrice:   f.UnitPrice,
		})
	}
	return lines, nil
}

// SaveGarment upserts the posted garment into the draft order and
// returns to the garment step for the next one.
func (h *WizardHandler) SaveGarment(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)
	st := h.loadState(r, uid)

	if err := r.ParseForm(); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid form data."})
		http.Redirect(w, r, "/orders/new", http.StatusSeeOther)
		return
	}

	form, errs := ParseGarmentForm(r.PostForm)
	if !errs.Any() {
		lines, lineErrs := serviceLinesFromForm(r.PostForm)
		if lineErrs.Any() {
			errs = lineErrs
		} else if len(lines) == 0 {
			errs = FieldErrors{"service_name": "A garment needs at least one service."}
		} else {
			draft := wizard.GarmentDraft{
				ID:           form.ID,
				Name:         form.Name,
				Instructions: form.Instructions,
				DueDate:      form.DueDate,
				IsEvent:      form.IsEvent,
				EventDate:    form.EventDate,
				Services:     lines,
			}
			if draft.ID == "" {
				draft.ID = uuid.New().String()
			}
			st.AddOrUpdateGarment(draft)
			st.SetGarmentDraft(nil)
			h.saveState(r, uid, st)
			session.AddFlash(FlashMessage{Type: "success", Message: draft.Name + " added to order."})
			http.Redirect(w, r, "/orders/new", http.StatusSeeOther)
			return
		}
	}

	for _, msg := range errs {
		session.AddFlash(FlashMessage{Type: "error", Message: msg})
	}
	http.Redirect(w, r, "/orders/new", http.StatusSeeOther)
}

// RemoveGarment drops a committed garment from the draft order.
func (h *WizardHandler) RemoveGarment(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)
	st := h.loadState(r, uid)

	st.RemoveGarment(r.FormValue("garment_id"))
	h.saveState(r, uid, st)
	http.Redirect(w, r, "/orders/new", http.StatusSeeOther)
}

// Navigate moves between steps. Forward transitions go through
// CanAdvance; going back never loses committed garments.
func (h *WizardHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)
	st := h.loadState(r, uid)

	switch r.FormValue("direction") {
	case "next":
		if st.CanAdvance() {
			st.SetActiveStep(st.ActiveStep + 1)
		} else if st.ActiveStep == wizard.StepClient {
			session.AddFlash(FlashMessage{Type: "error", Message: "Select a client before continuing."})
		} else {
			session.AddFlash(FlashMessage{Type: "error", Message: "Add at least one garment before continuing."})
		}
	case "back":
		st.SetActiveStep(st.ActiveStep - 1)
	}
	h.saveState(r, uid, st)
	http.Redirect(w, r, "/orders/new", http.StatusSeeOther)
}

// Submit persists the draft order atomically. On success the draft is
// cleared and the dashboard feed hears about the new order; on failure
// the draft survives untouched so nothing the user entered is lost.
func (h *WizardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)
	st := h.loadState(r, uid)

	if st.SelectedClient == nil || len(st.Garments) == 0 {
		session.AddFlash(FlashMessage{Type: "error", Message: "The order needs a client and at least one garment."})
		http.Redirect(w, r, "/orders/new", http.StatusSeeOther)
		return
	}

	stageID, err := h.Store.FirstStageID(r.Context(), uid)
	if err != nil {
		slog.Error("Failed to resolve initial stage", "user_id", uid, "error", err)
		http.Error(w, "Error creating order", http.StatusInternalServerError)
		return
	}

	order := &models.Order{
		UserID:   uid,
		ClientID: st.SelectedClient.ID,
		Status:   "new",
	}
	for _, d := range st.Garments {
		g := models.Garment{
			Name:         d.Name,
			Instructions: d.Instructions,
			DueDate:      d.DueDate,
			IsEvent:      d.IsEvent,
			EventDate:    d.EventDate,
			ImagePath:    d.ImagePath,
			StageID:      stageID,
		}
		for _, l := range d.Services {
			g.Services = append(g.Services, models.GarmentService{
				Name:        l.Name,
				Description: l.Description,
				Quantity:    l.Quantity,
				Unit:        l.Unit,
				UnitPrice:   l.UnitPrice,
			})
		}
		order.Garments = append(order.Garments, g)
	}

	if err := h.Store.CreateOrderWithGarments(r.Context(), order); err != nil {
		metrics.RecordOrderOperation("create", false)
		slog.Error("Failed to create order", "user_id", uid, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to create the order. Your draft was kept."})
		http.Redirect(w, r, "/orders/new", http.StatusSeeOther)
		return
	}
	metrics.RecordOrderOperation("create", true)

	clientName := st.SelectedClient.FullName
	st.Clear()
	if err := h.Drafts.Clear(r.Context(), uid); err != nil {
		slog.Error("Failed to clear order draft", "user_id", uid, "error", err)
	}

	h.Hub.Broadcast("order_created", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"client_name":  clientName,
		"total":        order.Total,
	})

	slog.Info("Order created", "user_id", uid, "order_id", order.ID, "order_number", order.OrderNumber)
	session.AddFlash(FlashMessage{Type: "success", Message: "Order created!"})
	http.Redirect(w, r, "/orders/"+strconv.Itoa(order.ID), http.StatusSeeOther)
}

// Discard throws away the draft on explicit request. Never runs
// implicitly.
func (h *WizardHandler) Discard(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)

	if err := h.Drafts.Clear(r.Context(), uid); err != nil {
		slog.Error("Failed to clear order draft", "user_id", uid, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to discard the draft."})
		http.Redirect(w, r, "/orders/new", http.StatusSeeOther)
		return
	}
	session.AddFlash(FlashMessage{Type: "success", Message: "Draft discarded."})
	http.Redirect(w, r, "/orders", http.StatusSeeOther)
}
