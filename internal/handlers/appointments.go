package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/cory321/threadfolio/internal/models"
	"github.com/cory321/threadfolio/internal/notify"
	"github.com/cory321/threadfolio/internal/store"
)

type AppointmentHandler struct {
	Store        *store.Store
	SessionStore *sessions.CookieStore
	Templates    *TemplateCache
	SMS          *notify.SMSClient
	Reminders    *notify.ReminderQueue // nil means no broker, reminders send inline
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	uid := userID(session)

	appts, err := h.Store.GetAppointments(r.Context(), uid)
	if err != nil {
		slog.Error("Failed to fetch appointments", "user_id", uid, "error", err)
		http.Error(w, "Error fetching appointments", http.StatusInternalServerError)
		return
	}

	tmpl := h.Templates.Get("appointments.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"Appointments": appts,
		"Flashes":      GetFlash(session),
		"CsrfField":    csrf.TemplateField(r),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AppointmentHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	uid := userID(session)

	clients, err := h.Store.GetClients(r.Context(), uid)
	if err != nil {
		slog.Error("Failed to fetch clients", "user_id", uid, "error", err)
		http.Error(w, "Error fetching clients", http.StatusInternalServerError)
		return
	}

	tmpl := h.Templates.Get("appointment_form.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"Clients":   clients,
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

// Create books an appointment. When SMS reminders are requested the
// reminder is scheduled on the broker; with no broker configured the
// SMS goes out right away instead of never.
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)

	if err := r.ParseForm(); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid form data."})
		http.Redirect(w, r, "/appointments/new", http.StatusSeeOther)
		return
	}

	form, errs := ParseAppointmentForm(r.PostForm)
	if errs.Any() {
		for _, msg := range errs {
			session.AddFlash(FlashMessage{Type: "error", Message: msg})
		}
		http.Redirect(w, r, "/appointments/new", http.StatusSeeOther)
		return
	}

	client, err := h.Store.GetClientByID(r.Context(), uid, form.ClientID)
	if err != nil {
		slog.Error("Failed to fetch client", "client_id", form.ClientID, "error", err)
		http.Error(w, "Error fetching client", http.StatusInternalServerError)
		return
	}
	if client == nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Client not found."})
		http.Redirect(w, r, "/appointments/new", http.StatusSeeOther)
		return
	}

	appt := &models.Appointment{
		UserID:      uid,
		ClientID:    form.ClientID,
		Date:        form.Date,
		StartTime:   form.StartTime,
		EndTime:     form.EndTime,
		Location:    form.Location,
		Status:      models.AppointmentStatusScheduled,
		Type:        form.Type,
		RemindBySMS: form.RemindBySMS && client.Phone != "",
		Notes:       form.Notes,
	}
	if err := h.Store.CreateAppointment(r.Context(), appt); err != nil {
		slog.Error("Failed to create appointment", "user_id", uid, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to book appointment."})
		http.Redirect(w, r, "/appointments/new", http.StatusSeeOther)
		return
	}

	if appt.RemindBySMS {
		h.scheduleReminder(r, uid, appt, client)
	}

	slog.Info("Appointment booked", "user_id", uid, "appointment_id", appt.ID, "type", appt.Type)
	session.AddFlash(FlashMessage{Type: "success", Message: "Appointment booked!"})
	http.Redirect(w, r, "/appointments", http.StatusSeeOther)
}

func (h *AppointmentHandler) scheduleReminder(r *http.Request, uid int, appt *models.Appointment, client *models.Client) {
	if h.Reminders != nil {
		err := h.Reminders.Schedule(appt)
		if err == nil {
			return
		}
		slog.Error("Failed to schedule reminder, sending inline", "appointment_id", appt.ID, "error", err)
	}

	user, err := h.Store.GetUserByID(r.Context(), uid)
	if err != nil || user == nil {
		slog.Error("Failed to load user for inline reminder", "user_id", uid, "error", err)
		return
	}
	if err := h.SMS.Send(r.Context(), client.Phone, notify.Reminder(user.BusinessName, appt)); err != nil {
		slog.Error("Failed to send inline reminder", "appointment_id", appt.ID, "error", err)
		return
	}
	if err := h.Store.MarkReminderSent(r.Context(), appt.ID); err != nil {
		slog.Error("Failed to mark reminder sent", "appointment_id", appt.ID, "error", err)
	}
}

// UpdateStatus covers confirm, complete and cancel.
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	status := r.FormValue("status")
	switch status {
	case models.AppointmentStatusScheduled, models.AppointmentStatusConfirmed,
		models.AppointmentStatusCompleted, models.AppointmentStatusCancelled:
	default:
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid appointment status."})
		http.Redirect(w, r, "/appointments", http.StatusSeeOther)
		return
	}

	if err := h.Store.UpdateAppointmentStatus(r.Context(), uid, id, status); err != nil {
		slog.Error("Failed to update appointment", "appointment_id", id, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to update appointment."})
	} else {
		session.AddFlash(FlashMessage{Type: "success", Message: "Appointment updated."})
	}
	http.Redirect(w, r, "/appointments", http.StatusSeeOther)
}
