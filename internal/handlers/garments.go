package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/cory321/threadfolio/internal/media"
	"github.com/cory321/threadfolio/internal/metrics"
	"github.com/cory321/threadfolio/internal/models"
	"github.com/cory321/threadfolio/internal/store"
)

const garmentsPerPage = 12

// maxPhotoUpload caps the multipart body for garment photos.
const maxPhotoUpload = 10 << 20 // 10 MB

type GarmentHandler struct {
	Store        *store.Store
	Media        *media.Store
	SessionStore *sessions.CookieStore
	Templates    *TemplateCache
}

func (h *GarmentHandler) List(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	uid := userID(session)

	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	offset := (page - 1) * garmentsPerPage

	garments, err := h.Store.GetGarments(r.Context(), uid, garmentsPerPage, offset)
	if err != nil {
		slog.Error("Failed to fetch garments", "user_id", uid, "error", err)
		http.Error(w, "Error fetching garments", http.StatusInternalServerError)
		return
	}
	total, err := h.Store.GetTotalGarmentsCount(r.Context(), uid)
	if err != nil {
		slog.Error("Failed to count garments", "user_id", uid, "error", err)
		http.Error(w, "Error fetching garments", http.StatusInternalServerError)
		return
	}
	totalPages := (total + garmentsPerPage - 1) / garmentsPerPage

	tmpl := h.Templates.Get("garments.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"Garments":   garments,
		"Page":       page,
		"TotalPages": totalPages,
		"Flashes":    GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

// Detail loads the garment and the stage list concurrently; the page
// needs both and either failure fails the request.
func (h *GarmentHandler) Detail(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	uid := userID(session)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid garment ID", http.StatusBadRequest)
		return
	}

	var (
		garment *models.Garment
		stages  []models.Stage
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		garment, err = h.Store.GetGarmentByID(ctx, uid, id)
		return err
	})
	g.Go(func() error {
		var err error
		stages, err = h.Store.GetStages(ctx, uid)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("Failed to load garment page", "garment_id", id, "error", err)
		http.Error(w, "Error fetching garment", http.StatusInternalServerError)
		return
	}
	if garment == nil {
		http.Error(w, "Garment not found", http.StatusNotFound)
		return
	}

	tmpl := h.Templates.Get("garment_detail.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"Garment":   garment,
		"Stages":    stages,
		"Units":     models.ServiceUnits,
		"Flashes":   GetFlash(session),
		"CsrfField": csrf.TemplateField(r),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

// garmentRedirect is where every garment mutation lands afterwards.
func garmentRedirect(w http.ResponseWriter, r *http.Request, garmentID int) {
	http.Redirect(w, r, "/garments/"+strconv.Itoa(garmentID), http.StatusSeeOther)
}

func (h *GarmentHandler) AddService(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid garment ID", http.StatusBadRequest)
		return
	}

	orderID, err := h.Store.OrderIDForGarment(r.Context(), uid, id)
	if err != nil {
		http.Error(w, "Garment not found", http.StatusNotFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid form data."})
		garmentRedirect(w, r, id)
		return
	}
	form, errs := ParseServiceLineForm(r.PostForm)
	if errs.Any() {
		for _, msg := range errs {
			session.AddFlash(FlashMessage{Type: "error", Message: msg})
		}
		garmentRedirect(w, r, id)
		return
	}

	svc := &models.GarmentService{
		GarmentID:   id,
		Name:        form.Name,
		Description: form.Description,
		Quantity:    form.Quantity,
		Unit:        form.Unit,
		UnitPrice:   form.UnitPrice,
	}
	if err := h.Store.AddGarmentService(r.Context(), svc); err != nil {
		metrics.RecordOrderOperation("add_service", false)
		slog.Error("Failed to add service line", "garment_id", id, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to add service."})
		garmentRedirect(w, r, id)
		return
	}
	metrics.RecordOrderOperation("add_service", true)

	if err := h.Store.RecalculateOrderTotal(r.Context(), orderID); err != nil {
		slog.Error("Failed to recalculate order total", "order_id", orderID, "error", err)
	}
	session.AddFlash(FlashMessage{Type: "success", Message: form.Name + " added."})
	garmentRedirect(w, r, id)
}

func (h *GarmentHandler) ToggleServiceDone(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid garment ID", http.StatusBadRequest)
		return
	}
	serviceID, err := strconv.Atoi(r.PathValue("serviceID"))
	if err != nil {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}

	// Tenant check before touching the line.
	if _, err := h.Store.OrderIDForGarment(r.Context(), uid, id); err != nil {
		http.Error(w, "Garment not found", http.StatusNotFound)
		return
	}

	done := r.FormValue("done") == "true" || r.FormValue("done") == "on"
	if err := h.Store.UpdateServiceDoneStatus(r.Context(), id, serviceID, done); err != nil {
		slog.Error("Failed to update service status", "service_id", serviceID, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to update service."})
	}
	garmentRedirect(w, r, id)
}

func (h *GarmentHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid garment ID", http.StatusBadRequest)
		return
	}
	serviceID, err := strconv.Atoi(r.PathValue("serviceID"))
	if err != nil {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}

	orderID, err := h.Store.OrderIDForGarment(r.Context(), uid, id)
	if err != nil {
		http.Error(w, "Garment not found", http.StatusNotFound)
		return
	}

	if err := h.Store.DeleteGarmentService(r.Context(), id, serviceID); err != nil {
		metrics.RecordOrderOperation("remove_service", false)
		slog.Error("Failed to delete service line", "service_id", serviceID, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to remove service."})
		garmentRedirect(w, r, id)
		return
	}
	metrics.RecordOrderOperation("remove_service", true)

	if err := h.Store.RecalculateOrderTotal(r.Context(), orderID); err != nil {
		slog.Error("Failed to recalculate order total", "order_id", orderID, "error", err)
	}
	session.AddFlash(FlashMessage{Type: "success", Message: "Service removed."})
	garmentRedirect(w, r, id)
}

func (h *GarmentHandler) MoveStage(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid garment ID", http.StatusBadRequest)
		return
	}
	stageID, err := strconv.Atoi(r.FormValue("stage_id"))
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid stage."})
		garmentRedirect(w, r, id)
		return
	}

	if err := h.Store.UpdateGarmentStage(r.Context(), uid, id, stageID); err != nil {
		metrics.RecordOrderOperation("stage_change", false)
		slog.Error("Failed to move garment stage", "garment_id", id, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to move garment."})
	} else {
		metrics.RecordOrderOperation("stage_change", true)
		session.AddFlash(FlashMessage{Type: "success", Message: "Garment moved."})
	}
	garmentRedirect(w, r, id)
}

// UploadPhoto accepts a jpeg/png, resizes it, stores it under the
// tenant's media directory and points the garment at it.
func (h *GarmentHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid garment ID", http.StatusBadRequest)
		return
	}

	garment, err := h.Store.GetGarmentByID(r.Context(), uid, id)
	if err != nil || garment == nil {
		http.Error(w, "Garment not found", http.StatusNotFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoUpload)
	if err := r.ParseMultipartForm(maxPhotoUpload); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Photo is too large (10 MB max)."})
		garmentRedirect(w, r, id)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "No photo selected."})
		garmentRedirect(w, r, id)
		return
	}
	defer file.Close()

	order, err := h.Store.GetOrderByID(r.Context(), uid, garment.OrderID)
	if err != nil || order == nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	relPath, err := h.Media.SaveGarmentPhoto(uid, order.ClientID, file, header.Filename)
	if err != nil {
		slog.Error("Failed to save garment photo", "garment_id", id, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to save photo. JPEG and PNG only."})
		garmentRedirect(w, r, id)
		return
	}

	old := garment.ImagePath
	if err := h.Store.UpdateGarmentImage(r.Context(), uid, id, relPath); err != nil {
		slog.Error("Failed to update garment image", "garment_id", id, "error", err)
		h.Media.Remove(relPath)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to save photo."})
		garmentRedirect(w, r, id)
		return
	}
	if old != "" {
		h.Media.Remove(old)
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Photo uploaded."})
	garmentRedirect(w, r, id)
}
