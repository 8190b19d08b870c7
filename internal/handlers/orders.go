package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/cory321/threadfolio/internal/store"
)

const ordersPerPage = 10

// Valid order statuses for the status dropdown.
var orderStatuses = []string{"new", "in_progress", "ready", "completed", "cancelled"}

func validOrderStatus(status string) bool {
	for _, s := range orderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type OrderHandler struct {
	Store        *store.Store
	SessionStore *sessions.CookieStore
	Templates    *TemplateCache
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	uid := userID(session)

	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	offset := (page - 1) * ordersPerPage

	orders, err := h.Store.GetOrders(r.Context(), uid, ordersPerPage, offset)
	if err != nil {
		slog.Error("Failed to fetch orders", "user_id", uid, "error", err)
		http.Error(w, "Error fetching orders", http.StatusInternalServerError)
		return
	}

	total, err := h.Store.GetTotalOrdersCount(r.Context(), uid)
	if err != nil {
		slog.Error("Failed to count orders", "user_id", uid, "error", err)
		http.Error(w, "Error fetching orders", http.StatusInternalServerError)
		return
	}
	totalPages := (total + ordersPerPage - 1) / ordersPerPage

	tmpl := h.Templates.Get("orders.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"Orders":     orders,
		"Page":       page,
		"TotalPages": totalPages,
		"Flashes":    GetFlash(session),
		"CsrfField":  csrf.TemplateField(r),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *OrderHandler) Detail(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	uid := userID(session)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	order, err := h.Store.GetOrderByID(r.Context(), uid, id)
	if err != nil {
		slog.Error("Failed to fetch order", "order_id", id, "error", err)
		http.Error(w, "Error fetching order", http.StatusInternalServerError)
		return
	}
	if order == nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	tmpl := h.Templates.Get("order_detail.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"Order":     order,
		"Statuses":  orderStatuses,
		"Flashes":   GetFlash(session),
		"CsrfField": csrf.TemplateField(r),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	defer session.Save(r, w)
	uid := userID(session)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	status := r.FormValue("status")
	if !validOrderStatus(status) {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid order status."})
		http.Redirect(w, r, "/orders/"+strconv.Itoa(id), http.StatusSeeOther)
		return
	}

	if err := h.Store.UpdateOrderStatus(r.Context(), uid, id, status); err != nil {
		slog.Error("Failed to update order status", "order_id", id, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to update order status."})
	} else {
		session.AddFlash(FlashMessage{Type: "success", Message: "Order status updated."})
	}
	http.Redirect(w, r, "/orders/"+strconv.Itoa(id), http.StatusSeeOther)
}
