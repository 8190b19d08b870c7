package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/cory321/threadfolio/internal/models"
	"github.com/cory321/threadfolio/internal/store"
)

// tokenTTL is how long an API token stays valid.
const tokenTTL = 24 * time.Hour

// APIHandler serves the JSON surface used by companion tooling. Auth is
// a bearer token, not the browser session.
type APIHandler struct {
	Store     *store.Store
	JWTSecret []byte
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// generateToken signs an HS256 token carrying the tenant id.
func (h *APIHandler) generateToken(userID int, username string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"exp":      time.Now().Add(tokenTTL).Unix(),
		"iat":      time.Now().Unix(),
	})
	return token.SignedString(h.JWTSecret)
}

// parseToken validates a bearer token and returns the tenant id.
func (h *APIHandler) parseToken(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return h.JWTSecret, nil
	})
	if err != nil {
		return 0, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, jwt.ErrTokenInvalidClaims
	}
	uid, ok := claims["user_id"].(float64)
	if !ok {
		return 0, jwt.ErrTokenInvalidClaims
	}
	return int(uid), nil
}

// Token exchanges credentials for a bearer token.
func (h *APIHandler) Token(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.Store.GetUserByUsername(r.Context(), creds.Username)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)) != nil {
		respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.generateToken(user.ID, user.Username)
	if err != nil {
		slog.Error("Failed to sign API token", "user_id", user.ID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"token": token})
}

type apiUserKey struct{}

func contextWithAPIUser(ctx context.Context, uid int) context.Context {
	return context.WithValue(ctx, apiUserKey{}, uid)
}

func apiUser(r *http.Request) int {
	uid, _ := r.Context().Value(apiUserKey{}).(int)
	return uid
}

// RequireToken gates an API endpoint behind a valid bearer token and
// stashes the tenant id in the request context.
func (h *APIHandler) RequireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			respondWithError(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		uid, err := h.parseToken(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next(w, r.WithContext(contextWithAPIUser(r.Context(), uid)))
	}
}

// Orders lists the tenant's orders as JSON, paginated the same way as
// the HTML page.
func (h *APIHandler) Orders(w http.ResponseWriter, r *http.Request) {
	uid := apiUser(r)

	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	orders, err := h.Store.GetOrders(r.Context(), uid, ordersPerPage, (page-1)*ordersPerPage)
	if err != nil {
		slog.Error("Failed to fetch orders for API", "user_id", uid, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *APIHandler) Clients(w http.ResponseWriter, r *http.Request) {
	uid := apiUser(r)
	clients, err := h.Store.GetClients(r.Context(), uid)
	if err != nil {
		slog.Error("Failed to fetch clients for API", "user_id", uid, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch clients")
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}
	respondWithJSON(w, http.StatusOK, clients)
}

func (h *APIHandler) Todos(w http.ResponseWriter, r *http.Request) {
	uid := apiUser(r)
	todos, err := h.Store.GetTodos(r.Context(), uid)
	if err != nil {
		slog.Error("Failed to fetch todos for API", "user_id", uid, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch todos")
		return
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	respondWithJSON(w, http.StatusOK, todos)
}

func (h *APIHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	uid := apiUser(r)

	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Title) == "" {
		respondWithError(w, http.StatusBadRequest, "Title is required")
		return
	}

	todo := &models.Todo{UserID: uid, Title: strings.TrimSpace(body.Title)}
	if err := h.Store.CreateTodo(r.Context(), todo); err != nil {
		slog.Error("Failed to create todo", "user_id", uid, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create todo")
		return
	}
	respondWithJSON(w, http.StatusCreated, todo)
}

func (h *APIHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	uid := apiUser(r)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid todo ID")
		return
	}
	if err := h.Store.DeleteTodo(r.Context(), uid, id); err != nil {
		slog.Error("Failed to delete todo", "todo_id", id, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to delete todo")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
