package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cory321/threadfolio/internal/config"
	"github.com/cory321/threadfolio/internal/handlers"
	"github.com/cory321/threadfolio/internal/media"
	"github.com/cory321/threadfolio/internal/metrics"
	"github.com/cory321/threadfolio/internal/notify"
	"github.com/cory321/threadfolio/internal/payments"
	"github.com/cory321/threadfolio/internal/store"
	"github.com/cory321/threadfolio/internal/wizard"
	"github.com/cory321/threadfolio/internal/ws"
)

func main() {
	// Configure slog to output DEBUG level messages
	// This should be done as early as possible in main
	handlerOpts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	// Using TextHandler for console readability; for production JSONHandler might be preferred.
	logger := slog.New(slog.NewTextHandler(os.Stdout, handlerOpts))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Init the main store and run migrations
	db, err := store.NewStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate("migrations"); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Draft store: local SQLite mirror of in-progress order wizards.
	drafts, err := wizard.NewDraftStore(cfg.DraftDBPath)
	if err != nil {
		slog.Error("Failed to initialize draft store", "error", err)
		os.Exit(1)
	}
	defer drafts.Close()

	// Photo storage
	mediaStore, err := media.NewStore(cfg.UploadDir)
	if err != nil {
		slog.Error("Failed to initialize media store", "error", err)
		os.Exit(1)
	}

	// 3. Session Setup
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure // Configurable for production
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}

	// 4. Init Templates
	templates := handlers.NewTemplateCache()
	if err := templates.Load("templates"); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	// 5. Collaborators: SMS, payments, reminder queue, websocket hub
	smsClient := notify.NewSMSClient(cfg.SMSAccountSID, cfg.SMSAuthToken, cfg.SMSFrom, cfg.SMSBaseURL)
	if !smsClient.Enabled() {
		slog.Warn("SMS delivery not configured, messages will be logged only")
	}

	paymentsClient := payments.NewClient(cfg.PaymentsSecretKey, cfg.PaymentsBaseURL)

	var reminderQueue *notify.ReminderQueue
	if cfg.AMQPURL != "" {
		reminderQueue, err = notify.NewReminderQueue(cfg.AMQPURL, cfg.ReminderQueue)
		if err != nil {
			slog.Error("Failed to connect to reminder queue, reminders will send inline", "error", err)
			reminderQueue = nil
		} else {
			defer reminderQueue.Close()
			if err := notify.StartReminderConsumer(reminderQueue, db, smsClient); err != nil {
				slog.Error("Failed to start reminder consumer", "error", err)
			}
		}
	} else {
		slog.Info("AMQP_URL not set, appointment reminders send inline at booking time")
	}

	hub := ws.NewHub()
	go hub.Run()

	// 6. Setup Handlers
	authHandler := &handlers.AuthHandler{
		Store:        db,
		SessionStore: sessionStore,
		Templates:    templates,
	}
	dashboardHandler := &handlers.DashboardHandler{
		Store:        db,
		SessionStore: sessionStore,
		Templates:    templates,
		Hub:          hub,
	}
	clientHandler := &handlers.ClientHandler{
		Store:        db,
		SessionStore: sessionStore,
		Templates:    templates,
	}
	orderHandler := &handlers.OrderHandler{
		Store:        db,
		SessionStore: sessionStore,
		Templates:    templates,
	}
	wizardHandler := &handlers.WizardHandler{
		Store:        db,
		Drafts:       drafts,
		SessionStore: sessionStore,
		Templates:    templates,
		Hub:          hub,
	}
	garmentHandler := &handlers.GarmentHandler{
		Store:        db,
		Media:        mediaStore,
		SessionStore: sessionStore,
		Templates:    templates,
	}
	appointmentHandler := &handlers.AppointmentHandler{
		Store:        db,
		SessionStore: sessionStore,
		Templates:    templates,
		SMS:          smsClient,
		Reminders:    reminderQueue,
	}
	settingsHandler := &handlers.SettingsHandler{
		Store:        db,
		SessionStore: sessionStore,
		Templates:    templates,
		Payments:     paymentsClient,
		BaseURL:      "http://localhost:" + cfg.Port,
	}
	apiHandler := &handlers.APIHandler{
		Store:     db,
		JWTSecret: []byte(cfg.JWTSecret),
	}

	mux := http.NewServeMux()

	// Static Files
	fileServer := http.FileServer(http.Dir("./static"))
	mux.Handle("/static/", http.StripPrefix("/static", fileServer))

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Rate Limiter for credential endpoints
	rateLimiter := handlers.NewRateLimiter(10 * time.Second)

	// Public Routes
	mux.HandleFunc("GET /login", authHandler.LoginGet)
	mux.HandleFunc("POST /login", rateLimiter.Middleware(authHandler.LoginPost))
	mux.HandleFunc("GET /logout", authHandler.Logout)

	// Protected Pages
	requireAuth := authHandler.RequireAuth
	mux.HandleFunc("GET /", requireAuth(dashboardHandler.Index))
	mux.HandleFunc("GET /events", requireAuth(dashboardHandler.Events))

	mux.HandleFunc("GET /clients", requireAuth(clientHandler.List))
	mux.HandleFunc("GET /clients/new", requireAuth(clientHandler.NewForm))
	mux.HandleFunc("POST /clients", requireAuth(clientHandler.Create))
	mux.HandleFunc("GET /clients/{id}", requireAuth(clientHandler.Detail))
	mux.HandleFunc("POST /clients/{id}", requireAuth(clientHandler.Update))

	mux.HandleFunc("GET /orders", requireAuth(orderHandler.List))
	mux.HandleFunc("GET /orders/{id}", requireAuth(orderHandler.Detail))
	mux.HandleFunc("POST /orders/{id}/status", requireAuth(orderHandler.UpdateStatus))

	// Order creation wizard
	mux.HandleFunc("GET /orders/new", requireAuth(wizardHandler.Show))
	mux.HandleFunc("POST /orders/new/client", requireAuth(wizardHandler.SelectClient))
	mux.HandleFunc("POST /orders/new/garment", requireAuth(wizardHandler.SaveGarment))
	mux.HandleFunc("POST /orders/new/garment/remove", requireAuth(wizardHandler.RemoveGarment))
	mux.HandleFunc("POST /orders/new/step", requireAuth(wizardHandler.Navigate))
	mux.HandleFunc("POST /orders/new/submit", requireAuth(wizardHandler.Submit))
	mux.HandleFunc("POST /orders/new/discard", requireAuth(wizardHandler.Discard))

	mux.HandleFunc("GET /garments", requireAuth(garmentHandler.List))
	mux.HandleFunc("GET /garments/{id}", requireAuth(garmentHandler.Detail))
	mux.HandleFunc("POST /garments/{id}/services", requireAuth(garmentHandler.AddService))
	mux.HandleFunc("POST /garments/{id}/services/{serviceID}/done", requireAuth(garmentHandler.ToggleServiceDone))
	mux.HandleFunc("POST /garments/{id}/services/{serviceID}/delete", requireAuth(garmentHandler.DeleteService))
	mux.HandleFunc("POST /garments/{id}/stage", requireAuth(garmentHandler.MoveStage))
	mux.HandleFunc("POST /garments/{id}/photo", requireAuth(garmentHandler.UploadPhoto))

	mux.HandleFunc("GET /appointments", requireAuth(appointmentHandler.List))
	mux.HandleFunc("GET /appointments/new", requireAuth(appointmentHandler.NewForm))
	mux.HandleFunc("POST /appointments", requireAuth(appointmentHandler.Create))
	mux.HandleFunc("POST /appointments/{id}/status", requireAuth(appointmentHandler.UpdateStatus))

	mux.HandleFunc("GET /settings", requireAuth(settingsHandler.Show))
	mux.HandleFunc("POST /settings", requireAuth(settingsHandler.UpdateProfile))
	mux.HandleFunc("POST /settings/stages", requireAuth(settingsHandler.CreateStage))
	mux.HandleFunc("POST /settings/stages/reorder", requireAuth(settingsHandler.ReorderStages))
	mux.HandleFunc("POST /settings/stages/{id}", requireAuth(settingsHandler.UpdateStage))
	mux.HandleFunc("POST /settings/services", requireAuth(settingsHandler.CreateCatalogService))
	mux.HandleFunc("POST /settings/services/{id}", requireAuth(settingsHandler.UpdateCatalogService))
	mux.HandleFunc("POST /settings/services/{id}/delete", requireAuth(settingsHandler.DeleteCatalogService))
	mux.HandleFunc("POST /settings/payments/connect", requireAuth(settingsHandler.ConnectPayments))

	// JSON API (bearer token auth, CSRF-exempt)
	api := http.NewServeMux()
	api.HandleFunc("POST /api/token", rateLimiter.Middleware(apiHandler.Token))
	api.HandleFunc("GET /api/orders", apiHandler.RequireToken(apiHandler.Orders))
	api.HandleFunc("GET /api/clients", apiHandler.RequireToken(apiHandler.Clients))
	api.HandleFunc("GET /api/todos", apiHandler.RequireToken(apiHandler.Todos))
	api.HandleFunc("POST /api/todos", apiHandler.RequireToken(apiHandler.CreateTodo))
	api.HandleFunc("DELETE /api/todos/{id}", apiHandler.RequireToken(apiHandler.DeleteTodo))

	// 7. Middleware Setup
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure), // Configurable for production
		// Fix for "Forbidden - origin invalid": Trust local development origins
		csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
	)

	// The API and the websocket endpoint skip CSRF (token auth and
	// same-origin check respectively); everything else goes through it.
	// Metrics wrap each mux directly so the matched route pattern is
	// available for labelling (CSRF clones the request, which would
	// hide it from an outer wrapper).
	pages := metrics.Middleware(mux)
	root := http.NewServeMux()
	root.Handle("/api/", metrics.Middleware(api))
	root.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		pages.ServeHTTP(w, r)
	})
	root.Handle("/", CSRF(pages))

	// Chain: Logger -> Security Headers -> Router
	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(root),
	)

	// 8. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	// Create a channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Goroutine to start the server
	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-stop

	slog.Info("Shutting down server gracefully...")

	// Create a deadline to wait for.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully.")
}
