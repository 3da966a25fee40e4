package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mehrabrahat/ITZENBD-POS/internal/audit"
	"github.com/mehrabrahat/ITZENBD-POS/internal/config"
	"github.com/mehrabrahat/ITZENBD-POS/internal/enum"
	"github.com/mehrabrahat/ITZENBD-POS/internal/handler"
	"github.com/mehrabrahat/ITZENBD-POS/internal/insights"
	"github.com/mehrabrahat/ITZENBD-POS/internal/kitchen"
	mw "github.com/mehrabrahat/ITZENBD-POS/internal/middleware"
	"github.com/mehrabrahat/ITZENBD-POS/internal/service"
	"github.com/mehrabrahat/ITZENBD-POS/internal/store"
	"github.com/mehrabrahat/ITZENBD-POS/internal/ws"
)

// Deps bundles the shared application state the routes close over.
type Deps struct {
	Store      *store.Store
	Audit      *audit.Log
	Orders     *service.OrderService
	Menu       *service.MenuService
	Authorizer *service.Authorizer
	Kitchen    *kitchen.Router
	Summarizer insights.Summarizer
	Hub        *ws.Hub
}

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, deps Deps) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(deps.Store, deps.Audit, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/kitchen", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(deps.Hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		authHandler.RegisterProtectedRoutes(r)

		// Catalog reads are open to every role
		menuHandler := handler.NewMenuHandler(deps.Menu)
		menuHandler.RegisterReadRoutes(r)

		// Front-of-house routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleCashier, enum.UserRoleManager, enum.UserRoleAdmin))

			tableHandler := handler.NewTableHandler(deps.Store, deps.Orders)
			tableHandler.RegisterRoutes(r)

			orderHandler := handler.NewOrderHandler(deps.Orders, deps.Hub)
			orderHandler.RegisterRoutes(r)

			receiptHandler := handler.NewReceiptHandler(deps.Orders, deps.Orders, deps.Store)
			receiptHandler.RegisterRoutes(r)
		})

		// Kitchen display routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleKitchen, enum.UserRoleManager, enum.UserRoleAdmin))

			kitchenHandler := handler.NewKitchenHandler(deps.Kitchen, deps.Orders, deps.Hub)
			kitchenHandler.RegisterRoutes(r)
		})

		// Manager/admin routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleManager, enum.UserRoleAdmin))

			reportsHandler := handler.NewReportsHandler(deps.Store, deps.Audit, deps.Summarizer)
			reportsHandler.RegisterRoutes(r)
		})

		// Menu mutations: cashiers may request, the permission gate decides
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleCashier, enum.UserRoleManager, enum.UserRoleAdmin))

			menuHandler.RegisterWriteRoutes(r)

			overrideHandler := handler.NewOverrideHandler(deps.Authorizer)
			overrideHandler.RegisterRoutes(r)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
