package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/orderfood/api/internal/cart"
	"github.com/orderfood/api/internal/checkout"
	"github.com/orderfood/api/internal/config"
	"github.com/orderfood/api/internal/enum"
	"github.com/orderfood/api/internal/handler"
	mw "github.com/orderfood/api/internal/middleware"
	"github.com/orderfood/api/internal/remote"
	"github.com/orderfood/api/internal/voucher"
	"github.com/orderfood/api/internal/ws"
)

// Deps carries the wired collaborators the router mounts.
type Deps struct {
	Orders   *remote.OrdersClient
	Cart     *cart.Service
	Checkout *checkout.Orchestrator
	Eval     *voucher.Evaluator
	Hub      *ws.Hub
}

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, deps Deps) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(deps.Orders, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Gateway return (public: the customer arrives from the gateway
	// without a session header)
	ordersHandler := handler.NewOrdersHandler(deps.Orders, deps.Checkout)
	ordersHandler.RegisterPublicRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/board/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(deps.Hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		cartHandler := handler.NewCartHandler(deps.Cart)
		cartHandler.RegisterRoutes(r)

		checkoutHandler := handler.NewCheckoutHandler(deps.Checkout)
		checkoutHandler.RegisterRoutes(r)

		vouchersHandler := handler.NewVouchersHandler(deps.Eval, deps.Orders)
		vouchersHandler.RegisterRoutes(r)

		ordersHandler.RegisterRoutes(r)

		// Staff-only routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleStaff, enum.RoleAdmin))
			boardHandler := handler.NewBoardHandler(deps.Orders, deps.Hub)
			boardHandler.RegisterRoutes(r)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
