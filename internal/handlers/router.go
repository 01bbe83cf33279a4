package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kalaasutra/storefront/internal/middleware"
	"github.com/kalaasutra/storefront/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions carries everything the API router serves
type RouterOptions struct {
	Auth     *service.AuthService
	Products *service.ProductService
	Orders   *service.OrderService
	Payments *service.PaymentService

	// DB is pinged by /health; nil skips the check
	DB Pinger

	AllowedOrigins []string
	LoginRateLimit int // login attempts per minute per client IP
	Registry       *prometheus.Registry
	Logger         *slog.Logger
}

// NewRouter builds the API route tree
func NewRouter(opts RouterOptions) http.Handler {
	log := opts.Logger
	metrics := middleware.NewHTTPMetrics("kalaasutra_api", opts.Registry)

	healthHandler := NewHealthHandler(opts.DB, log)
	authHandler := NewAuthHandler(opts.Auth, log)
	productHandler := NewProductHandler(opts.Products, log)
	orderHandler := NewOrderHandler(opts.Orders, log)
	paymentHandler := NewPaymentHandler(opts.Payments, log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(metrics.Handler)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", healthHandler.Root)
	r.Get("/health", healthHandler.ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))

	authenticate := middleware.Authenticate(opts.Auth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.With(middleware.RateLimit(opts.LoginRateLimit, time.Minute)).Post("/login", authHandler.Login)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Get("/{productId}", productHandler.GetProduct)

			r.Group(func(r chi.Router) {
				r.Use(authenticate, middleware.RequireAdmin)
				r.Post("/", productHandler.CreateProduct)
				r.Put("/{productId}", productHandler.UpdateProduct)
				r.Delete("/{productId}", productHandler.DeleteProduct)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", orderHandler.CreateOrder)
			r.Get("/", orderHandler.ListOrders)
			r.Get("/{orderId}", orderHandler.GetOrder)
			r.With(middleware.RequireAdmin).Put("/{orderId}", orderHandler.UpdateOrder)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/create", paymentHandler.CreatePayment)
			r.Post("/verify", paymentHandler.VerifyPayment)
			r.Get("/order/{orderId}", paymentHandler.GetPaymentForOrder)
		})
	})

	return r
}
