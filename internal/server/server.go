package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"carexyz/internal/auth"
	"carexyz/internal/booking"
	"carexyz/internal/catalog"
	"carexyz/internal/config"
	"carexyz/internal/email"
	"carexyz/internal/logger"
	"carexyz/internal/payment"
	"carexyz/internal/user"

	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Users    *user.Handler
	Catalog  *catalog.Handler
	Bookings *booking.Handler
	Payments *payment.Handler
}

// HealthCheck is a named dependency probe reported by /health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Server struct {
	router *gin.Engine
	http   *http.Server
	config *config.Config
	email  *email.Service
}

func New(cfg *config.Config, h Handlers, emailService *email.Service, checks ...HealthCheck) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLoggingMiddleware(), MetricsMiddleware(), corsMiddleware())

	router.GET("/health", Health(checks...))
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	// Stripe signs webhook deliveries and retries them; they are not rate limited.
	router.POST("/payments/webhook", h.Payments.Webhook)

	limited := router.Group("/")
	limited.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	public := limited.Group("/auth")
	{
		public.POST("/register", h.Users.Register)
		public.POST("/login", h.Users.Login)
		public.POST("/refresh", h.Users.RefreshToken)
	}
	limited.GET("/services", h.Catalog.ListServices)
	limited.GET("/services/:serviceID", h.Catalog.GetService)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := limited.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", h.Users.GetMe)
		protected.PUT("/me", h.Users.UpdateMe)

		protected.POST("/bookings", h.Bookings.CreateBooking)
		protected.GET("/bookings", h.Bookings.ListMyBookings)
		protected.GET("/bookings/:bookingID", h.Bookings.GetBooking)
		protected.PUT("/bookings/:bookingID/status", h.Bookings.UpdateStatus)
		protected.POST("/bookings/:bookingID/cancel", h.Bookings.CancelBooking)

		protected.POST("/payments/checkout", h.Payments.StartCheckout)
		protected.POST("/payments/verify", h.Payments.VerifyPayment)
	}

	admin := limited.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/bookings", h.Bookings.ListAllBookings)
		admin.PUT("/bookings/:bookingID/status", h.Bookings.UpdateStatus)
		admin.POST("/services", h.Catalog.CreateService)
		admin.PUT("/services/:serviceID/active", h.Catalog.SetActive)
		if emailService != nil {
			admin.GET("/test-email", TestEmail(emailService))
		}
	}

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		config: cfg,
		email:  emailService,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	logger.Info("HTTP server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Stripe-Signature, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
