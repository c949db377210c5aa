package server

import (
	"context"
	"net/http"

	"pbgym/internal/auth"
	"pbgym/internal/config"
	"pbgym/internal/email"
	"pbgym/internal/occupancy"
	"pbgym/internal/offer"
	"pbgym/internal/pass"
	"pbgym/internal/user"

	"github.com/gin-gonic/gin"
)

type Server struct {
	router *gin.Engine
	config *config.Config
	email  *email.Service
	http   *http.Server
}

func New(
	cfg *config.Config,
	userHandler *user.Handler,
	offerHandler *offer.Handler,
	passHandler *pass.Handler,
	occupancyHandler *occupancy.Handler,
	emailService *email.Service,
) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RequestLoggingMiddleware())

	public := router.Group("/auth")
	public.Use(RateLimitMiddleware(5, 10))
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.PUT("/me/payment-method", userHandler.SavePaymentMethod)
		protected.GET("/me/visits", occupancyHandler.MyVisits)
		protected.GET("/offers", offerHandler.ListOffers)
		protected.POST("/passes", passHandler.Purchase)
		protected.GET("/passes/me", passHandler.GetMyPass)
		protected.GET("/passes/me/history", passHandler.GetMyPassHistory)
	}

	// Entrance turnstiles and the front-desk dashboard authenticate as
	// staff; members never call these directly.
	staffMiddleware := auth.RequireRole(string(user.KindWorker))
	staff := router.Group("/")
	staff.Use(authMiddleware, staffMiddleware)
	{
		staff.POST("/scan", occupancyHandler.Scan)
		staff.GET("/occupancy", occupancyHandler.Count)
		staff.POST("/admin/offers", offerHandler.CreateOffer)
		staff.DELETE("/admin/offers/:offerID", offerHandler.DeactivateOffer)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		config: cfg,
		email:  emailService,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
