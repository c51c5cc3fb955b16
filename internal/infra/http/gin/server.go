package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"homestay/internal/infra/config"
	"homestay/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Cancel(c *gin.Context)
	Confirm(c *gin.Context)
	Complete(c *gin.Context)
	Get(c *gin.Context)
	ListByGuest(c *gin.Context)
	ListByListing(c *gin.Context)
}

type PaymentHTTP interface {
	Initialize(c *gin.Context)
	Verify(c *gin.Context)
	Webhook(c *gin.Context)
}

type ReviewHTTP interface {
	Submit(c *gin.Context)
	ListByListing(c *gin.Context)
	Stats(c *gin.Context)
}

type Handlers struct {
	Booking BookingHTTP
	Payment PaymentHTTP
	Review  ReviewHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings/:id", h.Booking.Get)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.POST("/bookings/:id/confirm", h.Booking.Confirm)
		api.POST("/bookings/:id/complete", h.Booking.Complete)
		api.GET("/guests/:id/bookings", h.Booking.ListByGuest)
		api.GET("/listings/:id/bookings", h.Booking.ListByListing)
	}
	if h.Payment != nil {
		api.POST("/payments/initialize", h.Payment.Initialize)
		api.GET("/payments/verify/:reference", h.Payment.Verify)
		api.POST("/payments/webhook", h.Payment.Webhook)
	}
	if h.Review != nil {
		api.POST("/reviews", h.Review.Submit)
		api.GET("/listings/:id/reviews", h.Review.ListByListing)
		api.GET("/listings/:id/stats", h.Review.Stats)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
