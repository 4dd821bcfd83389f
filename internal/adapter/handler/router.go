package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/srgjo27/urban_spark/internal/core/services"
)

type RouterConfig struct {
	AllowedOrigins []string
	LoginRate      string
	PaymentGateway string
}

type Handlers struct {
	Catalog  *CatalogHandler
	Wizard   *WizardHandler
	Bookings *BookingHandler
	Admin    *AdminHandler
}

func NewRouter(cfg RouterConfig, h Handlers, admin *services.AdminService, bookings *services.BookingService, logger *zap.Logger) (*gin.Engine, error) {
	router := gin.New()
	router.Use(RequestLogger(logger))
	router.Use(Recovery(logger))
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	loginLimiter, err := RateLimiter(cfg.LoginRate)
	if err != nil {
		return nil, err
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"bookingBackend": bookings.Backend(),
			"paymentGateway": cfg.PaymentGateway,
		})
	})

	api := router.Group("/api")
	{
		api.GET("/services", h.Catalog.ListServices)
		api.GET("/services/:id", h.Catalog.GetService)
		api.GET("/timeslots", h.Catalog.TimeSlots)

		wizard := api.Group("/wizard")
		wizard.POST("", h.Wizard.Start)
		wizard.GET("/:id", h.Wizard.Get)
		wizard.POST("/:id/select", h.Wizard.SelectService)
		wizard.POST("/:id/items", h.Wizard.AddItem)
		wizard.DELETE("/:id/items/:index", h.Wizard.RemoveItem)
		wizard.PUT("/:id/schedule", h.Wizard.SetSchedule)
		wizard.PUT("/:id/contact", h.Wizard.SetContact)
		wizard.PUT("/:id/payment-method", h.Wizard.SetPaymentMethod)
		wizard.POST("/:id/continue", h.Wizard.Continue)
		wizard.POST("/:id/back", h.Wizard.Back)
		wizard.POST("/:id/submit", h.Wizard.Submit)

		api.GET("/bookings/:id", h.Bookings.Track)

		adminGroup := api.Group("/admin")
		adminGroup.POST("/login", loginLimiter, h.Admin.Login)

		protected := adminGroup.Group("")
		protected.Use(AdminAuth(admin))
		protected.POST("/logout", h.Admin.Logout)
		protected.GET("/bookings", h.Admin.ListBookings)
		protected.GET("/bookings/ws", h.Admin.Live)
		protected.PATCH("/bookings/:id/status", h.Admin.UpdateStatus)
	}

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}

	return cfg
}
