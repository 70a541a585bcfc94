package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter registers every route on a fresh engine
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(h.Log), gin.Recovery())
	if len(h.Config.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  h.Config.CORSOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}
	if h.Config.RateLimitPerMin > 0 {
		r.Use(RateLimit(h.Config.RateLimitPerMin, h.Log))
	}

	r.GET("/", h.Health)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/me", h.AuthMiddleware(), h.Me)
	}

	services := r.Group("/services")
	{
		services.GET("", h.ListServices)
		services.GET("/:id", h.GetService)
		services.GET("/:id/availability", h.GetAvailability)
		services.GET("/freelancer/:id", h.ListFreelancerServices)
		services.GET("/category/:id", h.ListCategoryServices)

		owner := services.Group("", h.AuthMiddleware())
		owner.POST("", h.FreelancerOnly(), h.CreateService)
		owner.PUT("/:id", h.UpdateService)
		owner.DELETE("/:id", h.DeleteService)
	}

	categories := r.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.GET("/:id", h.GetCategory)

		admin := categories.Group("", h.AuthMiddleware(), h.AdminOnly())
		admin.POST("", h.CreateCategory)
		admin.PUT("/:id", h.UpdateCategory)
		admin.DELETE("/:id", h.DeleteCategory)
	}

	appointments := r.Group("/appointments")
	appointments.Use(h.AuthMiddleware())
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.POST("/validate", h.ValidateSlot)
		appointments.POST("/checkout", h.StartCheckout)
		appointments.GET("/success", h.CheckoutSuccess)
		appointments.GET("/freelancer/:id", h.ListFreelancerAppointments)
		appointments.GET("/client/:id", h.ListClientAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.DELETE("/:id", h.DeleteAppointment)
	}

	return r
}
