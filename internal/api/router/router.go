package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"okulpazar/backend/config"
	"okulpazar/backend/internal/api/handler"
	"okulpazar/backend/internal/api/middleware"
	"okulpazar/backend/internal/model"
	"okulpazar/backend/pkg/jwt"
	"okulpazar/backend/pkg/redis"
)

const maxBodyBytes = 1 << 20

// Setup builds the gin engine
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, actors middleware.ActorLoader, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	// ── public (no token required) ──
	public := v1.Group("/public")
	public.Use(middleware.OptionalJWTAuth(jwtMgr, rdb, actors, logger))
	{
		limited := middleware.RateLimit(rdb, cfg.Booking.PublicRateLimit, time.Minute)

		public.POST("/appointments", limited, h.Appointment.CreatePublicAppointment)
		public.GET("/appointments/:number", h.Appointment.GetAppointmentByNumber)
		public.POST("/appointments/:number/cancel", limited, h.Appointment.CancelPublicAppointment)
		public.GET("/appointments/:number/ics", h.Report.ExportICS)
		public.GET("/schools/:id/availability", h.Appointment.GetAvailability)
		public.POST("/waitlist", limited, h.Appointment.AddToWaitlist)

		public.GET("/pricing/:slug", h.Pricing.GetPublicPricing)
		public.POST("/quotes", h.Pricing.CalculateCost)
		public.GET("/promo-codes/:code", limited, h.Campaign.ValidatePromoCode)

		public.GET("/posts/:id", h.Content.GetPost)
		public.POST("/posts/:id/view", h.Content.IncrementView)

		public.GET("/properties", h.Property.ListValues)
	}

	// ── authenticated ──
	authorized := v1.Group("")
	authorized.Use(middleware.JWTAuth(jwtMgr, rdb, actors, logger))
	{
		staff := middleware.RoleLevelAuth(model.RoleLevelSystem, model.RoleLevelBrand, model.RoleLevelCampus, model.RoleLevelSchool)
		managers := middleware.RoleLevelAuth(model.RoleLevelSystem, model.RoleLevelBrand, model.RoleLevelCampus)

		authorized.POST("/auth/logout", h.Auth.Logout)
		authorized.GET("/auth/me", h.Auth.Me)

		// slots
		slots := authorized.Group("/slots", staff)
		{
			slots.POST("", h.Slot.CreateSlot)
			slots.GET("/:id", h.Slot.GetSlot)
			slots.PUT("/:id", h.Slot.UpdateSlot)
			slots.DELETE("/:id", h.Slot.DeactivateSlot)
		}

		// schools: per-school listings
		schools := authorized.Group("/schools/:id", staff)
		{
			schools.GET("/slots", h.Slot.ListSlots)
			schools.GET("/waitlist", h.Appointment.ListWaitlist)
			schools.GET("/pricing", h.Pricing.ListPricing)
		}

		// appointments; parents book and manage their own
		appointments := authorized.Group("/appointments")
		{
			appointments.POST("", h.Appointment.CreateAppointment)
			appointments.GET("", h.Appointment.SearchAppointments)
			appointments.POST("/bulk", staff, h.Appointment.BulkUpdate)
			appointments.GET("/:id", h.Appointment.GetAppointment)
			appointments.POST("/:id/cancel", h.Appointment.CancelAppointment)
			appointments.POST("/:id/reschedule", h.Appointment.RescheduleAppointment)
			appointments.POST("/:id/confirm", staff, h.Appointment.ConfirmAppointment)
			appointments.POST("/:id/complete", staff, h.Appointment.CompleteAppointment)
		}

		// reports
		reports := authorized.Group("/reports/appointments", staff)
		{
			reports.GET("", h.Report.GenerateReport)
			reports.GET("/statistics", h.Report.GetStatistics)
			reports.GET("/export", h.Report.ExportReport)
		}

		// campaigns
		campaigns := authorized.Group("/campaigns", managers)
		{
			campaigns.POST("", h.Campaign.CreateCampaign)
			campaigns.GET("/:id", h.Campaign.GetCampaign)
			campaigns.PUT("/:id/status", h.Campaign.UpdateStatus)
			campaigns.GET("/:id/schools", h.Campaign.ListSchools)
			campaigns.POST("/:id/schools", h.Campaign.AssignSchools)
			campaigns.PUT("/:id/schools", h.Campaign.UpdateSchools)
			campaigns.DELETE("/:id/schools", h.Campaign.RemoveSchools)
			campaigns.DELETE("/:id/schools/:school_id", h.Campaign.RemoveSchool)
		}

		usages := authorized.Group("/campaign-usages")
		{
			usages.POST("", h.Campaign.CreateUsage)
			usages.POST("/:id/validate", h.Campaign.ValidateUsage)
			usages.POST("/:id/approve", managers, h.Campaign.ApproveUsage)
			usages.POST("/:id/cancel", h.Campaign.CancelUsage)
		}

		// pricing
		pricing := authorized.Group("/pricing", staff)
		{
			pricing.POST("", h.Pricing.CreatePricing)
			pricing.POST("/bulk", h.Pricing.BulkUpdate)
			pricing.GET("/:id", h.Pricing.GetPricing)
			pricing.PUT("/:id", h.Pricing.UpdatePricing)
			pricing.POST("/:id/submit", h.Pricing.SubmitPricing)
			pricing.POST("/:id/approve", h.Pricing.ApprovePricing)
			pricing.POST("/:id/fees", h.Pricing.CreateCustomFee)
			pricing.GET("/:id/history", h.Pricing.ListHistory)
		}

		// content
		posts := authorized.Group("/posts")
		{
			posts.POST("", staff, h.Content.CreatePost)
			posts.POST("/:id/publish", staff, h.Content.PublishPost)
			posts.POST("/:id/like", h.Content.ToggleLike)
			posts.POST("/:id/comments", h.Content.AddComment)
		}

		authorized.PUT("/properties/values", staff, h.Property.SetValue)
	}

	return r
}
