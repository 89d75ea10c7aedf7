package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/fairwaylabs/teetime-backend/internal/announcement"
	announcementHttp "github.com/fairwaylabs/teetime-backend/internal/announcement/http"
	"github.com/fairwaylabs/teetime-backend/internal/auth"
	"github.com/fairwaylabs/teetime-backend/internal/booking"
	bookingHttp "github.com/fairwaylabs/teetime-backend/internal/booking/http"
	"github.com/fairwaylabs/teetime-backend/internal/course"
	courseHttp "github.com/fairwaylabs/teetime-backend/internal/course/http"
	"github.com/fairwaylabs/teetime-backend/internal/pricing"
	pricingHttp "github.com/fairwaylabs/teetime-backend/internal/pricing/http"
	"github.com/fairwaylabs/teetime-backend/internal/quote"
	quoteHttp "github.com/fairwaylabs/teetime-backend/internal/quote/http"
	"github.com/fairwaylabs/teetime-backend/internal/user"
	userHttp "github.com/fairwaylabs/teetime-backend/internal/user/http"
)

// Services groups the module services the router depends on.
type Services struct {
	User         user.Service
	Course       course.Service
	Pricing      pricing.Service
	Dedupe       *pricing.DedupeService
	Quote        quote.Service
	Booking      booking.Service
	Announcement announcement.Service
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(svcs Services, jwtManager *auth.JWTManager, allowOrigins []string) *gin.Engine {
	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	config := cors.DefaultConfig()
	config.AllowOrigins = allowOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(config))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(jwtManager)
	// sysAdminMiddleware: Further checks if the authenticated user has System Admin privileges.
	sysAdminMiddleware := RequireSystemAdmin(svcs.User)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(svcs.User, jwtManager)
	courseHandler := courseHttp.NewHandler(svcs.Course)
	pricingHandler := pricingHttp.NewHandler(svcs.Pricing, svcs.Dedupe)
	quoteHandler := quoteHttp.NewHandler(svcs.Quote)
	bookingHandler := bookingHttp.NewHandler(svcs.Booking, svcs.User)
	announcementHandler := announcementHttp.NewHandler(svcs.Announcement)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, sysAdminMiddleware)
		courseHttp.RegisterRoutes(v1, courseHandler, authMiddleware, sysAdminMiddleware)
		pricingHttp.RegisterRoutes(v1, pricingHandler, authMiddleware, sysAdminMiddleware)
		quoteHttp.RegisterRoutes(v1, quoteHandler)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, sysAdminMiddleware)
		announcementHttp.RegisterRoutes(v1, announcementHandler, authMiddleware, sysAdminMiddleware)
	}

	return r
}
