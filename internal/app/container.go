package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairwaylabs/teetime-backend/internal/announcement"
	"github.com/fairwaylabs/teetime-backend/internal/api"
	"github.com/fairwaylabs/teetime-backend/internal/auth"
	"github.com/fairwaylabs/teetime-backend/internal/booking"
	"github.com/fairwaylabs/teetime-backend/internal/course"
	"github.com/fairwaylabs/teetime-backend/internal/pkg/storage"
	"github.com/fairwaylabs/teetime-backend/internal/pricing"
	"github.com/fairwaylabs/teetime-backend/internal/quote"
	"github.com/fairwaylabs/teetime-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction    bool
	ProdOrigins     []string
	DBPool          *pgxpool.Pool
	JWTSecret       string
	JWTTTL          time.Duration
	BcryptCost      int
	QuoteSigningKey string
	QuoteTTL        time.Duration
	TaxRate         float64
	Currency        string
	StoragePath     string
	PromoCodes      map[string]quote.Discount
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Course Module
	courseRepo := course.NewPgxRepository(cfg.DBPool)
	courseService := course.NewService(courseRepo, store, storage.NewImageProcessor())

	// Pricing Module
	pricingRepo := pricing.NewPgxRepository(cfg.DBPool)
	pricingService := pricing.NewService(pricingRepo, pricing.NewEngine())
	dedupeService := pricing.NewDedupeService(pricingRepo)

	// Quote Module
	quoteService := quote.NewService(
		pricingService,
		quote.NewStaticCouponValidator(cfg.PromoCodes),
		quote.NewSigner(cfg.QuoteSigningKey),
		quote.Config{
			Currency: cfg.Currency,
			TaxRate:  cfg.TaxRate,
			TTL:      cfg.QuoteTTL,
		},
	)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, courseService, quoteService)

	// Announcement Module
	annRepo := announcement.NewPgxRepository(cfg.DBPool)
	annService := announcement.NewService(annRepo)

	// Allowed CORS origins: fixed dev origins unless running in production.
	allowOrigins := []string{"http://localhost:8081"}
	if cfg.IsProduction {
		allowOrigins = cfg.ProdOrigins
	}

	// Router
	router := api.NewRouter(api.Services{
		User:         userService,
		Course:       courseService,
		Pricing:      pricingService,
		Dedupe:       dedupeService,
		Quote:        quoteService,
		Booking:      bookingService,
		Announcement: annService,
	}, jwtManager, allowOrigins)

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}, nil
}
