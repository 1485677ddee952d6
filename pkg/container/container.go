package container

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // database/sql driver for the user projection

	"github.com/edproton/xceltutors-next/internal/config"
	bookingHandler "github.com/edproton/xceltutors-next/internal/domains/booking/handler"
	bookingRepo "github.com/edproton/xceltutors-next/internal/domains/booking/repository"
	bookingService "github.com/edproton/xceltutors-next/internal/domains/booking/service"
	"github.com/edproton/xceltutors-next/internal/domains/payment/gateway"
	gatewayMock "github.com/edproton/xceltutors-next/internal/domains/payment/gateway/mock"
	gatewayStripe "github.com/edproton/xceltutors-next/internal/domains/payment/gateway/stripe"
	paymentHandler "github.com/edproton/xceltutors-next/internal/domains/payment/handler"
	paymentRepo "github.com/edproton/xceltutors-next/internal/domains/payment/repository"
	paymentService "github.com/edproton/xceltutors-next/internal/domains/payment/service"
	recurringHandler "github.com/edproton/xceltutors-next/internal/domains/recurring/handler"
	recurringRepo "github.com/edproton/xceltutors-next/internal/domains/recurring/repository"
	recurringService "github.com/edproton/xceltutors-next/internal/domains/recurring/service"
	userRepo "github.com/edproton/xceltutors-next/internal/domains/user/repository"
	infraCache "github.com/edproton/xceltutors-next/internal/infrastructure/cache"
	"github.com/edproton/xceltutors-next/internal/infrastructure/database"
	"github.com/edproton/xceltutors-next/pkg/cache"
	"github.com/edproton/xceltutors-next/pkg/clock"
	pkgdb "github.com/edproton/xceltutors-next/pkg/database"
	"github.com/edproton/xceltutors-next/pkg/jwt"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph; everything in it is a
// singleton built once at startup.
type Container struct {
	// Infrastructure
	Config     *config.Config
	DB         *database.PostgresDB
	SQLDB      *sql.DB // database/sql handle for the user projection
	Cache      cache.Cache
	JWTManager *jwt.Manager
	TxManager  pkgdb.TransactionManager
	Clock      clock.Clock

	// Repositories
	BookingRepo   bookingRepo.BookingRepository
	PaymentRepo   paymentRepo.PaymentRepository
	WebhookRepo   paymentRepo.WebhookEventRepository
	RecurringRepo recurringRepo.RecurringRepository
	UserRepo      userRepo.UserRepository

	// Gateway port
	PaymentGateway gateway.PaymentGateway

	// Services
	BookingService   bookingService.BookingService
	RecurringService recurringService.RecurringService
	WebhookService   paymentService.WebhookService

	// Handlers
	BookingHandler   *bookingHandler.BookingHandler
	RecurringHandler *recurringHandler.RecurringHandler
	PaymentHandler   *paymentHandler.PaymentHandler
}

// ========================================
// CONSTRUCTOR
// ========================================

// NewContainer builds the graph in dependency order: config,
// infrastructure, repositories, gateway, services, handlers.
func NewContainer() (*Container, error) {
	c := &Container{}

	// Step 1: Configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("config loaded (environment: %s)", cfg.App.Environment)

	// Step 2: PostgreSQL (pgx pool for the booking domain)
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}
	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db

	// database/sql handle over the same database; the user repository
	// scans text[] columns through lib/pq.
	sqlDB, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open sql connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxConns)
	c.SQLDB = sqlDB

	// Step 3: Redis. A cache outage degrades (webhook replay markers)
	// but does not block startup.
	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Printf("redis connection failed (non-critical): %v", err)
	}
	c.Cache = redisCache

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret)
	c.TxManager = pkgdb.NewPgxTransactionManager(db.Pool)
	c.Clock = clock.NewSystem()

	// Step 4: Repositories
	c.BookingRepo = bookingRepo.NewPostgresBookingRepository(db.Pool)
	c.PaymentRepo = paymentRepo.NewPostgresPaymentRepository(db.Pool)
	c.WebhookRepo = paymentRepo.NewPostgresWebhookEventRepository(db.Pool)
	c.RecurringRepo = recurringRepo.NewPostgresRecurringRepository(db.Pool)
	c.UserRepo = userRepo.NewUserRepository(sqlDB)

	// Step 5: Payment gateway port
	gw, err := buildGateway(cfg)
	if err != nil {
		return nil, err
	}
	c.PaymentGateway = gw

	// Step 6: Services
	c.BookingService = bookingService.NewBookingService(
		c.BookingRepo,
		c.PaymentRepo,
		c.UserRepo,
		c.PaymentGateway,
		c.TxManager,
		c.Clock,
		cfg.Booking.DefaultCurrency,
	)
	c.RecurringService = recurringService.NewRecurringService(
		c.RecurringRepo,
		c.BookingRepo,
		c.UserRepo,
		c.TxManager,
		c.Clock,
		cfg.Booking.DefaultCurrency,
	)
	c.WebhookService = paymentService.NewWebhookService(
		c.PaymentGateway,
		c.BookingRepo,
		c.PaymentRepo,
		c.WebhookRepo,
		c.TxManager,
		c.Cache,
		c.Clock,
	)

	// Step 7: Handlers
	c.BookingHandler = bookingHandler.NewBookingHandler(c.BookingService)
	c.RecurringHandler = recurringHandler.NewRecurringHandler(c.RecurringService)
	c.PaymentHandler = paymentHandler.NewPaymentHandler(c.WebhookService)

	return c, nil
}

func buildGateway(cfg *config.Config) (gateway.PaymentGateway, error) {
	switch cfg.Payment.Provider {
	case "mock":
		log.Println("payment gateway: mock (no provider credentials)")
		return gatewayMock.NewMockPaymentGateway(), nil
	default:
		gwConfig := gatewayStripe.NewConfig(
			cfg.Payment.Secret,
			cfg.Payment.WebhookSecret,
			cfg.App.FrontendURL,
		)
		return gatewayStripe.NewClient(gwConfig)
	}
}

// ========================================
// CLEANUP
// ========================================

// Cleanup releases held connections. Call on shutdown.
func (c *Container) Cleanup() {
	if c.DB != nil {
		c.DB.Close()
	}
	if c.SQLDB != nil {
		_ = c.SQLDB.Close()
	}
	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		_ = rc.Close()
	}
}
