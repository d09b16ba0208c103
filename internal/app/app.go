package app

import (
	"loans-backend/internal/clients"
	"loans-backend/internal/config"
	"loans-backend/internal/database"
	"loans-backend/internal/health"
	"loans-backend/internal/loanevents"
	"loans-backend/internal/loans"
	"loans-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration. The returned DB and Redis handles are also used by
// main for startup pings.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opts)
	}

	var customerClient clients.CustomerClient = &clients.HTTPCustomerClient{BaseURL: cfg.CustomerServiceURL}
	var propertyClient clients.PropertyClient = &clients.HTTPPropertyClient{BaseURL: cfg.PropertyServiceURL}
	if rdb != nil {
		customerClient = &clients.CachedCustomerClient{Inner: customerClient, Rdb: rdb}
		propertyClient = &clients.CachedPropertyClient{Inner: propertyClient, Rdb: rdb}
	}

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	healthHandlers := &health.Handlers{
		DB:         db,
		Rdb:        rdb,
		Customers:  customerClient,
		Properties: propertyClient,
	}
	app.Get("/health", healthHandlers.Health)
	app.Get("/health/live", healthHandlers.Live)
	app.Get("/health/ready", healthHandlers.Ready)

	if db != nil {
		loanService := &loans.Service{DB: db, Customers: customerClient, Properties: propertyClient}
		loanHandlers := &loans.Handlers{Service: loanService}
		eventHandlers := &loanevents.Handlers{Service: &loanevents.Service{DB: db}}

		loanGroup := app.Group("/api/v1/loans")
		loanGroup.Get("/", loanHandlers.GetAll)
		loanGroup.Post("/", loanHandlers.Create)
		loanGroup.Get("/number/:loanNumber", loanHandlers.GetByNumber)
		loanGroup.Get("/customer/:customerId", loanHandlers.GetByCustomer)
		loanGroup.Get("/property/:propertyId", loanHandlers.GetByProperty)
		loanGroup.Get("/:id", loanHandlers.GetByID)
		loanGroup.Put("/:id", loanHandlers.Update)
		loanGroup.Delete("/:id", loanHandlers.Delete)
		loanGroup.Post("/:id/fund", loanHandlers.Fund)
		loanGroup.Get("/:id/balance", loanHandlers.GetBalance)
		loanGroup.Get("/:id/schedule", loanHandlers.GetSchedule)
		loanGroup.Get("/:id/events", eventHandlers.GetLoanEvents)
		loanGroup.Post("/:id/apply-payment", loanHandlers.ApplyPayment)
	}

	return app, db, rdb, nil
}
