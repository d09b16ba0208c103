// Package health exposes liveness and readiness endpoints. Readiness
// probes the Customer and Property services plus the database and
// Redis, reporting Degraded (503) when any dependency is unreachable.
package health

import (
	"context"
	"time"

	"loans-backend/internal/clients"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Handlers struct {
	DB         *gorm.DB
	Rdb        *redis.Client
	Customers  clients.CustomerClient
	Properties clients.PropertyClient
}

// GET /health
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":       "Healthy",
		"service":      "loans-backend",
		"timestamp":    time.Now().UTC(),
		"dependencies": []string{"customer-service", "property-service"},
	})
}

// GET /health/live
func (h *Handlers) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "Alive"})
}

// GET /health/ready
func (h *Handlers) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	deps := fiber.Map{
		"customerService": statusWord(h.checkCustomers(ctx)),
		"propertyService": statusWord(h.checkProperties(ctx)),
		"database":        statusWord(h.checkDB()),
		"redis":           statusWord(h.checkRedis(ctx)),
	}
	ready := true
	for _, v := range deps {
		if v != "Healthy" {
			ready = false
		}
	}

	status := "Ready"
	code := fiber.StatusOK
	if !ready {
		status = "Degraded"
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{"status": status, "dependencies": deps})
}

// checkCustomers probes with the zero uuid: a clean "does not exist"
// still proves the service answers.
func (h *Handlers) checkCustomers(ctx context.Context) bool {
	if h.Customers == nil {
		return false
	}
	_, err := h.Customers.CustomerExists(ctx, uuid.Nil)
	return err == nil
}

func (h *Handlers) checkProperties(ctx context.Context) bool {
	if h.Properties == nil {
		return false
	}
	_, err := h.Properties.PropertyExists(ctx, uuid.Nil)
	return err == nil
}

func (h *Handlers) checkDB() bool {
	if h.DB == nil {
		return false
	}
	sqlDB, err := h.DB.DB()
	if err != nil {
		return false
	}
	return sqlDB.Ping() == nil
}

func (h *Handlers) checkRedis(ctx context.Context) bool {
	if h.Rdb == nil {
		return false
	}
	return h.Rdb.Ping(ctx).Err() == nil
}

func statusWord(healthy bool) string {
	if healthy {
		return "Healthy"
	}
	return "Unhealthy"
}
