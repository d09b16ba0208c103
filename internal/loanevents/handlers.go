package loanevents

import (
	"loans-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// GET /api/v1/loans/:id/events
func (h *Handlers) GetLoanEvents(c *fiber.Ctx) error {
	loanID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid loan id")
	}
	events, err := h.Service.ListForLoan(c.Context(), loanID)
	if err != nil {
		return response.Fail(c, fiber.StatusInternalServerError, "Internal Server Error")
	}
	return response.Success(c, "Success", events)
}
