package loans

import (
	"errors"
	"fmt"
	"time"

	"loans-backend/internal/models"
	"loans-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *Service
}

type createLoanRequest struct {
	CustomerID          string           `json:"customer_id"`
	PropertyID          string           `json:"property_id"`
	PrincipalAmount     decimal.Decimal  `json:"principal_amount"`
	InterestRate        decimal.Decimal  `json:"interest_rate"`
	TermMonths          int              `json:"term_months"`
	LoanType            string           `json:"loan_type"`
	DownPayment         *decimal.Decimal `json:"down_payment"`
	DTI                 *decimal.Decimal `json:"dti"`
	HasEscrow           *bool            `json:"has_escrow"`
	MonthlyEscrowAmount *decimal.Decimal `json:"monthly_escrow_amount"`
	Notes               *string          `json:"notes"`
}

func (r *createLoanRequest) validate() []string {
	var errs []string
	if r.PrincipalAmount.LessThan(decimal.NewFromInt(10000)) || r.PrincipalAmount.GreaterThan(decimal.NewFromInt(10000000)) {
		errs = append(errs, "principal_amount must be between 10000 and 10000000")
	}
	if r.InterestRate.LessThan(decimal.NewFromFloat(0.001)) || r.InterestRate.GreaterThan(decimal.NewFromInt(20)) {
		errs = append(errs, "interest_rate must be between 0.001 and 20")
	}
	if r.TermMonths < 12 || r.TermMonths > 480 {
		errs = append(errs, "term_months must be between 12 and 480")
	}
	if _, ok := models.ParseLoanType(r.LoanType); !ok {
		errs = append(errs, "loan_type is not a valid loan type")
	}
	if r.DownPayment != nil && r.DownPayment.IsNegative() {
		errs = append(errs, "down_payment must not be negative")
	}
	if r.MonthlyEscrowAmount != nil && r.MonthlyEscrowAmount.IsNegative() {
		errs = append(errs, "monthly_escrow_amount must not be negative")
	}
	if r.Notes != nil && len(*r.Notes) > 500 {
		errs = append(errs, "notes must be at most 500 characters")
	}
	return errs
}

// POST /api/v1/loans
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req createLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return response.BadRequest(c, "Invalid customer_id")
	}
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return response.BadRequest(c, "Invalid property_id")
	}
	if errs := req.validate(); len(errs) > 0 {
		return response.BadRequest(c, "Validation failed", errs...)
	}

	loanType, _ := models.ParseLoanType(req.LoanType)
	hasEscrow := true
	if req.HasEscrow != nil {
		hasEscrow = *req.HasEscrow
	}
	escrow := decimal.Zero
	if req.MonthlyEscrowAmount != nil {
		escrow = *req.MonthlyEscrowAmount
	}

	loan, err := h.Service.Create(c.Context(), CreateLoanInput{
		CustomerID:          customerID,
		PropertyID:          propertyID,
		PrincipalAmount:     req.PrincipalAmount,
		InterestRate:        req.InterestRate,
		TermMonths:          req.TermMonths,
		LoanType:            loanType,
		DownPayment:         req.DownPayment,
		DTI:                 req.DTI,
		HasEscrow:           hasEscrow,
		MonthlyEscrowAmount: escrow,
		Notes:               req.Notes,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return response.SuccessCreated(c, "Loan created", loan)
}

// GET /api/v1/loans
func (h *Handlers) GetAll(c *fiber.Ctx) error {
	loans, err := h.Service.ListAll(c.Context())
	if err != nil {
		return serviceError(c, err)
	}
	return response.Success(c, "Success", loans)
}

// GET /api/v1/loans/:id?enrich=
func (h *Handlers) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid loan id")
	}
	enrich := c.QueryBool("enrich", true)
	loan, err := h.Service.GetByID(c.Context(), id, enrich)
	if err != nil {
		return serviceError(c, err)
	}
	return response.Success(c, "Success", loan)
}

// GET /api/v1/loans/number/:loanNumber
func (h *Handlers) GetByNumber(c *fiber.Ctx) error {
	loanNumber := c.Params("loanNumber")
	loan, err := h.Service.GetByNumber(c.Context(), loanNumber)
	if err != nil {
		if errors.Is(err, ErrLoanNotFound) {
			return response.NotFound(c, fmt.Sprintf("Loan %s not found", loanNumber))
		}
		return serviceError(c, err)
	}
	return response.Success(c, "Success", loan)
}

// GET /api/v1/loans/customer/:customerId
func (h *Handlers) GetByCustomer(c *fiber.Ctx) error {
	customerID, err := uuid.Parse(c.Params("customerId"))
	if err != nil {
		return response.BadRequest(c, "Invalid customer id")
	}
	loans, err := h.Service.ListByCustomer(c.Context(), customerID)
	if err != nil {
		return serviceError(c, err)
	}
	return response.Success(c, "Success", loans)
}

// GET /api/v1/loans/property/:propertyId
func (h *Handlers) GetByProperty(c *fiber.Ctx) error {
	propertyID, err := uuid.Parse(c.Params("propertyId"))
	if err != nil {
		return response.BadRequest(c, "Invalid property id")
	}
	loans, err := h.Service.ListByProperty(c.Context(), propertyID)
	if err != nil {
		return serviceError(c, err)
	}
	return response.Success(c, "Success", loans)
}

type updateLoanRequest struct {
	Status              *string          `json:"status"`
	InterestRate        *decimal.Decimal `json:"interest_rate"`
	MonthlyEscrowAmount *decimal.Decimal `json:"monthly_escrow_amount"`
	Notes               *string          `json:"notes"`
}

// PUT /api/v1/loans/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid loan id")
	}
	var req updateLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	in := UpdateLoanInput{
		InterestRate:        req.InterestRate,
		MonthlyEscrowAmount: req.MonthlyEscrowAmount,
		Notes:               req.Notes,
	}
	if req.Status != nil {
		status, ok := models.ParseLoanStatus(*req.Status)
		if !ok {
			return response.BadRequest(c, fmt.Sprintf("Unknown loan status %q", *req.Status))
		}
		in.Status = &status
	}

	loan, err := h.Service.Update(c.Context(), id, in)
	if err != nil {
		return serviceError(c, err)
	}
	return response.Success(c, "Loan updated", loan)
}

type fundLoanRequest struct {
	FundingDate      time.Time `json:"funding_date"`
	FirstPaymentDate time.Time `json:"first_payment_date"`
	Notes            *string   `json:"notes"`
}

// POST /api/v1/loans/:id/fund
func (h *Handlers) Fund(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid loan id")
	}
	var req fundLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.FundingDate.IsZero() || req.FirstPaymentDate.IsZero() {
		return response.BadRequest(c, "funding_date and first_payment_date are required")
	}

	loan, err := h.Service.Fund(c.Context(), id, FundLoanInput{
		FundingDate:      req.FundingDate,
		FirstPaymentDate: req.FirstPaymentDate,
		Notes:            req.Notes,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return response.Success(c, "Loan funded", loan)
}

// DELETE /api/v1/loans/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid loan id")
	}
	if err := h.Service.Cancel(c.Context(), id); err != nil {
		return serviceError(c, err)
	}
	return response.Success(c, "Loan cancelled", fiber.Map{"id": id})
}

// GET /api/v1/loans/:id/balance
func (h *Handlers) GetBalance(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid loan id")
	}
	balance, err := h.Service.Balance(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return response.Success(c, "Success", balance)
}

// GET /api/v1/loans/:id/schedule
func (h *Handlers) GetSchedule(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid loan id")
	}
	schedule, err := h.Service.Schedule(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return response.Success(c, "Success", schedule)
}

// POST /api/v1/loans/:id/apply-payment?principal=&interest=
// Internal endpoint for the payment service.
func (h *Handlers) ApplyPayment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid loan id")
	}
	principal, err := decimal.NewFromString(c.Query("principal"))
	if err != nil {
		return response.BadRequest(c, "Invalid principal amount")
	}
	interest, err := decimal.NewFromString(c.Query("interest"))
	if err != nil {
		return response.BadRequest(c, "Invalid interest amount")
	}

	if err := h.Service.ApplyPayment(c.Context(), id, principal, interest); err != nil {
		return serviceError(c, err)
	}
	return response.Success(c, "Payment applied", fiber.Map{"applied": true})
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

func serviceError(c *fiber.Ctx, err error) error {
	var pre *PreconditionError
	switch {
	case errors.Is(err, ErrLoanNotFound):
		return response.NotFound(c, fmt.Sprintf("Loan %s not found", c.Params("id")))
	case errors.As(err, &pre):
		return response.BadRequest(c, pre.Reason)
	default:
		return response.Fail(c, fiber.StatusInternalServerError, "Internal Server Error")
	}
}
