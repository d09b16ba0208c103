package loans

import (
	"time"

	"loans-backend/internal/clients"
	"loans-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanResponse is the full loan view, optionally enriched with data
// from the Customer and Property services. Enrichment fields stay nil
// when a lookup fails or is skipped.
type LoanResponse struct {
	ID         uuid.UUID `json:"id"`
	LoanNumber string    `json:"loan_number"`
	CustomerID uuid.UUID `json:"customer_id"`
	PropertyID uuid.UUID `json:"property_id"`

	Customer *clients.Customer `json:"customer,omitempty"`
	Property *clients.Property `json:"property,omitempty"`

	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	InterestRate    decimal.Decimal `json:"interest_rate"`
	TermMonths      int             `json:"term_months"`
	LoanType        string          `json:"loan_type"`
	Status          string          `json:"status"`
	MonthlyPayment  decimal.Decimal `json:"monthly_payment"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`

	StartDate        *time.Time `json:"start_date"`
	MaturityDate     *time.Time `json:"maturity_date"`
	FirstPaymentDate *time.Time `json:"first_payment_date"`

	DownPayment *decimal.Decimal `json:"down_payment"`
	LTV         *decimal.Decimal `json:"ltv"`
	DTI         *decimal.Decimal `json:"dti"`

	HasEscrow           bool            `json:"has_escrow"`
	EscrowBalance       decimal.Decimal `json:"escrow_balance"`
	MonthlyEscrowAmount decimal.Decimal `json:"monthly_escrow_amount"`

	CreatedAt time.Time `json:"created_at"`
	Notes     *string   `json:"notes"`
}

// LoanSummary is the compact list-view row, never enriched.
type LoanSummary struct {
	ID              uuid.UUID       `json:"id"`
	LoanNumber      string          `json:"loan_number"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	PropertyID      uuid.UUID       `json:"property_id"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	InterestRate    decimal.Decimal `json:"interest_rate"`
	TermMonths      int             `json:"term_months"`
	LoanType        string          `json:"loan_type"`
	Status          string          `json:"status"`
	MonthlyPayment  decimal.Decimal `json:"monthly_payment"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	CreatedAt       time.Time       `json:"created_at"`
}

// LoanBalance is the read-side balance snapshot for one loan.
type LoanBalance struct {
	LoanID            uuid.UUID       `json:"loan_id"`
	LoanNumber        string          `json:"loan_number"`
	OriginalBalance   decimal.Decimal `json:"original_balance"`
	CurrentBalance    decimal.Decimal `json:"current_balance"`
	PrincipalPaid     decimal.Decimal `json:"principal_paid"`
	InterestPaid      decimal.Decimal `json:"interest_paid"`
	EscrowBalance     decimal.Decimal `json:"escrow_balance"`
	PaymentsMade      int             `json:"payments_made"`
	PaymentsRemaining int             `json:"payments_remaining"`
	NextPaymentDate   *time.Time      `json:"next_payment_date"`
	NextPaymentAmount decimal.Decimal `json:"next_payment_amount"`
	AsOfDate          time.Time       `json:"as_of_date"`
}

func toSummary(loan *models.Loan) LoanSummary {
	return LoanSummary{
		ID:              loan.ID,
		LoanNumber:      loan.LoanNumber,
		CustomerID:      loan.CustomerID,
		PropertyID:      loan.PropertyID,
		PrincipalAmount: loan.PrincipalAmount,
		InterestRate:    loan.InterestRate,
		TermMonths:      loan.TermMonths,
		LoanType:        string(loan.LoanType),
		Status:          string(loan.Status),
		MonthlyPayment:  loan.MonthlyPayment,
		CurrentBalance:  loan.CurrentBalance,
		CreatedAt:       loan.CreatedAt,
	}
}

func toResponse(loan *models.Loan, customer *clients.Customer, property *clients.Property) *LoanResponse {
	return &LoanResponse{
		ID:                  loan.ID,
		LoanNumber:          loan.LoanNumber,
		CustomerID:          loan.CustomerID,
		PropertyID:          loan.PropertyID,
		Customer:            customer,
		Property:            property,
		PrincipalAmount:     loan.PrincipalAmount,
		InterestRate:        loan.InterestRate,
		TermMonths:          loan.TermMonths,
		LoanType:            string(loan.LoanType),
		Status:              string(loan.Status),
		MonthlyPayment:      loan.MonthlyPayment,
		CurrentBalance:      loan.CurrentBalance,
		StartDate:           loan.StartDate,
		MaturityDate:        loan.MaturityDate,
		FirstPaymentDate:    loan.FirstPaymentDate,
		DownPayment:         loan.DownPayment,
		LTV:                 loan.LTV,
		DTI:                 loan.DTI,
		HasEscrow:           loan.HasEscrow,
		EscrowBalance:       loan.EscrowBalance,
		MonthlyEscrowAmount: loan.MonthlyEscrowAmount,
		CreatedAt:           loan.CreatedAt,
		Notes:               loan.Notes,
	}
}
