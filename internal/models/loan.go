package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanType is the mortgage product type.
type LoanType string

const (
	LoanTypeConventional LoanType = "Conventional"
	LoanTypeFHA          LoanType = "FHA"
	LoanTypeVA           LoanType = "VA"
	LoanTypeUSDA         LoanType = "USDA"
	LoanTypeJumbo        LoanType = "Jumbo"
	LoanTypeARM          LoanType = "ARM"
	LoanTypeInterestOnly LoanType = "InterestOnly"
)

var loanTypes = map[LoanType]bool{
	LoanTypeConventional: true,
	LoanTypeFHA:          true,
	LoanTypeVA:           true,
	LoanTypeUSDA:         true,
	LoanTypeJumbo:        true,
	LoanTypeARM:          true,
	LoanTypeInterestOnly: true,
}

// ParseLoanType validates a loan type string.
func ParseLoanType(s string) (LoanType, bool) {
	t := LoanType(s)
	return t, loanTypes[t]
}

// LoanStatus is the loan lifecycle state.
type LoanStatus string

const (
	StatusPending     LoanStatus = "Pending"
	StatusApproved    LoanStatus = "Approved"
	StatusFunded      LoanStatus = "Funded"
	StatusActive      LoanStatus = "Active"
	StatusDelinquent  LoanStatus = "Delinquent"
	StatusDefault     LoanStatus = "Default"
	StatusPaidOff     LoanStatus = "PaidOff"
	StatusForeclosure LoanStatus = "Foreclosure"
	StatusCancelled   LoanStatus = "Cancelled"
)

// statusTransitions is the allowed-transition table for administrative
// status updates. Funding goes through its own endpoint and is not
// driven by this table.
var statusTransitions = map[LoanStatus][]LoanStatus{
	StatusPending:     {StatusApproved, StatusCancelled},
	StatusApproved:    {StatusFunded, StatusCancelled},
	StatusFunded:      {StatusActive, StatusCancelled},
	StatusActive:      {StatusDelinquent, StatusPaidOff, StatusDefault},
	StatusDelinquent:  {StatusActive, StatusDefault, StatusPaidOff},
	StatusDefault:     {StatusForeclosure, StatusActive},
	StatusPaidOff:     {},
	StatusForeclosure: {},
	StatusCancelled:   {},
}

// ParseLoanStatus validates a status string.
func ParseLoanStatus(s string) (LoanStatus, bool) {
	_, ok := statusTransitions[LoanStatus(s)]
	return LoanStatus(s), ok
}

// CanTransition reports whether moving from one status to another is
// allowed by the transition table. Same-status updates are allowed.
func (s LoanStatus) CanTransition(to LoanStatus) bool {
	if s == to {
		return true
	}
	for _, t := range statusTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Loan is a mortgage obligation. Customer and property live in peer
// services; only their IDs are stored here.
type Loan struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	LoanNumber      string          `gorm:"column:loan_number;type:varchar(20);not null;uniqueIndex" json:"loan_number"`
	CustomerID      uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;index" json:"customer_id"`
	PropertyID      uuid.UUID       `gorm:"column:property_id;type:uuid;not null;index" json:"property_id"`
	PrincipalAmount decimal.Decimal `gorm:"column:principal_amount;type:decimal(18,2);not null" json:"principal_amount"`
	InterestRate    decimal.Decimal `gorm:"column:interest_rate;type:decimal(5,3);not null" json:"interest_rate"`
	TermMonths      int             `gorm:"column:term_months;not null" json:"term_months"`
	LoanType        LoanType        `gorm:"column:loan_type;type:varchar(20);not null" json:"loan_type"`
	Status          LoanStatus      `gorm:"column:status;type:varchar(20);not null;default:'Pending'" json:"status"`

	MonthlyPayment  decimal.Decimal `gorm:"column:monthly_payment;type:decimal(18,2)" json:"monthly_payment"`
	CurrentBalance  decimal.Decimal `gorm:"column:current_balance;type:decimal(18,2)" json:"current_balance"`
	OriginalBalance decimal.Decimal `gorm:"column:original_balance;type:decimal(18,2)" json:"original_balance"`

	StartDate        *time.Time `gorm:"column:start_date" json:"start_date"`
	MaturityDate     *time.Time `gorm:"column:maturity_date" json:"maturity_date"`
	FirstPaymentDate *time.Time `gorm:"column:first_payment_date" json:"first_payment_date"`

	DownPayment *decimal.Decimal `gorm:"column:down_payment;type:decimal(18,2)" json:"down_payment"`
	LTV         *decimal.Decimal `gorm:"column:ltv;type:decimal(5,3)" json:"ltv"`
	DTI         *decimal.Decimal `gorm:"column:dti;type:decimal(5,3)" json:"dti"`

	HasEscrow           bool            `gorm:"column:has_escrow;default:true" json:"has_escrow"`
	EscrowBalance       decimal.Decimal `gorm:"column:escrow_balance;type:decimal(18,2)" json:"escrow_balance"`
	MonthlyEscrowAmount decimal.Decimal `gorm:"column:monthly_escrow_amount;type:decimal(18,2)" json:"monthly_escrow_amount"`

	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at"`
	ClosedAt  *time.Time `gorm:"column:closed_at" json:"closed_at"`

	Notes *string `gorm:"column:notes;type:varchar(500)" json:"notes"`

	AmortizationSchedule []AmortizationScheduleItem `gorm:"foreignKey:LoanID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Loan) TableName() string {
	return "loans"
}
