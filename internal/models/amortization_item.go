package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AmortizationScheduleItem is one scheduled installment of a loan.
// Items are owned by the loan and replaced wholesale on regeneration.
type AmortizationScheduleItem struct {
	ID     uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	LoanID uuid.UUID `gorm:"column:loan_id;type:uuid;not null;index" json:"loan_id"`

	PaymentNumber int       `gorm:"column:payment_number;not null" json:"payment_number"`
	PaymentDate   time.Time `gorm:"column:payment_date;not null" json:"payment_date"`

	PaymentAmount   decimal.Decimal `gorm:"column:payment_amount;type:decimal(18,2);not null" json:"payment_amount"`
	PrincipalAmount decimal.Decimal `gorm:"column:principal_amount;type:decimal(18,2);not null" json:"principal_amount"`
	InterestAmount  decimal.Decimal `gorm:"column:interest_amount;type:decimal(18,2);not null" json:"interest_amount"`
	EscrowAmount    decimal.Decimal `gorm:"column:escrow_amount;type:decimal(18,2)" json:"escrow_amount"`

	RemainingBalance    decimal.Decimal `gorm:"column:remaining_balance;type:decimal(18,2);not null" json:"remaining_balance"`
	CumulativeInterest  decimal.Decimal `gorm:"column:cumulative_interest;type:decimal(18,2)" json:"cumulative_interest"`
	CumulativePrincipal decimal.Decimal `gorm:"column:cumulative_principal;type:decimal(18,2)" json:"cumulative_principal"`

	IsPaid            bool       `gorm:"column:is_paid;default:false" json:"is_paid"`
	ActualPaymentDate *time.Time `gorm:"column:actual_payment_date" json:"actual_payment_date"`
}

func (AmortizationScheduleItem) TableName() string {
	return "amortization_schedule_items"
}
