// Package loanevents keeps an audit trail of state-changing loan
// operations (creation, funding, payments, cancellation).
package loanevents

import (
	"context"
	"encoding/json"

	"loans-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event types recorded by the loan service.
const (
	EventLoanCreated    = "loan_created"
	EventLoanFunded     = "loan_funded"
	EventLoanUpdated    = "loan_updated"
	EventLoanCancelled  = "loan_cancelled"
	EventPaymentApplied = "payment_applied"
)

// Record writes one event inside the caller's transaction so the event
// commits or rolls back with the operation it describes.
func Record(tx *gorm.DB, loanID uuid.UUID, eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return tx.Create(&models.LoanEvent{
		ID:        uuid.New(),
		LoanID:    loanID,
		EventType: eventType,
		EventData: datatypes.JSON(data),
	}).Error
}

type Service struct {
	DB *gorm.DB
}

// ListForLoan returns a loan's events, newest first.
func (s *Service) ListForLoan(ctx context.Context, loanID uuid.UUID) ([]models.LoanEvent, error) {
	var events []models.LoanEvent
	if err := s.DB.WithContext(ctx).Where("loan_id = ?", loanID).Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
