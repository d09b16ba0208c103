package loans

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"loans-backend/internal/amort"
	"loans-backend/internal/clients"
	"loans-backend/internal/loanevents"
	"loans-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var hundred = decimal.NewFromInt(100)

type Service struct {
	DB         *gorm.DB
	Customers  clients.CustomerClient
	Properties clients.PropertyClient
}

type CreateLoanInput struct {
	CustomerID          uuid.UUID
	PropertyID          uuid.UUID
	PrincipalAmount     decimal.Decimal
	InterestRate        decimal.Decimal
	TermMonths          int
	LoanType            models.LoanType
	DownPayment         *decimal.Decimal
	DTI                 *decimal.Decimal
	HasEscrow           bool
	MonthlyEscrowAmount decimal.Decimal
	Notes               *string
}

// Create validates the customer and property references, derives the
// monthly payment and LTV, and persists a Pending loan. Nothing is
// persisted when a precondition fails.
func (s *Service) Create(ctx context.Context, in CreateLoanInput) (*LoanResponse, error) {
	if ok, err := s.Customers.CustomerExists(ctx, in.CustomerID); err != nil || !ok {
		if err != nil {
			log.Warn().Str("customer_id", in.CustomerID.String()).Err(err).Msg("Customer existence check failed")
		}
		return nil, preconditionf("Customer %s not found", in.CustomerID)
	}
	if ok, err := s.Properties.PropertyExists(ctx, in.PropertyID); err != nil || !ok {
		if err != nil {
			log.Warn().Str("property_id", in.PropertyID.String()).Err(err).Msg("Property existence check failed")
		}
		return nil, preconditionf("Property %s not found", in.PropertyID)
	}

	// Property value drives LTV; fall back to the listing price, then
	// to the principal itself (LTV 100%) when the lookup degrades.
	propertyValue := in.PrincipalAmount
	if property, err := s.Properties.GetProperty(ctx, in.PropertyID); err == nil && property != nil {
		if property.EstimatedValue.GreaterThan(decimal.Zero) {
			propertyValue = property.EstimatedValue
		} else if property.ListingPrice.GreaterThan(decimal.Zero) {
			propertyValue = property.ListingPrice
		}
	}

	ltv := in.PrincipalAmount.Div(propertyValue).Mul(hundred).Round(3)

	loan := &models.Loan{
		ID:                  uuid.New(),
		CustomerID:          in.CustomerID,
		PropertyID:          in.PropertyID,
		PrincipalAmount:     in.PrincipalAmount,
		InterestRate:        in.InterestRate,
		TermMonths:          in.TermMonths,
		LoanType:            in.LoanType,
		Status:              models.StatusPending,
		MonthlyPayment:      amort.MonthlyPayment(in.PrincipalAmount, in.InterestRate, in.TermMonths),
		CurrentBalance:      in.PrincipalAmount,
		OriginalBalance:     in.PrincipalAmount,
		DownPayment:         in.DownPayment,
		LTV:                 &ltv,
		DTI:                 in.DTI,
		HasEscrow:           in.HasEscrow,
		MonthlyEscrowAmount: in.MonthlyEscrowAmount,
		Notes:               in.Notes,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := nextLoanNumber(tx)
		if err != nil {
			return err
		}
		loan.LoanNumber = number
		if err := tx.Create(loan).Error; err != nil {
			return err
		}
		return loanevents.Record(tx, loan.ID, loanevents.EventLoanCreated, map[string]interface{}{
			"loan_number": loan.LoanNumber,
			"principal":   loan.PrincipalAmount,
			"term_months": loan.TermMonths,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("create loan: %w", err)
	}

	log.Info().Str("loan_number", loan.LoanNumber).Str("customer_id", loan.CustomerID.String()).Msg("Created loan")

	return s.enrich(ctx, loan), nil
}

// nextLoanNumber assigns the next LN-<year>-NNNNNN number.
func nextLoanNumber(tx *gorm.DB) (string, error) {
	year := time.Now().UTC().Year()
	var count int64
	if err := tx.Model(&models.Loan{}).Where("loan_number LIKE ?", fmt.Sprintf("LN-%d%%", year)).Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("LN-%d-%06d", year, count+1), nil
}

// GetByID returns one loan, enriched with customer and property data
// unless enrich is false.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, enrich bool) (*LoanResponse, error) {
	loan, err := s.findLoan(ctx, "id = ?", id)
	if err != nil {
		return nil, err
	}
	if !enrich {
		return toResponse(loan, nil, nil), nil
	}
	return s.enrich(ctx, loan), nil
}

// GetByNumber returns one loan by its human-readable number.
func (s *Service) GetByNumber(ctx context.Context, loanNumber string) (*LoanResponse, error) {
	loan, err := s.findLoan(ctx, "loan_number = ?", loanNumber)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, loan), nil
}

func (s *Service) findLoan(ctx context.Context, query string, arg interface{}) (*models.Loan, error) {
	var loan models.Loan
	if err := s.DB.WithContext(ctx).Where(query, arg).First(&loan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return &loan, nil
}

// enrich fans out to the Customer and Property services concurrently.
// A failed or absent lookup leaves its field nil; the loan read itself
// never fails on enrichment.
func (s *Service) enrich(ctx context.Context, loan *models.Loan) *LoanResponse {
	var (
		wg       sync.WaitGroup
		customer *clients.Customer
		property *clients.Property
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		customer, err = s.Customers.GetCustomer(ctx, loan.CustomerID)
		if err != nil {
			log.Warn().Str("loan_number", loan.LoanNumber).Err(err).Msg("Customer enrichment failed")
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		property, err = s.Properties.GetProperty(ctx, loan.PropertyID)
		if err != nil {
			log.Warn().Str("loan_number", loan.LoanNumber).Err(err).Msg("Property enrichment failed")
		}
	}()
	wg.Wait()

	return toResponse(loan, customer, property)
}

// ListAll returns summary rows for every loan.
func (s *Service) ListAll(ctx context.Context) ([]LoanSummary, error) {
	return s.list(ctx, s.DB.WithContext(ctx))
}

// ListByCustomer returns summary rows for one customer's loans.
func (s *Service) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]LoanSummary, error) {
	return s.list(ctx, s.DB.WithContext(ctx).Where("customer_id = ?", customerID))
}

// ListByProperty returns summary rows for loans against one property.
func (s *Service) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]LoanSummary, error) {
	return s.list(ctx, s.DB.WithContext(ctx).Where("property_id = ?", propertyID))
}

func (s *Service) list(ctx context.Context, q *gorm.DB) ([]LoanSummary, error) {
	var loans []models.Loan
	if err := q.Order("created_at DESC").Find(&loans).Error; err != nil {
		return nil, err
	}
	summaries := make([]LoanSummary, 0, len(loans))
	for i := range loans {
		summaries = append(summaries, toSummary(&loans[i]))
	}
	return summaries, nil
}

type UpdateLoanInput struct {
	Status              *models.LoanStatus
	InterestRate        *decimal.Decimal
	MonthlyEscrowAmount *decimal.Decimal
	Notes               *string
}

// Update applies administrative changes. Status changes must follow
// the allowed-transition table; a rate change reprices the monthly
// payment over the remaining term against the current balance.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateLoanInput) (*LoanResponse, error) {
	var loan *models.Loan
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		loan, err = lockLoan(tx, id)
		if err != nil {
			return err
		}

		if in.Status != nil && *in.Status != loan.Status {
			if !loan.Status.CanTransition(*in.Status) {
				return preconditionf("Loan %s cannot move from %s to %s", loan.LoanNumber, loan.Status, *in.Status)
			}
			loan.Status = *in.Status
			if *in.Status == models.StatusCancelled || *in.Status == models.StatusPaidOff {
				now := time.Now().UTC()
				loan.ClosedAt = &now
			}
		}
		if in.InterestRate != nil {
			loan.InterestRate = *in.InterestRate
			loan.MonthlyPayment = amort.MonthlyPayment(loan.CurrentBalance, *in.InterestRate, s.remainingMonths(loan))
		}
		if in.MonthlyEscrowAmount != nil {
			loan.MonthlyEscrowAmount = *in.MonthlyEscrowAmount
		}
		if in.Notes != nil {
			loan.Notes = in.Notes
		}

		if err := tx.Save(loan).Error; err != nil {
			return err
		}
		return loanevents.Record(tx, loan.ID, loanevents.EventLoanUpdated, map[string]interface{}{
			"status": loan.Status,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, loan), nil
}

func (s *Service) remainingMonths(loan *models.Loan) int {
	if loan.MaturityDate == nil {
		return loan.TermMonths
	}
	return amort.RemainingMonths(*loan.MaturityDate, time.Now().UTC())
}

type FundLoanInput struct {
	FundingDate      time.Time
	FirstPaymentDate time.Time
	Notes            *string
}

// Fund marks the loan Funded, fixes its dates, and regenerates the
// amortization schedule. The status change and the schedule
// replacement commit in one transaction, so the loan can never be
// Funded with a partial or absent schedule.
func (s *Service) Fund(ctx context.Context, id uuid.UUID, in FundLoanInput) (*LoanResponse, error) {
	var loan *models.Loan
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		loan, err = lockLoan(tx, id)
		if err != nil {
			return err
		}

		maturity := in.FirstPaymentDate.AddDate(0, loan.TermMonths, 0)
		loan.Status = models.StatusFunded
		loan.StartDate = &in.FundingDate
		loan.FirstPaymentDate = &in.FirstPaymentDate
		loan.MaturityDate = &maturity
		if in.Notes != nil {
			loan.Notes = in.Notes
		}

		if err := replaceSchedule(tx, loan); err != nil {
			return err
		}
		if err := tx.Save(loan).Error; err != nil {
			return err
		}
		return loanevents.Record(tx, loan.ID, loanevents.EventLoanFunded, map[string]interface{}{
			"funding_date":       in.FundingDate,
			"first_payment_date": in.FirstPaymentDate,
			"maturity_date":      maturity,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("loan_number", loan.LoanNumber).Msg("Funded loan")

	return s.enrich(ctx, loan), nil
}

// replaceSchedule deletes any prior schedule and inserts a freshly
// generated one. Regeneration is destructive and idempotent.
func replaceSchedule(tx *gorm.DB, loan *models.Loan) error {
	if err := tx.Where("loan_id = ?", loan.ID).Delete(&models.AmortizationScheduleItem{}).Error; err != nil {
		return err
	}
	items := amort.BuildSchedule(loan)
	if len(items) == 0 {
		return nil
	}
	return tx.CreateInBatches(items, 100).Error
}

// Cancel soft-deletes a loan by moving it to Cancelled.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loan, err := lockLoan(tx, id)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		loan.Status = models.StatusCancelled
		loan.ClosedAt = &now
		if err := tx.Save(loan).Error; err != nil {
			return err
		}
		return loanevents.Record(tx, loan.ID, loanevents.EventLoanCancelled, map[string]interface{}{
			"loan_number": loan.LoanNumber,
		})
	})
}

// Balance derives the balance snapshot from the loan and its schedule.
// Pure read-side aggregation; nothing is mutated.
func (s *Service) Balance(ctx context.Context, id uuid.UUID) (*LoanBalance, error) {
	loan, err := s.findLoan(ctx, "id = ?", id)
	if err != nil {
		return nil, err
	}

	var items []models.AmortizationScheduleItem
	if err := s.DB.WithContext(ctx).Where("loan_id = ?", id).Order("payment_number ASC").Find(&items).Error; err != nil {
		return nil, err
	}

	balance := &LoanBalance{
		LoanID:            loan.ID,
		LoanNumber:        loan.LoanNumber,
		OriginalBalance:   loan.OriginalBalance,
		CurrentBalance:    loan.CurrentBalance,
		PrincipalPaid:     decimal.Zero,
		InterestPaid:      decimal.Zero,
		EscrowBalance:     loan.EscrowBalance,
		NextPaymentAmount: loan.MonthlyPayment,
		AsOfDate:          time.Now().UTC(),
	}
	for i := range items {
		item := &items[i]
		if item.IsPaid {
			balance.PaymentsMade++
			balance.PrincipalPaid = balance.PrincipalPaid.Add(item.PrincipalAmount)
			balance.InterestPaid = balance.InterestPaid.Add(item.InterestAmount)
			continue
		}
		balance.PaymentsRemaining++
		if balance.NextPaymentDate == nil || item.PaymentDate.Before(*balance.NextPaymentDate) {
			d := item.PaymentDate
			balance.NextPaymentDate = &d
			balance.NextPaymentAmount = item.PaymentAmount
		}
	}
	return balance, nil
}

// Schedule returns the loan's amortization table in payment order.
func (s *Service) Schedule(ctx context.Context, id uuid.UUID) ([]models.AmortizationScheduleItem, error) {
	if _, err := s.findLoan(ctx, "id = ?", id); err != nil {
		return nil, err
	}
	var items []models.AmortizationScheduleItem
	if err := s.DB.WithContext(ctx).Where("loan_id = ?", id).Order("payment_number ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ApplyPayment records the effect of a payment already settled by the
// payment service: the current balance drops by the principal portion
// and the earliest unpaid schedule item is marked paid. The split is
// trusted as supplied; the payment service owns its correctness. A
// loan with no unpaid items still gets its balance decremented.
func (s *Service) ApplyPayment(ctx context.Context, id uuid.UUID, principal, interest decimal.Decimal) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loan, err := lockLoan(tx, id)
		if err != nil {
			return err
		}

		loan.CurrentBalance = loan.CurrentBalance.Sub(principal)
		if err := tx.Save(loan).Error; err != nil {
			return err
		}

		var next models.AmortizationScheduleItem
		err = tx.Where("loan_id = ? AND is_paid = ?", id, false).Order("payment_number ASC").First(&next).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil {
			now := time.Now().UTC()
			next.IsPaid = true
			next.ActualPaymentDate = &now
			if err := tx.Save(&next).Error; err != nil {
				return err
			}
		}

		return loanevents.Record(tx, loan.ID, loanevents.EventPaymentApplied, map[string]interface{}{
			"principal": principal,
			"interest":  interest,
		})
	})
	if err != nil {
		return err
	}

	log.Info().Str("loan_id", id.String()).Str("principal", principal.String()).Msg("Applied payment")
	return nil
}

// lockLoan loads a loan for update. Postgres takes a row lock so
// concurrent payment applications against the same loan serialize;
// sqlite (tests) has no FOR UPDATE and serializes at the database.
func lockLoan(tx *gorm.DB, id uuid.UUID) (*models.Loan, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var loan models.Loan
	if err := q.Where("id = ?", id).First(&loan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return &loan, nil
}
