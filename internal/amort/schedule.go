package amort

import (
	"time"

	"loans-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BuildSchedule generates the full amortization table for a funded
// loan. The caller is responsible for replacing the persisted schedule
// with the returned items (delete-all then insert) inside one
// transaction with the funding update.
//
// Each installment splits the fixed payment into interest on the
// outstanding balance and a principal remainder. The principal portion
// is clamped to the balance so rounding drift in the fixed payment can
// never push the balance negative; the loop stops as soon as the
// balance reaches zero, which may be before the nominal term.
func BuildSchedule(loan *models.Loan) []models.AmortizationScheduleItem {
	balance := loan.PrincipalAmount
	monthlyRate := loan.InterestRate.Div(hundred).Div(twelve)

	paymentDate := time.Now().UTC().AddDate(0, 1, 0)
	if loan.FirstPaymentDate != nil {
		paymentDate = *loan.FirstPaymentDate
	}

	totalPayment := loan.MonthlyPayment.Add(loan.MonthlyEscrowAmount)
	cumulativeInterest := decimal.Zero
	cumulativePrincipal := decimal.Zero

	items := make([]models.AmortizationScheduleItem, 0, loan.TermMonths)
	for i := 1; i <= loan.TermMonths && balance.GreaterThan(decimal.Zero); i++ {
		interest := balance.Mul(monthlyRate).Round(2)
		principal := loan.MonthlyPayment.Sub(interest)
		if principal.GreaterThan(balance) {
			principal = balance
		}
		balance = balance.Sub(principal)

		cumulativeInterest = cumulativeInterest.Add(interest)
		cumulativePrincipal = cumulativePrincipal.Add(principal)

		remaining := balance
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}

		items = append(items, models.AmortizationScheduleItem{
			ID:                  uuid.New(),
			LoanID:              loan.ID,
			PaymentNumber:       i,
			PaymentDate:         paymentDate,
			PaymentAmount:       totalPayment,
			PrincipalAmount:     principal,
			InterestAmount:      interest,
			EscrowAmount:        loan.MonthlyEscrowAmount,
			RemainingBalance:    remaining,
			CumulativeInterest:  cumulativeInterest,
			CumulativePrincipal: cumulativePrincipal,
			IsPaid:              false,
		})
		paymentDate = paymentDate.AddDate(0, 1, 0)
	}
	return items
}
