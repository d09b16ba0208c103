package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLoanType(t *testing.T) {
	for _, s := range []string{"Conventional", "FHA", "VA", "USDA", "Jumbo", "ARM", "InterestOnly"} {
		lt, ok := ParseLoanType(s)
		assert.True(t, ok, s)
		assert.Equal(t, LoanType(s), lt)
	}
	_, ok := ParseLoanType("Balloon")
	assert.False(t, ok)
}

func TestParseLoanStatus(t *testing.T) {
	_, ok := ParseLoanStatus("Delinquent")
	assert.True(t, ok)
	_, ok = ParseLoanStatus("Vaporized")
	assert.False(t, ok)
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to LoanStatus }{
		{StatusPending, StatusApproved},
		{StatusApproved, StatusFunded},
		{StatusFunded, StatusActive},
		{StatusActive, StatusDelinquent},
		{StatusDelinquent, StatusActive},
		{StatusActive, StatusPaidOff},
		{StatusDefault, StatusForeclosure},
		{StatusPending, StatusCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct{ from, to LoanStatus }{
		{StatusPending, StatusActive},
		{StatusPending, StatusFunded},
		{StatusPaidOff, StatusActive},
		{StatusCancelled, StatusPending},
		{StatusForeclosure, StatusActive},
	}
	for _, tc := range denied {
		assert.False(t, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}

	// Same-status writes are always accepted.
	assert.True(t, StatusActive.CanTransition(StatusActive))
}
