package transform

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

// createTestParameters returns a two-loan household used across the tests.
func createTestParameters() domain.UserParameters {
	return domain.UserParameters{
		StartDate:             date(2024, 1, 1),
		SimulationYears:       10,
		CashBalance:           decimal.NewFromInt(20000),
		AnnualSalary:          decimal.NewFromInt(90000),
		MonthlyLivingExpenses: decimal.NewFromInt(3000),
		Loans: domain.NewLoanSet(
			domain.Loan{ID: "home", Principal: decimal.NewFromInt(400000), InterestRate: decimal.NewFromFloat(0.06), Payment: decimal.NewFromInt(3000)},
			domain.Loan{ID: "car", Principal: decimal.NewFromInt(20000), InterestRate: decimal.NewFromFloat(0.08), Payment: decimal.NewFromInt(500)},
		),
		RetirementBalance:          decimal.NewFromInt(50000),
		RetirementContributionRate: decimal.NewFromFloat(0.11),
		TaxRate:                    decimal.NewFromFloat(0.3),
	}
}

func TestApplyTransitions_NilBase(t *testing.T) {
	_, err := ApplyTransitions(nil, nil)
	if err == nil {
		t.Error("Expected error for nil base, got nil")
	}
}

func TestApplyTransitions_EmptyReturnsCopy(t *testing.T) {
	base := createTestParameters()

	result, err := ApplyTransitions(&base, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result == &base {
		t.Error("Expected a copy, got same instance")
	}

	result.Loans.Items[0].Payment = decimal.NewFromInt(1)
	if !base.Loans.Items[0].Payment.Equal(decimal.NewFromInt(3000)) {
		t.Error("Editing the result modified the base")
	}
}

func TestApplyTransitions_ChronologicalOrder(t *testing.T) {
	base := createTestParameters()

	// listed out of order; the later date must win
	transitions := []domain.Transition{
		{ID: "b", EffectiveDate: date(2027, 1, 1), Changes: domain.ParameterPatch{AnnualSalary: dec(120000)}},
		{ID: "a", EffectiveDate: date(2025, 1, 1), Changes: domain.ParameterPatch{AnnualSalary: dec(100000), TaxRate: dec(0.32)}},
	}

	result, err := ApplyTransitions(&base, transitions)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !result.AnnualSalary.Equal(decimal.NewFromInt(120000)) {
		t.Errorf("Expected salary 120000, got %s", result.AnnualSalary)
	}
	if !result.TaxRate.Equal(decimal.NewFromFloat(0.32)) {
		t.Errorf("Expected tax rate 0.32, got %s", result.TaxRate)
	}
}

func TestApplyTransitions_ValidationFailure(t *testing.T) {
	base := createTestParameters()
	transitions := []domain.Transition{
		{ID: "refi", Label: "Refinance boat", EffectiveDate: date(2025, 1, 1), Changes: domain.ParameterPatch{
			LoanUpdates: map[string]domain.LoanPatch{"boat": {Payment: dec(100)}},
		}},
	}

	_, err := ApplyTransitions(&base, transitions)
	if err == nil {
		t.Fatal("Expected validation error for unknown loan, got nil")
	}

	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TransitionError, got %T", err)
	}
	if te.Transition != "Refinance boat" {
		t.Errorf("Expected transition name 'Refinance boat', got %q", te.Transition)
	}
}

func TestValidateTransition(t *testing.T) {
	base := createTestParameters()

	tests := []struct {
		name    string
		t       domain.Transition
		wantErr bool
	}{
		{"valid salary change", domain.Transition{EffectiveDate: date(2025, 1, 1), Changes: domain.ParameterPatch{AnnualSalary: dec(1)}}, false},
		{"missing date", domain.Transition{Changes: domain.ParameterPatch{AnnualSalary: dec(1)}}, true},
		{"rate at -100%", domain.Transition{EffectiveDate: date(2025, 1, 1), Changes: domain.ParameterPatch{InvestmentReturnRate: dec(-1)}}, true},
		{"negative expenses", domain.Transition{EffectiveDate: date(2025, 1, 1), Changes: domain.ParameterPatch{MonthlyLivingExpenses: dec(-5)}}, true},
		{"known loan", domain.Transition{EffectiveDate: date(2025, 1, 1), Changes: domain.ParameterPatch{
			LoanUpdates: map[string]domain.LoanPatch{"car": {Payment: dec(900)}},
		}}, false},
		{"loan added by the same transition", domain.Transition{EffectiveDate: date(2025, 1, 1), Changes: domain.ParameterPatch{
			Loans:       loanSetPtr(domain.NewLoanSet(domain.Loan{ID: "boat"})),
			LoanUpdates: map[string]domain.LoanPatch{"boat": {Payment: dec(100)}},
		}}, false},
		{"legacy account", domain.Transition{EffectiveDate: date(2025, 1, 1), Changes: domain.ParameterPatch{
			AccountUpdates: map[string]domain.AccountPatch{domain.LegacyAccountID: {ContributionRate: dec(0.12)}},
		}}, false},
		{"unknown account", domain.Transition{EffectiveDate: date(2025, 1, 1), Changes: domain.ParameterPatch{
			AccountUpdates: map[string]domain.AccountPatch{"super": {ContributionRate: dec(0.12)}},
		}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(&base, tt.t)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTransition() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func loanSetPtr(s domain.LoanSet) *domain.LoanSet {
	return &s
}

func TestTransitionError(t *testing.T) {
	err := NewTransitionError("raise", "apply", "test reason", nil)

	expectedMsg := "transition raise (apply): test reason"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestTransitionError_WithWrappedError(t *testing.T) {
	innerErr := fmt.Errorf("inner error")
	err := NewTransitionError("raise", "validate", "validation failed", innerErr)

	expectedMsg := "transition raise (validate): validation failed: inner error"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
	if !errors.Is(err, innerErr) {
		t.Error("Expected wrapped error to be reachable with errors.Is")
	}
}
