package transform

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/shopspring/decimal"
)

// ApplyPatch returns a copy of base with every non-nil field of patch
// applied. Fields the patch leaves nil are untouched, and base itself is
// never modified.
func ApplyPatch(base domain.UserParameters, patch domain.ParameterPatch) domain.UserParameters {
	out := base.Clone()

	// Income
	setDecimal(&out.AnnualSalary, patch.AnnualSalary)
	if patch.SalaryFrequency != nil {
		out.SalaryFrequency = *patch.SalaryFrequency
	}
	if patch.IncomeSources != nil {
		out.IncomeSources = make(map[string]domain.IncomeSource, len(patch.IncomeSources))
		for name, source := range patch.IncomeSources {
			out.IncomeSources[name] = source.Clone()
		}
	}

	// Expenses
	setDecimal(&out.MonthlyLivingExpenses, patch.MonthlyLivingExpenses)
	setDecimal(&out.MonthlyHousingCost, patch.MonthlyHousingCost)
	if patch.Expenses != nil {
		out.Expenses = make(map[string]domain.ExpenseItem, len(patch.Expenses))
		for name, item := range patch.Expenses {
			out.Expenses[name] = item.Clone()
		}
	}

	// Loans
	setDecimal(&out.LoanInterestRate, patch.LoanInterestRate)
	setDecimal(&out.LoanPayment, patch.LoanPayment)
	if patch.LoanPaymentFrequency != nil {
		out.LoanPaymentFrequency = *patch.LoanPaymentFrequency
	}
	setBool(&out.HasOffset, patch.HasOffset)
	setBool(&out.AutoPayout, patch.AutoPayout)
	setBool(&out.DebtRecycling, patch.DebtRecycling)
	if patch.Loans != nil {
		out.Loans = patch.Loans.Clone()
	}
	for id, update := range patch.LoanUpdates {
		applyLoanPatch(&out, id, update)
	}

	// Retirement accounts
	setDecimal(&out.RetirementContributionRate, patch.RetirementContributionRate)
	setDecimal(&out.RetirementReturnRate, patch.RetirementReturnRate)
	for id, update := range patch.AccountUpdates {
		applyAccountPatch(&out, id, update)
	}

	// Investments, tax and goals
	setDecimal(&out.Investment.MonthlyContribution, patch.InvestmentMonthlyContribution)
	setDecimal(&out.Investment.AnnualReturnRate, patch.InvestmentReturnRate)
	setDecimal(&out.TaxRate, patch.TaxRate)
	setDecimal(&out.Retirement.DesiredAnnualIncome, patch.DesiredAnnualIncome)
	if patch.TargetRetirementAge != nil {
		out.Retirement.TargetAge = *patch.TargetRetirementAge
	}

	return out
}

// applyLoanPatch edits the loan with the given id. In the single-loan shape
// the legacy id addresses the flat loan fields. Unknown ids are ignored.
func applyLoanPatch(p *domain.UserParameters, id string, update domain.LoanPatch) {
	if !p.UsesLoanList() {
		if id != domain.LegacyLoanID {
			return
		}
		setDecimal(&p.LoanInterestRate, update.InterestRate)
		setDecimal(&p.LoanPayment, update.Payment)
		if update.PaymentFrequency != nil {
			p.LoanPaymentFrequency = *update.PaymentFrequency
		}
		setBool(&p.HasOffset, update.HasOffset)
		setBool(&p.AutoPayout, update.AutoPayout)
		setBool(&p.DebtRecycling, update.DebtRecycling)
		return
	}

	for i := range p.Loans.Items {
		loan := &p.Loans.Items[i]
		if loan.ID != id {
			continue
		}
		setDecimal(&loan.InterestRate, update.InterestRate)
		setDecimal(&loan.Payment, update.Payment)
		if update.PaymentFrequency != nil {
			loan.PaymentFrequency = *update.PaymentFrequency
		}
		setBool(&loan.HasOffset, update.HasOffset)
		setBool(&loan.AutoPayout, update.AutoPayout)
		setBool(&loan.DebtRecycling, update.DebtRecycling)
	}
}

func applyAccountPatch(p *domain.UserParameters, id string, update domain.AccountPatch) {
	if !p.UsesAccountList() {
		if id != domain.LegacyAccountID {
			return
		}
		setDecimal(&p.RetirementContributionRate, update.ContributionRate)
		setDecimal(&p.RetirementReturnRate, update.ReturnRate)
		return
	}

	for i := range p.RetirementAccounts.Items {
		account := &p.RetirementAccounts.Items[i]
		if account.ID != id {
			continue
		}
		setDecimal(&account.ContributionRate, update.ContributionRate)
		setDecimal(&account.ReturnRate, update.ReturnRate)
	}
}

func setDecimal(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// DescribeChanges renders the fields a patch sets as a sorted
// "field: value" list, e.g. "annual_salary: 95000, tax_rate: 0.32".
func DescribeChanges(patch domain.ParameterPatch) string {
	var parts []string
	describeFields(reflect.ValueOf(patch), "", &parts)
	if len(parts) == 0 {
		return "no changes"
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	loanSetType = reflect.TypeOf(domain.LoanSet{})

	// per-entity patches are described field by field
	nestedPatchTypes = map[reflect.Type]bool{
		reflect.TypeOf(domain.LoanPatch{}):    true,
		reflect.TypeOf(domain.AccountPatch{}): true,
	}
)

func describeFields(v reflect.Value, prefix string, parts *[]string) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		name := prefix + fieldName(t.Field(i))

		switch field.Kind() {
		case reflect.Ptr:
			if field.IsNil() {
				continue
			}
			*parts = append(*parts, fmt.Sprintf("%s: %s", name, describeValue(field.Elem())))
		case reflect.Map:
			if field.IsNil() {
				continue
			}
			if nestedPatchTypes[field.Type().Elem()] {
				for _, k := range field.MapKeys() {
					describeFields(field.MapIndex(k), fmt.Sprintf("%s.%s.", name, k.String()), parts)
				}
				continue
			}
			*parts = append(*parts, fmt.Sprintf("%s: %s", name, describeKeys(field)))
		}
	}
}

func describeValue(v reflect.Value) string {
	switch {
	case v.Type() == decimalType:
		return v.Interface().(decimal.Decimal).String()
	case v.Type() == loanSetType:
		set := v.Interface().(domain.LoanSet)
		ids := make([]string, 0, set.Len())
		for _, loan := range set.Items {
			ids = append(ids, loan.ID)
		}
		return "[" + strings.Join(ids, " ") + "]"
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

func describeKeys(m reflect.Value) string {
	keys := make([]string, 0, m.Len())
	for _, k := range m.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return "[" + strings.Join(keys, " ") + "]"
}

func fieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name
	}
	return f.Name
}
