// Package dateutil converts annual rates and payment frequencies into
// per-period figures and advances calendar dates by simulation periods.
package dateutil

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Interval is a simulation period length or a payment frequency.
type Interval string

const (
	Week      Interval = "week"
	Fortnight Interval = "fortnight"
	Month     Interval = "month"
	Year      Interval = "year"
)

// DefaultInterval is used wherever an interval is missing or unrecognized.
const DefaultInterval = Month

// DaysPerYear is the average Gregorian year used for fractional-year differences.
const DaysPerYear = 365.25

// ParseInterval normalizes the accepted spellings ("weekly", "monthly", "annual", ...).
// The second return value reports whether the input was recognized; unrecognized
// input yields DefaultInterval.
func ParseInterval(s string) (Interval, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "week", "weekly":
		return Week, true
	case "fortnight", "fortnightly", "biweekly":
		return Fortnight, true
	case "month", "monthly":
		return Month, true
	case "year", "yearly", "annual", "annually":
		return Year, true
	default:
		return DefaultInterval, false
	}
}

// Normalize returns the canonical form of i, defaulting to monthly.
func (i Interval) Normalize() Interval {
	n, _ := ParseInterval(string(i))
	return n
}

// Valid reports whether i is a recognized interval spelling.
func (i Interval) Valid() bool {
	_, ok := ParseInterval(string(i))
	return ok
}

// PeriodsPerYear returns how many periods of the interval fit in a year.
// Unrecognized intervals count as monthly.
func PeriodsPerYear(interval Interval) int {
	switch interval.Normalize() {
	case Week:
		return 52
	case Fortnight:
		return 26
	case Year:
		return 1
	default:
		return 12
	}
}

// AnnualRateToPeriodRate converts an effective annual rate into the
// compounding-consistent rate for one period: (1 + annual)^(1/n) - 1.
func AnnualRateToPeriodRate(annualRate decimal.Decimal, interval Interval) decimal.Decimal {
	n := PeriodsPerYear(interval)
	if n == 1 {
		return annualRate
	}
	r, _ := annualRate.Float64()
	return decimal.NewFromFloat(math.Pow(1+r, 1/float64(n)) - 1)
}

// PaymentToPeriod converts an amount paid at sourceFrequency into the
// equivalent amount for one period of targetInterval. The amount is first
// annualized, then divided by the target's periods per year.
func PaymentToPeriod(amount decimal.Decimal, sourceFrequency, targetInterval Interval) decimal.Decimal {
	source := PeriodsPerYear(sourceFrequency)
	target := PeriodsPerYear(targetInterval)
	if source == target {
		return amount
	}
	annual := amount.Mul(decimal.NewFromInt(int64(source)))
	return annual.Div(decimal.NewFromInt(int64(target)))
}

// AdvanceDate moves date forward by one period. Month and year steps clamp
// to the last day of the target month, so Jan 31 advances to Feb 28/29
// instead of rolling into March.
func AdvanceDate(date time.Time, interval Interval) time.Time {
	return AddPeriods(date, interval, 1)
}

// AddPeriods moves date forward by n periods measured from date itself.
// Computing every period from the same anchor keeps a start date of the 31st
// on the 31st (or the month's last day) rather than drifting to the 28th.
func AddPeriods(date time.Time, interval Interval, n int) time.Time {
	switch interval.Normalize() {
	case Week:
		return date.AddDate(0, 0, 7*n)
	case Fortnight:
		return date.AddDate(0, 0, 14*n)
	case Year:
		return addMonthsClamped(date, 12*n)
	default:
		return addMonthsClamped(date, n)
	}
}

func addMonthsClamped(date time.Time, months int) time.Time {
	y, m, d := date.Date()
	total := int(m) - 1 + months
	year := y + floorDiv(total, 12)
	month := time.Month(total - floorDiv(total, 12)*12 + 1)
	if last := DaysIn(year, month); d > last {
		d = last
	}
	h, mi, s := date.Clock()
	return time.Date(year, month, d, h, mi, s, date.Nanosecond(), date.Location())
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// YearsBetween returns the fractional number of years from start to end
// using a 365.25-day year. The result is negative when end precedes start.
func YearsBetween(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24 / DaysPerYear
}

// WholeYearsBetween returns the number of complete calendar years from start
// to end, the way an age is counted.
func WholeYearsBetween(start, end time.Time) int {
	years := end.Year() - start.Year()
	if end.Month() < start.Month() || (end.Month() == start.Month() && end.Day() < start.Day()) {
		years--
	}
	return years
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
