package transform

import (
	"sort"
	"strings"
	"time"

	"github.com/rgehrsitz/fincast/internal/domain"
)

// BaseLabel names the window before any transition takes effect.
const BaseLabel = "Base"

// SortTransitions returns the transitions in effective-date order. The sort
// is stable, so transitions sharing a date keep their listed order and the
// later one wins on overlapping fields.
func SortTransitions(transitions []domain.Transition) []domain.Transition {
	sorted := make([]domain.Transition, len(transitions))
	copy(sorted, transitions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveDate.Before(sorted[j].EffectiveDate)
	})
	return sorted
}

// ResolveParametersForDate returns the base parameters with every transition
// effective on or before date applied in chronological order.
func ResolveParametersForDate(date time.Time, cfg *domain.SimulationConfiguration) domain.UserParameters {
	params := cfg.BaseParameters.Clone()
	for _, t := range SortTransitions(cfg.Transitions) {
		if t.EffectiveDate.After(date) {
			break
		}
		params = ApplyPatch(params, t.Changes)
	}
	return params
}

// Resolver answers ResolveParametersForDate for many dates of one
// configuration. It applies each transition once up front and keeps a
// snapshot per prefix of the sorted transition list.
type Resolver struct {
	transitions []domain.Transition
	snapshots   []domain.UserParameters // snapshots[k]: base with the first k transitions applied
}

// NewResolver prepares a resolver for cfg.
func NewResolver(cfg *domain.SimulationConfiguration) *Resolver {
	r := &Resolver{transitions: SortTransitions(cfg.Transitions)}
	r.snapshots = make([]domain.UserParameters, 0, len(r.transitions)+1)

	current := cfg.BaseParameters.Clone()
	r.snapshots = append(r.snapshots, current)
	for _, t := range r.transitions {
		current = ApplyPatch(current, t.Changes)
		r.snapshots = append(r.snapshots, current)
	}
	return r
}

// Transitions returns the transitions in the order they are applied.
func (r *Resolver) Transitions() []domain.Transition {
	out := make([]domain.Transition, len(r.transitions))
	copy(out, r.transitions)
	return out
}

// AppliedCount returns how many transitions are in effect at date.
func (r *Resolver) AppliedCount(date time.Time) int {
	return sort.Search(len(r.transitions), func(i int) bool {
		return r.transitions[i].EffectiveDate.After(date)
	})
}

// ParametersAt returns the effective parameters at date. The result is
// shared between calls and must be treated as read-only.
func (r *Resolver) ParametersAt(date time.Time) *domain.UserParameters {
	return &r.snapshots[r.AppliedCount(date)]
}

// BuildParameterPeriods splits [start, end) of the base horizon into
// windows, one per change of effective parameters. Transitions sharing a date
// open a single window; transitions on or before the start date shape the
// first window and transitions on or after the end are ignored.
func BuildParameterPeriods(cfg *domain.SimulationConfiguration) []domain.ParameterPeriod {
	base := cfg.BaseParameters
	start, end := base.StartDate, base.EndDate()
	if !end.After(start) {
		return nil
	}

	sorted := SortTransitions(cfg.Transitions)
	current := base.Clone()
	var labels, ids []string
	i := 0
	for i < len(sorted) && !sorted[i].EffectiveDate.After(start) {
		current = ApplyPatch(current, sorted[i].Changes)
		labels = append(labels, transitionLabel(sorted[i]))
		ids = append(ids, sorted[i].ID)
		i++
	}

	var periods []domain.ParameterPeriod
	cursor := start
	for i < len(sorted) && sorted[i].EffectiveDate.Before(end) {
		date := sorted[i].EffectiveDate
		periods = append(periods, newPeriod(cursor, date, labels, ids, current))

		labels, ids = nil, nil
		for i < len(sorted) && sorted[i].EffectiveDate.Equal(date) {
			current = ApplyPatch(current, sorted[i].Changes)
			labels = append(labels, transitionLabel(sorted[i]))
			ids = append(ids, sorted[i].ID)
			i++
		}
		cursor = date
	}
	return append(periods, newPeriod(cursor, end, labels, ids, current))
}

func newPeriod(start, end time.Time, labels, ids []string, params domain.UserParameters) domain.ParameterPeriod {
	label := BaseLabel
	if len(labels) > 0 {
		label = strings.Join(labels, " + ")
	}
	return domain.ParameterPeriod{
		Start:         start,
		End:           end,
		Label:         label,
		TransitionIDs: ids,
		Parameters:    params.Clone(),
	}
}

func transitionLabel(t domain.Transition) string {
	if t.Label != "" {
		return t.Label
	}
	if t.ID != "" {
		return t.ID
	}
	return t.EffectiveDate.Format("2006-01-02")
}
