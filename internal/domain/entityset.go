package domain

import (
	"bytes"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// EntitySet is a list whose presence is significant: a set that was supplied
// as an empty list is different from one that was never supplied. The codecs
// below keep that distinction through JSON and YAML round trips.
type EntitySet[T any] struct {
	Present bool
	Items   []T
}

// LoanSet holds the multi-loan input shape.
type LoanSet = EntitySet[Loan]

// AccountSet holds the multi-account input shape.
type AccountSet = EntitySet[RetirementAccount]

// NewLoanSet returns a present loan set; NewLoanSet() is an explicit empty list.
func NewLoanSet(loans ...Loan) LoanSet {
	return LoanSet{Present: true, Items: append([]Loan{}, loans...)}
}

// NewAccountSet returns a present account set.
func NewAccountSet(accounts ...RetirementAccount) AccountSet {
	return AccountSet{Present: true, Items: append([]RetirementAccount{}, accounts...)}
}

// Len returns the number of items.
func (s EntitySet[T]) Len() int {
	return len(s.Items)
}

// Clone copies the item slice so the copy can be edited independently.
func (s EntitySet[T]) Clone() EntitySet[T] {
	if !s.Present {
		return EntitySet[T]{}
	}
	items := make([]T, len(s.Items))
	copy(items, s.Items)
	return EntitySet[T]{Present: true, Items: items}
}

// IsZero lets yaml omitempty drop absent sets while keeping explicit empty ones.
func (s EntitySet[T]) IsZero() bool {
	return !s.Present
}

// MarshalJSON writes null for an absent set and [] for an empty present one.
func (s EntitySet[T]) MarshalJSON() ([]byte, error) {
	if !s.Present {
		return []byte("null"), nil
	}
	items := s.Items
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

// UnmarshalJSON marks the set present for any array value, including [].
func (s *EntitySet[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = EntitySet[T]{}
		return nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	*s = EntitySet[T]{Present: true, Items: items}
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (s EntitySet[T]) MarshalYAML() (interface{}, error) {
	if !s.Present {
		return nil, nil
	}
	if s.Items == nil {
		return []T{}, nil
	}
	return s.Items, nil
}

// UnmarshalYAML mirrors UnmarshalJSON.
func (s *EntitySet[T]) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		*s = EntitySet[T]{}
		return nil
	}
	var items []T
	if err := value.Decode(&items); err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	*s = EntitySet[T]{Present: true, Items: items}
	return nil
}
