package gaffer

import (
	"encoding/json"
	"fmt"
)

// InvalidBehavior controls how Get reacts when a lookup lands in the type
// index and the outcome is not a single clean match.
type InvalidBehavior int

const (
	// ErrorOnMultiple is the default: a type query that finds more than one
	// candidate fails with MultipleServicesError, and an unknown identifier
	// fails with NotFoundError.
	ErrorOnMultiple InvalidBehavior = iota

	// CollectAll returns every candidate of a type query as a []any instead
	// of failing on multiplicity.
	CollectAll

	// NilOnMissing returns nil instead of NotFoundError when the identifier
	// resolves to nothing at all. Other failures still propagate.
	NilOnMissing
)

// String returns the string representation of the behavior.
func (b InvalidBehavior) String() string {
	switch b {
	case ErrorOnMultiple:
		return "ErrorOnMultiple"
	case CollectAll:
		return "CollectAll"
	case NilOnMissing:
		return "NilOnMissing"
	default:
		return fmt.Sprintf("Unknown(%d)", int(b))
	}
}

// IsValid checks if the behavior is one of the defined values.
func (b InvalidBehavior) IsValid() bool {
	return b >= ErrorOnMultiple && b <= NilOnMissing
}

// MarshalText implements encoding.TextMarshaler.
func (b InvalidBehavior) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *InvalidBehavior) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ErrorOnMultiple", "error-on-multiple":
		*b = ErrorOnMultiple
	case "CollectAll", "collect-all":
		*b = CollectAll
	case "NilOnMissing", "nil-on-missing":
		*b = NilOnMissing
	default:
		return fmt.Errorf("invalid behavior: %q", string(text))
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (b InvalidBehavior) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *InvalidBehavior) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	return b.UnmarshalText([]byte(s))
}
