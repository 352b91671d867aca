package enums

import "fmt"

// SequenceName identifies a named monotonic counter.
type SequenceName string

const (
	SequenceSaleNumber     SequenceName = "sale_number"
	SequenceCustomerNumber SequenceName = "customer_number"
)

var validSequenceNames = []SequenceName{
	SequenceSaleNumber,
	SequenceCustomerNumber,
}

// String implements fmt.Stringer.
func (s SequenceName) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SequenceName.
func (s SequenceName) IsValid() bool {
	for _, candidate := range validSequenceNames {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSequenceName converts raw input into a SequenceName.
func ParseSequenceName(value string) (SequenceName, error) {
	for _, candidate := range validSequenceNames {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sequence name %q", value)
}
