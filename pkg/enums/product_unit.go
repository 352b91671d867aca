package enums

import "fmt"

// ProductUnit is the unit of measure a product is sold in.
type ProductUnit string

const (
	UnitPiece ProductUnit = "pcs"
	UnitKG    ProductUnit = "kg"
	UnitLiter ProductUnit = "ltr"
	UnitBox   ProductUnit = "box"
	UnitMeter ProductUnit = "mtr"
)

var validProductUnits = []ProductUnit{
	UnitPiece,
	UnitKG,
	UnitLiter,
	UnitBox,
	UnitMeter,
}

// String implements fmt.Stringer.
func (u ProductUnit) String() string {
	return string(u)
}

// IsValid reports whether the unit is recognized.
func (u ProductUnit) IsValid() bool {
	for _, candidate := range validProductUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseProductUnit converts raw input into a ProductUnit.
func ParseProductUnit(value string) (ProductUnit, error) {
	for _, candidate := range validProductUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product unit %q", value)
}
