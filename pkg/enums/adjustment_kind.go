package enums

import "fmt"

// AdjustmentKind maps to the inventory_adjustment_kind enum in Postgres.
type AdjustmentKind string

const (
	AdjustmentKindManualSet        AdjustmentKind = "manual_set"
	AdjustmentKindDonationApproved AdjustmentKind = "donation_approved"
	AdjustmentKindRequestApproved  AdjustmentKind = "request_approved"
)

var validAdjustmentKinds = []AdjustmentKind{
	AdjustmentKindManualSet,
	AdjustmentKindDonationApproved,
	AdjustmentKindRequestApproved,
}

// IsValid reports whether the value matches the canonical adjustment kind enum.
func (k AdjustmentKind) IsValid() bool {
	for _, candidate := range validAdjustmentKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseAdjustmentKind converts raw input into AdjustmentKind.
func ParseAdjustmentKind(value string) (AdjustmentKind, error) {
	for _, candidate := range validAdjustmentKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid adjustment kind %q", value)
}
