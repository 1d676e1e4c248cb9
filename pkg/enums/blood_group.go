package enums

import (
	"fmt"
	"strings"
)

// BloodGroup is one of the eight canonical ABO/Rh combinations.
type BloodGroup string

const (
	BloodGroupAPos  BloodGroup = "A+"
	BloodGroupANeg  BloodGroup = "A-"
	BloodGroupBPos  BloodGroup = "B+"
	BloodGroupBNeg  BloodGroup = "B-"
	BloodGroupABPos BloodGroup = "AB+"
	BloodGroupABNeg BloodGroup = "AB-"
	BloodGroupOPos  BloodGroup = "O+"
	BloodGroupONeg  BloodGroup = "O-"
)

var validBloodGroups = []BloodGroup{
	BloodGroupAPos,
	BloodGroupANeg,
	BloodGroupBPos,
	BloodGroupBNeg,
	BloodGroupABPos,
	BloodGroupABNeg,
	BloodGroupOPos,
	BloodGroupONeg,
}

// BloodGroups returns the canonical groups in declaration order.
func BloodGroups() []BloodGroup {
	return append([]BloodGroup(nil), validBloodGroups...)
}

// String implements fmt.Stringer.
func (b BloodGroup) String() string {
	return string(b)
}

// IsValid reports whether the value is a canonical blood group.
func (b BloodGroup) IsValid() bool {
	for _, candidate := range validBloodGroups {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBloodGroup converts raw input into a BloodGroup, ignoring case and surrounding space.
func ParseBloodGroup(value string) (BloodGroup, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validBloodGroups {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid blood group %q", value)
}
