package enums

import "fmt"

// AIQueryCategory labels persisted assistant questions.
type AIQueryCategory string

const (
	AIQueryCategoryEligibility  AIQueryCategory = "ELIGIBILITY"
	AIQueryCategoryDonationInfo AIQueryCategory = "DONATION_INFO"
	AIQueryCategoryRequestHelp  AIQueryCategory = "REQUEST_HELP"
	AIQueryCategorySystemFAQ    AIQueryCategory = "SYSTEM_FAQ"
	AIQueryCategoryOther        AIQueryCategory = "OTHER"
)

var validAIQueryCategories = []AIQueryCategory{
	AIQueryCategoryEligibility,
	AIQueryCategoryDonationInfo,
	AIQueryCategoryRequestHelp,
	AIQueryCategorySystemFAQ,
	AIQueryCategoryOther,
}

// IsValid reports whether the value is a known AIQueryCategory.
func (c AIQueryCategory) IsValid() bool {
	for _, candidate := range validAIQueryCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseAIQueryCategory converts raw input into an AIQueryCategory.
func ParseAIQueryCategory(value string) (AIQueryCategory, error) {
	for _, candidate := range validAIQueryCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ai query category %q", value)
}
