package domain

import "strings"

var imageStatusCodes = []ImageStatusCode{
	ImageStatusReviewPending,
	ImageStatusReEditSuggested,
	ImageStatusReEditDone,
	ImageStatusApproved,
	ImageStatusClientSelected,
	ImageStatusDiscarded,
}

// ImageStatusCodes returns the fixed image status catalog codes in review order.
func ImageStatusCodes() []ImageStatusCode {
	out := make([]ImageStatusCode, len(imageStatusCodes))
	copy(out, imageStatusCodes)
	return out
}

// Valid reports whether the code belongs to the fixed image status set.
func (c ImageStatusCode) Valid() bool {
	for _, known := range imageStatusCodes {
		if c == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further review transitions exist for the code.
func (c ImageStatusCode) Terminal() bool {
	return c == ImageStatusDiscarded
}

// NormalizeImageStatusCode coerces labels such as "re-edit suggested" into the
// canonical upper snake case code. Unknown values are returned normalised but
// will fail Valid.
func NormalizeImageStatusCode(input string) ImageStatusCode {
	return ImageStatusCode(NormalizeCode(input))
}

// NormalizeDeliveryStatusCode applies the same normalisation to delivery codes.
func NormalizeDeliveryStatusCode(input string) string {
	return NormalizeCode(input)
}

// NormalizeCode upper-cases the input and joins words with underscores.
func NormalizeCode(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	fields := strings.FieldsFunc(strings.ToUpper(trimmed), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '.'
	})
	return strings.Join(fields, "_")
}
