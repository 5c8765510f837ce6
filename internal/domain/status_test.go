package domain

import "testing"

func TestNormalizeImageStatusCode(t *testing.T) {
	cases := map[string]ImageStatusCode{
		"re-edit suggested": ImageStatusReEditSuggested,
		" REVIEW_PENDING ":  ImageStatusReviewPending,
		"client.selected":   ImageStatusClientSelected,
		"approved":          ImageStatusApproved,
		"re_edit__done":     ImageStatusReEditDone,
		"":                  "",
	}
	for input, want := range cases {
		if got := NormalizeImageStatusCode(input); got != want {
			t.Fatalf("normalize %q: want %q got %q", input, want, got)
		}
	}
}

func TestImageStatusCodeValidity(t *testing.T) {
	for _, code := range ImageStatusCodes() {
		if !code.Valid() {
			t.Fatalf("expected %s to be valid", code)
		}
	}
	if ImageStatusCode("ARCHIVED").Valid() {
		t.Fatalf("expected unknown code to be invalid")
	}
	if !ImageStatusDiscarded.Terminal() || ImageStatusApproved.Terminal() {
		t.Fatalf("only DISCARDED is terminal")
	}
}
