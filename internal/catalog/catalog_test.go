package catalog

import (
	"errors"
	"testing"

	"github.com/goliatone/go-albums/internal/domain"
	"github.com/google/uuid"
)

func steps(codes ...string) []EventDeliveryStatus {
	out := make([]EventDeliveryStatus, 0, len(codes))
	for idx, code := range codes {
		out = append(out, EventDeliveryStatus{ID: uuid.New(), Code: code, Step: idx + 1})
	}
	return out
}

func TestNewSortsByStep(t *testing.T) {
	entries := steps("UPLOADED", "REVIEWED", "PUBLISHED")
	entries[0], entries[2] = entries[2], entries[0]

	cat, err := New(entries, DefaultImageStatuses())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got := cat.DeliveryStatuses()
	for idx, entry := range got {
		if entry.Step != idx+1 {
			t.Fatalf("entry %d has step %d", idx, entry.Step)
		}
	}
	if cat.Published().Code != "PUBLISHED" || cat.Published().Step != 3 {
		t.Fatalf("unexpected published entry %+v", cat.Published())
	}
	if cat.MaxStep() != 3 {
		t.Fatalf("expected max step 3, got %d", cat.MaxStep())
	}
	second, ok := cat.DeliveryByStep(2)
	if !ok || second.Code != "REVIEWED" {
		t.Fatalf("DeliveryByStep(2) = %+v, %v", second, ok)
	}
	if _, ok := cat.DeliveryByStep(4); ok {
		t.Fatalf("expected no entry at step 4")
	}
}

func TestNewRejectsInvalidCatalogs(t *testing.T) {
	cases := []struct {
		name    string
		entries func() []EventDeliveryStatus
		want    error
	}{
		{
			name:    "empty",
			entries: func() []EventDeliveryStatus { return nil },
			want:    ErrDeliveryStatusesRequired,
		},
		{
			name: "zero step",
			entries: func() []EventDeliveryStatus {
				e := steps("UPLOADED", "PUBLISHED")
				e[0].Step = 0
				return e
			},
			want: ErrStepInvalid,
		},
		{
			name: "duplicate step",
			entries: func() []EventDeliveryStatus {
				e := steps("UPLOADED", "REVIEWED", "PUBLISHED")
				e[1].Step = 1
				return e
			},
			want: ErrStepDuplicate,
		},
		{
			name: "gap",
			entries: func() []EventDeliveryStatus {
				e := steps("UPLOADED", "PUBLISHED")
				e[1].Step = 3
				return e
			},
			want: ErrStepGap,
		},
		{
			name:    "missing published",
			entries: func() []EventDeliveryStatus { return steps("UPLOADED", "REVIEWED") },
			want:    ErrPublishedMissing,
		},
		{
			name:    "two published",
			entries: func() []EventDeliveryStatus { return steps("PUBLISHED", "published") },
			want:    ErrPublishedDuplicate,
		},
		{
			name: "missing id",
			entries: func() []EventDeliveryStatus {
				e := steps("PUBLISHED")
				e[0].ID = uuid.Nil
				return e
			},
			want: ErrStatusIDRequired,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.entries(), nil)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestNewRejectsUnknownImageStatus(t *testing.T) {
	images := append(DefaultImageStatuses(), ImageStatus{ID: uuid.New(), Code: "ARCHIVED"})
	if _, err := New(DefaultDeliveryStatuses(), images); !errors.Is(err, ErrImageStatusUnknown) {
		t.Fatalf("expected ErrImageStatusUnknown, got %v", err)
	}
}

func TestImageLookups(t *testing.T) {
	cat := Default()
	approved, ok := cat.ImageStatusByCode(domain.ImageStatusApproved)
	if !ok {
		t.Fatalf("expected APPROVED status")
	}
	byID, ok := cat.ImageStatusByID(approved.ID)
	if !ok || byID.Code != domain.ImageStatusApproved {
		t.Fatalf("ImageStatusByID() = %+v, %v", byID, ok)
	}
	if cat.ImageCode(uuid.New()) != "" {
		t.Fatalf("expected empty code for unknown id")
	}
	if len(cat.ImageStatuses()) != len(domain.ImageStatusCodes()) {
		t.Fatalf("expected full image catalog, got %d", len(cat.ImageStatuses()))
	}
}

func TestCatalogNormalisesCodes(t *testing.T) {
	entries := steps("uploaded", "in review", "published")
	cat, err := New(entries, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	second, _ := cat.DeliveryByStep(2)
	if second.Code != "IN_REVIEW" {
		t.Fatalf("expected IN_REVIEW, got %q", second.Code)
	}
	if second.Label() != "IN_REVIEW" {
		t.Fatalf("expected label to fall back to code, got %q", second.Label())
	}
}
