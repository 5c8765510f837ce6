package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-albums/internal/domain"
	"github.com/google/uuid"
)

var (
	// ErrDeliveryStatusesRequired indicates the delivery catalog is empty.
	ErrDeliveryStatusesRequired = errors.New("catalog: at least one delivery status required")
	// ErrStatusIDRequired indicates a catalog entry lacks an identifier.
	ErrStatusIDRequired = errors.New("catalog: status id required")
	// ErrStatusIDDuplicate indicates two entries share an identifier.
	ErrStatusIDDuplicate = errors.New("catalog: duplicate status id")
	// ErrStatusCodeRequired indicates a catalog entry lacks a code.
	ErrStatusCodeRequired = errors.New("catalog: status code required")
	// ErrStepInvalid indicates a delivery step below one.
	ErrStepInvalid = errors.New("catalog: delivery step must be >= 1")
	// ErrStepDuplicate indicates two delivery statuses share a step.
	ErrStepDuplicate = errors.New("catalog: duplicate delivery step")
	// ErrStepGap indicates the delivery steps are not contiguous from 1.
	ErrStepGap = errors.New("catalog: delivery steps must be contiguous")
	// ErrPublishedMissing indicates no PUBLISHED delivery status exists.
	ErrPublishedMissing = errors.New("catalog: PUBLISHED delivery status missing")
	// ErrPublishedDuplicate indicates more than one PUBLISHED delivery status exists.
	ErrPublishedDuplicate = errors.New("catalog: more than one PUBLISHED delivery status")
	// ErrImageStatusUnknown indicates an image status code outside the fixed set.
	ErrImageStatusUnknown = errors.New("catalog: unknown image status code")
	// ErrImageStatusDuplicate indicates two image statuses share a code.
	ErrImageStatusDuplicate = errors.New("catalog: duplicate image status code")
)

// EventDeliveryStatus is one ordered step of the delivery pipeline.
type EventDeliveryStatus struct {
	ID          uuid.UUID
	Code        string
	Description string
	Step        int
}

// IsPublished reports whether the entry is the PUBLISHED step.
func (s EventDeliveryStatus) IsPublished() bool {
	return s.Code == domain.DeliveryStatusPublished
}

// Label renders the description, falling back to the code.
func (s EventDeliveryStatus) Label() string {
	if strings.TrimSpace(s.Description) != "" {
		return s.Description
	}
	return s.Code
}

// ImageStatus is one entry of the fixed image status catalog.
type ImageStatus struct {
	ID          uuid.UUID
	Code        domain.ImageStatusCode
	Description string
}

// Catalog is an immutable, validated snapshot of both status catalogs. Delivery
// statuses are kept sorted by step so step lookups are a binary search.
type Catalog struct {
	deliveries   []EventDeliveryStatus
	deliveryByID map[uuid.UUID]int
	published    int

	images      []ImageStatus
	imageByID   map[uuid.UUID]int
	imageByCode map[domain.ImageStatusCode]int
}

// New validates the supplied entries and builds a catalog snapshot. Delivery steps
// must be unique, start at 1 and be contiguous; exactly one PUBLISHED entry must
// exist. Image codes must belong to the fixed review set.
func New(deliveries []EventDeliveryStatus, images []ImageStatus) (*Catalog, error) {
	if len(deliveries) == 0 {
		return nil, ErrDeliveryStatusesRequired
	}

	sorted := make([]EventDeliveryStatus, 0, len(deliveries))
	seenIDs := make(map[uuid.UUID]struct{}, len(deliveries))
	seenSteps := make(map[int]string, len(deliveries))
	for idx, entry := range deliveries {
		entry.Code = domain.NormalizeDeliveryStatusCode(entry.Code)
		entry.Description = strings.TrimSpace(entry.Description)
		if entry.ID == uuid.Nil {
			return nil, fmt.Errorf("%w: delivery status at index %d", ErrStatusIDRequired, idx)
		}
		if entry.Code == "" {
			return nil, fmt.Errorf("%w: delivery status %s", ErrStatusCodeRequired, entry.ID)
		}
		if entry.Step < 1 {
			return nil, fmt.Errorf("%w: %s has step %d", ErrStepInvalid, entry.Code, entry.Step)
		}
		if _, exists := seenIDs[entry.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrStatusIDDuplicate, entry.ID)
		}
		if other, exists := seenSteps[entry.Step]; exists {
			return nil, fmt.Errorf("%w: %s and %s share step %d", ErrStepDuplicate, other, entry.Code, entry.Step)
		}
		seenIDs[entry.ID] = struct{}{}
		seenSteps[entry.Step] = entry.Code
		sorted = append(sorted, entry)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Step < sorted[j].Step })

	cat := &Catalog{
		deliveries:   sorted,
		deliveryByID: make(map[uuid.UUID]int, len(sorted)),
		published:    -1,
		imageByID:    make(map[uuid.UUID]int, len(images)),
		imageByCode:  make(map[domain.ImageStatusCode]int, len(images)),
	}
	for idx, entry := range sorted {
		if entry.Step != idx+1 {
			return nil, fmt.Errorf("%w: expected step %d, found %d (%s)", ErrStepGap, idx+1, entry.Step, entry.Code)
		}
		if entry.IsPublished() {
			if cat.published >= 0 {
				return nil, ErrPublishedDuplicate
			}
			cat.published = idx
		}
		cat.deliveryByID[entry.ID] = idx
	}
	if cat.published < 0 {
		return nil, ErrPublishedMissing
	}

	for idx, entry := range images {
		entry.Code = domain.NormalizeImageStatusCode(string(entry.Code))
		if entry.ID == uuid.Nil {
			return nil, fmt.Errorf("%w: image status at index %d", ErrStatusIDRequired, idx)
		}
		if !entry.Code.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrImageStatusUnknown, entry.Code)
		}
		if _, exists := cat.imageByCode[entry.Code]; exists {
			return nil, fmt.Errorf("%w: %s", ErrImageStatusDuplicate, entry.Code)
		}
		if _, exists := cat.imageByID[entry.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrStatusIDDuplicate, entry.ID)
		}
		cat.imageByID[entry.ID] = len(cat.images)
		cat.imageByCode[entry.Code] = len(cat.images)
		cat.images = append(cat.images, entry)
	}

	return cat, nil
}

// DeliveryStatuses returns the delivery catalog ordered by step.
func (c *Catalog) DeliveryStatuses() []EventDeliveryStatus {
	out := make([]EventDeliveryStatus, len(c.deliveries))
	copy(out, c.deliveries)
	return out
}

// DeliveryByID resolves a delivery status by identifier.
func (c *Catalog) DeliveryByID(id uuid.UUID) (EventDeliveryStatus, bool) {
	idx, ok := c.deliveryByID[id]
	if !ok {
		return EventDeliveryStatus{}, false
	}
	return c.deliveries[idx], true
}

// DeliveryByStep resolves the delivery status at the given step.
func (c *Catalog) DeliveryByStep(step int) (EventDeliveryStatus, bool) {
	idx := sort.Search(len(c.deliveries), func(i int) bool {
		return c.deliveries[i].Step >= step
	})
	if idx < len(c.deliveries) && c.deliveries[idx].Step == step {
		return c.deliveries[idx], true
	}
	return EventDeliveryStatus{}, false
}

// Published returns the PUBLISHED delivery status.
func (c *Catalog) Published() EventDeliveryStatus {
	return c.deliveries[c.published]
}

// MaxStep returns the highest delivery step.
func (c *Catalog) MaxStep() int {
	return c.deliveries[len(c.deliveries)-1].Step
}

// ImageStatuses returns the image catalog in declaration order.
func (c *Catalog) ImageStatuses() []ImageStatus {
	out := make([]ImageStatus, len(c.images))
	copy(out, c.images)
	return out
}

// ImageStatusByID resolves an image status by identifier.
func (c *Catalog) ImageStatusByID(id uuid.UUID) (ImageStatus, bool) {
	idx, ok := c.imageByID[id]
	if !ok {
		return ImageStatus{}, false
	}
	return c.images[idx], true
}

// ImageStatusByCode resolves an image status by code.
func (c *Catalog) ImageStatusByCode(code domain.ImageStatusCode) (ImageStatus, bool) {
	idx, ok := c.imageByCode[code]
	if !ok {
		return ImageStatus{}, false
	}
	return c.images[idx], true
}

// ImageCode returns the code for an image status id, or an empty code when the
// id is unknown.
func (c *Catalog) ImageCode(id uuid.UUID) domain.ImageStatusCode {
	status, ok := c.ImageStatusByID(id)
	if !ok {
		return ""
	}
	return status.Code
}
