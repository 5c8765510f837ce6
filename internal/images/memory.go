package images

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryEventRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Event
}

// NewMemoryEventRepository constructs an in-memory event repository.
func NewMemoryEventRepository() EventRepository {
	return &memoryEventRepository{byID: make(map[uuid.UUID]*Event)}
}

func (m *memoryEventRepository) Create(_ context.Context, record *Event) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneEvent(record)
	if cloned.ID == uuid.Nil {
		cloned.ID = uuid.New()
	}
	m.byID[cloned.ID] = cloned
	return cloneEvent(cloned), nil
}

func (m *memoryEventRepository) GetByID(_ context.Context, id uuid.UUID) (*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "event", Key: id.String()}
	}
	return cloneEvent(record), nil
}

func (m *memoryEventRepository) Update(_ context.Context, record *Event) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[record.ID]; !ok {
		return nil, &NotFoundError{Resource: "event", Key: record.ID.String()}
	}
	cloned := cloneEvent(record)
	m.byID[cloned.ID] = cloned
	return cloneEvent(cloned), nil
}

type memoryImageRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Image
}

// NewMemoryImageRepository constructs an in-memory image repository.
func NewMemoryImageRepository() ImageRepository {
	return &memoryImageRepository{byID: make(map[uuid.UUID]*Image)}
}

func (m *memoryImageRepository) Create(_ context.Context, record *Image) (*Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneImage(record)
	if cloned.ID == uuid.Nil {
		cloned.ID = uuid.New()
	}
	m.byID[cloned.ID] = cloned
	return cloneImage(cloned), nil
}

func (m *memoryImageRepository) GetByID(_ context.Context, id uuid.UUID) (*Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "image", Key: id.String()}
	}
	return cloneImage(record), nil
}

func (m *memoryImageRepository) ListByEvent(_ context.Context, eventID uuid.UUID) ([]*Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Image, 0)
	for _, record := range m.byID {
		if record.EventID == eventID {
			out = append(out, cloneImage(record))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder == out[j].SortOrder {
			return out[i].FileName < out[j].FileName
		}
		return out[i].SortOrder < out[j].SortOrder
	})
	return out, nil
}

func (m *memoryImageRepository) Update(_ context.Context, record *Image) (*Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[record.ID]; !ok {
		return nil, &NotFoundError{Resource: "image", Key: record.ID.String()}
	}
	cloned := cloneImage(record)
	m.byID[cloned.ID] = cloned
	return cloneImage(cloned), nil
}

func (m *memoryImageRepository) UpdateSortOrders(_ context.Context, records []*Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, record := range records {
		if _, ok := m.byID[record.ID]; !ok {
			return &NotFoundError{Resource: "image", Key: record.ID.String()}
		}
	}
	for _, record := range records {
		m.byID[record.ID].SortOrder = record.SortOrder
		m.byID[record.ID].UpdatedAt = record.UpdatedAt
	}
	return nil
}

type memoryCoverRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*ProjectCover
}

// NewMemoryCoverRepository constructs an in-memory cover repository.
func NewMemoryCoverRepository() CoverRepository {
	return &memoryCoverRepository{byID: make(map[uuid.UUID]*ProjectCover)}
}

func (m *memoryCoverRepository) Upsert(_ context.Context, record *ProjectCover) (*ProjectCover, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := *record
	m.byID[cloned.ID] = &cloned
	result := cloned
	return &result, nil
}

func (m *memoryCoverRepository) ListByProject(_ context.Context, projectID uuid.UUID) ([]*ProjectCover, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*ProjectCover, 0)
	for _, record := range m.byID {
		if record.ProjectID == projectID {
			cloned := *record
			out = append(out, &cloned)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}
