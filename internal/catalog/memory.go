package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryStatusRepository struct {
	mu         sync.RWMutex
	deliveries map[uuid.UUID]*DeliveryStatusModel
	images     map[uuid.UUID]*ImageStatusModel
	imageOrder []uuid.UUID
}

// NewMemoryStatusRepository constructs an in-memory status repository.
func NewMemoryStatusRepository() StatusRepository {
	return &memoryStatusRepository{
		deliveries: make(map[uuid.UUID]*DeliveryStatusModel),
		images:     make(map[uuid.UUID]*ImageStatusModel),
	}
}

func (m *memoryStatusRepository) ListDeliveryStatuses(_ context.Context) ([]*DeliveryStatusModel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*DeliveryStatusModel, 0, len(m.deliveries))
	for _, record := range m.deliveries {
		cloned := *record
		out = append(out, &cloned)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Step < out[j].Step })
	return out, nil
}

func (m *memoryStatusRepository) ListImageStatuses(_ context.Context) ([]*ImageStatusModel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*ImageStatusModel, 0, len(m.imageOrder))
	for _, id := range m.imageOrder {
		cloned := *m.images[id]
		out = append(out, &cloned)
	}
	return out, nil
}

func (m *memoryStatusRepository) CreateDeliveryStatus(_ context.Context, record *DeliveryStatusModel) (*DeliveryStatusModel, error) {
	if record == nil {
		return nil, fmt.Errorf("catalog: delivery status record required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := *record
	if cloned.ID == uuid.Nil {
		cloned.ID = uuid.New()
	}
	m.deliveries[cloned.ID] = &cloned
	result := cloned
	return &result, nil
}

func (m *memoryStatusRepository) CreateImageStatus(_ context.Context, record *ImageStatusModel) (*ImageStatusModel, error) {
	if record == nil {
		return nil, fmt.Errorf("catalog: image status record required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := *record
	if cloned.ID == uuid.Nil {
		cloned.ID = uuid.New()
	}
	if _, exists := m.images[cloned.ID]; !exists {
		m.imageOrder = append(m.imageOrder, cloned.ID)
	}
	m.images[cloned.ID] = &cloned
	result := cloned
	return &result, nil
}
