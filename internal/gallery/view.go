package gallery

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-albums/internal/bulk"
	"github.com/goliatone/go-albums/internal/catalog"
	"github.com/goliatone/go-albums/internal/delivery"
	"github.com/goliatone/go-albums/internal/domain"
	"github.com/goliatone/go-albums/internal/logging"
	"github.com/goliatone/go-albums/pkg/interfaces"
	"github.com/google/uuid"
)

var (
	// ErrNotLoaded indicates an operation before the first Refresh.
	ErrNotLoaded = errors.New("gallery: view not loaded")
	// ErrPositionOutOfRange indicates a Move outside the draft order.
	ErrPositionOutOfRange = errors.New("gallery: position out of range")
	// ErrImageNotVisible indicates a selection of a hidden or unknown image.
	ErrImageNotVisible = errors.New("gallery: image not visible")
)

// ServerCache holds server-authoritative data. Refresh replaces it wholesale.
type ServerCache struct {
	Event     interfaces.EventRecord
	Images    []interfaces.ImageRecord
	Delivery  *delivery.State
	FetchedAt time.Time
}

// Filter narrows the visible images by status code. DISCARDED images stay
// hidden unless IncludeDiscarded is set or DISCARDED is named explicitly.
type Filter struct {
	Statuses         []domain.ImageStatusCode
	IncludeDiscarded bool
}

func (f Filter) allows(code domain.ImageStatusCode) bool {
	if len(f.Statuses) > 0 {
		return slices.Contains(f.Statuses, code)
	}
	if code == domain.ImageStatusDiscarded {
		return f.IncludeDiscarded
	}
	return true
}

// UIState is ephemeral and never written to the server, except the draft order
// on SaveOrder.
type UIState struct {
	Selected     map[uuid.UUID]struct{}
	Draft        []uuid.UUID
	ScrollOffset int
	OpenMenu     uuid.UUID
	Filter       Filter
}

// Tile is one rendered image.
type Tile struct {
	Image    interfaces.ImageRecord
	Status   domain.ImageStatusCode
	Label    string
	Comment  string
	Selected bool
}

// Option configures a View.
type Option func(*View)

// WithLogger overrides the view logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(v *View) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithClock overrides the time source for FetchedAt.
func WithClock(now func() time.Time) Option {
	return func(v *View) {
		if now != nil {
			v.now = now
		}
	}
}

// View is the gallery of one event: server cache plus UI state.
type View struct {
	images   interfaces.ImageAPI
	delivery delivery.Service
	catalogs catalog.Provider
	logger   interfaces.Logger
	now      func() time.Time

	mu      sync.RWMutex
	eventID uuid.UUID
	cat     *catalog.Catalog
	server  *ServerCache
	ui      UIState
}

var _ bulk.Refresher = (*View)(nil)

// NewView creates an unloaded view of eventID.
func NewView(eventID uuid.UUID, images interfaces.ImageAPI, deliveries delivery.Service, catalogs catalog.Provider, opts ...Option) *View {
	v := &View{
		images:   images,
		delivery: deliveries,
		catalogs: catalogs,
		logger:   logging.NoOp(),
		now:      time.Now,
		eventID:  eventID,
		ui:       UIState{Selected: map[uuid.UUID]struct{}{}},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// EventID returns the event on screen.
func (v *View) EventID() uuid.UUID {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.eventID
}

// Refresh re-fetches the image list, the delivery state and the catalog. Scroll
// position, open menus and the filter are kept. The selection is cleared when
// images were added or removed, and an unsaved draft order survives only while
// the image set is unchanged.
func (v *View) Refresh(ctx context.Context) error {
	eventID := v.EventID()
	var (
		wg                  sync.WaitGroup
		cat                 *catalog.Catalog
		records             []interfaces.ImageRecord
		state               *delivery.State
		catErr, imgErr, err error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		cat, catErr = v.catalogs.Catalog(ctx)
	}()
	go func() {
		defer wg.Done()
		records, imgErr = v.images.ListImages(ctx, eventID)
	}()
	go func() {
		defer wg.Done()
		state, err = v.delivery.State(ctx, eventID)
	}()
	wg.Wait()
	if joined := errors.Join(catErr, imgErr, err); joined != nil {
		v.logger.Warn("gallery.refresh.failed", "event_id", eventID, "error", joined)
		return joined
	}

	sorted := slices.Clone(records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SortOrder < sorted[j].SortOrder })

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.eventID != eventID {
		return nil
	}
	reshaped := v.server == nil || !sameIDs(v.server.Images, sorted)
	dirty := v.dirtyLocked()
	v.cat = cat
	v.server = &ServerCache{Event: state.Event, Images: sorted, Delivery: state, FetchedAt: v.now()}
	if reshaped {
		v.ui.Selected = map[uuid.UUID]struct{}{}
	}
	if reshaped || !dirty {
		v.ui.Draft = imageIDs(sorted)
	}
	v.logger.Debug("gallery.refresh.completed", "event_id", eventID, "images", len(sorted), "reshaped", reshaped)
	return nil
}

// Server returns a copy of the server cache.
func (v *View) Server() (ServerCache, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.server == nil {
		return ServerCache{}, ErrNotLoaded
	}
	out := *v.server
	out.Images = slices.Clone(v.server.Images)
	return out, nil
}

// Navigate switches to another event, dropping the cache and all UI state.
func (v *View) Navigate(ctx context.Context, eventID uuid.UUID) error {
	v.mu.Lock()
	v.eventID = eventID
	v.server = nil
	v.ui = UIState{Selected: map[uuid.UUID]struct{}{}}
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// Tiles lists visible images in draft order.
func (v *View) Tiles() []Tile {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.server == nil {
		return nil
	}
	byID := make(map[uuid.UUID]interfaces.ImageRecord, len(v.server.Images))
	for _, record := range v.server.Images {
		byID[record.ID] = record
	}
	tiles := make([]Tile, 0, len(v.ui.Draft))
	for _, id := range v.ui.Draft {
		record, ok := byID[id]
		if !ok {
			continue
		}
		code := v.cat.ImageCode(record.StatusID)
		if !v.ui.Filter.allows(code) {
			continue
		}
		tile := Tile{Image: record, Status: code}
		if status, ok := v.cat.ImageStatusByID(record.StatusID); ok {
			tile.Label = status.Description
		}
		if code == domain.ImageStatusReEditSuggested && record.Comment != nil {
			tile.Comment = *record.Comment
		}
		_, tile.Selected = v.ui.Selected[id]
		tiles = append(tiles, tile)
	}
	return tiles
}

// Counts tallies images per status code, discarded included.
func (v *View) Counts() map[domain.ImageStatusCode]int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	counts := map[domain.ImageStatusCode]int{}
	if v.server == nil {
		return counts
	}
	for _, record := range v.server.Images {
		counts[v.cat.ImageCode(record.StatusID)]++
	}
	return counts
}

// SetFilter replaces the status filter and drops hidden images from the
// selection.
func (v *View) SetFilter(filter Filter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ui.Filter = filter
	for id := range v.ui.Selected {
		if !v.visibleLocked(id) {
			delete(v.ui.Selected, id)
		}
	}
}

// Toggle flips the selection of a visible image.
func (v *View) Toggle(id uuid.UUID) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.visibleLocked(id) {
		return fmt.Errorf("%w: %s", ErrImageNotVisible, id)
	}
	if _, ok := v.ui.Selected[id]; ok {
		delete(v.ui.Selected, id)
		return nil
	}
	v.ui.Selected[id] = struct{}{}
	return nil
}

// SelectAll selects every visible image that is not discarded.
func (v *View) SelectAll() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.server == nil {
		return 0
	}
	for _, record := range v.server.Images {
		code := v.cat.ImageCode(record.StatusID)
		if code == domain.ImageStatusDiscarded || !v.ui.Filter.allows(code) {
			continue
		}
		v.ui.Selected[record.ID] = struct{}{}
	}
	return len(v.ui.Selected)
}

// ClearSelection empties the selection.
func (v *View) ClearSelection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ui.Selected = map[uuid.UUID]struct{}{}
}

// Selection returns the selected ids in draft order.
func (v *View) Selection() []uuid.UUID {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]uuid.UUID, 0, len(v.ui.Selected))
	for _, id := range v.ui.Draft {
		if _, ok := v.ui.Selected[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// ActionCompleted clears the selection after an action with no failures.
// Partial results keep it so the operator can retry the failed items.
func (v *View) ActionCompleted(result *bulk.Result) {
	if result == nil || result.Outcome() != bulk.OutcomeSuccess {
		return
	}
	v.ClearSelection()
}

// Move relocates the image at position from to position to in the draft order.
func (v *View) Move(from, to int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.server == nil {
		return ErrNotLoaded
	}
	n := len(v.ui.Draft)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: %d -> %d of %d", ErrPositionOutOfRange, from, to, n)
	}
	id := v.ui.Draft[from]
	draft := slices.Delete(slices.Clone(v.ui.Draft), from, from+1)
	v.ui.Draft = slices.Insert(draft, to, id)
	return nil
}

// Dirty reports unsaved order changes.
func (v *View) Dirty() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.dirtyLocked()
}

// SaveOrder persists the draft order as dense positions 1..n and refreshes.
func (v *View) SaveOrder(ctx context.Context) error {
	v.mu.RLock()
	dirty := v.dirtyLocked()
	eventID := v.eventID
	draft := slices.Clone(v.ui.Draft)
	v.mu.RUnlock()
	if !dirty {
		return nil
	}
	if err := v.images.UpdateSortOrder(ctx, eventID, draft); err != nil {
		v.logger.Warn("gallery.order.save_failed", "event_id", eventID, "error", err)
		return err
	}
	v.logger.Info("gallery.order.saved", "event_id", eventID, "images", len(draft))
	return v.Refresh(ctx)
}

// DiscardOrder reverts the draft to the server order.
func (v *View) DiscardOrder() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.server != nil {
		v.ui.Draft = imageIDs(v.server.Images)
	}
}

// SetScroll records the scroll offset.
func (v *View) SetScroll(offset int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ui.ScrollOffset = offset
}

// OpenMenu records the image whose context menu is open; uuid.Nil closes it.
func (v *View) OpenMenu(id uuid.UUID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ui.OpenMenu = id
}

// UI returns a copy of the UI state.
func (v *View) UI() UIState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := v.ui
	out.Selected = make(map[uuid.UUID]struct{}, len(v.ui.Selected))
	for id := range v.ui.Selected {
		out.Selected[id] = struct{}{}
	}
	out.Draft = slices.Clone(v.ui.Draft)
	out.Filter.Statuses = slices.Clone(v.ui.Filter.Statuses)
	return out
}

func (v *View) dirtyLocked() bool {
	if v.server == nil {
		return false
	}
	return !slices.Equal(v.ui.Draft, imageIDs(v.server.Images))
}

func (v *View) visibleLocked(id uuid.UUID) bool {
	if v.server == nil {
		return false
	}
	for _, record := range v.server.Images {
		if record.ID == id {
			return v.ui.Filter.allows(v.cat.ImageCode(record.StatusID))
		}
	}
	return false
}

func imageIDs(records []interfaces.ImageRecord) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(records))
	for _, record := range records {
		out = append(out, record.ID)
	}
	return out
}

func sameIDs(a, b []interfaces.ImageRecord) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[uuid.UUID]struct{}, len(a))
	for _, record := range a {
		set[record.ID] = struct{}{}
	}
	for _, record := range b {
		if _, ok := set[record.ID]; !ok {
			return false
		}
	}
	return true
}
