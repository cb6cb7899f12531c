package bundle

import (
	"context"
	"sort"
	"sync"

	"github.com/coursekit/go-i18n/resource"
)

// MemoryRepository stores bundles in-memory, keyed by their serialized
// bundle keys.
type MemoryRepository struct {
	mu      sync.RWMutex
	bundles map[string]*Bundle
}

// NewMemoryRepository constructs an empty in-memory bundle repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{bundles: make(map[string]*Bundle)}
}

// Load returns the stored bundle or ErrBundleNotFound.
func (r *MemoryRepository) Load(_ context.Context, key resource.BundleKey) (*Bundle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.bundles[key.String()]
	if !ok {
		return nil, ErrBundleNotFound
	}
	return stored.Clone(), nil
}

// Save replaces the stored bundle wholesale.
func (r *MemoryRepository) Save(_ context.Context, b *Bundle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bundles[b.Key.String()] = b.Clone()
	return nil
}

// SaveAll stores each bundle independently, in order.
func (r *MemoryRepository) SaveAll(ctx context.Context, bundles []*Bundle) error {
	for _, b := range bundles {
		if err := r.Save(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

// ListLocale returns every stored bundle for a locale, ordered by key.
func (r *MemoryRepository) ListLocale(_ context.Context, locale string) ([]*Bundle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.bundles))
	for key, stored := range r.bundles {
		if stored.Key.Locale == locale {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := make([]*Bundle, 0, len(keys))
	for _, key := range keys {
		out = append(out, r.bundles[key].Clone())
	}
	return out, nil
}

// MemoryProgressRepository stores progress records in-memory.
type MemoryProgressRepository struct {
	mu          sync.RWMutex
	records     map[string]*Progress
	broadcaster *progressBroadcaster
}

// NewMemoryProgressRepository constructs an empty in-memory progress store.
func NewMemoryProgressRepository() *MemoryProgressRepository {
	return &MemoryProgressRepository{
		records:     make(map[string]*Progress),
		broadcaster: newProgressBroadcaster(),
	}
}

// Load returns the stored progress record or ErrProgressNotFound.
func (r *MemoryProgressRepository) Load(_ context.Context, key resource.Key) (*Progress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.records[key.String()]
	if !ok {
		return nil, ErrProgressNotFound
	}
	return stored.Clone(), nil
}

// Save replaces the stored snapshot and emits a change event.
func (r *MemoryProgressRepository) Save(_ context.Context, p *Progress) error {
	r.mu.Lock()
	_, existed := r.records[p.Key.String()]
	r.records[p.Key.String()] = p.Clone()
	r.mu.Unlock()

	eventType := ProgressUpdated
	if !existed {
		eventType = ProgressCreated
	}
	r.broadcaster.Broadcast(newProgressEvent(eventType, *p.Clone()))
	return nil
}

// List returns every stored progress record, ordered by key.
func (r *MemoryProgressRepository) List(context.Context) ([]*Progress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.records))
	for key := range r.records {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]*Progress, 0, len(keys))
	for _, key := range keys {
		out = append(out, r.records[key].Clone())
	}
	return out, nil
}

// Subscribe delivers progress change events until the context is cancelled.
func (r *MemoryProgressRepository) Subscribe(ctx context.Context) (<-chan ProgressEvent, error) {
	return r.broadcaster.Subscribe(ctx)
}
