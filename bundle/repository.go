package bundle

import (
	"context"
	"errors"

	"github.com/coursekit/go-i18n/resource"
)

var (
	// ErrBundleNotFound indicates no bundle has been stored under a key.
	ErrBundleNotFound = errors.New("bundle: bundle not found")
	// ErrProgressNotFound indicates no progress record exists for a resource.
	ErrProgressNotFound = errors.New("bundle: progress not found")
)

// Repository persists translation bundles. Saves are whole-record replacements
// with last-writer-wins semantics; SaveAll applies one bundle at a time so a
// failure cannot corrupt records already written.
type Repository interface {
	Load(ctx context.Context, key resource.BundleKey) (*Bundle, error)
	Save(ctx context.Context, b *Bundle) error
	SaveAll(ctx context.Context, bundles []*Bundle) error
	ListLocale(ctx context.Context, locale string) ([]*Bundle, error)
}

// ProgressRepository persists per-resource progress snapshots and emits
// change notifications when a snapshot is replaced.
type ProgressRepository interface {
	Load(ctx context.Context, key resource.Key) (*Progress, error)
	Save(ctx context.Context, p *Progress) error
	List(ctx context.Context) ([]*Progress, error)
	Subscribe(ctx context.Context) (<-chan ProgressEvent, error)
}

// ProgressEventType enumerates progress change events.
type ProgressEventType string

const (
	// ProgressCreated indicates a progress record was first persisted.
	ProgressCreated ProgressEventType = "created"
	// ProgressUpdated indicates an existing snapshot was replaced.
	ProgressUpdated ProgressEventType = "updated"
)

// ProgressEvent reports progress mutations to interested subscribers.
type ProgressEvent struct {
	Type     ProgressEventType
	Progress Progress
}

func newProgressEvent(eventType ProgressEventType, progress Progress) ProgressEvent {
	return ProgressEvent{Type: eventType, Progress: progress}
}
