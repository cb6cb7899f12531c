// Package progress derives and records per-locale translation progress.
package progress

import (
	"context"
	"errors"

	"github.com/coursekit/go-i18n/bundle"
	"github.com/coursekit/go-i18n/diff"
	"github.com/coursekit/go-i18n/internal/logging"
	"github.com/coursekit/go-i18n/pkg/interfaces"
	"github.com/coursekit/go-i18n/resource"
)

// ErrRepositoryRequired indicates the tracker was constructed without a
// progress repository.
var ErrRepositoryRequired = errors.New("progress: repository is required")

// Derive computes the status snapshot for one locale from classified diff
// sections. Any new or changed fragment keeps the locale in progress, unless
// nothing has been translated at all yet. A locale is done only when every
// fragment is current and carries a translation; empty sections do not block
// that on their own. Structural mismatches imply stale stored translations
// and count as in-progress work.
func Derive(sections []diff.Section) bundle.Status {
	total := 0
	translated := 0
	pending := false

	for _, section := range sections {
		if section.Mismatch != nil {
			pending = true
			if section.Mismatch.Stored > 0 {
				translated++
			}
			continue
		}
		for _, fragment := range section.Data {
			total++
			if fragment.TargetValue != "" {
				translated++
			}
			// A current source with no translation is still open work.
			if fragment.Verb != diff.VerbCurrent || fragment.TargetValue == "" {
				pending = true
			}
		}
	}

	if pending {
		if translated == 0 {
			return bundle.StatusNotStarted
		}
		return bundle.StatusInProgress
	}
	if total > 0 {
		return bundle.StatusDone
	}
	return bundle.StatusNotStarted
}

// Option mutates the tracker configuration.
type Option func(*Tracker)

// WithLogger overrides the tracker's logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// Tracker keeps per-resource progress snapshots in sync with diff results.
// State is always derived from the latest recomputation, never incremented.
type Tracker struct {
	repo   bundle.ProgressRepository
	logger interfaces.Logger
}

// NewTracker constructs a tracker over the supplied repository.
func NewTracker(repo bundle.ProgressRepository, opts ...Option) *Tracker {
	t := &Tracker{
		repo:   repo,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Record recomputes and persists the locale status for a resource after a
// bundle save. It lazily creates the progress record on first write.
func (t *Tracker) Record(ctx context.Context, key resource.BundleKey, sections []diff.Section) (bundle.Status, error) {
	if t.repo == nil {
		return bundle.StatusNotStarted, ErrRepositoryRequired
	}

	record, err := t.loadOrCreate(ctx, key.Resource)
	if err != nil {
		return bundle.StatusNotStarted, err
	}

	status := Derive(sections)
	record.SetStatus(key.Locale, status)
	if err := t.repo.Save(ctx, record); err != nil {
		return bundle.StatusNotStarted, err
	}

	t.logger.Debug("progress recorded",
		"resource", key.Resource.String(),
		"locale", key.Locale,
		"status", status.Label())
	return status, nil
}

// SetTranslatable toggles whether the resource participates in translation
// workflows. The toggle is independent of per-locale progress.
func (t *Tracker) SetTranslatable(ctx context.Context, key resource.Key, translatable bool) error {
	if t.repo == nil {
		return ErrRepositoryRequired
	}
	record, err := t.loadOrCreate(ctx, key)
	if err != nil {
		return err
	}
	record.IsTranslatable = translatable
	return t.repo.Save(ctx, record)
}

// IsTranslatable reports whether the resource may be translated. A missing
// record means the default: translatable.
func (t *Tracker) IsTranslatable(ctx context.Context, key resource.Key) (bool, error) {
	if t.repo == nil {
		return false, ErrRepositoryRequired
	}
	record, err := t.repo.Load(ctx, key)
	if err != nil {
		if errors.Is(err, bundle.ErrProgressNotFound) {
			return true, nil
		}
		return false, err
	}
	return record.IsTranslatable, nil
}

// Status returns the recorded status for a (resource, locale) pair. A missing
// record means not started.
func (t *Tracker) Status(ctx context.Context, key resource.Key, locale string) (bundle.Status, error) {
	if t.repo == nil {
		return bundle.StatusNotStarted, ErrRepositoryRequired
	}
	record, err := t.repo.Load(ctx, key)
	if err != nil {
		if errors.Is(err, bundle.ErrProgressNotFound) {
			return bundle.StatusNotStarted, nil
		}
		return bundle.StatusNotStarted, err
	}
	return record.Status(locale), nil
}

func (t *Tracker) loadOrCreate(ctx context.Context, key resource.Key) (*bundle.Progress, error) {
	record, err := t.repo.Load(ctx, key)
	if err != nil {
		if errors.Is(err, bundle.ErrProgressNotFound) {
			return bundle.NewProgress(key), nil
		}
		return nil, err
	}
	return record, nil
}
