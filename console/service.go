// Package console implements the translator-facing editing service: it
// assembles per-field diff payloads, applies whole-bundle saves, and feeds the
// translation dashboard.
package console

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/coursekit/go-i18n/bundle"
	"github.com/coursekit/go-i18n/diff"
	"github.com/coursekit/go-i18n/extract"
	"github.com/coursekit/go-i18n/internal/audit"
	"github.com/coursekit/go-i18n/internal/logging"
	"github.com/coursekit/go-i18n/pkg/interfaces"
	"github.com/coursekit/go-i18n/progress"
	"github.com/coursekit/go-i18n/resource"
)

var (
	// ErrBundleRepositoryRequired indicates the service was constructed
	// without a bundle repository.
	ErrBundleRepositoryRequired = errors.New("console: bundle repository is required")
	// ErrContentSourceRequired indicates the service was constructed without
	// a content source.
	ErrContentSourceRequired = errors.New("console: content source is required")
	// ErrTrackerRequired indicates the service was constructed without a
	// progress tracker.
	ErrTrackerRequired = errors.New("console: progress tracker is required")
	// ErrLocaleNotEditable indicates the edit predicate denied the locale.
	ErrLocaleNotEditable = errors.New("console: locale is not editable")
	// ErrNotTranslatable indicates the resource is excluded from translation
	// workflows.
	ErrNotTranslatable = errors.New("console: resource is excluded from translation")
)

// DefaultSourceLocale is the locale translations are authored from unless the
// service is configured otherwise.
const DefaultSourceLocale = "en_US"

// EditPredicate reports whether the current viewer may edit a locale. The
// role model behind the answer stays with the host application.
type EditPredicate func(ctx context.Context, locale string) bool

// Option mutates the service configuration.
type Option func(*Service)

// WithClock overrides the clock used for audit timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithAuditRecorder overrides the audit recorder dependency.
func WithAuditRecorder(recorder audit.Recorder) Option {
	return func(s *Service) {
		s.audit = recorder
	}
}

// WithLogger overrides the service logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSourceLocale overrides the locale reported as the translation source.
func WithSourceLocale(locale string) Option {
	return func(s *Service) {
		if locale != "" {
			s.sourceLocale = locale
		}
	}
}

// WithEditPredicate wires the per-locale edit permission check.
func WithEditPredicate(predicate EditPredicate) Option {
	return func(s *Service) {
		s.canEdit = predicate
	}
}

// Service drives the translation console for one course content source.
type Service struct {
	bundles      bundle.Repository
	tracker      *progress.Tracker
	content      bundle.ContentSource
	registry     extract.TagRegistry
	audit        audit.Recorder
	clock        func() time.Time
	logger       interfaces.Logger
	sourceLocale string
	canEdit      EditPredicate
}

// NewService constructs a console service.
func NewService(bundles bundle.Repository, tracker *progress.Tracker, content bundle.ContentSource, registry extract.TagRegistry, opts ...Option) *Service {
	s := &Service{
		bundles:      bundles,
		tracker:      tracker,
		content:      content,
		registry:     registry,
		clock:        time.Now,
		logger:       logging.NoOp(),
		sourceLocale: DefaultSourceLocale,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Payload is the full console view for one (resource, locale) pair: every
// translatable field classified against the stored bundle, in declared field
// order.
type Payload struct {
	Key          string         `json:"key"`
	SourceLocale string         `json:"source_locale"`
	TargetLocale string         `json:"target_locale"`
	Sections     []diff.Section `json:"sections"`
}

// Get assembles the console payload for a bundle key. A missing bundle yields
// all-new sections rather than an error.
func (s *Service) Get(ctx context.Context, key resource.BundleKey) (*Payload, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := s.requireTranslatable(ctx, key.Resource); err != nil {
		return nil, err
	}

	fields, err := s.content.Fields(ctx, key.Resource)
	if err != nil {
		return nil, err
	}

	stored, err := s.loadBundle(ctx, key)
	if err != nil {
		return nil, err
	}

	sections := make([]diff.Section, 0, len(fields))
	for _, field := range fields {
		extraction := extract.ExtractField(field.Type, field.Value, s.registry)
		sections = append(sections, diff.DiffSection(
			field.Name,
			field.Label,
			field.Type,
			consoleSourceValue(field),
			extraction.Fragments(),
			stored.Section(field.Name),
		))
	}

	return &Payload{
		Key:          key.String(),
		SourceLocale: s.sourceLocale,
		TargetLocale: key.Locale,
		Sections:     sections,
	}, nil
}

// Save validates and applies a whole-bundle replacement, then recomputes
// progress and records an audit entry.
func (s *Service) Save(ctx context.Context, req SaveRequest) (bundle.Status, error) {
	if err := s.ready(); err != nil {
		return bundle.StatusNotStarted, err
	}
	if err := req.Validate(); err != nil {
		return bundle.StatusNotStarted, wrapValidationError(err)
	}
	if err := validateSavePayload(req); err != nil {
		return bundle.StatusNotStarted, wrapValidationError(err)
	}

	key, err := resource.ParseBundleKey(strings.TrimSpace(req.Key))
	if err != nil {
		return bundle.StatusNotStarted, wrapValidationError(err)
	}
	if s.canEdit != nil && !s.canEdit(ctx, key.Locale) {
		return bundle.StatusNotStarted, ErrLocaleNotEditable
	}
	if err := s.requireTranslatable(ctx, key.Resource); err != nil {
		return bundle.StatusNotStarted, err
	}

	fields, err := s.content.Fields(ctx, key.Resource)
	if err != nil {
		return bundle.StatusNotStarted, err
	}
	byName := make(map[string]bundle.Field, len(fields))
	for _, field := range fields {
		byName[field.Name] = field
	}

	b := &bundle.Bundle{Key: key, Sections: make([]bundle.Section, 0, len(req.Sections))}
	for _, input := range req.Sections {
		field, ok := byName[input.Name]
		if !ok {
			return bundle.StatusNotStarted, wrapValidationError(validation.NewError(
				"i18n.console.save.section_unknown",
				"resource has no translatable field "+input.Name))
		}

		extraction := extract.ExtractField(field.Type, field.Value, s.registry)
		expected := len(extraction.Fragments())
		if len(input.Data) != expected {
			mismatch := &diff.Mismatch{Stored: len(input.Data), Expected: expected}
			return bundle.StatusNotStarted, wrapValidationError(validation.NewError(
				"i18n.console.save.count_mismatch", mismatch.Message()))
		}

		data := make([]bundle.Fragment, len(input.Data))
		copy(data, input.Data)
		b.Sections = append(b.Sections, bundle.Section{
			Name:        field.Name,
			Type:        field.Type,
			SourceValue: consoleSourceValue(field),
			Data:        data,
		})
	}

	if err := s.bundles.Save(ctx, b); err != nil {
		return bundle.StatusNotStarted, wrapSaveError(err)
	}

	sections := make([]diff.Section, 0, len(fields))
	for _, field := range fields {
		extraction := extract.ExtractField(field.Type, field.Value, s.registry)
		sections = append(sections, diff.DiffSection(
			field.Name,
			field.Label,
			field.Type,
			consoleSourceValue(field),
			extraction.Fragments(),
			b.Section(field.Name),
		))
	}

	status, err := s.tracker.Record(ctx, key, sections)
	if err != nil {
		return bundle.StatusNotStarted, err
	}

	s.recordAudit(ctx, audit.Event{
		EntityType: "translation_bundle",
		EntityID:   key.String(),
		Action:     "translation_bundle_saved",
		Actor:      req.Actor,
		OccurredAt: s.clock(),
		Metadata: map[string]any{
			"locale":   key.Locale,
			"sections": len(b.Sections),
			"status":   status.Label(),
		},
	})

	s.logger.Info("bundle saved",
		"key", key.String(),
		"sections", len(b.Sections),
		"status", status.Label())
	return status, nil
}

// SetTranslatable toggles a resource's translation workflow participation and
// records an audit entry. The progress record is created lazily.
func (s *Service) SetTranslatable(ctx context.Context, req TranslatableRequest) error {
	if s.tracker == nil {
		return ErrTrackerRequired
	}
	if err := req.Validate(); err != nil {
		return wrapValidationError(err)
	}
	key, err := resource.ParseKey(strings.TrimSpace(req.Key))
	if err != nil {
		return wrapValidationError(err)
	}

	if err := s.tracker.SetTranslatable(ctx, key, req.IsTranslatable); err != nil {
		return err
	}

	s.recordAudit(ctx, audit.Event{
		EntityType: "translation_progress",
		EntityID:   key.String(),
		Action:     "translatable_toggled",
		Actor:      req.Actor,
		OccurredAt: s.clock(),
		Metadata: map[string]any{
			"is_translatable": req.IsTranslatable,
		},
	})
	return nil
}

// StatusCell is one locale column of a dashboard row.
type StatusCell struct {
	Locale string `json:"locale"`
	Label  string `json:"label"`
	Class  string `json:"class"`
}

// Row is one resource line of the translation dashboard.
type Row struct {
	Key            string       `json:"key"`
	Title          string       `json:"title"`
	IsTranslatable bool         `json:"is_translatable"`
	Class          string       `json:"class"`
	Cells          []StatusCell `json:"cells"`
}

// Rows assembles the dashboard table: one row per resource, one status cell
// per requested locale. Rows for excluded resources carry the
// not-translatable class and their cells keep the last recorded statuses.
func (s *Service) Rows(ctx context.Context, keys []resource.Key, locales []string) ([]Row, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(keys))
	for _, key := range keys {
		translatable, err := s.tracker.IsTranslatable(ctx, key)
		if err != nil {
			return nil, err
		}

		row := Row{
			Key:            key.String(),
			Title:          s.resourceTitle(ctx, key),
			IsTranslatable: translatable,
			Cells:          make([]StatusCell, 0, len(locales)),
		}
		if !translatable {
			row.Class = "not-translatable"
		}

		for _, locale := range locales {
			status, err := s.tracker.Status(ctx, key, locale)
			if err != nil {
				return nil, err
			}
			row.Cells = append(row.Cells, StatusCell{
				Locale: locale,
				Label:  status.Label(),
				Class:  status.Class(),
			})
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Service) ready() error {
	if s.bundles == nil {
		return ErrBundleRepositoryRequired
	}
	if s.content == nil {
		return ErrContentSourceRequired
	}
	if s.tracker == nil {
		return ErrTrackerRequired
	}
	return nil
}

// requireTranslatable rejects resources toggled out of translation workflows.
func (s *Service) requireTranslatable(ctx context.Context, key resource.Key) error {
	translatable, err := s.tracker.IsTranslatable(ctx, key)
	if err != nil {
		return err
	}
	if !translatable {
		return ErrNotTranslatable
	}
	return nil
}

func (s *Service) loadBundle(ctx context.Context, key resource.BundleKey) (*bundle.Bundle, error) {
	stored, err := s.bundles.Load(ctx, key)
	if err != nil {
		if errors.Is(err, bundle.ErrBundleNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return stored, nil
}

// resourceTitle is best effort; dashboards degrade to the bare key when the
// content source has no title field for the resource.
func (s *Service) resourceTitle(ctx context.Context, key resource.Key) string {
	fields, err := s.content.Fields(ctx, key)
	if err != nil {
		return ""
	}
	for _, field := range fields {
		if field.Name == "title" {
			return field.Value
		}
	}
	return ""
}

func (s *Service) recordAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.Warn("audit record failed", "action", event.Action, "error", err)
	}
}

// consoleSourceValue is the section-level source value shown in the console:
// html fields expose the full field markup, string fields expose nothing at
// the section level because their single fragment already carries it.
func consoleSourceValue(field bundle.Field) string {
	if field.Type == bundle.FieldHTML {
		return field.Value
	}
	return ""
}
