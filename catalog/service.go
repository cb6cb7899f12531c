package catalog

import (
	"context"
	"errors"
	"sort"
	"time"

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
	ErrBundleRepositoryRequired = errors.New("catalog: bundle repository is required")
	// ErrContentSourceRequired indicates the service was constructed without
	// a content source.
	ErrContentSourceRequired = errors.New("catalog: content source is required")
)

// Option mutates the service configuration.
type Option func(*Service)

// WithLogger overrides the service logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracker wires progress recomputation after imports.
func WithTracker(tracker *progress.Tracker) Option {
	return func(s *Service) {
		s.tracker = tracker
	}
}

// WithAuditRecorder overrides the audit recorder dependency.
func WithAuditRecorder(recorder audit.Recorder) Option {
	return func(s *Service) {
		s.audit = recorder
	}
}

// WithClock overrides the clock used for audit timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// Service exports and imports whole-locale translation catalogs.
type Service struct {
	bundles  bundle.Repository
	content  bundle.ContentSource
	registry extract.TagRegistry
	tracker  *progress.Tracker
	audit    audit.Recorder
	clock    func() time.Time
	logger   interfaces.Logger
}

// NewService constructs a catalog service.
func NewService(bundles bundle.Repository, content bundle.ContentSource, registry extract.TagRegistry, opts ...Option) *Service {
	s := &Service{
		bundles:  bundles,
		content:  content,
		registry: registry,
		clock:    time.Now,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export walks every resource and produces the locale's catalog: each
// translatable fragment contributes a location, with stored translations
// carried along as message strings. Resources excluded from translation are
// skipped entirely.
func (s *Service) Export(ctx context.Context, locale string, resources []resource.Key) (*Catalog, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	cat := &Catalog{Locale: locale}
	for _, key := range resources {
		if s.tracker != nil {
			translatable, err := s.tracker.IsTranslatable(ctx, key)
			if err != nil {
				return nil, err
			}
			if !translatable {
				continue
			}
		}

		bundleKey, err := resource.NewBundleKey(key.Type, key.Key, locale)
		if err != nil {
			return nil, err
		}
		stored, err := s.loadBundle(ctx, bundleKey)
		if err != nil {
			return nil, err
		}
		fields, err := s.content.Fields(ctx, key)
		if err != nil {
			return nil, err
		}

		for _, field := range fields {
			extraction := extract.ExtractField(field.Type, field.Value, s.registry)
			section := stored.Section(field.Name)
			for i, source := range extraction.Fragments() {
				target := ""
				if section != nil && i < len(section.Data) && section.Data[i].SourceValue == source {
					target = section.Data[i].TargetValue
				}
				cat.add(source, target, Location{
					Key:     bundleKey,
					Section: field.Name,
					Index:   i,
				})
			}
		}
	}
	return cat, nil
}

// Import maps catalog entries back to their fragments and applies them as
// whole-bundle saves, one (resource, locale) at a time. A failing unit stops
// the walk but bundles already written stay written. Returns the number of
// bundles saved.
func (s *Service) Import(ctx context.Context, cat *Catalog) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}

	grouped := make(map[string][]fragmentTarget)
	keys := make(map[string]resource.BundleKey)
	for _, entry := range cat.Entries {
		for _, loc := range entry.Locations {
			id := loc.Key.String()
			grouped[id] = append(grouped[id], fragmentTarget{
				section: loc.Section,
				index:   loc.Index,
				msgStr:  entry.MsgStr,
			})
			keys[id] = loc.Key
		}
	}

	ordered := make([]string, 0, len(grouped))
	for id := range grouped {
		ordered = append(ordered, id)
	}
	sort.Strings(ordered)

	saved := 0
	for _, id := range ordered {
		key := keys[id]
		if err := s.importBundle(ctx, key, grouped[id]); err != nil {
			return saved, err
		}
		saved++
	}

	if saved > 0 {
		s.recordAudit(ctx, audit.Event{
			EntityType: "translation_catalog",
			EntityID:   cat.Locale,
			Action:     "translation_catalog_imported",
			OccurredAt: s.clock(),
			Metadata: map[string]any{
				"locale":  cat.Locale,
				"bundles": saved,
				"entries": len(cat.Entries),
			},
		})
	}
	s.logger.Info("catalog imported", "locale", cat.Locale, "bundles", saved)
	return saved, nil
}

// fragmentTarget addresses one fragment slot of a bundle during import.
type fragmentTarget struct {
	section string
	index   int
	msgStr  string
}

func (s *Service) importBundle(ctx context.Context, key resource.BundleKey, targets []fragmentTarget) error {
	fields, err := s.content.Fields(ctx, key.Resource)
	if err != nil {
		return err
	}
	stored, err := s.loadBundle(ctx, key)
	if err != nil {
		return err
	}

	b := &bundle.Bundle{Key: key, Sections: make([]bundle.Section, 0, len(fields))}
	extractions := make(map[string]*extract.Extraction, len(fields))
	sections := make(map[string]*bundle.Section, len(fields))
	for _, field := range fields {
		extraction := extract.ExtractField(field.Type, field.Value, s.registry)
		extractions[field.Name] = extraction

		fragments := extraction.Fragments()
		data := make([]bundle.Fragment, len(fragments))
		prior := stored.Section(field.Name)
		for i, source := range fragments {
			data[i] = bundle.Fragment{SourceValue: source}
			if prior != nil && i < len(prior.Data) && prior.Data[i].SourceValue == source {
				data[i].TargetValue = prior.Data[i].TargetValue
			}
		}

		sourceValue := ""
		if field.Type == bundle.FieldHTML {
			sourceValue = field.Value
		}
		b.Sections = append(b.Sections, bundle.Section{
			Name:        field.Name,
			Type:        field.Type,
			SourceValue: sourceValue,
			Data:        data,
		})
		sections[field.Name] = &b.Sections[len(b.Sections)-1]
	}

	for _, t := range targets {
		section, ok := sections[t.section]
		if !ok || t.index >= len(section.Data) {
			s.logger.Warn("catalog entry skipped",
				"bundle", key.String(),
				"section", t.section,
				"index", t.index)
			continue
		}
		if t.msgStr != "" {
			section.Data[t.index].TargetValue = t.msgStr
		}
	}

	if err := s.bundles.Save(ctx, b); err != nil {
		return err
	}

	if s.tracker != nil {
		diffSections := make([]diff.Section, 0, len(fields))
		for _, field := range fields {
			diffSections = append(diffSections, diff.DiffSection(
				field.Name,
				field.Label,
				field.Type,
				sections[field.Name].SourceValue,
				extractions[field.Name].Fragments(),
				b.Section(field.Name),
			))
		}
		if _, err := s.tracker.Record(ctx, key, diffSections); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) ready() error {
	if s.bundles == nil {
		return ErrBundleRepositoryRequired
	}
	if s.content == nil {
		return ErrContentSourceRequired
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

func (s *Service) recordAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.Warn("audit record failed", "action", event.Action, "error", err)
	}
}
