// Package i18n wires the course translation pipeline into one runtime facade:
// fragment extraction, translation diffing, the translator console, progress
// tracking, locale resolution, catalog interchange, and the rendering gate.
package i18n

import (
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/coursekit/go-i18n/bundle"
	"github.com/coursekit/go-i18n/catalog"
	"github.com/coursekit/go-i18n/console"
	"github.com/coursekit/go-i18n/extract"
	"github.com/coursekit/go-i18n/internal/audit"
	"github.com/coursekit/go-i18n/internal/logging"
	"github.com/coursekit/go-i18n/internal/logging/gologger"
	"github.com/coursekit/go-i18n/pkg/interfaces"
	"github.com/coursekit/go-i18n/progress"
	"github.com/coursekit/go-i18n/render"
)

// ErrContentSourceRequired indicates the module was configured without a
// course content provider.
var ErrContentSourceRequired = errors.New("i18n: content source is required")

// LoggingConfig selects the go-logger backend settings for the module.
type LoggingConfig struct {
	Provider  interfaces.LoggerProvider
	Level     string
	Format    string
	AddSource bool
}

// Config assembles the module's collaborators. Zero values fall back to
// in-memory persistence and no-op logging, which is the test configuration.
type Config struct {
	// DB enables Bun-backed persistence. Leave nil for in-memory stores.
	DB *bun.DB
	// Content supplies each resource's translatable fields.
	Content bundle.ContentSource
	// CustomTagPrefixes and CustomTags seed the placeholder registry.
	CustomTagPrefixes []string
	CustomTags        map[string][]string
	// SourceLocale is the locale content is authored in.
	SourceLocale string
	// DefaultLocale resolves the course default when a viewer has no
	// preference.
	DefaultLocale render.DefaultLocaleProvider
	// CanEdit gates console saves per locale.
	CanEdit console.EditPredicate
	// Audit receives change events; nil keeps an in-memory recorder.
	Audit audit.Recorder
	// Logging selects the logger backend.
	Logging LoggingConfig
	// Clock overrides audit timestamps.
	Clock func() time.Time
}

// Module is the top level translation runtime facade.
type Module struct {
	registry *extract.Registry
	bundles  bundle.Repository
	progress bundle.ProgressRepository
	tracker  *progress.Tracker
	console  *console.Service
	gate     *render.Gate
	resolver *render.Resolver
	catalog  *catalog.Service
	audit    audit.Recorder
	logs     interfaces.LoggerProvider
}

// New constructs and wires a translation module.
func New(cfg Config) (*Module, error) {
	if cfg.Content == nil {
		return nil, ErrContentSourceRequired
	}

	logs := cfg.Logging.Provider
	if logs == nil && (cfg.Logging.Level != "" || cfg.Logging.Format != "") {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
		})
		if err != nil {
			return nil, err
		}
		logs = provider
	}

	registry := extract.NewRegistry()
	for _, prefix := range cfg.CustomTagPrefixes {
		registry.RegisterPrefix(prefix)
	}
	for name, attrs := range cfg.CustomTags {
		registry.Register(name, attrs...)
	}

	var (
		bundles      bundle.Repository
		progressRepo bundle.ProgressRepository
	)
	if cfg.DB != nil {
		bundles = bundle.NewBunRepository(cfg.DB)
		progressRepo = bundle.NewBunProgressRepository(cfg.DB)
	} else {
		bundles = bundle.NewMemoryRepository()
		progressRepo = bundle.NewMemoryProgressRepository()
	}

	recorder := cfg.Audit
	if recorder == nil {
		recorder = audit.NewInMemoryRecorder()
	}

	tracker := progress.NewTracker(progressRepo,
		progress.WithLogger(logging.ProgressLogger(logs)))

	consoleOpts := []console.Option{
		console.WithAuditRecorder(recorder),
		console.WithLogger(logging.ConsoleLogger(logs)),
		console.WithEditPredicate(cfg.CanEdit),
		console.WithSourceLocale(cfg.SourceLocale),
	}
	catalogOpts := []catalog.Option{
		catalog.WithTracker(tracker),
		catalog.WithAuditRecorder(recorder),
		catalog.WithLogger(logging.CatalogLogger(logs)),
	}
	if cfg.Clock != nil {
		consoleOpts = append(consoleOpts, console.WithClock(cfg.Clock))
		catalogOpts = append(catalogOpts, catalog.WithClock(cfg.Clock))
	}

	m := &Module{
		registry: registry,
		bundles:  bundles,
		progress: progressRepo,
		tracker:  tracker,
		audit:    recorder,
		logs:     logs,
	}
	m.console = console.NewService(bundles, tracker, cfg.Content, registry, consoleOpts...)
	m.gate = render.NewGate(bundles, cfg.Content, registry,
		render.WithTranslatability(tracker),
		render.WithGateLogger(logging.RenderLogger(logs)))
	m.resolver = render.NewResolver(cfg.DefaultLocale)
	m.catalog = catalog.NewService(bundles, cfg.Content, registry, catalogOpts...)
	return m, nil
}

// Registry exposes the custom tag registry for late registrations.
func (m *Module) Registry() *extract.Registry { return m.registry }

// Bundles exposes the bundle repository.
func (m *Module) Bundles() bundle.Repository { return m.bundles }

// Progress exposes the progress repository, including its event stream.
func (m *Module) Progress() bundle.ProgressRepository { return m.progress }

// Tracker exposes the progress tracker.
func (m *Module) Tracker() *progress.Tracker { return m.tracker }

// Console exposes the translator console service.
func (m *Module) Console() *console.Service { return m.console }

// Gate exposes the rendering gate.
func (m *Module) Gate() *render.Gate { return m.gate }

// Resolver exposes the locale resolver.
func (m *Module) Resolver() *render.Resolver { return m.resolver }

// Catalog exposes the catalog import/export service.
func (m *Module) Catalog() *catalog.Service { return m.catalog }

// Audit exposes the audit recorder the module writes to.
func (m *Module) Audit() audit.Recorder { return m.audit }
