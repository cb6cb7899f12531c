// Package render decides, per field and viewer audience, whether translated,
// partially translated, or default-locale content is served.
package render

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/coursekit/go-i18n/bundle"
	"github.com/coursekit/go-i18n/diff"
	"github.com/coursekit/go-i18n/extract"
	"github.com/coursekit/go-i18n/internal/logging"
	"github.com/coursekit/go-i18n/pkg/interfaces"
	"github.com/coursekit/go-i18n/resource"
)

var (
	// ErrBundleRepositoryRequired indicates the gate was built without a
	// bundle repository.
	ErrBundleRepositoryRequired = errors.New("render: bundle repository is required")
	// ErrContentSourceRequired indicates the gate was built without a content
	// source.
	ErrContentSourceRequired = errors.New("render: content source is required")
)

// Audience distinguishes viewers who should see translation diagnostics from
// viewers who must always receive safe content.
type Audience int

const (
	// AudienceLearner never sees translation errors; broken sections fall
	// back to default-locale content.
	AudienceLearner Audience = iota
	// AudienceReviewer sees inline diagnostics where stored translations
	// disagree with the current source structure.
	AudienceReviewer
)

// TranslatabilityChecker reports whether a resource participates in the
// translation workflow at all.
type TranslatabilityChecker interface {
	IsTranslatable(ctx context.Context, key resource.Key) (bool, error)
}

// GateOption mutates the gate configuration.
type GateOption func(*Gate)

// WithGateLogger overrides the gate's logger.
func WithGateLogger(logger interfaces.Logger) GateOption {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithTranslatability wires the checker consulted before any bundle lookup.
func WithTranslatability(checker TranslatabilityChecker) GateOption {
	return func(g *Gate) {
		g.translatable = checker
	}
}

// Gate serves the translated rendering of resource fields. Every decision is
// made per section: one broken section never poisons its siblings.
type Gate struct {
	bundles      bundle.Repository
	content      bundle.ContentSource
	registry     extract.TagRegistry
	translatable TranslatabilityChecker
	logger       interfaces.Logger
}

// NewGate constructs a rendering gate.
func NewGate(bundles bundle.Repository, content bundle.ContentSource, registry extract.TagRegistry, opts ...GateOption) *Gate {
	g := &Gate{
		bundles:  bundles,
		content:  content,
		registry: registry,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RenderedField pairs a field name with the markup chosen for the viewer.
type RenderedField struct {
	Name  string
	Value string
}

// Render resolves every field of the resource for the locale and audience.
// Fields keep their declared order.
func (g *Gate) Render(ctx context.Context, key resource.BundleKey, audience Audience) ([]RenderedField, error) {
	if g.bundles == nil {
		return nil, ErrBundleRepositoryRequired
	}
	if g.content == nil {
		return nil, ErrContentSourceRequired
	}

	fields, err := g.content.Fields(ctx, key.Resource)
	if err != nil {
		return nil, err
	}

	stored, err := g.loadBundle(ctx, key)
	if err != nil {
		return nil, err
	}

	out := make([]RenderedField, 0, len(fields))
	for _, field := range fields {
		value, err := g.renderField(field, stored, audience)
		if err != nil {
			return nil, err
		}
		out = append(out, RenderedField{Name: field.Name, Value: value})
	}
	return out, nil
}

// RenderField resolves a single field for the locale and audience.
func (g *Gate) RenderField(ctx context.Context, field bundle.Field, key resource.BundleKey, audience Audience) (string, error) {
	if g.bundles == nil {
		return "", ErrBundleRepositoryRequired
	}
	stored, err := g.loadBundle(ctx, key)
	if err != nil {
		return "", err
	}
	return g.renderField(field, stored, audience)
}

// loadBundle returns nil when the resource is excluded from translation or no
// bundle has been stored; both mean default content.
func (g *Gate) loadBundle(ctx context.Context, key resource.BundleKey) (*bundle.Bundle, error) {
	if g.translatable != nil {
		ok, err := g.translatable.IsTranslatable(ctx, key.Resource)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	}

	stored, err := g.bundles.Load(ctx, key)
	if err != nil {
		if errors.Is(err, bundle.ErrBundleNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return stored, nil
}

func (g *Gate) renderField(field bundle.Field, stored *bundle.Bundle, audience Audience) (string, error) {
	section := stored.Section(field.Name)
	if section == nil {
		return g.finish(field, field.Value)
	}

	extraction := extract.ExtractField(field.Type, field.Value, g.registry)
	fragments := extraction.Fragments()

	if len(section.Data) != len(fragments) {
		mismatch := &diff.Mismatch{Stored: len(section.Data), Expected: len(fragments)}
		g.logger.Warn("translation mismatch",
			"field", field.Name,
			"stored", mismatch.Stored,
			"expected", mismatch.Expected)
		if audience == AudienceReviewer {
			return inlineError(mismatch.Message()), nil
		}
		return g.finish(field, field.Value)
	}

	translated := make([]string, len(fragments))
	for i, fragment := range section.Data {
		if fragment.TargetValue != "" {
			translated[i] = fragment.TargetValue
		} else {
			translated[i] = fragments[i]
		}
	}
	value, err := extraction.Reassemble(translated)
	if err != nil {
		return "", err
	}
	return g.finish(field, value)
}

// finish runs serve-time custom tag expansion on html output.
func (g *Gate) finish(field bundle.Field, value string) (string, error) {
	if field.Type != bundle.FieldHTML {
		return value, nil
	}
	return extract.ExpandTags(value, g.registry)
}

func inlineError(message string) string {
	return fmt.Sprintf(
		`<div class="translation-error"><div class="translation-error-body">%s</div></div>`,
		html.EscapeString(message))
}
