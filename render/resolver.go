package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

var (
	// ErrDefaultLocaleProviderRequired indicates the resolver was built
	// without a default-locale source.
	ErrDefaultLocaleProviderRequired = errors.New("render: default locale provider is required")
	// ErrLocaleResolutionCycle indicates the default-locale lookup re-entered
	// the resolver, typically while rendering the course settings resource
	// the default locale is read from.
	ErrLocaleResolutionCycle = errors.New("render: locale resolution re-entered itself")
)

// DefaultLocaleProvider returns the course-wide default locale. The lookup
// usually reads course settings, which is itself a translatable resource.
type DefaultLocaleProvider interface {
	DefaultLocale(ctx context.Context) (string, error)
}

// DefaultLocaleFunc adapts a function to the DefaultLocaleProvider contract.
type DefaultLocaleFunc func(ctx context.Context) (string, error)

// DefaultLocale calls the wrapped function.
func (f DefaultLocaleFunc) DefaultLocale(ctx context.Context) (string, error) {
	return f(ctx)
}

type resolutionGuardKey struct{}

// Resolver determines the effective locale for a viewer: an explicit viewer
// preference wins, otherwise the course default applies. Because the default
// is read from course settings, and course settings content is rendered
// through this same machinery, the resolver marks the context while the
// lookup runs and fails the nested call instead of recursing forever.
type Resolver struct {
	defaults DefaultLocaleProvider
}

// NewResolver constructs a resolver over the supplied default-locale source.
func NewResolver(defaults DefaultLocaleProvider) *Resolver {
	return &Resolver{defaults: defaults}
}

// Resolve returns the effective locale for the request. The preferred locale
// is used verbatim when present and well formed; locale strings are validated
// as BCP 47 tags here, at the rendering boundary, and nowhere else.
func (r *Resolver) Resolve(ctx context.Context, preferred string) (string, error) {
	preferred = strings.TrimSpace(preferred)
	if preferred != "" {
		if err := validateLocale(preferred); err != nil {
			return "", err
		}
		return preferred, nil
	}

	if r.defaults == nil {
		return "", ErrDefaultLocaleProviderRequired
	}
	if ctx.Value(resolutionGuardKey{}) != nil {
		return "", ErrLocaleResolutionCycle
	}

	guarded := context.WithValue(ctx, resolutionGuardKey{}, struct{}{})
	locale, err := r.defaults.DefaultLocale(guarded)
	if err != nil {
		return "", err
	}
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return "", errors.New("render: default locale is empty")
	}
	if err := validateLocale(locale); err != nil {
		return "", err
	}
	return locale, nil
}

func validateLocale(locale string) error {
	if _, err := language.Parse(locale); err != nil {
		return fmt.Errorf("render: invalid locale %q: %w", locale, err)
	}
	return nil
}
