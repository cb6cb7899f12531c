package render

import (
	"context"
	"errors"
	"testing"
)

func TestResolver_PreferredWins(t *testing.T) {
	resolver := NewResolver(DefaultLocaleFunc(func(context.Context) (string, error) {
		t.Fatal("default lookup must not run when a preference is set")
		return "", nil
	}))

	locale, err := resolver.Resolve(context.Background(), "pt-BR")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if locale != "pt-BR" {
		t.Fatalf("Resolve() = %q, want pt-BR verbatim", locale)
	}
}

func TestResolver_FallsBackToCourseDefault(t *testing.T) {
	resolver := NewResolver(DefaultLocaleFunc(func(context.Context) (string, error) {
		return "el", nil
	}))

	locale, err := resolver.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if locale != "el" {
		t.Fatalf("Resolve() = %q, want el", locale)
	}
}

func TestResolver_InvalidLocaleRejected(t *testing.T) {
	resolver := NewResolver(DefaultLocaleFunc(func(context.Context) (string, error) {
		return "el", nil
	}))

	if _, err := resolver.Resolve(context.Background(), "not a locale!"); err == nil {
		t.Fatal("expected invalid locale error")
	}
}

func TestResolver_RecursionGuard(t *testing.T) {
	var resolver *Resolver
	resolver = NewResolver(DefaultLocaleFunc(func(ctx context.Context) (string, error) {
		// Simulates the settings lookup rendering course settings content,
		// which resolves the locale again.
		return resolver.Resolve(ctx, "")
	}))

	if _, err := resolver.Resolve(context.Background(), ""); !errors.Is(err, ErrLocaleResolutionCycle) {
		t.Fatalf("expected ErrLocaleResolutionCycle, got %v", err)
	}
}

func TestResolver_RequiresProvider(t *testing.T) {
	resolver := NewResolver(nil)
	if _, err := resolver.Resolve(context.Background(), ""); !errors.Is(err, ErrDefaultLocaleProviderRequired) {
		t.Fatalf("expected ErrDefaultLocaleProviderRequired, got %v", err)
	}
}
