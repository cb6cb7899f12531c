package logging

import (
	"context"

	"github.com/coursekit/go-i18n/pkg/interfaces"
)

const (
	rootModule     = "i18n"
	consoleModule  = "i18n.console"
	renderModule   = "i18n.render"
	catalogModule  = "i18n.catalog"
	progressModule = "i18n.progress"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ConsoleLogger returns the logger namespace reserved for the translation
// console service.
func ConsoleLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, consoleModule)
}

// RenderLogger returns the logger namespace reserved for the rendering gate.
func RenderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, renderModule)
}

// CatalogLogger returns the logger namespace reserved for catalog interchange.
func CatalogLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, catalogModule)
}

// ProgressLogger returns the logger namespace reserved for progress tracking.
func ProgressLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, progressModule)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
