package config

import (
	"context"
	"sync"

	"github.com/manifold-cm/manifold/pkg/logger"
)

// ContextKey is an alias used for storing values in context
type ContextKey string

const (
	// ConfigCtxKey is the context key used to store the *Config instance
	ConfigCtxKey ContextKey = "settings_registry"
)

// ContextWithConfig stores the settings registry in the context
func ContextWithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ConfigCtxKey, cfg)
}

var defaultConfig *Config
var defaultConfigOnce sync.Once

// FromContext retrieves the settings registry from the context. If none is
// found, it falls back to a lazily-initialized registry built from defaults
// and environment variables, so components always see a usable registry.
func FromContext(ctx context.Context) *Config {
	if ctx != nil {
		if cfg, ok := ctx.Value(ConfigCtxKey).(*Config); ok && cfg != nil {
			return cfg
		}
	}
	return getDefaultConfig(ctx)
}

// getDefaultConfig returns a singleton registry initialized with built-in
// defaults and environment overrides. The settings file is not consulted
// here; callers that need it must load a registry and attach it to the
// context explicitly.
func getDefaultConfig(ctx context.Context) *Config {
	defaultConfigOnce.Do(func() {
		cfg, err := NewService().Load(ctx)
		if err != nil {
			log := logger.FromContext(ctx)
			log.Warn("failed to load default settings registry, using built-in defaults", "error", err)
			cfg = Default()
		}
		defaultConfig = cfg
	})
	return defaultConfig
}
