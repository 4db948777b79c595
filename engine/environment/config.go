package environment

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifold-cm/manifold/pkg/logger"
)

// Config is the uniform read surface over an environment's effective
// configuration. Callers hold either the directory-backed or the static
// variant without needing to know which.
type Config interface {
	Manifest(ctx context.Context) string
	ModulePath(ctx context.Context) string
	ConfigVersion(ctx context.Context) string
	Timeout(ctx context.Context) (Timeout, error)
	DataProvider(ctx context.Context) string
}

var (
	_ Config = (*DirConfig)(nil)
	_ Config = (*StaticConfig)(nil)
)

// Registry carries the installation-wide defaults consulted when the
// per-environment file does not override a setting. It is injected at
// construction so resolution is testable with fabricated registries.
type Registry struct {
	DefaultManifest               string
	DisablePerEnvironmentManifest bool
	EnvironmentTimeout            string
	EnvironmentDataProvider       string
}

// DirConfig resolves the effective configuration of a directory environment.
// It is immutable after construction and holds no file handles; each accessor
// applies the override-default-fallback precedence for its setting.
type DirConfig struct {
	pathToEnv        string
	raw              *RawSection
	registry         Registry
	globalModulePath []string
}

// NewDirConfig builds a directory-backed resolver. pathToEnv is canonicalized
// to an absolute path; raw may be nil when no environment.conf exists.
func NewDirConfig(pathToEnv string, raw *RawSection, registry Registry, globalModulePath []string) *DirConfig {
	if abs, err := filepath.Abs(pathToEnv); err == nil {
		pathToEnv = abs
	}
	return &DirConfig{
		pathToEnv:        pathToEnv,
		raw:              raw,
		registry:         registry,
		globalModulePath: globalModulePath,
	}
}

// Path returns the canonical environment directory.
func (c *DirConfig) Path() string {
	return c.pathToEnv
}

// rawSetting returns the value stored under name in the conf file's main
// section, reporting absence when no file existed or the setting is unset.
func (c *DirConfig) rawSetting(name string) (Value, bool) {
	return c.raw.Get(name)
}

// absolutize resolves a possibly-relative path against the environment
// directory. Values carrying a deferred-interpolation marker ($-prefixed)
// belong to a later expansion pass and are returned unchanged.
func (c *DirConfig) absolutize(path string) string {
	if path == "" || strings.HasPrefix(path, "$") {
		return path
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.pathToEnv, path)
}

// fallbackManifest resolves the registry's default_manifest, which may be
// relative to the environment directory.
func (c *DirConfig) fallbackManifest() string {
	manifest := c.registry.DefaultManifest
	if filepath.IsAbs(manifest) {
		return filepath.Clean(manifest)
	}
	return filepath.Join(c.pathToEnv, manifest)
}

// Manifest returns the entry-point manifest for the environment. When the
// installation disables per-environment manifests, the registry default wins
// and a conflicting conf file value is reported at error severity; the
// conflict never fails resolution.
func (c *DirConfig) Manifest(ctx context.Context) string {
	fallback := c.fallbackManifest()
	if c.registry.DisablePerEnvironmentManifest {
		if v, ok := c.rawSetting(SettingManifest); ok {
			envManifest := c.absolutize(v.String())
			if envManifest != fallback {
				logger.FromContext(ctx).Error(
					"ignoring the manifest setting in environment.conf because per-environment manifests are disabled for this installation",
					"environment", c.pathToEnv,
					"manifest", envManifest,
					"default_manifest", fallback,
				)
			}
		}
		return fallback
	}
	if v, ok := c.rawSetting(SettingManifest); ok {
		return c.absolutize(v.String())
	}
	return fallback
}

// ModulePath returns the effective module search path joined with the
// platform path-list separator. With no override the environment-local
// modules directory precedes the installation's global module path; explicit
// overrides keep the order given in the file, with each entry resolved
// against the environment directory.
func (c *DirConfig) ModulePath(_ context.Context) string {
	sep := string(os.PathListSeparator)
	if v, ok := c.rawSetting(SettingModulePath); ok {
		var entries []string
		if v.IsList() {
			entries = v.List()
		} else {
			entries = strings.Split(v.String(), sep)
		}
		resolved := make([]string, len(entries))
		for i, entry := range entries {
			resolved[i] = c.absolutize(entry)
		}
		return strings.Join(resolved, sep)
	}
	entries := append([]string{filepath.Join(c.pathToEnv, "modules")}, c.globalModulePath...)
	return strings.Join(entries, sep)
}

// ConfigVersion returns the per-environment config version script, or the
// empty string: no installation-wide default exists for this setting.
func (c *DirConfig) ConfigVersion(_ context.Context) string {
	if v, ok := c.rawSetting(SettingConfigVersion); ok {
		return c.absolutize(v.String())
	}
	return ""
}

// Timeout returns the normalized environment cache timeout, preferring the
// per-environment value over the registry default. An unparsable duration is
// an operator error and propagates.
func (c *DirConfig) Timeout(_ context.Context) (Timeout, error) {
	raw := c.registry.EnvironmentTimeout
	if v, ok := c.rawSetting(SettingEnvironmentTimeout); ok {
		raw = v.String()
	}
	return ParseTimeout(raw, SettingEnvironmentTimeout)
}

// DataProvider returns the environment data provider name, unvalidated at
// this layer.
func (c *DirConfig) DataProvider(_ context.Context) string {
	if v, ok := c.rawSetting(SettingEnvironmentDataProvider); ok {
		return v.String()
	}
	return c.registry.EnvironmentDataProvider
}

// StaticConfig resolves configuration for environments that are not backed by
// a directory on disk. Manifest, module path and config version come verbatim
// from an already-materialized environment; timeout and data provider are
// fixed at construction. No file I/O and no diagnostics.
type StaticConfig struct {
	env          *Environment
	timeout      Timeout
	dataProvider string
}

// StaticOption customizes a StaticConfig.
type StaticOption func(*StaticConfig)

// WithDataProvider overrides the default "none" data provider.
func WithDataProvider(name string) StaticOption {
	return func(c *StaticConfig) {
		c.dataProvider = name
	}
}

// NewStaticConfig builds a resolver over an already-materialized environment.
// The environment is borrowed, not copied.
func NewStaticConfig(env *Environment, timeout Timeout, opts ...StaticOption) *StaticConfig {
	c := &StaticConfig{
		env:          env,
		timeout:      timeout,
		dataProvider: "none",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Manifest returns the environment's manifest unmodified.
func (c *StaticConfig) Manifest(_ context.Context) string {
	return c.env.Manifest
}

// ModulePath joins the environment's already-resolved module path with the
// platform path-list separator.
func (c *StaticConfig) ModulePath(_ context.Context) string {
	return strings.Join(c.env.ModulePath, string(os.PathListSeparator))
}

// ConfigVersion returns the environment's config version unmodified.
func (c *StaticConfig) ConfigVersion(_ context.Context) string {
	return c.env.ConfigVersion
}

// Timeout returns the timeout supplied at construction.
func (c *StaticConfig) Timeout(_ context.Context) (Timeout, error) {
	return c.timeout, nil
}

// DataProvider returns the data provider supplied at construction.
func (c *StaticConfig) DataProvider(_ context.Context) string {
	return c.dataProvider
}
