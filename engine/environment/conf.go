package environment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/ini.v1"

	"github.com/manifold-cm/manifold/pkg/logger"
)

// ConfFileName is the per-environment override file located inside an
// environment directory.
const ConfFileName = "environment.conf"

// mainSection is the sole recognized section of environment.conf. Settings
// written above any section header belong to it as well.
const mainSection = "main"

// Recognized environment.conf settings. The first three are valid only in the
// per-environment file; the latter two are shared with the installation-wide
// registry vocabulary.
const (
	SettingModulePath              = "modulepath"
	SettingManifest                = "manifest"
	SettingConfigVersion           = "config_version"
	SettingEnvironmentTimeout      = "environment_timeout"
	SettingEnvironmentDataProvider = "environment_data_provider"
)

// Value is a raw per-environment setting value: a scalar string as parsed
// from the conf file, or an ordered list when constructed programmatically.
// The tag is fixed at construction so resolution never inspects types.
type Value struct {
	scalar string
	list   []string
	isList bool
}

// ScalarValue wraps a single textual setting value.
func ScalarValue(s string) Value {
	return Value{scalar: s}
}

// ListValue wraps an ordered sequence of setting values.
func ListValue(items ...string) Value {
	return Value{list: items, isList: true}
}

// IsList reports whether the value carries an ordered sequence.
func (v Value) IsList() bool {
	return v.isList
}

// List returns the ordered sequence form of the value.
func (v Value) List() []string {
	return v.list
}

func (v Value) String() string {
	return v.scalar
}

// RawSection holds the settings extracted from the main section of an
// environment.conf file. A nil *RawSection means no file existed, which is
// distinct from a file with an empty main section.
type RawSection struct {
	settings map[string]Value
}

// NewRawSection builds a section from explicit settings, for programmatic
// construction and tests.
func NewRawSection(settings map[string]Value) *RawSection {
	if settings == nil {
		settings = make(map[string]Value)
	}
	return &RawSection{settings: settings}
}

// Get returns the raw value stored under name. The receiver may be nil.
func (s *RawSection) Get(name string) (Value, bool) {
	if s == nil {
		return Value{}, false
	}
	v, ok := s.settings[name]
	return v, ok
}

// Loader locates and parses the environment.conf override file inside an
// environment directory.
type Loader struct {
	fs afero.Fs
}

// NewLoader creates a conf file loader over the given filesystem. A nil fs
// uses the operating system filesystem.
func NewLoader(fs afero.Fs) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{fs: fs}
}

// Load resolves the directory-backed configuration for the environment at
// pathToEnv. A missing environment.conf means the environment carries no
// overrides and is not worth a diagnostic. A present but malformed file is an
// operator error and fails the load. Unknown sections and settings are
// reported as warnings and ignored.
func (l *Loader) Load(
	ctx context.Context,
	pathToEnv string,
	registry Registry,
	globalModulePath []string,
) (*DirConfig, error) {
	abs, err := filepath.Abs(pathToEnv)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve environment path %s: %w", pathToEnv, err)
	}
	confPath := filepath.Join(abs, ConfFileName)
	data, err := afero.ReadFile(l.fs, confPath)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDirConfig(abs, nil, registry, globalModulePath), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", confPath, err)
	}
	doc, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", confPath, err)
	}
	result := Validate(confPath, doc)
	log := logger.FromContext(ctx)
	for _, warning := range result.Warnings {
		log.Warn(warning)
	}
	return NewDirConfig(abs, extractMain(doc), registry, globalModulePath), nil
}

// extractMain collects the settings of the main section, including settings
// written above any section header. It returns nil for an empty document so
// that "file absent" and "file empty" resolve identically.
func extractMain(doc *ini.File) *RawSection {
	settings := make(map[string]Value)
	for _, key := range doc.Section(ini.DefaultSection).Keys() {
		settings[key.Name()] = ScalarValue(key.Value())
	}
	if main, err := doc.GetSection(mainSection); err == nil {
		for _, key := range main.Keys() {
			settings[key.Name()] = ScalarValue(key.Value())
		}
		return &RawSection{settings: settings}
	}
	if len(settings) == 0 {
		return nil
	}
	return &RawSection{settings: settings}
}
