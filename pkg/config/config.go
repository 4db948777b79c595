package config

// Config is the installation-wide settings registry for Manifold. It provides
// type-safe access to the global defaults consulted during environment
// resolution, loaded with strict precedence: built-in defaults, then the
// settings file, then environment variables.
type Config struct {
	Log          LogConfig          `koanf:"log"          validate:"required"`
	Environments EnvironmentsConfig `koanf:"environments" validate:"required"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error disabled" env:"MANIFOLD_LOG_LEVEL"`
	JSON  bool   `koanf:"json"                                                  env:"MANIFOLD_LOG_JSON"`
}

// EnvironmentsConfig contains the installation-wide defaults for directory
// environments. The last four keys share their vocabulary with the
// per-environment environment.conf override file.
type EnvironmentsConfig struct {
	EnvironmentPath               string   `koanf:"environmentpath"                  validate:"required" env:"MANIFOLD_ENVIRONMENTPATH"`
	BaseModulePath                []string `koanf:"basemodulepath"                                       env:"MANIFOLD_BASEMODULEPATH"`
	DefaultManifest               string   `koanf:"default_manifest"                 validate:"required" env:"MANIFOLD_DEFAULT_MANIFEST"`
	DisablePerEnvironmentManifest bool     `koanf:"disable_per_environment_manifest"                     env:"MANIFOLD_DISABLE_PER_ENVIRONMENT_MANIFEST"`
	EnvironmentTimeout            string   `koanf:"environment_timeout"              validate:"required" env:"MANIFOLD_ENVIRONMENT_TIMEOUT"`
	EnvironmentDataProvider       string   `koanf:"environment_data_provider"        validate:"required" env:"MANIFOLD_ENVIRONMENT_DATA_PROVIDER"`
}

// Default returns the built-in fallback tier of the registry. Every value here
// can be overridden by the settings file or by environment variables.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
		Environments: EnvironmentsConfig{
			EnvironmentPath:               "/etc/manifold/environments",
			BaseModulePath:                []string{"/etc/manifold/modules"},
			DefaultManifest:               "./manifests",
			DisablePerEnvironmentManifest: false,
			EnvironmentTimeout:            "0",
			EnvironmentDataProvider:       "none",
		},
	}
}
