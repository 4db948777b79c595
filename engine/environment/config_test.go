package environment

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manifold-cm/manifold/pkg/logger"
)

func testRegistry() Registry {
	return Registry{
		DefaultManifest:         "./manifests",
		EnvironmentTimeout:      "0",
		EnvironmentDataProvider: "none",
	}
}

// capturedContext returns a context whose logger writes to the returned
// buffer, so tests can assert on emitted diagnostics.
func capturedContext(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := logger.NewLogger(&logger.Config{
		Level:      logger.WarnLevel,
		Output:     &buf,
		TimeFormat: "15:04:05",
	})
	return logger.ContextWithLogger(context.Background(), log), &buf
}

func TestDirConfig_ModulePath(t *testing.T) {
	t.Run("Should default to environment modules followed by the global path", func(t *testing.T) {
		cfg := NewDirConfig("/envs/prod", nil, testRegistry(), []string{"/etc/puppet/modules"})

		assert.Equal(t, "/envs/prod/modules:/etc/puppet/modules", cfg.ModulePath(context.Background()))
	})

	t.Run("Should split a delimited override and resolve entries against the environment", func(t *testing.T) {
		raw := NewRawSection(map[string]Value{
			SettingModulePath: ScalarValue("site:/opt/modules:dist"),
		})
		cfg := NewDirConfig("/envs/prod", raw, testRegistry(), []string{"/etc/puppet/modules"})

		assert.Equal(t, "/envs/prod/site:/opt/modules:/envs/prod/dist", cfg.ModulePath(context.Background()))
	})

	t.Run("Should preserve the order of an explicit list override", func(t *testing.T) {
		raw := NewRawSection(map[string]Value{
			SettingModulePath: ListValue("b", "a", "/abs"),
		})
		cfg := NewDirConfig("/envs/prod", raw, testRegistry(), nil)

		assert.Equal(t, "/envs/prod/b:/envs/prod/a:/abs", cfg.ModulePath(context.Background()))
	})

	t.Run("Should pass interpolation tokens through unchanged", func(t *testing.T) {
		raw := NewRawSection(map[string]Value{
			SettingModulePath: ScalarValue("$basemodulepath:extra"),
		})
		cfg := NewDirConfig("/envs/prod", raw, testRegistry(), nil)

		assert.Equal(t, "$basemodulepath:/envs/prod/extra", cfg.ModulePath(context.Background()))
	})
}

func TestDirConfig_Manifest(t *testing.T) {
	t.Run("Should resolve a relative override against the environment directory", func(t *testing.T) {
		raw := NewRawSection(map[string]Value{
			SettingManifest: ScalarValue("manifests"),
		})
		cfg := NewDirConfig("/envs/prod", raw, testRegistry(), nil)

		assert.Equal(t, "/envs/prod/manifests", cfg.Manifest(context.Background()))
	})

	t.Run("Should fall back to the registry default when no override exists", func(t *testing.T) {
		registry := testRegistry()
		registry.DefaultManifest = "/etc/puppet/manifests"
		cfg := NewDirConfig("/envs/prod", nil, registry, nil)

		assert.Equal(t, "/etc/puppet/manifests", cfg.Manifest(context.Background()))
	})

	t.Run("Should resolve a relative registry default against the environment directory", func(t *testing.T) {
		cfg := NewDirConfig("/envs/prod", nil, testRegistry(), nil)

		assert.Equal(t, "/envs/prod/manifests", cfg.Manifest(context.Background()))
	})

	t.Run("Should ignore a conflicting override and emit one error when per-environment manifests are disabled", func(t *testing.T) {
		registry := Registry{
			DefaultManifest:               "/etc/puppet/manifests",
			DisablePerEnvironmentManifest: true,
			EnvironmentTimeout:            "0",
			EnvironmentDataProvider:       "none",
		}
		raw := NewRawSection(map[string]Value{
			SettingManifest: ScalarValue("site.pp"),
		})
		cfg := NewDirConfig("/envs/prod", raw, registry, nil)
		ctx, buf := capturedContext(t)

		manifest := cfg.Manifest(ctx)

		assert.Equal(t, "/etc/puppet/manifests", manifest)
		assert.Equal(t, 1, strings.Count(buf.String(), "ignoring the manifest setting"))
	})

	t.Run("Should stay quiet when the disabled override matches the default", func(t *testing.T) {
		registry := Registry{
			DefaultManifest:               "/etc/puppet/manifests",
			DisablePerEnvironmentManifest: true,
			EnvironmentTimeout:            "0",
			EnvironmentDataProvider:       "none",
		}
		raw := NewRawSection(map[string]Value{
			SettingManifest: ScalarValue("/etc/puppet/manifests"),
		})
		cfg := NewDirConfig("/envs/prod", raw, registry, nil)
		ctx, buf := capturedContext(t)

		manifest := cfg.Manifest(ctx)

		assert.Equal(t, "/etc/puppet/manifests", manifest)
		assert.Empty(t, buf.String())
	})
}

func TestDirConfig_ConfigVersion(t *testing.T) {
	t.Run("Should be absent when no per-environment value is set", func(t *testing.T) {
		cfg := NewDirConfig("/envs/prod", nil, testRegistry(), nil)

		assert.Empty(t, cfg.ConfigVersion(context.Background()))
	})

	t.Run("Should resolve a relative script against the environment directory", func(t *testing.T) {
		raw := NewRawSection(map[string]Value{
			SettingConfigVersion: ScalarValue("scripts/version.sh"),
		})
		cfg := NewDirConfig("/envs/prod", raw, testRegistry(), nil)

		assert.Equal(t, "/envs/prod/scripts/version.sh", cfg.ConfigVersion(context.Background()))
	})

	t.Run("Should pass an interpolation token through unchanged", func(t *testing.T) {
		raw := NewRawSection(map[string]Value{
			SettingConfigVersion: ScalarValue("$my_script"),
		})
		cfg := NewDirConfig("/envs/prod", raw, testRegistry(), nil)

		assert.Equal(t, "$my_script", cfg.ConfigVersion(context.Background()))
	})
}

func TestDirConfig_Timeout(t *testing.T) {
	t.Run("Should normalize the registry default when no override exists", func(t *testing.T) {
		registry := testRegistry()
		registry.EnvironmentTimeout = "3m"
		cfg := NewDirConfig("/envs/prod", nil, registry, nil)

		timeout, err := cfg.Timeout(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(180), timeout.Seconds())
	})

	t.Run("Should prefer the per-environment override", func(t *testing.T) {
		raw := NewRawSection(map[string]Value{
			SettingEnvironmentTimeout: ScalarValue("unlimited"),
		})
		cfg := NewDirConfig("/envs/prod", raw, testRegistry(), nil)

		timeout, err := cfg.Timeout(context.Background())

		require.NoError(t, err)
		assert.True(t, timeout.Unlimited)
	})

	t.Run("Should propagate an unparsable duration", func(t *testing.T) {
		raw := NewRawSection(map[string]Value{
			SettingEnvironmentTimeout: ScalarValue("sometimes"),
		})
		cfg := NewDirConfig("/envs/prod", raw, testRegistry(), nil)

		_, err := cfg.Timeout(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid duration")
	})
}

func TestDirConfig_DataProvider(t *testing.T) {
	t.Run("Should fall back to the registry default", func(t *testing.T) {
		cfg := NewDirConfig("/envs/prod", nil, testRegistry(), nil)

		assert.Equal(t, "none", cfg.DataProvider(context.Background()))
	})

	t.Run("Should return the override verbatim without validation", func(t *testing.T) {
		raw := NewRawSection(map[string]Value{
			SettingEnvironmentDataProvider: ScalarValue("hiera"),
		})
		cfg := NewDirConfig("/envs/prod", raw, testRegistry(), nil)

		assert.Equal(t, "hiera", cfg.DataProvider(context.Background()))
	})
}

func TestStaticConfig(t *testing.T) {
	env := &Environment{
		Name:          "production",
		Manifest:      "/site/manifests/site.pp",
		ModulePath:    []string{"/site/modules", "/shared/modules"},
		ConfigVersion: "/site/version.sh",
	}

	t.Run("Should delegate manifest and config version verbatim", func(t *testing.T) {
		cfg := NewStaticConfig(env, Timeout{Duration: 300 * time.Second})

		assert.Equal(t, env.Manifest, cfg.Manifest(context.Background()))
		assert.Equal(t, env.ConfigVersion, cfg.ConfigVersion(context.Background()))
	})

	t.Run("Should join the environment module path without resolution", func(t *testing.T) {
		cfg := NewStaticConfig(env, Timeout{})

		assert.Equal(t, "/site/modules:/shared/modules", cfg.ModulePath(context.Background()))
	})

	t.Run("Should return the timeout supplied at construction", func(t *testing.T) {
		timeout, err := ParseTimeout("300", SettingEnvironmentTimeout)
		require.NoError(t, err)
		cfg := NewStaticConfig(env, timeout)

		got, err := cfg.Timeout(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(300), got.Seconds())
	})

	t.Run("Should default the data provider to none", func(t *testing.T) {
		cfg := NewStaticConfig(env, Timeout{})

		assert.Equal(t, "none", cfg.DataProvider(context.Background()))
	})

	t.Run("Should honor an explicit data provider", func(t *testing.T) {
		cfg := NewStaticConfig(env, Timeout{}, WithDataProvider("hiera"))

		assert.Equal(t, "hiera", cfg.DataProvider(context.Background()))
	})
}
