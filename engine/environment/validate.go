package environment

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// validSettings is the closed vocabulary accepted in environment.conf.
var validSettings = map[string]bool{
	SettingModulePath:              true,
	SettingManifest:                true,
	SettingConfigVersion:           true,
	SettingEnvironmentTimeout:      true,
	SettingEnvironmentDataProvider: true,
}

// ValidationResult carries the diagnostics computed for a parsed
// environment.conf document. Warnings are returned rather than logged so the
// check stays testable without a logging harness; Valid is informational only
// and never blocks a load.
type ValidationResult struct {
	Valid    bool
	Warnings []string
}

// Validate checks a parsed environment.conf document against the closed
// setting vocabulary. Extra sections and unknown settings are ignored during
// resolution, so each kind produces a single warning naming the offenders.
func Validate(path string, doc *ini.File) ValidationResult {
	var warnings []string
	if extra := extraSections(doc); len(extra) > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"invalid sections [%s] in config file at %s; environment.conf may only contain a [main] section, they are ignored",
			strings.Join(extra, ", "), path,
		))
	}
	if extraneous := extraneousSettings(doc); len(extraneous) > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"invalid settings [%s] in config file at %s; they are ignored",
			strings.Join(extraneous, ", "), path,
		))
	}
	return ValidationResult{Valid: len(warnings) == 0, Warnings: warnings}
}

// extraSections returns the names of sections other than main, in document
// order.
func extraSections(doc *ini.File) []string {
	var extra []string
	for _, section := range doc.Sections() {
		name := section.Name()
		if name == ini.DefaultSection || name == mainSection {
			continue
		}
		extra = append(extra, name)
	}
	return extra
}

// extraneousSettings returns the main-section setting names that fall outside
// the closed vocabulary, in document order.
func extraneousSettings(doc *ini.File) []string {
	var extraneous []string
	seen := make(map[string]bool)
	collect := func(section *ini.Section) {
		for _, key := range section.Keys() {
			name := key.Name()
			if validSettings[name] || seen[name] {
				continue
			}
			seen[name] = true
			extraneous = append(extraneous, name)
		}
	}
	collect(doc.Section(ini.DefaultSection))
	if main, err := doc.GetSection(mainSection); err == nil {
		collect(main)
	}
	return extraneous
}
