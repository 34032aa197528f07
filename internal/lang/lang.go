// Package lang resolves the loosely formatted language strings sent by
// clients into one of the supported verdict languages.
package lang

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var (
	English = language.English
	French  = language.French

	// Default is used whenever a client sends nothing usable.
	Default = English

	// Supported lists the verdict languages, Default first.
	Supported = []language.Tag{English, French}

	matcher = language.NewMatcher(Supported)
)

// Resolve maps raw ("fr", "FR", "fr-CA", "french?") to a supported tag.
// Blank and unrecognized input resolves to Default.
func Resolve(raw string) language.Tag {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Default
	}

	tag, err := language.Parse(raw)
	if err != nil {
		return Default
	}

	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Default
	}
	return Supported[idx]
}

// Code returns the ISO 639-1 code of tag, e.g. "fr".
func Code(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// Name returns the English display name of tag, e.g. "French".
func Name(tag language.Tag) string {
	name := display.English.Tags().Name(tag)
	if name == "" {
		return Code(tag)
	}
	return name
}

// Codes returns the ISO 639-1 codes of all supported languages.
func Codes() []string {
	codes := make([]string, 0, len(Supported))
	for _, t := range Supported {
		codes = append(codes, Code(t))
	}
	return codes
}
