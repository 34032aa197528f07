// Package detector identifies the language of model verdicts.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// known maps ISO 639-1 codes to lingua languages. Building a detector from
// all languages costs hundreds of megabytes, so only these are loadable.
var known = map[string]lingua.Language{
	"en": lingua.English,
	"fr": lingua.French,
	"de": lingua.German,
	"es": lingua.Spanish,
	"it": lingua.Italian,
	"pt": lingua.Portuguese,
	"uk": lingua.Ukrainian,
}

type Detector struct {
	detector  lingua.LanguageDetector
	languages map[lingua.Language]bool
}

// New builds a detector limited to codes. Unknown codes are ignored; lingua
// needs at least two languages, so fewer than two known codes yields nil.
func New(codes ...string) *Detector {
	seen := make(map[lingua.Language]bool)
	var languages []lingua.Language
	for _, c := range codes {
		l, ok := known[strings.ToLower(strings.TrimSpace(c))]
		if !ok || seen[l] {
			continue
		}
		seen[l] = true
		languages = append(languages, l)
	}
	if len(languages) < 2 {
		return nil
	}

	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(languages...).
		Build()

	return &Detector{detector: detector, languages: seen}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if d == nil || text == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the lower-case ISO 639-1 code of text's language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// Supports reports whether code is one of the languages d was built with.
func (d *Detector) Supports(code string) bool {
	if d == nil {
		return false
	}
	l, ok := known[strings.ToLower(code)]
	return ok && d.languages[l]
}
