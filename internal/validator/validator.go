// Package validator checks that a model verdict is written in the language the
// caller asked for.
package validator

import (
	"fmt"
	"strings"

	"github.com/valpere/amicooked/internal/detector"
)

// minValidationLength is the minimum rune count required to attempt language detection.
// Shorter texts produce unreliable results and are accepted without validation.
const minValidationLength = 20

// Validator checks that a verdict is written in the expected target language.
// The underlying language detector is expensive to build; reuse the instance.
type Validator struct {
	det *detector.Detector
}

func New(det *detector.Detector) *Validator {
	return &Validator{det: det}
}

// IsValid returns true when verdict appears to be written in targetLang.
//
// Short texts (fewer than minValidationLength runes), texts whose language
// cannot be determined, and target languages the detector was not built for
// pass without error. When the detected language differs from targetLang the
// returned error names both codes.
func (v *Validator) IsValid(verdict, targetLang string) (bool, error) {
	if targetLang == "" || v == nil || !v.det.Supports(targetLang) {
		return true, nil
	}

	text := strings.TrimSpace(verdict)
	if text == "" {
		return false, fmt.Errorf("verdict is empty")
	}

	// Detector is unreliable for very short texts; skip validation.
	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		// Ambiguous language: cannot validate, pass through.
		return true, nil
	}

	if !strings.EqualFold(detected, targetLang) {
		return false, fmt.Errorf("expected %s but detected %s", targetLang, detected)
	}

	return true, nil
}
