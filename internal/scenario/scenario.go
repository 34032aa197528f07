// Package scenario validates user scenarios and builds judgement requests.
package scenario

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/valpere/amicooked/internal"
	"github.com/valpere/amicooked/internal/lang"
)

// DefaultMaxLength is the maximum scenario length in characters.
const DefaultMaxLength = 200

const (
	ReasonEmpty   = "empty"
	ReasonTooLong = "too_long"
)

var (
	ErrEmpty   = errors.New("scenario is empty")
	ErrTooLong = errors.New("scenario is too long")
)

// Validate checks the trimmed scenario against maxLength, counted in
// characters. maxLength <= 0 means DefaultMaxLength.
func Validate(text string, maxLength int) error {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmpty
	}
	if utf8.RuneCountInString(trimmed) > maxLength {
		return ErrTooLong
	}
	return nil
}

// Reason returns the short reason code carried by err, or "" when err is
// not a validation error.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrEmpty):
		return ReasonEmpty
	case errors.Is(err, ErrTooLong):
		return ReasonTooLong
	default:
		return ""
	}
}

type Builder struct {
	MaxLength int
}

func NewBuilder(maxLength int) *Builder {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Builder{MaxLength: maxLength}
}

// Build validates text and returns a trimmed request whose language is one
// of lang.Supported.
func (b *Builder) Build(text, language string) (internal.JudgementRequest, error) {
	if err := Validate(text, b.MaxLength); err != nil {
		return internal.JudgementRequest{}, err
	}
	return internal.JudgementRequest{
		Text:     strings.TrimSpace(text),
		Language: lang.Code(lang.Resolve(language)),
	}, nil
}
