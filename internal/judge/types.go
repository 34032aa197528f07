// Package judge asks a language model how cooked a scenario is.
package judge

import (
	"context"
	"errors"
	"time"

	"github.com/valpere/amicooked/internal"
)

const (
	DefaultTemperature = 0.2
	DefaultTimeout     = 30 * time.Second
)

var (
	// ErrInvalidInput wraps a scenario validation error; no request was sent.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUpstream covers network failures, timeouts and non-2xx replies.
	ErrUpstream = errors.New("upstream error")
	// ErrMalformedResponse means the reply did not hold a usable judgement.
	ErrMalformedResponse = errors.New("malformed response")
)

type ServiceConfig struct {
	APIKey      string        `mapstructure:"api_key" json:"api_key" yaml:"api_key"`
	Model       string        `mapstructure:"model" json:"model" yaml:"model"`
	BaseURL     string        `mapstructure:"base_url" json:"base_url" yaml:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
	Temperature float64       `mapstructure:"temperature" json:"temperature" yaml:"temperature"`

	// Filled from the judgement settings, not the provider section.
	MaxLength int `mapstructure:"-" json:"-" yaml:"-"`
	Threshold int `mapstructure:"-" json:"-" yaml:"-"`
}

// temperature treats 0 as unset; config.Validate rejects an explicit 0.
func (c ServiceConfig) temperature() float64 {
	if c.Temperature <= 0 {
		return DefaultTemperature
	}
	return c.Temperature
}

func (c ServiceConfig) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c ServiceConfig) threshold() int {
	if c.Threshold <= 0 || c.Threshold > 100 {
		return internal.DefaultThreshold
	}
	return c.Threshold
}

// Judge issues exactly one model call per invocation. Implementations
// re-validate req and never retry.
type Judge interface {
	Name() string
	Judge(ctx context.Context, req internal.JudgementRequest) (*internal.JudgementResult, error)
}

// Kind names the error class of err for logs: "invalid_input", "upstream",
// "malformed_response" or "unknown".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	default:
		return "unknown"
	}
}

func classified(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrUpstream) || errors.Is(err, ErrMalformedResponse)
}
