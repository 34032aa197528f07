package judge

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"

	"github.com/valpere/amicooked/internal"
)

type timeoutJudge struct {
	inner   Judge
	timeout time.Duration
}

// WithTimeout bounds every call to inner by d (DefaultTimeout when d <= 0).
// A call that runs out of time fails with ErrUpstream.
func WithTimeout(inner Judge, d time.Duration) Judge {
	if d <= 0 {
		d = DefaultTimeout
	}
	return &timeoutJudge{inner: inner, timeout: d}
}

func (j *timeoutJudge) Name() string {
	return j.inner.Name()
}

func (j *timeoutJudge) Judge(ctx context.Context, req internal.JudgementRequest) (*internal.JudgementResult, error) {
	t := timeout.New[*internal.JudgementResult](timeout.Config{
		DefaultTimeout: j.timeout,
	})

	res, err := t.Execute(ctx, j.timeout, func(ctx context.Context) (*internal.JudgementResult, error) {
		return j.inner.Judge(ctx, req)
	})
	if err != nil {
		if classified(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s timed out after %s: %w", ErrUpstream, j.inner.Name(), j.timeout, err)
	}
	return res, nil
}
