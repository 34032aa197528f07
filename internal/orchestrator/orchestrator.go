// Package orchestrator runs one judgement from raw input to outcome:
// validate, check the predefined list, then ask the model.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/valpere/amicooked/internal"
	"github.com/valpere/amicooked/internal/detector"
	"github.com/valpere/amicooked/internal/judge"
	"github.com/valpere/amicooked/internal/lang"
	"github.com/valpere/amicooked/internal/names"
	"github.com/valpere/amicooked/internal/scenario"
	"github.com/valpere/amicooked/internal/validator"
)

type Config struct {
	Threshold    int
	MaxLength    int
	VerdictCheck bool
}

type Option func(*Orchestrator)

func WithLogger(log *zap.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// WithValidator replaces the verdict language validator built from
// lang.Supported. It only runs when Config.VerdictCheck is set.
func WithValidator(v *validator.Validator) Option {
	return func(o *Orchestrator) {
		o.validator = v
	}
}

type Orchestrator struct {
	judge        judge.Judge
	names        *names.Set
	builder      *scenario.Builder
	threshold    int
	verdictCheck bool
	validator    *validator.Validator
	log          *zap.Logger
}

func New(j judge.Judge, set *names.Set, cfg Config, opts ...Option) *Orchestrator {
	threshold := cfg.Threshold
	if threshold <= 0 || threshold > 100 {
		threshold = internal.DefaultThreshold
	}

	o := &Orchestrator{
		judge:        j,
		names:        set,
		builder:      scenario.NewBuilder(cfg.MaxLength),
		threshold:    threshold,
		verdictCheck: cfg.VerdictCheck,
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.verdictCheck && o.validator == nil {
		o.validator = validator.New(detector.New(lang.Codes()...))
	}

	return o
}

func (o *Orchestrator) Threshold() int {
	return o.threshold
}

func (o *Orchestrator) MaxLength() int {
	return o.builder.MaxLength
}

// JudgeScenario validates text, short-circuits on a predefined name and
// otherwise makes exactly one model call. Errors are classified by the
// judge sentinels.
func (o *Orchestrator) JudgeScenario(ctx context.Context, text, language string) (*internal.Outcome, error) {
	r, err := newRun(language)
	if err != nil {
		return nil, err
	}
	if err := o.advance(r, eventStart); err != nil {
		return nil, err
	}

	req, err := o.builder.Build(text, language)
	if err != nil {
		if terr := o.advance(r, eventInvalid); terr != nil {
			return nil, terr
		}
		o.log.Info("scenario rejected",
			zap.String("reason", scenario.Reason(err)),
			zap.String("state", r.current()),
		)
		return nil, fmt.Errorf("%w: %w", judge.ErrInvalidInput, err)
	}
	if err := o.advance(r, eventValid); err != nil {
		return nil, err
	}

	log := o.log.With(zap.String("language", req.Language))
	log.Debug("judging scenario", zap.String("scenario", req.Text))

	if o.names.Contains(req.Text) {
		if err := o.advance(r, eventMatched); err != nil {
			return nil, err
		}
		log.Info("predefined match", zap.String("state", r.current()))
		return o.finish(r, &internal.Outcome{
			IsCooked: true,
			Source:   internal.SourcePredefined,
		})
	}
	if err := o.advance(r, eventNoMatch); err != nil {
		return nil, err
	}

	res, err := o.judge.Judge(ctx, req)
	if err != nil {
		if terr := o.advance(r, eventFail); terr != nil {
			return nil, terr
		}
		fields := []zap.Field{
			zap.String("judge", o.judge.Name()),
			zap.String("kind", judge.Kind(err)),
			zap.String("state", r.current()),
			zap.Error(err),
		}
		switch {
		case errors.Is(err, judge.ErrMalformedResponse):
			log.Error("model reply malformed", fields...)
		case errors.Is(err, judge.ErrInvalidInput):
			log.Warn("judge rejected scenario", fields...)
		default:
			log.Error("model call failed", fields...)
		}
		return nil, err
	}

	res.IsCooked = internal.IsCooked(res.Percentage, o.threshold)
	if err := o.advance(r, eventJudged); err != nil {
		return nil, err
	}

	o.checkVerdict(log, res.Verdict, req.Language)

	log.Info("scenario judged",
		zap.String("judge", o.judge.Name()),
		zap.Int("percentage", res.Percentage),
		zap.Bool("is_cooked", res.IsCooked),
		zap.String("state", r.current()),
	)

	return o.finish(r, &internal.Outcome{
		IsCooked:  res.IsCooked,
		Judgement: res,
		Source:    internal.SourceModel,
	})
}

// advance fires event on r. A rejected event means the pipeline took a path
// the machine does not allow; it is logged and returned.
func (o *Orchestrator) advance(r *run, event string) error {
	if err := r.send(event); err != nil {
		o.log.Error("unexpected state transition",
			zap.String("event", event),
			zap.String("state", r.current()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// finish returns outcome only once r has reached a terminal state.
func (o *Orchestrator) finish(r *run, outcome *internal.Outcome) (*internal.Outcome, error) {
	if !r.done() {
		err := fmt.Errorf("judgement ended in non-terminal state %q", r.current())
		o.log.Error("unexpected state transition", zap.String("state", r.current()), zap.Error(err))
		return nil, err
	}
	return outcome, nil
}

// checkVerdict only logs; a verdict in the wrong language is still returned.
func (o *Orchestrator) checkVerdict(log *zap.Logger, verdict, language string) {
	if !o.verdictCheck || o.validator == nil {
		return
	}
	if ok, err := o.validator.IsValid(verdict, language); !ok {
		log.Warn("verdict language mismatch", zap.Error(err))
	}
}
