package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/valpere/amicooked/internal"
	"github.com/valpere/amicooked/internal/judge"
	"github.com/valpere/amicooked/internal/names"
	"github.com/valpere/amicooked/internal/scenario"
)

// genai's auth transport imports opencensus, whose view worker starts at
// init and never exits.
var ignoreOpencensus = goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start")

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, ignoreOpencensus)
}

type mockJudge struct {
	judgeFunc func(ctx context.Context, req internal.JudgementRequest) (*internal.JudgementResult, error)
	calls     atomic.Int32
	lastReq   internal.JudgementRequest
}

func (m *mockJudge) Name() string { return "mock" }

func (m *mockJudge) Judge(ctx context.Context, req internal.JudgementRequest) (*internal.JudgementResult, error) {
	m.calls.Add(1)
	m.lastReq = req
	if m.judgeFunc == nil {
		return &internal.JudgementResult{Percentage: 10, Verdict: "fine"}, nil
	}
	return m.judgeFunc(ctx, req)
}

func returning(percentage int, verdict string) *mockJudge {
	return &mockJudge{
		judgeFunc: func(ctx context.Context, req internal.JudgementRequest) (*internal.JudgementResult, error) {
			res := internal.NewJudgementResult(percentage, verdict, internal.DefaultThreshold)
			return &res, nil
		},
	}
}

func failing(err error) *mockJudge {
	return &mockJudge{
		judgeFunc: func(ctx context.Context, req internal.JudgementRequest) (*internal.JudgementResult, error) {
			return nil, err
		},
	}
}

func TestOrchestrator_New_Defaults(t *testing.T) {
	o := New(&mockJudge{}, nil, Config{})

	if o.Threshold() != internal.DefaultThreshold {
		t.Errorf("expected default threshold, got %d", o.Threshold())
	}
	if o.MaxLength() != scenario.DefaultMaxLength {
		t.Errorf("expected default max length, got %d", o.MaxLength())
	}
	if o.validator != nil {
		t.Error("expected no validator when the verdict check is off")
	}
}

func TestOrchestrator_PredefinedMatch(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "exact", input: "Jean Dupont"},
		{name: "case and spaces", input: "  jean DUPONT  "},
		{name: "accented", input: "Jéan Dupönt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := returning(3, "you live")
			o := New(j, names.NewSet([]string{"Jean Dupont", "Léa"}), Config{})

			outcome, err := o.JudgeScenario(context.Background(), tt.input, "en")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want := &internal.Outcome{IsCooked: true, Source: internal.SourcePredefined}
			if diff := cmp.Diff(want, outcome); diff != "" {
				t.Errorf("outcome mismatch (-want +got):\n%s", diff)
			}
			if j.calls.Load() != 0 {
				t.Errorf("expected no model call, got %d", j.calls.Load())
			}
		})
	}
}

func TestOrchestrator_ModelJudgement(t *testing.T) {
	j := returning(85, "bro forgot the deadline, this is NOT it 💀")
	o := New(j, names.NewSet([]string{"Jean Dupont"}), Config{})

	outcome, err := o.JudgeScenario(context.Background(), "  I forgot my project deadline ", "fr-CA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &internal.Outcome{
		IsCooked: true,
		Judgement: &internal.JudgementResult{
			Percentage: 85,
			Verdict:    "bro forgot the deadline, this is NOT it 💀",
			IsCooked:   true,
		},
		Source: internal.SourceModel,
	}
	if diff := cmp.Diff(want, outcome); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
	if j.calls.Load() != 1 {
		t.Errorf("expected exactly 1 model call, got %d", j.calls.Load())
	}

	wantReq := internal.JudgementRequest{Text: "I forgot my project deadline", Language: "fr"}
	if diff := cmp.Diff(wantReq, j.lastReq); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestOrchestrator_InvalidInput(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantReason string
	}{
		{name: "empty", input: "", wantReason: scenario.ReasonEmpty},
		{name: "whitespace", input: " \t\n ", wantReason: scenario.ReasonEmpty},
		{name: "too long", input: strings.Repeat("a", 201), wantReason: scenario.ReasonTooLong},
		{name: "too long multibyte", input: strings.Repeat("é", 201), wantReason: scenario.ReasonTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := returning(85, "cooked")
			// A blank or long input must fail before the predefined check.
			o := New(j, names.NewSet([]string{strings.Repeat("a", 201)}), Config{})

			outcome, err := o.JudgeScenario(context.Background(), tt.input, "en")
			if !errors.Is(err, judge.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if got := scenario.Reason(err); got != tt.wantReason {
				t.Errorf("reason = %q, want %q", got, tt.wantReason)
			}
			if outcome != nil {
				t.Errorf("expected nil outcome, got %+v", outcome)
			}
			if j.calls.Load() != 0 {
				t.Errorf("expected no model call, got %d", j.calls.Load())
			}
		})
	}
}

func TestOrchestrator_MaxLengthBoundary(t *testing.T) {
	j := returning(20, "ok")
	o := New(j, nil, Config{})

	if _, err := o.JudgeScenario(context.Background(), strings.Repeat("a", 200), "en"); err != nil {
		t.Errorf("expected 200 characters to pass, got %v", err)
	}
	if j.calls.Load() != 1 {
		t.Errorf("expected 1 model call, got %d", j.calls.Load())
	}
}

func TestOrchestrator_Threshold(t *testing.T) {
	tests := []struct {
		name       string
		threshold  int
		percentage int
		expected   bool
	}{
		{name: "default at boundary", threshold: 0, percentage: 50, expected: true},
		{name: "default below boundary", threshold: 0, percentage: 49, expected: false},
		{name: "zero percent", threshold: 0, percentage: 0, expected: false},
		{name: "full percent", threshold: 0, percentage: 100, expected: true},
		{name: "custom threshold", threshold: 80, percentage: 79, expected: false},
		{name: "custom threshold met", threshold: 80, percentage: 80, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The judge reports IsCooked for the default threshold; the
			// orchestrator recomputes it for its own.
			o := New(returning(tt.percentage, "verdict"), nil, Config{Threshold: tt.threshold})

			outcome, err := o.JudgeScenario(context.Background(), "some scenario", "en")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if outcome.IsCooked != tt.expected {
				t.Errorf("isCooked = %v, want %v", outcome.IsCooked, tt.expected)
			}
			if outcome.Judgement.IsCooked != outcome.IsCooked {
				t.Error("judgement and outcome disagree on isCooked")
			}
		})
	}
}

func TestOrchestrator_JudgeErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{name: "malformed", err: fmt.Errorf("%w: not json", judge.ErrMalformedResponse), wantMsg: "model reply malformed"},
		{name: "upstream", err: fmt.Errorf("%w: status 500", judge.ErrUpstream), wantMsg: "model call failed"},
		{name: "timeout", err: fmt.Errorf("%w: timed out", judge.ErrUpstream), wantMsg: "model call failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)
			j := failing(tt.err)
			o := New(j, names.NewSet([]string{"Jean Dupont"}), Config{}, WithLogger(zap.New(core)))

			outcome, err := o.JudgeScenario(context.Background(), "I forgot my deadline", "en")
			if !errors.Is(err, tt.err) {
				t.Errorf("expected %v to be surfaced, got %v", tt.err, err)
			}
			if outcome != nil {
				t.Errorf("expected nil outcome, got %+v", outcome)
			}
			if j.calls.Load() != 1 {
				t.Errorf("expected exactly 1 model call, got %d", j.calls.Load())
			}

			entries := logs.FilterMessage(tt.wantMsg).All()
			if len(entries) != 1 {
				t.Fatalf("expected one %q log entry, got %d", tt.wantMsg, len(entries))
			}
			if got := entries[0].ContextMap()["state"]; got != stateFailed {
				t.Errorf("expected state %q in log, got %v", stateFailed, got)
			}
		})
	}
}

func TestOrchestrator_ContextCancelled(t *testing.T) {
	j := &mockJudge{
		judgeFunc: func(ctx context.Context, req internal.JudgementRequest) (*internal.JudgementResult, error) {
			<-ctx.Done()
			return nil, fmt.Errorf("%w: %w", judge.ErrUpstream, ctx.Err())
		},
	}
	o := New(j, nil, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.JudgeScenario(ctx, "hello", "en")
	if !errors.Is(err, judge.ErrUpstream) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancelled upstream error, got %v", err)
	}
}

func TestOrchestrator_Logging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	o := New(returning(85, "cooked"), names.NewSet([]string{"Jean Dupont"}), Config{}, WithLogger(zap.New(core)))

	o.JudgeScenario(context.Background(), "Jean Dupont", "en")
	o.JudgeScenario(context.Background(), "", "en")
	o.JudgeScenario(context.Background(), "I forgot my deadline", "en")

	for _, msg := range []string{"predefined match", "scenario rejected", "scenario judged"} {
		if logs.FilterMessage(msg).Len() != 1 {
			t.Errorf("expected one %q entry", msg)
		}
	}

	for _, e := range logs.All() {
		if _, ok := e.ContextMap()["scenario"]; ok && e.Level != zap.DebugLevel {
			t.Errorf("scenario text logged at %s in %q", e.Level, e.Message)
		}
	}
}

func TestOrchestrator_NoCrossInvocationState(t *testing.T) {
	var calls atomic.Int32
	j := &mockJudge{
		judgeFunc: func(ctx context.Context, req internal.JudgementRequest) (*internal.JudgementResult, error) {
			if calls.Add(1) == 1 {
				return nil, fmt.Errorf("%w: flaky", judge.ErrUpstream)
			}
			return &internal.JudgementResult{Percentage: 60, Verdict: "meh"}, nil
		},
	}
	o := New(j, nil, Config{})

	if _, err := o.JudgeScenario(context.Background(), "hello", "en"); err == nil {
		t.Fatal("expected first call to fail")
	}

	outcome, err := o.JudgeScenario(context.Background(), "hello", "en")
	if err != nil {
		t.Fatalf("expected resubmission to succeed, got %v", err)
	}
	if !outcome.IsCooked {
		t.Error("expected 60 to be cooked")
	}
}

func TestOrchestrator_AdvanceRejectsUnexpectedEvent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	o := New(&mockJudge{}, nil, Config{}, WithLogger(zap.New(core)))

	r, err := newRun("en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := o.advance(r, eventJudged); err == nil {
		t.Fatal("expected judged to be rejected in the idle state")
	}

	entries := logs.FilterMessage("unexpected state transition").All()
	if len(entries) != 1 {
		t.Fatalf("expected one transition error entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["event"]; got != eventJudged {
		t.Errorf("expected event %q in log, got %v", eventJudged, got)
	}
}

func TestOrchestrator_FinishRequiresTerminalState(t *testing.T) {
	o := New(&mockJudge{}, nil, Config{})

	r, err := newRun("en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, ev := range []string{eventStart, eventValid} {
		if err := o.advance(r, ev); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	outcome, err := o.finish(r, &internal.Outcome{IsCooked: true})
	if err == nil || outcome != nil {
		t.Errorf("expected finish to fail in %q, got %+v, %v", r.current(), outcome, err)
	}

	if err := o.advance(r, eventMatched); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outcome, err = o.finish(r, &internal.Outcome{IsCooked: true})
	if err != nil || outcome == nil {
		t.Errorf("expected finish to succeed in %q, got %v", r.current(), err)
	}
}

func TestOrchestrator_NoTransitionErrorsOnAnyPath(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreOpencensus)

	core, logs := observer.New(zap.DebugLevel)
	j := &mockJudge{
		judgeFunc: func(ctx context.Context, req internal.JudgementRequest) (*internal.JudgementResult, error) {
			if req.Text == "boom" {
				return nil, fmt.Errorf("%w: status 500", judge.ErrUpstream)
			}
			return &internal.JudgementResult{Percentage: 70, Verdict: "mid"}, nil
		},
	}
	o := New(j, names.NewSet([]string{"Jean Dupont"}), Config{}, WithLogger(zap.New(core)))

	for _, input := range []string{"Jean Dupont", "", "boom", "I forgot my deadline"} {
		o.JudgeScenario(context.Background(), input, "en")
	}

	if n := logs.FilterMessage("unexpected state transition").Len(); n != 0 {
		t.Errorf("expected no transition errors, got %d", n)
	}
}
