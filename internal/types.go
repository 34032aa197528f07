package internal

// DefaultThreshold is the percentage at or above which a judgement counts as cooked.
const DefaultThreshold = 50

// Source identifies which path produced an Outcome.
type Source string

const (
	SourcePredefined Source = "predefined"
	SourceModel      Source = "model"
)

type JudgementRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type JudgementResult struct {
	Percentage int    `json:"percentage"`
	Verdict    string `json:"verdict"`
	IsCooked   bool   `json:"isCooked"`
}

// NewJudgementResult derives IsCooked from percentage and threshold.
// A threshold outside [0, 100] falls back to DefaultThreshold.
func NewJudgementResult(percentage int, verdict string, threshold int) JudgementResult {
	return JudgementResult{
		Percentage: percentage,
		Verdict:    verdict,
		IsCooked:   IsCooked(percentage, threshold),
	}
}

func IsCooked(percentage, threshold int) bool {
	if threshold < 0 || threshold > 100 {
		threshold = DefaultThreshold
	}
	return percentage >= threshold
}

// Outcome is what the pipeline hands to its caller. Judgement is nil when the
// input hit the predefined list.
type Outcome struct {
	IsCooked  bool             `json:"isCooked"`
	Judgement *JudgementResult `json:"judgement"`
	Source    Source           `json:"source"`
}
