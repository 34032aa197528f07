package judge

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/valpere/amicooked/internal"
	"github.com/valpere/amicooked/internal/postprocess"
)

const replySchemaJSON = `{
  "type": "object",
  "required": ["percentage", "verdict"],
  "properties": {
    "percentage": { "type": "number", "minimum": 0, "maximum": 100 },
    "verdict": { "type": "string", "minLength": 1 }
  }
}`

var replySchemaLoader = gojsonschema.NewStringLoader(replySchemaJSON)

// ParseReply turns the completion text into a judgement. Missing, mistyped
// or out-of-range fields fail with ErrMalformedResponse; nothing defaults.
func ParseReply(content string, threshold int) (*internal.JudgementResult, error) {
	cleaned := postprocess.ExtractJSON(content)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty completion", ErrMalformedResponse)
	}

	result, err := gojsonschema.Validate(replySchemaLoader, gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("%w: reply is not valid JSON: %v", ErrMalformedResponse, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, strings.Join(msgs, "; "))
	}

	var parsed struct {
		Percentage float64 `json:"percentage"`
		Verdict    string  `json:"verdict"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to decode reply: %v", ErrMalformedResponse, err)
	}

	verdict := strings.TrimSpace(parsed.Verdict)
	if verdict == "" {
		return nil, fmt.Errorf("%w: verdict is blank", ErrMalformedResponse)
	}

	res := internal.NewJudgementResult(int(math.Round(parsed.Percentage)), verdict, threshold)
	return &res, nil
}
