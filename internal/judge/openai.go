package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/valpere/amicooked/internal"
	"github.com/valpere/amicooked/internal/scenario"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-3.5-turbo"
)

// maxErrorBody bounds how much of a failed reply is read into the error.
const maxErrorBody = 4 << 10

// OpenAIJudge talks to any OpenAI-compatible chat completions endpoint.
type OpenAIJudge struct {
	cfg    ServiceConfig
	client *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
	Temperature    float64        `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewOpenAIJudge(cfg ServiceConfig) *OpenAIJudge {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenAIBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	return &OpenAIJudge{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.timeout()},
	}
}

func (j *OpenAIJudge) Name() string {
	return "openai"
}

func (j *OpenAIJudge) Model() string {
	return j.cfg.Model
}

func (j *OpenAIJudge) Judge(ctx context.Context, req internal.JudgementRequest) (*internal.JudgementResult, error) {
	if err := scenario.Validate(req.Text, j.cfg.MaxLength); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if j.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key required", ErrUpstream)
	}

	body := chatRequest{
		Model: j.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: buildSystemPrompt(req.Language)},
			{Role: "user", Content: strings.TrimSpace(req.Text)},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
		Temperature:    j.cfg.temperature(),
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, j.cfg.BaseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrUpstream, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+j.cfg.APIKey)

	resp, err := j.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: API returned status %d%s", ErrUpstream, resp.StatusCode, describeErrorBody(resp.Body))
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrMalformedResponse, err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response from API", ErrMalformedResponse)
	}

	return ParseReply(completion.Choices[0].Message.Content, j.cfg.threshold())
}

// describeErrorBody extracts the provider's error message, if any, as a
// ": message" suffix.
func describeErrorBody(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var errResp apiErrorResponse
	if json.Unmarshal(raw, &errResp) == nil && errResp.Error.Message != "" {
		return ": " + errResp.Error.Message
	}
	return ": " + strings.TrimSpace(string(raw))
}
