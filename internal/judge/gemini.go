package judge

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/valpere/amicooked/internal"
	"github.com/valpere/amicooked/internal/scenario"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiJudge asks Google's Gemini API, in JSON response mode.
type GeminiJudge struct {
	cfg    ServiceConfig
	client *genai.Client
}

func NewGeminiJudge(ctx context.Context, cfg ServiceConfig) (*GeminiJudge, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiJudge{cfg: cfg, client: client}, nil
}

func (j *GeminiJudge) Name() string {
	return "gemini"
}

func (j *GeminiJudge) Model() string {
	return j.cfg.Model
}

func (j *GeminiJudge) Judge(ctx context.Context, req internal.JudgementRequest) (*internal.JudgementResult, error) {
	if err := scenario.Validate(req.Text, j.cfg.MaxLength); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	temperature := float32(j.cfg.temperature())
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(buildSystemPrompt(req.Language), genai.RoleUser),
		Temperature:       &temperature,
		ResponseMIMEType:  "application/json",
	}

	resp, err := j.client.Models.GenerateContent(ctx, j.cfg.Model, genai.Text(strings.TrimSpace(req.Text)), genCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty response from Gemini", ErrMalformedResponse)
	}

	return ParseReply(text, j.cfg.threshold())
}
