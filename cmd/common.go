/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/valpere/amicooked/internal/config"
	"github.com/valpere/amicooked/internal/judge"
	"github.com/valpere/amicooked/internal/logging"
	"github.com/valpere/amicooked/internal/names"
	"github.com/valpere/amicooked/internal/orchestrator"
)

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, nil, err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// buildJudge constructs the configured provider client, bounded by
// provider.timeout.
func buildJudge(ctx context.Context, cfg *config.Config) (judge.Judge, error) {
	sc := cfg.JudgeConfig()

	var j judge.Judge
	switch cfg.Provider.Name {
	case config.ProviderOpenAI:
		j = judge.NewOpenAIJudge(sc)
	case config.ProviderGemini:
		g, err := judge.NewGeminiJudge(ctx, sc)
		if err != nil {
			return nil, err
		}
		j = g
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider.Name)
	}

	return judge.WithTimeout(j, sc.Timeout), nil
}

func buildOrchestrator(ctx context.Context, cfg *config.Config, log *zap.Logger) (*orchestrator.Orchestrator, error) {
	j, err := buildJudge(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Provider.APIKey == "" {
		log.Warn("no API key configured; model judgements will fail", zap.String("provider", cfg.Provider.Name))
	}

	set := names.NewSet(cfg.Judgement.CookedNames)
	log.Info("judgement pipeline ready",
		zap.String("provider", j.Name()),
		zap.Int("cooked_names", set.Len()),
		zap.Int("threshold", cfg.Judgement.Threshold),
		zap.Int("max_length", cfg.Judgement.MaxLength),
	)

	return orchestrator.New(j, set, orchestrator.Config{
		Threshold:    cfg.Judgement.Threshold,
		MaxLength:    cfg.Judgement.MaxLength,
		VerdictCheck: cfg.Judgement.VerdictCheck,
	}, orchestrator.WithLogger(log)), nil
}
