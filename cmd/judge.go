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
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/amicooked/internal"
	"github.com/valpere/amicooked/internal/client"
)

var (
	judgeLang   string
	judgeRemote bool
	judgeJSON   bool
)

var judgeCmd = &cobra.Command{
	Use:   "judge <scenario...>",
	Short: "Judge a scenario from the terminal",
	Long: `Judge a scenario locally with the configured provider, or with --remote
through the HTTP API at client.base_url (VITE_API_URL).

Example:
  amicooked judge --lang fr "I forgot my project deadline"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runJudge,
}

func init() {
	rootCmd.AddCommand(judgeCmd)

	judgeCmd.Flags().StringVarP(&judgeLang, "lang", "l", "en", "Verdict language (en, fr)")
	judgeCmd.Flags().BoolVar(&judgeRemote, "remote", false, "Use the HTTP API instead of calling the provider directly")
	judgeCmd.Flags().BoolVar(&judgeJSON, "json", false, "Print the judgement as JSON")
}

func runJudge(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	text := strings.Join(args, " ")
	ctx := cmd.Context()

	var j client.Judgement
	if judgeRemote {
		res, err := client.New(cfg.Client.BaseURL, cfg.Client.Timeout).JudgeScenario(ctx, text, judgeLang)
		if err != nil {
			return err
		}
		j = *res
	} else {
		o, err := buildOrchestrator(ctx, cfg, log)
		if err != nil {
			return err
		}
		outcome, err := o.JudgeScenario(ctx, text, judgeLang)
		if err != nil {
			return err
		}
		j = fromOutcome(outcome)
	}

	if judgeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(j)
	}
	printJudgement(cmd.OutOrStdout(), j)
	return nil
}

func fromOutcome(o *internal.Outcome) client.Judgement {
	j := client.Judgement{IsCooked: o.IsCooked}
	if o.Judgement == nil {
		j.Predefined = true
		return j
	}
	p := o.Judgement.Percentage
	j.Percentage = &p
	j.Verdict = o.Judgement.Verdict
	return j
}

func printJudgement(w io.Writer, j client.Judgement) {
	status := "not cooked"
	if j.IsCooked {
		status = "COOKED"
	}

	if j.Percentage == nil {
		fmt.Fprintf(w, "%s (predefined)\n", status)
		return
	}
	fmt.Fprintf(w, "%d%% %s\n", *j.Percentage, status)
	if j.Verdict != "" {
		fmt.Fprintln(w, j.Verdict)
	}
}
