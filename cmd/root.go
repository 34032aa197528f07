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
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.1.0"

var (
	cfgFile  string
	logLevel string

	// v collects defaults, the config file, env and bound flags.
	v = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "amicooked",
	Short: "Find out how cooked you are",
	Long: `amicooked asks a language model how much trouble a situation puts you in
and answers with a percentage and a short verdict.

Names listed in judgement.cooked_names (or C00KED_NAMES) are always cooked
and never reach the model.

Use "amicooked serve" to run the HTTP API and "amicooked judge" to try it
from the terminal.`,
	Version:      version,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")

	v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}
