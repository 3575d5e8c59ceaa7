// Copyright (C) 2019-2025 Algorand, Inc.
// This file is part of go-algojig
//
// go-algojig is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-algojig is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-algojig.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/algorand/go-algojig/config"
	"github.com/algorand/go-algojig/logging"
	"github.com/algorand/go-algojig/util/metrics"
)

var log = logging.Base()

var (
	configDir    string
	logLevel     string
	logJSON      bool
	printMetrics bool
)

var rootCmd = &cobra.Command{
	Use:   "algojig",
	Short: "Inspect programs and ledgers of the algojig test harness",
	Long:  "algojig drives the evaluation engine used by the test harness: it compiles TEAL, resolves program counters to source lines and dumps the ledger the harness last wrote.",
	Args:  cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logLevel
		if level == "" {
			level = loadConfig().LogLevel
		}
		lvl, err := logging.ParseLevel(level)
		if err != nil {
			reportErrorf("%v", err)
		}
		log.SetLevel(lvl)
		log.SetOutput(os.Stderr)
		if logJSON {
			log.SetJSONFormatter()
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if !printMetrics {
			return
		}
		if err := metrics.WriteMetrics(os.Stderr); err != nil {
			reportErrorf("Unable to write metrics: %v", err)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		// If no arguments passed, we should fallback to help
		cmd.HelpFunc()(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(engineCmd)
	rootCmd.AddCommand(dumpCmd)

	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "", "Directory holding config.json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level, overriding the configured one")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log in JSON instead of text")
	rootCmd.PersistentFlags().BoolVar(&printMetrics, "metrics", false, "Print engine metrics to stderr on exit")
}

// loadConfig reads the configuration from the --config directory, or the
// defaults without one.
func loadConfig() config.Local {
	if configDir == "" {
		return config.GetDefaultLocal()
	}
	cfg, err := config.LoadConfigFromDisk(configDir)
	if err != nil && !os.IsNotExist(err) {
		reportErrorf("Unable to load config from %s: %v", configDir, err)
	}
	return cfg
}

func reportInfof(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

func reportWarnf(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, color.YellowString("Warning: "+format, args...))
}

func reportErrorf(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, color.RedString(format, args...))
	os.Exit(1)
}

func main() {
	// Hidden command to generate docs in a given directory
	// algojig generate-docs [path]
	if len(os.Args) == 3 && os.Args[1] == "generate-docs" {
		err := doc.GenMarkdownTree(rootCmd, os.Args[2])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
