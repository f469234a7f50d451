package main

import (
	"errors"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

// errReported marks a failure that has already been shown to the user.
var errReported = errors.New("error already reported")

type rootOptions struct {
	configPath string
	copyText   func(string) error
}

func defaultOptions() *rootOptions {
	return &rootOptions{copyText: clipboard.WriteAll}
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "sentimentlens",
		Short: "Sentiment and emotion analysis for short texts",
		Long: `sentimentlens sends a text to a language model, shows its sentiment,
emotions, key phrases and a short summary, and keeps the last analyses
in a local history.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "path to the config file (optional)")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newHistoryCmd(opts),
		newShowCmd(opts),
		newClearCmd(opts),
	)
	return root
}
