package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xaenox/sentimentlens/internal/session"
	"go.uber.org/zap"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [text...]",
		Short: "Analyze the sentiment and emotions of a text",
		Long:  "Analyze the text given as arguments, or standard input when no arguments are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(b)
			}

			a, err := openApp(cmd, opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			a.session.UpdateDraft(text)
			if !a.session.SubmitDraft(cmd.Context()) {
				return errors.New("nothing to analyze: the text is empty")
			}

			s := a.session.Snapshot()
			if s.Status == session.StatusError {
				return errReported
			}
			return a.out.Result(*s.CurrentResult)
		},
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recent analyses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.out.History(a.session.History())
		},
	}
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	var copySummary bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a past analysis from history",
		Long:  "Show a past analysis from history. A unique prefix of the id is enough.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := resolveID(a.session, args[0])
			if err != nil {
				return err
			}
			if err := a.session.SelectFromHistory(id); err != nil {
				return fmt.Errorf("show %s: %w", args[0], err)
			}

			result := a.session.Snapshot().CurrentResult
			if err := a.out.Result(*result); err != nil {
				return err
			}

			if copySummary {
				if err := opts.copyText(result.Summary); err != nil {
					a.logger.Warn("Failed to copy summary", zap.Error(err))
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not copy to clipboard: %v\n", err)
				} else {
					fmt.Fprintln(cmd.ErrOrStderr(), "Summary copied to clipboard!")
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&copySummary, "copy", false, "copy the summary to the clipboard")
	return cmd
}

func newClearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all stored analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.session.ClearHistory(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	}
}

// resolveID expands a unique id prefix to the full id. Exact matches win.
func resolveID(s *session.Machine, prefix string) (string, error) {
	var matches []string
	for _, item := range s.History() {
		if item.ID == prefix {
			return item.ID, nil
		}
		if strings.HasPrefix(item.ID, prefix) {
			matches = append(matches, item.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("show %s: %w", prefix, session.ErrNotInHistory)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("id prefix %q is ambiguous (%d matches)", prefix, len(matches))
	}
}
