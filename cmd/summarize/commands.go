package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"content-summarizer/internal/bootstrap"
	"content-summarizer/internal/config"
	"content-summarizer/internal/domain/entity"
	"content-summarizer/internal/observability/logging"

	"github.com/spf13/cobra"
)

const (
	outputText = "text"
	outputJSON = "json"
)

type options struct {
	configPath string
	output     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "summarize",
		Short:         "Summarize text, a PDF or a web page",
		Long:          "Summarize extracts plain text from the given input and prints an abstractive summary produced by the configured model backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.output != outputText && opts.output != outputJSON {
				return fmt.Errorf("invalid --output %q (must be %q or %q)", opts.output, outputText, outputJSON)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file (default: $CONFIG_FILE)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", outputText, "Output format: text or json")

	root.AddCommand(
		&cobra.Command{
			Use:   "text [TEXT]",
			Short: "Summarize text given as an argument or on stdin",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var text string
				if len(args) == 1 && args[0] != "-" {
					text = args[0]
				} else {
					data, err := io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return fmt.Errorf("failed to read stdin: %w", err)
					}
					text = string(data)
				}
				return summarize(cmd, opts, entity.TextSource{Text: text})
			},
		},
		&cobra.Command{
			Use:   "pdf FILE",
			Short: "Summarize a PDF file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				// #nosec G304 -- the file is chosen by the operator running the CLI
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", args[0], err)
				}
				uri := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(data)
				return summarize(cmd, opts, entity.PDFSource{DataURI: uri})
			},
		},
		&cobra.Command{
			Use:   "url URL",
			Short: "Summarize the paragraphs of a web page",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return summarize(cmd, opts, entity.URLSource{URL: args[0]})
			},
		},
	)

	return root
}

func summarize(cmd *cobra.Command, opts *options, src entity.Source) error {
	ctx := cmd.Context()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	// Logs go to stderr so stdout carries only the summary.
	logger := logging.NewLogger(cfg.Log.Level, "text", cmd.ErrOrStderr())

	app, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	result, err := app.Pipeline.Run(ctx, src)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.output == outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	_, err = fmt.Fprintln(out, strings.TrimSpace(result.Summary))
	return err
}
