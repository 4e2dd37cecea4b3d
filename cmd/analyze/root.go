package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"support-assistant/internal/analytics"
	"support-assistant/internal/logging"
)

var (
	logDir  string
	format  string
	verbose bool
	logger  = zap.NewNop()
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))
)

var rootCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Summarize logged support interactions",
	Long: `Reads every interactions_YYYY-MM-DD.jsonl file in the log directory and
prints accuracy, edit patterns, tone performance, common issues and suggestions.

Examples:
  analyze                          # text report for ./logs
  analyze --log-dir /var/support   # another directory
  analyze --format json            # machine-readable output`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		l, err := logging.New(level)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := analytics.Load(logDir)
		if err != nil {
			return fmt.Errorf("load interactions from %s: %w", logDir, err)
		}
		logger.Debug("loaded interactions", zap.String("dir", logDir), zap.Int("count", len(records)))
		return writeReport(cmd.OutOrStdout(), analytics.Analyze(records), format)
	},
}

func writeReport(w io.Writer, rep *analytics.Report, format string) error {
	switch format {
	case "text", "":
		_, _ = fmt.Fprintln(w, titleStyle.Render("AI SUPPORT ASSISTANT - ANALYTICS REPORT"))
		_, _ = fmt.Fprintln(w)
		_, err := fmt.Fprint(w, rep.Render(sectionStyle.Render))
		return err
	case "json":
		js, err := rep.ToJSON()
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		_, err = fmt.Fprintln(w, js)
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	_ = godotenv.Load(".env")
	// --log-dir still wins when given.
	if dir := os.Getenv("LOG_DIRECTORY"); dir != "" {
		logDir = dir
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "logs", "Directory holding the interaction logs")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "text", "Output format: text, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}
