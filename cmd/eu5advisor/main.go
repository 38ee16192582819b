// Package main provides the EU5 Strategy Advisor CLI entry point.
// The advisor answers Europa Universalis 5 strategy questions from a local knowledge
// base, falling back to web search when the knowledge base has no answer.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"eu5advisor/internal/config"
	"eu5advisor/internal/logger"
	"eu5advisor/internal/render"
	"eu5advisor/internal/shell"
	"eu5advisor/internal/version"
)

// previewLength bounds tool results echoed in verbose mode.
const previewLength = 200

var (
	query      string
	verbose    bool
	copyAnswer bool
	dotEnvPath string
)

// rootCmd runs the interactive advisor, or answers a single --query and exits.
var rootCmd = &cobra.Command{
	Use:   "eu5advisor",
	Short: "EU5 Strategy Advisor - expert strategic guidance for Europa Universalis 5",
	Long: `Expert strategic guidance for Europa Universalis 5 (1337-1837).

The advisor consults a local knowledge base first and searches the EU5 wikis
when the knowledge base does not cover a question.`,
	Example: `  # Interactive mode
  eu5advisor

  # Single query
  eu5advisor --query "How do estates work?"

  # Verbose mode (show tool calls)
  eu5advisor --query "England opening" --verbose

Environment Variables:
  OPENAI_API_KEY      Your OpenAI API key (required for the openai provider)
  OPENAI_MODEL        Model to use (default: gpt-5-mini)
  EU5_KNOWLEDGE_PATH  Path or URL of the knowledge base (default: ./knowledge)
  TAVILY_API_KEY      Enables web search`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runAdvisor,
}

// versionCmd prints build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		detailed, _ := cmd.Flags().GetBool("detailed")
		if detailed {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetDetailedVersion())
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), version.GetFormattedVersion())
	},
}

// configCmd prints the resolved configuration and validates it.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration and check it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cfg.String())
		if err := cfg.Validate(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Configuration OK")
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("provider", "", "LLM provider (openai|anthropic|gemini) [default: openai]")
	flags.StringP("model", "m", "", "Model to use [default: gpt-5-mini for openai]")
	flags.String("knowledge", "", "Knowledge base path or URL [default: ./knowledge]")
	flags.String("log-level", "", "Set log level (debug|info|warn|error) [default: warn]")
	flags.String("log-file", "", "Write logs to file instead of stderr")
	flags.StringVar(&dotEnvPath, "env-file", "", "Read settings from this .env file [default: ./.env]")

	rootCmd.Flags().StringVarP(&query, "query", "q", "", "Single query mode - ask a question and exit")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show tool calls and intermediate steps")
	rootCmd.Flags().BoolVar(&copyAnswer, "copy", false, "Copy the answer of a single query to the clipboard")

	versionCmd.Flags().Bool("detailed", false, "Show detailed build information")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(kbCmd)
}

// loadConfig resolves the configuration for cmd and configures logging from it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		DotEnvPath: dotEnvPath,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return nil, err
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to configure logger: %w", err)
	}
	return cfg, nil
}

func runAdvisor(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	checkBuildVersion()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	renderer, err := render.ForWriter(out)
	if err != nil {
		return err
	}

	logger.Info("Starting EU5 advisor", "version", version.Version, "provider", cfg.Provider, "model", cfg.Model)
	a, err := newApp(ctx, cfg, observerFor(verbose, renderer, cmd.ErrOrStderr()))
	if err != nil {
		return fmt.Errorf("failed to initialize advisor: %w", err)
	}

	banner := renderer.Banner(cfg.Model, a.search.IsConfigured())
	if query == "" {
		shell.NewSession(a.advisor, a.caches, renderer, out).Run(ctx, banner)
		return nil
	}
	return runSingleQuery(ctx, a, renderer, out, banner, query)
}

// checkBuildVersion warns when the version injected at build time is not semver.
func checkBuildVersion() {
	if err := version.ValidateVersion(); err != nil {
		logger.Warn("Invalid build version", "error", err)
	}
}

func runSingleQuery(ctx context.Context, a *app, renderer *render.Renderer, out io.Writer, banner, question string) error {
	fmt.Fprintln(out, banner)
	fmt.Fprintf(out, "\n%s\n\n", renderer.Query(question))

	answer, err := a.advisor.Converse(ctx, question)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n\n", renderer.Answer(answer))

	if copyAnswer {
		if err := copyToClipboard(answer); err != nil {
			logger.Warn("Failed to copy answer", "error", err)
		} else {
			fmt.Fprintln(out, renderer.Notice("Answer copied to clipboard"))
		}
	}
	return nil
}
