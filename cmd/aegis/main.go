package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"aegis/internal/aggregator"
	"aegis/internal/config"
	"aegis/internal/llm"
	"aegis/internal/logging"
	"aegis/internal/orchestrator"
	"aegis/internal/reasoning"
	"aegis/internal/store"
	"aegis/internal/workers"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// generate flags
	useCaseID   string
	contextFile string
	mode        string
	outputJSON  bool

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "aegis",
	Short: "aegis - autonomous guardrail and evaluation generation",
	Long: `aegis turns a use case plus structured assessment context into a
validated, deduplicated, conflict-resolved set of test scenarios or
guardrails, generated by specialist workers coordinated through a
reasoning-driven orchestration pipeline.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		// Category file logging is gated by .aegis/config.json in the
		// working directory; without it this is a no-op.
		if err := logging.Initialize("."); err != nil {
			logger.Warn("category logging disabled", zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the generation pipeline for a use case",
	Long: `Runs worker selection, concurrent proposal gathering, conflict
resolution, synthesis, and coverage analysis, then prints the resulting
evaluation plan. The context comes from the record store (--use-case) or
from a JSON snapshot (--context).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if useCaseID == "" && contextFile == "" {
			return errors.New("one of --use-case or --context is required")
		}

		genMode := workers.GenerationMode(mode)
		if genMode != workers.ModeScenarios && genMode != workers.ModeGuardrails {
			return fmt.Errorf("unknown mode %q (want scenarios or guardrails)", mode)
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		ec, err := loadContext(ctx, cfg, genMode)
		if err != nil {
			return err
		}

		client := buildClient(ctx, cfg)
		engine := reasoning.NewEngine(client, cfg.ReasoningOptions())
		registry := workers.NewRegistry(client, engine)

		result, err := orchestrator.New(registry).Run(ctx, ec)
		if err != nil {
			return fmt.Errorf("orchestration failed: %w", err)
		}
		plan := orchestrator.BuildEvaluationPlan(result, ec)

		if outputJSON {
			return json.NewEncoder(os.Stdout).Encode(plan)
		}
		printPlan(result, plan)
		return nil
	},
}

// loadContext builds the context snapshot from the store or a file.
func loadContext(ctx context.Context, cfg *config.Config, genMode workers.GenerationMode) (*workers.Context, error) {
	if contextFile != "" {
		return aggregator.FromFile(contextFile, genMode)
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return aggregator.New(st).Build(ctx, useCaseID, genMode)
}

// buildClient returns the Gemini-backed collaborator, or an always-failing
// client when no API key is configured so that workers land on their
// deterministic fallback artifacts.
func buildClient(ctx context.Context, cfg *config.Config) llm.Client {
	if cfg.API.APIKey == "" {
		logger.Warn("no API key configured, workers will use fallback artifacts")
		return llm.Unavailable("no API key configured")
	}

	gcfg := llm.DefaultGeminiConfig(cfg.API.APIKey)
	if cfg.API.DefaultModel != "" {
		gcfg.DefaultModel = cfg.API.DefaultModel
	}
	if cfg.API.TimeoutSeconds > 0 {
		gcfg.Timeout = time.Duration(cfg.API.TimeoutSeconds) * time.Second
	}

	client, err := llm.NewGeminiClient(ctx, gcfg)
	if err != nil {
		logger.Warn("collaborator client unavailable, workers will use fallback artifacts", zap.Error(err))
		return llm.Unavailable(err.Error())
	}
	return client
}

func printPlan(result *orchestrator.Result, plan *orchestrator.EvaluationPlan) {
	fmt.Printf("Plan %s (%s execution, confidence %.2f)\n", plan.ID, plan.ExecutionMode, plan.Confidence)
	fmt.Printf("Coverage: %.0f%%\n", result.Coverage.Overall)
	for _, gap := range result.Coverage.Gaps {
		fmt.Printf("  gap: %s\n", gap)
	}

	if len(result.Conflicts) > 0 {
		fmt.Printf("Conflicts (%d):\n", len(result.Conflicts))
		for _, c := range result.Conflicts {
			fmt.Printf("  [%s/%s] %s -> %s\n", c.Type, c.Severity, c.Description, c.Resolution)
		}
	}

	for _, suite := range plan.Suites {
		fmt.Printf("Suite %s [%s/%s]: %d scenario(s)\n", suite.Name, suite.Type, suite.Priority, len(suite.Scenarios))
		for _, s := range suite.Scenarios {
			fmt.Printf("  - %s (%s, from %s)\n", s.Name, s.ID, s.SourceWorker)
		}
	}
	for _, g := range plan.Guardrails {
		fmt.Printf("Guardrail %s [%s/%s]: %s\n", g.ID, g.Type, g.Severity, g.Rule)
	}
	fmt.Printf("Workers: %v, duration %v\n", result.Metadata.Workers, result.Metadata.Duration)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the aegis version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("aegis 0.1.0")
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".aegis/aegis.yaml", "path to config file")

	generateCmd.Flags().StringVar(&useCaseID, "use-case", "", "use case id to load from the record store")
	generateCmd.Flags().StringVar(&contextFile, "context", "", "path to a JSON context snapshot")
	generateCmd.Flags().StringVar(&mode, "mode", "scenarios", "generation mode: scenarios or guardrails")
	generateCmd.Flags().BoolVar(&outputJSON, "json", false, "print the plan as JSON")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
