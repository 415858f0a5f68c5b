package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zen-systems/tripflow/pkg/adapter"
	"github.com/zen-systems/tripflow/pkg/aggregate"
	"github.com/zen-systems/tripflow/pkg/archive"
	"github.com/zen-systems/tripflow/pkg/config"
	"github.com/zen-systems/tripflow/pkg/decompose"
	"github.com/zen-systems/tripflow/pkg/fanout"
	"github.com/zen-systems/tripflow/pkg/pipeline"
	"github.com/zen-systems/tripflow/pkg/provider"
	"github.com/zen-systems/tripflow/pkg/schema"
	"github.com/zen-systems/tripflow/pkg/solver"
)

var version = "dev"

var (
	adapterFlag string
	modelFlag   string
	logLevel    string
	logFormat   string
)

func main() {
	// Local development credentials; absence is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "tripflow",
		Short: "Concurrent travel-request planner",
		Long: `Tripflow answers composite travel requests ("find a flight and a
	hotel...") by decomposing the request into isolated per-domain
	sub-queries, solving them concurrently against travel inventory, and
	merging the partial results into one response.`,
	}

	rootCmd.PersistentFlags().StringVar(&adapterFlag, "adapter", "", "text-understanding adapter (anthropic, openai, google, mock)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "model override for the chosen adapter")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(adaptersCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func planCmd() *cobra.Command {
	var jsonOut bool
	var contextFlag string
	var save bool

	cmd := &cobra.Command{
		Use:   "plan [request]",
		Short: "Plan a trip from one free-form request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := buildLogger(logLevel, logFormat)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			orch, err := buildOrchestrator(cfg, logger)
			if err != nil {
				return err
			}

			resp, err := orch.Run(cmd.Context(), schema.RawRequest{
				Text:    args[0],
				Context: contextFlag,
			})
			if err != nil {
				return err
			}

			if save {
				store, err := archive.NewStore("")
				if err != nil {
					return fmt.Errorf("open plan history: %w", err)
				}
				path, err := store.Save(resp)
				if err != nil {
					return fmt.Errorf("save plan: %w", err)
				}
				logger.Info("plan saved", zap.String("path", path))
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			fmt.Print(aggregate.Render(*resp))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the raw response as JSON")
	cmd.Flags().StringVar(&contextFlag, "context", "", "prior-turn context for the request")
	cmd.Flags().BoolVar(&save, "save", false, "store the finished plan under ~/.tripflow/history")
	return cmd
}

func historyCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history [request-id]",
		Short: "List saved plans, or show one by request ID",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := archive.NewStore("")
			if err != nil {
				return fmt.Errorf("open plan history: %w", err)
			}

			if len(args) == 1 {
				resp, err := store.Read(args[0])
				if err != nil {
					return err
				}
				if jsonOut {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(resp)
				}
				fmt.Print(aggregate.Render(*resp))
				return nil
			}

			entries, err := store.List()
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%s  %s\n", e.SavedAt.Format("2006-01-02 15:04:05"), e.RequestID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the stored plan as JSON")
	return cmd
}

func adaptersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "adapters",
		Short: "List text-understanding adapters and their key status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			for _, name := range []string{"anthropic", "openai", "google", "mock"} {
				status := "missing key"
				if cfg.HasAdapter(name) {
					status = "ready"
				}
				fmt.Printf("%-10s %s\n", name, status)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tripflow version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("tripflow", version)
		},
	}
}

func buildOrchestrator(cfg *config.Config, logger *zap.Logger) (*pipeline.Orchestrator, error) {
	name := adapterFlag
	if name == "" {
		name = cfg.Planner.Adapter
	}
	understanding, err := createAdapter(cfg, name)
	if err != nil {
		return nil, err
	}

	model := modelFlag
	if model == "" {
		model = cfg.Planner.Model
	}

	amadeus, err := provider.NewAmadeus(provider.AmadeusConfig{
		BaseURL:   cfg.AmadeusBaseURL,
		APIKey:    cfg.AmadeusAPIKey,
		APISecret: cfg.AmadeusAPISecret,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create amadeus client: %w", err)
	}

	policy := solver.RetryPolicy{
		MaxRetries: cfg.Planner.SolverRetries,
		Backoff:    cfg.Planner.RetryBackoff,
	}
	solvers := []solver.Solver{
		solver.NewFlightSolver(amadeus, policy, logger),
		solver.NewHotelSolver(amadeus, policy, logger),
	}

	return pipeline.New(
		decompose.New(understanding, model, logger),
		fanout.New(solvers, cfg.Planner.DomainTimeout, logger),
		aggregate.New(logger),
		logger,
	), nil
}

func createAdapter(cfg *config.Config, name string) (adapter.Adapter, error) {
	switch name {
	case "anthropic":
		return adapter.NewAnthropicAdapter(cfg.AnthropicAPIKey)
	case "openai":
		return adapter.NewOpenAIAdapter(cfg.OpenAIAPIKey)
	case "google":
		return adapter.NewGoogleAdapter(cfg.GoogleAPIKey)
	case "mock":
		return adapter.NewMock().Fallback(`{"flight_query": null, "hotel_query": null, "missing_fields": []}`), nil
	default:
		return nil, fmt.Errorf("unknown adapter %q", name)
	}
}

func buildLogger(levelStr, format string) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	switch levelStr {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("unknown log level %q", levelStr)
	}

	var zcfg zap.Config
	if format == "json" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
