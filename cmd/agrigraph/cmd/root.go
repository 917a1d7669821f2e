// Package cmd provides the CLI commands for agrigraph.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/agrigpt/agrigraph/internal/config"
	"github.com/agrigpt/agrigraph/internal/graph"
	"github.com/agrigpt/agrigraph/internal/logging"
	"github.com/agrigpt/agrigraph/internal/profiling"
	"github.com/agrigpt/agrigraph/pkg/version"
)

var (
	debugMode      bool
	projectDir     string
	loggingCleanup func()

	profileCPU   string
	profileMem   string
	profileTrace string
	profiler     = profiling.NewProfiler()
	cpuCleanup   func()
	traceCleanup func()
)

// newStore opens the graph store for a loaded configuration. Tests swap it
// for an in-memory store.
var newStore = func(ctx context.Context, cfg *config.Config) (graph.Store, error) {
	s, err := graph.OpenNeo4j(ctx, graph.Neo4jConfig{
		URI:      cfg.Graph.URI,
		Username: cfg.Graph.Username,
		Password: cfg.Graph.Password,
		Database: cfg.Graph.Database,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func loadConfig() (*config.Config, error) {
	return config.Load(projectDir)
}

// NewRootCmd creates the root command for the agrigraph CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agrigraph",
		Short: "Agricultural knowledge graph toolkit",
		Long: `agrigraph manages the crop knowledge graph behind the Bengali
agricultural assistant: schema constraints and indexes, CSV seeding,
Bengali aliases, and crop name resolution.

Run 'agrigraph schema apply' against a fresh Neo4j instance to set up
the schema, then 'agrigraph seed split' and 'agrigraph seed load'.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("agrigraph version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.agrigraph/logs/")
	cmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", ".", "Project directory holding .agrigraph.yaml and .env")

	cmd.PersistentFlags().StringVar(&profileCPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileMem, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&profileTrace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = startProfilingAndLogging
	cmd.PersistentPostRunE = stopProfilingAndLogging

	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(newBackfillCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func startProfilingAndLogging(_ *cobra.Command, _ []string) error {
	if debugMode {
		logger, cleanup, err := logging.Setup(logging.DebugConfig())
		if err != nil {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		loggingCleanup = cleanup
		slog.SetDefault(logger)
		slog.Info("debug logging enabled", "log_file", logging.DefaultLogPath())
	}

	var err error
	if profileCPU != "" {
		cpuCleanup, err = profiler.StartCPU(profileCPU)
		if err != nil {
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
	}
	if profileTrace != "" {
		traceCleanup, err = profiler.StartTrace(profileTrace)
		if err != nil {
			if cpuCleanup != nil {
				cpuCleanup()
			}
			return fmt.Errorf("failed to start trace: %w", err)
		}
	}
	return nil
}

func stopProfilingAndLogging(_ *cobra.Command, _ []string) error {
	if cpuCleanup != nil {
		cpuCleanup()
		cpuCleanup = nil
	}
	if traceCleanup != nil {
		traceCleanup()
		traceCleanup = nil
	}
	if profileMem != "" {
		if err := profiler.WriteHeap(profileMem); err != nil {
			return fmt.Errorf("failed to write memory profile: %w", err)
		}
	}
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
