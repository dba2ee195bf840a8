package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	var (
		configPath string
		flagCfg    Config
	)

	cmd := &cobra.Command{
		Use:   "printdata <file.gcode>",
		Short: "Add print data and progress reporting to SuperSlicer G-code",
		Long: `printdata post-processes a G-code file written by SuperSlicer, in place.

It removes the slicer preamble, re-emits the embedded thumbnail as a single
block whose header carries filament, layer and print summary fields, and adds
M117/M73 progress directives after every ;AFTER_LAYER_CHANGE marker.`,
		Example: `  # As a SuperSlicer post-processing script
  printdata /tmp/part.gcode

  # Write to another file and keep a report of the run
  printdata part.gcode -o part.out.gcode --report reports/part.yaml`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = os.Getenv(envPrefix + "CONFIG")
			}
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd, &cfg, flagCfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := NewLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			return run(cmd.Context(), cfg, args[0], log, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "YAML config file (env PRINTDATA_CONFIG)")
	f.StringVarP(&flagCfg.Output, "output", "o", "", "write the result here instead of replacing the input")
	f.StringVar(&flagCfg.Report, "report", "", "write a YAML report of the run to this path")
	f.StringVar(&flagCfg.MetricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")
	f.StringVar(&flagCfg.LogLevel, "log-level", "info", "debug, info, warn or error")
	f.StringVar(&flagCfg.LogFormat, "log-format", "console", "console or json")
	f.StringVar(&flagCfg.LogFile, "log-file", "", "also log to this rotated file")

	return cmd
}

// applyFlags copies explicitly set flags over cfg.
func applyFlags(cmd *cobra.Command, cfg *Config, flagCfg Config) {
	for name, pair := range map[string][2]*string{
		"output":       {&cfg.Output, &flagCfg.Output},
		"report":       {&cfg.Report, &flagCfg.Report},
		"metrics-file": {&cfg.MetricsFile, &flagCfg.MetricsFile},
		"log-level":    {&cfg.LogLevel, &flagCfg.LogLevel},
		"log-format":   {&cfg.LogFormat, &flagCfg.LogFormat},
		"log-file":     {&cfg.LogFile, &flagCfg.LogFile},
	} {
		if cmd.Flags().Changed(name) {
			*pair[0] = *pair[1]
		}
	}
}

func run(ctx context.Context, cfg Config, src string, log *zap.Logger, stdout io.Writer) error {
	runID := uuid.NewString()
	dst := cfg.Output
	if dst == "" {
		dst = src
	}
	log = log.With(zap.String("run_id", runID), zap.String("source", src))

	started := time.Now()
	res, err := NewProcessor(log).Run(ctx, src, dst)
	if err != nil {
		log.Error("post-processing failed", zap.Error(err))
		return err
	}
	finished := time.Now()
	log.Info("wrote output", zap.String("output", dst), zap.Duration("elapsed", finished.Sub(started)))

	if cfg.Report != "" || cfg.MetricsFile != "" {
		report := NewReport(runID, src, dst, started, finished, res)
		if cfg.Report != "" {
			if err := WriteReport(cfg.Report, report); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
		}
		if cfg.MetricsFile != "" {
			if err := WriteMetrics(cfg.MetricsFile, report); err != nil {
				return fmt.Errorf("write metrics: %w", err)
			}
		}
	}

	fmt.Fprintf(stdout, "Added %d M117 commands and M73 with time information.\n", res.Annotation.Groups)
	return nil
}
