package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/resonance/internal/storage"
	"github.com/san-kum/resonance/internal/viz"
)

var (
	dataDir   string
	logLevel  string
	logFormat string

	configFile string
	preset     string
	label      string

	steps    int
	dt       float64
	points   int
	dx       float64
	alpha    float64
	beta     float64
	kappa    float64
	omega    float64
	gamma    float64
	position float64
	warm     bool

	step    int
	cell    int
	workers int
	values  []float64

	initPreset string
	output     string

	scenarioFile string
	controller   string
	controlParam string
	kp           float64
	ki           float64
	kd           float64
	target       float64

	searchParams []string
	objective    string

	trials       int
	perturbation float64
	seed         int64

	portrait  bool
	svgOutput string
)

// main registers the resonance commands and runs the root command, exiting
// with status 1 on error. With no subcommand it opens the preset picker.
func main() {
	rootCmd := &cobra.Command{
		Use:           "resonance",
		Short:         "coupled field-particle resonance simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel, logFormat)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			quietLogging()
			return viz.RunInteractive(storage.New(dataDir))
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".resonance", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation to its horizon and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)
	runCmd.Flags().StringVar(&label, "label", "", "run label (defaults to the preset name)")
	runCmd.Flags().StringVar(&scenarioFile, "scenario", "", "scenario file with scheduled parameter changes (yaml)")
	runCmd.Flags().StringVar(&controller, "controller", "none", "parameter controller (none, pid)")
	runCmd.Flags().StringVar(&controlParam, "control-param", "omega", "parameter the controller adjusts")
	runCmd.Flags().Float64Var(&kp, "kp", 0.01, "pid kp")
	runCmd.Flags().Float64Var(&ki, "ki", 0, "pid ki")
	runCmd.Flags().Float64Var(&kd, "kd", 0, "pid kd")
	runCmd.Flags().Float64Var(&target, "target", 50, "pid target particle position")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with the live control surface",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addModelFlags(liveCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "run one simulation per value of a tunable parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addModelFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&values, "values", nil, "parameter values (comma separated)")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = unlimited)")
	_ = sweepCmd.MarkFlagRequired("values")

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "grid search tunable parameters for the lowest metric value",
		Args:  cobra.NoArgs,
		RunE:  runOptimize,
	}
	addModelFlags(optimizeCmd)
	optimizeCmd.Flags().StringArrayVar(&searchParams, "param", nil, "parameter grid as name=v1:v2:... (repeatable)")
	optimizeCmd.Flags().StringVar(&objective, "metric", "saturation", "metric to minimize")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run trials with perturbed initial particle positions",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addModelFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturbation", 5, "half-width of the uniform position perturbation")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure step throughput across grid sizes",
		Args:  cobra.NoArgs,
		RunE:  benchSteps,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot field rows and the particle trajectory of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&step, "step", -1, "row to plot (default last)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of the trajectory and a field probe",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&cell, "cell", -1, "grid cell to probe (default center)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export field histories to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render field rows and trajectory to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&step, "step", -1, "row to draw (default last)")
	exportSVGCmd.Flags().BoolVar(&portrait, "portrait", false, "draw the particle phase portrait instead")
	exportSVGCmd.Flags().StringVarP(&svgOutput, "output", "o", "run.svg", "output path")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config",
		Short: "write a configuration file",
		Args:  cobra.NoArgs,
		RunE:  initConfig,
	}
	initConfigCmd.Flags().StringVar(&initPreset, "preset", "default", "preset to start from")
	initConfigCmd.Flags().StringVarP(&output, "output", "o", "resonance.yaml", "output path")

	rootCmd.AddCommand(runCmd, liveCmd, sweepCmd, optimizeCmd, monteCarloCmd, benchCmd, listCmd, plotCmd,
		analyzeCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, initConfigCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// addModelFlags registers the configuration source and override flags shared
// by the commands that build a state.
func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&steps, "steps", 200, "number of time steps")
	cmd.Flags().Float64Var(&dt, "dt", 0.01, "time step")
	cmd.Flags().IntVar(&points, "points", 100, "grid points")
	cmd.Flags().Float64Var(&dx, "dx", 1.0, "grid spacing")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.1, "potential amplitude")
	cmd.Flags().Float64Var(&beta, "beta", 1e-5, "potential decay")
	cmd.Flags().Float64Var(&kappa, "kappa", 0.2, "source coupling")
	cmd.Flags().Float64Var(&omega, "omega", 0.5, "drive frequency")
	cmd.Flags().Float64Var(&gamma, "gamma", 0.01, "density-rate force scale")
	cmd.Flags().Float64Var(&position, "position", 20, "initial particle position")
	cmd.Flags().BoolVar(&warm, "warm", false, "seed row 1 from row 0")
}

func setupLogging(level, format string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// quietLogging keeps log lines off the terminal while a full-screen view owns it.
func quietLogging() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
