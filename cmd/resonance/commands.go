package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/resonance/internal/analysis"
	"github.com/san-kum/resonance/internal/automation"
	"github.com/san-kum/resonance/internal/config"
	"github.com/san-kum/resonance/internal/dynamo"
	"github.com/san-kum/resonance/internal/experiment"
	"github.com/san-kum/resonance/internal/export"
	"github.com/san-kum/resonance/internal/metrics"
	"github.com/san-kum/resonance/internal/optim"
	"github.com/san-kum/resonance/internal/sim"
	"github.com/san-kum/resonance/internal/storage"
	"github.com/san-kum/resonance/internal/viz"
)

// resolveConfig picks the base configuration (scenario, preset, then config
// file) and applies the flags the user actually set on top of it. An explicit
// preset or config file replaces the scenario's base. The returned name labels
// the run.
func resolveConfig(cmd *cobra.Command, scenario *automation.Scenario) (*config.Config, string, error) {
	cfg, name := config.DefaultConfig(), "run"
	if scenario != nil {
		cfg = scenario.Config()
		if scenario.Name != "" {
			name = scenario.Name
		}
	}
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		name = preset
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.Time.Steps = steps
	}
	if flags.Changed("dt") {
		cfg.Time.Dt = dt
	}
	if flags.Changed("points") {
		cfg.Grid.Points = points
	}
	if flags.Changed("dx") {
		cfg.Grid.Dx = dx
	}
	if flags.Changed("alpha") {
		cfg.Params.Alpha = alpha
	}
	if flags.Changed("beta") {
		cfg.Params.Beta = beta
	}
	if flags.Changed("kappa") {
		cfg.Params.Kappa = kappa
	}
	if flags.Changed("omega") {
		cfg.Params.Omega = omega
	}
	if flags.Changed("gamma") {
		cfg.Params.Gamma = gamma
	}
	if flags.Changed("position") {
		cfg.Particle.Position = position
	}
	if flags.Changed("warm") {
		cfg.WarmStart = warm
	}
	return cfg, name, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	var (
		scenario *automation.Scenario
		ctrls    []sim.Controller
	)
	if scenarioFile != "" {
		var err error
		scenario, err = automation.LoadScenario(scenarioFile)
		if err != nil {
			return err
		}
		ctrls = append(ctrls, automation.NewSchedule(scenario.Events))
	}

	cfg, name, err := resolveConfig(cmd, scenario)
	if err != nil {
		return err
	}
	if label != "" {
		name = label
	}

	registry := experiment.NewRegistry()
	ctrl, err := registry.GetController(controller, map[string]float64{
		"kp":     kp,
		"ki":     ki,
		"kd":     kd,
		"target": target,
	}, controlParam)
	if err != nil {
		return err
	}
	ctrls = append(ctrls, ctrl)

	exp := experiment.New(cfg)
	if err := exp.Setup(slog.Default(), registry.DefaultMetrics(), ctrls...); err != nil {
		return err
	}
	exp.GetSimulator().AddObserver(progressObserver(slog.Default(), cfg.Time.Steps))

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s (%d points, %d steps)...\n", name, cfg.Grid.Points, cfg.Time.Steps)
	result, err := exp.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		fmt.Println("interrupted, saving partial run")
	}

	runID, err := store.Save(name, exp.State(), exp.Params(), cfg, result.Metrics)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (particle frozen for %d)\n", result.StepsTaken, result.Frozen)
	fmt.Println("\nmetrics:")
	for _, name := range registry.ListMetrics() {
		fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
	}
	return nil
}

// progressObserver logs the particle position every tenth of the horizon.
func progressObserver(logger *slog.Logger, total int) sim.Observer {
	every := max(total/10, 1)
	return sim.ObserverFunc(func(st *dynamo.State, t int) {
		if (t+1)%every != 0 && t+1 != total {
			return
		}
		logger.Debug("progress", "step", t+1, "steps", total, "position", st.Position[t])
	})
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}
	st, params, err := cfg.Build()
	if err != nil {
		return err
	}

	quietLogging()
	return viz.Run(viz.NewModel(st, &params, cfg, storage.New(dataDir), name))
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}

	sweep := &sim.Sweep{
		Param:   args[0],
		Values:  values,
		Workers: workers,
		Logger:  slog.Default(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	results, err := sweep.Run(ctx, cfg.Build, metrics.Default)
	if err != nil {
		return err
	}

	fmt.Printf("sweep over %s: %d runs in %v\n\n", sweep.Param, len(results), time.Since(start))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFIELD_ENERGY\tTOTAL_MASS\tFREQ_SPREAD\tSATURATION\tFROZEN\n", sweep.Param)
	for _, pt := range results {
		m := pt.Result.Metrics
		fmt.Fprintf(w, "%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%d\n",
			pt.Params.GetParams()[sweep.Param],
			m["field_energy"],
			m["total_mass"],
			m["freq_spread"],
			m["saturation"],
			pt.Result.Frozen,
		)
	}
	return w.Flush()
}

func benchSteps(cmd *cobra.Command, args []string) error {
	sizes := []int{100, 1000, 10000}
	horizons := []int{200, 2000}

	fmt.Println("benchmarking step throughput")
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POINTS\tSTEPS\tTIME\tSTEPS/SEC")

	for _, n := range sizes {
		for _, h := range horizons {
			cfg := config.GetPreset("warm")
			cfg.Grid.Points = n
			cfg.Time.Steps = h
			st, params, err := cfg.Build()
			if err != nil {
				return err
			}

			s := sim.New(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
			result, err := s.Run(context.Background(), st, &params)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\n",
				n, h, result.Elapsed, float64(result.StepsTaken)/result.Elapsed.Seconds())
		}
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tTIME\tSTEPS\tPOINTS\tDT\tOMEGA")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4g\t%.3g\n",
			run.ID,
			run.Label,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Points,
			run.Dt,
			run.Params.Omega,
		)
	}
	return w.Flush()
}

type loadedRun struct {
	meta   *storage.RunMetadata
	fields []*storage.FieldRecord
	traj   []*storage.TrajectoryRecord
}

func loadRun(runID string) (*loadedRun, error) {
	store := storage.New(dataDir)
	meta, err := store.Load(runID)
	if err != nil {
		return nil, err
	}
	fields, err := store.LoadFields(runID)
	if err != nil {
		return nil, err
	}
	traj, err := store.LoadTrajectory(runID)
	if err != nil {
		return nil, err
	}
	if len(traj) == 0 || len(fields) == 0 {
		return nil, fmt.Errorf("no data in run %s", runID)
	}
	return &loadedRun{meta: meta, fields: fields, traj: traj}, nil
}

func (r *loadedRun) positions() dynamo.Series {
	pos := make(dynamo.Series, len(r.traj))
	for i, rec := range r.traj {
		pos[i] = rec.Position
	}
	return pos
}

func plotRun(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}

	energy := storage.Rows(run.fields, run.meta.Points, func(r *storage.FieldRecord) float64 { return r.Energy })
	density := storage.Rows(run.fields, run.meta.Points, func(r *storage.FieldRecord) float64 { return r.Density })
	freq := storage.Rows(run.fields, run.meta.Points, func(r *storage.FieldRecord) float64 { return r.FreqShift })

	row := step
	if row < 0 || row >= len(energy) {
		row = len(energy) - 1
	}

	fmt.Printf("run: %s\n", run.meta.ID)
	fmt.Printf("step: %d (t=%.3f)\n", row, float64(row)*run.meta.Dt)
	fmt.Printf("rows: %d\n\n", len(energy))

	plots := []struct {
		caption string
		data    []float64
	}{
		{"energy U", energy[row]},
		{"density ρ", density[row]},
		{"frequency shift", freq[row]},
		{"particle position", run.positions()},
	}
	for _, p := range plots {
		fmt.Println(asciigraph.Plot(p.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		))
		fmt.Println()
	}

	portrait := analysis.ParticlePortrait(run.positions(), run.meta.Dt, 1, len(run.traj))
	if len(portrait.Points) > 0 {
		fmt.Println("phase portrait (position vs velocity)")
		fmt.Print(portrait.ASCII(60, 20))
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}

	probe := cell
	if probe < 0 || probe >= run.meta.Points {
		probe = run.meta.Points / 2
	}
	column := make([]float64, 0, len(run.traj))
	for i := probe; i < len(run.fields); i += run.meta.Points {
		column = append(column, run.fields[i].Energy)
	}

	fmt.Printf("frequency analysis: %s\n", run.meta.ID)
	fmt.Printf("samples: %d, dt: %.4g\n\n", len(run.traj), run.meta.Dt)

	pos := run.positions()
	ps := analysis.PowerSpectrum(pos)
	if len(ps) >= 4 {
		fmt.Println(asciigraph.Plot(ps[:len(ps)/2],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (particle position)"),
		))
		fmt.Println()
	}

	freq, power := analysis.DominantFrequency(pos, run.meta.Dt)
	fmt.Printf("trajectory dominant frequency: %.4g (power %.3g)\n", freq, power)
	if freq > 0 {
		fmt.Printf("trajectory period: %.4g\n", 1.0/freq)
	}

	freq, power = analysis.DominantFrequency(column, run.meta.Dt)
	fmt.Printf("U[%d] dominant frequency: %.4g (power %.3g)\n", probe, freq, power)

	center := float64(run.meta.Points) * run.meta.Dx / 2
	crossings := analysis.Crossings(pos, center)
	fmt.Printf("center crossings: %d\n", len(crossings))
	fmt.Printf("drive frequency ω/2π: %.4g\n", run.meta.Params.Omega/(2*math.Pi))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportCSV(os.Stdout, args[0])
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}

func listPresets(cmd *cobra.Command, args []string) error {
	fmt.Println("presets:")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Printf("  %-8s steps=%d warm=%t alpha=%g kappa=%g gamma=%g position=%g\n",
			name, p.Time.Steps, p.WarmStart, p.Params.Alpha, p.Params.Kappa, p.Params.Gamma, p.Particle.Position)
	}
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg := config.GetPreset(initPreset)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", initPreset, config.ListPresets())
	}
	if err := config.Save(output, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", output)
	return nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}
	if len(searchParams) == 0 {
		return fmt.Errorf("no parameters to search (use --param name=v1:v2:...)")
	}

	names := make([]string, 0, len(searchParams))
	ranges := make([][]float64, 0, len(searchParams))
	for _, arg := range searchParams {
		name, vals, err := parseParamRange(arg)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}

	registry := experiment.NewRegistry()
	if _, err := registry.GetMetric(objective); err != nil {
		return fmt.Errorf("%w (available: %v)", err, registry.ListMetrics())
	}

	quiet := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	build := func(point map[string]float64) (*experiment.Experiment, error) {
		exp := experiment.New(cfg)
		m, err := registry.GetMetric(objective)
		if err != nil {
			return nil, err
		}
		if err := exp.Setup(quiet, []sim.Metric{m}); err != nil {
			return nil, err
		}
		for k, v := range point {
			if err := exp.SetParam(k, v); err != nil {
				return nil, err
			}
		}
		return exp, nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	gs := optim.NewGridSearch(names, ranges)
	best, val, err := gs.Search(ctx, build, objective)
	if err != nil {
		return err
	}

	fmt.Printf("minimum %s: %.6g\n", objective, val)
	for _, name := range names {
		fmt.Printf("  %s = %.6g\n", name, best[name])
	}
	return nil
}

// parseParamRange reads "name=v1:v2:v3".
func parseParamRange(arg string) (string, []float64, error) {
	name, list, ok := strings.Cut(arg, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("invalid parameter range %q (want name=v1:v2:...)", arg)
	}
	if _, known := dynamo.Ranges[name]; !known {
		return "", nil, fmt.Errorf("unknown parameter: %s", name)
	}
	parts := strings.Split(list, ":")
	vals := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return "", nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		vals[i] = v
	}
	return name, vals, nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}

	mc := &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturbation,
		NumTrials:    trials,
		Seed:         seed,
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunMonteCarlo(ctx, mc, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tSTART\tFINAL\tFROZEN\tSTABLE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.3f\t%.3f\t%d\t%t\n", r.TrialID, r.StartPosition, r.FinalPosition, r.Frozen, r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("\nstable: %d, unstable: %d\n", stable, unstable)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}

	energy := storage.Rows(run.fields, run.meta.Points, func(r *storage.FieldRecord) float64 { return r.Energy })
	density := storage.Rows(run.fields, run.meta.Points, func(r *storage.FieldRecord) float64 { return r.Density })
	freq := storage.Rows(run.fields, run.meta.Points, func(r *storage.FieldRecord) float64 { return r.FreqShift })
	row := step
	if row < 0 || row >= len(energy) {
		row = len(energy) - 1
	}

	f, err := os.Create(svgOutput)
	if err != nil {
		return err
	}
	defer f.Close()

	if portrait {
		p := analysis.ParticlePortrait(run.positions(), run.meta.Dt, 1, len(run.traj))
		err = export.PortraitToSVG(f, p, 600, 600, "#00ff88")
	} else {
		err = export.LinesToSVG(f, []export.Line{
			{Label: fmt.Sprintf("energy U (step %d)", row), Color: "#00ffff", Data: energy[row]},
			{Label: "density", Color: "#ffcc00", Data: density[row]},
			{Label: "frequency shift", Color: "#ff00ff", Data: freq[row]},
			{Label: "particle position", Color: "#00ff88", Data: run.positions()},
		}, 800, 800)
	}
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgOutput)
	return nil
}
