package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/roastlab/roastsim/internal/analysis"
	"github.com/roastlab/roastsim/internal/automation"
	"github.com/roastlab/roastsim/internal/config"
	"github.com/roastlab/roastsim/internal/control"
	"github.com/roastlab/roastsim/internal/metrics"
	"github.com/roastlab/roastsim/internal/roast"
	"github.com/roastlab/roastsim/internal/sim"
	"github.com/roastlab/roastsim/internal/storage"
	"github.com/roastlab/roastsim/internal/tune"
	"github.com/roastlab/roastsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	controller string
	dt         float64
	duration   float64
	kp         float64
	ki         float64
	kd         float64
	batchGrams float64
	seed       int64
	// Plot size
	plotHeight int
	plotWidth  int
	// RoR smoothing window, in samples
	rorWindow int
	// Tune grid
	tuneMetric  string
	tuneWorkers int
	kpRange     []float64
	kiRange     []float64
	kdRange     []float64
	gridSteps   int
	// Sweep grid
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "roastsim",
		Short: "coffee roast simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".roastsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a roast",
		RunE:  runRoast,
	}
	addRoastFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded roasts",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded roast",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")

	rorCmd := &cobra.Command{
		Use:   "ror [run_id]",
		Short: "rate-of-rise analysis for a recorded roast",
		Args:  cobra.ExactArgs(1),
		RunE:  rorRun,
	}
	rorCmd.Flags().IntVar(&rorWindow, "window", 25, "smoothing window in samples")
	rorCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")
	rorCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export roast metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export roast samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSVRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export roast metadata and samples to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSONRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list roast presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search for PID gains",
		RunE:  tuneGains,
	}
	addRoastFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "rmse", "metric to minimize (rmse, mae, overshoot, effort)")
	tuneCmd.Flags().IntVar(&tuneWorkers, "workers", 4, "parallel workers")
	tuneCmd.Flags().Float64SliceVar(&kpRange, "kp-range", []float64{0.5, 5.0}, "kp range lo,hi")
	tuneCmd.Flags().Float64SliceVar(&kiRange, "ki-range", []float64{0.0, 0.2}, "ki range lo,hi")
	tuneCmd.Flags().Float64SliceVar(&kdRange, "kd-range", []float64{0.0, 15.0}, "kd range lo,hi")
	tuneCmd.Flags().IntVar(&gridSteps, "grid", 5, "values per gain")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "roast with live visualization",
		RunE:  runLive,
	}
	addRoastFlags(liveCmd)

	batchCmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "run a scripted batch of roasts",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "sweep one roaster parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addRoastFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "lowest parameter value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0, "highest parameter value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, rorCmd, exportCmd, exportCSVCmd, exportJSONCmd, presetsCmd, tuneCmd, liveCmd, batchCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRoastFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&controller, "controller", "", "controller (pid, schedule, fixed)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep in minutes")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "roast length in minutes")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "pid kp")
	cmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "pid ki")
	cmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "pid kd")
	cmd.Flags().Float64Var(&batchGrams, "batch", 0, "batch size in grams")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
}

// loadConfig merges preset, config file and CLI flags, in that order of
// increasing precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("controller") {
		cfg.Controller = controller
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("kp") {
		cfg.Gains.Kp = kp
	}
	if cmd.Flags().Changed("ki") {
		cfg.Gains.Ki = ki
	}
	if cmd.Flags().Changed("kd") {
		cfg.Gains.Kd = kd
	}
	if cmd.Flags().Changed("batch") {
		cfg.Roaster.BatchGrams = batchGrams
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}

	return cfg, nil
}

func buildController(cfg *config.Config) (sim.Controller, error) {
	switch cfg.Controller {
	case "", "pid":
		return control.NewPID(cfg.Gains.Kp, cfg.Gains.Ki, cfg.Gains.Kd), nil
	case "schedule":
		return control.NewSchedule(cfg.GetSchedule(), cfg.Roaster.InitialPower), nil
	case "fixed":
		return control.NewFixed(cfg.Roaster.InitialPower), nil
	default:
		return nil, fmt.Errorf("unknown controller: %s", cfg.Controller)
	}
}

func simulate(ctx context.Context, cfg *config.Config, ctrl sim.Controller) (*sim.Result, *roast.Drum, error) {
	drum, err := roast.NewDrum(cfg.GetParams())
	if err != nil {
		return nil, nil, err
	}

	curve, err := cfg.GetCurve()
	if err != nil {
		return nil, nil, err
	}

	s := sim.New(drum, ctrl, curve)
	s.AddMetric(metrics.NewTrackingError())
	s.AddMetric(metrics.NewMeanAbsError())
	s.AddMetric(metrics.NewOvershoot())
	s.AddMetric(metrics.NewControlEffort())

	result, err := s.Run(ctx, sim.Config{
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
		MinPower: cfg.MinPower,
		MaxPower: cfg.MaxPower,
	})
	if err != nil {
		return nil, nil, err
	}

	return result, drum, nil
}

func runRoast(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctrl, err := buildController(cfg)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("roasting %.0f g for %.1f min (%s controller)...\n",
		cfg.Roaster.BatchGrams, cfg.Duration, cfg.Controller)
	start := time.Now()

	result, drum, err := simulate(context.Background(), cfg, ctrl)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)
	summary := drum.Summary()

	runID, err := st.Save(storage.RunMetadata{
		Controller: cfg.Controller,
		Kp:         cfg.Gains.Kp,
		Ki:         cfg.Gains.Ki,
		Kd:         cfg.Gains.Kd,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Seed:       cfg.Seed,
		Summary:    summary,
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.Steps)
	fmt.Println()
	fmt.Println(summary.String())
	fmt.Println("metrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	for _, simErr := range result.Errors {
		fmt.Fprintf(os.Stderr, "warning: %v\n", simErr)
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no roasts found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tCTRL\tDURATION\tKP\tKI\tKD\tRMSE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1fm\t%.2f\t%.3f\t%.2f\t%.3f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Controller,
			run.Duration,
			run.Kp,
			run.Ki,
			run.Kd,
			run.Metrics["tracking_error"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no samples in run %s", args[0])
	}

	fmt.Println(viz.PlotTracking(samples, plotHeight, plotWidth))
	fmt.Println()
	fmt.Println(viz.PlotPower(samples, plotHeight, plotWidth))
	fmt.Println()

	return nil
}

func rorRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no samples in run %s", args[0])
	}

	smoothed := analysis.SmoothRoR(samples, rorWindow)

	fmt.Println(viz.PlotRoR(smoothed, plotHeight, plotWidth))
	fmt.Println()

	ev := meta.Summary.Events
	phases, ok := analysis.SplitPhases(ev.DryTime, ev.FirstCrackTime, meta.Duration)
	if !ok {
		fmt.Println("phases: incomplete roast, no dry end or first crack recorded")
		return nil
	}

	fmt.Printf("drying:      %s (%.1f%%)\n", roast.FormatClock(ev.DryTime), phases.YellowPct)
	fmt.Printf("maillard:    %s (%.1f%%)\n", roast.FormatClock(ev.FirstCrackTime-ev.DryTime), phases.BrownPct)
	fmt.Printf("development: %s (%.1f%%)\n", roast.FormatClock(meta.Duration-ev.FirstCrackTime), phases.DevPct)

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, nil)
}

func exportCSVRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	return storage.ExportCSV(os.Stdout, samples)
}

func exportJSONRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, samples)
}

func tuneGains(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	metricName, err := canonicalMetric(tuneMetric)
	if err != nil {
		return err
	}

	if len(kpRange) != 2 || len(kiRange) != 2 || len(kdRange) != 2 {
		return fmt.Errorf("gain ranges must be lo,hi pairs")
	}

	g := tune.NewGridSearch(
		tune.Range(kpRange[0], kpRange[1], gridSteps),
		tune.Range(kiRange[0], kiRange[1], gridSteps),
		tune.Range(kdRange[0], kdRange[1], gridSteps),
		tuneWorkers,
	)

	eval := func(ctx context.Context, c tune.Candidate) (float64, error) {
		runCfg := *cfg
		runCfg.Gains = config.GainsConfig{Kp: c.Kp, Ki: c.Ki, Kd: c.Kd}

		result, _, err := simulate(ctx, &runCfg, control.NewPID(c.Kp, c.Ki, c.Kd))
		if err != nil {
			return 0, err
		}
		if len(result.Errors) > 0 {
			return 0, result.Errors[0]
		}
		return result.Metrics[metricName], nil
	}

	total := gridSteps * gridSteps * gridSteps
	fmt.Printf("evaluating %d candidates on %d workers (minimizing %s)...\n",
		total, tuneWorkers, metricName)
	start := time.Now()

	best, score, err := g.Search(context.Background(), eval)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("best gains: kp=%.4f ki=%.4f kd=%.4f\n", best.Kp, best.Ki, best.Kd)
	fmt.Printf("%s: %.6f\n", metricName, score)

	return nil
}

func canonicalMetric(name string) (string, error) {
	switch name {
	case "rmse", "tracking_error":
		return "tracking_error", nil
	case "mae", "mean_abs_error":
		return "mean_abs_error", nil
	case "overshoot":
		return "overshoot", nil
	case "effort", "control_effort":
		return "control_effort", nil
	default:
		return "", fmt.Errorf("unknown metric: %s (rmse, mae, overshoot, effort)", name)
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	batch, err := automation.LoadBatch(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("batch %s: %d roasts\n", batch.Name, len(batch.Roasts))

	results, err := automation.RunBatch(context.Background(), batch)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDROP\tFIRST CRACK\tTRACKING ERR\tOVERSHOOT")
	for _, r := range results {
		fc := "-"
		if t := r.Summary.Events.FirstCrackTime; t > 0 {
			fc = roast.FormatClock(t)
		}
		fmt.Fprintf(w, "%s\t%.1fC\t%s\t%.3f\t%.3f\n",
			r.Name,
			r.Summary.DropTemp,
			fc,
			r.Result.Metrics["tracking_error"],
			r.Result.Metrics["overshoot"],
		)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(context.Background(), &automation.Sweep{
		Param:    args[0],
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
		Base:     cfg,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tDROP\tFIRST CRACK\tTRACKING ERR\n", args[0])
	for _, r := range results {
		fc := "-"
		if r.FirstCrackTime > 0 {
			fc = roast.FormatClock(r.FirstCrackTime)
		}
		fmt.Fprintf(w, "%.4f\t%.1fC\t%s\t%.3f\n", r.Value, r.DropTemp, fc, r.TrackingError)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	curve, err := cfg.GetCurve()
	if err != nil {
		return err
	}

	model := viz.NewModel(
		cfg.GetParams(),
		curve,
		[3]float64{cfg.Gains.Kp, cfg.Gains.Ki, cfg.Gains.Kd},
		sim.Config{
			Dt:       cfg.Dt,
			Duration: cfg.Duration,
			MinPower: cfg.MinPower,
			MaxPower: cfg.MaxPower,
		},
	)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
