package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/phaselab/internal/automation"
	"github.com/san-kum/phaselab/internal/config"
	"github.com/san-kum/phaselab/internal/engine"
	"github.com/san-kum/phaselab/internal/linsys"
	"github.com/san-kum/phaselab/internal/render"
	"github.com/san-kum/phaselab/internal/scene"
	"github.com/san-kum/phaselab/internal/solve"
	"github.com/san-kum/phaselab/internal/storage"
	"github.com/san-kum/phaselab/internal/tui"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	pngPath string
	svgPath string
	asJSON  bool
	save    bool

	formula string
	alpha   float64
	start   float64
	end     float64
	ylim    float64

	alphaMin float64
	alphaMax float64
	steps    int

	trials  int
	perturb float64
	seed    int64

	live  bool
	delay time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "phaselab",
		Short:        "linear system and phase line analyzer",
		SilenceUsage: true,
		RunE:         runTUI,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".phaselab", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use a linear or function preset")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive analyzer",
		RunE:  runTUI,
	}

	linearCmd := &cobra.Command{
		Use:   "linear [a11 a12 a21 a22]",
		Short: "analyze dx/dt = A x",
		Args:  cobra.MatchAll(cobra.MaximumNArgs(4), oneOf(0, 4)),
		RunE:  runLinear,
	}
	addOutputFlags(linearCmd)

	functionCmd := &cobra.Command{
		Use:   "function",
		Short: "find and classify the roots of f(x, alpha)",
		RunE:  runFunction,
	}
	addFunctionFlags(functionCmd)
	addOutputFlags(functionCmd)

	boundsCmd := &cobra.Command{
		Use:   "bounds [name] [min] [max] [step]",
		Short: "check new slider bounds and show the resulting analysis",
		Args:  cobra.ExactArgs(4),
		RunE:  runBounds,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [linear|function]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := []string{"linear", "function"}
			if len(args) > 0 {
				kinds = args
			}
			for _, kind := range kinds {
				names := config.ListPresets(kind)
				if len(names) == 0 {
					fmt.Printf("no presets for: %s\n", kind)
					continue
				}
				fmt.Printf("%s presets:\n", kind)
				for _, p := range names {
					fmt.Printf("  %s\n", p)
				}
			}
			return nil
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "real roots across a range of alpha",
		RunE:  runSweep,
	}
	addFunctionFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&alphaMin, "alpha-min", config.DefaultAlphaMin, "first alpha")
	sweepCmd.Flags().Float64Var(&alphaMax, "alpha-max", config.DefaultAlphaMax, "last alpha")
	sweepCmd.Flags().IntVar(&steps, "steps", 101, "number of alpha values")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [a11 a12 a21 a22]",
		Short: "classify randomly perturbed matrices",
		Args:  cobra.MatchAll(cobra.MaximumNArgs(4), oneOf(0, 4)),
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().IntVar(&trials, "trials", 1000, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturb", 1, "max perturbation per coefficient")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time)")

	scriptCmd := &cobra.Command{
		Use:   "script [file.yaml]",
		Short: "replay a scripted sequence of events",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}
	scriptCmd.Flags().BoolVar(&live, "live", false, "redraw after every step")
	scriptCmd.Flags().DurationVar(&delay, "delay", 500*time.Millisecond, "minimum time per frame with --live")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "save the configured linear and function analyses",
		RunE:  runExport,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := storage.New(dataDir).Load(args[0])
			if err != nil {
				return err
			}
			return storage.WriteJSON(os.Stdout, meta)
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the default configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(tuiCmd, linearCmd, functionCmd, boundsCmd, presetsCmd, sweepCmd, monteCarloCmd, scriptCmd, exportCmd, listCmd, showCmd, initCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func oneOf(counts ...int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		for _, n := range counts {
			if len(args) == n {
				return nil
			}
		}
		return fmt.Errorf("accepts %v args, received %d", counts, len(args))
	}
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&pngPath, "png", "", "write the figure as PNG")
	cmd.Flags().StringVar(&svgPath, "svg", "", "write the figure as SVG")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&save, "save", false, "save the result to the data directory")
}

func addFunctionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&formula, "formula", config.DefaultFormula, "f(x, alpha)")
	cmd.Flags().Float64Var(&alpha, "alpha", config.DefaultAlpha, "alpha")
	cmd.Flags().Float64Var(&start, "start", config.DefaultStart, "domain start")
	cmd.Flags().Float64Var(&end, "end", config.DefaultEnd, "domain end")
	cmd.Flags().Float64Var(&ylim, "ylim", config.DefaultYLim, "y axis limit")
}

func logger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// loadConfig reads --config, then applies --preset on top.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if preset == "" {
		return cfg, nil
	}
	if p := config.GetPreset("linear", preset); p != nil {
		cfg.Linear.A11, cfg.Linear.A12 = p.Linear.A11, p.Linear.A12
		cfg.Linear.A21, cfg.Linear.A22 = p.Linear.A21, p.Linear.A22
		return cfg, nil
	}
	if p := config.GetPreset("function", preset); p != nil {
		cfg.Function.Formula = p.Function.Formula
		cfg.Function.Alpha = p.Function.Alpha
		cfg.Function.Start, cfg.Function.End = p.Function.Start, p.Function.End
		cfg.Function.YLim = p.Function.YLim
		return cfg, nil
	}
	return nil, fmt.Errorf("unknown preset: %s (linear: %v, function: %v)",
		preset, config.ListPresets("linear"), config.ListPresets("function"))
}

func newEngine() (*engine.Engine, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	eng, err := engine.New(cfg, engine.WithLogger(logger()))
	if err != nil {
		return nil, nil, err
	}
	return eng, cfg, nil
}

func terminal(cfg *config.Config) *render.Terminal {
	return render.NewTerminal(cfg.Display.Width, cfg.Display.Height)
}

func solverFor(cfg *config.Config) *solve.Solver {
	return solve.New(cfg.Solver.Timeout, cfg.Solver.ScanPoints)
}

func runTUI(cmd *cobra.Command, args []string) error {
	eng, _, err := newEngine()
	if err != nil {
		return err
	}
	return tui.Run(cmd.Context(), eng)
}

func parseMatrix(args []string, cfg *config.Config) ([4]float64, error) {
	v := cfg.Linear.Values()
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return v, fmt.Errorf("%s: not a number: %q", config.Coefficients[i], a)
		}
		v[i] = f
	}
	return v, nil
}

func runLinear(cmd *cobra.Command, args []string) error {
	eng, cfg, err := newEngine()
	if err != nil {
		return err
	}
	v, err := parseMatrix(args, cfg)
	if err != nil {
		return err
	}
	res, err := eng.RecomputeLinearSystem(v[0], v[1], v[2], v[3])
	if err != nil {
		return err
	}

	if asJSON {
		if err := storage.WriteJSON(os.Stdout, storage.LinearJSON(res)); err != nil {
			return err
		}
	} else {
		fmt.Println(terminal(cfg).Scene(res.Scene))
	}
	if err := saveFigures(res.Scene); err != nil {
		return err
	}
	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.SaveLinear(res)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved %s\n", runID)
	}
	return nil
}

func functionInput(cmd *cobra.Command, cfg *config.Config) engine.FunctionInput {
	in := engine.FunctionInput{
		Formula: cfg.Function.Formula,
		Alpha:   cfg.Function.Alpha,
		Start:   cfg.Function.Start,
		End:     cfg.Function.End,
		YLim:    cfg.Function.YLim,
	}
	// CLI flags override config
	if cmd.Flags().Changed("formula") {
		in.Formula = formula
	}
	if cmd.Flags().Changed("alpha") {
		in.Alpha = alpha
	}
	if cmd.Flags().Changed("start") {
		in.Start = start
	}
	if cmd.Flags().Changed("end") {
		in.End = end
	}
	if cmd.Flags().Changed("ylim") {
		in.YLim = ylim
	}
	return in
}

func runFunction(cmd *cobra.Command, args []string) error {
	eng, cfg, err := newEngine()
	if err != nil {
		return err
	}
	res, err := eng.RecomputeFunctionAnalysis(cmd.Context(), functionInput(cmd, cfg))
	if err != nil {
		return err
	}

	if asJSON {
		if err := storage.WriteJSON(os.Stdout, storage.FunctionJSON(res)); err != nil {
			return err
		}
	} else {
		term := terminal(cfg)
		fmt.Println(term.Curve(res.Y, res.Input.YLim, res.Title))
		fmt.Println()
		fmt.Println(res.Classes.Summary())
		fmt.Println()
		fmt.Println(render.PanelBox.Render(render.TitleStyle.Render(res.Phase.Title) + "\n" + term.Panel(res.Phase)))
		fmt.Printf("solved in %s\n", res.Duration.Round(time.Microsecond))
	}
	if err := saveFigures(res.Scene); err != nil {
		return err
	}
	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.SaveFunction(res)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved %s\n", runID)
	}
	return nil
}

func saveFigures(s scene.Scene) error {
	fig := render.NewFigure()
	for _, path := range []string{pngPath, svgPath} {
		if path == "" {
			continue
		}
		if err := fig.Save(path, s); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	}
	return nil
}

func runBounds(cmd *cobra.Command, args []string) error {
	eng, cfg, err := newEngine()
	if err != nil {
		return err
	}
	name := args[0]
	if name == engine.AlphaSlider {
		if _, err := eng.RecomputeFunctionAnalysis(cmd.Context(), eng.DefaultFunctionInput()); err != nil {
			return err
		}
	}
	if err := eng.UpdateBounds(name, args[1], args[2], args[3]); err != nil {
		return err
	}

	s, err := eng.Sliders().Slider(name)
	if err != nil {
		return err
	}
	fmt.Printf("%s: [%g, %g] step %g, value %g\n", s.Name, s.Bound.Min, s.Bound.Max, s.Bound.Step, s.Value)

	term := terminal(cfg)
	if name == engine.AlphaSlider {
		res := eng.LastFunction()
		fmt.Println(term.Curve(res.Y, res.Input.YLim, res.Title))
		fmt.Println(res.Classes.Summary())
		return nil
	}
	fmt.Println(term.Scene(eng.LastLinear().Scene))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	_, cfg, err := newEngine()
	if err != nil {
		return err
	}
	in := functionInput(cmd, cfg)
	sweep := &automation.ParameterSweep{
		Formula:  in.Formula,
		Start:    in.Start,
		End:      in.End,
		AlphaMin: alphaMin,
		AlphaMax: alphaMax,
		NumSteps: steps,
	}
	results, err := automation.RunSweep(cmd.Context(), sweep, solverFor(cfg))
	if err != nil {
		return err
	}

	alphas, branches := automation.Branches(results)
	caption := fmt.Sprintf("real roots of %s, alpha %g..%g", in.Formula, alphas[0], alphas[len(alphas)-1])
	fmt.Println(terminal(cfg).Branches(branches, caption))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALPHA\tREAL\tCOMPLEX\tROOTS")
	stride := max(1, len(results)/10)
	for i, r := range results {
		if i%stride != 0 && i != len(results)-1 {
			continue
		}
		if r.Err != nil {
			fmt.Fprintf(w, "%.4g\t-\t-\t%v\n", r.Alpha, r.Err)
			continue
		}
		vals := make([]string, len(r.Real))
		for j, x := range r.Real {
			vals[j] = strconv.FormatFloat(x, 'g', 6, 64)
		}
		fmt.Fprintf(w, "%.4g\t%d\t%d\t%s\n", r.Alpha, len(r.Real), r.Complex, strings.Join(vals, " "))
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	_, cfg, err := newEngine()
	if err != nil {
		return err
	}
	v, err := parseMatrix(args, cfg)
	if err != nil {
		return err
	}
	mc := &automation.MonteCarloConfig{
		Base:         linsys.Matrix2x2{A11: v[0], A12: v[1], A21: v[2], A22: v[3]},
		Perturbation: perturb,
		NumTrials:    trials,
		Seed:         seed,
	}
	results, err := automation.RunMonteCarlo(cmd.Context(), mc)
	if err != nil {
		return err
	}

	stats := automation.MonteCarloStats(results)
	kinds := make([]linsys.Equilibrium, 0, len(stats))
	for k := range stats {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return stats[kinds[i]] > stats[kinds[j]] })

	fmt.Printf("base %s, ±%g, %d trials\n\n", mc.Base, perturb, len(results))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EQUILIBRIUM\tCOUNT\tSHARE")
	for _, k := range kinds {
		fmt.Fprintf(w, "%s\t%d\t%.1f%%\n", k, stats[k], 100*float64(stats[k])/float64(len(results)))
	}
	return w.Flush()
}

func runScript(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	eng, cfg, err := newEngine()
	if err != nil {
		return err
	}

	runner := automation.NewRunner(eng, storage.New(dataDir), logger())
	if live {
		lr := tui.NewLiveRenderer(os.Stdout, terminal(cfg), delay, true)
		lr.Start()
		defer lr.Stop()
		runner.OnStep(lr.OnStep)
	}

	results, err := runner.Run(cmd.Context(), scenario)
	if !live {
		for _, r := range results {
			status := "ok"
			if r.Err != nil {
				status = "error (expected): " + r.Err.Error()
			}
			if len(r.RunIDs) > 0 {
				status += " saved " + strings.Join(r.RunIDs, ", ")
			}
			fmt.Printf("step %d/%d %-12s %s\n", r.Index+1, len(scenario.Steps), r.Action, status)
		}
	}
	return err
}

func runExport(cmd *cobra.Command, args []string) error {
	eng, _, err := newEngine()
	if err != nil {
		return err
	}
	lin, err := eng.RecomputeFromSliders()
	if err != nil {
		return err
	}
	fn, err := eng.RecomputeFunctionAnalysis(cmd.Context(), eng.DefaultFunctionInput())
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	for _, saveRun := range []func() (string, error){
		func() (string, error) { return st.SaveLinear(lin) },
		func() (string, error) { return st.SaveFunction(fn) },
	} {
		runID, err := saveRun()
		if err != nil {
			return err
		}
		fmt.Println(runID)
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
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTIME\tTITLE\tSUMMARY")

	for _, run := range runs {
		summary := run.Equilibrium
		if run.Kind == storage.KindFunction {
			summary = fmt.Sprintf("%d real, %d complex", len(run.RealRoots), len(run.ComplexRoots))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			run.ID,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Title,
			summary,
		)
	}

	return w.Flush()
}
