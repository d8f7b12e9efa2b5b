package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/qudyn/qudyn/internal/bath"
	"github.com/qudyn/qudyn/internal/config"
	"github.com/qudyn/qudyn/internal/dynamics"
	"github.com/qudyn/qudyn/internal/linalg"
	"github.com/qudyn/qudyn/internal/quantum"
	"github.com/qudyn/qudyn/internal/results"
	"github.com/qudyn/qudyn/internal/store"
	"github.com/qudyn/qudyn/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	dt       float64
	duration float64
	method   string
	dyneq    string
	delta    float64
	eps      float64
	hbar     float64
	gamma    float64
	lambda   float64
	cutoff   float64
	kT       float64
	timeDep  bool
	secular  bool
	markov   float64
	every    int
	esFile   string
	// Config file
	configFile string
	// Preset name
	preset string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "qudyn",
		Short: "open quantum system dynamics",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".qudyn", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run dynamics",
		Args:  cobra.ExactArgs(1),
		RunE:  runDynamics,
	}
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	runCmd.Flags().StringVar(&method, "method", "rk4", "step method (rk4, rk2, euler)")
	runCmd.Flags().StringVar(&dyneq, "dynamics", "lindblad", "equation of motion (lindblad, redfield)")
	runCmd.Flags().Float64Var(&delta, "delta", config.DefaultDelta, "tunneling splitting")
	runCmd.Flags().Float64Var(&eps, "eps", 0.0, "bias")
	runCmd.Flags().Float64Var(&hbar, "hbar", 1.0, "reduced Planck constant")
	runCmd.Flags().Float64Var(&gamma, "gamma", config.DefaultGamma, "dephasing rate (lindblad)")
	runCmd.Flags().Float64Var(&lambda, "lambda", config.DefaultLambda, "reorganization energy (redfield)")
	runCmd.Flags().Float64Var(&cutoff, "cutoff", config.DefaultCutoff, "Drude decay rate (redfield)")
	runCmd.Flags().Float64Var(&kT, "kt", config.DefaultKT, "thermal energy (redfield)")
	runCmd.Flags().BoolVar(&timeDep, "time-dependent", false, "TCL2 time-dependent dressing (redfield)")
	runCmd.Flags().BoolVar(&secular, "secular", false, "secular approximation (redfield)")
	runCmd.Flags().Float64Var(&markov, "markov-time", 0, "freeze dressing beyond this time (0 = never)")
	runCmd.Flags().IntVar(&every, "every", 1, "sampling stride")
	runCmd.Flags().StringVar(&esFile, "es-file", "", "stream sampled rows to file")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runDynamics(cmd *cobra.Command, args []string) error {
	model := args[0]

	// Load preset if specified
	if preset != "" {
		cfg := config.GetPreset(model, preset)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		applyConfig(cmd, cfg, false)
	}

	// Load config file if specified (CLI flags override config)
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyConfig(cmd, cfg, true)
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	sigmaX := linalg.FromRows([][]complex128{{0, 1}, {1, 0}})
	sigmaZ := linalg.FromRows([][]complex128{{1, 0}, {0, -1}})

	// H = -delta/2 sigma_x + eps/2 sigma_z
	h := linalg.New(2, 2)
	h.AddScaled(complex(-0.5*delta, 0), sigmaX)
	h.AddScaled(complex(0.5*eps, 0), sigmaZ)

	hamOpts := []quantum.Option{quantum.WithHbar(hbar)}
	if dyneq == "redfield" {
		hamOpts = append(hamOpts, quantum.WithBaths(bath.NewDrude(lambda, cutoff, kT, sigmaZ)))
	}
	ham, err := quantum.New(h, hamOpts...)
	if err != nil {
		return err
	}

	times := (&config.Config{Dt: dt, Duration: duration}).TimeGrid()
	if len(times) < 2 {
		return fmt.Errorf("duration %.3g too short for dt %.3g", duration, dt)
	}

	opts := dynamics.DefaultOptions()
	opts.Method = method
	if markov > 0 {
		opts.MarkovTime = markov
	} else {
		opts.MarkovTime = math.Inf(1)
	}

	stride := every
	if stride < 1 {
		stride = 1
	}
	res := &results.Results{
		Tobs:    len(times)/stride + 1,
		EOps:    []*linalg.Matrix{sigmaZ, sigmaX},
		Every:   every,
		PrintES: esFile != "",
		ESFile:  esFile,
	}

	rho0 := linalg.New(2, 2)
	rho0.Set(0, 0, 1)

	switch dyneq {
	case "lindblad":
		eng := dynamics.NewLindblad(ham, dynamics.WithDissipator(gamma, sigmaZ))
		if _, err := eng.Solve(rho0, times, &opts, res); err != nil {
			return err
		}
	case "redfield":
		var ropts []dynamics.RedfieldOption
		if timeDep {
			ropts = append(ropts, dynamics.TimeDependent())
		}
		if secular {
			ropts = append(ropts, dynamics.Secular())
		}
		eng := dynamics.NewRedfield(ham, ropts...)
		if _, err := eng.Solve(rho0, times, &opts, res); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown dynamics: %s (lindblad, redfield)", dyneq)
	}

	meta := store.RunMetadata{
		Model:    model,
		Dynamics: dyneq,
		Method:   method,
		Dt:       dt,
		Duration: duration,
	}
	runID, err := st.Save(meta, res)
	if err != nil {
		return err
	}

	last := res.Samples() - 1
	fmt.Println(viz.Summary("run complete", [][2]string{
		{"run", runID},
		{"dynamics", dyneq},
		{"samples", fmt.Sprintf("%d", res.Samples())},
		{"final <sz>", fmt.Sprintf("%.6f", res.Expectations[last][0])},
		{"final <sx>", fmt.Sprintf("%.6f", res.Expectations[last][1])},
	}))
	fmt.Println()

	graph := asciigraph.Plot(res.Series(0),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("<sigma_z> vs time"),
	)
	fmt.Println(graph)
	fmt.Println(viz.Subtle.Render(fmt.Sprintf("saved to %s", dataDir)))

	return nil
}

// applyConfig copies config values into the flag variables. When
// respectFlags is set, explicitly passed flags win over the file.
func applyConfig(cmd *cobra.Command, cfg *config.Config, respectFlags bool) {
	set := func(name string, apply func()) {
		if respectFlags && cmd.Flags().Changed(name) {
			return
		}
		apply()
	}
	set("dt", func() { dt = cfg.Dt })
	set("time", func() { duration = cfg.Duration })
	set("method", func() {
		if cfg.Method != "" {
			method = cfg.Method
		}
	})
	set("dynamics", func() {
		if cfg.Dynamics != "" {
			dyneq = cfg.Dynamics
		}
	})
	set("delta", func() { delta = cfg.Delta })
	set("eps", func() { eps = cfg.Eps })
	set("hbar", func() {
		if cfg.Hbar != 0 {
			hbar = cfg.Hbar
		}
	})
	set("gamma", func() { gamma = cfg.Gamma })
	set("lambda", func() { lambda = cfg.Lambda })
	set("cutoff", func() { cutoff = cfg.Cutoff })
	set("kt", func() { kT = cfg.KT })
	set("time-dependent", func() { timeDep = cfg.TimeDependent })
	set("secular", func() { secular = cfg.Secular })
	set("markov-time", func() { markov = cfg.MarkovTime })
	set("every", func() {
		if cfg.Every > 0 {
			every = cfg.Every
		}
	})
	set("es-file", func() { esFile = cfg.ESFile })
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tDYNAMICS\tTIME\tDURATION\tDT\tMETHOD\tSAMPLES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%.4f\t%s\t%d\n",
			run.ID,
			run.Model,
			run.Dynamics,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Method,
			run.Samples,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	data, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	if len(data.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("samples: %d\n\n", len(data.Times))

	numOps := 0
	if len(data.Expectations) > 0 {
		numOps = len(data.Expectations[0])
	}

	for op := 0; op < numOps; op++ {
		series := make([]float64, len(data.Expectations))
		for i := range data.Expectations {
			series[i] = data.Expectations[i][op]
		}

		caption := fmt.Sprintf("observable %d vs time", op)
		if op == 0 {
			caption = "<sigma_z> vs time"
		} else if op == 1 {
			caption = "<sigma_x> vs time"
		}

		graph := asciigraph.Plot(series,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}
