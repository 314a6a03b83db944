package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/stickycaps/internal/caps"
	"github.com/san-kum/stickycaps/internal/config"
	"github.com/san-kum/stickycaps/internal/export"
	"github.com/san-kum/stickycaps/internal/metrics"
	"github.com/san-kum/stickycaps/internal/stage"
	"github.com/san-kum/stickycaps/internal/store"
	"github.com/san-kum/stickycaps/internal/viz"
	"github.com/san-kum/stickycaps/internal/web"
)

var (
	configFile string
	preset     string
	verbose    bool
	logFile    string

	message     string
	fps         int
	probability float64
	fontSize    int
	fontFamily  string
	background  string
	uppercase   string
	lowercase   string

	dataDir string
	seed    uint64
	plain   bool
	record  bool
	addr    string
	format  string
	page    bool
	count   int
	samples int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stickycaps",
		Short: "randomly capitalised text, redrawn at a fixed rate",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
			return nil
		},
		RunE: runInteractive,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".stickycaps", "recordings directory")
	addSettingsFlags(rootCmd)
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write logs here instead of discarding them")

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "print frames to the terminal without the control panel",
		RunE:  runPlay,
	}
	playCmd.Flags().BoolVar(&plain, "plain", false, "print each frame on a new line instead of redrawing")
	playCmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 for a random one)")
	playCmd.Flags().BoolVar(&record, "record", false, "save every frame to the recordings directory")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the stage and controls to a browser",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8024", "listen address")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render frames once and print them",
		RunE:  runRender,
	}
	renderCmd.Flags().StringVar(&format, "format", "ansi", "output format: ansi, text, html or svg")
	renderCmd.Flags().BoolVar(&page, "page", false, "wrap html output in a standalone document")
	renderCmd.Flags().IntVarP(&count, "count", "n", 1, "number of frames")
	renderCmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 for a random one)")

	sampleCmd := &cobra.Command{
		Use:   "sample",
		Short: "check the uppercase share converges on the probability",
		RunE:  runSample,
	}
	sampleCmd.Flags().IntVar(&samples, "frames", 500, "frames to draw")
	sampleCmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 for a random one)")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list recordings",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recording's uppercase share",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage settings files",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write the resolved settings to a yaml file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	})

	rootCmd.AddCommand(playCmd, serveCmd, renderCmd, sampleCmd, runsCmd, plotCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newEngine() *caps.Engine {
	if seed == 0 {
		return caps.NewEngine(nil)
	}
	return caps.NewSeeded(seed)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal, so logs go to a file or nowhere.
	var w io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}

	return viz.Run(settings, stage.WithLogger(newLogger(w, level)))
}

func runPlay(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	surface := viz.NewPlainSurface(os.Stdout, !plain)
	var out stage.Surface = surface

	var rec *store.Recorder
	if record {
		s := store.New(dataDir)
		if err := s.Init(); err != nil {
			return err
		}
		rec, err = s.Record(settings, seed)
		if err != nil {
			return err
		}
		out = stage.Tee(surface, rec)
	}

	st := stage.New(out, settings, stage.WithLogger(logger), stage.WithEngine(newEngine()))

	surface.Start()
	st.Start()
	logger.Debug("playing", "fps", settings.FPS, "probability", settings.Probability)

	waitForSignal()

	st.Stop()
	surface.Close()
	if rec != nil {
		if err := rec.Close(); err != nil {
			return err
		}
		logger.Info("recorded", "id", rec.ID, "frames", rec.Frames())
	}
	if skipped := st.Skipped(); skipped > 0 {
		logger.Debug("frames skipped", "count", skipped)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	hub := web.NewHub()
	st := stage.New(hub, settings, stage.WithLogger(logger))
	srv := web.NewServer(addr, st, hub, logger)

	if err := srv.Start(); err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	st.Start()

	waitForSignal()
	logger.Info("shutting down")

	st.Stop()
	return srv.Stop()
}

func runRender(cmd *cobra.Command, args []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	engine := newEngine()
	for i := 1; i <= max(count, 1); i++ {
		f := stage.Frame{
			Seq:      uint64(i),
			Output:   engine.Render(settings.RenderConfig()),
			Settings: settings,
			At:       time.Now(),
		}

		switch format {
		case "ansi":
			fmt.Println(f.Output.ANSI())
		case "text":
			fmt.Println(f.Output.Text())
		case "html":
			if page {
				fmt.Print(export.FrameToHTML(f))
			} else {
				fmt.Println(f.Output.HTML())
			}
		case "svg":
			fmt.Print(export.FrameToSVG(f))
		default:
			return fmt.Errorf("unknown format: %s (want ansi, text, html or svg)", format)
		}
	}
	return nil
}

func runSample(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	engine := newEngine()
	share := metrics.NewUpperShare()
	for i := 0; i < max(samples, 1); i++ {
		share.Observe(engine.Render(settings.RenderConfig()))
	}

	if share.Letters() == 0 {
		return fmt.Errorf("message %q has no letters to sample", settings.Message)
	}

	graph := asciigraph.Plot(share.History(),
		asciigraph.Height(12),
		asciigraph.Width(70),
		asciigraph.Caption(fmt.Sprintf("%s over %d frames (p=%.2f)", share.Name(), len(share.History()), settings.Probability)))
	fmt.Println(graph)

	tol := metrics.Tolerance(settings.Probability, share.Letters())
	diff := math.Abs(share.Value() - settings.Probability)
	fmt.Printf("\nletters: %d  share: %.4f  expected: %.2f ± %.4f\n", share.Letters(), share.Value(), settings.Probability, tol)

	if diff > tol {
		logger.Warn("share outside tolerance", "diff", diff, "tolerance", tol)
		return fmt.Errorf("uppercase share %.4f is %.4f from %.2f", share.Value(), diff, settings.Probability)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := store.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recordings")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tFPS\tPROBABILITY\tMESSAGE")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%q\n", r.ID, r.Timestamp.Format("2006-01-02 15:04:05"), r.Settings.FPS, r.Settings.Probability, r.Settings.Message)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	s := store.New(dataDir)
	meta, err := s.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("recording %s has no frames", args[0])
	}

	data := make([]float64, len(frames))
	for i, f := range frames {
		data[i] = f.UpperFraction
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(70),
		asciigraph.Caption(fmt.Sprintf("upper share per frame (p=%.2f)", meta.Settings.Probability)))
	fmt.Println(graph)

	span := frames[len(frames)-1].At.Sub(frames[0].At)
	if len(frames) > 1 && span > 0 {
		fmt.Printf("\nframes: %d  measured: %.1f fps  configured: %d fps\n", len(frames), float64(len(frames)-1)/span.Seconds(), meta.Settings.FPS)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFPS\tPROBABILITY\tFONT\tMESSAGE")
	for _, name := range config.ListPresets() {
		p, _ := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%dpx %s\t%q\n", name, p.FPS, p.Probability, p.FontSize, p.FontFamily, p.Message)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "stickycaps.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(path, settings); err != nil {
		return err
	}
	loggerFromContext(cmd.Context()).Info("wrote settings", "path", path)
	return nil
}

func waitForSignal() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	<-sigs
}
