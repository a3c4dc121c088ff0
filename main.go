package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/soocke/pixel-recorder-go/app"
	"github.com/soocke/pixel-recorder-go/capture"
	"github.com/soocke/pixel-recorder-go/config"
	"github.com/soocke/pixel-recorder-go/hotkey"
	"github.com/soocke/pixel-recorder-go/ui/dialog"
)

const (
	appTitle          = "Screen Recorder (AVI Stable Edition)"
	defaultConfigPath = "pixel-recorder.json"
)

type options struct {
	configPath string
	fps        float64
	outputDir  string
	encoder    string
	logFile    string
	debug      bool
	saveConfig bool
	exportTo   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "pixel-recorder",
		Short:        "Record the screen to an AVI file",
		Long:         "Captures the primary display at a paced frame rate and records it to MJPEG/AVI.\nStart, pause, stop and export from the window; press the cancel key (esc) to export and exit.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, false)
		},
	}
	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", defaultConfigPath, "path to the JSON config file")
	f.Float64Var(&opts.fps, "fps", 0, "target capture rate (frames per second)")
	f.StringVar(&opts.outputDir, "output-dir", "", "directory for temporary recordings")
	f.StringVar(&opts.encoder, "encoder", "", "encoder backend: mjpeg or ffmpeg")
	f.StringVar(&opts.logFile, "log-file", "", "also write logs to this rotating file")
	f.BoolVar(&opts.debug, "debug", false, "debug logging and periodic stats")
	f.BoolVar(&opts.saveConfig, "save-config", false, "write the effective config back to --config")

	console := &cobra.Command{
		Use:   "console",
		Short: "Control recording from standard input",
		Long:  "Reads commands from standard input: start|s, pause|p, stop|x, export|q, status.\nWith --export-to, export prompts are answered without dialogs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, true)
		},
	}
	console.Flags().StringVar(&opts.exportTo, "export-to", "", "export destination used instead of the save dialog")
	root.AddCommand(console)
	return root
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", opts.configPath, err)
	}
	flags := cmd.Flags()
	if flags.Changed("fps") {
		cfg.TargetFPS = opts.fps
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = opts.outputDir
	}
	if flags.Changed("encoder") {
		cfg.Encoder = opts.encoder
	}
	if flags.Changed("log-file") {
		cfg.LogFile = opts.logFile
	}
	if opts.debug {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
	_ = cfg.Validate()
	if opts.saveConfig {
		if err := cfg.Save(opts.configPath); err != nil {
			return nil, fmt.Errorf("save config %s: %w", opts.configPath, err)
		}
	}
	return cfg, nil
}

func run(cmd *cobra.Command, opts *options, consoleMode bool) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	w, closer := logOutput(cfg.LogFile)
	if closer != nil {
		defer closer.Close()
	}
	logger := NewLogger(parseLevel(cfg.LogLevel), w)
	logger.Info("starting", "config", opts.configPath, "fps", cfg.TargetFPS, "encoder", cfg.Encoder, "output_dir", cfg.OutputDir)

	screen, err := capture.NewScreen()
	if err != nil {
		logger.Error("frame source unavailable", "error", err)
		return err
	}

	var dialogs app.Dialogs = dialog.New(logger)
	if consoleMode && opts.exportTo != "" {
		dialogs = &app.ConsoleNotifier{Out: cmd.OutOrStdout(), ExportTo: opts.exportTo}
	}

	deps := app.Deps{Source: screen, Dialogs: dialogs, Preview: !consoleMode}
	if watcher, err := hotkey.New(cfg.CancelKey, logger); err != nil {
		logger.Warn("cancel key disabled", "key", cfg.CancelKey, "error", err)
	} else {
		deps.Cancel = watcher
	}

	c, err := app.BuildContainer(context.Background(), cfg, logger, deps)
	if err != nil {
		logger.Error("build failed", "error", err)
		return err
	}
	stopSignals := exportOnInterrupt(c, logger)
	defer stopSignals()

	if consoleMode {
		app.NewConsole(c, cmd.InOrStdin(), cmd.OutOrStdout()).Run()
	} else {
		app.NewGUI(c, appTitle).Run()
	}
	logger.Info("exited")
	return nil
}

// exportOnInterrupt routes an interrupt through export-and-exit so the
// recording is not left half written.
func exportOnInterrupt(c *app.AppContainer, logger *slog.Logger) func() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	done := make(chan struct{})
	go func() {
		select {
		case <-sig:
			logger.Info("interrupt received")
			c.Post(c.Control.ExportAndExit)
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sig)
		close(done)
	}
}
