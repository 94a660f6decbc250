package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"screen-region-capture/src/capture"
	"screen-region-capture/src/clipboard"
	"screen-region-capture/src/config"
	"screen-region-capture/src/control"
	"screen-region-capture/src/eventloop"
	"screen-region-capture/src/gui"
	"screen-region-capture/src/history"
	"screen-region-capture/src/hotkey"
	"screen-region-capture/src/logutil"
	"screen-region-capture/src/notification"
	"screen-region-capture/src/overlay"
	"screen-region-capture/src/screenshot"
	"screen-region-capture/src/tray"
)

type mainOptions struct {
	outputDir       string
	delay           time.Duration
	historyDB       string
	copyToClipboard bool
	logToFile       bool
}

func (o *mainOptions) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		OutputDirOverride: o.outputDir,
		DelayOverride:     o.delay,
		HistoryDBOverride: o.historyDB,
		CopyToClipboard:   o.copyToClipboard,
		EnableFileLogging: o.logToFile,
	}
}

var longFlags = []string{"output-dir", "delay", "history-db", "copy-to-clipboard", "log"}

// normalizeLegacyArgs maps Go-style -flag[=v] to --flag[=v] for the long flags.
func normalizeLegacyArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 1; i < len(out); i++ {
		arg := out[i]
		if !strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "--") {
			continue
		}
		name := strings.TrimPrefix(arg, "-")
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name = name[:eq]
		}
		for _, f := range longFlags {
			if name == f {
				out[i] = "-" + arg
				break
			}
		}
	}
	return out
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screen-region-capture",
		Short:         "Select a screen region and save it as PNG with one keystroke",
		Version:       control.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.outputDir, "output-dir", "", "directory for captured PNG files (default: working directory)")
	flags.DurationVar(&opts.delay, "delay", 0, "pause between hiding the overlay and grabbing the screen (default 100ms)")
	flags.StringVar(&opts.historyDB, "history-db", "", "record every capture in this SQLite database")
	flags.BoolVar(&opts.copyToClipboard, "copy-to-clipboard", false, "also copy each capture to the clipboard")
	flags.BoolVar(&opts.logToFile, "log", false, "write a debug log next to the working directory")
	return cmd
}

func main() {
	// All windows live on the main thread, which also runs the event loop.
	runtime.LockOSThread()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(&mainOptions{})
	cmd.SetArgs(normalizeLegacyArgs(os.Args)[1:])
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *mainOptions) error {
	cfg, err := config.LoadWithOptions(opts.loadOptions())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logutil.Setup(cfg.EnableFileLogging, "")

	// Ensure DPI awareness before creating any windows or querying metrics
	gui.EnableDPIAwareness()

	displays, err := screenshot.Displays()
	if err != nil {
		notification.ShowBlockingError("Screen Capture Tool", fmt.Sprintf("No display available: %v", err))
		return err
	}
	log.Printf("MONITOR: Virtual screen %v, %d displays", gui.VirtualScreen(), len(displays))
	log.Printf("%s initialized, saving to %s", control.Title, cfg.OutputDir)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := eventloop.New()
	loop.SetPump(gui.Pump, eventloop.DefaultPumpInterval)

	sinks, closeSinks := buildSinks(cfg)
	defer closeSinks()

	coord := capture.New(capture.Options{
		Store:     capture.FileStore{Dir: cfg.OutputDir},
		Scheduler: loop,
		Warner:    notification.Notifier{},
		Delay:     cfg.CaptureDelay,
		Sinks:     sinks,
	})

	var ctrl *control.Controller
	dispatch := func(a control.Action) {
		loop.Post(func() { ctrl.Do(a) })
	}

	panel, err := gui.NewControlWindow(dispatch)
	if err != nil {
		notification.ShowBlockingError("Screen Capture Tool", fmt.Sprintf("Failed to create control window: %v", err))
		return err
	}
	defer panel.Close()

	ctrl = control.New(func() (control.Overlay, error) {
		o, err := overlay.New(overlay.Options{
			Displays:      displays,
			NewSurface:    gui.NewSurface,
			Prompter:      gui.Prompter{},
			Capturer:      coord,
			Focus:         panel,
			Opacity:       cfg.OverlayOpacity,
			LockedOpacity: cfg.LockedOpacity,
		})
		if err != nil {
			return nil, err
		}
		return o, nil
	}, cancel)

	hotkeys := hotkey.NewListener()
	bindHotkeys(hotkeys, cfg, dispatch)
	hotkeys.Start()
	defer hotkeys.Stop()

	tooltip := fmt.Sprintf("%s - %s to select, %s to capture",
		control.Title, strings.Join(cfg.HotkeyShow, "/"), strings.Join(cfg.HotkeyCapture, "/"))
	trayIcon := tray.New(tooltip, dispatch, nil)
	go trayIcon.Run()
	defer trayIcon.Quit()

	err = loop.Run(ctx)
	ctrl.Quit()
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("event loop stopped: %v", err)
		return err
	}
	log.Printf("Exiting")
	return nil
}

func bindHotkeys(l *hotkey.Listener, cfg *config.Config, dispatch func(control.Action)) {
	bindings := []struct {
		specs  []string
		action control.Action
	}{
		{cfg.HotkeyShow, control.ActionShow},
		{cfg.HotkeyCapture, control.ActionCapture},
		{cfg.HotkeyLock, control.ActionLock},
		{cfg.HotkeyQuit, control.ActionQuit},
	}
	for _, b := range bindings {
		a := b.action
		if err := l.Register(b.specs, func() { dispatch(a) }); err != nil {
			log.Printf("HOTKEY: Skipping %s binding %v: %v", a, b.specs, err)
		}
	}
}

// buildSinks wires the optional post-save consumers. Failures only disable
// the affected sink.
func buildSinks(cfg *config.Config) ([]capture.Sink, func()) {
	var sinks []capture.Sink
	var closers []func() error

	if cfg.CopyToClipboard {
		if s, err := clipboard.NewSink(); err != nil {
			log.Printf("CLIPBOARD: Disabled: %v", err)
		} else {
			sinks = append(sinks, s)
		}
	}
	if cfg.HistoryDB != "" {
		if j, err := history.Open(cfg.HistoryDB); err != nil {
			log.Printf("HISTORY: Disabled: %v", err)
		} else {
			sinks = append(sinks, j)
			closers = append(closers, j.Close)
		}
	}

	return sinks, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Printf("failed to close sink: %v", err)
			}
		}
	}
}
