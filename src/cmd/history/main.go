package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"screen-region-capture/src/config"
	"screen-region-capture/src/history"
)

const defaultLimit = 20

type cliOptions struct {
	dbPath     string
	session    string
	limit      int
	jsonOutput bool
	verbose    bool
}

func main() {
	if err := runWithArgs(normalizeLegacyArgs(os.Args), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runWithArgs(args []string, out io.Writer) error {
	if len(args) == 0 {
		args = []string{"capture-history"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts, out)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "capture-history",
		Short:         "List captures recorded in the history database",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts, out)
		},
	}

	cmd.Flags().StringVar(&opts.dbPath, "db", "", "Path to history database (default: HISTORY_DB)")
	cmd.Flags().StringVar(&opts.session, "session", "", "Only list captures of this session")
	cmd.Flags().IntVar(&opts.limit, "limit", defaultLimit, "Maximum number of captures to list")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")

	return cmd
}

func runWithOptions(opts cliOptions, out io.Writer) error {
	// Configure logging BEFORE any other operations.
	if !opts.verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{HistoryDBOverride: opts.dbPath})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.HistoryDB == "" {
		return fmt.Errorf("no history database configured. Pass --db or set HISTORY_DB")
	}
	if opts.limit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", opts.limit)
	}
	if _, err := os.Stat(cfg.HistoryDB); err != nil {
		return fmt.Errorf("history database %s: %w", cfg.HistoryDB, err)
	}

	j, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.Recent(opts.session, opts.limit)
	if err != nil {
		return err
	}
	log.Printf("Listing %d captures from %s", len(entries), cfg.HistoryDB)
	return outputEntries(out, entries, opts.jsonOutput)
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"db", "session", "limit", "json", "verbose"} {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}

	return normalized
}

type captureResult struct {
	ID        int64  `json:"id"`
	Timestamp string `json:"timestamp"`
	Session   string `json:"session"`
	Path      string `json:"path"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Size      int    `json:"size_bytes"`
}

func outputEntries(out io.Writer, entries []history.Entry, jsonOutput bool) error {
	if jsonOutput {
		results := make([]captureResult, 0, len(entries))
		for _, e := range entries {
			results = append(results, captureResult{
				ID:        e.ID,
				Timestamp: e.TakenAt.UTC().Format(time.RFC3339),
				Session:   e.Session,
				Path:      e.Path,
				X:         e.Region.X,
				Y:         e.Region.Y,
				Width:     e.Region.Width,
				Height:    e.Region.Height,
				Size:      e.Size,
			})
		}

		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSESSION\tREGION\tPATH")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%dx%d+%d+%d\t%s\n",
			e.TakenAt.Format("2006-01-02 15:04:05"), e.Session,
			e.Region.Width, e.Region.Height, e.Region.X, e.Region.Y, e.Path)
	}
	return tw.Flush()
}
