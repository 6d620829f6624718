package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/simulation"
)

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run --trace FILE [--trace FILE]",
	Short: "Replay traces and print the statistics.",
	Long: "Replay traces and print the statistics. With one trace both " +
		"cores replay it; with two traces each core replays its own.\n\n" +
		"Every flag can also be given as an environment variable, such as " +
		"CACHESIM_L1_SIZE for --l1-size, or in an env file.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadEnvFile(runOpts.envFile); err != nil {
			return err
		}

		if err := applyEnv(cmd); err != nil {
			return err
		}

		return run(cmd, runOpts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	addConfigFlags(flags, &runOpts.cfg)

	flags.StringSliceVar(&runOpts.traces, "trace", nil,
		"Trace file; give it twice to feed each core its own trace.")
	flags.StringVar(&runOpts.envFile, "env-file", "",
		"Env file with CACHESIM_* defaults. Defaults to .env if present.")
	flags.BoolVar(&runOpts.record, "record", false,
		"Record coherence traffic into a SQLite database.")
	flags.StringVar(&runOpts.dbName, "db", "",
		"Database name, without the .sqlite3 extension.")
	flags.BoolVar(&runOpts.monitor, "monitor", false,
		"Serve the progress of the simulation over HTTP.")
	flags.IntVar(&runOpts.monitorPort, "monitor-port", 0,
		"Port of the monitoring server. 0 picks a free port.")
	flags.BoolVar(&runOpts.openBrowser, "open-browser", false,
		"Open the monitoring page in a browser.")
	flags.BoolVar(&runOpts.logEvents, "log-events", false,
		"Log coherence traffic to stderr.")
	flags.BoolVar(&runOpts.verbose, "verbose", false,
		"With --log-events, also log hits and stores.")
	flags.BoolVar(&runOpts.json, "json", false, "Print the report as JSON.")
}

func run(cmd *cobra.Command, opts runOptions) error {
	traces, err := readTraces(opts.traces)
	if err != nil {
		return err
	}

	b := simulation.MakeBuilder().WithConfig(opts.cfg)

	switch len(traces) {
	case 1:
		b = b.WithTrace(traces[0])
	default:
		for i, refs := range traces {
			b = b.WithCoreTrace(i, refs)
		}
	}

	if opts.logEvents {
		b = b.WithEventLogger(log.New(os.Stderr, "", 0), opts.verbose)
	}

	if opts.record {
		recorder, err := datarecording.New(opts.dbName)
		if err != nil {
			return err
		}

		b = b.WithDataRecorder(recorder)
	}

	var monitor *monitoring.Monitor
	if opts.monitor {
		monitor = monitoring.NewMonitor().WithPortNumber(opts.monitorPort)
		b = b.WithMonitor(monitor)
	}

	s, err := b.Build()
	if err != nil {
		return err
	}

	if monitor != nil {
		url := monitor.StartServer()

		if opts.openBrowser {
			if err := browser.OpenURL(url); err != nil {
				fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
			}
		}
	}

	report := s.Run()

	if err := s.Terminate(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	if opts.json {
		return writeJSONReport(cmd.OutOrStdout(), s.ID(), opts.cfg, report)
	}

	return writeTextReport(cmd.OutOrStdout(), opts.cfg, report)
}

func readTraces(paths []string) ([][]trace.Reference, error) {
	if len(paths) == 0 || len(paths) > 2 {
		return nil, fmt.Errorf("expected one or two --trace files, got %d",
			len(paths))
	}

	traces := make([][]trace.Reference, 0, len(paths))

	for _, path := range paths {
		refs, err := trace.ReadFile(path)
		if err != nil {
			return nil, err
		}

		traces = append(traces, refs)
	}

	return traces, nil
}
