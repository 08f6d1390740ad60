package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"pmlang/internal/repl"
	"pmlang/internal/store"
	"pmlang/internal/util"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	// Version, BuildDate and Commit are set at link time.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
)

// app holds what the root command resolves before any subcommand runs.
type app struct {
	cfgFile   string
	logLevel  string
	logFile   string
	output    string
	noJournal bool

	config  util.Configuration
	journal *store.Store
	logOut  *os.File
}

func main() {
	a := &app{}
	err := a.rootCmd().Execute()
	if cerr := a.teardown(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, repl.Describe(err))
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pmlang",
		Short: "Parse, rewrite and evaluate tagged-tuple trees",
		Long: `pmlang builds tagged-tuple trees with parser combinators and rewrites
them with ordered pattern tables. It ships with a small arithmetic language.

Examples:
  pmlang eval "2 * (3 + 4)"
  pmlang parse --output tree "5 + 3"
  pmlang simplify "(7 * 1) + 0"
  pmlang eval --json tree.json
  pmlang repl`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "Config file (.toml, .yaml or .yml)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error, none")
	flags.StringVar(&a.logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
	flags.StringVarP(&a.output, "output", "o", "", "Tree output format: text, json, tree")
	flags.BoolVar(&a.noJournal, "no-journal", false, "Do not record commands in the journal")

	root.AddCommand(
		newParseCmd(a),
		newEvalCmd(a),
		newSimplifyCmd(a),
		newReplCmd(a),
		newHistoryCmd(a),
		newVersionCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := util.LoadConfiguration(a.cfgFile)
	if err != nil {
		return err
	}
	cfg.Version, cfg.BuildDate, cfg.Commit = Version, BuildDate, Commit

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if cmd.Flags().Changed("log-file") {
		cfg.LogFile = a.logFile
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = a.output
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.config = cfg

	// Creates a new Logger that uses a JSONHandler to write to the log destination
	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(cfg.LogLevel),
	}
	a.logOut = configureLogWriter(cfg.LogFile)
	slog.SetDefault(slog.New(slog.NewJSONHandler(a.logOut, loggerOptions)))

	slog.Debug("configuration loaded",
		slog.String("config", a.cfgFile),
		slog.String("output", cfg.Output),
		slog.String("journal", cfg.JournalDriver),
	)
	return nil
}

// teardown releases what setup and the command opened. It runs whether or
// not the command failed.
func (a *app) teardown() error {
	if a.logOut != nil && a.logOut != os.Stderr {
		a.logOut.Close()
		a.logOut = nil
	}
	if a.journal == nil {
		return nil
	}
	err := a.journal.Close()
	a.journal = nil
	return errors.Wrap(err, "closing journal")
}

// openJournal returns nil when journaling is disabled.
func (a *app) openJournal(ctx context.Context) (*store.Store, error) {
	if a.noJournal || a.config.JournalDriver == "" {
		return nil, nil
	}
	if a.journal != nil {
		return a.journal, nil
	}
	j, err := store.Open(ctx, a.config.JournalDriver, a.config.JournalDSN)
	if err != nil {
		return nil, err
	}
	a.journal = j
	return j, nil
}

// record journals one command. Journal failures are logged, never returned.
func (a *app) record(ctx context.Context, command, input, output string, cmdErr error) {
	j, err := a.openJournal(ctx)
	if err != nil {
		slog.Warn("journal unavailable", slog.Any("error", err))
		return
	}
	if j == nil {
		return
	}
	e := store.Entry{Command: command, Input: input, Output: output}
	if cmdErr != nil {
		e.Error = cmdErr.Error()
	}
	if _, err := j.Record(ctx, e); err != nil {
		slog.Warn("failed to journal command", slog.String("command", command), slog.Any("error", err))
	}
}

func configureLogWriter(logFile string) *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		// Create parent directories if they don't exist
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout(), a.config)
		},
	}
}

func printVersion(out io.Writer, cfg util.Configuration) {
	fmt.Fprintf(out, "pmlang version 'v%s' %s %s\n", cfg.Version, cfg.BuildDate, cfg.Commit)
}
