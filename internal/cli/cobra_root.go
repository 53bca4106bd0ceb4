package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"task-tracker/internal/config"
	"task-tracker/internal/logging"
	"task-tracker/internal/services"
)

// RootCommand represents the root cobra command
type RootCommand struct {
	cmd     *cobra.Command
	out     io.Writer
	config  *config.Config
	runtime *Runtime
	app     *App
}

// NewRootCommand creates the tm command. Configuration is loaded and the
// store opened lazily, once flags are parsed.
func NewRootCommand(out io.Writer) *RootCommand {
	root := &RootCommand{out: out}

	root.cmd = &cobra.Command{
		Use:   "tm",
		Short: "Task Manager - plan tasks, epics and subtasks",
		Long: `Task Manager keeps tasks, epics and subtasks with optional start
times and planned durations, refuses overlapping schedules and remembers
what you looked at recently.

Storage can be a local SQLite file, PostgreSQL, a key-value server or memory.

Examples:
  tm task add "write report" --start "tomorrow 9:00" --duration 2h
  tm epic add "release 1.2"
  tm subtask add 2 "changelog" --duration 30m
  tm prioritized
  tm serve --http-addr :8080`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.loadConfig()
		},
	}
	root.cmd.SetOut(out)

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// NewRootCommandWithApp creates a root command around an existing app.
// Configuration loading and store opening are skipped.
func NewRootCommandWithApp(app *App, cfg *config.Config) *RootCommand {
	root := NewRootCommand(app.out)
	root.app = app
	root.config = cfg
	return root
}

// Execute runs the command line and closes the store afterwards
func (r *RootCommand) Execute(ctx context.Context, args []string) error {
	r.cmd.SetArgs(args)
	err := r.cmd.ExecuteContext(ctx)

	if r.runtime != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), r.getWriteTimeout())
		defer cancel()
		if closeErr := r.runtime.Close(closeCtx); closeErr != nil && err == nil {
			err = NewErrorHandler().Handle("save tasks", closeErr)
		}
		r.runtime = nil
	}
	return err
}

// Command returns the underlying cobra command
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "YAML config file (overrides TM_CONFIG)")

	// Storage configuration
	flags.String("backend", "", "Storage backend: memory, sqlite, postgres or kv (overrides TM_STORAGE_BACKEND)")
	flags.String("db-dir", "", "Database directory path (overrides TM_DB_DIR)")
	flags.String("db-filename", "", "Database filename (overrides TM_DB_FILENAME)")
	flags.String("postgres-dsn", "", "PostgreSQL connection string (overrides TM_POSTGRES_DSN)")
	flags.Duration("db-query-timeout", 0, "Database query timeout (overrides TM_DB_QUERY_TIMEOUT)")

	// Servers
	flags.String("http-addr", "", "Task API listen address (overrides TM_HTTP_ADDR)")
	flags.String("kv-url", "", "Key-value server URL (overrides TM_KV_URL)")
	flags.String("kv-addr", "", "Key-value server listen address (overrides TM_KV_ADDR)")

	// Store configuration
	flags.Int("history-limit", 0, "Maximum number of history entries, 0 for no limit (overrides TM_HISTORY_LIMIT)")
	flags.Duration("max-duration", 0, "Maximum planned duration (overrides TM_VALIDATION_MAX_DURATION)")

	// Output and application configuration
	flags.String("time-format", "", "Time display format (overrides TM_TIME_FORMAT)")
	flags.Bool("relative", false, "Show times relative to now (overrides TM_DISPLAY_RELATIVE)")
	flags.Bool("verbose", false, "Enable verbose output (overrides TM_APP_VERBOSE)")
	flags.String("log-level", "", "Log level: debug, info, warn or error (overrides TM_LOG_LEVEL)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	r.cmd.AddCommand(
		r.newTaskCommand(),
		r.newEpicCommand(),
		r.newSubtaskCommand(),
	)
	r.cmd.AddCommand(r.newViewCommands()...)
	r.cmd.AddCommand(r.newServeCommands()...)
	r.cmd.AddCommand(r.newDemoCommand())
}

// loadConfig loads configuration once and sets up logging
func (r *RootCommand) loadConfig() error {
	if r.config != nil {
		return nil
	}

	loader := config.NewLoader()
	if path, _ := r.cmd.PersistentFlags().GetString("config"); path != "" {
		loader = loader.WithFile(path)
	}
	cfg, err := loader.LoadWithOverrides(r.getConfigFromFlags())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	r.config = cfg

	level := cfg.Application.LogLevel
	if cfg.Application.Verbose {
		level = "debug"
	}
	logging.Configure(os.Stderr, level, cfg.Application.LogConsole)
	return nil
}

// application opens the store on first use
func (r *RootCommand) application(ctx context.Context) (*App, error) {
	if r.app != nil {
		return r.app, nil
	}

	rt, err := OpenRuntime(ctx, r.config, false)
	if err != nil {
		return nil, NewErrorHandler().Handle("open store", err)
	}
	r.runtime = rt
	r.app = NewApp(rt.API, services.NewTimeService(r.config.Display.TimeFormat), r.out).
		WithRelativeTimes(r.config.Display.Relative)
	return r.app, nil
}

// withApp adapts a handler that needs the application to a cobra RunE.
// The handler runs under the application timeout.
func (r *RootCommand) withApp(run func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), r.getAppTimeout())
		defer cancel()

		app, err := r.application(ctx)
		if err != nil {
			return err
		}
		return run(ctx, app, cmd, args)
	}
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 60 * time.Second
}

func (r *RootCommand) getWriteTimeout() time.Duration {
	if r.config != nil && r.config.Storage.WriteTimeout > 0 {
		return r.config.Storage.WriteTimeout
	}
	return 5 * time.Second
}

// getConfigFromFlags collects the flags the user set into config overrides
func (r *RootCommand) getConfigFromFlags() *config.ConfigOverrides {
	flags := r.cmd.PersistentFlags()
	overrides := &config.ConfigOverrides{}

	// Storage configuration
	if backend, _ := flags.GetString("backend"); backend != "" {
		overrides.Backend = &backend
	}
	if dbDir, _ := flags.GetString("db-dir"); dbDir != "" {
		overrides.DBDir = &dbDir
	}
	if dbFilename, _ := flags.GetString("db-filename"); dbFilename != "" {
		overrides.DBFilename = &dbFilename
	}
	if dsn, _ := flags.GetString("postgres-dsn"); dsn != "" {
		overrides.PostgresDSN = &dsn
	}
	if queryTimeout, _ := flags.GetDuration("db-query-timeout"); queryTimeout > 0 {
		overrides.QueryTimeout = &queryTimeout
	}

	// Servers
	if httpAddr, _ := flags.GetString("http-addr"); httpAddr != "" {
		overrides.HTTPAddr = &httpAddr
	}
	if kvURL, _ := flags.GetString("kv-url"); kvURL != "" {
		overrides.KVURL = &kvURL
	}
	if kvAddr, _ := flags.GetString("kv-addr"); kvAddr != "" {
		overrides.KVAddr = &kvAddr
	}

	// Store configuration
	if flags.Changed("history-limit") {
		historyLimit, _ := flags.GetInt("history-limit")
		overrides.HistoryLimit = &historyLimit
	}
	if maxDuration, _ := flags.GetDuration("max-duration"); maxDuration > 0 {
		overrides.MaxDuration = &maxDuration
	}

	// Output and application configuration
	if timeFormat, _ := flags.GetString("time-format"); timeFormat != "" {
		overrides.TimeFormat = &timeFormat
	}
	if relative, _ := flags.GetBool("relative"); relative {
		overrides.Relative = &relative
	}
	if verbose, _ := flags.GetBool("verbose"); verbose {
		overrides.Verbose = &verbose
	}
	if logLevel, _ := flags.GetString("log-level"); logLevel != "" {
		overrides.LogLevel = &logLevel
	}

	return overrides
}
