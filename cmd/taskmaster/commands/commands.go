package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/taskmaster/planner/internal/adapters/repository"
	"github.com/taskmaster/planner/internal/application/services"
	"github.com/taskmaster/planner/internal/infrastructure/clock"
	"github.com/taskmaster/planner/internal/infrastructure/config"
	"github.com/taskmaster/planner/internal/infrastructure/database"
	"github.com/taskmaster/planner/internal/infrastructure/logger"
	"github.com/taskmaster/planner/internal/infrastructure/server"
	"github.com/taskmaster/planner/internal/ports"
)

// Options are the root flags shared by every command. Clock is replaced in
// tests.
type Options struct {
	ConfigFile string
	Clock      clock.Clock
}

// NewRootCommand assembles the taskmaster command tree
func NewRootCommand() *cobra.Command {
	opts := &Options{Clock: clock.Real{}}
	return newRootCommand(opts)
}

func newRootCommand(opts *Options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "taskmaster",
		Short:         "TaskMaster task and note planner",
		Long:          `TaskMaster keeps a to-do list and a typed notes collection, and projects them into dashboards, calendars and search results.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "config file (yaml, toml or json)")

	rootCmd.AddCommand(NewServeCommand(opts))
	rootCmd.AddCommand(NewMigrateCommand(opts))
	rootCmd.AddCommand(NewTaskCommand(opts))
	rootCmd.AddCommand(NewNoteCommand(opts))
	rootCmd.AddCommand(NewDashboardCommand(opts))
	rootCmd.AddCommand(NewSearchCommand(opts))
	rootCmd.AddCommand(NewBackfillCommand(opts))
	rootCmd.AddCommand(NewDataCommand(opts))
	rootCmd.AddCommand(NewTokenCommand(opts))
	rootCmd.AddCommand(NewVersionCommand(opts))

	return rootCmd
}

// app is the wiring shared by the commands that touch the collections
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	store     *repository.Collections
	clock     clock.Clock
	validate  *validator.Validate
	tasks     *services.TaskService
	notes     *services.NoteService
	dashboard *services.DashboardService
	search    *services.SearchService
}

func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// openApp loads configuration, opens storage and builds the services.
// Commands other than serve keep stdout for their own output, so the logger
// is moved to stderr.
func openApp(ctx context.Context, opts *Options, quietStdout bool) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if quietStdout && cfg.Logger.Output != "file" {
		cfg.Logger.Output = "stderr"
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	store, err := repository.Open(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Sync()
		return nil, err
	}

	validate := services.NewValidator()
	tasks := services.NewTaskService(store, opts.Clock, validate, appLogger)
	notes := services.NewNoteService(store, opts.Clock, validate, appLogger)

	return &app{
		cfg:       cfg,
		log:       appLogger,
		store:     store,
		clock:     opts.Clock,
		validate:  validate,
		tasks:     tasks,
		notes:     notes,
		dashboard: services.NewDashboardService(tasks, notes, opts.Clock, cfg.Dashboard, appLogger),
		search:    services.NewSearchService(tasks, notes),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warnw("Failed to close storage", "error", err)
	}
	a.log.Sync()
}

// withApp runs fn against an opened app and closes it afterwards
func withApp(cmd *cobra.Command, opts *Options, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, opts, true)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// NewServeCommand creates the serve command
func NewServeCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the TaskMaster API server",
		Long:  "Start the TaskMaster API server with all configured routes and middleware",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(opts)
		},
	}
}

func runServer(opts *Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, opts, false)
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := server.New(a.cfg, a.store, a.clock, a.log)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	if w, ok := a.store.Watcher(); ok && a.cfg.Storage.Watch {
		go watchStorage(ctx, w, a.log)
	}

	a.log.Infow("Starting TaskMaster API server",
		"address", srv.Address(),
		"environment", a.cfg.App.Environment,
		"storage", a.cfg.Storage.Backend,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(srv.Address())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// watchStorage reports edits made to the collections outside this process.
// Every request reloads its collection, so there is nothing to invalidate.
func watchStorage(ctx context.Context, w ports.Watcher, log *logger.Logger) {
	watchLog := log.WithComponent("storage_watch")
	err := w.Watch(ctx, func(ev ports.ChangeEvent) {
		watchLog.Infow("Collection changed on disk", "key", ev.Key, "op", ev.Op)
	})
	if err != nil {
		watchLog.Warnw("Storage watch stopped", "error", err)
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand(opts *Options) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage the postgres key-value table migrations (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up [steps]",
		Short: "Run up migrations, all of them when steps is omitted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := stepsArg(args)
			if err != nil {
				return err
			}
			return runMigration(cmd.OutOrStdout(), opts, "up", steps)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Run down migrations, all of them when steps is omitted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := stepsArg(args)
			if err != nil {
				return err
			}
			return runMigration(cmd.OutOrStdout(), opts, "down", steps)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showMigrationVersion(cmd.OutOrStdout(), opts)
		},
	})

	return migrateCmd
}

func stepsArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	steps, err := strconv.Atoi(args[0])
	if err != nil || steps < 0 {
		return 0, fmt.Errorf("invalid steps %q", args[0])
	}
	return steps, nil
}

func newMigrator(opts *Options) (*migrate.Migrate, *database.DB, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(cfg.Database.MigrationsPath, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, db, nil
}

func runMigration(out io.Writer, opts *Options, direction string, steps int) error {
	m, db, err := newMigrator(opts)
	if err != nil {
		return err
	}
	defer db.Close()

	switch direction {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Fprintln(out, "No migrations to run")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintf(out, "Migration %s completed successfully\n", direction)
	return nil
}

func showMigrationVersion(out io.Writer, opts *Options) error {
	m, db, err := newMigrator(opts)
	if err != nil {
		return err
	}
	defer db.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(out, "No migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Fprintf(out, "Current migration version: %d\n", version)
	fmt.Fprintf(out, "Dirty: %t\n", dirty)
	return nil
}

// NewVersionCommand creates the version command
func NewVersionCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print TaskMaster version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s v%s\n", cfg.App.Name, cfg.App.Version)
			fmt.Fprintf(out, "Go: %s\n", runtime.Version())
			fmt.Fprintf(out, "Storage: %s\n", cfg.Storage.Backend)
			return nil
		},
	}
}
