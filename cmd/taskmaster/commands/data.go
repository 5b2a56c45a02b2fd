package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/taskmaster/planner/internal/application/presentation"
	"github.com/taskmaster/planner/internal/application/query"
	"github.com/taskmaster/planner/internal/application/services"
	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/infrastructure/logger"
	"github.com/taskmaster/planner/internal/ports"
)

// NewDashboardCommand prints the dashboard projections
func NewDashboardCommand(opts *Options) *cobra.Command {
	var ics bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print the dashboard as JSON",
		Long:  "Print stats, charts, heatmap, calendar events and recent notes as JSON, or the task calendar as iCalendar with --ics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if ics {
					cal, err := a.dashboard.CalendarICS(ctx, a.cfg.App.Name)
					if err != nil {
						return err
					}
					_, err = io.WriteString(cmd.OutOrStdout(), cal)
					return err
				}

				dash, err := a.dashboard.Build(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), dash)
			})
		},
	}

	cmd.Flags().BoolVar(&ics, "ics", false, "print the task calendar as iCalendar")
	return cmd
}

// NewSearchCommand searches tasks and notes together
func NewSearchCommand(opts *Options) *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search tasks and notes",
		Long:  "Search tasks and notes. With --interactive each line read from stdin is a new query; bursts of lines are debounced and only the latest is searched.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !interactive && len(args) != 1 {
				return fmt.Errorf("%w: a query is required without --interactive", entities.ErrInvalidInput)
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if interactive {
					return interactiveSearch(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), a)
				}
				res, err := a.search.Search(ctx, args[0])
				if err != nil {
					return err
				}
				printSearchResults(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read queries from stdin")
	return cmd
}

// interactiveSearch runs the debounced search loop until in is exhausted. The
// latest query is always answered, even when input ends inside the quiet
// window.
func interactiveSearch(ctx context.Context, in io.Reader, out io.Writer, a *app) error {
	var (
		mu      sync.Mutex
		closed  bool
		ran     bool
		lastRun string
	)

	run := func(q string) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		res, err := a.search.Search(ctx, q)
		if err != nil {
			fmt.Fprintf(out, "search failed: %v\n", err)
			return
		}
		printSearchResults(out, res)
		ran, lastRun = true, q
	}

	d := query.NewDebouncer(a.cfg.Search.Debounce, run)

	var (
		last string
		seen bool
	)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		last, seen = scanner.Text(), true
		d.Trigger(last)
	}
	d.Stop()

	mu.Lock()
	closed = true
	pending := seen && (!ran || lastRun != last)
	mu.Unlock()

	if pending {
		res, err := a.search.Search(ctx, last)
		if err != nil {
			return err
		}
		printSearchResults(out, res)
	}
	return scanner.Err()
}

func printSearchResults(out io.Writer, res *services.SearchResults) {
	fmt.Fprintf(out, "Search %q: %d tasks, %d notes\n", res.Query, len(res.Tasks), len(res.Notes))
	for _, hits := range [][]presentation.SearchHit{res.Tasks, res.Notes} {
		for _, h := range hits {
			fmt.Fprintf(out, "  %-4s  %s  %s\n", h.Kind, h.ID, h.Title)
		}
	}
}

// NewBackfillCommand stamps legacy tasks missing createdAt or completedAt
func NewBackfillCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Fill in missing task timestamps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				n, err := a.tasks.BackfillTimestamps(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Backfilled %d tasks\n", n)
				return nil
			})
		},
	}
}

const (
	collectionTasks = "tasks"
	collectionNotes = "notes"
	collectionAll   = "all"
)

// NewDataCommand moves whole collections in and out of storage
func NewDataCommand(opts *Options) *cobra.Command {
	dataCmd := &cobra.Command{
		Use:   "data",
		Short: "Export, import and clear collections",
	}

	var outFile string
	exportCmd := &cobra.Command{
		Use:       "export <tasks|notes>",
		Short:     "Write a collection as a JSON array",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{collectionTasks, collectionNotes},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				var (
					data []byte
					err  error
				)
				if args[0] == collectionTasks {
					data, err = a.tasks.ExportTasks(ctx)
				} else {
					data, err = a.notes.ExportNotes(ctx)
				}
				if err != nil {
					return err
				}

				if outFile == "" || outFile == "-" {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
					return err
				}
				return os.WriteFile(outFile, data, 0o644)
			})
		},
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file, stdout when empty")

	importCmd := &cobra.Command{
		Use:       "import <tasks|notes> <file>",
		Short:     "Replace a collection with a JSON array read from file, - for stdin",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{collectionTasks, collectionNotes},
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] != collectionTasks && args[0] != collectionNotes {
				return fmt.Errorf("%w: unknown collection %q", entities.ErrInvalidInput, args[0])
			}

			var (
				data []byte
				err  error
			)
			if args[1] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[1])
			}
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[1], err)
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				var n int
				if args[0] == collectionTasks {
					n, err = a.tasks.ImportTasks(ctx, data)
				} else {
					n, err = a.notes.ImportNotes(ctx, data)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d %s\n", n, args[0])
				return nil
			})
		},
	}

	var confirmed bool
	clearCmd := &cobra.Command{
		Use:       "clear <tasks|notes|all>",
		Short:     "Delete every record of a collection",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{collectionTasks, collectionNotes, collectionAll},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("refusing to clear %s without --yes", args[0])
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if args[0] != collectionNotes {
					if err := a.tasks.ClearTasks(ctx); err != nil {
						return err
					}
				}
				if args[0] != collectionTasks {
					if err := a.notes.ClearNotes(ctx); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", args[0])
				return nil
			})
		},
	}
	clearCmd.Flags().BoolVarP(&confirmed, "yes", "y", false, "confirm deletion")

	dataCmd.AddCommand(exportCmd, importCmd, clearCmd)
	return dataCmd
}

// NewTokenCommand issues API tokens for the bearer-token middleware
func NewTokenCommand(opts *Options) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "API token commands",
	}

	var subject string
	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a signed API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.Logger.Output != "file" {
				cfg.Logger.Output = "stderr"
			}
			appLogger, err := logger.New(cfg.Logger)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer appLogger.Sync()

			auth := services.NewAuthService(cfg.JWT, opts.Clock, services.NewValidator(), appLogger)
			token, err := auth.IssueToken(ports.TokenRequest{Subject: subject})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), token)
		},
	}
	issueCmd.Flags().StringVarP(&subject, "subject", "s", "", "token subject (required)")
	_ = issueCmd.MarkFlagRequired("subject")

	tokenCmd.AddCommand(issueCmd)
	return tokenCmd
}
