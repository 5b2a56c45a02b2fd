package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/infrastructure/clock"
	"github.com/taskmaster/planner/internal/ports"
)

// NewTaskCommand creates the task management command
func NewTaskCommand(opts *Options) *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Task management commands",
		Long:  "Create, list, complete and delete tasks",
	}

	taskCmd.AddCommand(newTaskAddCommand(opts))
	taskCmd.AddCommand(newTaskListCommand(opts))
	taskCmd.AddCommand(newTaskDoneCommand(opts))
	taskCmd.AddCommand(newTaskRemoveCommand(opts))
	taskCmd.AddCommand(newTaskEditCommand(opts))
	taskCmd.AddCommand(newTaskStatsCommand(opts))
	taskCmd.AddCommand(newTaskOverdueCommand(opts))
	taskCmd.AddCommand(newTaskSearchCommand(opts))

	return taskCmd
}

func newTaskAddCommand(opts *Options) *cobra.Command {
	var req ports.CreateTaskRequest

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Text = args[0]
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				task, err := a.tasks.CreateTask(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created task %s\n", task.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&req.Priority, "priority", "p", "", "priority (high, medium, low)")
	cmd.Flags().StringVarP(&req.Date, "date", "d", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.Description, "description", "", "longer description")
	return cmd
}

func newTaskListCommand(opts *Options) *cobra.Command {
	var q ports.TaskQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				tasks, err := a.tasks.QueryTasks(ctx, q)
				if err != nil {
					return err
				}
				return printTasks(cmd.OutOrStdout(), tasks, clock.Today(a.clock))
			})
		},
	}

	cmd.Flags().StringVarP(&q.Status, "status", "s", "", "all, active or completed")
	cmd.Flags().StringVarP(&q.Priority, "priority", "p", "", "only this priority")
	cmd.Flags().StringVarP(&q.Text, "query", "q", "", "substring of text or description")
	cmd.Flags().StringVar(&q.Sort, "sort", "", "priority, date or status")
	return cmd
}

func newTaskDoneCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task between completed and active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				task, err := a.tasks.ToggleTask(ctx, args[0])
				if err != nil {
					return err
				}
				state := "active"
				if task.Completed {
					state = "completed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %s is %s\n", task.ID, state)
				return nil
			})
		},
	}
}

func newTaskRemoveCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.tasks.DeleteTask(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
				return nil
			})
		},
	}
}

func newTaskEditCommand(opts *Options) *cobra.Command {
	var text, description, priority, date string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req ports.UpdateTaskRequest
			flags := cmd.Flags()
			if flags.Changed("text") {
				req.Text = &text
			}
			if flags.Changed("description") {
				req.Description = &description
			}
			if flags.Changed("priority") {
				req.Priority = &priority
			}
			if flags.Changed("date") {
				req.Date = &date
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				task, err := a.tasks.UpdateTask(ctx, args[0], req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", task.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "new text")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "new priority")
	cmd.Flags().StringVarP(&date, "date", "d", "", `new due date, "" clears it`)
	return cmd
}

func newTaskStatsCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				stats, err := a.tasks.GetTaskStats(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Total:      %d\n", stats.Total)
				fmt.Fprintf(out, "Completed:  %d\n", stats.Completed)
				fmt.Fprintf(out, "Active:     %d\n", stats.Active)
				fmt.Fprintf(out, "Completion: %d%%\n", stats.CompletionRate)
				return nil
			})
		},
	}
}

func newTaskOverdueCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List open tasks past their due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				tasks, err := a.tasks.GetOverdueTasks(ctx)
				if err != nil {
					return err
				}
				return printTasks(cmd.OutOrStdout(), tasks, clock.Today(a.clock))
			})
		},
	}
}

func newTaskSearchCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search task text and description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				tasks, err := a.tasks.SearchTasks(ctx, args[0])
				if err != nil {
					return err
				}
				return printTasks(cmd.OutOrStdout(), tasks, clock.Today(a.clock))
			})
		},
	}
}

func printTasks(out io.Writer, tasks []entities.Task, today entities.Date) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(out, "No tasks")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tPRIORITY\tDUE\tTEXT")
	for i := range tasks {
		t := &tasks[i]
		done := " "
		if t.Completed {
			done = "x"
		}
		due := t.Date.String()
		if t.IsOverdue(today) {
			due += " (overdue)"
		}
		fmt.Fprintf(tw, "%s\t[%s]\t%s\t%s\t%s\n", t.ID, done, t.Priority, due, t.Text)
	}
	return tw.Flush()
}
