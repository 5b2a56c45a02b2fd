package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/taskmaster/planner/internal/application/presentation"
	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/ports"
)

// NewNoteCommand creates the note management command
func NewNoteCommand(opts *Options) *cobra.Command {
	noteCmd := &cobra.Command{
		Use:   "note",
		Short: "Note management commands",
		Long:  "Create and edit standard, sticky, checklist, idea and meeting notes",
	}

	noteCmd.AddCommand(newNoteAddCommand(opts))
	noteCmd.AddCommand(newNoteListCommand(opts))
	noteCmd.AddCommand(newNoteShowCommand(opts))
	noteCmd.AddCommand(newNoteRemoveCommand(opts))
	noteCmd.AddCommand(newNoteCheckCommand(opts))
	noteCmd.AddCommand(newNoteItemCommand(opts))
	noteCmd.AddCommand(newNoteTagCommand(opts, true))
	noteCmd.AddCommand(newNoteTagCommand(opts, false))

	return noteCmd
}

func newNoteAddCommand(opts *Options) *cobra.Command {
	var (
		req   ports.CreateNoteRequest
		data  string
		items []string
		tags  []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			specific, err := noteSpecificData(data, items, tags)
			if err != nil {
				return err
			}
			req.SpecificData = specific

			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				note, err := a.notes.CreateNote(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s note %s\n", note.Type, note.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&req.Type, "type", "t", string(entities.NoteTypeStandard), "standard, sticky, checklist, idea or meeting")
	cmd.Flags().StringVar(&req.Title, "title", "", "note title")
	cmd.Flags().StringVar(&req.Content, "content", "", "note body text")
	cmd.Flags().StringVar(&req.Color, "color", "", "background color, the type default when empty")
	cmd.Flags().StringVar(&data, "data", "", "type-specific payload as JSON")
	cmd.Flags().StringArrayVar(&items, "item", nil, "checklist item, repeatable")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "standard note tag, repeatable")
	return cmd
}

// noteSpecificData builds the variant payload from --data or the shorthand
// --item and --tag flags. The flags cannot be combined.
func noteSpecificData(data string, items, tags []string) (json.RawMessage, error) {
	set := 0
	for _, present := range []bool{data != "", len(items) > 0, len(tags) > 0} {
		if present {
			set++
		}
	}
	if set > 1 {
		return nil, fmt.Errorf("%w: use only one of --data, --item and --tag", entities.ErrInvalidInput)
	}

	switch {
	case data != "":
		if !json.Valid([]byte(data)) {
			return nil, fmt.Errorf("%w: --data is not valid JSON", entities.ErrInvalidInput)
		}
		return json.RawMessage(data), nil
	case len(items) > 0:
		body := entities.ChecklistBody{Items: make([]entities.ChecklistItem, len(items))}
		for i, text := range items {
			body.Items[i] = entities.ChecklistItem{Text: text}
		}
		return json.Marshal(body)
	case len(tags) > 0:
		return json.Marshal(entities.StandardBody{Tags: tags})
	}
	return nil, nil
}

func newNoteListCommand(opts *Options) *cobra.Command {
	var q ports.NoteQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				notes, err := a.notes.QueryNotes(ctx, q)
				if err != nil {
					return err
				}
				return printNotes(cmd.OutOrStdout(), notes)
			})
		},
	}

	cmd.Flags().StringVarP(&q.Type, "type", "t", "", "only this note type")
	cmd.Flags().StringVarP(&q.Text, "query", "q", "", "substring of title, content or payload")
	cmd.Flags().StringVar(&q.Sort, "sort", "", "created, updated, title or type")
	return cmd
}

func newNoteShowCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note card as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				note, err := a.notes.GetNoteByID(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), presentation.NewNoteCard(*note))
			})
		},
	}
}

func newNoteRemoveCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.notes.DeleteNote(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted note %s\n", args[0])
				return nil
			})
		},
	}
}

func newNoteCheckCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "check <id> <index>",
		Short: "Toggle a checklist item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := itemIndex(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if _, err := a.notes.ToggleChecklistItem(ctx, args[0], index); err != nil {
					return err
				}
				return printProgress(ctx, cmd.OutOrStdout(), a, args[0])
			})
		},
	}
}

func newNoteItemCommand(opts *Options) *cobra.Command {
	itemCmd := &cobra.Command{
		Use:   "item",
		Short: "Add or remove checklist items",
	}

	itemCmd.AddCommand(&cobra.Command{
		Use:   "add <id> <text>",
		Short: "Append an item to a checklist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if _, err := a.notes.AddChecklistItem(ctx, args[0], args[1]); err != nil {
					return err
				}
				return printProgress(ctx, cmd.OutOrStdout(), a, args[0])
			})
		},
	})

	itemCmd.AddCommand(&cobra.Command{
		Use:   "rm <id> <index>",
		Short: "Remove a checklist item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := itemIndex(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if _, err := a.notes.RemoveChecklistItem(ctx, args[0], index); err != nil {
					return err
				}
				return printProgress(ctx, cmd.OutOrStdout(), a, args[0])
			})
		},
	})

	return itemCmd
}

func newNoteTagCommand(opts *Options, add bool) *cobra.Command {
	use, short := "tag <id> <tag>", "Add a tag to a standard note"
	if !add {
		use, short = "untag <id> <tag>", "Remove a tag from a standard note"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				var (
					note *entities.Note
					err  error
				)
				if add {
					note, err = a.notes.AddTagToNote(ctx, args[0], args[1])
				} else {
					note, err = a.notes.RemoveTagFromNote(ctx, args[0], args[1])
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Tags: %v\n", note.Tags())
				return nil
			})
		},
	}
}

func itemIndex(s string) (int, error) {
	index, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: item index %q", entities.ErrInvalidInput, s)
	}
	return index, nil
}

func printProgress(ctx context.Context, out io.Writer, a *app, id string) error {
	progress, err := a.notes.GetChecklistProgress(ctx, id)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%d/%d done (%d%%)\n", progress.Completed, progress.Total, progress.Percentage)
	return err
}

func printNotes(out io.Writer, notes []entities.Note) error {
	if len(notes) == 0 {
		_, err := fmt.Fprintln(out, "No notes")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSIZE\tUPDATED\tTITLE")
	for i := range notes {
		n := &notes[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			n.ID, n.Type, n.ContentSize(), n.UpdatedAt.Format("2006-01-02 15:04"), n.Title)
	}
	return tw.Flush()
}
