package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/berrythewa/clipstash/internal/history"
	"github.com/berrythewa/clipstash/internal/ipc"
	"github.com/berrythewa/clipstash/internal/types"
	"github.com/berrythewa/clipstash/pkg/format"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"h"},
		Short:   "Manage clipboard history",
		Long: `Manage clipboard history:
  • List and search entries
  • Pin, delete and re-copy entries
  • Show history statistics

Entries can be addressed by id or by their position in 'history list'.`,
	}
	cmd.AddCommand(
		newHistoryListCmd(a),
		newHistorySearchCmd(a),
		newHistoryPinCmd(a),
		newHistoryDeleteCmd(a),
		newHistoryClearCmd(a),
		newHistoryCopyCmd(a),
		newHistoryStatsCmd(a),
	)
	return cmd
}

// listFlags are shared by list and search
type listFlags struct {
	limit    int
	category string
	pinned   bool
	compact  bool
	reveal   bool
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 10, "maximum number of entries to show (0 = all)")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "filter by category (text, code, url, image)")
	cmd.Flags().BoolVarP(&f.pinned, "pinned", "p", false, "show pinned entries instead of the history")
	cmd.Flags().BoolVar(&f.compact, "compact", false, "use compact single-line format")
	cmd.Flags().BoolVar(&f.reveal, "reveal", false, "show sensitive entries in clear")
}

func newHistoryListCmd(a *app) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clipboard history",
		Long: `List clipboard history entries, newest first.

Examples:
  clipstash history list                 # Show last 10 entries
  clipstash history list -n 0            # Show every entry
  clipstash history list --category code # Show only code snippets
  clipstash history list --pinned        # Show pinned entries`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listEntries(cmd, ipc.CmdHistoryList, ipc.ListArgs{}, f)
		},
	}
	f.register(cmd)
	return cmd
}

func newHistorySearchCmd(a *app) *cobra.Command {
	var (
		f     listFlags
		fuzzy bool
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search clipboard history",
		Long: `Search text and URL entries. Matching is a case-insensitive substring
match, or an in-order character match with --fuzzy.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listEntries(cmd, ipc.CmdHistorySearch, ipc.ListArgs{Query: args[0], Fuzzy: fuzzy}, f)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVarP(&fuzzy, "fuzzy", "f", false, "fuzzy match the query")
	return cmd
}

func (a *app) listEntries(cmd *cobra.Command, command string, args ipc.ListArgs, f listFlags) error {
	args.Category = f.category
	args.Pinned = f.pinned
	args.Limit = f.limit

	var entries []types.ClipboardEntry
	if _, err := a.send(cmd.Context(), command, args, &entries); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if a.useJSON {
		return writeJSON(out, entries)
	}

	opts := a.formatOptions(out)
	if f.compact {
		opts.Compact = true
		opts.ShowMetadata = false
	}
	opts.RevealSensitive = f.reveal

	title := "Clipboard History"
	pinned := map[string]bool{}
	if f.pinned {
		title = "Pinned Entries"
	} else if ids, err := a.pinnedIDs(cmd.Context()); err == nil {
		pinned = ids
	}
	fmt.Fprintln(out, format.New(opts).FormatEntryList(title, entries, pinned))
	return nil
}

func (a *app) pinnedIDs(ctx context.Context) (map[string]bool, error) {
	var pinned []types.ClipboardEntry
	if _, err := a.send(ctx, ipc.CmdHistoryList, ipc.ListArgs{Pinned: true}, &pinned); err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(pinned))
	for _, e := range pinned {
		ids[e.ID] = true
	}
	return ids, nil
}

// resolveID maps a list position to an entry id. Anything that is not a
// small positive number is taken as an id.
func (a *app) resolveID(ctx context.Context, ref string, pinned bool) (string, error) {
	pos, err := strconv.Atoi(ref)
	if err != nil || pos <= 0 || pos > 1000 {
		return ref, nil
	}
	var entries []types.ClipboardEntry
	if _, err := a.send(ctx, ipc.CmdHistoryList, ipc.ListArgs{Pinned: pinned}, &entries); err != nil {
		return "", err
	}
	if pos > len(entries) {
		return "", fmt.Errorf("no entry at position %d (history has %d)", pos, len(entries))
	}
	return entries[pos-1].ID, nil
}

// idCommand builds a command that acts on one entry
func idCommand(a *app, use, short, command string, report func(cmd *cobra.Command, resp *ipc.Response) error) *cobra.Command {
	var pinned bool
	cmd := &cobra.Command{
		Use:   use + " <id|position>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolveID(cmd.Context(), args[0], pinned)
			if err != nil {
				return err
			}
			resp, err := a.send(cmd.Context(), command, ipc.IDArgs{ID: id}, nil)
			if err != nil {
				return err
			}
			if a.useJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			return report(cmd, resp)
		},
	}
	cmd.Flags().BoolVarP(&pinned, "pinned", "p", false, "positions refer to the pinned list")
	return cmd
}

func newHistoryPinCmd(a *app) *cobra.Command {
	return idCommand(a, "pin", "Pin or unpin an entry", ipc.CmdHistoryPin, func(cmd *cobra.Command, resp *ipc.Response) error {
		var res ipc.PinResult
		if err := resp.DecodeData(&res); err != nil {
			return err
		}
		state := "unpinned"
		if res.Pinned {
			state = "pinned"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Entry %s %s\n", res.ID, state)
		return nil
	})
}

func newHistoryDeleteCmd(a *app) *cobra.Command {
	return idCommand(a, "delete", "Delete an entry", ipc.CmdHistoryDelete, printMessage)
}

func newHistoryCopyCmd(a *app) *cobra.Command {
	return idCommand(a, "copy", "Copy an entry back to the clipboard", ipc.CmdHistoryCopy, printMessage)
}

func printMessage(cmd *cobra.Command, resp *ipc.Response) error {
	fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
	return nil
}

func newHistoryClearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every entry, pinned ones included",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear history without --yes")
			}
			resp, err := a.send(cmd.Context(), ipc.CmdHistoryClear, nil, nil)
			if err != nil {
				return err
			}
			return printMessage(cmd, resp)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm clearing the history")
	return cmd
}

func newHistoryStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show history statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			var st history.Stats
			if _, err := a.send(cmd.Context(), ipc.CmdHistoryStats, nil, &st); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.useJSON {
				return writeJSON(out, st)
			}
			fmt.Fprintln(out, format.FormatStats(st, a.formatOptions(out)))
			return nil
		},
	}
}
