package daemon

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/berrythewa/clipstash/internal/history"
	"github.com/berrythewa/clipstash/internal/ipc"
	"github.com/berrythewa/clipstash/internal/types"
)

// Handle answers one IPC request.
func (d *Daemon) Handle(_ context.Context, req *ipc.Request) *ipc.Response {
	switch req.Command {
	case ipc.CmdStatus:
		return ipc.OK("", d.Status())

	case ipc.CmdHistoryList, ipc.CmdHistorySearch:
		var args ipc.ListArgs
		if err := req.DecodeArgs(&args); err != nil {
			return ipc.Error(err)
		}
		entries, err := d.list(args)
		if err != nil {
			return ipc.Error(err)
		}
		return ipc.OK("", entries)

	case ipc.CmdHistoryPin:
		var args ipc.IDArgs
		if err := req.DecodeArgs(&args); err != nil {
			return ipc.Error(err)
		}
		pinned, err := d.store.TogglePin(args.ID)
		if err != nil {
			return ipc.Error(wrapID(err, args.ID))
		}
		return ipc.OK("", ipc.PinResult{ID: args.ID, Pinned: pinned})

	case ipc.CmdHistoryDelete:
		var args ipc.IDArgs
		if err := req.DecodeArgs(&args); err != nil {
			return ipc.Error(err)
		}
		if _, ok := d.store.Get(args.ID); !ok {
			return ipc.Error(wrapID(history.ErrNotFound, args.ID))
		}
		d.store.Delete(args.ID)
		return ipc.OK("Entry deleted", nil)

	case ipc.CmdHistoryClear:
		d.store.Clear()
		return ipc.OK("History cleared", nil)

	case ipc.CmdHistoryCopy:
		var args ipc.IDArgs
		if err := req.DecodeArgs(&args); err != nil {
			return ipc.Error(err)
		}
		entry, err := d.Recopy(args.ID)
		if err != nil {
			return ipc.Error(wrapID(err, args.ID))
		}
		return ipc.OK("Copied to clipboard", entry)

	case ipc.CmdHistoryStats:
		return ipc.OK("", d.store.Stats())

	case ipc.CmdExport:
		data, err := d.store.ExportSnapshot()
		if err != nil {
			return ipc.Error(err)
		}
		return ipc.OK("", data)

	case ipc.CmdImport:
		var args ipc.ImportArgs
		if err := req.DecodeArgs(&args); err != nil {
			return ipc.Error(err)
		}
		n, err := d.store.ImportSnapshot(args.Data)
		if err != nil {
			return ipc.Error(err)
		}
		return ipc.OK(fmt.Sprintf("Imported %d entries", n), ipc.ImportResult{Imported: n})

	case ipc.CmdFlush:
		if err := d.Flush(); err != nil {
			return ipc.Error(err)
		}
		return ipc.OK("History flushed", nil)

	case ipc.CmdConfigReload:
		if err := d.Reload(); err != nil {
			d.logger.Warn("Config reload failed", zap.Error(err))
			return ipc.Error(err)
		}
		return ipc.OK("Configuration reloaded", nil)
	}

	return ipc.Error(fmt.Errorf("unknown command %q", req.Command))
}

func (d *Daemon) list(args ipc.ListArgs) ([]types.ClipboardEntry, error) {
	category, err := types.ParseCategory(args.Category)
	if err != nil {
		return nil, err
	}
	opts := history.FilterOptions{
		Collection: history.CollectionItems,
		Category:   category,
		Query:      args.Query,
		Fuzzy:      args.Fuzzy,
	}
	if args.Pinned {
		opts.Collection = history.CollectionPinned
	}
	entries := d.store.Filter(opts)
	if args.Limit > 0 && len(entries) > args.Limit {
		entries = entries[:args.Limit]
	}
	return entries, nil
}

func wrapID(err error, id string) error {
	if errors.Is(err, history.ErrNotFound) {
		return fmt.Errorf("%w: %s", err, id)
	}
	return err
}
