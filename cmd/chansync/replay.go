package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/chansync/core"
	"pkt.systems/chansync/internal/ingest"
	"pkt.systems/chansync/schema"
	"pkt.systems/pslog"
)

const replayWindow schema.WindowName = "replay"

type replayOptions struct {
	channel  string
	width    int
	capacity int
	search   string
}

func newReplayCmd() *cobra.Command {
	opts := replayOptions{}
	cmd := &cobra.Command{
		Use:   "replay [file|-]",
		Short: "Feed a file through a channel log and print the wrapped rows",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				r = f
			}
			rows, status, err := replayRows(cmd.Context(), r, opts)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, row := range rows {
				if _, err := fmt.Fprintln(w, row.Text()); err != nil {
					return err
				}
			}
			if status.Active {
				pslog.Ctx(cmd.Context()).Info("replay search", "pattern", status.Pattern, "matches", status.TotalMatches)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.channel, "channel", "main", "channel the lines are appended to")
	cmd.Flags().IntVar(&opts.width, "width", schema.DefaultWrapWidth, "wrap width in columns (0 disables wrapping)")
	cmd.Flags().IntVar(&opts.capacity, "capacity", schema.DefaultChannelCapacity, "lines the channel retains")
	cmd.Flags().StringVar(&opts.search, "search", "", "report how many rows match this pattern")
	return cmd
}

// replayRows appends every line of r to a fresh core and returns the rows of
// its only window.
func replayRows(ctx context.Context, r io.Reader, opts replayOptions) ([]schema.Row, schema.SearchStatus, error) {
	channel, err := schema.NormalizeChannelID(opts.channel)
	if err != nil {
		return nil, schema.SearchStatus{}, fmt.Errorf("channel %q: %w", opts.channel, err)
	}
	log := pslog.Ctx(ctx)
	c, err := core.New(schema.CoreConfig{
		DefaultCapacity: opts.capacity,
		Windows:         []schema.WindowConfig{{Name: replayWindow, Kind: schema.WindowText, Channel: channel}},
	}, core.Deps{Logger: log})
	if err != nil {
		return nil, schema.SearchStatus{}, err
	}
	if err := c.ResizeWindow(replayWindow, opts.width, 0); err != nil {
		return nil, schema.SearchStatus{}, err
	}

	pump := ingest.New(log)
	if err := pump.ReadFrom(ctx, channel, r); err != nil {
		return nil, schema.SearchStatus{}, err
	}
	go pump.Finish()
	for batch := range pump.Batches() {
		for _, line := range batch.Lines {
			c.Append(batch.Channel, line)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, schema.SearchStatus{}, err
	}

	dest, err := c.WindowDestination(replayWindow)
	if err != nil {
		return nil, schema.SearchStatus{}, err
	}
	view, err := c.SyncAndGetRows(dest)
	if err != nil {
		return nil, schema.SearchStatus{}, err
	}
	if err := c.SetViewportHeight(dest, view.TotalRows); err != nil {
		return nil, schema.SearchStatus{}, err
	}
	var status schema.SearchStatus
	if opts.search != "" {
		if status, err = c.Search(dest, opts.search); err != nil {
			return nil, schema.SearchStatus{}, err
		}
	}
	view, err = c.SyncAndGetRows(dest)
	if err != nil {
		return nil, schema.SearchStatus{}, err
	}
	return view.Rows, status, nil
}
