package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/abelbrown/lemure/internal/backend"
)

func newOrdersCommand(gf *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Manage saved channel orders",
	}
	cmd.AddCommand(newListCommand(gf, "saved channel orders", (*backend.Client).Orders))
	return cmd
}

func newPresetsCommand(gf *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage saved presets",
	}
	cmd.AddCommand(newListCommand(gf, "saved presets", (*backend.Client).Presets))
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a saved preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*gf)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			if err := newClient(cfg).DeletePreset(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
			return nil
		},
	})
	return cmd
}

type listFunc func(*backend.Client, context.Context) ([]backend.Entry, error)

func newListCommand(gf *globalFlags, what string, list listFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List " + what,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*gf)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			entries, err := list(newClient(cfg), ctx)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no "+what)
				return nil
			}
			return printEntries(cmd.OutOrStdout(), entries)
		},
	}
}

func printEntries(w io.Writer, entries []backend.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCHANNELS\tSAVED\tKEY")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", truncate(e.Name, 40), humanize.Comma(int64(e.Count)), e.SavedAt, e.Key)
	}
	return tw.Flush()
}
