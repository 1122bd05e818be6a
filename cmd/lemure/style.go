package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abelbrown/lemure/internal/backend"
)

func newStyleCommand(gf *globalFlags) *cobra.Command {
	var (
		file  string
		reset bool
	)

	cmd := &cobra.Command{
		Use:   "style",
		Short: "Show or update the template export style",
		Long: `Without flags the current style is printed as YAML. Edit it and pass it
back with --set FILE, or restore the built-in style with --reset. The
server normalizes the colors and returns the style it stored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*gf)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			client := newClient(cfg)

			var s backend.StyleSettings
			switch {
			case reset:
				s, err = client.SaveStyle(ctx, backend.DefaultStyle())
			case file != "":
				data, rerr := os.ReadFile(file)
				if rerr != nil {
					return rerr
				}
				in := backend.DefaultStyle()
				if err := yaml.Unmarshal(data, &in); err != nil {
					return fmt.Errorf("parse %s: %w", file, err)
				}
				s, err = client.SaveStyle(ctx, in.Normalize())
			default:
				s, err = client.Style(ctx)
			}
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(s); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVar(&file, "set", "", "YAML file with the style to store")
	cmd.Flags().BoolVar(&reset, "reset", false, "restore the built-in style")
	cmd.MarkFlagsMutuallyExclusive("set", "reset")
	return cmd
}
