package commands

import (
	"github.com/BurntSushi/toml"
	"github.com/Swind/go-thread/config"
	"github.com/Swind/go-thread/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage threadprio configuration",
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFileName
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			pterm.Success.Printf("Wrote %s\n", path)
			return nil
		},
	}

	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch format {
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(a.cfg); err != nil {
					return errors.Wrap(err, "failed to encode config")
				}
				return enc.Close()
			case "toml":
				if err := toml.NewEncoder(out).Encode(a.cfg); err != nil {
					return errors.Wrap(err, "failed to encode config")
				}
				return nil
			default:
				return errors.WithHint(errors.Newf("unknown format %q", format), "use yaml or toml")
			}
		},
	}
	showCmd.Flags().StringVar(&format, "format", "yaml", "output format (yaml, toml)")

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
