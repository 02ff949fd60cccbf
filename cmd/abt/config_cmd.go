package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/raphi011/abt/internal/config"
	"github.com/raphi011/abt/internal/log"
	"github.com/raphi011/abt/internal/output"
	"github.com/raphi011/abt/internal/ui/prompt"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage abt configuration.

Config file: ~/.config/abt/config.toml (override with --config or ABT_CONFIG)

ABT_ORGANISATION, ABT_PROJECT, ABT_TEAM, ABT_TOKEN and ABT_BASE_URL
override the file. A legacy config.txt in the working directory is read
with the lowest priority.`,
		Example: `  abt config init          # Create default config
  abt config show          # Show effective config
  abt config show -o yaml  # As YAML`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force  bool
		stdout bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		Long: `Create a commented default config file.

The file is written with mode 0600 because it holds the access token.
When the file exists and abt runs in a terminal, you are asked before it
is overwritten.`,
		Example: `  abt config init       # Create ~/.config/abt/config.toml
  abt config init -f    # Overwrite existing config
  abt config init -s    # Print config to stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			if stdout {
				out.Print(config.DefaultConfig())
				return nil
			}

			path := configPath
			if p := os.Getenv(config.EnvConfig); p != "" {
				path = p
			}

			created, err := config.Init(path, force)
			if err != nil && !force && isTerminal(os.Stdin) && errors.Is(err, config.ErrExists) {
				res, perr := prompt.Confirm(fmt.Sprintf("%v. Overwrite?", err))
				if perr != nil {
					return perr
				}
				if !res.Confirmed {
					return nil
				}
				created, err = config.Init(path, true)
			}
			if err != nil {
				return err
			}

			log.FromContext(ctx).Printf("Created config file: %s\n", created)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")
	cmd.Flags().BoolVarP(&stdout, "stdout", "s", false, "Print config to stdout")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var outFormat string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		Long: `Show the effective configuration after merging the config file,
the legacy config.txt and environment variables. The token is redacted.`,
		Example: `  abt config show
  abt config show --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			shown := cfg.Redacted()

			switch outFormat {
			case "toml":
				if shown.Path != "" {
					out.Printf("# %s\n", shown.Path)
				}
				return toml.NewEncoder(out.Writer()).Encode(shown)
			case output.FormatYAML, output.FormatJSON:
				return out.Encode(outFormat, shown)
			default:
				return fmt.Errorf("invalid format %q (valid: toml, yaml, json)", outFormat)
			}
		},
	}

	cmd.Flags().StringVarP(&outFormat, "format", "o", "toml", "Output format: toml, yaml, json")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions([]string{"toml", "yaml", "json"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}
