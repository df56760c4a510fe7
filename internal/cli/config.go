package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdnote/internal/configloader"
)

func newConfigCommand(global *globalFlags) *cobra.Command {
	var env bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration mdnote would use in the current directory, after
merging defaults, config files and MDNOTE_* environment variables. With
--env, list the environment variables instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			styles := newStyles(cmd, global)

			if env {
				for _, v := range configloader.ListEnvVars() {
					if _, err := fmt.Fprintf(out, "%-34s %s\n", styles.Flag.Render(v.Name),
						styles.Dim.Render(v.Description)); err != nil {
						return err
					}
				}
				return nil
			}

			loaded, err := loadConfig(cmd, global, nil)
			if err != nil {
				return err
			}

			header := "# defaults only"
			if len(loaded.LoadedFrom) > 0 {
				header = "# loaded from:\n#   " + strings.Join(loaded.LoadedFrom, "\n#   ")
			}
			data, err := loaded.Config.ToYAMLWithHeader(header)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = out.Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&env, "env", false, "list supported environment variables")

	return cmd
}
