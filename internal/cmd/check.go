package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conceptforge/redseed/internal/redmine"
	"github.com/conceptforge/redseed/internal/runner"
	"github.com/conceptforge/redseed/internal/style"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that Redmine and the target project are reachable",
		Long: `Read --project with the configured URL and API key and report whether it
answered. Nothing is created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("project") {
				cfg.Project.Identifier = project
			}
			if err := requireSettings(
				setting{"url", cfg.Redmine.URL},
				setting{"api-key", cfg.Redmine.APIKey},
				setting{"project", cfg.Project.Identifier},
			); err != nil {
				return err
			}

			ref := redmine.ProjectRef(cfg.Project.Identifier)
			client := redmine.NewClient(cfg.Redmine.URL, cfg.Redmine.APIKey, redmine.WithTimeout(cfg.GetTimeout()))
			if !client.CheckConnectivity(cmd.Context(), ref) {
				return fmt.Errorf("%w: %s (%s)", runner.ErrConnectivity, ref, client.BaseURL())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s reachable at %s\n",
				style.Success.Render("✓"), ref, style.Dim.Render(client.BaseURL()))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "identifier or id of the project to read")
	return cmd
}
