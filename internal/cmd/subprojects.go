package cmd

import (
	"github.com/spf13/cobra"

	"github.com/conceptforge/redseed/internal/redmine"
	"github.com/conceptforge/redseed/internal/runner"
)

func newSubprojectsCmd(opts *rootOptions) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "subprojects",
		Short: "Create one sub-project per leveled concept heading",
		Long: `Create a private sub-project of --parent for every "### <n>. <Name> (Level N)"
heading. Identifiers are "<parent>-<slug>", capped at 100 characters.
Headings without a level are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("parent") {
				cfg.Project.Parent = parent
			}

			required := append(connectionSettings(opts, cfg),
				setting{"parent", cfg.GetParent()},
				setting{"concept-file", cfg.Concept.File},
			)
			if err := requireSettings(required...); err != nil {
				return err
			}

			return runSeed(cmd, opts, cfg, runner.Config{
				Kind:        runner.KindSubprojects,
				Target:      redmine.ProjectRef(cfg.GetParent()),
				ConceptFile: cfg.Concept.File,
			})
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "identifier of the parent project")
	return cmd
}
