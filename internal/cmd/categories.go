package cmd

import (
	"github.com/spf13/cobra"

	"github.com/conceptforge/redseed/internal/redmine"
	"github.com/conceptforge/redseed/internal/runner"
)

func newCategoriesCmd(opts *rootOptions) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Create one issue category per concept heading",
		Long: `Create an issue category in --project for every "### <n>. <Name>" heading.
Level annotations are accepted but ignored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("project") {
				cfg.Project.Identifier = project
			}

			required := append(connectionSettings(opts, cfg),
				setting{"project", cfg.Project.Identifier},
				setting{"concept-file", cfg.Concept.File},
			)
			if err := requireSettings(required...); err != nil {
				return err
			}

			return runSeed(cmd, opts, cfg, runner.Config{
				Kind:        runner.KindCategories,
				Target:      redmine.ProjectRef(cfg.Project.Identifier),
				ConceptFile: cfg.Concept.File,
			})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "identifier of the project that receives the categories")
	return cmd
}
