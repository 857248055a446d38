package cmd

import (
	"github.com/spf13/cobra"

	"github.com/conceptforge/redseed/internal/payload"
	"github.com/conceptforge/redseed/internal/redmine"
	"github.com/conceptforge/redseed/internal/runner"
)

func newTicketsCmd(opts *rootOptions) *cobra.Command {
	var (
		projectID string
		trackerID int
		statusID  int
	)

	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "Create one issue per leveled concept heading",
		Long: `Create an issue in --project-id for every "### <n>. <Name> (Level N)" heading.

The subject is the heading text before the first "(". The description lists
the lines under the heading. Priority follows the level:

  >= 18  Sofort       (5)
  >= 15  Hoch         (4)
  >= 12  Normal       (3)
  >=  9  Niedrig      (2)
  else   Sehr niedrig (1)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("project-id") {
				cfg.Tickets.ProjectID = projectID
			}
			if flags.Changed("tracker-id") {
				cfg.Tickets.TrackerID = &trackerID
			}
			if flags.Changed("status-id") {
				cfg.Tickets.StatusID = &statusID
			}

			required := append(connectionSettings(opts, cfg),
				setting{"project-id", cfg.GetTicketProject()},
				setting{"concept-file", cfg.Concept.File},
			)
			if err := requireSettings(required...); err != nil {
				return err
			}

			return runSeed(cmd, opts, cfg, runner.Config{
				Kind:        runner.KindTickets,
				Target:      redmine.ProjectRef(cfg.GetTicketProject()),
				ConceptFile: cfg.Concept.File,
				TrackerID:   cfg.GetTrackerID(),
				StatusID:    cfg.GetStatusID(),
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&projectID, "project-id", "", "Redmine project id or identifier")
	flags.IntVar(&trackerID, "tracker-id", payload.DefaultTrackerID, "tracker id for new issues")
	flags.IntVar(&statusID, "status-id", payload.DefaultStatusID, "status id for new issues")
	return cmd
}
