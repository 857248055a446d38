package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conceptforge/redseed/internal/config"
	"github.com/conceptforge/redseed/internal/redmine"
	"github.com/conceptforge/redseed/internal/runner"
	"github.com/conceptforge/redseed/internal/style"
)

// runSeed executes one seeding run and writes the optional report.
func runSeed(cmd *cobra.Command, opts *rootOptions, cfg *config.Config, rc runner.Config) error {
	out := cmd.OutOrStdout()
	rc.DryRun = opts.dryRun
	rc.Out = out

	var client runner.Redmine
	if !rc.DryRun {
		c := redmine.NewClient(cfg.Redmine.URL, cfg.Redmine.APIKey, redmine.WithTimeout(cfg.GetTimeout()))
		fmt.Fprintf(out, "%s %s %s\n", style.Bold.Render("redseed"), rc.Kind, style.Dim.Render("→ "+c.BaseURL()+" ("+rc.Target.String()+")"))
		client = c
	}

	report, err := runner.New(rc, client).Run(cmd.Context())
	if opts.report != "" && report != nil {
		if werr := report.WriteJSON(opts.report); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

// connectionSettings are required unless the run is a dry run.
func connectionSettings(opts *rootOptions, cfg *config.Config) []setting {
	if opts.dryRun {
		return nil
	}
	return []setting{
		{"url", cfg.Redmine.URL},
		{"api-key", cfg.Redmine.APIKey},
	}
}
