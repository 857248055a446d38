// Package cmd implements the redseed command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conceptforge/redseed/internal/config"
	"github.com/conceptforge/redseed/internal/style"
)

// Version is set at build time with -ldflags "-X ...cmd.Version=...".
var Version = "dev"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile  string
	url         string
	apiKey      string
	conceptFile string
	timeout     time.Duration
	noColor     bool
	dryRun      bool
	report      string
}

// NewRootCmd builds the redseed command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "redseed",
		Short: "Seed Redmine categories, sub-projects and tickets from a concept file",
		Long: `redseed reads a concept document with headings of the form

  ### 1. Name (Level 7)

and creates one Redmine issue category, sub-project or ticket per heading.
Running it twice creates everything twice.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			style.Init(opts.noColor)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "config file (default ./"+config.DefaultFile+" if present)")
	pf.StringVar(&opts.url, "url", "", "Redmine URL")
	pf.StringVar(&opts.apiKey, "api-key", "", "Redmine API key")
	pf.StringVar(&opts.conceptFile, "concept-file", "", "path to the concept file")
	pf.DurationVar(&opts.timeout, "timeout", 0, "HTTP timeout per request (0 = no timeout)")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	pf.BoolVar(&opts.dryRun, "dry-run", false, "parse and show what would be created without contacting Redmine")
	pf.StringVar(&opts.report, "report", "", "write a JSON run report to this path")

	root.AddCommand(
		newCategoriesCmd(opts),
		newSubprojectsCmd(opts),
		newTicketsCmd(opts),
		newPreviewCmd(opts),
		newCheckCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", style.Error.Render("Error:"), err)
		return 1
	}
	return 0
}

// loadConfig reads the config file and environment, then applies any flag
// the user set explicitly.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.Redmine.URL = o.url
	}
	if flags.Changed("api-key") {
		cfg.Redmine.APIKey = o.apiKey
	}
	if flags.Changed("concept-file") {
		cfg.Concept.File = o.conceptFile
	}
	if flags.Changed("timeout") {
		cfg.Redmine.Timeout = o.timeout.String()
	}
	return cfg, nil
}

// setting pairs a flag name with its resolved value for required checks.
type setting struct {
	flag  string
	value string
}

// requireSettings fails with the flag names of every empty setting.
func requireSettings(settings ...setting) error {
	var missing []string
	for _, s := range settings {
		if strings.TrimSpace(s.value) == "" {
			missing = append(missing, `"`+s.flag+`"`)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required flag(s) %s not set", strings.Join(missing, ", "))
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the redseed version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "redseed %s\n", Version)
		},
	}
}
