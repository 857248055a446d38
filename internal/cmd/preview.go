package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/conceptforge/redseed/internal/concept"
	"github.com/conceptforge/redseed/internal/payload"
	"github.com/conceptforge/redseed/internal/style"
)

const defaultWrapWidth = 100

func newPreviewCmd(opts *rootOptions) *cobra.Command {
	var (
		render bool
		parent string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show how redseed reads a concept file",
		Long: `Render the concept file (on a terminal) and list every heading redseed
extracts, with its level, ticket priority and sub-project identifier.
Nothing is sent to Redmine.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("parent") {
				cfg.Project.Parent = parent
			}
			if err := requireSettings(setting{"concept-file", cfg.Concept.File}); err != nil {
				return err
			}

			data, err := os.ReadFile(cfg.Concept.File)
			if err != nil {
				return fmt.Errorf("reading concept file: %w", err)
			}

			out := cmd.OutOrStdout()
			if width, ok := terminalWidth(out); ok && render {
				if err := renderMarkdown(out, string(data), width); err != nil {
					return err
				}
			}

			doc, err := concept.Parse(bytes.NewReader(data))
			if err != nil {
				return err
			}
			printPreview(out, doc, cfg.GetParent())
			return nil
		},
	}

	cmd.Flags().BoolVar(&render, "render", true, "render the document before the listing when writing to a terminal")
	cmd.Flags().StringVar(&parent, "parent", "", "parent identifier used to preview sub-project identifiers")
	return cmd
}

// terminalWidth reports the width of w if it is a terminal.
func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWrapWidth, true
	}
	return width, true
}

func renderMarkdown(w io.Writer, markdown string, width int) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	rendered, err := r.Render(markdown)
	if err != nil {
		return fmt.Errorf("rendering concept file: %w", err)
	}
	_, err = io.WriteString(w, rendered)
	return err
}

func printPreview(w io.Writer, doc *concept.Document, parent string) {
	fmt.Fprintf(w, "%s %d section(s)\n", style.Bold.Render("🔍"), len(doc.Sections))
	for i, s := range doc.Sections {
		if !s.HasLevel {
			fmt.Fprintf(w, "  %d. %s %s\n", i+1, s.Name, style.Dim.Render("(no level: category only)"))
			continue
		}
		priority := payload.PriorityForLevel(s.Level)
		fmt.Fprintf(w, "  %d. %s %s\n", i+1, s.Name,
			style.Dim.Render(fmt.Sprintf("(Level %d → %s/%d)", s.Level, priority, priority)))
		switch {
		case parent == "":
		case payload.Slugify(s.Name) == "":
			fmt.Fprintf(w, "     %s\n", style.Warning.Render(payload.ErrEmptyIdentifier.Error()))
		default:
			fmt.Fprintf(w, "     %s\n", style.Dim.Render(payload.Identifier(parent, s.Name)))
		}
	}

	if len(doc.Diagnostics) > 0 {
		fmt.Fprintf(w, "\n%s %d heading(s) skipped:\n", style.Warning.Render("⚠"), len(doc.Diagnostics))
		for _, d := range doc.Diagnostics {
			fmt.Fprintf(w, "  line %d: %q: %s\n", d.Line, d.Text, d.Reason)
		}
	}
}
