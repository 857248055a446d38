// Package runner seeds Redmine from a concept file: it checks the target
// project, parses the file, and creates one entity per section.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/conceptforge/redseed/internal/concept"
	"github.com/conceptforge/redseed/internal/payload"
	"github.com/conceptforge/redseed/internal/redmine"
	"github.com/conceptforge/redseed/internal/runlock"
	"github.com/conceptforge/redseed/internal/style"
)

// Kind selects what a run creates.
type Kind string

const (
	KindCategories  Kind = "categories"
	KindSubprojects Kind = "subprojects"
	KindTickets     Kind = "tickets"
)

// noun returns the singular name used in output.
func (k Kind) noun() string {
	switch k {
	case KindCategories:
		return "category"
	case KindSubprojects:
		return "sub-project"
	case KindTickets:
		return "ticket"
	default:
		return string(k)
	}
}

// Abort conditions. Run returns an error wrapping one of these; per-item
// failures never abort.
var (
	ErrConnectivity = errors.New("cannot connect to Redmine; check URL and API key")
	ErrSourceRead   = errors.New("cannot read concept file")
	ErrNoSections   = errors.New("no sections found in concept file")
	ErrLocked       = errors.New("concept file is being seeded by another run")
)

// Redmine is the part of the Redmine client a run uses.
type Redmine interface {
	Probe(ctx context.Context, ref redmine.ProjectRef) (*redmine.Project, error)
	CreateCategory(ctx context.Context, project redmine.ProjectRef, req redmine.CategoryRequest) (*redmine.Category, error)
	CreateProject(ctx context.Context, req redmine.SubprojectRequest) (*redmine.Project, error)
	CreateIssue(ctx context.Context, req redmine.TicketRequest) (*redmine.Issue, error)
}

// Config describes a single run.
type Config struct {
	Kind Kind

	// Target is the project that is probed: the category owner, the parent
	// of new sub-projects, or the project that receives tickets.
	Target redmine.ProjectRef

	ConceptFile string
	TrackerID   int
	StatusID    int

	// DryRun parses and builds payloads without contacting Redmine.
	DryRun bool

	// LockDir holds the run lock file. Empty means the system temp dir.
	LockDir string

	Out io.Writer
}

// Runner executes a Config against a Redmine client.
type Runner struct {
	cfg    Config
	client Redmine
	now    func() time.Time
}

// New creates a Runner. client may be nil for dry runs.
func New(cfg Config, client Redmine) *Runner {
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	return &Runner{cfg: cfg, client: client, now: time.Now}
}

// Run performs the run and returns its report. The returned error is set
// only for abort conditions; the report is returned either way.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := newReport(r.cfg, r.now())
	defer func() { report.FinishedAt = r.now() }()

	switch r.cfg.Kind {
	case KindCategories, KindSubprojects, KindTickets:
	default:
		return report, fmt.Errorf("unknown run kind %q", r.cfg.Kind)
	}
	if !r.cfg.DryRun && r.client == nil {
		return report, fmt.Errorf("%w: no client configured", ErrConnectivity)
	}

	lock, err := runlock.Acquire(r.cfg.LockDir, r.cfg.ConceptFile)
	if err != nil {
		if errors.Is(err, runlock.ErrHeld) {
			return report, fmt.Errorf("%w: %s", ErrLocked, r.cfg.ConceptFile)
		}
		return report, err
	}
	defer func() { _ = lock.Release() }()

	var target *redmine.Project
	if !r.cfg.DryRun {
		target, err = r.client.Probe(ctx, r.cfg.Target)
		if err != nil {
			return report, fmt.Errorf("%w: %v", ErrConnectivity, err)
		}
	}

	doc, err := concept.ReadFile(r.cfg.ConceptFile)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrSourceRead, err)
	}

	sections, skipped := r.selectSections(doc)
	for _, d := range skipped {
		fmt.Fprintf(r.cfg.Out, "%s line %d: skipping %q: %s\n",
			style.Warning.Render("⚠"), d.Line, d.Text, d.Reason)
		report.Items = append(report.Items, Skipped(d.Text, d.Line, d.Reason))
	}

	if len(sections) == 0 {
		return report, fmt.Errorf("%w: %s", ErrNoSections, r.cfg.ConceptFile)
	}

	r.printFound(sections)

	verb := "Creating"
	if r.cfg.DryRun {
		verb = style.Bold.Render("DRY-RUN") + " Would create"
	}
	fmt.Fprintf(r.cfg.Out, "\n%s %s %d %s(s)...\n", style.Bold.Render("📋"), verb, len(sections), r.cfg.Kind.noun())

	create := r.creator(target)
	for _, s := range sections {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		result := create(ctx, s)
		report.Items = append(report.Items, result)
		r.printResult(result)
	}

	r.printSummary(report, len(sections))
	return report, nil
}

// selectSections returns the sections this kind can use plus diagnostics for
// every heading that was dropped. Categories do not need a level.
func (r *Runner) selectSections(doc *concept.Document) ([]concept.Section, []concept.Diagnostic) {
	skipped := append([]concept.Diagnostic(nil), doc.Diagnostics...)
	if r.cfg.Kind == KindCategories {
		return doc.Sections, skipped
	}
	sections, missing := doc.Leveled()
	return sections, append(skipped, missing...)
}

type createFunc func(ctx context.Context, s concept.Section) ItemResult

func (r *Runner) creator(target *redmine.Project) createFunc {
	switch r.cfg.Kind {
	case KindCategories:
		return r.createCategory
	case KindSubprojects:
		parent := r.cfg.Target
		parentIdentifier := r.cfg.Target.String()
		if target != nil {
			if target.ID != 0 {
				parent = redmine.ProjectID(target.ID)
			}
			if target.Identifier != "" {
				parentIdentifier = target.Identifier
			}
		}
		return func(ctx context.Context, s concept.Section) ItemResult {
			return r.createSubproject(ctx, s, parent, parentIdentifier)
		}
	default:
		return r.createTicket
	}
}

func (r *Runner) createCategory(ctx context.Context, s concept.Section) ItemResult {
	req := payload.ToCategory(s)
	if r.cfg.DryRun {
		return ItemResult{Name: req.Name, Line: s.Line, Status: StatusPlanned}
	}
	category, err := r.client.CreateCategory(ctx, r.cfg.Target, req)
	if err != nil {
		return Failed(req.Name, s.Line, err)
	}
	return Created(category.Name, s.Line, category.ID)
}

func (r *Runner) createSubproject(ctx context.Context, s concept.Section, parent redmine.ProjectRef, parentIdentifier string) ItemResult {
	req, err := payload.ToSubproject(s, parent, parentIdentifier)
	if err != nil {
		return Skipped(s.Name, s.Line, err.Error())
	}
	if r.cfg.DryRun {
		return ItemResult{Name: req.Name + " [" + req.Identifier + "]", Line: s.Line, Status: StatusPlanned}
	}
	project, err := r.client.CreateProject(ctx, req)
	if err != nil {
		return Failed(req.Name, s.Line, err)
	}
	return Created(project.Name, s.Line, project.ID)
}

func (r *Runner) createTicket(ctx context.Context, s concept.Section) ItemResult {
	req, err := payload.ToTicket(s, payload.TicketOptions{
		ProjectID: r.cfg.Target,
		TrackerID: r.cfg.TrackerID,
		StatusID:  r.cfg.StatusID,
	})
	if err != nil {
		return Skipped(s.Title(), s.Line, err.Error())
	}
	if r.cfg.DryRun {
		name := fmt.Sprintf("%s [priority %s]", req.Subject, payload.Priority(req.PriorityID))
		return ItemResult{Name: name, Line: s.Line, Status: StatusPlanned}
	}
	issue, err := r.client.CreateIssue(ctx, req)
	if err != nil {
		return Failed(req.Subject, s.Line, err)
	}
	return Created(req.Subject, s.Line, issue.ID)
}

func (r *Runner) printFound(sections []concept.Section) {
	fmt.Fprintf(r.cfg.Out, "%s Found %d section(s):\n", style.Bold.Render("🔍"), len(sections))
	for i, s := range sections {
		if s.HasLevel && r.cfg.Kind != KindCategories {
			fmt.Fprintf(r.cfg.Out, "  %d. %s %s\n", i+1, s.Name, style.Dim.Render(fmt.Sprintf("(Level %d)", s.Level)))
			continue
		}
		fmt.Fprintf(r.cfg.Out, "  %d. %s\n", i+1, s.Name)
	}
}

func (r *Runner) printResult(result ItemResult) {
	noun := r.cfg.Kind.noun()
	switch result.Status {
	case StatusCreated:
		fmt.Fprintf(r.cfg.Out, "  %s Created %s %s %s\n",
			style.Success.Render("✓"), noun, result.Name, style.Dim.Render(fmt.Sprintf("(id %d)", result.RemoteID)))
	case StatusFailed:
		fmt.Fprintf(r.cfg.Out, "  %s Failed to create %s %q: %s\n",
			style.Error.Render("✗"), noun, result.Name, result.Error)
	case StatusSkipped:
		fmt.Fprintf(r.cfg.Out, "  %s Skipped %q: %s\n", style.Warning.Render("○"), result.Name, result.Error)
	case StatusPlanned:
		fmt.Fprintf(r.cfg.Out, "  %s %s\n", style.Dim.Render("○"), result.Name)
	}
}

func (r *Runner) printSummary(report *Report, attempted int) {
	if r.cfg.DryRun {
		fmt.Fprintf(r.cfg.Out, "\n%s Would create %d %s(s)\n",
			style.Bold.Render("📊"), report.Count(StatusPlanned), r.cfg.Kind.noun())
		return
	}
	fmt.Fprintf(r.cfg.Out, "\n%s Created %d/%d %s(s)\n",
		style.Bold.Render("📊"), report.Count(StatusCreated), attempted, r.cfg.Kind.noun())
	failed, skipped := report.Count(StatusFailed), report.Count(StatusSkipped)
	if failed > 0 || skipped > 0 {
		fmt.Fprintf(r.cfg.Out, "  %d failed, %d skipped\n", failed, skipped)
	}
}
