// Package payload maps concept sections to Redmine request bodies.
package payload

import (
	"errors"
	"fmt"
	"strings"

	"github.com/conceptforge/redseed/internal/concept"
	"github.com/conceptforge/redseed/internal/redmine"
)

// ErrMissingLevel is returned when a section needs a level but has none.
var ErrMissingLevel = errors.New("section has no level")

// ErrEmptyIdentifier is returned when a name has no characters that survive
// Slugify, so the sub-project would reuse its parent's identifier.
var ErrEmptyIdentifier = errors.New("name yields an empty identifier")

// boldSubItemPrefix marks indented bold sub-bullets that are left out of
// ticket descriptions.
const boldSubItemPrefix = "  - **"

// Defaults for new issues.
const (
	DefaultTrackerID = 1
	DefaultStatusID  = 1 // Neu
)

// TicketOptions holds the per-run fields of an issue that do not come from
// the concept file.
type TicketOptions struct {
	ProjectID redmine.ProjectRef
	TrackerID int
	StatusID  int
}

// ToCategory maps a section to an issue category.
func ToCategory(s concept.Section) redmine.CategoryRequest {
	return redmine.CategoryRequest{Name: s.Name}
}

// ToSubproject maps a section to a sub-project of parent. parentIdentifier
// is used for the slug prefix and the description.
func ToSubproject(s concept.Section, parent redmine.ProjectRef, parentIdentifier string) (redmine.SubprojectRequest, error) {
	if !s.HasLevel {
		return redmine.SubprojectRequest{}, fmt.Errorf("%q: %w", s.Name, ErrMissingLevel)
	}
	if Slugify(s.Name) == "" {
		return redmine.SubprojectRequest{}, fmt.Errorf("%q: %w", s.Name, ErrEmptyIdentifier)
	}
	return redmine.SubprojectRequest{
		Name:           s.Name,
		Identifier:     Identifier(parentIdentifier, s.Name),
		Description:    fmt.Sprintf("Prioritätslevel: %d\nTeilprojekt von: %s", s.Level, parentIdentifier),
		ParentID:       parent,
		InheritMembers: true,
		IsPublic:       false,
	}, nil
}

// ToTicket maps a section to an issue. The subject keeps the heading's
// ordinal; the description lists the section body as bullets.
func ToTicket(s concept.Section, opts TicketOptions) (redmine.TicketRequest, error) {
	if !s.HasLevel {
		return redmine.TicketRequest{}, fmt.Errorf("%q: %w", s.Heading, ErrMissingLevel)
	}

	trackerID := opts.TrackerID
	if trackerID == 0 {
		trackerID = DefaultTrackerID
	}
	statusID := opts.StatusID
	if statusID == 0 {
		statusID = DefaultStatusID
	}

	return redmine.TicketRequest{
		ProjectID:   opts.ProjectID,
		Subject:     s.Title(),
		Description: ticketDescription(s),
		TrackerID:   trackerID,
		PriorityID:  int(PriorityForLevel(s.Level)),
		StatusID:    statusID,
	}, nil
}

func ticketDescription(s concept.Section) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Level: %d\n\n", s.Level)
	b.WriteString("Unterpunkte:\n")
	for _, line := range s.Body {
		text := strings.TrimSpace(line)
		if text == "" || strings.HasPrefix(line, boldSubItemPrefix) {
			continue
		}
		fmt.Fprintf(&b, "- %s\n", text)
	}
	return b.String()
}
