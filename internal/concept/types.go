// Package concept parses concept documents into heading sections.
package concept

import "strings"

// Document represents a parsed concept document.
type Document struct {
	Sections    []Section    // Headings in document order
	Diagnostics []Diagnostic // Headings that were skipped while parsing
}

// Section is one `### <ordinal>. <Name> (Level N)` heading and the lines under it.
type Section struct {
	Line     int      // 1-based line number of the heading
	Heading  string   // Heading text with the marker removed (e.g. "1. Setup (Level 5)")
	Name     string   // Heading without ordinal and level annotation (e.g. "Setup")
	Level    int      // Level from the annotation, valid only if HasLevel
	HasLevel bool     // Whether the heading carried a "(Level N)" annotation
	Body     []string // Raw lines up to the next heading
}

// Diagnostic describes a heading that could not be turned into a section.
type Diagnostic struct {
	Line   int    // 1-based line number of the heading
	Text   string // Heading text with the marker removed
	Reason string // Why the heading was skipped
}

// Title returns the heading text before the first "(", ordinal included.
func (s Section) Title() string {
	title, _, _ := strings.Cut(s.Heading, "(")
	return strings.TrimSpace(title)
}

// Leveled returns the sections that carry a level. Every section without one
// is reported as a diagnostic so callers that need a level can log and skip it.
func (d *Document) Leveled() ([]Section, []Diagnostic) {
	var sections []Section
	var skipped []Diagnostic
	for _, s := range d.Sections {
		if !s.HasLevel {
			skipped = append(skipped, Diagnostic{
				Line:   s.Line,
				Text:   s.Heading,
				Reason: ReasonMissingLevel,
			})
			continue
		}
		sections = append(sections, s)
	}
	return sections, skipped
}
