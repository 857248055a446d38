package concept

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	headingMarker = "### "
	levelMarker   = "(Level "
)

// Diagnostic reasons.
const (
	ReasonMissingLevel = "no level annotation"
	ReasonInvalidLevel = "level is not an integer"
	ReasonEmptyName    = "heading has no name"
)

// ErrNotFound is returned by ReadFile when the concept file does not exist.
var ErrNotFound = errors.New("concept file not found")

// ReadFile reads and parses the concept file at path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading concept file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse splits a concept document into sections at every level-3 heading.
// Text before the first heading is ignored. A heading whose level annotation
// is malformed, or whose name is empty, is recorded as a diagnostic and its
// body is dropped; parsing continues with the next heading.
func Parse(reader io.Reader) (*Document, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	doc := &Document{
		Sections: make([]Section, 0),
	}

	var current *Section

	flush := func() {
		if current != nil {
			doc.Sections = append(doc.Sections, *current)
			current = nil
		}
	}

	lineNum := 0
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		lineNum++

		heading, ok := headingText(line)
		if !ok {
			if current != nil {
				current.Body = append(current.Body, line)
			}
			continue
		}

		flush()
		section, reason := parseHeading(heading)
		if reason != "" {
			doc.Diagnostics = append(doc.Diagnostics, Diagnostic{
				Line:   lineNum,
				Text:   heading,
				Reason: reason,
			})
			continue
		}
		section.Line = lineNum
		current = &section
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return doc, nil
}

// headingText reports whether line is a level-3 heading and returns the text
// after the marker.
func headingText(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	// TrimSpace eats the marker's space on a bare "###" line.
	if !strings.HasPrefix(trimmed+" ", headingMarker) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, "###")), true
}

func parseHeading(heading string) (Section, string) {
	section := Section{Heading: heading}
	rest := dropOrdinal(heading)

	if i := strings.Index(rest, levelMarker); i >= 0 {
		level, err := parseLevel(rest[i+len(levelMarker):])
		if err != nil {
			return section, ReasonInvalidLevel
		}
		section.Level = level
		section.HasLevel = true
	}

	name := rest
	if i := strings.Index(name, "(Level"); i >= 0 {
		name = name[:i]
	}
	section.Name = strings.TrimSpace(name)
	if section.Name == "" {
		return section, ReasonEmptyName
	}

	return section, ""
}

// dropOrdinal removes the first whitespace-delimited token ("1.", "10.").
func dropOrdinal(heading string) string {
	i := strings.IndexFunc(heading, unicode.IsSpace)
	if i < 0 {
		return ""
	}
	_, size := utf8.DecodeRuneInString(heading[i:])
	return heading[i+size:]
}

// parseLevel reads the integer up to the closing parenthesis.
func parseLevel(s string) (int, error) {
	if end := strings.Index(s, ")"); end >= 0 {
		s = s[:end]
	}
	return strconv.Atoi(strings.TrimSpace(s))
}
