package redmine

import (
	"encoding/json"
	"strconv"
)

// ProjectRef names a project by numeric id or by string identifier.
// Redmine accepts either form wherever a project is referenced.
type ProjectRef string

// ProjectID returns a ProjectRef for a numeric project id.
func ProjectID(id int) ProjectRef {
	return ProjectRef(strconv.Itoa(id))
}

// ID returns the numeric id if the ref is one.
func (r ProjectRef) ID() (int, bool) {
	n, err := strconv.Atoi(string(r))
	if err != nil || strconv.Itoa(n) != string(r) {
		return 0, false
	}
	return n, true
}

func (r ProjectRef) String() string { return string(r) }

// MarshalJSON encodes numeric refs as JSON numbers and identifiers as strings.
func (r ProjectRef) MarshalJSON() ([]byte, error) {
	if n, ok := r.ID(); ok {
		return json.Marshal(n)
	}
	return json.Marshal(string(r))
}

// UnmarshalJSON accepts both number and string forms.
func (r *ProjectRef) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*r = ProjectID(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ProjectRef(s)
	return nil
}

// CategoryRequest is the body of an issue category creation.
type CategoryRequest struct {
	Name string `json:"name"`
}

// SubprojectRequest is the body of a project creation below a parent project.
type SubprojectRequest struct {
	Name           string     `json:"name"`
	Identifier     string     `json:"identifier"`
	Description    string     `json:"description"`
	ParentID       ProjectRef `json:"parent_id"`
	InheritMembers bool       `json:"inherit_members"`
	IsPublic       bool       `json:"is_public"`
}

// TicketRequest is the body of an issue creation.
type TicketRequest struct {
	ProjectID   ProjectRef `json:"project_id"`
	Subject     string     `json:"subject"`
	Description string     `json:"description"`
	TrackerID   int        `json:"tracker_id"`
	PriorityID  int        `json:"priority_id"`
	StatusID    int        `json:"status_id"`
}

// NamedRef is the {id, name} pair Redmine embeds for associated records.
type NamedRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Project mirrors the fields we care about from a Redmine project.
type Project struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Identifier  string    `json:"identifier"`
	Description string    `json:"description,omitempty"`
	Parent      *NamedRef `json:"parent,omitempty"`
}

// Category mirrors the fields we care about from a Redmine issue category.
type Category struct {
	ID      int       `json:"id"`
	Name    string    `json:"name"`
	Project *NamedRef `json:"project,omitempty"`
}

// Issue mirrors the fields we care about from a Redmine issue.
type Issue struct {
	ID       int       `json:"id"`
	Subject  string    `json:"subject"`
	Project  *NamedRef `json:"project,omitempty"`
	Tracker  *NamedRef `json:"tracker,omitempty"`
	Priority *NamedRef `json:"priority,omitempty"`
	Status   *NamedRef `json:"status,omitempty"`
}

// Request and response envelopes. Redmine wraps every resource in an object
// keyed by its singular name.
type (
	categoryEnvelope struct {
		IssueCategory *CategoryRequest `json:"issue_category"`
	}
	subprojectEnvelope struct {
		Project *SubprojectRequest `json:"project"`
	}
	ticketEnvelope struct {
		Issue *TicketRequest `json:"issue"`
	}

	categoryResponse struct {
		IssueCategory *Category `json:"issue_category"`
	}
	projectResponse struct {
		Project *Project `json:"project"`
	}
	issueResponse struct {
		Issue *Issue `json:"issue"`
	}
)
