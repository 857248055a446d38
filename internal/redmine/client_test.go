package redmine

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"localhost:3001", "http://localhost:3001"},
		{"localhost:3001/", "http://localhost:3001"},
		{"http://redmine.example.com", "http://redmine.example.com"},
		{"https://redmine.example.com/", "https://redmine.example.com"},
		{"https://redmine.example.com//", "https://redmine.example.com/"},
		{"  redmine.local  ", "http://redmine.local"},
	}

	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProjectRef_MarshalJSON(t *testing.T) {
	tests := []struct {
		ref  ProjectRef
		want string
	}{
		{ProjectID(42), `42`},
		{ProjectRef("mixxx-dj-software"), `"mixxx-dj-software"`},
		{ProjectRef("007"), `"007"`},
	}
	for _, tt := range tests {
		data, err := json.Marshal(tt.ref)
		if err != nil {
			t.Fatalf("Marshal(%q) failed: %v", tt.ref, err)
		}
		if string(data) != tt.want {
			t.Errorf("Marshal(%q) = %s, want %s", tt.ref, data, tt.want)
		}
	}

	var ref ProjectRef
	if err := json.Unmarshal([]byte(`17`), &ref); err != nil || ref != "17" {
		t.Errorf("Unmarshal number: got %q, %v", ref, err)
	}
	if err := json.Unmarshal([]byte(`"abc"`), &ref); err != nil || ref != "abc" {
		t.Errorf("Unmarshal string: got %q, %v", ref, err)
	}
}

// fakeRedmine records requests and replies with a fixed status and body.
type fakeRedmine struct {
	status int
	body   string

	method string
	path   string
	header http.Header
	sent   map[string]json.RawMessage
}

func (f *fakeRedmine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.method = r.Method
	f.path = r.URL.Path
	f.header = r.Header.Clone()
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		f.sent = map[string]json.RawMessage{}
		_ = json.Unmarshal(data, &f.sent)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = io.WriteString(w, f.body)
}

func newTestClient(t *testing.T, f *fakeRedmine) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "secret-key")
}

func TestProbe(t *testing.T) {
	f := &fakeRedmine{status: http.StatusOK, body: `{"project":{"id":7,"name":"Mixxx","identifier":"mixxx-dj-software"}}`}
	c := newTestClient(t, f)

	project, err := c.Probe(context.Background(), "mixxx-dj-software")
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if project.ID != 7 || project.Identifier != "mixxx-dj-software" {
		t.Errorf("Unexpected project %+v", project)
	}
	if f.method != http.MethodGet || f.path != "/projects/mixxx-dj-software.json" {
		t.Errorf("Unexpected request %s %s", f.method, f.path)
	}
	if got := f.header.Get(HeaderAPIKey); got != "secret-key" {
		t.Errorf("Expected API key header, got %q", got)
	}
	if got := f.header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Expected JSON content type, got %q", got)
	}
}

func TestProbe_NotFound(t *testing.T) {
	f := &fakeRedmine{status: http.StatusNotFound, body: ``}
	c := newTestClient(t, f)

	_, err := c.Probe(context.Background(), "missing")
	if !IsStatus(err, http.StatusNotFound) {
		t.Fatalf("Expected 404 APIError, got %v", err)
	}
	if c.CheckConnectivity(context.Background(), "missing") {
		t.Error("CheckConnectivity should be false on 404")
	}
}

func TestCheckConnectivity_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, "key")
	if c.CheckConnectivity(context.Background(), "any") {
		t.Error("CheckConnectivity should be false when the server is unreachable")
	}

	_, err := c.Probe(context.Background(), "any")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != 0 || apiErr.Err == nil {
		t.Errorf("Expected transport error without status, got %+v", apiErr)
	}
}

func TestCreateCategory(t *testing.T) {
	f := &fakeRedmine{status: http.StatusCreated, body: `{"issue_category":{"id":3,"name":"Setup"}}`}
	c := newTestClient(t, f)

	category, err := c.CreateCategory(context.Background(), "mixxx-dj-software", CategoryRequest{Name: "Setup"})
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	if category.ID != 3 || category.Name != "Setup" {
		t.Errorf("Unexpected category %+v", category)
	}
	if f.method != http.MethodPost || f.path != "/projects/mixxx-dj-software/issue_categories.json" {
		t.Errorf("Unexpected request %s %s", f.method, f.path)
	}
	if got := string(f.sent["issue_category"]); got != `{"name":"Setup"}` {
		t.Errorf("Unexpected body %s", got)
	}
}

func TestCreateProject(t *testing.T) {
	f := &fakeRedmine{status: http.StatusCreated, body: `{"project":{"id":12,"name":"Setup","identifier":"mixxx-setup"}}`}
	c := newTestClient(t, f)

	project, err := c.CreateProject(context.Background(), SubprojectRequest{
		Name:           "Setup",
		Identifier:     "mixxx-setup",
		Description:    "d",
		ParentID:       ProjectID(7),
		InheritMembers: true,
	})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if project.ID != 12 {
		t.Errorf("Unexpected project %+v", project)
	}
	if f.path != "/projects.json" {
		t.Errorf("Unexpected path %s", f.path)
	}

	var sent map[string]any
	if err := json.Unmarshal(f.sent["project"], &sent); err != nil {
		t.Fatalf("decode sent project: %v", err)
	}
	if sent["parent_id"] != float64(7) {
		t.Errorf("Expected numeric parent_id, got %v", sent["parent_id"])
	}
	if sent["inherit_members"] != true || sent["is_public"] != false {
		t.Errorf("Unexpected flags in %v", sent)
	}
}

func TestCreateIssue(t *testing.T) {
	f := &fakeRedmine{status: http.StatusCreated, body: `{"issue":{"id":101,"subject":"1. Setup"}}`}
	c := newTestClient(t, f)

	issue, err := c.CreateIssue(context.Background(), TicketRequest{
		ProjectID:  ProjectID(7),
		Subject:    "1. Setup",
		TrackerID:  1,
		PriorityID: 1,
		StatusID:   1,
	})
	if err != nil {
		t.Fatalf("CreateIssue failed: %v", err)
	}
	if issue.ID != 101 {
		t.Errorf("Unexpected issue %+v", issue)
	}
	if f.path != "/issues.json" {
		t.Errorf("Unexpected path %s", f.path)
	}
}

func TestCreate_UnprocessableEntity(t *testing.T) {
	f := &fakeRedmine{status: http.StatusUnprocessableEntity, body: `{"errors":["Identifier has already been taken","Name is too long"]}`}
	c := newTestClient(t, f)

	_, err := c.CreateProject(context.Background(), SubprojectRequest{Name: "dup"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", apiErr.StatusCode)
	}
	if len(apiErr.Errors) != 2 {
		t.Errorf("Expected 2 parsed errors, got %v", apiErr.Errors)
	}
	if !strings.Contains(err.Error(), "Identifier has already been taken") {
		t.Errorf("Error should carry Redmine messages, got %q", err.Error())
	}
}

func TestCreate_DecodeFailure(t *testing.T) {
	f := &fakeRedmine{status: http.StatusCreated, body: `not json`}
	c := newTestClient(t, f)

	_, err := c.CreateIssue(context.Background(), TicketRequest{Subject: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusCreated || apiErr.Err == nil {
		t.Errorf("Expected decode error with status, got %+v", apiErr)
	}
}

func TestCreate_MissingEntity(t *testing.T) {
	f := &fakeRedmine{status: http.StatusCreated, body: `{}`}
	c := newTestClient(t, f)

	if _, err := c.CreateCategory(context.Background(), "p", CategoryRequest{Name: "x"}); err == nil {
		t.Error("Expected error for response without issue_category")
	}
}

func TestAPIError_TruncatesOnRuneBoundary(t *testing.T) {
	body := "<h1>Interner Fehler</h1>" + strings.Repeat("ä", 300)
	err := &APIError{Op: "create project", StatusCode: http.StatusInternalServerError, Body: body}

	msg := err.Error()
	if !utf8.ValidString(msg) {
		t.Fatalf("Error() is not valid UTF-8: %q", msg)
	}
	if !strings.HasSuffix(msg, "ä...") {
		t.Errorf("Expected truncated body, got %q", msg)
	}
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		err  *APIError
		want string
	}{
		{&APIError{Op: "create issue", StatusCode: 404}, "create issue: 404 Not Found"},
		{&APIError{Op: "create issue", StatusCode: 500, Body: "boom"}, "create issue: 500 Internal Server Error: boom"},
		{&APIError{Op: "probe project", Err: errors.New("connection refused")}, "probe project: connection refused"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
