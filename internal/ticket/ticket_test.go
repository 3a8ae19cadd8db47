package ticket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmoretti/threadtriage/internal/card"
)

func testCard(n int) card.IssueCard {
	return card.IssueCard{
		Number:         n,
		Title:          fmt.Sprintf("[HIGH] finding %d", n),
		Priority:       "HIGH",
		Category:       "QUALITY",
		Status:         card.StatusBacklog,
		Details:        "evidence text",
		Description:    "QUALITY issue detected in thread \"x\".",
		Recommendation: "fix it",
		Sources:        card.Sources{ThreadID: "t-1", ThreadName: "x"},
	}
}

// failNth fails creation for one specific card number.
type failNth struct {
	n int
}

func (failNth) Provider() string { return "fake" }

func (f failNth) Create(_ context.Context, c card.IssueCard) (string, string, error) {
	if c.Number == f.n {
		return "", "", errors.New("backend rejected the card")
	}
	return fmt.Sprintf("TT-%d", c.Number), "https://tracker.example.com/TT-" + fmt.Sprint(c.Number), nil
}

func TestCreateAll_ContinuesPastFailures(t *testing.T) {
	cards := []card.IssueCard{testCard(1), testCard(2), testCard(3)}
	results := CreateAll(context.Background(), failNth{n: 2}, cards)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("cards around the failure must still be attempted: %+v", results)
	}
	if results[1].Err == nil {
		t.Error("failed card must report its error")
	}
	if results[2].TicketID != "TT-3" {
		t.Errorf("ticket id = %q", results[2].TicketID)
	}
}

func TestCreateAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := CreateAll(ctx, DryRun{}, []card.IssueCard{testCard(1), testCard(2)})
	for _, r := range results {
		if r.Err == nil {
			t.Errorf("card %d should be marked not attempted", r.CardNumber)
		}
	}
}

func TestJira_Create(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"10001","key":"PROJ-42","self":"..."}`)
	}))
	defer srv.Close()

	j := NewJira(JiraConfig{BaseURL: srv.URL, ProjectKey: "PROJ", Email: "a@b.c", APIToken: "tok"}, srv.Client())
	id, url, err := j.Create(context.Background(), testCard(1))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != "PROJ-42" {
		t.Errorf("id = %q, want PROJ-42", id)
	}
	if url != srv.URL+"/browse/PROJ-42" {
		t.Errorf("url = %q", url)
	}
	if gotPath != "/rest/api/3/issue" {
		t.Errorf("path = %q", gotPath)
	}
	if !strings.HasPrefix(gotAuth, "Basic ") {
		t.Errorf("auth = %q, want basic auth", gotAuth)
	}

	fields, _ := gotBody["fields"].(map[string]any)
	if fields == nil {
		t.Fatalf("payload missing fields: %v", gotBody)
	}
	if fields["summary"] != "[HIGH] finding 1" {
		t.Errorf("summary = %v", fields["summary"])
	}
}

func TestJira_RedactsSecretsInDescription(t *testing.T) {
	var raw []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"key":"PROJ-1"}`)
	}))
	defer srv.Close()

	c := testCard(1)
	c.Details = `turn 2: "api_key=sk-live-secret123"`

	j := NewJira(JiraConfig{BaseURL: srv.URL, ProjectKey: "PROJ"}, srv.Client())
	if _, _, err := j.Create(context.Background(), c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if strings.Contains(string(raw), "sk-live-secret123") {
		t.Errorf("secret leaked into ticket payload: %s", raw)
	}
	if !strings.Contains(string(raw), "[REDACTED]") {
		t.Errorf("redaction marker missing from payload: %s", raw)
	}
}

func TestJira_CreateErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"errorMessages":["project missing"]}`)
	}))
	defer srv.Close()

	j := NewJira(JiraConfig{BaseURL: srv.URL, ProjectKey: ""}, srv.Client())
	if _, _, err := j.Create(context.Background(), testCard(1)); err == nil {
		t.Fatal("expected an error on status 400")
	}
}

func TestNotion_Create(t *testing.T) {
	var gotVersion string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.Header.Get("Notion-Version")
		json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, `{"id":"page-123","url":"https://notion.so/page-123"}`)
	}))
	defer srv.Close()

	n := NewNotion(NotionConfig{BaseURL: srv.URL, DatabaseID: "db-1", APIToken: "tok"}, srv.Client())
	id, url, err := n.Create(context.Background(), testCard(1))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != "page-123" || url != "https://notion.so/page-123" {
		t.Errorf("id = %q, url = %q", id, url)
	}
	if gotVersion == "" {
		t.Error("Notion-Version header missing")
	}

	parent, _ := gotBody["parent"].(map[string]any)
	if parent == nil || parent["database_id"] != "db-1" {
		t.Errorf("parent = %v", parent)
	}
}

func TestNotion_MissingPageID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	n := NewNotion(NotionConfig{BaseURL: srv.URL}, srv.Client())
	if _, _, err := n.Create(context.Background(), testCard(1)); err == nil {
		t.Fatal("expected an error for a response without a page id")
	}
}
