package ticket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jmoretti/threadtriage/internal/card"
	"github.com/jmoretti/threadtriage/internal/sanitize"
)

// JiraConfig holds what the Jira Cloud REST API needs.
type JiraConfig struct {
	BaseURL    string // e.g. https://yourcompany.atlassian.net
	ProjectKey string
	Email      string
	APIToken   string
}

// Jira files issues through the Jira Cloud REST v3 API.
type Jira struct {
	cfg    JiraConfig
	client *http.Client
}

// NewJira builds a Jira creator. httpClient may be nil.
func NewJira(cfg JiraConfig, httpClient *http.Client) *Jira {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Jira{cfg: cfg, client: httpClient}
}

func (j *Jira) Provider() string { return "jira" }

// jiraCreateRequest is the minimal create-issue payload. Descriptions
// use the Atlassian document format required by the v3 API.
type jiraCreateRequest struct {
	Fields jiraFields `json:"fields"`
}

type jiraFields struct {
	Project     jiraProject `json:"project"`
	Summary     string      `json:"summary"`
	Description jiraDoc     `json:"description"`
	IssueType   jiraNamed   `json:"issuetype"`
	Labels      []string    `json:"labels,omitempty"`
}

type jiraProject struct {
	Key string `json:"key"`
}

type jiraNamed struct {
	Name string `json:"name"`
}

type jiraDoc struct {
	Type    string        `json:"type"`
	Version int           `json:"version"`
	Content []jiraDocNode `json:"content"`
}

type jiraDocNode struct {
	Type    string        `json:"type"`
	Content []jiraDocText `json:"content,omitempty"`
}

type jiraDocText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type jiraCreateResponse struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

func (j *Jira) Create(ctx context.Context, c card.IssueCard) (string, string, error) {
	reqBody := jiraCreateRequest{Fields: jiraFields{
		Project:     jiraProject{Key: j.cfg.ProjectKey},
		Summary:     c.Title,
		Description: jiraDescription(c),
		IssueType:   jiraNamed{Name: "Task"},
		Labels:      []string{"threadtriage", strings.ToLower(c.Category)},
	}}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", "", fmt.Errorf("marshal jira request: %w", err)
	}

	url := strings.TrimRight(j.cfg.BaseURL, "/") + "/rest/api/3/issue"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("create jira request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(j.cfg.Email, j.cfg.APIToken)

	resp, err := j.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("jira request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read jira response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("jira error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var created jiraCreateResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return "", "", fmt.Errorf("unmarshal jira response: %w", err)
	}
	if created.Key == "" {
		return "", "", fmt.Errorf("jira response missing issue key: %s", string(respBody))
	}

	browse := strings.TrimRight(j.cfg.BaseURL, "/") + "/browse/" + created.Key
	return created.Key, browse, nil
}

// jiraDescription renders a card body as ADF paragraphs.
func jiraDescription(c card.IssueCard) jiraDoc {
	paras := []string{
		c.Description,
		"Details: " + sanitize.Redact(c.Details),
		"Recommendation: " + c.Recommendation,
		fmt.Sprintf("Source thread: %s (%s)", c.Sources.ThreadName, c.Sources.ThreadID),
	}
	if c.PotentialSolutions != nil {
		paras = append(paras, "Root cause: "+c.PotentialSolutions.RootCause)
		paras = append(paras, "Immediate fix: "+c.PotentialSolutions.ImmediateFix)
		if c.PotentialSolutions.LongTermFix != "" {
			paras = append(paras, "Long-term fix: "+c.PotentialSolutions.LongTermFix)
		}
	}

	doc := jiraDoc{Type: "doc", Version: 1}
	for _, p := range paras {
		if p == "" {
			continue
		}
		doc.Content = append(doc.Content, jiraDocNode{
			Type:    "paragraph",
			Content: []jiraDocText{{Type: "text", Text: p}},
		})
	}
	return doc
}
