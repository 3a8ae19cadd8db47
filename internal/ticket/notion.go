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

// NotionConfig holds what the Notion pages API needs.
type NotionConfig struct {
	BaseURL    string // defaults to https://api.notion.com
	DatabaseID string
	APIToken   string
	Version    string // Notion-Version header, defaults to 2022-06-28
}

// Notion files cards as pages in a Notion database.
type Notion struct {
	cfg    NotionConfig
	client *http.Client
}

// NewNotion builds a Notion creator. httpClient may be nil.
func NewNotion(cfg NotionConfig, httpClient *http.Client) *Notion {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.notion.com"
	}
	if cfg.Version == "" {
		cfg.Version = "2022-06-28"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Notion{cfg: cfg, client: httpClient}
}

func (n *Notion) Provider() string { return "notion" }

type notionCreateResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (n *Notion) Create(ctx context.Context, c card.IssueCard) (string, string, error) {
	page := map[string]any{
		"parent": map[string]any{"database_id": n.cfg.DatabaseID},
		"properties": map[string]any{
			"Name":     titleProp(c.Title),
			"Priority": selectProp(c.Priority),
			"Category": selectProp(c.Category),
			"Status":   selectProp(c.Status),
		},
		"children": notionBody(c),
	}

	body, err := json.Marshal(page)
	if err != nil {
		return "", "", fmt.Errorf("marshal notion request: %w", err)
	}

	url := strings.TrimRight(n.cfg.BaseURL, "/") + "/v1/pages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("create notion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.cfg.APIToken)
	req.Header.Set("Notion-Version", n.cfg.Version)

	resp, err := n.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("notion request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read notion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("notion error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var created notionCreateResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return "", "", fmt.Errorf("unmarshal notion response: %w", err)
	}
	if created.ID == "" {
		return "", "", fmt.Errorf("notion response missing page id: %s", string(respBody))
	}
	return created.ID, created.URL, nil
}

func titleProp(text string) map[string]any {
	return map[string]any{
		"title": []map[string]any{{"text": map[string]any{"content": text}}},
	}
}

func selectProp(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

func notionBody(c card.IssueCard) []map[string]any {
	paras := []string{
		c.Description,
		"Details: " + sanitize.Redact(c.Details),
		"Recommendation: " + c.Recommendation,
		fmt.Sprintf("Source thread: %s (%s)", c.Sources.ThreadName, c.Sources.ThreadID),
	}
	if c.PotentialSolutions != nil {
		paras = append(paras, "Root cause: "+c.PotentialSolutions.RootCause)
		paras = append(paras, "Immediate fix: "+c.PotentialSolutions.ImmediateFix)
	}

	var children []map[string]any
	for _, p := range paras {
		if p == "" {
			continue
		}
		children = append(children, map[string]any{
			"object": "block",
			"type":   "paragraph",
			"paragraph": map[string]any{
				"rich_text": []map[string]any{{"text": map[string]any{"content": p}}},
			},
		})
	}
	return children
}
