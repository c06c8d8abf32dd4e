package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/johnquangdev/meeting-processor/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-processor/pkg/config"
	"github.com/johnquangdev/meeting-processor/pkg/namematch"
)

// maxSummaryLength is Jira's limit on the summary field
const maxSummaryLength = 255

// fallbackIssueTypes are tried in order when the preferred type is missing
var fallbackIssueTypes = []string{"Story", "Bug", "Sub-task"}

// Client creates issues through the Jira Cloud REST API v3
type Client struct {
	baseURL    string
	email      string
	apiToken   string
	projectKey string
	issueType  string
	labels     []string
	members    *namematch.Matcher
	bearer     bool
	http       *http.Client
	logger     *zap.Logger

	mu         sync.Mutex
	accounts   map[string]string
	issueTypes []string
}

// NewClient creates a Jira client. When cfg.OAuthToken is set requests carry
// it as an OAuth 2.0 bearer token; otherwise basic auth with the API token
// is used. With cfg.TeamMembers set, assignees outside the roster are left
// unassigned.
func NewClient(cfg config.JiraConfig, logger *zap.Logger) *Client {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	if cfg.OAuthToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.OAuthToken, TokenType: "Bearer"})
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = 30 * time.Second
	}

	issueType := cfg.IssueType
	if issueType == "" {
		issueType = "Task"
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.Server, "/"),
		email:      cfg.Email,
		apiToken:   cfg.APIToken,
		projectKey: cfg.ProjectKey,
		issueType:  issueType,
		labels:     cfg.Labels,
		members:    namematch.NewMatcher(cfg.TeamMembers, cfg.MemberAliases, namematch.DefaultThreshold),
		bearer:     cfg.OAuthToken != "",
		http:       httpClient,
		logger:     logger,
		accounts:   make(map[string]string),
	}
}

var _ pipeline.IssueCreator = (*Client)(nil)

type createIssueResponse struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

type userSearchResult struct {
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
	Active      bool   `json:"active"`
}

type projectResponse struct {
	IssueTypes []struct {
		Name string `json:"name"`
	} `json:"issueTypes"`
}

type errorResponse struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}

// CreateIssue creates one issue and returns its key. An assignee that cannot
// be resolved to a Jira account leaves the issue unassigned.
func (c *Client) CreateIssue(ctx context.Context, req pipeline.IssueRequest) (string, error) {
	fields := map[string]interface{}{
		"project":     map[string]string{"key": c.projectKey},
		"summary":     truncate(req.Title, maxSummaryLength),
		"issuetype":   map[string]string{"name": c.validIssueType(ctx)},
		"description": description(req),
	}
	if len(c.labels) > 0 {
		fields["labels"] = c.labels
	}
	if req.DueDate != nil {
		fields["duedate"] = req.DueDate.String()
	}
	if req.Assignee != nil && *req.Assignee != "" {
		if accountID := c.resolveAssignee(ctx, *req.Assignee); accountID != "" {
			fields["assignee"] = map[string]string{"accountId": accountID}
		} else if c.logger != nil {
			c.logger.Warn("⚠️ Could not resolve assignee, creating unassigned issue", zap.String("assignee", *req.Assignee))
		}
	}

	body, err := json.Marshal(map[string]interface{}{"fields": fields})
	if err != nil {
		return "", err
	}

	var out createIssueResponse
	if err := c.do(ctx, http.MethodPost, "/rest/api/3/issue", bytes.NewReader(body), &out); err != nil {
		return "", fmt.Errorf("create issue: %w", err)
	}
	if out.Key == "" {
		return "", fmt.Errorf("create issue: response has no issue key")
	}
	return out.Key, nil
}

// validIssueType returns the configured type when the project has it, else
// Story, Bug, Sub-task or the first type the project offers. The project's
// types are fetched once; a failed lookup falls back to the configured type.
func (c *Client) validIssueType(ctx context.Context) string {
	c.mu.Lock()
	types := c.issueTypes
	c.mu.Unlock()

	if types == nil {
		var project projectResponse
		if err := c.do(ctx, http.MethodGet, "/rest/api/3/project/"+url.PathEscape(c.projectKey), nil, &project); err != nil {
			if c.logger != nil {
				c.logger.Warn("⚠️ Could not load Jira issue types", zap.String("project", c.projectKey), zap.Error(err))
			}
			return c.issueType
		}
		types = make([]string, 0, len(project.IssueTypes))
		for _, it := range project.IssueTypes {
			types = append(types, it.Name)
		}
		c.mu.Lock()
		c.issueTypes = types
		c.mu.Unlock()
	}

	return pickIssueType(types, c.issueType)
}

func pickIssueType(available []string, preferred string) string {
	if len(available) == 0 {
		return preferred
	}
	for _, want := range append([]string{preferred}, fallbackIssueTypes...) {
		for _, it := range available {
			if strings.EqualFold(it, want) {
				return it
			}
		}
	}
	return available[0]
}

// resolveAssignee maps a transcript name to an account id, or "" when the
// name is not on the roster or no Jira user is close enough.
func (c *Client) resolveAssignee(ctx context.Context, name string) string {
	query := name
	if !c.members.Empty() {
		member, score, ok := c.members.Match(name)
		if !ok {
			if c.logger != nil {
				c.logger.Warn("⚠️ Assignee is not a team member", zap.String("assignee", name), zap.Float64("best_score", score))
			}
			return ""
		}
		query = member
	}

	accountID, err := c.accountID(ctx, query)
	if err != nil && c.logger != nil {
		c.logger.Warn("⚠️ Jira user search failed", zap.String("assignee", query), zap.Error(err))
	}
	return accountID
}

// accountID resolves a display name to an account id. Results, including
// misses, are cached for the life of the client.
func (c *Client) accountID(ctx context.Context, name string) (string, error) {
	cacheKey := strings.ToLower(strings.TrimSpace(name))
	c.mu.Lock()
	if id, ok := c.accounts[cacheKey]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	var users []userSearchResult
	path := "/rest/api/3/user/search?query=" + url.QueryEscape(name)
	if err := c.do(ctx, http.MethodGet, path, nil, &users); err != nil {
		return "", err
	}

	id := pickAccount(users, name)
	c.mu.Lock()
	c.accounts[cacheKey] = id
	c.mu.Unlock()
	return id, nil
}

// pickAccount returns the active user whose display name is most similar to
// name. Nobody is picked below the match threshold.
func pickAccount(users []userSearchResult, name string) string {
	best, bestScore := "", 0.0
	for _, u := range users {
		if !u.Active {
			continue
		}
		if s := namematch.Similarity(u.DisplayName, name); s > bestScore {
			best, bestScore = u.AccountID, s
		}
	}
	if bestScore < namematch.DefaultThreshold {
		return ""
	}
	return best
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !c.bearer {
		req.SetBasicAuth(c.email, c.apiToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("jira returned status %d: %s", resp.StatusCode, errorText(raw))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func errorText(raw []byte) string {
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err != nil {
		return strings.TrimSpace(string(raw))
	}
	parts := append([]string{}, er.ErrorMessages...)
	for field, msg := range er.Errors {
		parts = append(parts, field+": "+msg)
	}
	if len(parts) == 0 {
		return strings.TrimSpace(string(raw))
	}
	return strings.Join(parts, "; ")
}

// description renders the issue body as an Atlassian Document Format doc
func description(req pipeline.IssueRequest) map[string]interface{} {
	lines := []string{"Created from meeting action items."}
	if req.MeetingTitle != "" {
		lines = append(lines, "Meeting: "+req.MeetingTitle)
	}
	lines = append(lines, "Conference ID: "+req.ConferenceID)
	if req.Assignee != nil && *req.Assignee != "" {
		lines = append(lines, "Assigned to: "+*req.Assignee)
	}
	if req.DueDate != nil {
		lines = append(lines, "Due: "+req.DueDate.String())
	}

	content := make([]interface{}, 0, len(lines))
	for _, l := range lines {
		content = append(content, map[string]interface{}{
			"type":    "paragraph",
			"content": []interface{}{map[string]interface{}{"type": "text", "text": l}},
		})
	}
	return map[string]interface{}{
		"type":    "doc",
		"version": 1,
		"content": content,
	}
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-3]) + "..."
}
