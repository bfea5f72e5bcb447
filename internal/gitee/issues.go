package gitee

import (
	"context"
	"fmt"
	"net/http"
)

// CreateIssueOptions describe a new issue
type CreateIssueOptions struct {
	Owner        string   `json:"owner"`
	Repo         string   `json:"repo"`
	Title        string   `json:"title"`
	Body         string   `json:"body,omitempty"`
	Assignees    []string `json:"assignees,omitempty"`
	Milestone    *int64   `json:"milestone,omitempty"`
	Labels       []string `json:"labels,omitempty"`
	SecurityHole *bool    `json:"security_hole,omitempty"`
}

// CreateIssue opens an issue. The repository path travels in the body.
func (c *Client) CreateIssue(ctx context.Context, opts CreateIssueOptions) (*Issue, error) {
	owner, repo, err := ownerRepo(opts.Owner, opts.Repo)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"repo":  repo,
		"title": opts.Title,
	}
	if opts.Body != "" {
		body["body"] = opts.Body
	}
	if opts.Milestone != nil {
		body["milestone"] = *opts.Milestone
	}
	if opts.SecurityHole != nil {
		body["security_hole"] = *opts.SecurityHole
	}
	CollapseList(body, "assignees", opts.Assignees)
	CollapseList(body, "labels", opts.Labels)

	var out Issue
	if err := c.Do(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/%s/issues", owner, repo), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListIssuesOptions filter a page of issues
type ListIssuesOptions struct {
	Owner     string `json:"owner"`
	Repo      string `json:"repo"`
	State     string `json:"state,omitempty"`
	Sort      string `json:"sort,omitempty"`
	Direction string `json:"direction,omitempty"`
	Milestone int64  `json:"milestone,omitempty"`
	Labels    string `json:"labels,omitempty"`
	Page      int    `json:"page,omitempty"`
	PerPage   int    `json:"per_page,omitempty"`
	Assignee  string `json:"assignee,omitempty"`
	Creator   string `json:"creator,omitempty"`
	Program   string `json:"program,omitempty"`
}

// ListIssues lists one page of issues.
func (c *Client) ListIssues(ctx context.Context, opts ListIssuesOptions) ([]Issue, error) {
	owner, repo, err := ownerRepo(opts.Owner, opts.Repo)
	if err != nil {
		return nil, err
	}

	path := newQuery().
		str("state", opts.State).
		str("sort", opts.Sort).
		str("direction", opts.Direction).
		int64("milestone", opts.Milestone).
		str("labels", opts.Labels).
		int("page", opts.Page).
		int("per_page", opts.PerPage).
		str("assignee", opts.Assignee).
		str("creator", opts.Creator).
		str("program", opts.Program).
		apply(fmt.Sprintf("/repos/%s/%s/issues", owner, repo))

	issues := []Issue{}
	if err := c.Do(ctx, http.MethodGet, path, nil, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

// GetIssue fetches one issue.
func (c *Client) GetIssue(ctx context.Context, owner, repo string, number IssueNumber) (*Issue, error) {
	owner, repo, err := ownerRepo(owner, repo)
	if err != nil {
		return nil, err
	}
	if err := number.validate(); err != nil {
		return nil, err
	}

	var out Issue
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/%s/issues/%s", owner, repo, escapePath(number.String())), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateIssueOptions change an existing issue; zero fields are left alone
type UpdateIssueOptions struct {
	Owner       string      `json:"owner"`
	Repo        string      `json:"repo"`
	IssueNumber IssueNumber `json:"issue_number"`
	Title       string      `json:"title,omitempty"`
	Body        *string     `json:"body,omitempty"`
	Assignees   []string    `json:"assignees,omitempty"`
	Milestone   *int64      `json:"milestone,omitempty"`
	Labels      []string    `json:"labels,omitempty"`
	State       string      `json:"state,omitempty"`
}

// UpdateIssue edits an issue. Gitee addresses issue updates by owner and
// number only, so the repository path goes in the body.
func (c *Client) UpdateIssue(ctx context.Context, opts UpdateIssueOptions) (*Issue, error) {
	owner, repo, err := ownerRepo(opts.Owner, opts.Repo)
	if err != nil {
		return nil, err
	}
	if err := opts.IssueNumber.validate(); err != nil {
		return nil, err
	}

	body := map[string]interface{}{"repo": repo}
	if opts.Title != "" {
		body["title"] = opts.Title
	}
	if opts.Body != nil {
		body["body"] = *opts.Body
	}
	if opts.Milestone != nil {
		body["milestone"] = *opts.Milestone
	}
	if opts.State != "" {
		body["state"] = opts.State
	}
	CollapseList(body, "assignees", opts.Assignees)
	CollapseList(body, "labels", opts.Labels)

	var out Issue
	if err := c.Do(ctx, http.MethodPatch, fmt.Sprintf("/repos/%s/issues/%s", owner, escapePath(opts.IssueNumber.String())), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddIssueComment posts a comment on an issue.
func (c *Client) AddIssueComment(ctx context.Context, owner, repo string, number IssueNumber, comment string) (*IssueComment, error) {
	owner, repo, err := ownerRepo(owner, repo)
	if err != nil {
		return nil, err
	}
	if err := number.validate(); err != nil {
		return nil, err
	}

	var out IssueComment
	path := fmt.Sprintf("/repos/%s/%s/issues/%s/comments", owner, repo, escapePath(number.String()))
	if err := c.Do(ctx, http.MethodPost, path, map[string]interface{}{"body": comment}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
