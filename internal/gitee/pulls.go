package gitee

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// CreatePullRequestOptions describe a new pull request. Head may be
// "owner:branch" for cross-repository requests.
type CreatePullRequestOptions struct {
	Owner             string   `json:"owner"`
	Repo              string   `json:"repo"`
	Title             string   `json:"title"`
	Head              string   `json:"head"`
	Base              string   `json:"base"`
	Body              string   `json:"body,omitempty"`
	MilestoneNumber   *int64   `json:"milestone_number,omitempty"`
	Labels            []string `json:"labels,omitempty"`
	Issue             string   `json:"issue,omitempty"`
	Assignees         []string `json:"assignees,omitempty"`
	Testers           []string `json:"testers,omitempty"`
	PruneSourceBranch *bool    `json:"prune_source_branch,omitempty"`
}

// CreatePullRequest opens a pull request from Head into Base.
func (c *Client) CreatePullRequest(ctx context.Context, opts CreatePullRequestOptions) (*PullRequest, error) {
	owner, repo, err := ownerRepo(opts.Owner, opts.Repo)
	if err != nil {
		return nil, err
	}
	head, err := validateHead(opts.Head)
	if err != nil {
		return nil, err
	}
	base, err := ValidateBranchName(opts.Base)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"title": opts.Title,
		"head":  head,
		"base":  base,
	}
	if opts.Body != "" {
		body["body"] = opts.Body
	}
	if opts.MilestoneNumber != nil {
		body["milestone_number"] = *opts.MilestoneNumber
	}
	if opts.Issue != "" {
		body["issue"] = opts.Issue
	}
	if opts.PruneSourceBranch != nil {
		body["prune_source_branch"] = *opts.PruneSourceBranch
	}
	CollapseList(body, "labels", opts.Labels)
	CollapseList(body, "assignees", opts.Assignees)
	CollapseList(body, "testers", opts.Testers)

	var out PullRequest
	if err := c.Do(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/%s/pulls", owner, repo), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// validateHead checks the branch part of "branch" or "owner:branch"
func validateHead(head string) (string, error) {
	head = strings.TrimSpace(head)
	if ns, branch, found := strings.Cut(head, ":"); found {
		owner, err := ValidateOwnerName(ns)
		if err != nil {
			return "", err
		}
		branch, err = ValidateBranchName(branch)
		if err != nil {
			return "", err
		}
		return owner + ":" + branch, nil
	}
	return ValidateBranchName(head)
}

// ListPullRequestsOptions filter a page of pull requests
type ListPullRequestsOptions struct {
	Owner     string `json:"owner"`
	Repo      string `json:"repo"`
	State     string `json:"state,omitempty"`
	Sort      string `json:"sort,omitempty"`
	Direction string `json:"direction,omitempty"`
	Milestone int64  `json:"milestone,omitempty"`
	Labels    string `json:"labels,omitempty"`
	Page      int    `json:"page,omitempty"`
	PerPage   int    `json:"per_page,omitempty"`
}

// ListPullRequests lists one page of pull requests.
func (c *Client) ListPullRequests(ctx context.Context, opts ListPullRequestsOptions) ([]PullRequest, error) {
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
		apply(fmt.Sprintf("/repos/%s/%s/pulls", owner, repo))

	pulls := []PullRequest{}
	if err := c.Do(ctx, http.MethodGet, path, nil, &pulls); err != nil {
		return nil, err
	}
	return pulls, nil
}

// GetPullRequest fetches one pull request.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int64) (*PullRequest, error) {
	owner, repo, err := ownerRepo(owner, repo)
	if err != nil {
		return nil, err
	}

	var out PullRequest
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, number), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePullRequestOptions change an existing pull request
type UpdatePullRequestOptions struct {
	Owner           string   `json:"owner"`
	Repo            string   `json:"repo"`
	PullNumber      int64    `json:"pull_number"`
	Title           string   `json:"title,omitempty"`
	Body            *string  `json:"body,omitempty"`
	State           string   `json:"state,omitempty"`
	MilestoneNumber *int64   `json:"milestone_number,omitempty"`
	Labels          []string `json:"labels,omitempty"`
	Assignees       []string `json:"assignees,omitempty"`
	Testers         []string `json:"testers,omitempty"`
}

// UpdatePullRequest edits a pull request.
func (c *Client) UpdatePullRequest(ctx context.Context, opts UpdatePullRequestOptions) (*PullRequest, error) {
	owner, repo, err := ownerRepo(opts.Owner, opts.Repo)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{}
	if opts.Title != "" {
		body["title"] = opts.Title
	}
	if opts.Body != nil {
		body["body"] = *opts.Body
	}
	if opts.State != "" {
		body["state"] = opts.State
	}
	if opts.MilestoneNumber != nil {
		body["milestone_number"] = *opts.MilestoneNumber
	}
	CollapseList(body, "labels", opts.Labels)
	CollapseList(body, "assignees", opts.Assignees)
	CollapseList(body, "testers", opts.Testers)

	var out PullRequest
	if err := c.Do(ctx, http.MethodPatch, fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, opts.PullNumber), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MergePullRequestOptions control how a pull request is merged
type MergePullRequestOptions struct {
	Owner             string `json:"owner"`
	Repo              string `json:"repo"`
	PullNumber        int64  `json:"pull_number"`
	MergeMethod       string `json:"merge_method,omitempty"`
	PruneSourceBranch *bool  `json:"prune_source_branch,omitempty"`
	Title             string `json:"title,omitempty"`
	Description       string `json:"description,omitempty"`
}

// MergePullRequest merges a pull request, by merge commit unless
// MergeMethod says otherwise.
func (c *Client) MergePullRequest(ctx context.Context, opts MergePullRequestOptions) (*MergeResult, error) {
	owner, repo, err := ownerRepo(opts.Owner, opts.Repo)
	if err != nil {
		return nil, err
	}

	method := opts.MergeMethod
	if method == "" {
		method = "merge"
	}
	body := map[string]interface{}{"merge_method": method}
	if opts.PruneSourceBranch != nil {
		body["prune_source_branch"] = *opts.PruneSourceBranch
	}
	if opts.Title != "" {
		body["title"] = opts.Title
	}
	if opts.Description != "" {
		body["description"] = opts.Description
	}

	var out MergeResult
	if err := c.Do(ctx, http.MethodPut, fmt.Sprintf("/repos/%s/%s/pulls/%d/merge", owner, repo, opts.PullNumber), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
