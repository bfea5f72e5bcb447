package gitee

import (
	"context"
	"fmt"
	"net/http"
)

// DefaultRef is the starting point for new branches when none is given
const DefaultRef = "master"

// CreateBranchOptions describe a branch to create
type CreateBranchOptions struct {
	Owner      string `json:"owner"`
	Repo       string `json:"repo"`
	BranchName string `json:"branch_name"`
	Refs       string `json:"refs,omitempty"`
}

// CreateBranch creates a branch from Refs, or from master when Refs is empty.
func (c *Client) CreateBranch(ctx context.Context, opts CreateBranchOptions) (*Branch, error) {
	owner, repo, err := ownerRepo(opts.Owner, opts.Repo)
	if err != nil {
		return nil, err
	}
	name, err := ValidateBranchName(opts.BranchName)
	if err != nil {
		return nil, err
	}
	refs := opts.Refs
	if refs == "" {
		refs = DefaultRef
	}

	body := map[string]interface{}{
		"branch_name": name,
		"refs":        refs,
	}

	var out Branch
	if err := c.Do(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/%s/branches", owner, repo), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListBranchesOptions select and order a page of branches
type ListBranchesOptions struct {
	Owner     string `json:"owner"`
	Repo      string `json:"repo"`
	Sort      string `json:"sort,omitempty"`
	Direction string `json:"direction,omitempty"`
	Page      int    `json:"page,omitempty"`
	PerPage   int    `json:"per_page,omitempty"`
}

// ListBranches lists one page of branches.
func (c *Client) ListBranches(ctx context.Context, opts ListBranchesOptions) ([]Branch, error) {
	owner, repo, err := ownerRepo(opts.Owner, opts.Repo)
	if err != nil {
		return nil, err
	}

	path := newQuery().
		str("sort", opts.Sort).
		str("direction", opts.Direction).
		int("page", opts.Page).
		int("per_page", opts.PerPage).
		apply(fmt.Sprintf("/repos/%s/%s/branches", owner, repo))

	branches := []Branch{}
	if err := c.Do(ctx, http.MethodGet, path, nil, &branches); err != nil {
		return nil, err
	}
	return branches, nil
}

// GetBranch returns the detailed view of one branch.
func (c *Client) GetBranch(ctx context.Context, owner, repo, branch string) (*CompleteBranch, error) {
	owner, repo, err := ownerRepo(owner, repo)
	if err != nil {
		return nil, err
	}
	branch, err = ValidateBranchName(branch)
	if err != nil {
		return nil, err
	}

	var out CompleteBranch
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/%s/branches/%s", owner, repo, escapePath(branch)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
