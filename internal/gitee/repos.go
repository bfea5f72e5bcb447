package gitee

import (
	"context"
	"fmt"
	"net/http"
)

// CreateRepositoryOptions are the fields accepted when creating a
// repository under the authenticated user
type CreateRepositoryOptions struct {
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	Homepage          string `json:"homepage,omitempty"`
	Private           *bool  `json:"private,omitempty"`
	HasIssues         *bool  `json:"has_issues,omitempty"`
	HasWiki           *bool  `json:"has_wiki,omitempty"`
	AutoInit          *bool  `json:"auto_init,omitempty"`
	GitignoreTemplate string `json:"gitignore_template,omitempty"`
	LicenseTemplate   string `json:"license_template,omitempty"`
	Path              string `json:"path,omitempty"`
}

// CreateRepository creates a repository for the authenticated user.
func (c *Client) CreateRepository(ctx context.Context, opts CreateRepositoryOptions) (*Repository, error) {
	if opts.Path != "" {
		p, err := ValidateRepositoryName(opts.Path)
		if err != nil {
			return nil, err
		}
		opts.Path = p
	}

	var repo Repository
	if err := c.Do(ctx, http.MethodPost, "/user/repos", opts, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// ForkRepositoryOptions identify the repository to fork and, optionally,
// the organization that receives the fork
type ForkRepositoryOptions struct {
	Owner        string `json:"owner"`
	Repo         string `json:"repo"`
	Organization string `json:"organization,omitempty"`
}

// ForkRepository forks owner/repo into the caller's account or an
// organization.
func (c *Client) ForkRepository(ctx context.Context, opts ForkRepositoryOptions) (*Repository, error) {
	owner, repo, err := ownerRepo(opts.Owner, opts.Repo)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{}
	if opts.Organization != "" {
		org, err := ValidateOwnerName(opts.Organization)
		if err != nil {
			return nil, err
		}
		body["organization"] = org
	}

	var out Repository
	if err := c.Do(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/%s/forks", owner, repo), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchRepositoriesOptions filter a repository search
type SearchRepositoriesOptions struct {
	Query    string `json:"q"`
	Owner    string `json:"owner,omitempty"`
	Fork     *bool  `json:"fork,omitempty"`
	Language string `json:"language,omitempty"`
	Sort     string `json:"sort,omitempty"`
	Order    string `json:"order,omitempty"`
	Page     int    `json:"page,omitempty"`
	PerPage  int    `json:"per_page,omitempty"`
}

// SearchRepositories searches public repositories.
func (c *Client) SearchRepositories(ctx context.Context, opts SearchRepositoriesOptions) ([]Repository, error) {
	q := newQuery().
		str("q", opts.Query).
		str("owner", opts.Owner).
		str("language", opts.Language).
		str("sort", opts.Sort).
		str("order", opts.Order).
		int("page", opts.Page).
		int("per_page", opts.PerPage)
	if opts.Fork != nil {
		q.str("fork", fmt.Sprintf("%t", *opts.Fork))
	}

	result, err := c.Request(ctx, q.apply("/search/repositories"), http.MethodGet, nil, nil)
	if err != nil {
		return nil, err
	}

	repos := []Repository{}
	if err := decodeInto(searchItems(result), &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// searchItems unwraps {"items": [...]} envelopes; bare arrays pass through
func searchItems(result interface{}) interface{} {
	if m, ok := result.(map[string]interface{}); ok {
		if items, ok := m["items"]; ok && items != nil {
			return items
		}
		return []interface{}{}
	}
	if result == nil {
		return []interface{}{}
	}
	return result
}
