package gitee

import (
	"context"
	"net/http"
)

// GetUser fetches a user by login.
func (c *Client) GetUser(ctx context.Context, username string) (*User, error) {
	username, err := ValidateOwnerName(username)
	if err != nil {
		return nil, err
	}

	var out User
	if err := c.Do(ctx, http.MethodGet, "/users/"+username, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCurrentUser fetches the account the token belongs to.
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	var out User
	if err := c.Do(ctx, http.MethodGet, "/user", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchUsersOptions filter a user search
type SearchUsersOptions struct {
	Query   string `json:"q"`
	Page    int    `json:"page,omitempty"`
	PerPage int    `json:"per_page,omitempty"`
	Sort    string `json:"sort,omitempty"`
	Order   string `json:"order,omitempty"`
}

// SearchUsers searches users. Gitee answers with either a bare array or a
// {total_count, items} envelope; both are normalised to the envelope.
func (c *Client) SearchUsers(ctx context.Context, opts SearchUsersOptions) (*SearchUsersResult, error) {
	path := newQuery().
		str("q", opts.Query).
		int("page", opts.Page).
		int("per_page", opts.PerPage).
		str("sort", opts.Sort).
		str("order", opts.Order).
		apply("/search/users")

	result, err := c.Request(ctx, path, http.MethodGet, nil, nil)
	if err != nil {
		return nil, err
	}

	out := &SearchUsersResult{Items: []User{}}
	if err := decodeInto(searchItems(result), &out.Items); err != nil {
		return nil, err
	}

	out.TotalCount = len(out.Items)
	if m, ok := result.(map[string]interface{}); ok {
		var total struct {
			TotalCount int `json:"total_count"`
		}
		if err := decodeInto(m, &total); err == nil {
			out.TotalCount = total.TotalCount
		}
	}
	return out, nil
}
