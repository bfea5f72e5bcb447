package gitee

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/developer-mesh/gitee-mcp/internal/apierrors"
)

// CollapseList sets key in body to the comma-joined values, or removes key
// when values is empty. Gitee expects list fields such as assignees and
// labels as a single comma-separated string.
func CollapseList(body map[string]interface{}, key string, values []string) {
	if len(values) == 0 {
		delete(body, key)
		return
	}
	body[key] = strings.Join(values, ",")
}

// query accumulates optional query parameters, skipping zero values
type query struct {
	v url.Values
}

func newQuery() *query {
	return &query{v: url.Values{}}
}

func (q *query) str(key, value string) *query {
	if value != "" {
		q.v.Set(key, value)
	}
	return q
}

func (q *query) int(key string, value int) *query {
	if value != 0 {
		q.v.Set(key, strconv.Itoa(value))
	}
	return q
}

func (q *query) int64(key string, value int64) *query {
	if value != 0 {
		q.v.Set(key, strconv.FormatInt(value, 10))
	}
	return q
}

// apply appends the encoded parameters to path
func (q *query) apply(path string) string {
	if len(q.v) == 0 {
		return path
	}
	return path + "?" + q.v.Encode()
}

// escapePath escapes each segment of a slash separated path
func escapePath(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// IssueNumber identifies an issue. Gitee issue numbers are strings such as
// "I8ABCD", but callers frequently pass plain integers.
type IssueNumber string

// UnmarshalJSON accepts a JSON string or number
func (n *IssueNumber) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = IssueNumber(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("issue number must be a string or number: %w", err)
	}
	*n = IssueNumber(num.String())
	return nil
}

func (n IssueNumber) String() string {
	return strings.TrimSpace(string(n))
}

func (n IssueNumber) validate() error {
	if n.String() == "" {
		return apierrors.NewArgumentError("issue_number", "must not be empty")
	}
	return nil
}
