package gitee

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollapseList(t *testing.T) {
	body := map[string]interface{}{"assignees": []string{"stale"}}

	CollapseList(body, "assignees", []string{"a", "b"})
	assert.Equal(t, "a,b", body["assignees"])

	CollapseList(body, "assignees", []string{})
	_, present := body["assignees"]
	assert.False(t, present)

	CollapseList(body, "labels", nil)
	_, present = body["labels"]
	assert.False(t, present)

	CollapseList(body, "labels", []string{"bug"})
	assert.Equal(t, "bug", body["labels"])
}

func TestIssueNumber_UnmarshalJSON(t *testing.T) {
	var in struct {
		N IssueNumber `json:"n"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"n": 42}`), &in))
	assert.Equal(t, IssueNumber("42"), in.N)

	require.NoError(t, json.Unmarshal([]byte(`{"n": "I8ABCD"}`), &in))
	assert.Equal(t, IssueNumber("I8ABCD"), in.N)

	assert.Error(t, json.Unmarshal([]byte(`{"n": true}`), &in))
	assert.Error(t, IssueNumber("  ").validate())
}

func TestQueryBuilder(t *testing.T) {
	path := newQuery().
		str("sort", "name").
		str("direction", "").
		int("page", 2).
		int("per_page", 0).
		int64("milestone", 7).
		apply("/repos/o/r/branches")
	assert.Equal(t, "/repos/o/r/branches?milestone=7&page=2&sort=name", path)

	assert.Equal(t, "/x", newQuery().apply("/x"))
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "docs/read%20me.md", escapePath("/docs/read me.md"))
	assert.Equal(t, "feature/x", escapePath("feature/x"))
}
