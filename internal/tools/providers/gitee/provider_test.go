package gitee

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/developer-mesh/gitee-mcp/internal/apierrors"
	"github.com/developer-mesh/gitee-mcp/internal/config"
	"github.com/developer-mesh/gitee-mcp/internal/gitee"
	"github.com/developer-mesh/gitee-mcp/internal/tools"
)

var expectedTools = []string{
	"create_repository",
	"fork_repository",
	"search_repositories",
	"create_branch",
	"list_branches",
	"get_branch",
	"get_file_contents",
	"create_or_update_file",
	"push_files",
	"create_issue",
	"list_issues",
	"get_issue",
	"update_issue",
	"add_issue_comment",
	"create_pull_request",
	"list_pull_requests",
	"get_pull_request",
	"update_pull_request",
	"merge_pull_request",
	"get_user",
	"get_current_user",
	"search_users",
}

type captured struct {
	mu     sync.Mutex
	method string
	path   string
	body   map[string]interface{}
	calls  int
}

func (c *captured) record(r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.method = r.Method
	c.path = r.URL.Path
	c.body = nil
	_ = json.NewDecoder(r.Body).Decode(&c.body)
	c.calls++
}

func newTestRegistry(t *testing.T, handler http.Handler) *tools.Registry {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := gitee.NewClient(config.GiteeConfig{BaseURL: srv.URL, Token: "test-token"})
	registry := tools.NewRegistry()
	require.NoError(t, registry.RegisterProvider(NewProvider(client, nil)))
	return registry
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestProvider_Definitions(t *testing.T) {
	registry := newTestRegistry(t, http.NotFoundHandler())

	var names []string
	for def := range registry.All() {
		names = append(names, def.Name)
		assert.NotEmpty(t, def.Description, def.Name)
		assert.Equal(t, "object", def.InputSchema["type"], def.Name)
	}
	assert.Equal(t, expectedTools, names)
	assert.Equal(t, len(expectedTools), registry.Count())
}

func TestProvider_MissingArgumentsForEveryTool(t *testing.T) {
	registry := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	}))

	for _, name := range expectedTools {
		_, err := registry.Execute(context.Background(), name, nil)
		require.Error(t, err, name)
		assert.ErrorIs(t, err, tools.ErrMissingArguments, name)
	}
}

func TestProvider_CreateIssueRequiresTitle(t *testing.T) {
	rec := &captured{}
	registry := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
	}))

	_, err := registry.Execute(context.Background(), "create_issue", json.RawMessage(`{"owner":"o","repo":"r"}`))
	require.Error(t, err)

	ie, ok := tools.AsInvocationError(err)
	require.True(t, ok)
	assert.Equal(t, tools.CodeInvalidInput, ie.Code)
	assert.Contains(t, err.Error(), "title")
	assert.Zero(t, rec.calls)
}

func TestProvider_ConflictPropagatesUnchanged(t *testing.T) {
	registry := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]interface{}{"message": "dup"})
	}))

	_, err := registry.Execute(context.Background(), "create_issue", json.RawMessage(`{"owner":"o","repo":"r","title":"t"}`))
	require.Error(t, err)

	apiErr, ok := apierrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apierrors.KindConflict, apiErr.Kind)
	assert.Equal(t, "dup", apiErr.Message)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}

func TestProvider_CreateIssueCollapsesLists(t *testing.T) {
	rec := &captured{}
	registry := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"id": 1, "number": "I1", "title": "t", "state": "open",
		})
	}))

	result, err := registry.Invoke(context.Background(), "create_issue", json.RawMessage(
		`{"owner":"o","repo":"r","title":"t","labels":["a","b"],"assignees":[]}`))
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/repos/o/r/issues", rec.path)
	assert.Equal(t, "a,b", rec.body["labels"])
	assert.NotContains(t, rec.body, "assignees")
	assert.Equal(t, "r", rec.body["repo"])

	require.Len(t, result.Content, 1)
	assert.Contains(t, result.Content[0].Text, `"number": "I1"`)
}

func TestProvider_IssueNumberAcceptsIntegers(t *testing.T) {
	rec := &captured{}
	registry := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": 1, "number": "42"})
	}))

	_, err := registry.Execute(context.Background(), "get_issue", json.RawMessage(`{"owner":"o","repo":"r","issue_number":42}`))
	require.NoError(t, err)
	assert.Equal(t, "/repos/o/r/issues/42", rec.path)

	_, err = registry.Execute(context.Background(), "get_issue", json.RawMessage(`{"owner":"o","repo":"r","issue_number":true}`))
	ie, ok := tools.AsInvocationError(err)
	require.True(t, ok)
	assert.Equal(t, "issue_number", ie.Violations[0].Field)
}

func TestProvider_LocalValidationRejectsBadOwner(t *testing.T) {
	rec := &captured{}
	registry := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
	}))

	_, err := registry.Execute(context.Background(), "list_branches", json.RawMessage(`{"owner":"-bad","repo":"r"}`))
	require.Error(t, err)
	assert.True(t, apierrors.IsArgumentError(err))
	assert.False(t, apierrors.IsKnown(err))
	assert.Zero(t, rec.calls)
}

func TestProvider_GetCurrentUserTakesEmptyObject(t *testing.T) {
	registry := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": 7, "login": "octo"})
	}))

	result, err := registry.Execute(context.Background(), "get_current_user", json.RawMessage(`{}`))
	require.NoError(t, err)

	user, ok := result.(*gitee.User)
	require.True(t, ok)
	assert.Equal(t, "octo", user.Login)
}

func TestProvider_PushFilesReportsPerFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/branches/main", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"name": "main"})
	})
	mux.HandleFunc("GET /repos/o/r/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"message": "404 Not Found"})
	})
	mux.HandleFunc("POST /repos/o/r/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("path") == "bad.txt" {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "bad path"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"content": map[string]interface{}{"name": r.PathValue("path"), "path": r.PathValue("path"), "sha": "abc"},
			"commit":  map[string]interface{}{"sha": "c1"},
		})
	})
	registry := newTestRegistry(t, mux)

	result, err := registry.Execute(context.Background(), "push_files", json.RawMessage(`{
		"owner":"o","repo":"r","branch":"main","message":"m",
		"files":[{"path":"a.txt","content":"A"},{"path":"bad.txt","content":"B"}]}`))
	require.NoError(t, err)

	out, ok := result.(*gitee.PushFilesResult)
	require.True(t, ok)
	require.Len(t, out.Results, 2)
	assert.True(t, out.Results[0].Success)
	assert.False(t, out.Results[1].Success)
	assert.Equal(t, "bad path", out.Results[1].Error)
}
