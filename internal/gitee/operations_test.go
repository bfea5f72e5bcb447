package gitee

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/developer-mesh/gitee-mcp/internal/apierrors"
)

// recorder captures every request body a stub server receives
type recorder struct {
	mu     sync.Mutex
	calls  []string
	bodies []map[string]interface{}
}

func (rec *recorder) record(r *http.Request) map[string]interface{} {
	var body map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&body)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.calls = append(rec.calls, r.Method+" "+r.URL.Path)
	rec.bodies = append(rec.bodies, body)
	return body
}

func (rec *recorder) last() map[string]interface{} {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.bodies[len(rec.bodies)-1]
}

var userFixture = map[string]interface{}{
	"id":       7,
	"login":    "octo",
	"name":     "Octo Cat",
	"url":      "https://gitee.com/api/v5/users/octo",
	"html_url": "https://gitee.com/octo",
	"type":     "User",
}

func issueFixture(number interface{}) map[string]interface{} {
	return map[string]interface{}{
		"id":     100,
		"number": number,
		"state":  "open",
		"title":  "Bug",
		"body":   nil,
		"user":   userFixture,
		"labels": []interface{}{map[string]interface{}{"id": 1, "name": "bug", "color": "red"}},
	}
}

func TestCreateIssue_CollapsesLists(t *testing.T) {
	rec := &recorder{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/{owner}/{repo}/issues", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		writeJSON(w, http.StatusCreated, issueFixture("I1ABC"))
	})
	client, _ := newTestClient(t, mux)

	issue, err := client.CreateIssue(context.Background(), CreateIssueOptions{
		Owner:     " octo ",
		Repo:      "hello",
		Title:     "Bug",
		Assignees: []string{"a", "b"},
		Labels:    []string{},
	})
	require.NoError(t, err)
	assert.Equal(t, IssueNumber("I1ABC"), issue.Number)
	assert.Equal(t, []string{"POST /repos/octo/hello/issues"}, rec.calls)

	body := rec.last()
	assert.Equal(t, "a,b", body["assignees"])
	assert.NotContains(t, body, "labels")
	assert.Equal(t, "hello", body["repo"])
	assert.Equal(t, "Bug", body["title"])
}

func TestCreateIssue_InvalidOwnerSkipsRequest(t *testing.T) {
	rec := &recorder{}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
	}))

	_, err := client.CreateIssue(context.Background(), CreateIssueOptions{Owner: "bad owner", Repo: "r", Title: "t"})
	require.Error(t, err)
	assert.True(t, apierrors.IsArgumentError(err))
	assert.Empty(t, rec.calls)
}

func TestUpdateIssue_PathAndBody(t *testing.T) {
	rec := &recorder{}
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /repos/{owner}/issues/{number}", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		writeJSON(w, http.StatusOK, issueFixture(r.PathValue("number")))
	})
	client, _ := newTestClient(t, mux)

	issue, err := client.UpdateIssue(context.Background(), UpdateIssueOptions{
		Owner:       "octo",
		Repo:        "hello",
		IssueNumber: "12",
		State:       "closed",
		Labels:      []string{"bug", "ui"},
	})
	require.NoError(t, err)
	assert.Equal(t, IssueNumber("12"), issue.Number)
	assert.Equal(t, []string{"PATCH /repos/octo/issues/12"}, rec.calls)

	body := rec.last()
	assert.Equal(t, "hello", body["repo"])
	assert.Equal(t, "closed", body["state"])
	assert.Equal(t, "bug,ui", body["labels"])
	assert.NotContains(t, body, "title")
}

func TestListIssues_Query(t *testing.T) {
	var query string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/hello/issues", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		q.Del("access_token")
		query = q.Encode()
		writeJSON(w, http.StatusOK, []interface{}{issueFixture(1), issueFixture("I2")})
	})
	client, _ := newTestClient(t, mux)

	issues, err := client.ListIssues(context.Background(), ListIssuesOptions{
		Owner: "octo", Repo: "hello", State: "all", Labels: "bug,ui", PerPage: 50,
	})
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, IssueNumber("1"), issues[0].Number)
	assert.Equal(t, "labels=bug%2Cui&per_page=50&state=all", query)
}

func TestAddIssueComment(t *testing.T) {
	rec := &recorder{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/octo/hello/issues/I9/comments", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"id":     5,
			"body":   "thanks",
			"user":   userFixture,
			"target": map[string]interface{}{"issue": map[string]interface{}{"id": 100, "title": "Bug", "number": "I9"}},
		})
	})
	client, _ := newTestClient(t, mux)

	comment, err := client.AddIssueComment(context.Background(), "octo", "hello", "I9", "thanks")
	require.NoError(t, err)
	assert.Equal(t, "thanks", comment.Body)
	assert.Equal(t, IssueNumber("I9"), comment.Target.Issue.Number)
	assert.Equal(t, map[string]interface{}{"body": "thanks"}, rec.last())
}

func TestCreateBranch_DefaultRef(t *testing.T) {
	rec := &recorder{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/octo/hello/branches", func(w http.ResponseWriter, r *http.Request) {
		body := rec.record(r)
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"name":      body["branch_name"],
			"commit":    map[string]interface{}{"sha": "abc", "url": "https://gitee.com/c/abc"},
			"protected": false,
		})
	})
	client, _ := newTestClient(t, mux)

	branch, err := client.CreateBranch(context.Background(), CreateBranchOptions{Owner: "octo", Repo: "hello", BranchName: "feature/x"})
	require.NoError(t, err)
	assert.Equal(t, "feature/x", branch.Name)
	assert.Equal(t, "master", rec.last()["refs"])

	_, err = client.CreateBranch(context.Background(), CreateBranchOptions{Owner: "octo", Repo: "hello", BranchName: "x", Refs: "develop"})
	require.NoError(t, err)
	assert.Equal(t, "develop", rec.last()["refs"])

	_, err = client.CreateBranch(context.Background(), CreateBranchOptions{Owner: "octo", Repo: "hello", BranchName: "bad..name"})
	assert.True(t, apierrors.IsArgumentError(err))
}

func TestListAndGetBranch(t *testing.T) {
	var query string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/hello/branches", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("sort") + "|" + r.URL.Query().Get("direction")
		writeJSON(w, http.StatusOK, []interface{}{map[string]interface{}{"name": "master", "protected": true}})
	})
	mux.HandleFunc("GET /repos/octo/hello/branches/{branch...}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"name":   r.PathValue("branch"),
			"_links": map[string]interface{}{"self": "s", "html": "h"},
		})
	})
	client, _ := newTestClient(t, mux)

	branches, err := client.ListBranches(context.Background(), ListBranchesOptions{Owner: "octo", Repo: "hello", Sort: "updated", Direction: "desc"})
	require.NoError(t, err)
	require.Len(t, branches, 1)
	assert.True(t, branches[0].Protected)
	assert.Equal(t, "updated|desc", query)

	branch, err := client.GetBranch(context.Background(), "octo", "hello", "release/1.0")
	require.NoError(t, err)
	assert.Equal(t, "release/1.0", branch.Name)
	assert.Equal(t, "h", branch.Links.HTML)
}

func TestGetFileContents_FileAndDirectory(t *testing.T) {
	var ref string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/hello/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		ref = r.URL.Query().Get("ref")
		if r.PathValue("path") == "docs" {
			writeJSON(w, http.StatusOK, []interface{}{
				map[string]interface{}{"type": "file", "name": "a.md", "path": "docs/a.md", "sha": "s1"},
				map[string]interface{}{"type": "dir", "name": "img", "path": "docs/img", "sha": "s2"},
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"type": "file", "name": "README.md", "path": "README.md", "sha": "abc", "size": 5,
			"encoding": "base64", "content": base64.StdEncoding.EncodeToString([]byte("hello")),
		})
	})
	client, _ := newTestClient(t, mux)

	file, err := client.GetFileContents(context.Background(), "octo", "hello", "README.md", "dev")
	require.NoError(t, err)
	assert.False(t, file.IsDirectory())
	assert.Equal(t, "abc", file.File.SHA)
	assert.Equal(t, "dev", ref)

	dir, err := client.GetFileContents(context.Background(), "octo", "hello", "docs", "")
	require.NoError(t, err)
	assert.True(t, dir.IsDirectory())
	require.Len(t, dir.Directory, 2)
	assert.Empty(t, ref)

	raw, err := json.Marshal(dir)
	require.NoError(t, err)
	assert.Equal(t, byte('['), raw[0])
}

func TestCreateOrUpdateFile_MethodBySHA(t *testing.T) {
	rec := &recorder{}
	mux := http.NewServeMux()
	handler := func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"content": map[string]interface{}{"name": "a.txt", "path": "a.txt", "sha": "new"},
			"commit":  map[string]interface{}{"sha": "c1", "message": "msg"},
		})
	}
	mux.HandleFunc("POST /repos/octo/hello/contents/{path...}", handler)
	mux.HandleFunc("PUT /repos/octo/hello/contents/{path...}", handler)
	client, _ := newTestClient(t, mux)

	_, err := client.CreateOrUpdateFile(context.Background(), CreateOrUpdateFileOptions{
		Owner: "octo", Repo: "hello", Path: "a.txt", Content: "hi", Message: "msg",
	})
	require.NoError(t, err)
	body := rec.last()
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("hi")), body["content"])
	assert.NotContains(t, body, "sha")
	assert.NotContains(t, body, "branch")

	result, err := client.CreateOrUpdateFile(context.Background(), CreateOrUpdateFileOptions{
		Owner: "octo", Repo: "hello", Path: "a.txt", Content: "hi", Message: "msg", Branch: "dev", SHA: "old",
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", result.Commit.SHA)
	assert.Equal(t, "old", rec.last()["sha"])
	assert.Equal(t, "dev", rec.last()["branch"])
	assert.Equal(t, []string{"POST /repos/octo/hello/contents/a.txt", "PUT /repos/octo/hello/contents/a.txt"}, rec.calls)
}

func TestPushFiles_PerFileOutcome(t *testing.T) {
	rec := &recorder{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/hello/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("path") {
		case "existing.txt":
			writeJSON(w, http.StatusOK, map[string]interface{}{"type": "file", "name": "existing.txt", "path": "existing.txt", "sha": "sha-1"})
		case "forbidden.txt":
			writeJSON(w, http.StatusForbidden, map[string]interface{}{"message": "no access"})
		default:
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"message": "404 Not Found"})
		}
	})
	write := func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		writeJSON(w, http.StatusOK, map[string]interface{}{"commit": map[string]interface{}{"sha": "c"}})
	}
	mux.HandleFunc("POST /repos/octo/hello/contents/{path...}", write)
	mux.HandleFunc("PUT /repos/octo/hello/contents/{path...}", write)
	client, _ := newTestClient(t, mux)

	result, err := client.PushFiles(context.Background(), PushFilesOptions{
		Owner:   "octo",
		Repo:    "hello",
		Message: "sync",
		Files: []FileEntry{
			{Path: "existing.txt", Content: "1"},
			{Path: "new.txt", Content: "2"},
			{Path: "forbidden.txt", Content: "3"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "processed 3 files", result.Message)
	require.Len(t, result.Results, 3)

	assert.True(t, result.Results[0].Success)
	assert.True(t, result.Results[1].Success)
	assert.False(t, result.Results[2].Success)
	assert.Equal(t, "no access", result.Results[2].Error)

	assert.Equal(t, []string{
		"PUT /repos/octo/hello/contents/existing.txt",
		"POST /repos/octo/hello/contents/new.txt",
	}, rec.calls)
	assert.Equal(t, "sha-1", rec.bodies[0]["sha"])
}

func TestPushFiles_BranchMustExist(t *testing.T) {
	rec := &recorder{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/hello/branches/{branch}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("branch") {
		case "main":
			writeJSON(w, http.StatusOK, map[string]interface{}{"name": "main"})
		case "locked":
			writeJSON(w, http.StatusForbidden, map[string]interface{}{"message": "no access"})
		default:
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"message": "Branch not found"})
		}
	})
	mux.HandleFunc("GET /repos/octo/hello/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"message": "404 Not Found"})
	})
	mux.HandleFunc("POST /repos/octo/hello/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		body := rec.record(r)
		assert.Equal(t, "main", body["branch"])
		writeJSON(w, http.StatusCreated, map[string]interface{}{"commit": map[string]interface{}{"sha": "c"}})
	})
	client, _ := newTestClient(t, mux)
	ctx := context.Background()
	files := []FileEntry{{Path: "a.txt", Content: "A"}}

	_, err := client.PushFiles(ctx, PushFilesOptions{Owner: "octo", Repo: "hello", Branch: "gone", Message: "m", Files: files})
	require.Error(t, err)
	assert.True(t, apierrors.IsKind(err, apierrors.KindNotFound))
	assert.Contains(t, err.Error(), "gone")

	_, err = client.PushFiles(ctx, PushFilesOptions{Owner: "octo", Repo: "hello", Branch: "locked", Message: "m", Files: files})
	assert.True(t, apierrors.IsKind(err, apierrors.KindPermission))

	// nothing is written for a missing or unreadable branch
	assert.Empty(t, rec.calls)

	result, err := client.PushFiles(ctx, PushFilesOptions{Owner: "octo", Repo: "hello", Branch: "main", Message: "m", Files: files})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.True(t, result.Results[0].Success)
	assert.Equal(t, []string{"POST /repos/octo/hello/contents/a.txt"}, rec.calls)
}

func TestPullRequests(t *testing.T) {
	rec := &recorder{}
	pr := map[string]interface{}{
		"id": 1, "number": 3, "state": "open", "title": "Add feature",
		"head": map[string]interface{}{"ref": "feature", "sha": "h"},
		"base": map[string]interface{}{"ref": "master", "sha": "b"},
		"user": userFixture,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/octo/hello/pulls", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		writeJSON(w, http.StatusCreated, pr)
	})
	mux.HandleFunc("GET /repos/octo/hello/pulls/3", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, pr)
	})
	mux.HandleFunc("PATCH /repos/octo/hello/pulls/3", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		writeJSON(w, http.StatusOK, pr)
	})
	mux.HandleFunc("PUT /repos/octo/hello/pulls/3/merge", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		writeJSON(w, http.StatusOK, map[string]interface{}{"sha": "m", "merged": true, "message": "Pull Request 已成功合并"})
	})
	client, _ := newTestClient(t, mux)
	ctx := context.Background()

	created, err := client.CreatePullRequest(ctx, CreatePullRequestOptions{
		Owner: "octo", Repo: "hello", Title: "Add feature", Head: "feature", Base: "master",
		Testers: []string{"qa"}, Labels: []string{},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.Number)
	assert.Equal(t, "qa", rec.last()["testers"])
	assert.NotContains(t, rec.last(), "labels")

	got, err := client.GetPullRequest(ctx, "octo", "hello", 3)
	require.NoError(t, err)
	assert.Equal(t, "feature", got.Head.Ref)

	_, err = client.UpdatePullRequest(ctx, UpdatePullRequestOptions{Owner: "octo", Repo: "hello", PullNumber: 3, State: "closed"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"state": "closed"}, rec.last())

	merged, err := client.MergePullRequest(ctx, MergePullRequestOptions{Owner: "octo", Repo: "hello", PullNumber: 3})
	require.NoError(t, err)
	assert.True(t, merged.Merged)
	assert.Equal(t, "merge", rec.last()["merge_method"])

	_, err = client.CreatePullRequest(ctx, CreatePullRequestOptions{Owner: "octo", Repo: "hello", Title: "x", Head: "a b", Base: "master"})
	assert.True(t, apierrors.IsArgumentError(err))
}

func TestUsers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, userFixture)
	})
	mux.HandleFunc("GET /users/{login}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("login") == "ghost" {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"message": "Not Found User"})
			return
		}
		writeJSON(w, http.StatusOK, userFixture)
	})
	mux.HandleFunc("GET /search/users", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "envelope" {
			writeJSON(w, http.StatusOK, map[string]interface{}{"total_count": 40, "items": []interface{}{userFixture}})
			return
		}
		writeJSON(w, http.StatusOK, []interface{}{userFixture, userFixture})
	})
	client, _ := newTestClient(t, mux)
	ctx := context.Background()

	me, err := client.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "octo", me.Login)

	_, err = client.GetUser(ctx, "ghost")
	assert.True(t, apierrors.IsKind(err, apierrors.KindNotFound))
	assert.Equal(t, "Not Found User", err.Error())

	bare, err := client.SearchUsers(ctx, SearchUsersOptions{Query: "oct"})
	require.NoError(t, err)
	assert.Equal(t, 2, bare.TotalCount)
	assert.Len(t, bare.Items, 2)

	env, err := client.SearchUsers(ctx, SearchUsersOptions{Query: "envelope"})
	require.NoError(t, err)
	assert.Equal(t, 40, env.TotalCount)
	assert.Len(t, env.Items, 1)
}

func TestRepositories(t *testing.T) {
	rec := &recorder{}
	repo := map[string]interface{}{"id": 1, "full_name": "octo/hello", "name": "hello", "path": "hello", "owner": userFixture}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /user/repos", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		writeJSON(w, http.StatusCreated, repo)
	})
	mux.HandleFunc("POST /repos/octo/hello/forks", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		writeJSON(w, http.StatusCreated, repo)
	})
	mux.HandleFunc("GET /search/repositories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []interface{}{repo})
	})
	client, _ := newTestClient(t, mux)
	ctx := context.Background()

	private := true
	created, err := client.CreateRepository(ctx, CreateRepositoryOptions{Name: "hello", Private: &private})
	require.NoError(t, err)
	assert.Equal(t, "octo/hello", created.FullName)
	assert.Equal(t, map[string]interface{}{"name": "hello", "private": true}, rec.last())

	_, err = client.ForkRepository(ctx, ForkRepositoryOptions{Owner: "octo", Repo: "hello", Organization: "acme"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"organization": "acme"}, rec.last())

	_, err = client.ForkRepository(ctx, ForkRepositoryOptions{Owner: "octo", Repo: "hello"})
	require.NoError(t, err)
	assert.Empty(t, rec.last())

	found, err := client.SearchRepositories(ctx, SearchRepositoriesOptions{Query: "hello"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestBranchExists(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/hello/branches/{branch}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("branch") {
		case "main":
			writeJSON(w, http.StatusOK, map[string]interface{}{"name": "main"})
		case "secret":
			writeJSON(w, http.StatusForbidden, map[string]interface{}{"message": "forbidden"})
		default:
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"message": "Branch not found"})
		}
	})
	client, _ := newTestClient(t, mux)
	ctx := context.Background()

	ok, err := client.BranchExists(ctx, "octo", "hello", "main")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.BranchExists(ctx, "octo", "hello", "gone")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = client.BranchExists(ctx, "octo", "hello", "secret")
	assert.True(t, apierrors.IsKind(err, apierrors.KindPermission))
}
