package gitee

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/developer-mesh/gitee-mcp/internal/apierrors"
)

// GetFileContents returns the file or directory listing at path. branch
// may be empty to read the default branch.
func (c *Client) GetFileContents(ctx context.Context, owner, repo, path, branch string) (*Contents, error) {
	owner, repo, err := ownerRepo(owner, repo)
	if err != nil {
		return nil, err
	}

	target := newQuery().
		str("ref", branch).
		apply(fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, escapePath(path)))

	result, err := c.Request(ctx, target, http.MethodGet, nil, nil)
	if err != nil {
		return nil, err
	}

	if _, isDir := result.([]interface{}); isDir {
		entries := []DirectoryEntry{}
		if err := decodeInto(result, &entries); err != nil {
			return nil, err
		}
		return &Contents{Directory: entries}, nil
	}

	var file FileContent
	if err := decodeInto(result, &file); err != nil {
		return nil, err
	}
	return &Contents{File: &file}, nil
}

// CreateOrUpdateFileOptions describe one file write. Content is plain text;
// it is base64 encoded before sending. A non-empty SHA updates the existing
// file, otherwise a new file is created.
type CreateOrUpdateFileOptions struct {
	Owner   string `json:"owner"`
	Repo    string `json:"repo"`
	Path    string `json:"path"`
	Content string `json:"content"`
	Message string `json:"message"`
	Branch  string `json:"branch,omitempty"`
	SHA     string `json:"sha,omitempty"`
}

// CreateOrUpdateFile writes a single file in one commit.
func (c *Client) CreateOrUpdateFile(ctx context.Context, opts CreateOrUpdateFileOptions) (*FileOperationResult, error) {
	owner, repo, err := ownerRepo(opts.Owner, opts.Repo)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"content": base64.StdEncoding.EncodeToString([]byte(opts.Content)),
		"message": opts.Message,
	}
	if opts.Branch != "" {
		body["branch"] = opts.Branch
	}

	method := http.MethodPost
	if opts.SHA != "" {
		body["sha"] = opts.SHA
		method = http.MethodPut
	}

	var out FileOperationResult
	if err := c.Do(ctx, method, fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, escapePath(opts.Path)), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FileEntry is one file of a PushFiles batch
type FileEntry struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// PushFilesOptions describe a batch of file writes sharing one message
type PushFilesOptions struct {
	Owner   string      `json:"owner"`
	Repo    string      `json:"repo"`
	Branch  string      `json:"branch,omitempty"`
	Message string      `json:"message"`
	Files   []FileEntry `json:"files"`
}

// PushFileResult is the outcome of one file in a batch
type PushFileResult struct {
	Path    string               `json:"path"`
	Success bool                 `json:"success"`
	Result  *FileOperationResult `json:"result,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// PushFilesResult summarises a batch
type PushFilesResult struct {
	Message string           `json:"message"`
	Results []PushFileResult `json:"results"`
}

// PushFiles writes each file in turn, creating it or updating it depending
// on whether it already exists. A named branch must exist before anything is
// written. A failure on one file is recorded in its result and does not stop
// the rest.
func (c *Client) PushFiles(ctx context.Context, opts PushFilesOptions) (*PushFilesResult, error) {
	owner, repo, err := ownerRepo(opts.Owner, opts.Repo)
	if err != nil {
		return nil, err
	}
	if opts.Branch != "" {
		if opts.Branch, err = ValidateBranchName(opts.Branch); err != nil {
			return nil, err
		}
		exists, err := c.BranchExists(ctx, owner, repo, opts.Branch)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, &apierrors.Error{
				Kind:    apierrors.KindNotFound,
				Message: fmt.Sprintf("Branch '%s' not found in %s/%s", opts.Branch, owner, repo),
			}
		}
	}

	results := make([]PushFileResult, 0, len(opts.Files))
	for _, f := range opts.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, c.pushFile(ctx, owner, repo, opts.Branch, opts.Message, f))
	}

	return &PushFilesResult{
		Message: fmt.Sprintf("processed %d files", len(results)),
		Results: results,
	}, nil
}

func (c *Client) pushFile(ctx context.Context, owner, repo, branch, message string, f FileEntry) PushFileResult {
	var sha string
	existing, err := c.GetFileContents(ctx, owner, repo, f.Path, branch)
	switch {
	case err == nil:
		if !existing.IsDirectory() {
			sha = existing.File.SHA
		}
	case apierrors.IsKind(err, apierrors.KindNotFound):
		// new file
	default:
		return PushFileResult{Path: f.Path, Error: err.Error()}
	}

	result, err := c.CreateOrUpdateFile(ctx, CreateOrUpdateFileOptions{
		Owner:   owner,
		Repo:    repo,
		Path:    f.Path,
		Content: f.Content,
		Message: message,
		Branch:  branch,
		SHA:     sha,
	})
	if err != nil {
		return PushFileResult{Path: f.Path, Error: err.Error()}
	}
	return PushFileResult{Path: f.Path, Success: true, Result: result}
}
