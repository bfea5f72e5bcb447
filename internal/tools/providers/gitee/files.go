package gitee

import (
	"context"

	"github.com/developer-mesh/gitee-mcp/internal/gitee"
	"github.com/developer-mesh/gitee-mcp/internal/tools"
)

type getFileContentsInput struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Path   string `json:"path"`
	Branch string `json:"branch,omitempty"`
}

func (p *Provider) fileTools() []tools.ToolDefinition {
	return []tools.ToolDefinition{
		tools.NewTool("get_file_contents",
			"Get the contents of a file, or the listing of a directory, in a Gitee repository",
			tools.ObjectSchema(ownerRepoProperties(map[string]interface{}{
				"path":   tools.StringSchema("Path to the file or directory"),
				"branch": tools.StringSchema("Branch to read from. Defaults to the repository default branch"),
			}), "owner", "repo", "path"),
			p.getFileContents),

		tools.NewTool("create_or_update_file",
			"Create a file, or update it when the blob sha of the current version is given",
			tools.ObjectSchema(ownerRepoProperties(map[string]interface{}{
				"path":    tools.NonEmptyStringSchema("Path of the file"),
				"content": tools.StringSchema("New file content as plain text"),
				"message": tools.NonEmptyStringSchema("Commit message"),
				"branch":  tools.StringSchema("Branch to commit to"),
				"sha":     tools.StringSchema("Blob sha of the file being replaced. Required to update"),
			}), "owner", "repo", "path", "content", "message"),
			p.createOrUpdateFile),

		tools.NewTool("push_files",
			"Write several files to a branch, one commit per file, reporting the outcome of each",
			tools.ObjectSchema(ownerRepoProperties(map[string]interface{}{
				"branch":  branchSchema("Branch to push to"),
				"message": tools.NonEmptyStringSchema("Commit message"),
				"files": map[string]interface{}{
					"type":        "array",
					"description": "Files to write",
					"minItems":    1,
					"items": tools.ObjectSchema(map[string]interface{}{
						"path":    tools.NonEmptyStringSchema("Path of the file"),
						"content": tools.StringSchema("File content as plain text"),
					}, "path", "content"),
				},
			}), "owner", "repo", "branch", "message", "files"),
			p.pushFiles),
	}
}

func (p *Provider) getFileContents(ctx context.Context, in getFileContentsInput) (*gitee.Contents, error) {
	return p.client.GetFileContents(ctx, in.Owner, in.Repo, in.Path, in.Branch)
}

func (p *Provider) createOrUpdateFile(ctx context.Context, in gitee.CreateOrUpdateFileOptions) (*gitee.FileOperationResult, error) {
	return p.client.CreateOrUpdateFile(ctx, in)
}

func (p *Provider) pushFiles(ctx context.Context, in gitee.PushFilesOptions) (*gitee.PushFilesResult, error) {
	result, err := p.client.PushFiles(ctx, in)
	if err != nil {
		return nil, err
	}

	failed := 0
	for _, r := range result.Results {
		if !r.Success {
			failed++
		}
	}
	if failed > 0 {
		p.logger.Warn("Some files could not be pushed", map[string]interface{}{
			"owner":  in.Owner,
			"repo":   in.Repo,
			"failed": failed,
			"total":  len(result.Results),
		})
	}
	return result, nil
}
