package gitee

import (
	"context"
	"fmt"
	"net/http"

	"github.com/developer-mesh/gitee-mcp/internal/apierrors"
)

// BranchExists reports whether owner/repo has branch. Only a NotFound
// answer means false; every other failure is returned.
func (c *Client) BranchExists(ctx context.Context, owner, repo, branch string) (bool, error) {
	owner, repo, err := ownerRepo(owner, repo)
	if err != nil {
		return false, err
	}
	branch, err = ValidateBranchName(branch)
	if err != nil {
		return false, err
	}

	_, err = c.Request(ctx, fmt.Sprintf("/repos/%s/%s/branches/%s", owner, repo, escapePath(branch)), http.MethodGet, nil, nil)
	return existsResult(err)
}

func existsResult(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case apierrors.IsKind(err, apierrors.KindNotFound):
		return false, nil
	default:
		return false, err
	}
}
