package gitee

import (
	"context"

	"github.com/developer-mesh/gitee-mcp/internal/gitee"
	"github.com/developer-mesh/gitee-mcp/internal/tools"
)

type getBranchInput struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Branch string `json:"branch"`
}

func (p *Provider) branchTools() []tools.ToolDefinition {
	return []tools.ToolDefinition{
		tools.NewTool("create_branch",
			"Create a branch in a Gitee repository",
			tools.ObjectSchema(ownerRepoProperties(map[string]interface{}{
				"branch_name": branchSchema("Name of the new branch"),
				"refs":        tools.StringSchema("Branch, tag or commit to start from. Defaults to '" + gitee.DefaultRef + "'"),
			}), "owner", "repo", "branch_name"),
			p.createBranch),

		tools.NewTool("list_branches",
			"List the branches of a Gitee repository",
			tools.ObjectSchema(ownerRepoProperties(map[string]interface{}{
				"sort":      tools.EnumSchema("Sort field", "name", "updated"),
				"direction": sortDirectionSchema(),
			}, tools.PaginationSchema()), "owner", "repo"),
			p.listBranches),

		tools.NewTool("get_branch",
			"Get one branch of a Gitee repository, including its head commit and protection state",
			tools.ObjectSchema(ownerRepoProperties(map[string]interface{}{
				"branch": branchSchema("Branch name"),
			}), "owner", "repo", "branch"),
			p.getBranch),
	}
}

func (p *Provider) createBranch(ctx context.Context, in gitee.CreateBranchOptions) (*gitee.Branch, error) {
	return p.client.CreateBranch(ctx, in)
}

func (p *Provider) listBranches(ctx context.Context, in gitee.ListBranchesOptions) ([]gitee.Branch, error) {
	return p.client.ListBranches(ctx, in)
}

func (p *Provider) getBranch(ctx context.Context, in getBranchInput) (*gitee.CompleteBranch, error) {
	return p.client.GetBranch(ctx, in.Owner, in.Repo, in.Branch)
}
