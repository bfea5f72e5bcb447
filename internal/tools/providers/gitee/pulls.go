package gitee

import (
	"context"

	"github.com/developer-mesh/gitee-mcp/internal/gitee"
	"github.com/developer-mesh/gitee-mcp/internal/tools"
)

type pullInput struct {
	Owner      string `json:"owner"`
	Repo       string `json:"repo"`
	PullNumber int64  `json:"pull_number"`
}

func (p *Provider) pullRequestTools() []tools.ToolDefinition {
	return []tools.ToolDefinition{
		tools.NewTool("create_pull_request",
			"Open a pull request from head into base",
			tools.ObjectSchema(ownerRepoProperties(map[string]interface{}{
				"title":               tools.NonEmptyStringSchema("Pull request title"),
				"head":                branchSchema("Source branch, or 'owner:branch' for a fork"),
				"base":                branchSchema("Target branch"),
				"body":                tools.StringSchema("Pull request description"),
				"milestone_number":    tools.IntegerSchema("Milestone number", tools.Min(1)),
				"labels":              tools.StringArraySchema("Label names"),
				"issue":               tools.StringSchema("Issue number to link"),
				"assignees":           usersSchema("Reviewer usernames"),
				"testers":             usersSchema("Tester usernames"),
				"prune_source_branch": tools.BoolSchema("Delete the source branch after merge"),
			}), "owner", "repo", "title", "head", "base"),
			p.createPullRequest),

		tools.NewTool("list_pull_requests",
			"List pull requests of a Gitee repository",
			tools.ObjectSchema(ownerRepoProperties(map[string]interface{}{
				"state":     tools.EnumSchema("Filter by state", "open", "closed", "merged", "all"),
				"sort":      tools.EnumSchema("Sort field", "created", "updated", "popularity", "long-running"),
				"direction": sortDirectionSchema(),
				"milestone": tools.IntegerSchema("Filter by milestone number", tools.Min(1)),
				"labels":    tools.StringSchema("Comma separated label names"),
			}, tools.PaginationSchema()), "owner", "repo"),
			p.listPullRequests),

		tools.NewTool("get_pull_request",
			"Get one pull request",
			tools.ObjectSchema(ownerRepoProperties(map[string]interface{}{
				"pull_number": pullNumberSchema(),
			}), "owner", "repo", "pull_number"),
			p.getPullRequest),

		tools.NewTool("update_pull_request",
			"Update the title, body, state, labels, reviewers or testers of a pull request",
			tools.ObjectSchema(ownerRepoProperties(map[string]interface{}{
				"pull_number":      pullNumberSchema(),
				"title":            tools.StringSchema("New title"),
				"body":             tools.StringSchema("New description"),
				"state":            tools.EnumSchema("New state", "open", "closed"),
				"milestone_number": tools.IntegerSchema("Milestone number", tools.Min(1)),
				"labels":           tools.StringArraySchema("Label names"),
				"assignees":        usersSchema("Reviewer usernames"),
				"testers":          usersSchema("Tester usernames"),
			}), "owner", "repo", "pull_number"),
			p.updatePullRequest),

		tools.NewTool("merge_pull_request",
			"Merge a pull request",
			tools.ObjectSchema(ownerRepoProperties(map[string]interface{}{
				"pull_number":         pullNumberSchema(),
				"merge_method":        tools.EnumSchema("Merge strategy. Defaults to 'merge'", "merge", "squash", "rebase"),
				"prune_source_branch": tools.BoolSchema("Delete the source branch after merge"),
				"title":               tools.StringSchema("Merge commit title"),
				"description":         tools.StringSchema("Merge commit description"),
			}), "owner", "repo", "pull_number"),
			p.mergePullRequest),
	}
}

func (p *Provider) createPullRequest(ctx context.Context, in gitee.CreatePullRequestOptions) (*gitee.PullRequest, error) {
	return p.client.CreatePullRequest(ctx, in)
}

func (p *Provider) listPullRequests(ctx context.Context, in gitee.ListPullRequestsOptions) ([]gitee.PullRequest, error) {
	return p.client.ListPullRequests(ctx, in)
}

func (p *Provider) getPullRequest(ctx context.Context, in pullInput) (*gitee.PullRequest, error) {
	return p.client.GetPullRequest(ctx, in.Owner, in.Repo, in.PullNumber)
}

func (p *Provider) updatePullRequest(ctx context.Context, in gitee.UpdatePullRequestOptions) (*gitee.PullRequest, error) {
	return p.client.UpdatePullRequest(ctx, in)
}

func (p *Provider) mergePullRequest(ctx context.Context, in gitee.MergePullRequestOptions) (*gitee.MergeResult, error) {
	return p.client.MergePullRequest(ctx, in)
}
