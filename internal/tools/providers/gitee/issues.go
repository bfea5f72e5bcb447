package gitee

import (
	"context"

	"github.com/developer-mesh/gitee-mcp/internal/gitee"
	"github.com/developer-mesh/gitee-mcp/internal/tools"
)

type issueInput struct {
	Owner       string            `json:"owner"`
	Repo        string            `json:"repo"`
	IssueNumber gitee.IssueNumber `json:"issue_number"`
}

type addIssueCommentInput struct {
	issueInput
	Body string `json:"body"`
}

func (p *Provider) issueTools() []tools.ToolDefinition {
	issueStates := []string{"open", "progressing", "closed", "rejected"}

	return []tools.ToolDefinition{
		tools.NewTool("create_issue",
			"Create an issue in a Gitee repository",
			tools.ObjectSchema(ownerRepoProperties(map[string]interface{}{
				"title":         tools.NonEmptyStringSchema("Issue title"),
				"body":          tools.StringSchema("Issue description, markdown supported"),
				"assignees":     usersSchema("Usernames to assign"),
				"milestone":     tools.IntegerSchema("Milestone number", tools.Min(1)),
				"labels":        tools.StringArraySchema("Label names"),
				"security_hole": tools.BoolSchema("Mark the issue as a private security report"),
			}), "owner", "repo", "title"),
			p.createIssue),

		tools.NewTool("list_issues",
			"List issues of a Gitee repository",
			tools.ObjectSchema(ownerRepoProperties(map[string]interface{}{
				"state":     tools.EnumSchema("Filter by state", append([]string{"all"}, issueStates...)...),
				"sort":      tools.EnumSchema("Sort field", "created", "updated", "notes_count"),
				"direction": sortDirectionSchema(),
				"milestone": tools.IntegerSchema("Filter by milestone number", tools.Min(1)),
				"labels":    tools.StringSchema("Comma separated label names"),
				"assignee":  tools.StringSchema("Filter by assignee username"),
				"creator":   tools.StringSchema("Filter by creator username"),
				"program":   tools.StringSchema("Filter by program"),
			}, tools.PaginationSchema()), "owner", "repo"),
			p.listIssues),

		tools.NewTool("get_issue",
			"Get one issue of a Gitee repository",
			tools.ObjectSchema(ownerRepoProperties(map[string]interface{}{
				"issue_number": issueNumberSchema(),
			}), "owner", "repo", "issue_number"),
			p.getIssue),

		tools.NewTool("update_issue",
			"Update the title, body, state, assignees, labels or milestone of an issue",
			tools.ObjectSchema(ownerRepoProperties(map[string]interface{}{
				"issue_number": issueNumberSchema(),
				"title":        tools.StringSchema("New title"),
				"body":         tools.StringSchema("New description"),
				"state":        tools.EnumSchema("New state", issueStates...),
				"assignees":    usersSchema("Usernames to assign"),
				"milestone":    tools.IntegerSchema("Milestone number", tools.Min(1)),
				"labels":       tools.StringArraySchema("Label names"),
			}), "owner", "repo", "issue_number"),
			p.updateIssue),

		tools.NewTool("add_issue_comment",
			"Comment on an issue",
			tools.ObjectSchema(ownerRepoProperties(map[string]interface{}{
				"issue_number": issueNumberSchema(),
				"body":         tools.NonEmptyStringSchema("Comment text"),
			}), "owner", "repo", "issue_number", "body"),
			p.addIssueComment),
	}
}

func (p *Provider) createIssue(ctx context.Context, in gitee.CreateIssueOptions) (*gitee.Issue, error) {
	return p.client.CreateIssue(ctx, in)
}

func (p *Provider) listIssues(ctx context.Context, in gitee.ListIssuesOptions) ([]gitee.Issue, error) {
	return p.client.ListIssues(ctx, in)
}

func (p *Provider) getIssue(ctx context.Context, in issueInput) (*gitee.Issue, error) {
	return p.client.GetIssue(ctx, in.Owner, in.Repo, in.IssueNumber)
}

func (p *Provider) updateIssue(ctx context.Context, in gitee.UpdateIssueOptions) (*gitee.Issue, error) {
	return p.client.UpdateIssue(ctx, in)
}

func (p *Provider) addIssueComment(ctx context.Context, in addIssueCommentInput) (*gitee.IssueComment, error) {
	return p.client.AddIssueComment(ctx, in.Owner, in.Repo, in.IssueNumber, in.Body)
}
