package gitee

import (
	"context"

	"github.com/developer-mesh/gitee-mcp/internal/gitee"
	"github.com/developer-mesh/gitee-mcp/internal/tools"
)

func (p *Provider) repositoryTools() []tools.ToolDefinition {
	return []tools.ToolDefinition{
		tools.NewTool("create_repository",
			"Create a new Gitee repository for the authenticated user",
			tools.ObjectSchema(map[string]interface{}{
				"name":               tools.NonEmptyStringSchema("Repository name"),
				"description":        tools.StringSchema("Repository description"),
				"homepage":           tools.StringSchema("Project homepage URL"),
				"private":            tools.BoolSchema("Whether the repository is private"),
				"has_issues":         tools.BoolSchema("Enable issues"),
				"has_wiki":           tools.BoolSchema("Enable the wiki"),
				"auto_init":          tools.BoolSchema("Create an initial commit with a README"),
				"gitignore_template": tools.StringSchema("Name of a .gitignore template, e.g. 'Go'"),
				"license_template":   tools.StringSchema("License template, e.g. 'MIT'"),
				"path":               tools.StringSchema("Repository path, defaults to the name"),
			}, "name"),
			p.createRepository),

		tools.NewTool("fork_repository",
			"Fork a Gitee repository to the authenticated user or an organization",
			tools.ObjectSchema(ownerRepoProperties(map[string]interface{}{
				"organization": tools.StringSchema("Organization path to fork into. Defaults to the current user"),
			}), "owner", "repo"),
			p.forkRepository),

		tools.NewTool("search_repositories",
			"Search public Gitee repositories",
			tools.ObjectSchema(tools.Merge(map[string]interface{}{
				"q":        tools.NonEmptyStringSchema("Search keywords"),
				"owner":    tools.StringSchema("Restrict to repositories of this owner"),
				"fork":     tools.BoolSchema("Include forks"),
				"language": tools.StringSchema("Restrict to a language, e.g. 'Go'"),
				"sort":     tools.EnumSchema("Sort field", "last_push_at", "stars_count", "forks_count", "watches_count"),
				"order":    sortDirectionSchema(),
			}, tools.PaginationSchema()), "q"),
			p.searchRepositories),
	}
}

func (p *Provider) createRepository(ctx context.Context, in gitee.CreateRepositoryOptions) (*gitee.Repository, error) {
	return p.client.CreateRepository(ctx, in)
}

func (p *Provider) forkRepository(ctx context.Context, in gitee.ForkRepositoryOptions) (*gitee.Repository, error) {
	return p.client.ForkRepository(ctx, in)
}

func (p *Provider) searchRepositories(ctx context.Context, in gitee.SearchRepositoriesOptions) ([]gitee.Repository, error) {
	return p.client.SearchRepositories(ctx, in)
}
