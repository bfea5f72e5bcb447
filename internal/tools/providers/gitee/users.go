package gitee

import (
	"context"

	"github.com/developer-mesh/gitee-mcp/internal/gitee"
	"github.com/developer-mesh/gitee-mcp/internal/tools"
)

type getUserInput struct {
	Username string `json:"username"`
}

type noInput struct{}

func (p *Provider) userTools() []tools.ToolDefinition {
	return []tools.ToolDefinition{
		tools.NewTool("get_user",
			"Get a Gitee user's public profile",
			tools.ObjectSchema(map[string]interface{}{
				"username": tools.NonEmptyStringSchema("Username (login)"),
			}, "username"),
			p.getUser),

		tools.NewTool("get_current_user",
			"Get the profile of the user owning the access token",
			tools.ObjectSchema(nil),
			p.getCurrentUser),

		tools.NewTool("search_users",
			"Search Gitee users",
			tools.ObjectSchema(tools.Merge(map[string]interface{}{
				"q":     tools.NonEmptyStringSchema("Search keywords"),
				"sort":  tools.EnumSchema("Sort field", "joined_at"),
				"order": sortDirectionSchema(),
			}, tools.PaginationSchema()), "q"),
			p.searchUsers),
	}
}

func (p *Provider) getUser(ctx context.Context, in getUserInput) (*gitee.User, error) {
	return p.client.GetUser(ctx, in.Username)
}

func (p *Provider) getCurrentUser(ctx context.Context, _ noInput) (*gitee.User, error) {
	return p.client.GetCurrentUser(ctx)
}

func (p *Provider) searchUsers(ctx context.Context, in gitee.SearchUsersOptions) (*gitee.SearchUsersResult, error) {
	return p.client.SearchUsers(ctx, in)
}
