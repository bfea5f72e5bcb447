// Package gitee exposes the Gitee REST operations as MCP tools.
package gitee

import (
	"github.com/developer-mesh/gitee-mcp/internal/gitee"
	"github.com/developer-mesh/gitee-mcp/internal/observability"
	"github.com/developer-mesh/gitee-mcp/internal/tools"
)

// Provider groups the Gitee tools around one API client
type Provider struct {
	client *gitee.Client
	logger observability.Logger
}

// NewProvider creates a provider backed by client
func NewProvider(client *gitee.Client, logger observability.Logger) *Provider {
	if logger == nil {
		logger = observability.NewNoopLogger()
	}
	return &Provider{
		client: client,
		logger: logger.WithPrefix("gitee-tools"),
	}
}

// GetDefinitions returns every Gitee tool in listing order
func (p *Provider) GetDefinitions() []tools.ToolDefinition {
	var defs []tools.ToolDefinition
	defs = append(defs, p.repositoryTools()...)
	defs = append(defs, p.branchTools()...)
	defs = append(defs, p.fileTools()...)
	defs = append(defs, p.issueTools()...)
	defs = append(defs, p.pullRequestTools()...)
	defs = append(defs, p.userTools()...)
	return defs
}
