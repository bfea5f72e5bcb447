package gitee

import "github.com/developer-mesh/gitee-mcp/internal/tools"

// Common schema fragments shared by the Gitee tools

func ownerSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Repository owner, a user or organization path (e.g., 'oschina')",
		"minLength":   1,
	}
}

func repoSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Repository path (e.g., 'git-osc')",
		"minLength":   1,
	}
}

func branchSchema(description string) map[string]interface{} {
	return tools.NonEmptyStringSchema(description)
}

func issueNumberSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        []string{"string", "integer"},
		"description": "Issue number, e.g. 'I8ABCD'",
	}
}

func pullNumberSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Pull request number",
		"minimum":     1,
	}
}

func usersSchema(description string) map[string]interface{} {
	return tools.StringArraySchema(description)
}

func sortDirectionSchema() map[string]interface{} {
	return tools.EnumSchema("Sort direction", "asc", "desc")
}

func ownerRepoProperties(extra ...map[string]interface{}) map[string]interface{} {
	base := map[string]interface{}{
		"owner": ownerSchema(),
		"repo":  repoSchema(),
	}
	return tools.Merge(append([]map[string]interface{}{base}, extra...)...)
}
