package gitee

import (
	"regexp"
	"strings"

	"github.com/developer-mesh/gitee-mcp/internal/apierrors"
)

var (
	ownerPattern   = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*$`)
	repoPattern    = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
	branchInvalids = regexp.MustCompile(`[\s~^:?*\[\\\]]`)
)

// ValidateOwnerName trims and checks a namespace (user, organization or
// enterprise path).
func ValidateOwnerName(owner string) (string, error) {
	s := strings.TrimSpace(owner)
	if s == "" {
		return "", apierrors.NewArgumentError("owner", "must not be empty")
	}
	if !ownerPattern.MatchString(s) {
		return "", apierrors.NewArgumentError("owner", "%q may only contain letters, digits and hyphens and must start with a letter or digit", s)
	}
	return s, nil
}

// ValidateRepositoryName trims and checks a repository path.
func ValidateRepositoryName(repo string) (string, error) {
	s := strings.TrimSpace(repo)
	if s == "" {
		return "", apierrors.NewArgumentError("repo", "must not be empty")
	}
	if !repoPattern.MatchString(s) {
		return "", apierrors.NewArgumentError("repo", "%q may only contain letters, digits, hyphens, periods and underscores", s)
	}
	if strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") {
		return "", apierrors.NewArgumentError("repo", "%q must not start or end with a period", s)
	}
	return s, nil
}

// ValidateBranchName trims and checks a branch name using git's ref rules.
func ValidateBranchName(branch string) (string, error) {
	s := strings.TrimSpace(branch)
	switch {
	case s == "":
		return "", apierrors.NewArgumentError("branch", "must not be empty")
	case strings.Contains(s, ".."):
		return "", apierrors.NewArgumentError("branch", "%q must not contain '..'", s)
	case branchInvalids.MatchString(s):
		return "", apierrors.NewArgumentError("branch", "%q contains invalid characters", s)
	case strings.HasPrefix(s, "/") || strings.HasSuffix(s, "/"):
		return "", apierrors.NewArgumentError("branch", "%q must not start or end with '/'", s)
	case strings.HasSuffix(s, ".lock"):
		return "", apierrors.NewArgumentError("branch", "%q must not end with '.lock'", s)
	}
	return s, nil
}

// ownerRepo validates the pair most operations address
func ownerRepo(owner, repo string) (string, string, error) {
	o, err := ValidateOwnerName(owner)
	if err != nil {
		return "", "", err
	}
	r, err := ValidateRepositoryName(repo)
	if err != nil {
		return "", "", err
	}
	return o, r, nil
}
