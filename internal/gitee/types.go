package gitee

import "encoding/json"

// User is a Gitee account
type User struct {
	ID                int64   `json:"id"`
	Login             string  `json:"login"`
	Name              *string `json:"name"`
	AvatarURL         *string `json:"avatar_url"`
	URL               string  `json:"url"`
	HTMLURL           string  `json:"html_url"`
	Remark            *string `json:"remark"`
	FollowersURL      string  `json:"followers_url"`
	FollowingURL      string  `json:"following_url"`
	GistsURL          string  `json:"gists_url"`
	StarredURL        string  `json:"starred_url"`
	SubscriptionsURL  string  `json:"subscriptions_url"`
	OrganizationsURL  string  `json:"organizations_url"`
	ReposURL          string  `json:"repos_url"`
	EventsURL         string  `json:"events_url"`
	ReceivedEventsURL string  `json:"received_events_url"`
	Type              string  `json:"type"`
	SiteAdmin         bool    `json:"site_admin"`
	Blog              *string `json:"blog,omitempty"`
	Weibo             *string `json:"weibo,omitempty"`
	Bio               *string `json:"bio,omitempty"`
	PublicRepos       *int    `json:"public_repos,omitempty"`
	PublicGists       *int    `json:"public_gists,omitempty"`
	Followers         *int    `json:"followers,omitempty"`
	Following         *int    `json:"following,omitempty"`
	Stared            *int    `json:"stared,omitempty"`
	Watched           *int    `json:"watched,omitempty"`
	CreatedAt         string  `json:"created_at,omitempty"`
	UpdatedAt         string  `json:"updated_at,omitempty"`
	Email             *string `json:"email,omitempty"`
}

// Namespace is the owner path a repository lives under
type Namespace struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}

// Permission describes the caller's rights on a repository
type Permission struct {
	Pull  bool `json:"pull"`
	Push  bool `json:"push"`
	Admin bool `json:"admin"`
}

// Enterprise is the enterprise a repository belongs to
type Enterprise struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Repository is a Gitee repository
type Repository struct {
	ID              int64       `json:"id"`
	FullName        string      `json:"full_name"`
	HumanName       string      `json:"human_name"`
	URL             string      `json:"url"`
	Namespace       Namespace   `json:"namespace"`
	Path            string      `json:"path"`
	Name            string      `json:"name"`
	Owner           User        `json:"owner"`
	Assigner        *User       `json:"assigner"`
	Description     *string     `json:"description"`
	Private         bool        `json:"private"`
	Public          bool        `json:"public"`
	Internal        bool        `json:"internal"`
	Fork            bool        `json:"fork"`
	HTMLURL         string      `json:"html_url"`
	SSHURL          string      `json:"ssh_url"`
	Recommend       *bool       `json:"recommend,omitempty"`
	GVP             *bool       `json:"gvp,omitempty"`
	Homepage        *string     `json:"homepage,omitempty"`
	Language        *string     `json:"language,omitempty"`
	ForksCount      *int        `json:"forks_count,omitempty"`
	StargazersCount *int        `json:"stargazers_count,omitempty"`
	WatchersCount   *int        `json:"watchers_count,omitempty"`
	DefaultBranch   *string     `json:"default_branch,omitempty"`
	OpenIssuesCount *int        `json:"open_issues_count,omitempty"`
	HasIssues       *bool       `json:"has_issues,omitempty"`
	HasWiki         *bool       `json:"has_wiki,omitempty"`
	PullRequests    *bool       `json:"pull_requests_enabled,omitempty"`
	HasPage         *bool       `json:"has_page,omitempty"`
	License         *string     `json:"license,omitempty"`
	Outsourced      *bool       `json:"outsourced,omitempty"`
	ProjectCreator  string      `json:"project_creator,omitempty"`
	Members         []string    `json:"members,omitempty"`
	PushedAt        *string     `json:"pushed_at,omitempty"`
	CreatedAt       string      `json:"created_at,omitempty"`
	UpdatedAt       string      `json:"updated_at,omitempty"`
	Parent          *Repository `json:"parent,omitempty"`
	Enterprise      *Enterprise `json:"enterprise,omitempty"`
	Permission      *Permission `json:"permission,omitempty"`
}

// CommitRef points at a commit
type CommitRef struct {
	SHA string `json:"sha"`
	URL string `json:"url"`
}

// Branch is a repository branch as returned by list and create
type Branch struct {
	Name          string    `json:"name"`
	Commit        CommitRef `json:"commit"`
	Protected     bool      `json:"protected"`
	ProtectionURL string    `json:"protection_url,omitempty"`
}

// BranchLinks are the self and web links of a branch
type BranchLinks struct {
	Self string `json:"self"`
	HTML string `json:"html"`
}

// CompleteBranch is the detailed single-branch view
type CompleteBranch struct {
	Branch
	Links BranchLinks `json:"_links"`
}

// ContentLinks are the self and web links of a content entry
type ContentLinks struct {
	Self string  `json:"self"`
	HTML *string `json:"html"`
}

// FileContent is a single file, content base64 encoded
type FileContent struct {
	Type        string       `json:"type"`
	Encoding    string       `json:"encoding,omitempty"`
	Size        int64        `json:"size"`
	Name        string       `json:"name"`
	Path        string       `json:"path"`
	Content     string       `json:"content,omitempty"`
	SHA         string       `json:"sha"`
	URL         string       `json:"url"`
	HTMLURL     *string      `json:"html_url"`
	DownloadURL *string      `json:"download_url"`
	Links       ContentLinks `json:"_links"`
}

// DirectoryEntry is one item of a directory listing
type DirectoryEntry struct {
	Type        string       `json:"type"`
	Size        int64        `json:"size"`
	Name        string       `json:"name"`
	Path        string       `json:"path"`
	SHA         string       `json:"sha"`
	URL         string       `json:"url"`
	HTMLURL     *string      `json:"html_url"`
	DownloadURL *string      `json:"download_url"`
	Links       ContentLinks `json:"_links"`
}

// Contents is the result of a contents lookup: exactly one of File or
// Directory is set. It renders as the bare file object or entry array.
type Contents struct {
	File      *FileContent
	Directory []DirectoryEntry
}

// IsDirectory reports whether the path named a directory
func (c *Contents) IsDirectory() bool {
	return c.File == nil
}

// MarshalJSON renders whichever variant is set
func (c Contents) MarshalJSON() ([]byte, error) {
	if c.File != nil {
		return json.Marshal(c.File)
	}
	if c.Directory == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.Directory)
}

// GitActor is the author or committer of a commit
type GitActor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Date  string `json:"date"`
}

// ParentRef is a parent commit link
type ParentRef struct {
	SHA     string `json:"sha"`
	URL     string `json:"url"`
	HTMLURL string `json:"html_url,omitempty"`
}

// FileCommit is the commit created by a file write
type FileCommit struct {
	SHA         string      `json:"sha"`
	Author      GitActor    `json:"author"`
	Committer   GitActor    `json:"committer"`
	Message     string      `json:"message"`
	Tree        CommitRef   `json:"tree"`
	Parents     []ParentRef `json:"parents"`
	URL         string      `json:"url,omitempty"`
	HTMLURL     string      `json:"html_url,omitempty"`
	CommentsURL string      `json:"comments_url,omitempty"`
}

// FileOperationResult is returned by file create and update
type FileOperationResult struct {
	Content *FileContent `json:"content"`
	Commit  FileCommit   `json:"commit"`
}

// Label is an issue or pull request label
type Label struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Milestone groups issues and pull requests
type Milestone struct {
	ID           int64   `json:"id"`
	Number       int64   `json:"number"`
	State        string  `json:"state"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	Creator      User    `json:"creator"`
	OpenIssues   int     `json:"open_issues"`
	ClosedIssues int     `json:"closed_issues"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
	DueOn        *string `json:"due_on"`
}

// Issue is a Gitee issue
type Issue struct {
	ID            int64           `json:"id"`
	URL           string          `json:"url"`
	RepositoryURL string          `json:"repository_url"`
	LabelsURL     string          `json:"labels_url"`
	CommentsURL   string          `json:"comments_url"`
	HTMLURL       string          `json:"html_url"`
	Number        IssueNumber     `json:"number"`
	State         string          `json:"state"`
	Title         string          `json:"title"`
	Body          *string         `json:"body"`
	User          User            `json:"user"`
	Labels        []Label         `json:"labels"`
	Assignee      *User           `json:"assignee"`
	Milestone     *Milestone      `json:"milestone"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
	ClosedAt      *string         `json:"closed_at,omitempty"`
	FinishedAt    *string         `json:"finished_at,omitempty"`
	PlanStartedAt *string         `json:"plan_started_at,omitempty"`
	Deadline      *string         `json:"deadline,omitempty"`
	SecurityHole  *bool           `json:"security_hole,omitempty"`
	ParentURL     *string         `json:"parent_url,omitempty"`
	ParentID      *int64          `json:"parent_id,omitempty"`
	Depth         *int            `json:"depth,omitempty"`
	Comments      *int            `json:"comments,omitempty"`
	Priority      *int            `json:"priority,omitempty"`
	IssueType     string          `json:"issue_type,omitempty"`
	IssueState    string          `json:"issue_state,omitempty"`
	Program       json.RawMessage `json:"program,omitempty"`
	Branch        json.RawMessage `json:"branch,omitempty"`
	Collaborators json.RawMessage `json:"collaborators,omitempty"`
	Assignees     json.RawMessage `json:"assignees,omitempty"`
}

// IssueTarget identifies what a comment was left on
type IssueTarget struct {
	Issue *struct {
		ID     int64       `json:"id"`
		Title  string      `json:"title"`
		Number IssueNumber `json:"number"`
	} `json:"issue,omitempty"`
	PullRequest json.RawMessage `json:"pull_request"`
}

// IssueComment is a comment on an issue
type IssueComment struct {
	ID        int64           `json:"id"`
	Body      string          `json:"body"`
	User      User            `json:"user"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
	HTMLURL   string          `json:"html_url,omitempty"`
	Target    IssueTarget     `json:"target"`
	Source    json.RawMessage `json:"source"`
}

// PullRequestRef is the head or base side of a pull request
type PullRequestRef struct {
	Label string      `json:"label"`
	Ref   string      `json:"ref"`
	SHA   string      `json:"sha"`
	User  User        `json:"user"`
	Repo  *Repository `json:"repo,omitempty"`
}

// PullRequest is a Gitee pull request
type PullRequest struct {
	ID             int64                 `json:"id"`
	URL            string                `json:"url"`
	HTMLURL        string                `json:"html_url"`
	DiffURL        string                `json:"diff_url,omitempty"`
	PatchURL       string                `json:"patch_url,omitempty"`
	IssueURL       string                `json:"issue_url,omitempty"`
	CommitsURL     string                `json:"commits_url,omitempty"`
	CommentsURL    string                `json:"comments_url,omitempty"`
	Number         int64                 `json:"number"`
	State          string                `json:"state"`
	Title          string                `json:"title"`
	Body           *string               `json:"body"`
	Assignees      []User                `json:"assignees,omitempty"`
	Testers        []User                `json:"testers,omitempty"`
	Labels         []Label               `json:"labels,omitempty"`
	Milestone      *Milestone            `json:"milestone,omitempty"`
	Locked         *bool                 `json:"locked,omitempty"`
	CreatedAt      string                `json:"created_at"`
	UpdatedAt      string                `json:"updated_at"`
	ClosedAt       *string               `json:"closed_at,omitempty"`
	MergedAt       *string               `json:"merged_at,omitempty"`
	Head           PullRequestRef        `json:"head"`
	Base           PullRequestRef        `json:"base"`
	Links          map[string]HrefObject `json:"_links,omitempty"`
	User           User                  `json:"user"`
	MergeCommitSHA *string               `json:"merge_commit_sha,omitempty"`
	Mergeable      *bool                 `json:"mergeable,omitempty"`
}

// HrefObject wraps a link
type HrefObject struct {
	Href string `json:"href"`
}

// MergeResult is the provider's answer to a merge request
type MergeResult struct {
	SHA     string `json:"sha,omitempty"`
	Merged  bool   `json:"merged"`
	Message string `json:"message,omitempty"`
}

// SearchUsersResult is a page of user search results
type SearchUsersResult struct {
	TotalCount int    `json:"total_count"`
	Items      []User `json:"items"`
}
