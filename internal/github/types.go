package github

// UserInfo describes the authenticated user.
type UserInfo struct {
	Login   string `json:"login"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	ID      int64  `json:"id"`
	HTMLURL string `json:"html_url"`
	Type    string `json:"type"`
}

// Repository is the trimmed repository shape returned by search and get.
type Repository struct {
	FullName      string `json:"full_name"`
	Description   string `json:"description,omitempty"`
	HTMLURL       string `json:"html_url"`
	Language      string `json:"language,omitempty"`
	Stars         int    `json:"stars"`
	Forks         int    `json:"forks"`
	OpenIssues    int    `json:"open_issues"`
	Private       bool   `json:"private"`
	Fork          bool   `json:"fork"`
	DefaultBranch string `json:"default_branch,omitempty"`
}

// Commit is the trimmed commit shape returned by list_commits.
type Commit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	Author  string `json:"author,omitempty"`
	Date    string `json:"date,omitempty"`
	HTMLURL string `json:"html_url"`
}

// Issue is the trimmed issue shape returned by list_issues.
type Issue struct {
	Number    int      `json:"number"`
	Title     string   `json:"title"`
	State     string   `json:"state"`
	Labels    []string `json:"labels"`
	User      string   `json:"user,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
	HTMLURL   string   `json:"html_url"`
}

// IssueContent is the full issue body plus its comment thread.
type IssueContent struct {
	Title       string   `json:"title"`
	Labels      []string `json:"labels"`
	Timestamp   string   `json:"timestamp"`
	Description string   `json:"description"`
	Comments    []string `json:"comments"`
}

// FileEntry is one entry of a directory listing.
type FileEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // file or dir
	Size int    `json:"size,omitempty"`
}

// FileContents is the result of get_file_contents: either a decoded
// file or a directory listing.
type FileContents struct {
	Type    string      `json:"type"` // "file" or "dir"
	Path    string      `json:"path"`
	Content string      `json:"content,omitempty"` // decoded file text
	Entries []FileEntry `json:"entries,omitempty"` // directory listing
	// Message notes undecodable (binary) files while still returning
	// the metadata.
	Message string `json:"message,omitempty"`
}

// CodeResult is one code search match.
type CodeResult struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Repository string `json:"repository"`
	HTMLURL    string `json:"html_url"`
}

// IssueListOptions filters list_issues.
type IssueListOptions struct {
	State     string
	Labels    []string
	Sort      string
	Direction string
}
