package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/huangjien/devops-mcps/internal/github"
)

type searchRepositoriesArgs struct {
	Query string `json:"query" jsonschema:"the GitHub repository search query"`
}

type getFileContentsArgs struct {
	Owner  string `json:"owner" jsonschema:"repository owner"`
	Repo   string `json:"repo" jsonschema:"repository name"`
	Path   string `json:"path" jsonschema:"file or directory path within the repository"`
	Branch string `json:"branch,omitempty" jsonschema:"branch, tag or commit SHA (default branch when empty)"`
}

type listCommitsArgs struct {
	Owner  string `json:"owner" jsonschema:"repository owner"`
	Repo   string `json:"repo" jsonschema:"repository name"`
	Branch string `json:"branch,omitempty" jsonschema:"branch to list commits from (default branch when empty)"`
}

type listIssuesArgs struct {
	Owner     string   `json:"owner" jsonschema:"repository owner"`
	Repo      string   `json:"repo" jsonschema:"repository name"`
	State     string   `json:"state,omitempty" jsonschema:"issue state: open, closed or all (default open)"`
	Labels    []string `json:"labels,omitempty" jsonschema:"filter by label names"`
	Sort      string   `json:"sort,omitempty" jsonschema:"sort field: created, updated or comments (default created)"`
	Direction string   `json:"direction,omitempty" jsonschema:"sort direction: asc or desc (default desc)"`
}

type getRepositoryArgs struct {
	Owner string `json:"owner" jsonschema:"repository owner"`
	Repo  string `json:"repo" jsonschema:"repository name"`
}

type searchCodeArgs struct {
	Query string `json:"q" jsonschema:"the GitHub code search query"`
	Sort  string `json:"sort,omitempty" jsonschema:"sort field (default indexed)"`
	Order string `json:"order,omitempty" jsonschema:"sort order: asc or desc (default desc)"`
}

type getIssueContentArgs struct {
	Owner       string `json:"owner" jsonschema:"repository owner"`
	Repo        string `json:"repo" jsonschema:"repository name"`
	IssueNumber int    `json:"issue_number" jsonschema:"the issue number"`
}

type noArgs struct{}

// RegisterGitHubTools adds the GitHub tool set to the server.
func RegisterGitHubTools(s *mcp.Server, svc *github.Service) {
	addTool(s, &mcp.Tool{
		Name:        "search_repositories",
		Description: "Search for GitHub repositories matching a query",
	}, func(ctx context.Context, args searchRepositoriesArgs) (any, error) {
		return svc.SearchRepositories(ctx, args.Query)
	})

	addTool(s, &mcp.Tool{
		Name:        "get_file_contents",
		Description: "Get the contents of a file or directory listing from a GitHub repository",
	}, func(ctx context.Context, args getFileContentsArgs) (any, error) {
		return svc.GetFileContents(ctx, args.Owner, args.Repo, args.Path, args.Branch)
	})

	addTool(s, &mcp.Tool{
		Name:        "list_commits",
		Description: "List recent commits on a branch of a GitHub repository",
	}, func(ctx context.Context, args listCommitsArgs) (any, error) {
		return svc.ListCommits(ctx, args.Owner, args.Repo, args.Branch)
	})

	addTool(s, &mcp.Tool{
		Name:        "list_issues",
		Description: "List issues in a GitHub repository with optional state, label and sort filters",
	}, func(ctx context.Context, args listIssuesArgs) (any, error) {
		return svc.ListIssues(ctx, args.Owner, args.Repo, github.IssueListOptions{
			State:     args.State,
			Labels:    args.Labels,
			Sort:      args.Sort,
			Direction: args.Direction,
		})
	})

	addTool(s, &mcp.Tool{
		Name:        "get_repository",
		Description: "Get metadata about a GitHub repository",
	}, func(ctx context.Context, args getRepositoryArgs) (any, error) {
		return svc.GetRepository(ctx, args.Owner, args.Repo)
	})

	addTool(s, &mcp.Tool{
		Name:        "search_code",
		Description: "Search for code across GitHub repositories",
	}, func(ctx context.Context, args searchCodeArgs) (any, error) {
		return svc.SearchCode(ctx, args.Query, args.Sort, args.Order)
	})

	addTool(s, &mcp.Tool{
		Name:        "get_issue_content",
		Description: "Get the title, body, labels and all comments of a GitHub issue",
	}, func(ctx context.Context, args getIssueContentArgs) (any, error) {
		return svc.GetIssueContent(ctx, args.Owner, args.Repo, args.IssueNumber)
	})

	addTool(s, &mcp.Tool{
		Name:        "get_current_user_info",
		Description: "Get the profile of the authenticated GitHub user",
	}, func(ctx context.Context, _ noArgs) (any, error) {
		return svc.CurrentUser(ctx)
	})
}
