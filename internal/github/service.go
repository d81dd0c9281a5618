package github

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	gh "github.com/google/go-github/v69/github"

	"github.com/huangjien/devops-mcps/internal/cache"
	"github.com/huangjien/devops-mcps/internal/logging"
	"github.com/huangjien/devops-mcps/internal/metrics"
)

const serviceName = "github"

// Per-operation cache TTLs. Searches and issues churn quickly, file and
// repository metadata much less so.
const (
	ttlSearch       = 5 * time.Minute
	ttlIssueContent = 5 * time.Minute
	ttlIssues       = 30 * time.Minute
	ttlFiles        = 30 * time.Minute
	ttlCommits      = time.Hour
	ttlRepo         = time.Hour
	ttlUser         = time.Hour
)

// Listing operations return at most one page.
const pageSize = 30

// Service exposes memoized GitHub operations. Every operation follows
// the same shape: cache check, lazy client, SDK call, normalize errors,
// populate cache. A cache miss always triggers the authoritative
// upstream call.
type Service struct {
	client *Client
	cache  cache.Cache
}

// NewService creates a GitHub service backed by the given client and cache.
func NewService(client *Client, c cache.Cache) *Service {
	return &Service{client: client, cache: c}
}

func (s *Service) lookup(ctx context.Context, key string, out any) bool {
	if cache.GetJSON(ctx, s.cache, key, out) {
		metrics.RecordCacheHit(serviceName)
		logging.Op().Debug("cache hit", "key", key)
		return true
	}
	metrics.RecordCacheMiss(serviceName)
	return false
}

func (s *Service) store(ctx context.Context, key string, value any, ttl time.Duration) {
	cache.SetJSON(ctx, s.cache, key, value, ttl)
}

// CurrentUser returns the authenticated user's profile. This is the one
// operation that requires a token.
func (s *Service) CurrentUser(ctx context.Context) (*UserInfo, error) {
	if !s.client.HasToken() {
		return nil, ErrNotConfigured
	}

	const key = "github:current_user_info"
	var out UserInfo
	if s.lookup(ctx, key, &out) {
		return &out, nil
	}

	api, err := s.client.API()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	user, _, err := api.Users.Get(ctx, "")
	metrics.RecordUpstreamRequest(serviceName, time.Since(start))
	if err != nil {
		return nil, normalizeError(err, "")
	}

	out = UserInfo{
		Login:   user.GetLogin(),
		Name:    user.GetName(),
		Email:   user.GetEmail(),
		ID:      user.GetID(),
		HTMLURL: user.GetHTMLURL(),
		Type:    user.GetType(),
	}
	s.store(ctx, key, out, ttlUser)
	return &out, nil
}

// SearchRepositories runs a repository search and returns the first page.
func (s *Service) SearchRepositories(ctx context.Context, query string) ([]Repository, error) {
	key := "github:search_repos:" + query
	var out []Repository
	if s.lookup(ctx, key, &out) {
		return out, nil
	}

	api, err := s.client.API()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, _, err := api.Search.Repositories(ctx, query, &gh.SearchOptions{
		ListOptions: gh.ListOptions{PerPage: pageSize},
	})
	metrics.RecordUpstreamRequest(serviceName, time.Since(start))
	if err != nil {
		return nil, normalizeError(err, "")
	}

	out = make([]Repository, 0, len(result.Repositories))
	for _, r := range result.Repositories {
		out = append(out, convertRepository(r))
	}
	s.store(ctx, key, out, ttlSearch)
	return out, nil
}

// GetRepository returns repository metadata.
func (s *Service) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	key := fmt.Sprintf("github:get_repo:%s/%s", owner, repo)
	var out Repository
	if s.lookup(ctx, key, &out) {
		return &out, nil
	}

	api, err := s.client.API()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	r, _, err := api.Repositories.Get(ctx, owner, repo)
	metrics.RecordUpstreamRequest(serviceName, time.Since(start))
	if err != nil {
		return nil, normalizeError(err, fmt.Sprintf("Repository '%s/%s' not found", owner, repo))
	}

	out = convertRepository(r)
	s.store(ctx, key, out, ttlRepo)
	return &out, nil
}

// GetFileContents fetches a file (decoded text) or a directory listing.
func (s *Service) GetFileContents(ctx context.Context, owner, repo, path, ref string) (*FileContents, error) {
	refStr := ref
	if refStr == "" {
		refStr = "default"
	}
	key := fmt.Sprintf("github:get_file:%s/%s/%s:%s", owner, repo, path, refStr)
	var out FileContents
	if s.lookup(ctx, key, &out) {
		return &out, nil
	}

	api, err := s.client.API()
	if err != nil {
		return nil, err
	}

	var opts *gh.RepositoryContentGetOptions
	if ref != "" {
		opts = &gh.RepositoryContentGetOptions{Ref: ref}
	}

	start := time.Now()
	file, dir, _, err := api.Repositories.GetContents(ctx, owner, repo, path, opts)
	metrics.RecordUpstreamRequest(serviceName, time.Since(start))
	if err != nil {
		notFound := fmt.Sprintf("Repository '%s/%s' or path '%s' not found", owner, repo, path)
		if isTooLarge(err) {
			return nil, fmt.Errorf("File '%s' is too large to retrieve via the API", path)
		}
		return nil, normalizeError(err, notFound)
	}

	if dir != nil {
		out = FileContents{Type: "dir", Path: path, Entries: make([]FileEntry, 0, len(dir))}
		for _, entry := range dir {
			out.Entries = append(out.Entries, FileEntry{
				Name: entry.GetName(),
				Path: entry.GetPath(),
				Type: entry.GetType(),
				Size: entry.GetSize(),
			})
		}
		s.store(ctx, key, out, ttlFiles)
		return &out, nil
	}

	out = FileContents{Type: "file", Path: path}
	text, decErr := file.GetContent()
	switch {
	case decErr != nil:
		// Likely binary: return metadata, do not cache the failure.
		out.Message = "Could not decode content (likely binary file)."
		return &out, nil
	case text == "":
		out.Message = "File appears to be empty or content is inaccessible."
	default:
		out.Content = text
	}
	s.store(ctx, key, out, ttlFiles)
	return &out, nil
}

// ListCommits lists commits for a branch (or the default branch).
func (s *Service) ListCommits(ctx context.Context, owner, repo, branch string) ([]Commit, error) {
	branchStr := branch
	if branchStr == "" {
		branchStr = "default"
	}
	key := fmt.Sprintf("github:list_commits:%s/%s:%s", owner, repo, branchStr)
	var out []Commit
	if s.lookup(ctx, key, &out) {
		return out, nil
	}

	api, err := s.client.API()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	commits, _, err := api.Repositories.ListCommits(ctx, owner, repo, &gh.CommitsListOptions{
		SHA:         branch,
		ListOptions: gh.ListOptions{PerPage: pageSize},
	})
	metrics.RecordUpstreamRequest(serviceName, time.Since(start))
	if err != nil {
		if isEmptyRepository(err) {
			return nil, fmt.Errorf("Repository %s/%s is empty", owner, repo)
		}
		if branch != "" && (httpStatus(err) == 404 || isNoCommitForSHA(err)) {
			return nil, fmt.Errorf("Branch or SHA '%s' not found in repository %s/%s", branch, owner, repo)
		}
		return nil, normalizeError(err, fmt.Sprintf("Repository '%s/%s' not found", owner, repo))
	}

	out = make([]Commit, 0, len(commits))
	for _, c := range commits {
		commit := Commit{
			SHA:     c.GetSHA(),
			Message: c.GetCommit().GetMessage(),
			HTMLURL: c.GetHTMLURL(),
		}
		if author := c.GetCommit().GetAuthor(); author != nil {
			commit.Author = author.GetName()
			commit.Date = author.GetDate().Format(time.RFC3339)
		}
		out = append(out, commit)
	}
	s.store(ctx, key, out, ttlCommits)
	return out, nil
}

// ListIssues lists issues filtered by state, labels, sort and direction.
func (s *Service) ListIssues(ctx context.Context, owner, repo string, opts IssueListOptions) ([]Issue, error) {
	if opts.State == "" {
		opts.State = "open"
	}
	if opts.Sort == "" {
		opts.Sort = "created"
	}
	if opts.Direction == "" {
		opts.Direction = "desc"
	}
	labelsStr := "none"
	if len(opts.Labels) > 0 {
		sorted := append([]string(nil), opts.Labels...)
		sort.Strings(sorted)
		labelsStr = strings.Join(sorted, ",")
	}
	key := fmt.Sprintf("github:list_issues:%s/%s:%s:%s:%s:%s",
		owner, repo, opts.State, labelsStr, opts.Sort, opts.Direction)
	var out []Issue
	if s.lookup(ctx, key, &out) {
		return out, nil
	}

	api, err := s.client.API()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	issues, _, err := api.Issues.ListByRepo(ctx, owner, repo, &gh.IssueListByRepoOptions{
		State:       opts.State,
		Labels:      opts.Labels,
		Sort:        opts.Sort,
		Direction:   opts.Direction,
		ListOptions: gh.ListOptions{PerPage: pageSize},
	})
	metrics.RecordUpstreamRequest(serviceName, time.Since(start))
	if err != nil {
		return nil, normalizeError(err, fmt.Sprintf("Repository '%s/%s' not found", owner, repo))
	}

	out = make([]Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, Issue{
			Number:    i.GetNumber(),
			Title:     i.GetTitle(),
			State:     i.GetState(),
			Labels:    labelNames(i.Labels),
			User:      i.GetUser().GetLogin(),
			CreatedAt: i.GetCreatedAt().Format(time.RFC3339),
			HTMLURL:   i.GetHTMLURL(),
		})
	}
	s.store(ctx, key, out, ttlIssues)
	return out, nil
}

// SearchCode runs a code search and returns the first page of matches.
func (s *Service) SearchCode(ctx context.Context, q, sortBy, order string) ([]CodeResult, error) {
	if sortBy == "" {
		sortBy = "indexed"
	}
	if order == "" {
		order = "desc"
	}
	key := fmt.Sprintf("github:search_code:%s:%s:%s", q, sortBy, order)
	var out []CodeResult
	if s.lookup(ctx, key, &out) {
		return out, nil
	}

	api, err := s.client.API()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, _, err := api.Search.Code(ctx, q, &gh.SearchOptions{
		Sort:        sortBy,
		Order:       order,
		ListOptions: gh.ListOptions{PerPage: pageSize},
	})
	metrics.RecordUpstreamRequest(serviceName, time.Since(start))
	if err != nil {
		if status := httpStatus(err); status == 422 {
			return nil, fmt.Errorf("Invalid search query or parameters: %s", errMessage(err))
		}
		return nil, normalizeError(err, "")
	}

	out = make([]CodeResult, 0, len(result.CodeResults))
	for _, cr := range result.CodeResults {
		out = append(out, CodeResult{
			Name:       cr.GetName(),
			Path:       cr.GetPath(),
			Repository: cr.GetRepository().GetFullName(),
			HTMLURL:    cr.GetHTMLURL(),
		})
	}
	s.store(ctx, key, out, ttlSearch)
	return out, nil
}

// GetIssueContent fetches an issue's title, labels, body and comments.
func (s *Service) GetIssueContent(ctx context.Context, owner, repo string, number int) (*IssueContent, error) {
	key := fmt.Sprintf("github:issue_content:%s:%s:%d", owner, repo, number)
	var out IssueContent
	if s.lookup(ctx, key, &out) {
		return &out, nil
	}

	api, err := s.client.API()
	if err != nil {
		return nil, err
	}

	notFound := fmt.Sprintf("Repository '%s/%s' or issue #%d not found", owner, repo, number)

	start := time.Now()
	issue, _, err := api.Issues.Get(ctx, owner, repo, number)
	if err != nil {
		metrics.RecordUpstreamRequest(serviceName, time.Since(start))
		return nil, normalizeError(err, notFound)
	}
	comments, _, err := api.Issues.ListComments(ctx, owner, repo, number, &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	})
	metrics.RecordUpstreamRequest(serviceName, time.Since(start))
	if err != nil {
		return nil, normalizeError(err, notFound)
	}

	out = IssueContent{
		Title:       issue.GetTitle(),
		Labels:      labelNames(issue.Labels),
		Timestamp:   issue.GetCreatedAt().Format(time.RFC3339),
		Description: issue.GetBody(),
		Comments:    make([]string, 0, len(comments)),
	}
	for _, c := range comments {
		out.Comments = append(out.Comments, c.GetBody())
	}
	s.store(ctx, key, out, ttlIssueContent)
	return &out, nil
}

func convertRepository(r *gh.Repository) Repository {
	return Repository{
		FullName:      r.GetFullName(),
		Description:   r.GetDescription(),
		HTMLURL:       r.GetHTMLURL(),
		Language:      r.GetLanguage(),
		Stars:         r.GetStargazersCount(),
		Forks:         r.GetForksCount(),
		OpenIssues:    r.GetOpenIssuesCount(),
		Private:       r.GetPrivate(),
		Fork:          r.GetFork(),
		DefaultBranch: r.GetDefaultBranch(),
	}
}

func labelNames(labels []*gh.Label) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.GetName())
	}
	return names
}

// httpStatus extracts the HTTP status of an SDK error, or 0.
func httpStatus(err error) int {
	var ger *gh.ErrorResponse
	if errors.As(err, &ger) && ger.Response != nil {
		return ger.Response.StatusCode
	}
	return 0
}

// errMessage extracts the upstream error message, or the raw error text.
func errMessage(err error) string {
	var ger *gh.ErrorResponse
	if errors.As(err, &ger) && ger.Message != "" {
		return ger.Message
	}
	return err.Error()
}

func isEmptyRepository(err error) bool {
	return httpStatus(err) == 409 && strings.Contains(errMessage(err), "Git Repository is empty")
}

func isNoCommitForSHA(err error) bool {
	return httpStatus(err) == 422 && strings.Contains(errMessage(err), "No commit found for SHA")
}

func isTooLarge(err error) bool {
	return strings.Contains(strings.ToLower(errMessage(err)), "too large")
}

// normalizeError maps SDK errors into the uniform messages tool callers
// see. notFound substitutes a resource-specific message for 404s.
func normalizeError(err error, notFound string) error {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return errors.New("GitHub API rate limit exceeded")
	}
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return errors.New("GitHub API rate limit exceeded")
	}

	switch status := httpStatus(err); status {
	case 0:
		return fmt.Errorf("GitHub request failed: %w", err)
	case 401:
		return errors.New("Authentication failed. Check your GitHub token")
	case 403:
		return fmt.Errorf("Authentication required or insufficient permissions: %s", errMessage(err))
	case 404:
		if notFound != "" {
			return errors.New(notFound)
		}
		return fmt.Errorf("GitHub API Error: 404 - %s", errMessage(err))
	default:
		return fmt.Errorf("GitHub API Error: %d - %s", status, errMessage(err))
	}
}
