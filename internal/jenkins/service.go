package jenkins

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/huangjien/devops-mcps/internal/cache"
	"github.com/huangjien/devops-mcps/internal/logging"
	"github.com/huangjien/devops-mcps/internal/metrics"
)

const serviceName = "jenkins"

// Per-operation cache TTLs. The queue changes by the second; build logs
// and parameters are immutable once a build finishes.
const (
	ttlQueue        = time.Minute
	ttlJobs         = 5 * time.Minute
	ttlFailedBuilds = 5 * time.Minute
	ttlViews        = 10 * time.Minute
	ttlBuildLog     = 30 * time.Minute
	ttlBuildParams  = time.Hour
)

// Service exposes memoized Jenkins operations, mirroring the cache
// check / upstream call / normalize / cache set shape of the GitHub
// service.
type Service struct {
	client *Client
	cache  cache.Cache
}

// NewService creates a Jenkins service backed by the given client and cache.
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

// ListJobs returns all jobs with their last build reference.
func (s *Service) ListJobs(ctx context.Context) ([]Job, error) {
	const key = "jenkins:jobs:all"
	var out []Job
	if s.lookup(ctx, key, &out) {
		return out, nil
	}

	var data struct {
		Jobs []struct {
			Name      string `json:"name"`
			URL       string `json:"url"`
			Color     string `json:"color"`
			Buildable bool   `json:"buildable"`
			LastBuild *struct {
				Number int    `json:"number"`
				URL    string `json:"url"`
			} `json:"lastBuild"`
		} `json:"jobs"`
	}

	start := time.Now()
	err := s.client.getJSON(ctx, "/api/json?tree=jobs[name,url,color,buildable,lastBuild[number,url]]", &data)
	metrics.RecordUpstreamRequest(serviceName, time.Since(start))
	if err != nil {
		return nil, err
	}

	out = make([]Job, 0, len(data.Jobs))
	for _, j := range data.Jobs {
		job := Job{Name: j.Name, URL: j.URL, Color: j.Color, Buildable: j.Buildable}
		if j.LastBuild != nil {
			job.LastBuildNumber = j.LastBuild.Number
			job.LastBuildURL = j.LastBuild.URL
		}
		out = append(out, job)
	}
	logging.Op().Debug("listed jenkins jobs", "count", len(out))
	s.store(ctx, key, out, ttlJobs)
	return out, nil
}

// ListViews returns all views.
func (s *Service) ListViews(ctx context.Context) ([]View, error) {
	const key = "jenkins:views:all"
	var out []View
	if s.lookup(ctx, key, &out) {
		return out, nil
	}

	var data struct {
		Views []View `json:"views"`
	}

	start := time.Now()
	err := s.client.getJSON(ctx, "/api/json?tree=views[name,url]", &data)
	metrics.RecordUpstreamRequest(serviceName, time.Since(start))
	if err != nil {
		return nil, err
	}

	out = data.Views
	if out == nil {
		out = []View{}
	}
	s.store(ctx, key, out, ttlViews)
	return out, nil
}

// GetBuildLog returns the tail of a build's console log. A build number
// of zero or less resolves to the job's last build; the cache key always
// uses the resolved number so "latest" entries age out correctly.
func (s *Service) GetBuildLog(ctx context.Context, jobName string, buildNumber int) (string, error) {
	if buildNumber <= 0 {
		n, err := s.lastBuildNumber(ctx, jobName)
		if err != nil {
			return "", err
		}
		buildNumber = n
		logging.Op().Debug("resolved latest build", "job", jobName, "build", buildNumber)
	}

	key := fmt.Sprintf("jenkins:build_log:%s:%d", jobName, buildNumber)
	var out string
	if s.lookup(ctx, key, &out) {
		return out, nil
	}

	path := fmt.Sprintf("%s/%d/logText/progressiveText?start=0", jobPath(jobName), buildNumber)
	start := time.Now()
	log, err := s.client.getText(ctx, path)
	metrics.RecordUpstreamRequest(serviceName, time.Since(start))
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return "", fmt.Errorf("Build #%d not found for job %s", buildNumber, jobName)
		}
		return "", err
	}

	log = sanitizeLog(log)
	if max := s.client.LogLength(); len(log) > max {
		log = log[len(log)-max:]
		// The byte cut can land inside a multi-byte rune; skip ahead to
		// the next rune boundary so the tail stays valid UTF-8.
		for len(log) > 0 && !utf8.RuneStart(log[0]) {
			log = log[1:]
		}
	}
	s.store(ctx, key, log, ttlBuildLog)
	return log, nil
}

func (s *Service) lastBuildNumber(ctx context.Context, jobName string) (int, error) {
	var data struct {
		LastBuild *struct {
			Number int `json:"number"`
		} `json:"lastBuild"`
	}
	err := s.client.getJSON(ctx, jobPath(jobName)+"/api/json?tree=lastBuild[number]", &data)
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return 0, fmt.Errorf("Job not found: %s", jobName)
		}
		return 0, err
	}
	if data.LastBuild == nil {
		return 0, fmt.Errorf("Job %s has no builds", jobName)
	}
	return data.LastBuild.Number, nil
}

// GetBuildParameters returns the parameters a build ran with.
func (s *Service) GetBuildParameters(ctx context.Context, jobName string, buildNumber int) ([]BuildParameter, error) {
	key := fmt.Sprintf("jenkins:build_parameters:%s:%d", jobName, buildNumber)
	var out []BuildParameter
	if s.lookup(ctx, key, &out) {
		return out, nil
	}

	var data struct {
		Actions []struct {
			Parameters []struct {
				Name  string `json:"name"`
				Value any    `json:"value"`
			} `json:"parameters"`
		} `json:"actions"`
	}

	path := fmt.Sprintf("%s/%d/api/json?tree=actions[parameters[name,value]]", jobPath(jobName), buildNumber)
	start := time.Now()
	err := s.client.getJSON(ctx, path, &data)
	metrics.RecordUpstreamRequest(serviceName, time.Since(start))
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("Build #%d not found for job %s", buildNumber, jobName)
		}
		return nil, err
	}

	out = []BuildParameter{}
	for _, action := range data.Actions {
		for _, p := range action.Parameters {
			out = append(out, BuildParameter{Name: p.Name, Value: p.Value})
		}
	}
	s.store(ctx, key, out, ttlBuildParams)
	return out, nil
}

// GetQueue returns the current build queue.
func (s *Service) GetQueue(ctx context.Context) (*Queue, error) {
	const key = "jenkins:queue:current"
	var out Queue
	if s.lookup(ctx, key, &out) {
		return &out, nil
	}

	var data struct {
		Items []struct {
			ID           int64  `json:"id"`
			Why          string `json:"why"`
			InQueueSince int64  `json:"inQueueSince"`
			Stuck        bool   `json:"stuck"`
			Task         struct {
				Name string `json:"name"`
			} `json:"task"`
		} `json:"items"`
	}

	start := time.Now()
	err := s.client.getJSON(ctx, "/queue/api/json", &data)
	metrics.RecordUpstreamRequest(serviceName, time.Since(start))
	if err != nil {
		return nil, err
	}

	out = Queue{Items: make([]QueueItem, 0, len(data.Items))}
	for _, item := range data.Items {
		out.Items = append(out.Items, QueueItem{
			ID:           item.ID,
			TaskName:     item.Task.Name,
			Why:          item.Why,
			InQueueSince: item.InQueueSince,
			Stuck:        item.Stuck,
		})
	}
	// Queue state changes frequently; keep the window short.
	s.store(ctx, key, out, ttlQueue)
	return &out, nil
}

// RecentFailedBuilds returns jobs whose LAST build failed within the
// given window, using a single tree query instead of per-job requests.
func (s *Service) RecentFailedBuilds(ctx context.Context, hoursAgo int) ([]FailedBuild, error) {
	if hoursAgo <= 0 {
		hoursAgo = 8
	}
	key := fmt.Sprintf("jenkins:recent_failed_builds:%d", hoursAgo)
	var out []FailedBuild
	if s.lookup(ctx, key, &out) {
		return out, nil
	}

	var data struct {
		Jobs []struct {
			Name      string `json:"name"`
			URL       string `json:"url"`
			LastBuild *struct {
				Number    int    `json:"number"`
				Timestamp int64  `json:"timestamp"`
				Result    string `json:"result"`
				URL       string `json:"url"`
			} `json:"lastBuild"`
		} `json:"jobs"`
	}

	start := time.Now()
	err := s.client.getJSON(ctx, "/api/json?tree=jobs[name,url,lastBuild[number,timestamp,result,url]]", &data)
	metrics.RecordUpstreamRequest(serviceName, time.Since(start))
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().Add(-time.Duration(hoursAgo) * time.Hour)
	out = []FailedBuild{}
	for _, job := range data.Jobs {
		lb := job.LastBuild
		if job.Name == "" || lb == nil || lb.Timestamp == 0 {
			continue
		}
		ts := time.UnixMilli(lb.Timestamp).UTC()
		if ts.Before(cutoff) || lb.Result != "FAILURE" {
			continue
		}
		buildURL := lb.URL
		if buildURL == "" {
			buildURL = fmt.Sprintf("%s%d", job.URL, lb.Number)
		}
		out = append(out, FailedBuild{
			Name:         job.Name,
			BuildNumber:  lb.Number,
			Result:       lb.Result,
			TimestampUTC: ts.Format(time.RFC3339),
			URL:          buildURL,
		})
	}
	logging.Op().Debug("recent failed builds", "window_hours", hoursAgo, "count", len(out))
	s.store(ctx, key, out, ttlFailedBuilds)
	return out, nil
}

// sanitizeLog replaces non-printable control characters with spaces
// while preserving newlines and tabs, and forces valid UTF-8. Console
// logs regularly carry ANSI escapes and partial byte sequences.
func sanitizeLog(log string) string {
	var b strings.Builder
	b.Grow(len(log))
	for _, r := range log {
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.ToValidUTF8(b.String(), "�")
}
