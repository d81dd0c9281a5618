package jenkins

// Job is the trimmed job shape returned by get_jenkins_jobs.
type Job struct {
	Name            string `json:"name"`
	URL             string `json:"url"`
	Color           string `json:"color,omitempty"` // Jenkins color coding (blue, red, ...)
	Buildable       bool   `json:"buildable"`
	LastBuildNumber int    `json:"last_build_number,omitempty"`
	LastBuildURL    string `json:"last_build_url,omitempty"`
}

// View is a Jenkins view (a named grouping of jobs).
type View struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// QueueItem is one pending item in the Jenkins build queue.
type QueueItem struct {
	ID           int64  `json:"id"`
	TaskName     string `json:"task_name"`
	Why          string `json:"why,omitempty"`
	InQueueSince int64  `json:"in_queue_since"` // unix millis
	Stuck        bool   `json:"stuck"`
}

// Queue wraps the queue items for clarity in tool output.
type Queue struct {
	Items []QueueItem `json:"queue_items"`
}

// BuildParameter is one name/value pair a build ran with.
type BuildParameter struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// FailedBuild describes a job whose last build failed recently.
type FailedBuild struct {
	Name         string `json:"name"`
	BuildNumber  int    `json:"build_number"`
	Result       string `json:"result"`
	TimestampUTC string `json:"timestamp_utc"`
	URL          string `json:"url"`
}
