package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/huangjien/devops-mcps/internal/jenkins"
)

type buildLogArgs struct {
	JobName     string `json:"job_name" jsonschema:"Jenkins job name, using slashes for folders (e.g. team/deploy)"`
	BuildNumber int    `json:"build_number,omitempty" jsonschema:"build number; zero or negative selects the latest build"`
}

type buildParametersArgs struct {
	JobName     string `json:"job_name" jsonschema:"Jenkins job name, using slashes for folders"`
	BuildNumber int    `json:"build_number" jsonschema:"the build number"`
}

type recentFailedBuildsArgs struct {
	HoursAgo int `json:"hours_ago,omitempty" jsonschema:"how many hours back to look for failures (default 8)"`
}

// RegisterJenkinsTools adds the Jenkins tool set to the server.
func RegisterJenkinsTools(s *mcp.Server, svc *jenkins.Service) {
	addTool(s, &mcp.Tool{
		Name:        "get_jenkins_jobs",
		Description: "List all Jenkins jobs with their last build status",
	}, func(ctx context.Context, _ noArgs) (any, error) {
		return svc.ListJobs(ctx)
	})

	addTool(s, &mcp.Tool{
		Name:        "get_jenkins_views",
		Description: "List all Jenkins views",
	}, func(ctx context.Context, _ noArgs) (any, error) {
		return svc.ListViews(ctx)
	})

	addTool(s, &mcp.Tool{
		Name:        "get_jenkins_build_log",
		Description: "Get the tail of a Jenkins build's console log; build_number 0 means the latest build",
	}, func(ctx context.Context, args buildLogArgs) (any, error) {
		return svc.GetBuildLog(ctx, args.JobName, args.BuildNumber)
	})

	addTool(s, &mcp.Tool{
		Name:        "get_jenkins_build_parameters",
		Description: "Get the parameters a Jenkins build ran with",
	}, func(ctx context.Context, args buildParametersArgs) (any, error) {
		return svc.GetBuildParameters(ctx, args.JobName, args.BuildNumber)
	})

	addTool(s, &mcp.Tool{
		Name:        "get_jenkins_queue",
		Description: "Get the current Jenkins build queue",
	}, func(ctx context.Context, _ noArgs) (any, error) {
		return svc.GetQueue(ctx)
	})

	addTool(s, &mcp.Tool{
		Name:        "get_recent_failed_builds",
		Description: "List jobs whose last build failed within the given number of hours",
	}, func(ctx context.Context, args recentFailedBuildsArgs) (any, error) {
		return svc.RecentFailedBuilds(ctx, args.HoursAgo)
	})
}
