package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/huangjien/devops-mcps/internal/jenkins"
)

// Known failure signatures and the fix each one usually points at.
var failurePatterns = []struct {
	Pattern    string
	Suggestion string
}{
	{"Build timeout", "Consider increasing build timeout or optimizing build steps"},
	{"Test failures", "Review test cases and ensure test environment is properly configured"},
	{"Dependency issues", "Check dependency versions and repository connectivity"},
	{"Memory errors", "Increase JVM memory allocation or optimize memory usage"},
	{"Permission denied", "Verify file permissions and Jenkins agent access rights"},
}

var diagnosticSteps = []string{
	"1. Review the complete build log for detailed error messages",
	"2. Check Jenkins system logs for any related errors",
	"3. Verify job configuration and parameters",
	"4. Ensure all dependencies are properly installed and configured",
	"5. Check system resources (CPU, memory, disk space)",
}

// RegisterPrompts adds the jenkins_failure_diagnosis prompt, which pulls
// the build log and prefixes it with a diagnosis checklist.
func RegisterPrompts(s *mcp.Server, svc *jenkins.Service) {
	s.AddPrompt(&mcp.Prompt{
		Name:        "jenkins_failure_diagnosis",
		Description: "Diagnose a failed Jenkins build from its console log",
		Arguments: []*mcp.PromptArgument{
			{Name: "job_name", Description: "Name of the failed Jenkins job", Required: true},
			{Name: "build_number", Description: "Build number to diagnose (latest when omitted)"},
		},
	}, func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		jobName := req.Params.Arguments["job_name"]
		if jobName == "" {
			return nil, fmt.Errorf("job_name is required")
		}
		buildNumber := 0
		if raw := req.Params.Arguments["build_number"]; raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("build_number must be an integer: %q", raw)
			}
			buildNumber = n
		}

		log, err := svc.GetBuildLog(ctx, jobName, buildNumber)
		if err != nil {
			return nil, err
		}

		return &mcp.GetPromptResult{
			Description: fmt.Sprintf("Failure diagnosis for Jenkins job %s", jobName),
			Messages: []*mcp.PromptMessage{
				{
					Role:    "user",
					Content: &mcp.TextContent{Text: diagnosisText(jobName, log)},
				},
			},
		}, nil
	})
}

// diagnosisText matches the log against known failure signatures and
// renders the checklist, suggestions and the log itself.
func diagnosisText(jobName, log string) string {
	lower := strings.ToLower(log)
	var suggestions []string
	for _, fp := range failurePatterns {
		if strings.Contains(lower, strings.ToLower(fp.Pattern)) {
			suggestions = append(suggestions, fp.Pattern+": "+fp.Suggestion)
		}
	}
	if len(suggestions) == 0 {
		suggestions = []string{"No specific patterns detected - manual review required"}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The Jenkins job %q failed. Help me diagnose and fix it.\n\n", jobName)
	b.WriteString("Diagnostic steps:\n")
	for _, step := range diagnosticSteps {
		b.WriteString(step + "\n")
	}
	b.WriteString("\nSuggestions based on the log:\n")
	for _, s := range suggestions {
		b.WriteString("- " + s + "\n")
	}
	b.WriteString("\nConsole log tail:\n```\n")
	b.WriteString(log)
	b.WriteString("\n```\n")
	return b.String()
}
