package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_Object(t *testing.T) {
	out := Render([]byte(`{"name": "deploy", "color": "blue"}`))
	assert.True(t, strings.HasPrefix(out, "## Results"), out)
	assert.Contains(t, out, "### name\n\ndeploy")
	assert.Contains(t, out, "### color\n\nblue")
}

func TestRender_ErrorObject(t *testing.T) {
	out := Render([]byte(`{"error": "Repository 'o/r' not found"}`))
	assert.Equal(t, "## Error\n\nRepository 'o/r' not found", out)
}

func TestRender_List(t *testing.T) {
	out := Render([]byte(`[{"name": "a"}, "plain entry", 42]`))
	assert.Contains(t, out, "### name\n\na")
	assert.Contains(t, out, "- plain entry")
	assert.Contains(t, out, "- 42")
}

func TestRender_EmptyList(t *testing.T) {
	out := Render([]byte(`[]`))
	assert.Equal(t, "## Results\n\nNo results found.", out)
}

func TestRender_Scalar(t *testing.T) {
	assert.Equal(t, "Finished: SUCCESS", Render([]byte(`"Finished: SUCCESS"`)))
	assert.Equal(t, "7", Render([]byte(`7`)))
}

func TestRender_PlainText(t *testing.T) {
	// Non-JSON payloads pass through untouched.
	out := Render([]byte("console log line\nanother line"))
	assert.Equal(t, "console log line\nanother line", out)
}

func TestRender_IntegersNotFloats(t *testing.T) {
	out := Render([]byte(`{"build_number": 12}`))
	assert.Contains(t, out, "12")
	assert.NotContains(t, out, "1.2e")
	assert.NotContains(t, out, "12.")
}
