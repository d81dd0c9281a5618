// Package markdown renders JSON tool results as markdown for terminal
// display by the CLI client.
package markdown

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Render converts a JSON document into markdown. Objects become
// "## Results" sections with one "### key" heading per field, arrays
// become bullet lists, and scalars pass through unchanged. An object
// carrying an "error" field renders as an "## Error" section.
func Render(data []byte) string {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		// Not JSON; the tool returned plain text.
		return string(data)
	}
	return renderValue(v)
}

func renderValue(v any) string {
	switch t := v.(type) {
	case map[string]any:
		return renderObject(t)
	case []any:
		return renderList(t)
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func renderObject(obj map[string]any) string {
	if msg, ok := obj["error"].(string); ok {
		return "## Error\n\n" + msg
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("## Results\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "\n### %s\n\n%s\n", k, scalar(obj[k]))
	}
	return b.String()
}

func renderList(items []any) string {
	if len(items) == 0 {
		return "## Results\n\nNo results found."
	}

	var b strings.Builder
	b.WriteString("## Results\n")
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			b.WriteString("\n")
			b.WriteString(renderObject(obj))
			continue
		}
		fmt.Fprintf(&b, "\n- %s\n", scalar(item))
	}
	return b.String()
}

// scalar renders a single value inline. Nested structures fall back to
// compact JSON rather than recursing into more headings.
func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case map[string]any, []any:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprint(t)
	default:
		return fmt.Sprint(t)
	}
}
