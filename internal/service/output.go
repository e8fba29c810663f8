package service

import "strings"

// CSVHeader is the fixed header returned alongside every generated body.
// The model is instructed not to emit it; NormalizeModelOutput drops it if
// the model does anyway.
const CSVHeader = "項目,ユーザーロール（管理者かユーザー）,操作手順,期待結果"

// NormalizeModelOutput strips code fencing and a re-emitted header line from
// raw completion text, returning clean newline-joined CSV rows. No column
// or escaping validation happens here; the body is surfaced as-is.
func NormalizeModelOutput(raw string) string {
	content := strings.TrimSpace(raw)
	if strings.HasPrefix(content, "```") {
		var kept []string
		for _, line := range strings.Split(content, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				continue
			}
			kept = append(kept, line)
		}
		content = strings.TrimSpace(strings.Join(kept, "\n"))
	}

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) > 0 {
		condensed := strings.Join(strings.Fields(lines[0]), "")
		if strings.HasPrefix(condensed, "項目,") {
			lines = lines[1:]
		}
	}

	return strings.Join(lines, "\n")
}
