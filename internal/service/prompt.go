package service

import (
	"fmt"
	"strings"
)

const formatContract = `Output format:
- CSV rows only (no header), columns in this order:
  項目, ユーザーロール（管理者かユーザー）, 操作手順, 期待結果
- Role must be one of: 管理者, ユーザー, 全員.
- Keep each step and expected result specific and actionable.
- Do not add numbering, bullets, or extra commentary.
- Escape commas and quotes per CSV rules if needed.`

// BuildPrompt assembles the user-turn instruction string. cases <= 0 means
// no explicit count was requested; issueIDs, when present, only add coverage
// context and do not affect the description itself. Pure function.
func BuildPrompt(description string, cases int, issueIDs []string) string {
	caseHint := "Generate a concise set of the most important test cases."
	if cases > 0 {
		caseHint = fmt.Sprintf("Generate exactly %d test cases.", cases)
	}

	ticketsHint := "Use the Linear ticket description below to produce test cases in Japanese."
	if len(issueIDs) > 0 {
		plural := ""
		if len(issueIDs) > 1 {
			plural = "s"
		}
		ticketsHint = fmt.Sprintf(
			"Descriptions are combined from %d Linear ticket%s: %s. Cover scenarios across all of them.",
			len(issueIDs), plural, strings.Join(issueIDs, ", "),
		)
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n\nDescription:\n%s",
		ticketsHint, caseHint, formatContract, strings.TrimSpace(description))
}
