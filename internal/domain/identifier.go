package domain

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	identifierPattern = regexp.MustCompile(`[A-Za-z]+-\d+`)
	canonicalPattern  = regexp.MustCompile(`^([A-Za-z]+)-(\d+)$`)
	fieldSeparator    = regexp.MustCompile(`[\s,;]+`)
)

// NormalizeIdentifier canonicalizes a single raw ticket reference. If the
// input embeds a free-standing TEAM-NUMBER pattern (e.g. inside a pasted
// ticket URL), that pattern is extracted with the team key uppercased.
// Anything else is passed through trimmed, so opaque IDs such as UUIDs
// survive unchanged and unrecognized input fails loudly at resolution
// instead of vanishing here.
func NormalizeIdentifier(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if matches := extractIdentifiers(trimmed); len(matches) > 0 {
		return canonicalize(matches[0])
	}
	return trimmed
}

// ParseIdentifiers splits raw input fields into a deduplicated, order-preserving
// list of canonical identifiers. Fields may each hold several identifiers
// separated by whitespace, commas, or semicolons; a token may also embed
// identifiers inside a URL.
func ParseIdentifiers(values []string) []string {
	seen := make(map[string]struct{})
	var ordered []string

	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}

	for _, value := range values {
		for _, token := range fieldSeparator.Split(value, -1) {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			if matches := extractIdentifiers(token); len(matches) > 0 {
				for _, match := range matches {
					add(canonicalize(match))
				}
				continue
			}
			add(token)
		}
	}

	return ordered
}

// SplitIdentifier decomposes a canonical TEAM-NUMBER identifier. ok is false
// for opaque IDs that do not have that shape.
func SplitIdentifier(identifier string) (teamKey string, number int, ok bool) {
	match := canonicalPattern.FindStringSubmatch(identifier)
	if match == nil {
		return "", 0, false
	}
	number, err := strconv.Atoi(match[2])
	if err != nil {
		return "", 0, false
	}
	return strings.ToUpper(match[1]), number, true
}

// extractIdentifiers returns each TEAM-NUMBER pattern in token that stands on
// its own. Matches embedded inside a longer alphanumeric run are skipped so a
// UUID segment like "2b1a-8b52" is not misread as an identifier.
func extractIdentifiers(token string) []string {
	var out []string
	for _, loc := range identifierPattern.FindAllStringIndex(token, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && isAlnum(token[start-1]) {
			continue
		}
		if end < len(token) && isAlnum(token[end]) {
			continue
		}
		out = append(out, token[start:end])
	}
	return out
}

func canonicalize(match string) string {
	idx := strings.LastIndex(match, "-")
	return strings.ToUpper(match[:idx]) + match[idx:]
}

func isAlnum(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
