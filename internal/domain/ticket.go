package domain

import "strings"

// ResolvedTicket is the subset of a tracker issue the pipeline consumes.
// Any field may be empty; a ticket with no usable text is still a valid
// resolution result.
type ResolvedTicket struct {
	Identifier  string
	Title       string
	Description string
}

// Heading joins identifier and title with a space, trimmed.
func (t ResolvedTicket) Heading() string {
	return strings.TrimSpace(t.Identifier + " " + t.Title)
}

// Text renders the ticket as heading plus description separated by a blank
// line, skipping whichever parts are empty.
func (t ResolvedTicket) Text() string {
	var parts []string
	if heading := t.Heading(); heading != "" {
		parts = append(parts, heading)
	}
	if t.Description != "" {
		parts = append(parts, t.Description)
	}
	return strings.Join(parts, "\n\n")
}
