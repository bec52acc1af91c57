package chat

import (
	"regexp"
	"strings"
)

// TicketIntent is a proposed support ticket extracted from a completion,
// held by the session until the user confirms or declines it.
type TicketIntent struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
}

const (
	DefaultPriority = "medium"
	DefaultCategory = "general"

	// Absent a Title: label, the ticket title falls back to the leading
	// slice of the user's message.
	maxDefaultTitleLen = 100
)

// Label lines are matched per line, case-insensitive on the label, with the
// trimmed remainder of the line as the value. Priority additionally
// constrains the value; anything else falls back to the default.
var (
	titleRe    = regexp.MustCompile(`(?mi)^\s*title:\s*(.+)$`)
	priorityRe = regexp.MustCompile(`(?mi)^\s*priority:\s*(high|medium|low)\b`)
	categoryRe = regexp.MustCompile(`(?mi)^\s*category:\s*(.+)$`)
)

// ParseCompletion splits a raw completion into the user-facing reply and,
// when the ticket marker is present, the proposed ticket parsed from the
// label lines. Without the marker the reply is the completion unchanged and
// intent is nil.
//
// The intent description always concatenates the user's message with the
// full completion text, so a human agent sees the complete context rather
// than just the label lines.
func ParseCompletion(userMessage, completion string) (reply string, intent *TicketIntent) {
	if !strings.Contains(completion, TicketMarker) {
		return completion, nil
	}

	reply = strings.TrimSpace(strings.ReplaceAll(completion, TicketMarker, ""))

	intent = &TicketIntent{
		Title:       defaultTitle(userMessage),
		Description: userMessage + "\n\nAI Analysis: " + strings.TrimSpace(completion),
		Priority:    DefaultPriority,
		Category:    DefaultCategory,
	}

	if m := titleRe.FindStringSubmatch(reply); m != nil {
		intent.Title = strings.TrimSpace(m[1])
	}
	if m := priorityRe.FindStringSubmatch(reply); m != nil {
		intent.Priority = strings.ToLower(m[1])
	}
	if m := categoryRe.FindStringSubmatch(reply); m != nil {
		intent.Category = strings.TrimSpace(m[1])
	}

	return reply, intent
}

func defaultTitle(userMessage string) string {
	title := strings.TrimSpace(userMessage)
	if len(title) > maxDefaultTitleLen {
		title = title[:maxDefaultTitleLen]
	}
	return title
}
