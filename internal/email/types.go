package email

import (
	"fmt"
	"strings"
)

// Email is a provider-agnostic, normalized message
type Email struct {
	ID        string // Provider-specific ID
	Subject   string // Email subject
	From      string // Raw From header value
	Date      string // Raw Date header value, not parsed
	PlainBody string // text/plain parts, concatenated
	HTMLBody  string // text/html parts, concatenated
}

// Body returns the plain body, or the HTML body when no plain part exists
func (e *Email) Body() string {
	if strings.TrimSpace(e.PlainBody) != "" {
		return e.PlainBody
	}
	return e.HTMLBody
}

// Dump renders the message as the text archived with each trip:
// header lines, a blank line, the plain body, a blank line, the HTML body.
func (e *Email) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", e.Subject)
	fmt.Fprintf(&b, "From: %s\n", e.From)
	fmt.Fprintf(&b, "Date: %s\n", e.Date)
	b.WriteString("\n")
	b.WriteString(e.PlainBody + "\n")
	b.WriteString("\n")
	b.WriteString(e.HTMLBody + "\n")
	return b.String()
}

// SenderAddress extracts the bare address from a From value like "Name <a@b.c>"
func SenderAddress(from string) string {
	from = strings.TrimSpace(from)
	if start := strings.Index(from, "<"); start != -1 {
		if end := strings.Index(from, ">"); end > start {
			return strings.TrimSpace(from[start+1 : end])
		}
	}
	return from
}
