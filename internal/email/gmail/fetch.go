package gmail

import (
	"encoding/base64"
	"strings"

	"google.golang.org/api/gmail/v1"

	"github.com/vijay-prabhu/tripvault/internal/email"
)

// convertMessage normalizes a Gmail message into an email.Email
func convertMessage(msg *gmail.Message) *email.Email {
	e := &email.Email{ID: msg.Id}
	if msg.Payload == nil {
		return e
	}

	e.Subject = header(msg.Payload.Headers, "subject")
	e.From = header(msg.Payload.Headers, "from")
	e.Date = header(msg.Payload.Headers, "date")

	var plain, html strings.Builder
	if len(msg.Payload.Parts) == 0 {
		// Single-part message; unknown content types count as plain text
		text := decodeBody(msg.Payload)
		if contentType(msg.Payload) == "text/html" {
			html.WriteString(text)
		} else {
			plain.WriteString(text)
		}
	} else {
		collectParts(msg.Payload.Parts, &plain, &html)
	}

	e.PlainBody = plain.String()
	e.HTMLBody = html.String()
	return e
}

// collectParts appends text parts, descending into multipart/* children
func collectParts(parts []*gmail.MessagePart, plain, html *strings.Builder) {
	for _, part := range parts {
		switch contentType(part) {
		case "text/plain":
			plain.WriteString(decodeBody(part))
		case "text/html":
			html.WriteString(decodeBody(part))
		}
		if len(part.Parts) > 0 {
			collectParts(part.Parts, plain, html)
		}
	}
}

// header returns the first header with the given name, case-insensitively
func header(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// contentType returns "text/plain", "text/html" or "" for a part
func contentType(part *gmail.MessagePart) string {
	value := strings.ToLower(header(part.Headers, "content-type"))
	if value == "" {
		value = strings.ToLower(part.MimeType)
	}
	switch {
	case strings.Contains(value, "text/plain"):
		return "text/plain"
	case strings.Contains(value, "text/html"):
		return "text/html"
	}
	return ""
}

// decodeBody decodes base64url part data, tolerating missing padding
func decodeBody(part *gmail.MessagePart) string {
	if part.Body == nil || part.Body.Data == "" {
		return ""
	}

	data := strings.TrimRight(part.Body.Data, "=")
	decoded, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return ""
	}
	return strings.ToValidUTF8(string(decoded), "�")
}
