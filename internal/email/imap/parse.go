package imap

import (
	"errors"
	"io"
	"strings"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/vijay-prabhu/tripvault/internal/email"
)

// Parse reads an RFC 5322 message into an email.Email
func Parse(id string, r io.Reader) (*email.Email, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, err
	}
	defer mr.Close()

	e := &email.Email{ID: id}

	if subject, err := mr.Header.Subject(); err == nil {
		e.Subject = subject
	} else {
		e.Subject = mr.Header.Get("Subject")
	}
	if from, err := mr.Header.Text("From"); err == nil {
		e.From = from
	} else {
		e.From = mr.Header.Get("From")
	}
	e.Date = mr.Header.Get("Date")

	var plain, html strings.Builder
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, err := h.ContentType()
		if err != nil {
			continue
		}

		switch contentType {
		case "text/plain":
			body, err := io.ReadAll(p.Body)
			if err != nil {
				continue
			}
			plain.Write(body)
		case "text/html":
			body, err := io.ReadAll(p.Body)
			if err != nil {
				continue
			}
			html.Write(body)
		}
	}

	e.PlainBody = plain.String()
	e.HTMLBody = html.String()
	return e, nil
}
