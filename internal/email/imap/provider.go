package imap

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/vijay-prabhu/tripvault/internal/email"
)

// Provider implements email.Mailbox over IMAP with TLS
type Provider struct {
	server   string
	login    string
	password string
	mailbox  string
	timeout  time.Duration
	client   *client.Client
}

// New creates a new IMAP provider
func New(server, login, password, mailbox string) *Provider {
	if mailbox == "" {
		mailbox = "INBOX"
	}
	return &Provider{
		server:   server,
		login:    login,
		password: password,
		mailbox:  mailbox,
		timeout:  30 * time.Second,
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "imap"
}

// Authenticate connects, logs in and selects the mailbox read-only
func (p *Provider) Authenticate(ctx context.Context) error {
	if p.password == "" {
		return errors.New("imap password is empty")
	}

	c, err := client.DialTLS(p.server, nil)
	if err != nil {
		return fmt.Errorf("IMAP connection error: %w", err)
	}
	c.Timeout = p.timeout

	if err := c.Login(p.login, p.password); err != nil {
		_ = c.Logout()
		return fmt.Errorf("IMAP login error: %w", err)
	}

	if _, err := c.Select(p.mailbox, true); err != nil {
		_ = c.Logout()
		return fmt.Errorf("folder selection error: %w", err)
	}

	p.client = c
	return nil
}

// Search yields the UIDs matching query. IMAP SEARCH is unpaged, so the
// sequence is a single page.
func (p *Provider) Search(ctx context.Context, query string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if p.client == nil {
			yield("", errors.New("not connected"))
			return
		}

		uids, err := p.client.UidSearch(BuildCriteria(query))
		if err != nil {
			yield("", fmt.Errorf("error searching mailbox: %w", err))
			return
		}

		for _, uid := range uids {
			if ctx.Err() != nil {
				yield("", ctx.Err())
				return
			}
			if !yield(strconv.FormatUint(uint64(uid), 10), nil) {
				return
			}
		}
	}
}

// Fetch retrieves the full message for a UID without marking it seen
func (p *Provider) Fetch(ctx context.Context, id string) (*email.Email, error) {
	if p.client == nil {
		return nil, errors.New("not connected")
	}

	uid, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid UID %q: %w", id, err)
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uint32(uid))

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem(), imap.FetchUid}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- p.client.UidFetch(seqSet, items, messages)
	}()

	var msg *imap.Message
	for m := range messages {
		msg = m
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("error fetching message UID %d: %w", uid, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("no message retrieved for UID %d", uid)
	}

	body := msg.GetBody(section)
	if body == nil {
		return nil, fmt.Errorf("message body could not be retrieved for UID %d", uid)
	}

	return Parse(id, body)
}

// Close logs out from the server
func (p *Provider) Close() error {
	if p.client == nil {
		return nil
	}
	err := p.client.Logout()
	p.client = nil
	return err
}
