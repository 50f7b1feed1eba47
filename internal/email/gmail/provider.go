package gmail

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/vijay-prabhu/tripvault/internal/email"
)

// Provider implements the email.Mailbox interface for Gmail
type Provider struct {
	credPath  string
	tokenPath string
	pageSize  int64
	service   *gmail.Service
}

// New creates a new Gmail provider
func New(credPath, tokenPath string, pageSize int) *Provider {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Provider{
		credPath:  credPath,
		tokenPath: tokenPath,
		pageSize:  int64(pageSize),
	}
}

// NewWithService wraps an already-configured Gmail service
func NewWithService(service *gmail.Service, pageSize int) *Provider {
	p := New("", "", pageSize)
	p.service = service
	return p
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "gmail"
}

// Authenticate performs OAuth authentication
func (p *Provider) Authenticate(ctx context.Context) error {
	config, err := loadCredentials(p.credPath)
	if err != nil {
		return err
	}

	client, err := httpClient(ctx, config, p.tokenPath)
	if err != nil {
		return fmt.Errorf("failed to get OAuth client: %w", err)
	}

	service, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return fmt.Errorf("failed to create Gmail service: %w", err)
	}

	p.service = service
	return nil
}

// Search yields message ids matching query, one list page at a time
func (p *Provider) Search(ctx context.Context, query string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if p.service == nil {
			yield("", errors.New("not authenticated - call Authenticate() first"))
			return
		}

		pageToken := ""
		for {
			req := p.service.Users.Messages.List("me").
				Q(query).
				MaxResults(p.pageSize)
			if pageToken != "" {
				req = req.PageToken(pageToken)
			}

			resp, err := req.Context(ctx).Do()
			if err != nil {
				yield("", fmt.Errorf("failed to list messages: %w", err))
				return
			}

			for _, msg := range resp.Messages {
				if !yield(msg.Id, nil) {
					return
				}
			}

			pageToken = resp.NextPageToken
			if pageToken == "" || len(resp.Messages) == 0 {
				return
			}
		}
	}
}

// Fetch retrieves a single message by id
func (p *Provider) Fetch(ctx context.Context, id string) (*email.Email, error) {
	if p.service == nil {
		return nil, errors.New("not authenticated")
	}

	msg, err := p.service.Users.Messages.Get("me", id).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	return convertMessage(msg), nil
}

// Close is a no-op; the HTTP client holds no session
func (p *Provider) Close() error {
	return nil
}
