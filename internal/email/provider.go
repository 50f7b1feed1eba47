package email

import (
	"context"
	"iter"
)

// Mailbox defines the interface for mailbox providers
type Mailbox interface {
	// Name returns the provider identifier
	Name() string

	// Authenticate performs OAuth or credential validation
	Authenticate(ctx context.Context) error

	// Search yields the ids of messages matching query, page by page.
	// Every range over the returned sequence starts again from the first page.
	// Iteration stops at the first error, which is yielded with an empty id.
	Search(ctx context.Context, query string) iter.Seq2[string, error]

	// Fetch retrieves a single message by id and normalizes it
	Fetch(ctx context.Context, id string) (*Email, error)

	// Close releases any connection held by the provider
	Close() error
}

// Collect drains a search sequence into a slice, stopping at the first error
func Collect(seq iter.Seq2[string, error]) ([]string, error) {
	var ids []string
	for id, err := range seq {
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
