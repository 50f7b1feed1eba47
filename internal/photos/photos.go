// Package photos defines the photo-hosting boundary used to attach trip
// photos to trip folders.
package photos

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

// DefaultFormat is used when the service reports no original format
const DefaultFormat = "jpg"

// ErrNoURL is returned when a photo has no original-resolution URL
var ErrNoURL = errors.New("photo has no original URL")

// Photo is one search result
type Photo struct {
	ID             string
	Title          string
	URLOriginal    string
	OriginalFormat string
}

// Filename is "<id>.<format>"
func (p Photo) Filename() string {
	format := p.OriginalFormat
	if format == "" {
		format = DefaultFormat
	}
	return p.ID + "." + format
}

// SearchParams narrows a photo search. Dates are YYYY-MM-DD, inclusive.
type SearchParams struct {
	UserID        string
	Text          string
	MinTakenDate  string
	MaxTakenDate  string
	PrivacyFilter int
	PerPage       int
}

// StatusError is a download that got a non-200 response
type StatusError struct {
	PhotoID string
	Code    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("download of photo %s failed with status %d", e.PhotoID, e.Code)
}

// Service searches and downloads photos
type Service interface {
	// Search yields matching photos page by page until a page comes back
	// empty. Every range starts again from the first page.
	Search(ctx context.Context, params SearchParams) iter.Seq2[Photo, error]

	// Download writes the original-resolution image to path
	Download(ctx context.Context, photo Photo, path string) error
}
