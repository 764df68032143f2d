package metadata

import (
	"context"
	"errors"
	"fmt"

	"moviehouse/internal/models"
)

// Client is the interface for the metadata provider backing the listings.
type Client interface {
	Listing(ctx context.Context, mediaType models.MediaType, category models.Category) ([]models.Item, error)
	Search(ctx context.Context, mediaType models.MediaType, query string) ([]models.Item, error)
	Videos(ctx context.Context, mediaType models.MediaType, id int) ([]Video, error)
}

// Video is a clip attached to a movie or show (trailers, teasers, featurettes).
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// TrailerKey returns the key of the first YouTube trailer, or "" if none.
func TrailerKey(videos []Video) string {
	for _, v := range videos {
		if v.Type == "Trailer" && v.Site == "YouTube" {
			return v.Key
		}
	}
	return ""
}

var (
	// ErrNetwork marks transport-level failures.
	ErrNetwork = errors.New("network failure")
	// ErrResponse marks non-success statuses, malformed payloads and missing credentials.
	ErrResponse = errors.New("response failure")
)

// Error describes a failed metadata request. Kind is ErrNetwork or ErrResponse
// so callers can match with errors.Is.
type Error struct {
	Op     string
	Status int
	Kind   error
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
