package store

import (
	"context"
	"errors"

	"github.com/masiqhakaze/website/internal/models"
)

var (
	// ErrNotFound is returned when a record is absent or unreadable.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned by InsertPostUnique when the title is taken.
	ErrDuplicate = errors.New("duplicate title")
)

// Credentials persists the auth collection: zero or one credential.
type Credentials interface {
	// GetCredential returns ErrNotFound when no record exists or the stored
	// record has no hashed_password.
	GetCredential(ctx context.Context) (*models.Credential, error)
	// PutCredential inserts the credential or replaces the existing one.
	PutCredential(ctx context.Context, hashedPassword string) error
}

// Posts persists the posts collection. Titles passed in are already
// normalized; backends match them exactly.
type Posts interface {
	InsertPost(ctx context.Context, p *models.Post) error
	// InsertPostUnique checks for an existing title and inserts in one unit
	// of work, returning ErrDuplicate if the title exists.
	InsertPostUnique(ctx context.Context, p *models.Post) error
	// ListPosts returns every post in no particular order.
	ListPosts(ctx context.Context) ([]models.Post, error)
	FindPost(ctx context.Context, title string) (*models.Post, error)
	// DeletePosts removes every post with the title and reports how many.
	DeletePosts(ctx context.Context, title string) (int, error)
}

// Backend is a document store holding both collections.
type Backend interface {
	Credentials
	Posts
	Close() error
}
