// Package posts implements the news post collection on top of a
// store.Posts backend: title normalization, timestamps and ordering.
package posts

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/masiqhakaze/website/internal/models"
	"github.com/masiqhakaze/website/internal/store"
)

var (
	ErrDuplicateTitle = errors.New("a post with this title already exists")
	ErrEmptyTitle     = errors.New("post title must not be empty")
)

type Store struct {
	backend store.Posts
	now     func() time.Time
}

func NewStore(backend store.Posts) *Store {
	return &Store{backend: backend, now: time.Now}
}

// Insert appends a post without checking for an existing title.
func (s *Store) Insert(ctx context.Context, title, body string) (models.Post, error) {
	p, err := s.newPost(title, body)
	if err != nil {
		return models.Post{}, err
	}
	if err := s.backend.InsertPost(ctx, &p); err != nil {
		return models.Post{}, err
	}
	return display(p), nil
}

// Create inserts a post unless one with the same normalized title exists,
// in which case it returns ErrDuplicateTitle.
func (s *Store) Create(ctx context.Context, title, body string) (models.Post, error) {
	p, err := s.newPost(title, body)
	if err != nil {
		return models.Post{}, err
	}
	err = s.backend.InsertPostUnique(ctx, &p)
	if errors.Is(err, store.ErrDuplicate) {
		return models.Post{}, ErrDuplicateTitle
	}
	if err != nil {
		return models.Post{}, err
	}
	return display(p), nil
}

// List returns every post, newest first. An empty collection yields an
// empty slice and no error.
func (s *Store) List(ctx context.Context) ([]models.Post, error) {
	all, err := s.backend.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(all, func(a, b models.Post) int {
		return strings.Compare(b.Date, a.Date)
	})
	out := make([]models.Post, 0, len(all))
	for _, p := range all {
		out = append(out, display(p))
	}
	return out, nil
}

// Latest returns at most n of the newest posts.
func (s *Store) Latest(ctx context.Context, n int) ([]models.Post, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

// FindByTitle looks a post up by any casing of its title. It returns
// store.ErrNotFound when there is no match.
func (s *Store) FindByTitle(ctx context.Context, title string) (models.Post, error) {
	p, err := s.backend.FindPost(ctx, NormalizeTitle(title))
	if err != nil {
		return models.Post{}, err
	}
	return display(*p), nil
}

// DeleteByTitle removes every post with the title. Missing titles are
// not an error.
func (s *Store) DeleteByTitle(ctx context.Context, title string) (int, error) {
	return s.backend.DeletePosts(ctx, NormalizeTitle(title))
}

func (s *Store) newPost(title, body string) (models.Post, error) {
	key := NormalizeTitle(title)
	if key == "" {
		return models.Post{}, ErrEmptyTitle
	}
	return models.Post{
		Title: key,
		Body:  body,
		Date:  s.now().UTC().Format(models.DateLayout),
	}, nil
}

func display(p models.Post) models.Post {
	p.Title = DisplayTitle(p.Title)
	return p
}
