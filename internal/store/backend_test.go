package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masiqhakaze/website/internal/models"
)

// testBackend runs the behavior every Backend must share against a fresh,
// empty backend.
func testBackend(t *testing.T, b Backend) {
	ctx := context.Background()

	t.Run("credential", func(t *testing.T) {
		_, err := b.GetCredential(ctx)
		require.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, b.PutCredential(ctx, "first"))
		require.NoError(t, b.PutCredential(ctx, "second"))
		cred, err := b.GetCredential(ctx)
		require.NoError(t, err)
		assert.Equal(t, "second", cred.HashedPassword)
	})

	t.Run("posts", func(t *testing.T) {
		all, err := b.ListPosts(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		p := &models.Post{Title: "HELLO", Body: "one", Date: "2024-01-01T00:00:00Z"}
		require.NoError(t, b.InsertPost(ctx, p))
		assert.NotEmpty(t, p.ID)
		require.NoError(t, b.InsertPost(ctx, &models.Post{Title: "HELLO", Body: "two", Date: "2024-01-02T00:00:00Z"}))

		found, err := b.FindPost(ctx, "HELLO")
		require.NoError(t, err)
		assert.Equal(t, "HELLO", found.Title)

		_, err = b.FindPost(ctx, "MISSING")
		require.ErrorIs(t, err, ErrNotFound)

		n, err := b.DeletePosts(ctx, "HELLO")
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = b.DeletePosts(ctx, "HELLO")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("unique insert", func(t *testing.T) {
		post := func(body string) *models.Post {
			return &models.Post{Title: "UNIQUE", Body: body, Date: "2024-02-01T00:00:00Z"}
		}
		require.NoError(t, b.InsertPostUnique(ctx, post("a")))
		require.ErrorIs(t, b.InsertPostUnique(ctx, post("b")), ErrDuplicate)

		// Deleting releases the title for reuse.
		_, err := b.DeletePosts(ctx, "UNIQUE")
		require.NoError(t, err)
		require.NoError(t, b.InsertPostUnique(ctx, post("c")))

		// A title inserted without a claim still blocks unique inserts.
		require.NoError(t, b.InsertPost(ctx, &models.Post{Title: "PLAIN", Body: "x", Date: "2024-02-02T00:00:00Z"}))
		require.ErrorIs(t, b.InsertPostUnique(ctx, &models.Post{Title: "PLAIN", Body: "y", Date: "2024-02-03T00:00:00Z"}), ErrDuplicate)
	})

	t.Run("concurrent unique insert", func(t *testing.T) {
		const writers = 8
		var (
			wg sync.WaitGroup
			mu sync.Mutex
			ok int
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := b.InsertPostUnique(ctx, &models.Post{Title: "RACE", Body: "x", Date: "2024-03-01T00:00:00Z"})
				if err == nil {
					mu.Lock()
					ok++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, ok)

		n, err := b.DeletePosts(ctx, "RACE")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestBadgerBackend(t *testing.T) {
	testBackend(t, newTestBadger(t))
}
