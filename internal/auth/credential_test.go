package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/masiqhakaze/website/internal/models"
	"github.com/masiqhakaze/website/internal/store"
)

// fakeCredentials is an in-memory store.Credentials that counts writes.
type fakeCredentials struct {
	cred   *models.Credential
	puts   int
	getErr error
}

func (f *fakeCredentials) GetCredential(context.Context) (*models.Credential, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.cred == nil {
		return nil, store.ErrNotFound
	}
	c := *f.cred
	return &c, nil
}

func (f *fakeCredentials) PutCredential(_ context.Context, hashed string) error {
	f.puts++
	f.cred = &models.Credential{HashedPassword: hashed}
	return nil
}

func newBadgerCredentials(t *testing.T) *CredentialStore {
	t.Helper()
	s, err := store.NewBadgerStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewCredentialStore(s)
}

func TestAuthenticateFreshStore(t *testing.T) {
	c := newBadgerCredentials(t)
	ctx := context.Background()

	for _, p := range []string{"", "admin", "anything at all"} {
		ok, err := c.Authenticate(ctx, p)
		require.NoError(t, err)
		assert.False(t, ok, "password %q", p)
	}

	_, found, err := c.Current(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSetOrReplaceBootstrapIgnoresOld(t *testing.T) {
	c := newBadgerCredentials(t)
	ctx := context.Background()

	require.NoError(t, c.SetOrReplace(ctx, "whatever", "first"))

	ok, err := c.Authenticate(ctx, "first")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSetOrReplaceRotates(t *testing.T) {
	c := newBadgerCredentials(t)
	ctx := context.Background()

	require.NoError(t, c.SetOrReplace(ctx, "", "old"))
	require.NoError(t, c.SetOrReplace(ctx, "old", "new"))

	ok, err := c.Authenticate(ctx, "new")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Authenticate(ctx, "old")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetOrReplaceMismatchLeavesStorage(t *testing.T) {
	f := &fakeCredentials{}
	c := NewCredentialStore(f)
	ctx := context.Background()

	require.NoError(t, c.SetOrReplace(ctx, "", "original"))
	before := f.cred.HashedPassword

	err := c.SetOrReplace(ctx, "guess", "hijacked")
	require.ErrorIs(t, err, ErrCredentialMismatch)
	assert.Equal(t, 1, f.puts)
	assert.Equal(t, before, f.cred.HashedPassword)

	ok, err := c.Authenticate(ctx, "original")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSetOrReplaceRejectsEmpty(t *testing.T) {
	f := &fakeCredentials{}
	c := NewCredentialStore(f)

	require.ErrorIs(t, c.SetOrReplace(context.Background(), "", ""), ErrEmptyPassword)
	assert.Zero(t, f.puts)
}

func TestLongPasswordRejected(t *testing.T) {
	f := &fakeCredentials{}
	c := NewCredentialStore(f)
	ctx := context.Background()

	require.ErrorIs(t, c.SetOrReplace(ctx, "", strings.Repeat("a", 80)), ErrPasswordTooLong)
	assert.Zero(t, f.puts)

	require.NoError(t, c.SetOrReplace(ctx, "", strings.Repeat("a", 72)))
	assert.Equal(t, 1, f.puts)
}

func TestCredentialStorageFailurePropagates(t *testing.T) {
	boom := errors.New("disk unavailable")
	c := NewCredentialStore(&fakeCredentials{getErr: boom})
	ctx := context.Background()

	_, err := c.Authenticate(ctx, "x")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, c.SetOrReplace(ctx, "x", "y"), boom)
}

func TestAuthenticateReReadsStore(t *testing.T) {
	f := &fakeCredentials{}
	c := NewCredentialStore(f)
	ctx := context.Background()

	require.NoError(t, c.SetOrReplace(ctx, "", "one"))
	hashed, err := HashPassword("two")
	require.NoError(t, err)
	f.cred = &models.Credential{HashedPassword: hashed}

	ok, err := c.Authenticate(ctx, "two")
	require.NoError(t, err)
	assert.True(t, ok)
}
