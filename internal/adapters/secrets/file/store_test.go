package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
)

func TestStoreRejectsInvalidUsernames(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	testCases := []struct {
		name     string
		username string
		wantErr  string
	}{
		{name: "empty", username: "", wantErr: "username is required"},
		{name: "whitespace", username: "   ", wantErr: "username is required"},
		{name: "absolute", username: "/absolute/path", wantErr: "invalid username"},
		{name: "traversal", username: "../escape", wantErr: "invalid username"},
		{name: "nested", username: "a/b", wantErr: "invalid username"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := store.Put(context.Background(), domain.Credentials{Username: tc.username, Password: "value"})
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestStorePutGetRoundTripAndPermissions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)
	want := domain.Credentials{Username: "user@nauta.com.cu", Password: "top-secret"}

	require.NoError(t, store.Put(context.Background(), want))

	got, err := store.Get(context.Background(), want.Username)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(filepath.Join(root, want.Username))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(secretFileMode), info.Mode().Perm())
}

func TestStoreGetMissingReturnsSecretNotFound(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	_, err := store.Get(context.Background(), "nobody@nauta.com.cu")
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestStoreDeleteIsIdempotentWhenCredentialsMissing(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	require.NoError(t, store.Delete(context.Background(), "user@nauta.com.cu"))
	require.NoError(t, store.Delete(context.Background(), "user@nauta.com.cu"))
}
