package user

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	s, err := NewStore(path, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	require.NoError(t, err)
	return s, path
}

func TestValidate(t *testing.T) {
	tests := []struct {
		username string
		password string
		want     bool
	}{
		{"alice", "secret", true},
		{"al", "secret", false},         // username too short
		{"alice", "pw", false},          // password too short
		{"verylongname", "secret", false},
		{"alice", "p@ssword", false},    // non-word character
		{"", "", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Validate(tt.username, tt.password),
			"Validate(%q, %q)", tt.username, tt.password)
	}
}

func TestCreateAndAuthenticate(t *testing.T) {
	s, _ := newTestStore(t)

	u, err := s.Create("alice", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "secret", u.PasswordHash, "password stored in the clear")

	got, ok := s.Authenticate("alice", "secret")
	require.True(t, ok)
	assert.Equal(t, u.ID, got.ID)

	_, ok = s.Authenticate("alice", "wrong1")
	assert.False(t, ok)

	_, ok = s.Authenticate("nobody", "secret")
	assert.False(t, ok)
}

func TestCreateRejectsDuplicateUsername(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Create("alice", "secret")
	require.NoError(t, err)

	_, err = s.Create("alice", "other1")
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.Equal(t, 1, s.Count())
}

func TestCreateRejectsInvalidCredentials(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Create("al", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Create("alice", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestStoreReloadsFromFile(t *testing.T) {
	s, path := newTestStore(t)

	u, err := s.Create("alice", "secret")
	require.NoError(t, err)

	// A second store over the same file sees the record.
	reloaded, err := NewStore(path, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	require.NoError(t, err)

	got, ok := reloaded.Get(u.ID)
	require.True(t, ok)
	assert.Equal(t, u.Username, got.Username)

	_, ok = reloaded.Authenticate("alice", "secret")
	assert.True(t, ok)
}

func TestNewStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewStore(path, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	assert.Error(t, err)
}
