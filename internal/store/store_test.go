package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "users.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }

	u := &User{Email: "asha@example.com", Name: "Asha", PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.Equal(t, "local_1700000000000", u.ID)

	assert.ErrorIs(t, s.CreateUser(ctx, &User{Email: "ASHA@example.com", PasswordHash: "x"}), ErrEmailExists)

	got, err := s.FindUserByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Name)
	assert.Equal(t, "hash", got.PasswordHash)

	_, err = s.FindUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"password": "hash"`)

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	_, err = reopened.FindUserByEmail(ctx, "asha@example.com")
	assert.NoError(t, err)
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := NewFileStore(path)
	require.NoError(t, err)
	_, err = s.FindUserByEmail(context.Background(), "a@b.c")
	assert.Error(t, err)
}

func openTestDB(t *testing.T) *GormStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "vidhi.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGormStoreUsers(t *testing.T) {
	ctx := context.Background()
	s := openTestDB(t)

	u := &User{Email: " Ravi@Example.com ", PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ravi@example.com", u.Email)

	assert.ErrorIs(t, s.CreateUser(ctx, &User{Email: "ravi@example.com", PasswordHash: "x"}), ErrEmailExists)

	got, err := s.FindUserByEmail(ctx, "RAVI@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.FindUserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGormStoreRecords(t *testing.T) {
	ctx := context.Background()
	s := openTestDB(t)

	q := &Query{UserID: "u1", QueryText: "Can I file an FIR online?", Metadata: `{"source":"web"}`}
	require.NoError(t, s.SaveQuery(ctx, q))
	assert.NotEmpty(t, q.ID)
	assert.False(t, q.CreatedAt.IsZero())

	up := &Upload{UserID: "u1", Filename: "u1_1_fir.pdf", Mime: "application/pdf", Size: 42}
	require.NoError(t, s.SaveUpload(ctx, up))

	var count int64
	require.NoError(t, s.db.Model(&Upload{}).Where("user_id = ?", "u1").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var stored Query
	require.NoError(t, s.db.First(&stored, "id = ?", q.ID).Error)
	assert.Equal(t, `{"source":"web"}`, stored.Metadata)
}
