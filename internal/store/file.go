package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

// FileStore keeps users in a JSON array on disk. It serves single-process
// development setups where no database is configured.
type FileStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewFileStore creates the file (and its directory) when missing
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create users dir: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, []byte("[]"), 0o600); err != nil {
			return nil, fmt.Errorf("create users file: %w", err)
		}
	}
	return &FileStore{path: path, now: time.Now}, nil
}

func (s *FileStore) CreateUser(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.read()
	if err != nil {
		return err
	}
	if lo.ContainsBy(users, func(x User) bool { return strings.EqualFold(x.Email, u.Email) }) {
		return ErrEmailExists
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}
	if u.ID == "" {
		u.ID = fmt.Sprintf("local_%d", u.CreatedAt.UnixMilli())
	}
	users = append(users, *u)
	return s.write(users)
}

func (s *FileStore) FindUserByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.read()
	if err != nil {
		return nil, err
	}
	u, ok := lo.Find(users, func(x User) bool { return strings.EqualFold(x.Email, email) })
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (s *FileStore) read() ([]User, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}
	var users []User
	if len(strings.TrimSpace(string(data))) == 0 {
		return users, nil
	}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse users file: %w", err)
	}
	return users, nil
}

// write replaces the file atomically via a temp file in the same directory
func (s *FileStore) write(users []User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".users-*.json")
	if err != nil {
		return fmt.Errorf("write users file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write users file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write users file: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}
