package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrExists       = errors.New("object already exists")
	ErrNotFound     = errors.New("object not found")
	ErrInvalidName  = errors.New("invalid object name")
	ErrInvalidToken = errors.New("invalid or expired download token")
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeName replaces every character outside [a-zA-Z0-9._-] with '_'
func SanitizeName(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

// Object describes a stored blob
type Object struct {
	Path        string
	Size        int64
	ContentType string
}

// Store is the storage backend for uploaded documents
type Store interface {
	Put(ctx context.Context, name string, r io.Reader, contentType string) (*Object, error)
	PublicURL(name string) string
	SignedURL(name string, ttl time.Duration) (string, error)
	Verify(name, token string) error
	Path(name string) (string, error)
}

// FSStore writes blobs into a local directory and hands out JWT-signed
// download links served under <baseURL>/files/<name>.
type FSStore struct {
	dir     string
	baseURL string
	secret  []byte
	now     func() time.Time
}

type downloadClaims struct {
	jwt.RegisteredClaims
	Path string `json:"path"`
}

// NewFSStore creates dir when missing
func NewFSStore(dir, baseURL, secret string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FSStore{dir: dir, baseURL: baseURL, secret: []byte(secret), now: time.Now}, nil
}

// Put stores r under name. Existing objects are never overwritten.
func (s *FSStore) Put(ctx context.Context, name string, r io.Reader, contentType string) (*Object, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, os.ErrExist) {
		return nil, ErrExists
	}
	if err != nil {
		return nil, fmt.Errorf("create object: %w", err)
	}

	n, err := io.Copy(f, readerWithContext(ctx, r))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write object: %w", err)
	}

	return &Object{Path: name, Size: n, ContentType: contentType}, nil
}

// Path resolves name inside the store directory
func (s *FSStore) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || SanitizeName(name) != name {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}

// PublicURL is the unsigned location of name; it only resolves with a token
func (s *FSStore) PublicURL(name string) string {
	return s.baseURL + "/files/" + url.PathEscape(name)
}

// SignedURL returns PublicURL(name) with a token valid for ttl
func (s *FSStore) SignedURL(name string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := downloadClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Path: name,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return s.PublicURL(name) + "?token=" + url.QueryEscape(token), nil
}

// Verify checks that token was issued by SignedURL for name and is unexpired
func (s *FSStore) Verify(name, token string) error {
	parsed, err := jwt.ParseWithClaims(token, &downloadClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*downloadClaims)
	if !ok || claims.Path != name {
		return ErrInvalidToken
	}
	return nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}
