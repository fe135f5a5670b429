package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmailExists  = errors.New("email already exists")
	ErrUserNotFound = errors.New("user not found")
)

// User is a registered account
type User struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:320;not null" json:"email"`
	Name         string    `gorm:"size:200" json:"name,omitempty"`
	PasswordHash string    `gorm:"column:password;not null" json:"password"`
	CreatedAt    time.Time `json:"created_at"`
}

// Query is a saved legal question
type Query struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index;size:64" json:"user_id"`
	QueryText string    `gorm:"type:text;not null" json:"query_text"`
	Metadata  string    `gorm:"type:text" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Upload is the metadata of a stored FIR document
type Upload struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index;size:64" json:"user_id"`
	Filename  string    `gorm:"size:512;not null" json:"filename"`
	URL       string    `gorm:"size:1024" json:"url"`
	Mime      string    `gorm:"size:128" json:"mime"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// UserStore persists accounts
type UserStore interface {
	CreateUser(ctx context.Context, u *User) error
	FindUserByEmail(ctx context.Context, email string) (*User, error)
}

// RecordStore persists saved queries and upload metadata
type RecordStore interface {
	SaveQuery(ctx context.Context, q *Query) error
	SaveUpload(ctx context.Context, u *Upload) error
}
