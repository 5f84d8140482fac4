package http

import (
	"context"
	"io"
	"time"

	"github.com/go-care-nosql/internal/domain"
	"github.com/go-care-nosql/internal/infrastructure/google"
)

// AccountRepository is the record-store contract for patient and doctor
// accounts. Every backend implements it with the same semantics.
type AccountRepository interface {
	// Create inserts atomically and returns domain.ErrConflict when the email
	// already exists in coll.
	Create(ctx context.Context, coll domain.Collection, a *domain.Account) error
	GetByEmail(ctx context.Context, coll domain.Collection, email string) (*domain.Account, error)
	SetOTP(ctx context.Context, coll domain.Collection, email, code string, expiresAt time.Time) error
	// MarkVerified sets verified and clears otp and otp_expiry together.
	MarkVerified(ctx context.Context, coll domain.Collection, email string) error
	UpdateProfile(ctx context.Context, coll domain.Collection, email string, p domain.ProfileUpdate) error
	Delete(ctx context.Context, coll domain.Collection, email string) error
	// Promote moves a from one collection to another. ErrNotFound when the
	// source is gone, ErrConflict when the target already holds the email.
	Promote(ctx context.Context, from, to domain.Collection, a *domain.Account) error
}

// BookingRepository is the record-store contract for one booking kind.
type BookingRepository[T any] interface {
	Put(ctx context.Context, b *T) error
	List(ctx context.Context) ([]T, error)
	ListByEmail(ctx context.Context, email string) ([]T, error)
	DeleteMatching(ctx context.Context, email string, match map[string]string) (int, error)
	DeleteByEmail(ctx context.Context, email string) error
}

// PhotoStore is the minimal interface the router requires from an object storage backend.
type PhotoStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// IDTokenVerifier checks a Google ID token.
type IDTokenVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

// GoogleOAuthFlow runs the browser redirect login against Google.
type GoogleOAuthFlow interface {
	AuthCodeURL(state string) string
	UserInfo(ctx context.Context, code string) (*google.UserInfo, error)
}

// Mailer delivers OTP emails.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// SMSSender delivers appointment confirmations.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}
