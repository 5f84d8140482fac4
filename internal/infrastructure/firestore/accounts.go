package firestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-care-nosql/internal/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type AccountRepo struct {
	client *firestore.Client
}

func NewAccountRepo(client *firestore.Client) *AccountRepo {
	return &AccountRepo{client: client}
}

func (r *AccountRepo) doc(coll domain.Collection, email string) (*firestore.DocumentRef, error) {
	if email == "" || strings.Contains(email, "/") {
		return nil, fmt.Errorf("email %q cannot be used as a document id: %w", email, domain.ErrBadRequest)
	}
	return r.client.Collection(string(coll)).Doc(email), nil
}

func (r *AccountRepo) Create(ctx context.Context, coll domain.Collection, a *domain.Account) error {
	ref, err := r.doc(coll, a.Email)
	if err != nil {
		return err
	}
	_, err = ref.Create(ctx, a)
	if status.Code(err) == codes.AlreadyExists {
		return fmt.Errorf("account %s: %w", a.Email, domain.ErrConflict)
	}
	return err
}

func (r *AccountRepo) GetByEmail(ctx context.Context, coll domain.Collection, email string) (*domain.Account, error) {
	ref, err := r.doc(coll, email)
	if err != nil {
		return nil, err
	}
	snap, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("account %s: %w", email, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var a domain.Account
	if err := snap.DataTo(&a); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	return &a, nil
}

func (r *AccountRepo) SetOTP(ctx context.Context, coll domain.Collection, email, code string, expiresAt time.Time) error {
	return r.update(ctx, coll, email, []firestore.Update{
		{Path: "otp", Value: code},
		{Path: "otp_expiry", Value: expiresAt},
	})
}

func (r *AccountRepo) MarkVerified(ctx context.Context, coll domain.Collection, email string) error {
	return r.update(ctx, coll, email, []firestore.Update{
		{Path: "verified", Value: true},
		{Path: "otp", Value: firestore.Delete},
		{Path: "otp_expiry", Value: firestore.Delete},
	})
}

func (r *AccountRepo) UpdateProfile(ctx context.Context, coll domain.Collection, email string, p domain.ProfileUpdate) error {
	if p.Empty() {
		return fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	return r.update(ctx, coll, email, profileUpdates(p))
}

func (r *AccountRepo) Delete(ctx context.Context, coll domain.Collection, email string) error {
	ref, err := r.doc(coll, email)
	if err != nil {
		return err
	}
	_, err = ref.Delete(ctx)
	return err
}

// Promote moves a from one collection to another inside a transaction.
func (r *AccountRepo) Promote(ctx context.Context, from, to domain.Collection, a *domain.Account) error {
	src, err := r.doc(from, a.Email)
	if err != nil {
		return err
	}
	dst, err := r.doc(to, a.Email)
	if err != nil {
		return err
	}
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(src); err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("pending account %s: %w", a.Email, domain.ErrNotFound)
			}
			return err
		}
		if _, err := tx.Get(dst); err == nil {
			return fmt.Errorf("account %s: %w", a.Email, domain.ErrConflict)
		} else if status.Code(err) != codes.NotFound {
			return err
		}
		if err := tx.Create(dst, a); err != nil {
			return err
		}
		return tx.Delete(src)
	})
}

func (r *AccountRepo) update(ctx context.Context, coll domain.Collection, email string, updates []firestore.Update) error {
	ref, err := r.doc(coll, email)
	if err != nil {
		return err
	}
	updates = append(updates, firestore.Update{Path: "updated_at", Value: time.Now().UTC()})
	// Update fails with NotFound on a missing document.
	_, err = ref.Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("account %s: %w", email, domain.ErrNotFound)
	}
	return err
}

func profileUpdates(p domain.ProfileUpdate) []firestore.Update {
	fields := p.Fields()
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	return updates
}
