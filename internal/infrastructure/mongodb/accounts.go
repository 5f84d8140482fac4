package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-care-nosql/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AccountRepo stores accounts in one collection per domain.Collection.
// Email uniqueness relies on the index created by CreateDefaultIndexes.
type AccountRepo struct {
	db *DB
}

func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) Create(ctx context.Context, coll domain.Collection, a *domain.Account) error {
	ctx, cancel := r.db.getContext(ctx)
	defer cancel()

	_, err := r.db.collection(string(coll)).InsertOne(ctx, a)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("account %s: %w", a.Email, domain.ErrConflict)
	}
	return err
}

func (r *AccountRepo) GetByEmail(ctx context.Context, coll domain.Collection, email string) (*domain.Account, error) {
	ctx, cancel := r.db.getContext(ctx)
	defer cancel()

	var a domain.Account
	err := r.db.collection(string(coll)).FindOne(ctx, bson.M{"email": email}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("account %s: %w", email, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) SetOTP(ctx context.Context, coll domain.Collection, email, code string, expiresAt time.Time) error {
	return r.update(ctx, coll, email, bson.M{
		"$set": bson.M{"otp": code, "otp_expiry": expiresAt, "updated_at": time.Now().UTC()},
	})
}

func (r *AccountRepo) MarkVerified(ctx context.Context, coll domain.Collection, email string) error {
	return r.update(ctx, coll, email, bson.M{
		"$set":   bson.M{"verified": true, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"otp": "", "otp_expiry": ""},
	})
}

func (r *AccountRepo) UpdateProfile(ctx context.Context, coll domain.Collection, email string, p domain.ProfileUpdate) error {
	if p.Empty() {
		return fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range p.Fields() {
		set[k] = v
	}
	return r.update(ctx, coll, email, bson.M{"$set": set})
}

func (r *AccountRepo) Delete(ctx context.Context, coll domain.Collection, email string) error {
	ctx, cancel := r.db.getContext(ctx)
	defer cancel()

	_, err := r.db.collection(string(coll)).DeleteOne(ctx, bson.M{"email": email})
	return err
}

// Promote upserts a into the target collection, then removes the source
// record. The upsert is keyed on email so a retry after a failed delete
// converges instead of duplicating. An existing target record that was not
// produced by this promotion is a conflict.
func (r *AccountRepo) Promote(ctx context.Context, from, to domain.Collection, a *domain.Account) error {
	ctx, cancel := r.db.getContext(ctx)
	defer cancel()

	src := r.db.collection(string(from))
	dst := r.db.collection(string(to))

	n, err := src.CountDocuments(ctx, bson.M{"email": a.Email})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("pending account %s: %w", a.Email, domain.ErrNotFound)
	}

	var existing domain.Account
	err = dst.FindOne(ctx, bson.M{"email": a.Email}).Decode(&existing)
	switch {
	case err == nil && existing.ID != a.ID:
		return fmt.Errorf("account %s: %w", a.Email, domain.ErrConflict)
	case err != nil && !errors.Is(err, mongo.ErrNoDocuments):
		return err
	}

	_, err = dst.ReplaceOne(ctx, bson.M{"email": a.Email}, a, options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("account %s: %w", a.Email, domain.ErrConflict)
	}
	if err != nil {
		return err
	}
	_, err = src.DeleteOne(ctx, bson.M{"email": a.Email})
	return err
}

func (r *AccountRepo) update(ctx context.Context, coll domain.Collection, email string, update bson.M) error {
	ctx, cancel := r.db.getContext(ctx)
	defer cancel()

	res, err := r.db.collection(string(coll)).UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("account %s: %w", email, domain.ErrNotFound)
	}
	return nil
}
