package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// BookingRepo stores one kind of booking in a single collection.
type BookingRepo[T any] struct {
	db         *DB
	collection string
}

func NewBookingRepo[T any](db *DB, collection string) *BookingRepo[T] {
	return &BookingRepo[T]{db: db, collection: collection}
}

func (r *BookingRepo[T]) Put(ctx context.Context, b *T) error {
	ctx, cancel := r.db.getContext(ctx)
	defer cancel()

	_, err := r.db.collection(r.collection).InsertOne(ctx, b)
	return err
}

func (r *BookingRepo[T]) List(ctx context.Context) ([]T, error) {
	return r.find(ctx, bson.M{})
}

func (r *BookingRepo[T]) ListByEmail(ctx context.Context, email string) ([]T, error) {
	return r.find(ctx, bson.M{"email": email})
}

func (r *BookingRepo[T]) DeleteMatching(ctx context.Context, email string, match map[string]string) (int, error) {
	ctx, cancel := r.db.getContext(ctx)
	defer cancel()

	res, err := r.db.collection(r.collection).DeleteMany(ctx, matchFilter(email, match))
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

func (r *BookingRepo[T]) DeleteByEmail(ctx context.Context, email string) error {
	ctx, cancel := r.db.getContext(ctx)
	defer cancel()

	_, err := r.db.collection(r.collection).DeleteMany(ctx, bson.M{"email": email})
	return err
}

func (r *BookingRepo[T]) find(ctx context.Context, filter bson.M) ([]T, error) {
	ctx, cancel := r.db.getContext(ctx)
	defer cancel()

	cur, err := r.db.collection(r.collection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func matchFilter(email string, match map[string]string) bson.M {
	filter := bson.M{"email": email}
	for k, v := range match {
		filter[k] = v
	}
	return filter
}
