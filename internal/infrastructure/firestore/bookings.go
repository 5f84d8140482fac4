package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
)

// BookingRepo stores one kind of booking in a top-level collection with
// auto-generated document ids.
type BookingRepo[T any] struct {
	client     *firestore.Client
	collection string
}

func NewBookingRepo[T any](client *firestore.Client, collection string) *BookingRepo[T] {
	return &BookingRepo[T]{client: client, collection: collection}
}

func (r *BookingRepo[T]) Put(ctx context.Context, b *T) error {
	_, _, err := r.client.Collection(r.collection).Add(ctx, b)
	return err
}

func (r *BookingRepo[T]) List(ctx context.Context) ([]T, error) {
	return r.fetch(ctx, r.client.Collection(r.collection).Query)
}

func (r *BookingRepo[T]) ListByEmail(ctx context.Context, email string) ([]T, error) {
	return r.fetch(ctx, r.query(email, nil))
}

func (r *BookingRepo[T]) DeleteMatching(ctx context.Context, email string, match map[string]string) (int, error) {
	return r.deleteAll(ctx, r.query(email, match))
}

func (r *BookingRepo[T]) DeleteByEmail(ctx context.Context, email string) error {
	_, err := r.deleteAll(ctx, r.query(email, nil))
	return err
}

func (r *BookingRepo[T]) query(email string, match map[string]string) firestore.Query {
	q := r.client.Collection(r.collection).Where("email", "==", email)
	for k, v := range match {
		q = q.Where(k, "==", v)
	}
	return q
}

func (r *BookingRepo[T]) fetch(ctx context.Context, q firestore.Query) ([]T, error) {
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(snaps))
	for _, s := range snaps {
		var b T
		if err := s.DataTo(&b); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", r.collection, s.Ref.ID, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *BookingRepo[T]) deleteAll(ctx context.Context, q firestore.Query) (int, error) {
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return 0, err
	}
	if len(snaps) == 0 {
		return 0, nil
	}
	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(snaps))
	for _, s := range snaps {
		job, err := bw.Delete(s.Ref)
		if err != nil {
			bw.End()
			return 0, err
		}
		jobs = append(jobs, job)
	}
	bw.End()

	deleted := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
