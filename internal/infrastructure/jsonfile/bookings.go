package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-care-nosql/internal/domain"
)

// BookingRepo keeps one kind of booking in a single collection file.
// Matching uses the JSON field names of T.
type BookingRepo[T any] struct {
	store      *Store
	collection string
}

func NewBookingRepo[T any](store *Store, collection string) *BookingRepo[T] {
	return &BookingRepo[T]{store: store, collection: collection}
}

func (r *BookingRepo[T]) Put(_ context.Context, b *T) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := load[T](r.store, r.collection)
	if err != nil {
		return err
	}
	return save(r.store, r.collection, append(records, *b))
}

func (r *BookingRepo[T]) List(_ context.Context) ([]T, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return load[T](r.store, r.collection)
}

func (r *BookingRepo[T]) ListByEmail(_ context.Context, email string) ([]T, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := load[T](r.store, r.collection)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		ok, err := matches(rec, map[string]string{domain.FieldEmail: email})
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *BookingRepo[T]) DeleteMatching(_ context.Context, email string, match map[string]string) (int, error) {
	fields := map[string]string{domain.FieldEmail: email}
	for k, v := range match {
		fields[k] = v
	}
	return r.deleteWhere(fields)
}

func (r *BookingRepo[T]) DeleteByEmail(_ context.Context, email string) error {
	_, err := r.deleteWhere(map[string]string{domain.FieldEmail: email})
	return err
}

func (r *BookingRepo[T]) deleteWhere(fields map[string]string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := load[T](r.store, r.collection)
	if err != nil {
		return 0, err
	}
	kept := make([]T, 0, len(records))
	for _, rec := range records {
		ok, err := matches(rec, fields)
		if err != nil {
			return 0, err
		}
		if !ok {
			kept = append(kept, rec)
		}
	}
	deleted := len(records) - len(kept)
	if deleted == 0 {
		return 0, nil
	}
	return deleted, save(r.store, r.collection, kept)
}

func matches[T any](rec T, fields map[string]string) (bool, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("encode booking: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return false, fmt.Errorf("decode booking: %w", err)
	}
	for k, want := range fields {
		got, ok := m[k].(string)
		if !ok || got != want {
			return false, nil
		}
	}
	return true, nil
}
