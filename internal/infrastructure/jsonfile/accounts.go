package jsonfile

import (
	"context"
	"fmt"
	"time"

	"github.com/go-care-nosql/internal/domain"
)

// accountRecord persists the fields Account hides from API responses.
type accountRecord struct {
	domain.Account
	PasswordHash string     `json:"password_hash"`
	OTP          string     `json:"otp,omitempty"`
	OTPExpiry    *time.Time `json:"otp_expiry,omitempty"`
}

func toRecord(a *domain.Account) accountRecord {
	return accountRecord{Account: *a, PasswordHash: a.PasswordHash, OTP: a.OTP, OTPExpiry: a.OTPExpiry}
}

func (r accountRecord) account() *domain.Account {
	a := r.Account
	a.PasswordHash = r.PasswordHash
	a.OTP = r.OTP
	a.OTPExpiry = r.OTPExpiry
	return &a
}

type AccountRepo struct {
	store *Store
}

func NewAccountRepo(store *Store) *AccountRepo {
	return &AccountRepo{store: store}
}

func (r *AccountRepo) Create(_ context.Context, coll domain.Collection, a *domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := load[accountRecord](r.store, string(coll))
	if err != nil {
		return err
	}
	if indexOf(records, a.Email) >= 0 {
		return fmt.Errorf("account %s: %w", a.Email, domain.ErrConflict)
	}
	return save(r.store, string(coll), append(records, toRecord(a)))
}

func (r *AccountRepo) GetByEmail(_ context.Context, coll domain.Collection, email string) (*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := load[accountRecord](r.store, string(coll))
	if err != nil {
		return nil, err
	}
	i := indexOf(records, email)
	if i < 0 {
		return nil, fmt.Errorf("account %s: %w", email, domain.ErrNotFound)
	}
	return records[i].account(), nil
}

func (r *AccountRepo) SetOTP(_ context.Context, coll domain.Collection, email, code string, expiresAt time.Time) error {
	return r.mutate(coll, email, func(rec *accountRecord) {
		rec.OTP = code
		rec.OTPExpiry = &expiresAt
	})
}

func (r *AccountRepo) MarkVerified(_ context.Context, coll domain.Collection, email string) error {
	return r.mutate(coll, email, func(rec *accountRecord) {
		rec.Verified = true
		rec.OTP = ""
		rec.OTPExpiry = nil
	})
}

func (r *AccountRepo) UpdateProfile(_ context.Context, coll domain.Collection, email string, p domain.ProfileUpdate) error {
	if p.Empty() {
		return fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	return r.mutate(coll, email, func(rec *accountRecord) {
		if p.Name != nil {
			rec.Name = *p.Name
		}
		if p.Gender != nil {
			rec.Gender = *p.Gender
		}
		if p.DOB != nil {
			rec.DOB = *p.DOB
		}
		if p.Age != nil {
			rec.Age = *p.Age
		}
		if p.Phone != nil {
			rec.Phone = *p.Phone
		}
		if p.Photo != nil {
			rec.Photo = *p.Photo
		}
	})
}

// Delete is a no-op when the account does not exist.
func (r *AccountRepo) Delete(_ context.Context, coll domain.Collection, email string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := load[accountRecord](r.store, string(coll))
	if err != nil {
		return err
	}
	i := indexOf(records, email)
	if i < 0 {
		return nil
	}
	return save(r.store, string(coll), append(records[:i], records[i+1:]...))
}

func (r *AccountRepo) Promote(_ context.Context, from, to domain.Collection, a *domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	src, err := load[accountRecord](r.store, string(from))
	if err != nil {
		return err
	}
	dst, err := load[accountRecord](r.store, string(to))
	if err != nil {
		return err
	}
	i := indexOf(src, a.Email)
	if i < 0 {
		return fmt.Errorf("pending account %s: %w", a.Email, domain.ErrNotFound)
	}
	if indexOf(dst, a.Email) >= 0 {
		return fmt.Errorf("account %s: %w", a.Email, domain.ErrConflict)
	}
	if err := save(r.store, string(to), append(dst, toRecord(a))); err != nil {
		return err
	}
	return save(r.store, string(from), append(src[:i], src[i+1:]...))
}

func (r *AccountRepo) mutate(coll domain.Collection, email string, fn func(*accountRecord)) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := load[accountRecord](r.store, string(coll))
	if err != nil {
		return err
	}
	i := indexOf(records, email)
	if i < 0 {
		return fmt.Errorf("account %s: %w", email, domain.ErrNotFound)
	}
	fn(&records[i])
	records[i].UpdatedAt = time.Now().UTC()
	return save(r.store, string(coll), records)
}

func indexOf(records []accountRecord, email string) int {
	for i := range records {
		if records[i].Email == email {
			return i
		}
	}
	return -1
}
