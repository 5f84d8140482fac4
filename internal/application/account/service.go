package account

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/go-care-nosql/internal/domain"
	s3infra "github.com/go-care-nosql/internal/infrastructure/s3"
	"github.com/go-care-nosql/internal/pkg/age"
	"github.com/go-care-nosql/internal/pkg/id"
	"github.com/go-care-nosql/internal/pkg/validate"
)

type Service interface {
	Profile(ctx context.Context, role, email string) (*domain.Account, error)
	DoctorDashboard(ctx context.Context, email string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, email string, req domain.UpdateProfileRequest) error
	UploadPhoto(ctx context.Context, email, filename string, r io.Reader) (string, error)
	DeleteAccount(ctx context.Context, email string) error
}

type accountStore interface {
	GetByEmail(ctx context.Context, coll domain.Collection, email string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, coll domain.Collection, email string, p domain.ProfileUpdate) error
	Delete(ctx context.Context, coll domain.Collection, email string) error
}

// BookingPurger removes every booking owned by an email.
type BookingPurger interface {
	DeleteByEmail(ctx context.Context, email string) error
}

type photoStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	accounts accountStore
	bookings []BookingPurger
	photos   photoStore
	now      func() time.Time
}

type ServiceDeps struct {
	AccountRepo accountStore
	// BookingRepos are purged on account deletion.
	BookingRepos []BookingPurger
	// PhotoStore is optional; without it photo uploads are refused.
	PhotoStore photoStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		accounts: deps.AccountRepo,
		bookings: deps.BookingRepos,
		photos:   deps.PhotoStore,
		now:      time.Now,
	}
}

func (s *service) Profile(ctx context.Context, role, email string) (*domain.Account, error) {
	coll := domain.CollectionUsers
	if role == domain.RoleDoctor {
		coll = domain.CollectionDoctors
	}
	return s.accounts.GetByEmail(ctx, coll, email)
}

func (s *service) DoctorDashboard(ctx context.Context, email string) (*domain.Account, error) {
	return s.accounts.GetByEmail(ctx, domain.CollectionDoctors, email)
}

// UpdateProfile applies the set fields to the patient account. A new date of
// birth also replaces the stored age.
func (s *service) UpdateProfile(ctx context.Context, email string, req domain.UpdateProfileRequest) error {
	if err := validate.Struct(&req); err != nil {
		return err
	}
	p := domain.ProfileUpdate{
		Name:   req.Name,
		Gender: req.Gender,
		DOB:    req.DOB,
		Phone:  req.Phone,
	}
	if req.DOB != nil {
		years, err := age.FromDOB(*req.DOB, s.now())
		if err != nil {
			return fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
		}
		p.Age = &years
	}
	if p.Empty() {
		return fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	return s.accounts.UpdateProfile(ctx, domain.CollectionUsers, email, p)
}

// UploadPhoto stores the image and points the account photo at it. The
// object is removed again if the account cannot be updated.
func (s *service) UploadPhoto(ctx context.Context, email, filename string, r io.Reader) (string, error) {
	if s.photos == nil {
		return "", fmt.Errorf("photo uploads are not configured: %w", domain.ErrBadRequest)
	}
	contentType := s3infra.DetectContentType(filename)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("unsupported photo type %q: %w", path.Ext(filename), domain.ErrBadRequest)
	}
	if _, err := s.accounts.GetByEmail(ctx, domain.CollectionUsers, email); err != nil {
		return "", err
	}
	key := fmt.Sprintf("photos/%s/%s%s", email, id.New(), strings.ToLower(path.Ext(filename)))
	url, err := s.photos.Upload(ctx, key, r, contentType)
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}
	if err := s.accounts.UpdateProfile(ctx, domain.CollectionUsers, email, domain.ProfileUpdate{Photo: &url}); err != nil {
		if delErr := s.photos.Delete(ctx, key); delErr != nil {
			slog.Warn("failed to remove orphaned photo", "key", key, "err", delErr)
		}
		return "", err
	}
	return url, nil
}

// DeleteAccount removes the patient account and every booking it owns.
// Bookings go first so a failure leaves the account in place for a retry.
func (s *service) DeleteAccount(ctx context.Context, email string) error {
	if _, err := s.accounts.GetByEmail(ctx, domain.CollectionUsers, email); err != nil {
		return err
	}
	var errs []error
	for _, b := range s.bookings {
		if err := b.DeleteByEmail(ctx, email); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("delete bookings of %s: %w", email, err)
	}
	return s.accounts.Delete(ctx, domain.CollectionUsers, email)
}
