package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-care-nosql/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	return s
}

func TestAccountRepo_CreateAndGet_PersistsHiddenFields(t *testing.T) {
	s := newTestStore(t)
	repo := NewAccountRepo(s)
	ctx := context.Background()
	exp := time.Date(2025, 3, 4, 10, 5, 0, 0, time.UTC)

	err := repo.Create(ctx, domain.CollectionUsers, &domain.Account{
		Email:        "a@x.com",
		Name:         "Asha Rao",
		Role:         domain.RolePatient,
		PasswordHash: "$2a$10$hash",
		OTP:          "123456",
		OTPExpiry:    &exp,
	})
	require.NoError(t, err)

	got, err := NewAccountRepo(s).GetByEmail(ctx, domain.CollectionUsers, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$hash", got.PasswordHash)
	assert.Equal(t, "123456", got.OTP)
	require.NotNil(t, got.OTPExpiry)
	assert.True(t, exp.Equal(*got.OTPExpiry))

	raw, err := os.ReadFile(filepath.Join(s.dir, "users.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"password_hash"`)
}

func TestAccountRepo_Create_DuplicateEmailConflicts(t *testing.T) {
	repo := NewAccountRepo(newTestStore(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, domain.CollectionUsers, &domain.Account{Email: "a@x.com"}))
	err := repo.Create(ctx, domain.CollectionUsers, &domain.Account{Email: "a@x.com"})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	// Same email in another collection is independent.
	assert.NoError(t, repo.Create(ctx, domain.CollectionDoctors, &domain.Account{Email: "a@x.com"}))
}

func TestAccountRepo_Create_ConcurrentSignupsSingleWinner(t *testing.T) {
	repo := NewAccountRepo(newTestStore(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Create(ctx, domain.CollectionUsers, &domain.Account{Email: "race@x.com"}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestAccountRepo_GetByEmail_NotFound(t *testing.T) {
	repo := NewAccountRepo(newTestStore(t))
	_, err := repo.GetByEmail(context.Background(), domain.CollectionUsers, "nobody@x.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAccountRepo_MarkVerified_ClearsOTP(t *testing.T) {
	repo := NewAccountRepo(newTestStore(t))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, domain.CollectionUsers, &domain.Account{Email: "a@x.com"}))
	require.NoError(t, repo.SetOTP(ctx, domain.CollectionUsers, "a@x.com", "654321", time.Now().Add(5*time.Minute)))

	got, err := repo.GetByEmail(ctx, domain.CollectionUsers, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "654321", got.OTP)

	require.NoError(t, repo.MarkVerified(ctx, domain.CollectionUsers, "a@x.com"))
	got, err = repo.GetByEmail(ctx, domain.CollectionUsers, "a@x.com")
	require.NoError(t, err)
	assert.True(t, got.Verified)
	assert.Empty(t, got.OTP)
	assert.Nil(t, got.OTPExpiry)
}

func TestAccountRepo_SetOTP_MissingAccount(t *testing.T) {
	repo := NewAccountRepo(newTestStore(t))
	err := repo.SetOTP(context.Background(), domain.CollectionUsers, "a@x.com", "1", time.Now())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAccountRepo_UpdateProfile(t *testing.T) {
	repo := NewAccountRepo(newTestStore(t))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, domain.CollectionUsers, &domain.Account{Email: "a@x.com", Name: "Old", Phone: "1"}))

	name, age := "New", 30
	require.NoError(t, repo.UpdateProfile(ctx, domain.CollectionUsers, "a@x.com", domain.ProfileUpdate{Name: &name, Age: &age}))

	got, err := repo.GetByEmail(ctx, domain.CollectionUsers, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, 30, got.Age)
	assert.Equal(t, "1", got.Phone)

	err = repo.UpdateProfile(ctx, domain.CollectionUsers, "a@x.com", domain.ProfileUpdate{})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestAccountRepo_Delete(t *testing.T) {
	repo := NewAccountRepo(newTestStore(t))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, domain.CollectionUsers, &domain.Account{Email: "a@x.com"}))

	require.NoError(t, repo.Delete(ctx, domain.CollectionUsers, "a@x.com"))
	require.NoError(t, repo.Delete(ctx, domain.CollectionUsers, "a@x.com"))
	_, err := repo.GetByEmail(ctx, domain.CollectionUsers, "a@x.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAccountRepo_Promote(t *testing.T) {
	repo := NewAccountRepo(newTestStore(t))
	ctx := context.Background()
	pending := &domain.Account{Email: "d@x.com", Role: domain.RoleDoctor, ID: "01HX"}
	require.NoError(t, repo.Create(ctx, domain.CollectionPendingDoctors, pending))

	pending.Verified = true
	require.NoError(t, repo.Promote(ctx, domain.CollectionPendingDoctors, domain.CollectionDoctors, pending))

	got, err := repo.GetByEmail(ctx, domain.CollectionDoctors, "d@x.com")
	require.NoError(t, err)
	assert.True(t, got.Verified)
	assert.Equal(t, "01HX", got.ID)

	_, err = repo.GetByEmail(ctx, domain.CollectionPendingDoctors, "d@x.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	// A second promotion finds no staging record.
	err = repo.Promote(ctx, domain.CollectionPendingDoctors, domain.CollectionDoctors, pending)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAccountRepo_Promote_ExistingTargetConflicts(t *testing.T) {
	repo := NewAccountRepo(newTestStore(t))
	ctx := context.Background()
	a := &domain.Account{Email: "d@x.com"}
	require.NoError(t, repo.Create(ctx, domain.CollectionPendingDoctors, a))
	require.NoError(t, repo.Create(ctx, domain.CollectionDoctors, a))

	err := repo.Promote(ctx, domain.CollectionPendingDoctors, domain.CollectionDoctors, a)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	// Staging record is left in place.
	_, err = repo.GetByEmail(ctx, domain.CollectionPendingDoctors, "d@x.com")
	assert.NoError(t, err)
}

func TestLoad_CorruptFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.path("users"), []byte("{not json"), 0o644))
	_, err := NewAccountRepo(s).GetByEmail(context.Background(), domain.CollectionUsers, "a@x.com")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "decode users"))
}
