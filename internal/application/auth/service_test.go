package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/go-care-nosql/internal/domain"
	"github.com/go-care-nosql/internal/infrastructure/google"
	"github.com/go-care-nosql/internal/infrastructure/jsonfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockAccountStore struct{ mock.Mock }

func (m *mockAccountStore) Create(ctx context.Context, coll domain.Collection, a *domain.Account) error {
	return m.Called(ctx, coll, a).Error(0)
}
func (m *mockAccountStore) GetByEmail(ctx context.Context, coll domain.Collection, email string) (*domain.Account, error) {
	args := m.Called(ctx, coll, email)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountStore) SetOTP(ctx context.Context, coll domain.Collection, email, code string, expiresAt time.Time) error {
	return m.Called(ctx, coll, email, code, expiresAt).Error(0)
}
func (m *mockAccountStore) MarkVerified(ctx context.Context, coll domain.Collection, email string) error {
	return m.Called(ctx, coll, email).Error(0)
}
func (m *mockAccountStore) Promote(ctx context.Context, from, to domain.Collection, a *domain.Account) error {
	return m.Called(ctx, from, to, a).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

// recordingMailer captures the last OTP it was asked to send.
type recordingMailer struct {
	lastTo   string
	lastCode string
	fail     error
}

var otpPattern = regexp.MustCompile(`\b(\d{6})\b`)

func (m *recordingMailer) SendEmail(to, _, body string) error {
	m.lastTo = to
	if match := otpPattern.FindStringSubmatch(body); match != nil {
		m.lastCode = match[1]
	}
	return m.fail
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(email, role, id string) (string, error) {
	args := m.Called(email, role, id)
	return args.String(0), args.Error(1)
}

type mockVerifier struct{ mock.Mock }

func (m *mockVerifier) Verify(ctx context.Context, token string) (*google.Payload, error) {
	args := m.Called(ctx, token)
	if p, _ := args.Get(0).(*google.Payload); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- builders ---

func newService(store accountStore, ml mailer, jwt jwtSigner) *service {
	return NewService(ServiceDeps{
		AccountRepo: store,
		Mailer:      ml,
		JWTProvider: jwt,
		OTPExpiry:   5 * time.Minute,
		BcryptCost:  bcrypt.MinCost,
	}).(*service)
}

func newJSONStore(t *testing.T) *jsonfile.AccountRepo {
	t.Helper()
	s, err := jsonfile.NewStore(t.TempDir())
	require.NoError(t, err)
	return jsonfile.NewAccountRepo(s)
}

func aliceSignup() domain.PatientSignupRequest {
	return domain.PatientSignupRequest{
		FirstName: "Alice",
		LastName:  "Liddell",
		Email:     "alice@x.com",
		Password:  "Secret1",
		Gender:    "female",
		Role:      domain.RolePatient,
		DOB:       "1990-05-17",
		Age:       35,
		Phone:     "5550100",
	}
}

func doctorSignup() domain.DoctorSignupRequest {
	return domain.DoctorSignupRequest{
		FirstName:      "Gregory",
		LastName:       "House",
		Specialization: "Diagnostics",
		HospitalName:   "Princeton-Plainsboro",
		DOB:            "1959-06-11",
		Phone:          "5550199",
		Email:          "house@x.com",
		Experience:     "30",
		Password:       "Vicodin1",
	}
}

// --- scenarios ---

func TestPatientScenario_SignupVerifyLogin(t *testing.T) {
	store := newJSONStore(t)
	ml := &recordingMailer{}
	jwt := &mockJWTSigner{}
	jwt.On("Sign", "alice@x.com", domain.RolePatient, "").Return("signed-token", nil)
	svc := newService(store, ml, jwt)
	ctx := context.Background()

	require.NoError(t, svc.RegisterPatient(ctx, aliceSignup()))

	stored, err := store.GetByEmail(ctx, domain.CollectionUsers, "alice@x.com")
	require.NoError(t, err)
	assert.False(t, stored.Verified)
	assert.Regexp(t, `^\d{6}$`, stored.OTP)
	assert.Equal(t, stored.OTP, ml.lastCode)
	require.NotNil(t, stored.OTPExpiry)
	assert.NotEqual(t, "Secret1", stored.PasswordHash)

	// Login before verification is refused.
	_, err = svc.LoginPatient(ctx, domain.LoginRequest{Email: "alice@x.com", Password: "Secret1"})
	assert.True(t, errors.Is(err, domain.ErrUnverified))

	err = svc.VerifyPatient(ctx, domain.VerifyOTPRequest{Email: "alice@x.com", OTP: "000000"})
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))

	require.NoError(t, svc.VerifyPatient(ctx, domain.VerifyOTPRequest{Email: "alice@x.com", OTP: stored.OTP}))
	verified, err := store.GetByEmail(ctx, domain.CollectionUsers, "alice@x.com")
	require.NoError(t, err)
	assert.True(t, verified.Verified)
	assert.Empty(t, verified.OTP)
	assert.Nil(t, verified.OTPExpiry)

	res, err := svc.LoginPatient(ctx, domain.LoginRequest{Email: "alice@x.com", Password: "Secret1"})
	require.NoError(t, err)
	assert.Equal(t, "signed-token", res.Token)
	assert.Equal(t, "alice@x.com", res.Account.Email)

	_, err = svc.LoginPatient(ctx, domain.LoginRequest{Email: "alice@x.com", Password: "WrongPass"})
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))

	// Verification is one-shot.
	err = svc.VerifyPatient(ctx, domain.VerifyOTPRequest{Email: "alice@x.com", OTP: stored.OTP})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDoctorScenario_VerifyPromotesStagingRecord(t *testing.T) {
	store := newJSONStore(t)
	ml := &recordingMailer{}
	jwt := &mockJWTSigner{}
	svc := newService(store, ml, jwt)
	fixed := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	require.NoError(t, svc.RegisterDoctor(ctx, doctorSignup()))
	pending, err := store.GetByEmail(ctx, domain.CollectionPendingDoctors, "house@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, pending.ID)
	_, err = store.GetByEmail(ctx, domain.CollectionDoctors, "house@x.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	svc.now = func() time.Time { return fixed.Add(2 * time.Minute) }
	require.NoError(t, svc.VerifyDoctor(ctx, domain.VerifyOTPRequest{Email: "house@x.com", OTP: ml.lastCode}))

	doc, err := store.GetByEmail(ctx, domain.CollectionDoctors, "house@x.com")
	require.NoError(t, err)
	assert.True(t, doc.Verified)
	assert.True(t, fixed.Add(2*time.Minute).Equal(doc.CreatedAt))
	assert.Equal(t, pending.ID, doc.ID)
	assert.Empty(t, doc.OTP)

	_, err = store.GetByEmail(ctx, domain.CollectionPendingDoctors, "house@x.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	jwt.On("Sign", "house@x.com", domain.RoleDoctor, pending.ID).Return("doc-token", nil)
	res, err := svc.LoginDoctor(ctx, domain.LoginRequest{Email: "house@x.com", Password: "Vicodin1"})
	require.NoError(t, err)
	assert.Equal(t, "doc-token", res.Token)

	// A verified doctor cannot sign up again.
	err = svc.RegisterDoctor(ctx, doctorSignup())
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

// --- Register ---

func TestRegisterPatient_MissingFields(t *testing.T) {
	svc := newService(nil, nil, nil)
	req := aliceSignup()
	req.Phone = ""
	err := svc.RegisterPatient(context.Background(), req)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestRegisterPatient_DoctorRoleRejected(t *testing.T) {
	svc := newService(nil, nil, nil)
	req := aliceSignup()
	req.Role = domain.RoleDoctor
	err := svc.RegisterPatient(context.Background(), req)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestRegisterPatient_DuplicateEmail(t *testing.T) {
	store := newJSONStore(t)
	svc := newService(store, &recordingMailer{}, nil)
	ctx := context.Background()
	require.NoError(t, svc.RegisterPatient(ctx, aliceSignup()))

	err := svc.RegisterPatient(ctx, aliceSignup())
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRegisterPatient_MailFailureKeepsRecord(t *testing.T) {
	store := newJSONStore(t)
	svc := newService(store, &recordingMailer{fail: fmt.Errorf("smtp down")}, nil)
	ctx := context.Background()

	err := svc.RegisterPatient(ctx, aliceSignup())
	assert.True(t, errors.Is(err, domain.ErrDelivery))

	a, err := store.GetByEmail(ctx, domain.CollectionUsers, "alice@x.com")
	require.NoError(t, err)
	assert.False(t, a.Verified)
}

func TestRegisterPatient_SendsOTPMail(t *testing.T) {
	as := &mockAccountStore{}
	ml := &mockMailer{}
	as.On("Create", mock.Anything, domain.CollectionUsers, mock.MatchedBy(func(a *domain.Account) bool {
		return a.Email == "alice@x.com" && !a.Verified && a.AuthProvider == domain.ProviderLocal
	})).Return(nil)
	ml.On("SendEmail", "alice@x.com", "Your OTP for CareHouzz Verification",
		mock.MatchedBy(func(body string) bool {
			return otpPattern.MatchString(body) && regexp.MustCompile(`valid for 5 minutes`).MatchString(body)
		})).Return(nil)

	svc := newService(as, ml, nil)
	require.NoError(t, svc.RegisterPatient(context.Background(), aliceSignup()))
	as.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestRegisterDoctor_StoreErrorOnLookup(t *testing.T) {
	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, domain.CollectionDoctors, "house@x.com").Return(nil, errors.New("boom"))

	svc := newService(as, nil, nil)
	err := svc.RegisterDoctor(context.Background(), doctorSignup())
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrConflict))
	as.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterDoctor_RepeatedPendingSignupConflicts(t *testing.T) {
	store := newJSONStore(t)
	svc := newService(store, &recordingMailer{}, nil)
	ctx := context.Background()
	require.NoError(t, svc.RegisterDoctor(ctx, doctorSignup()))

	err := svc.RegisterDoctor(ctx, doctorSignup())
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

// --- Verify ---

func TestVerifyPatient_UnknownEmail(t *testing.T) {
	svc := newService(newJSONStore(t), nil, nil)
	err := svc.VerifyPatient(context.Background(), domain.VerifyOTPRequest{Email: "ghost@x.com", OTP: "123456"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestVerifyPatient_ExpiredCodeIsNotCleared(t *testing.T) {
	store := newJSONStore(t)
	ml := &recordingMailer{}
	svc := newService(store, ml, nil)
	start := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }
	ctx := context.Background()
	require.NoError(t, svc.RegisterPatient(ctx, aliceSignup()))

	svc.now = func() time.Time { return start.Add(5*time.Minute + time.Second) }
	err := svc.VerifyPatient(ctx, domain.VerifyOTPRequest{Email: "alice@x.com", OTP: ml.lastCode})
	assert.True(t, errors.Is(err, domain.ErrExpired))

	a, err := store.GetByEmail(ctx, domain.CollectionUsers, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, ml.lastCode, a.OTP)
	assert.False(t, a.Verified)
}

func TestVerifyPatient_ExactExpiryStillValid(t *testing.T) {
	store := newJSONStore(t)
	ml := &recordingMailer{}
	svc := newService(store, ml, nil)
	start := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }
	ctx := context.Background()
	require.NoError(t, svc.RegisterPatient(ctx, aliceSignup()))

	svc.now = func() time.Time { return start.Add(5 * time.Minute) }
	assert.NoError(t, svc.VerifyPatient(ctx, domain.VerifyOTPRequest{Email: "alice@x.com", OTP: ml.lastCode}))
}

func TestVerifyPatient_WrongCodeCheckedBeforeExpiry(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, domain.CollectionUsers, "a@x.com").
		Return(&domain.Account{Email: "a@x.com", OTP: "123456", OTPExpiry: &past}, nil)

	svc := newService(as, nil, nil)
	err := svc.VerifyPatient(context.Background(), domain.VerifyOTPRequest{Email: "a@x.com", OTP: "654321"})
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
	as.AssertNotCalled(t, "MarkVerified", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyDoctor_PromoteConflictSurfaces(t *testing.T) {
	future := time.Now().Add(time.Minute)
	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, domain.CollectionPendingDoctors, "d@x.com").
		Return(&domain.Account{Email: "d@x.com", ID: "01HX", OTP: "123456", OTPExpiry: &future}, nil)
	as.On("Promote", mock.Anything, domain.CollectionPendingDoctors, domain.CollectionDoctors,
		mock.MatchedBy(func(a *domain.Account) bool { return a.Verified && a.OTPExpiry == nil })).
		Return(domain.ErrConflict)

	svc := newService(as, nil, nil)
	err := svc.VerifyDoctor(context.Background(), domain.VerifyOTPRequest{Email: "d@x.com", OTP: "123456"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
	as.AssertExpectations(t)
}

// --- Resend ---

func TestResendPatientOTP_ReplacesCode(t *testing.T) {
	store := newJSONStore(t)
	ml := &recordingMailer{}
	svc := newService(store, ml, nil)
	start := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }
	ctx := context.Background()
	require.NoError(t, svc.RegisterPatient(ctx, aliceSignup()))

	oldCode := ml.lastCode

	svc.now = func() time.Time { return start.Add(10 * time.Minute) }
	// Two draws can collide; resend until the code changes.
	for i := 0; i < 5 && ml.lastCode == oldCode; i++ {
		require.NoError(t, svc.ResendPatientOTP(ctx, domain.ResendOTPRequest{Email: "alice@x.com"}))
	}
	if ml.lastCode == oldCode {
		t.Skip("resend kept drawing the same code")
	}

	a, err := store.GetByEmail(ctx, domain.CollectionUsers, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, ml.lastCode, a.OTP)
	require.NotNil(t, a.OTPExpiry)
	assert.True(t, start.Add(15*time.Minute).Equal(*a.OTPExpiry))

	err = svc.VerifyPatient(ctx, domain.VerifyOTPRequest{Email: "alice@x.com", OTP: oldCode})
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))

	assert.NoError(t, svc.VerifyPatient(ctx, domain.VerifyOTPRequest{Email: "alice@x.com", OTP: ml.lastCode}))
}

func TestResendDoctorOTP_NotPending(t *testing.T) {
	svc := newService(newJSONStore(t), &recordingMailer{}, nil)
	err := svc.ResendDoctorOTP(context.Background(), domain.ResendOTPRequest{Email: "nobody@x.com"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestResendPatientOTP_DeliveryFailure(t *testing.T) {
	future := time.Now().Add(time.Minute)
	as := &mockAccountStore{}
	ml := &mockMailer{}
	as.On("GetByEmail", mock.Anything, domain.CollectionUsers, "a@x.com").
		Return(&domain.Account{Email: "a@x.com", OTP: "123456", OTPExpiry: &future}, nil)
	as.On("SetOTP", mock.Anything, domain.CollectionUsers, "a@x.com", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)
	ml.On("SendEmail", "a@x.com", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := newService(as, ml, nil)
	err := svc.ResendPatientOTP(context.Background(), domain.ResendOTPRequest{Email: "a@x.com"})
	assert.True(t, errors.Is(err, domain.ErrDelivery))
}

// --- Login ---

func TestLoginPatient_NotFound(t *testing.T) {
	svc := newService(newJSONStore(t), nil, nil)
	_, err := svc.LoginPatient(context.Background(), domain.LoginRequest{Email: "ghost@x.com", Password: "x"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestLoginDoctor_PendingDoctorNotFound(t *testing.T) {
	store := newJSONStore(t)
	svc := newService(store, &recordingMailer{}, nil)
	ctx := context.Background()
	require.NoError(t, svc.RegisterDoctor(ctx, doctorSignup()))

	_, err := svc.LoginDoctor(ctx, domain.LoginRequest{Email: "house@x.com", Password: "Vicodin1"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// --- Google ---

func TestGoogleLogin_NewAccount(t *testing.T) {
	store := newJSONStore(t)
	svc := newService(store, nil, nil)
	ctx := context.Background()

	res, err := svc.GoogleLogin(ctx, domain.GoogleLoginRequest{Name: "Bob", Email: "bob@x.com", Gender: "male"})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Regexp(t, `^[0-9a-f]{16}$`, res.GeneratedPassword)
	assert.True(t, res.Account.Verified)
	assert.Equal(t, domain.RolePatient, res.Account.Role)
	assert.Equal(t, domain.ProviderGoogle, res.Account.AuthProvider)

	stored, err := store.GetByEmail(ctx, domain.CollectionUsers, "bob@x.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(res.GeneratedPassword)))

	again, err := svc.GoogleLogin(ctx, domain.GoogleLoginRequest{Name: "Bob", Email: "bob@x.com"})
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Empty(t, again.GeneratedPassword)
}

func TestGoogleLogin_UsesVerifiedTokenEmail(t *testing.T) {
	store := newJSONStore(t)
	v := &mockVerifier{}
	v.On("Verify", mock.Anything, "tok").Return(&google.Payload{Email: "real@x.com", EmailVerified: true, Name: "Real"}, nil)
	svc := newService(store, nil, nil)
	svc.google = v

	res, err := svc.GoogleLogin(context.Background(), domain.GoogleLoginRequest{Name: "Spoof", Email: "spoof@x.com", IDToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "real@x.com", res.Account.Email)
}

func TestGoogleLogin_InvalidToken(t *testing.T) {
	v := &mockVerifier{}
	v.On("Verify", mock.Anything, "bad").Return(nil, fmt.Errorf("invalid google token: %w", domain.ErrUnauthorized))
	svc := newService(newJSONStore(t), nil, nil)
	svc.google = v

	_, err := svc.GoogleLogin(context.Background(), domain.GoogleLoginRequest{Name: "x", Email: "x@x.com", IDToken: "bad"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestGoogleLogin_OnlyCreatesPatients(t *testing.T) {
	store := newJSONStore(t)
	svc := newService(store, nil, nil)
	ctx := context.Background()

	_, err := svc.GoogleLogin(ctx, domain.GoogleLoginRequest{Name: "Eve", Email: "eve@x.com", Role: domain.RoleDoctor})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	_, err = store.GetByEmail(ctx, domain.CollectionUsers, "eve@x.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	res, err := svc.GoogleLogin(ctx, domain.GoogleLoginRequest{Name: "Eve", Email: "eve@x.com", Role: domain.RolePatient})
	require.NoError(t, err)
	assert.Equal(t, domain.RolePatient, res.Account.Role)
}
