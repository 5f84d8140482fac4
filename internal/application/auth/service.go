package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-care-nosql/internal/domain"
	"github.com/go-care-nosql/internal/infrastructure/google"
	"github.com/go-care-nosql/internal/pkg/id"
	"github.com/go-care-nosql/internal/pkg/otp"
	pkgtoken "github.com/go-care-nosql/internal/pkg/token"
	"github.com/go-care-nosql/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpSubject  = "Your OTP for CareHouzz Verification"
	otpTemplate = "Your OTP is: %s. It is valid for %d minutes."
)

// LoginResult is returned by a successful password or federated login.
type LoginResult struct {
	Token   string
	Account *domain.Account
}

// GoogleResult describes the outcome of a federated login. GeneratedPassword
// is only set when the account was created by this call.
type GoogleResult struct {
	Account           *domain.Account
	Created           bool
	GeneratedPassword string
}

type Service interface {
	RegisterPatient(ctx context.Context, req domain.PatientSignupRequest) error
	RegisterDoctor(ctx context.Context, req domain.DoctorSignupRequest) error
	VerifyPatient(ctx context.Context, req domain.VerifyOTPRequest) error
	VerifyDoctor(ctx context.Context, req domain.VerifyOTPRequest) error
	ResendPatientOTP(ctx context.Context, req domain.ResendOTPRequest) error
	ResendDoctorOTP(ctx context.Context, req domain.ResendOTPRequest) error
	LoginPatient(ctx context.Context, req domain.LoginRequest) (*LoginResult, error)
	LoginDoctor(ctx context.Context, req domain.LoginRequest) (*LoginResult, error)
	GoogleLogin(ctx context.Context, req domain.GoogleLoginRequest) (*GoogleResult, error)
}

type accountStore interface {
	Create(ctx context.Context, coll domain.Collection, a *domain.Account) error
	GetByEmail(ctx context.Context, coll domain.Collection, email string) (*domain.Account, error)
	SetOTP(ctx context.Context, coll domain.Collection, email, code string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, coll domain.Collection, email string) error
	Promote(ctx context.Context, from, to domain.Collection, a *domain.Account) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type jwtSigner interface {
	Sign(email, role, id string) (string, error)
}

type idTokenVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

// flow names the collections an account lives in while pending and once verified.
type flow struct {
	role      string
	pending   domain.Collection
	permanent domain.Collection
}

var (
	patientFlow = flow{role: domain.RolePatient, pending: domain.CollectionUsers, permanent: domain.CollectionUsers}
	doctorFlow  = flow{role: domain.RoleDoctor, pending: domain.CollectionPendingDoctors, permanent: domain.CollectionDoctors}
)

type service struct {
	accounts   accountStore
	mailer     mailer
	jwt        jwtSigner
	google     idTokenVerifier
	otpExpiry  time.Duration
	bcryptCost int
	now        func() time.Time
}

type ServiceDeps struct {
	AccountRepo accountStore
	Mailer      mailer
	JWTProvider jwtSigner
	// GoogleVerifier is optional. When nil, id tokens on federated login are ignored.
	GoogleVerifier idTokenVerifier
	OTPExpiry      time.Duration
	BcryptCost     int
}

func NewService(deps ServiceDeps) Service {
	cost := deps.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &service{
		accounts:   deps.AccountRepo,
		mailer:     deps.Mailer,
		jwt:        deps.JWTProvider,
		google:     deps.GoogleVerifier,
		otpExpiry:  deps.OTPExpiry,
		bcryptCost: cost,
		now:        time.Now,
	}
}

func (s *service) RegisterPatient(ctx context.Context, req domain.PatientSignupRequest) error {
	if err := validate.Struct(&req); err != nil {
		return err
	}
	a := &domain.Account{
		Email:     normalizeEmail(req.Email),
		Name:      strings.TrimSpace(req.FirstName + " " + req.LastName),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      domain.RolePatient,
		Photo:     req.Photo,
		Gender:    req.Gender,
		DOB:       req.DOB,
		Age:       req.Age,
		Phone:     req.Phone,
	}
	return s.register(ctx, patientFlow, a, req.Password)
}

func (s *service) RegisterDoctor(ctx context.Context, req domain.DoctorSignupRequest) error {
	if err := validate.Struct(&req); err != nil {
		return err
	}
	a := &domain.Account{
		ID:             id.New(),
		Email:          normalizeEmail(req.Email),
		Name:           strings.TrimSpace(req.FirstName + " " + req.LastName),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Role:           domain.RoleDoctor,
		DOB:            req.DOB,
		Phone:          req.Phone,
		Specialization: req.Specialization,
		HospitalName:   req.HospitalName,
		Experience:     req.Experience,
	}
	// A verified doctor with this email blocks a new staging record.
	if _, err := s.accounts.GetByEmail(ctx, domain.CollectionDoctors, a.Email); err == nil {
		return fmt.Errorf("doctor %s already registered: %w", a.Email, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return s.register(ctx, doctorFlow, a, req.Password)
}

// register persists an unverified account and mails its first OTP. If the
// mail fails the account stays persisted and ErrDelivery is returned.
func (s *service) register(ctx context.Context, f flow, a *domain.Account, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	code, err := otp.Generate()
	if err != nil {
		return err
	}
	now := s.now().UTC()
	expiry := now.Add(s.otpExpiry)

	a.PasswordHash = string(hash)
	a.AuthProvider = domain.ProviderLocal
	a.Verified = false
	a.OTP = code
	a.OTPExpiry = &expiry
	a.CreatedAt = now
	a.UpdatedAt = now

	if err := s.accounts.Create(ctx, f.pending, a); err != nil {
		return err
	}
	return s.sendOTP(a.Email, code)
}

func (s *service) VerifyPatient(ctx context.Context, req domain.VerifyOTPRequest) error {
	if err := validate.Struct(&req); err != nil {
		return err
	}
	a, err := s.checkOTP(ctx, patientFlow, normalizeEmail(req.Email), req.OTP)
	if err != nil {
		return err
	}
	return s.accounts.MarkVerified(ctx, patientFlow.permanent, a.Email)
}

func (s *service) VerifyDoctor(ctx context.Context, req domain.VerifyOTPRequest) error {
	if err := validate.Struct(&req); err != nil {
		return err
	}
	a, err := s.checkOTP(ctx, doctorFlow, normalizeEmail(req.Email), req.OTP)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	a.Verified = true
	a.OTP = ""
	a.OTPExpiry = nil
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.ID == "" {
		a.ID = id.New()
	}
	return s.accounts.Promote(ctx, doctorFlow.pending, doctorFlow.permanent, a)
}

// checkOTP loads the pending account and compares the submitted code. The
// code is compared before freshness, and an expired code is left in place.
func (s *service) checkOTP(ctx context.Context, f flow, email, code string) (*domain.Account, error) {
	a, err := s.pendingAccount(ctx, f, email)
	if err != nil {
		return nil, err
	}
	if a.OTP == "" || a.OTP != code {
		return nil, fmt.Errorf("otp mismatch for %s: %w", email, domain.ErrInvalidCode)
	}
	if otp.Expired(a.OTPExpiry, s.now()) {
		return nil, fmt.Errorf("otp for %s: %w", email, domain.ErrExpired)
	}
	return a, nil
}

func (s *service) ResendPatientOTP(ctx context.Context, req domain.ResendOTPRequest) error {
	return s.resend(ctx, patientFlow, req)
}

func (s *service) ResendDoctorOTP(ctx context.Context, req domain.ResendOTPRequest) error {
	return s.resend(ctx, doctorFlow, req)
}

func (s *service) resend(ctx context.Context, f flow, req domain.ResendOTPRequest) error {
	if err := validate.Struct(&req); err != nil {
		return err
	}
	a, err := s.pendingAccount(ctx, f, normalizeEmail(req.Email))
	if err != nil {
		return err
	}
	code, err := otp.Generate()
	if err != nil {
		return err
	}
	if err := s.accounts.SetOTP(ctx, f.pending, a.Email, code, s.now().UTC().Add(s.otpExpiry)); err != nil {
		return err
	}
	return s.sendOTP(a.Email, code)
}

// pendingAccount returns the unverified account for email. Verified accounts
// are reported as not found since they have nothing left to verify.
func (s *service) pendingAccount(ctx context.Context, f flow, email string) (*domain.Account, error) {
	a, err := s.accounts.GetByEmail(ctx, f.pending, email)
	if err != nil {
		return nil, err
	}
	if !a.Pending() {
		return nil, fmt.Errorf("no pending verification for %s: %w", email, domain.ErrNotFound)
	}
	return a, nil
}

func (s *service) LoginPatient(ctx context.Context, req domain.LoginRequest) (*LoginResult, error) {
	return s.login(ctx, patientFlow, req)
}

func (s *service) LoginDoctor(ctx context.Context, req domain.LoginRequest) (*LoginResult, error) {
	return s.login(ctx, doctorFlow, req)
}

func (s *service) login(ctx context.Context, f flow, req domain.LoginRequest) (*LoginResult, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	a, err := s.accounts.GetByEmail(ctx, f.permanent, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if !a.Verified {
		return nil, fmt.Errorf("%s: %w", a.Email, domain.ErrUnverified)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%s: %w", a.Email, domain.ErrInvalidCredentials)
	}
	return s.issue(a, f.role)
}

func (s *service) issue(a *domain.Account, role string) (*LoginResult, error) {
	var doctorID string
	if role == domain.RoleDoctor {
		doctorID = a.ID
	}
	tok, err := s.jwt.Sign(a.Email, role, doctorID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResult{Token: tok, Account: a}, nil
}

func (s *service) GoogleLogin(ctx context.Context, req domain.GoogleLoginRequest) (*GoogleResult, error) {
	if s.google != nil && req.IDToken != "" {
		p, err := s.google.Verify(ctx, req.IDToken)
		if err != nil {
			return nil, err
		}
		req.Email = p.Email
		if req.Name == "" {
			req.Name = p.Name
		}
		if req.Photo == "" {
			req.Photo = p.Picture
		}
	}
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)

	existing, err := s.accounts.GetByEmail(ctx, domain.CollectionUsers, email)
	if err == nil {
		return &GoogleResult{Account: existing}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	password, err := pkgtoken.NewPassword()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	role := req.Role
	if role == "" {
		role = domain.RolePatient
	}
	now := s.now().UTC()
	a := &domain.Account{
		Email:        email,
		Name:         req.Name,
		Role:         role,
		PasswordHash: string(hash),
		Photo:        req.Photo,
		Gender:       req.Gender,
		AuthProvider: domain.ProviderGoogle,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, domain.CollectionUsers, a); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Lost a race with a concurrent first login; return the winner.
			winner, getErr := s.accounts.GetByEmail(ctx, domain.CollectionUsers, email)
			if getErr != nil {
				return nil, getErr
			}
			return &GoogleResult{Account: winner}, nil
		}
		return nil, err
	}
	return &GoogleResult{Account: a, Created: true, GeneratedPassword: password}, nil
}

func (s *service) sendOTP(email, code string) error {
	body := fmt.Sprintf(otpTemplate, code, int(s.otpExpiry/time.Minute))
	if err := s.mailer.SendEmail(email, otpSubject, body); err != nil {
		slog.Warn("failed to send otp email", "email", email, "err", err)
		return fmt.Errorf("send otp to %s: %w", email, domain.ErrDelivery)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
