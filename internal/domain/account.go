package domain

import "time"

// Roles carried in the account record and the bearer token.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// Auth providers.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// Collection names an account collection in the record store.
type Collection string

const (
	CollectionUsers          Collection = "users"
	CollectionDoctors        Collection = "doctors"
	CollectionPendingDoctors Collection = "pending_doctors"
)

// Account is a patient or doctor record. Email is unique within its collection.
// OTP and OTPExpiry are set and cleared together.
type Account struct {
	ID             string     `json:"id,omitempty" dynamodbav:"id" bson:"id" firestore:"id"`
	Email          string     `json:"email" dynamodbav:"email" bson:"email" firestore:"email"`
	Name           string     `json:"name" dynamodbav:"name" bson:"name" firestore:"name"`
	FirstName      string     `json:"firstName,omitempty" dynamodbav:"first_name" bson:"first_name" firestore:"first_name"`
	LastName       string     `json:"lastName,omitempty" dynamodbav:"last_name" bson:"last_name" firestore:"last_name"`
	Role           string     `json:"role" dynamodbav:"role" bson:"role" firestore:"role"`
	PasswordHash   string     `json:"-" dynamodbav:"password_hash" bson:"password_hash" firestore:"password_hash"`
	Photo          string     `json:"photo,omitempty" dynamodbav:"photo" bson:"photo" firestore:"photo"`
	Gender         string     `json:"gender,omitempty" dynamodbav:"gender" bson:"gender" firestore:"gender"`
	DOB            string     `json:"dob,omitempty" dynamodbav:"dob" bson:"dob" firestore:"dob"`
	Age            int        `json:"age,omitempty" dynamodbav:"age" bson:"age" firestore:"age"`
	Phone          string     `json:"phone,omitempty" dynamodbav:"phone" bson:"phone" firestore:"phone"`
	Specialization string     `json:"specialization,omitempty" dynamodbav:"specialization" bson:"specialization" firestore:"specialization"`
	HospitalName   string     `json:"hospitalName,omitempty" dynamodbav:"hospital_name" bson:"hospital_name" firestore:"hospital_name"`
	Experience     string     `json:"experience,omitempty" dynamodbav:"experience" bson:"experience" firestore:"experience"`
	AuthProvider   string     `json:"authProvider,omitempty" dynamodbav:"auth_provider" bson:"auth_provider" firestore:"auth_provider"`
	Verified       bool       `json:"verified" dynamodbav:"verified" bson:"verified" firestore:"verified"`
	OTP            string     `json:"-" dynamodbav:"otp" bson:"otp" firestore:"otp"`
	OTPExpiry      *time.Time `json:"-" dynamodbav:"otp_expiry" bson:"otp_expiry" firestore:"otp_expiry"`
	CreatedAt      time.Time  `json:"createdAt" dynamodbav:"created_at" bson:"created_at" firestore:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" dynamodbav:"updated_at" bson:"updated_at" firestore:"updated_at"`
}

// Pending reports whether the account still awaits OTP verification.
func (a *Account) Pending() bool { return !a.Verified }

// ProfileUpdate lists the fields a user may change on their own profile.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Name   *string
	Gender *string
	DOB    *string
	Age    *int
	Phone  *string
	Photo  *string
}

// Empty reports whether no field is set.
func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Gender == nil && p.DOB == nil && p.Age == nil && p.Phone == nil && p.Photo == nil
}

// PatientSignupRequest is the body of POST /signup.
type PatientSignupRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,max=72"`
	Gender    string `json:"gender" validate:"required"`
	Role      string `json:"role" validate:"required,eq=patient"`
	DOB       string `json:"dob" validate:"required,datetime=2006-01-02"`
	Age       int    `json:"age" validate:"required,gt=0,lt=150"`
	Phone     string `json:"phone" validate:"required"`
	Photo     string `json:"photo"`
}

// DoctorSignupRequest is the body of POST /doctor/signup.
type DoctorSignupRequest struct {
	FirstName      string `json:"firstName" validate:"required"`
	LastName       string `json:"lastName" validate:"required"`
	Specialization string `json:"specialization" validate:"required"`
	HospitalName   string `json:"hospitalName" validate:"required"`
	DOB            string `json:"dob" validate:"required,datetime=2006-01-02"`
	Phone          string `json:"phone" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Experience     string `json:"experience"`
	Password       string `json:"password" validate:"required,max=72"`
}

// VerifyOTPRequest is the body of POST /verify-otp and /doctor/verify-otp.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

// ResendOTPRequest is the body of POST /resend-otp and /doctor/resend-otp.
type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// LoginRequest is the body of POST /login and /doctor/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleLoginRequest carries an identity asserted by Google. When IDToken is
// present and a client ID is configured, the email is taken from the verified token.
type GoogleLoginRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Photo   string `json:"photo"`
	Role    string `json:"role" validate:"omitempty,eq=patient"`
	Gender  string `json:"gender"`
	IDToken string `json:"idToken"`
}

// UpdateProfileRequest is the body of PUT /update-profile/{email}.
type UpdateProfileRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1"`
	Gender *string `json:"gender" validate:"omitempty,min=1"`
	DOB    *string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Phone  *string `json:"phone" validate:"omitempty,min=1"`
}

// Fields returns the set fields keyed by their stored attribute name.
func (p ProfileUpdate) Fields() map[string]interface{} {
	out := make(map[string]interface{}, 6)
	if p.Name != nil {
		out["name"] = *p.Name
	}
	if p.Gender != nil {
		out["gender"] = *p.Gender
	}
	if p.DOB != nil {
		out["dob"] = *p.DOB
	}
	if p.Age != nil {
		out["age"] = *p.Age
	}
	if p.Phone != nil {
		out["phone"] = *p.Phone
	}
	if p.Photo != nil {
		out["photo"] = *p.Photo
	}
	return out
}
