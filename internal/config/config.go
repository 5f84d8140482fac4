package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Record store backends selectable with STORE_BACKEND.
const (
	BackendDynamo    = "dynamo"
	BackendMongo     = "mongo"
	BackendFirestore = "firestore"
	BackendJSON      = "json"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	AllowedOrigins []string // CORS allowed origins
	StoreBackend   string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	MongoURI            string
	MongoDatabase       string
	MongoTimeoutSeconds int

	FirestoreProjectID       string
	FirestoreCredentialsFile string

	DataDir string

	S3BucketName string
	SNSRegion    string
	SMSEnabled   bool

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
	OTPExpiry         time.Duration
	BcryptCost        int

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	SMTPPoolSize int

	GoogleClientID     string
	GoogleClientSecret string // empty: browser redirect login disabled
	GoogleRedirectURL  string
	FrontendURL        string // where the redirect login lands

	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// DynamoTables holds the DynamoDB table name for each collection.
type DynamoTables struct {
	Users            string
	Doctors          string
	PendingDoctors   string
	Appointments     string
	LabBookings      string
	MedicineBookings string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "5000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", BackendJSON)),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:            getEnv("DYNAMO_TABLE_USERS", "users"),
			Doctors:          getEnv("DYNAMO_TABLE_DOCTORS", "doctors"),
			PendingDoctors:   getEnv("DYNAMO_TABLE_PENDING_DOCTORS", "pending_doctors"),
			Appointments:     getEnv("DYNAMO_TABLE_APPOINTMENTS", "appointments"),
			LabBookings:      getEnv("DYNAMO_TABLE_LAB_BOOKINGS", "lab_bookings"),
			MedicineBookings: getEnv("DYNAMO_TABLE_MEDICINE_BOOKINGS", "medicine_bookings"),
		},

		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:       getEnv("MONGO_DATABASE", "carehouzz"),
		MongoTimeoutSeconds: getEnvInt("MONGO_TIMEOUT_SECONDS", 10),

		FirestoreProjectID:       getEnv("FIRESTORE_PROJECT_ID", ""),
		FirestoreCredentialsFile: getEnv("FIRESTORE_CREDENTIALS_FILE", ""),

		DataDir: getEnv("DATA_DIR", "./data"),

		S3BucketName: getEnv("S3_BUCKET_NAME", ""),
		SNSRegion:    getEnv("SNS_REGION", "us-east-1"),
		SMSEnabled:   getEnvBool("SMS_ENABLED", false),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", time.Hour),
		OTPExpiry:         getEnvDuration("OTP_EXPIRY", 5*time.Minute),
		BcryptCost:        getEnvInt("BCRYPT_COST", 10),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@carehouzz.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPPoolSize: getEnvInt("SMTP_POOL_SIZE", 4),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:5000/auth/google/callback"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173/"),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 50),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
