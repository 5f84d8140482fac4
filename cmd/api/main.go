package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-care-nosql/internal/config"
	"github.com/go-care-nosql/internal/domain"
	"github.com/go-care-nosql/internal/infrastructure/dynamo"
	firestoreinfra "github.com/go-care-nosql/internal/infrastructure/firestore"
	"github.com/go-care-nosql/internal/infrastructure/google"
	"github.com/go-care-nosql/internal/infrastructure/jsonfile"
	jwtinfra "github.com/go-care-nosql/internal/infrastructure/jwt"
	"github.com/go-care-nosql/internal/infrastructure/mongodb"
	s3infra "github.com/go-care-nosql/internal/infrastructure/s3"
	"github.com/go-care-nosql/internal/infrastructure/smtp"
	"github.com/go-care-nosql/internal/infrastructure/sns"
	"github.com/go-care-nosql/internal/pkg/logging"
	transporthttp "github.com/go-care-nosql/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	logging.Init(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}

	ctx := context.Background()

	deps := &transporthttp.Deps{}
	closeStore, err := openStore(ctx, cfg, deps)
	if err != nil {
		slog.Error("record store unavailable", "backend", cfg.StoreBackend, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		slog.Error("jwt provider unavailable", "err", err)
		os.Exit(1)
	}
	deps.JWTProvider = jwtProvider

	mailer, err := smtp.NewMailer(cfg)
	if err != nil {
		slog.Error("smtp mailer unavailable", "err", err)
		os.Exit(1)
	}
	deps.Mailer = mailer

	// Optional collaborators stay nil interfaces when not configured.
	if cfg.SMSEnabled {
		if sender, err := sns.NewSender(cfg); err == nil {
			deps.SMSSender = sender
		} else {
			slog.Warn("sns sender not available", "err", err)
		}
	}
	if cfg.S3BucketName != "" {
		deps.PhotoStore = s3infra.NewStore(s3infra.NewClient(cfg), cfg)
	}
	if cfg.GoogleClientID != "" {
		deps.GoogleVerifier = google.NewVerifier(cfg.GoogleClientID)
		if cfg.GoogleClientSecret != "" {
			deps.GoogleOAuth = google.NewOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
	}
	slog.Info("server stopped")
}

// openStore fills the record-store repositories of deps for the configured
// backend and returns a function releasing its connections.
func openStore(ctx context.Context, cfg *config.Config, deps *transporthttp.Deps) (func(), error) {
	switch cfg.StoreBackend {
	case config.BackendDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		deps.AccountRepo = dynamo.NewAccountRepo(client, cfg.DynamoTables)
		deps.AppointmentRepo = dynamo.NewBookingRepo[domain.Appointment](client, cfg.DynamoTables.Appointments)
		deps.LabBookingRepo = dynamo.NewBookingRepo[domain.LabBooking](client, cfg.DynamoTables.LabBookings)
		deps.MedicineRepo = dynamo.NewBookingRepo[domain.MedicineBooking](client, cfg.DynamoTables.MedicineBookings)
		return func() {}, nil

	case config.BackendMongo:
		db, err := mongodb.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		db.CreateDefaultIndexes(ctx)
		deps.AccountRepo = mongodb.NewAccountRepo(db)
		deps.AppointmentRepo = mongodb.NewBookingRepo[domain.Appointment](db, domain.CollectionAppointments)
		deps.LabBookingRepo = mongodb.NewBookingRepo[domain.LabBooking](db, domain.CollectionLabBookings)
		deps.MedicineRepo = mongodb.NewBookingRepo[domain.MedicineBooking](db, domain.CollectionMedicineBookings)
		return func() {
			if err := db.Disconnect(context.Background()); err != nil {
				slog.Warn("mongo disconnect", "err", err)
			}
		}, nil

	case config.BackendFirestore:
		client, err := firestoreinfra.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		deps.AccountRepo = firestoreinfra.NewAccountRepo(client)
		deps.AppointmentRepo = firestoreinfra.NewBookingRepo[domain.Appointment](client, domain.CollectionAppointments)
		deps.LabBookingRepo = firestoreinfra.NewBookingRepo[domain.LabBooking](client, domain.CollectionLabBookings)
		deps.MedicineRepo = firestoreinfra.NewBookingRepo[domain.MedicineBooking](client, domain.CollectionMedicineBookings)
		return func() {
			if err := client.Close(); err != nil {
				slog.Warn("firestore close", "err", err)
			}
		}, nil

	case config.BackendJSON:
		store, err := jsonfile.NewStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		deps.AccountRepo = jsonfile.NewAccountRepo(store)
		deps.AppointmentRepo = jsonfile.NewBookingRepo[domain.Appointment](store, domain.CollectionAppointments)
		deps.LabBookingRepo = jsonfile.NewBookingRepo[domain.LabBooking](store, domain.CollectionLabBookings)
		deps.MedicineRepo = jsonfile.NewBookingRepo[domain.MedicineBooking](store, domain.CollectionMedicineBookings)
		return func() {}, nil
	}
	return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
}
