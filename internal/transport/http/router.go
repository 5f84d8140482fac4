package http

import (
	"net/http"

	"github.com/go-care-nosql/internal/application/account"
	"github.com/go-care-nosql/internal/application/auth"
	"github.com/go-care-nosql/internal/application/booking"
	"github.com/go-care-nosql/internal/config"
	"github.com/go-care-nosql/internal/domain"
	jwtinfra "github.com/go-care-nosql/internal/infrastructure/jwt"
	"github.com/go-care-nosql/internal/transport/http/handler"
	appmiddleware "github.com/go-care-nosql/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps holds all infrastructure dependencies for the router. PhotoStore,
// SMSSender, GoogleVerifier and GoogleOAuth are optional and must be left nil
// when not configured.
type Deps struct {
	AccountRepo     AccountRepository
	AppointmentRepo BookingRepository[domain.Appointment]
	LabBookingRepo  BookingRepository[domain.LabBooking]
	MedicineRepo    BookingRepository[domain.MedicineBooking]
	PhotoStore      PhotoStore
	Mailer          Mailer
	SMSSender       SMSSender
	JWTProvider     *jwtinfra.Provider
	GoogleVerifier  IDTokenVerifier
	GoogleOAuth     GoogleOAuthFlow
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authSvc := auth.NewService(auth.ServiceDeps{
		AccountRepo:    deps.AccountRepo,
		Mailer:         deps.Mailer,
		JWTProvider:    deps.JWTProvider,
		GoogleVerifier: deps.GoogleVerifier,
		OTPExpiry:      cfg.OTPExpiry,
		BcryptCost:     cfg.BcryptCost,
	})
	accountSvc := account.NewService(account.ServiceDeps{
		AccountRepo:  deps.AccountRepo,
		BookingRepos: []account.BookingPurger{deps.AppointmentRepo, deps.LabBookingRepo, deps.MedicineRepo},
		PhotoStore:   deps.PhotoStore,
	})
	bookingSvc := booking.NewService(booking.ServiceDeps{
		AppointmentRepo: deps.AppointmentRepo,
		LabBookingRepo:  deps.LabBookingRepo,
		MedicineRepo:    deps.MedicineRepo,
		SMSSender:       deps.SMSSender,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	profileH := handler.NewProfileHandler(accountSvc)
	bookingH := handler.NewBookingHandler(bookingSvc)

	authRoutes := func(r chi.Router) {
		r.Post("/signup", authH.PatientSignup)
		r.Post("/verify-otp", authH.PatientVerify)
		r.Post("/login", authH.PatientLogin)
		r.Post("/resend-otp", authH.PatientResend)
		r.Post("/doctor/signup", authH.DoctorSignup)
		r.Post("/doctor/verify-otp", authH.DoctorVerify)
		r.Post("/doctor/login", authH.DoctorLogin)
		r.Post("/doctor/resend-otp", authH.DoctorResend)
		r.Post("/google", authH.Google)
	}

	// ── Public routes (no auth) ──────────────────────────────────────────
	r.Get("/health-check/{action}", healthH.Ping)
	r.Group(authRoutes)
	r.Route("/auth", func(r chi.Router) {
		authRoutes(r)
		if deps.GoogleOAuth != nil {
			oauthH := handler.NewGoogleOAuthHandler(authSvc, deps.GoogleOAuth, cfg.FrontendURL)
			r.Get("/google", oauthH.Start)
			r.Get("/google/callback", oauthH.Callback)
		}
	})

	// ── Authenticated routes ─────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.Auth(deps.JWTProvider))

		r.Get("/profile", profileH.Me)
		r.Post("/save-appointment", bookingH.SaveAppointment)
		r.Post("/save-lab-booking", bookingH.SaveLabBooking)
		r.Post("/book-medicine", bookingH.SaveMedicineBooking)

		// Routes addressed by the owner's email.
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.RequireOwner("email"))

			r.Get("/appointments/{email}", bookingH.ListAppointmentsByEmail)
			r.Delete("/appointments/{email}/{date}/{time}", bookingH.DeleteAppointment)
			r.Get("/lab/{email}", bookingH.ListLabBookingsByEmail)
			r.Delete("/lab/{email}/{date}/{time}", bookingH.DeleteLabBooking)
			r.Get("/book-medicine/{email}", bookingH.ListMedicineBookingsByEmail)
			r.Delete("/book-medicine/{email}/{medicine}", bookingH.DeleteMedicineBooking)
			r.Put("/update-profile/{email}", profileH.Update)
			r.Post("/profile/{email}/photo", profileH.UploadPhoto)
			r.Delete("/delete-account/{email}", profileH.Delete)
		})

		// Doctor-only routes
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.RequireRole(domain.RoleDoctor))

			r.Get("/doctor/dashboard", profileH.DoctorDashboard)
			r.Get("/appointments", bookingH.ListAppointments)
			r.Get("/lab", bookingH.ListLabBookings)
		})
	})

	return r
}
