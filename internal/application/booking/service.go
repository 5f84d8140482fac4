package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-care-nosql/internal/domain"
	"github.com/go-care-nosql/internal/pkg/id"
	"github.com/go-care-nosql/internal/pkg/validate"
)

type Service interface {
	SaveAppointment(ctx context.Context, a *domain.Appointment) error
	ListAppointments(ctx context.Context) ([]domain.Appointment, error)
	ListAppointmentsByEmail(ctx context.Context, email string) ([]domain.Appointment, error)
	DeleteAppointment(ctx context.Context, email, date, slot string) error

	SaveLabBooking(ctx context.Context, b *domain.LabBooking) error
	ListLabBookings(ctx context.Context) ([]domain.LabBooking, error)
	ListLabBookingsByEmail(ctx context.Context, email string) ([]domain.LabBooking, error)
	DeleteLabBooking(ctx context.Context, email, date, slot string) error

	SaveMedicineBooking(ctx context.Context, b *domain.MedicineBooking) error
	ListMedicineBookingsByEmail(ctx context.Context, email string) ([]domain.MedicineBooking, error)
	DeleteMedicineBooking(ctx context.Context, email, medicine string) error
}

type bookingStore[T any] interface {
	Put(ctx context.Context, b *T) error
	List(ctx context.Context) ([]T, error)
	ListByEmail(ctx context.Context, email string) ([]T, error)
	DeleteMatching(ctx context.Context, email string, match map[string]string) (int, error)
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	appointments bookingStore[domain.Appointment]
	labs         bookingStore[domain.LabBooking]
	medicines    bookingStore[domain.MedicineBooking]
	sms          smsSender
	now          func() time.Time
}

type ServiceDeps struct {
	AppointmentRepo bookingStore[domain.Appointment]
	LabBookingRepo  bookingStore[domain.LabBooking]
	MedicineRepo    bookingStore[domain.MedicineBooking]
	// SMSSender is optional. When set, appointment confirmations are texted.
	SMSSender smsSender
}

func NewService(deps ServiceDeps) Service {
	return &service{
		appointments: deps.AppointmentRepo,
		labs:         deps.LabBookingRepo,
		medicines:    deps.MedicineRepo,
		sms:          deps.SMSSender,
		now:          time.Now,
	}
}

func (s *service) SaveAppointment(ctx context.Context, a *domain.Appointment) error {
	if err := validate.Struct(a); err != nil {
		return err
	}
	a.ID = id.New()
	a.CreatedAt = s.now().UTC()
	if err := s.appointments.Put(ctx, a); err != nil {
		return err
	}
	s.confirmAppointment(ctx, a)
	return nil
}

// confirmAppointment texts the patient. Failures are logged and never fail the booking.
func (s *service) confirmAppointment(ctx context.Context, a *domain.Appointment) {
	if s.sms == nil || a.Phone == "" {
		return
	}
	msg := fmt.Sprintf("Your appointment with Dr. %s (%s) at %s on %s at %s is confirmed.",
		a.DoctorName, a.Specialization, a.Hospital, a.Date, a.Time)
	if err := s.sms.SendSMS(ctx, a.Phone, msg); err != nil {
		slog.Warn("failed to send appointment confirmation", "email", a.Email, "booking_id", a.ID, "err", err)
	}
}

func (s *service) ListAppointments(ctx context.Context) ([]domain.Appointment, error) {
	return s.appointments.List(ctx)
}

func (s *service) ListAppointmentsByEmail(ctx context.Context, email string) ([]domain.Appointment, error) {
	return s.appointments.ListByEmail(ctx, email)
}

func (s *service) DeleteAppointment(ctx context.Context, email, date, slot string) error {
	return deleteMatching(ctx, s.appointments, "appointment", email, map[string]string{
		domain.FieldDate: date,
		domain.FieldTime: slot,
	})
}

func (s *service) SaveLabBooking(ctx context.Context, b *domain.LabBooking) error {
	if err := validate.Struct(b); err != nil {
		return err
	}
	b.ID = id.New()
	b.CreatedAt = s.now().UTC()
	return s.labs.Put(ctx, b)
}

func (s *service) ListLabBookings(ctx context.Context) ([]domain.LabBooking, error) {
	return s.labs.List(ctx)
}

func (s *service) ListLabBookingsByEmail(ctx context.Context, email string) ([]domain.LabBooking, error) {
	return s.labs.ListByEmail(ctx, email)
}

func (s *service) DeleteLabBooking(ctx context.Context, email, date, slot string) error {
	return deleteMatching(ctx, s.labs, "lab booking", email, map[string]string{
		domain.FieldDate: date,
		domain.FieldTime: slot,
	})
}

func (s *service) SaveMedicineBooking(ctx context.Context, b *domain.MedicineBooking) error {
	if err := validate.Struct(b); err != nil {
		return err
	}
	b.ID = id.New()
	b.CreatedAt = s.now().UTC()
	return s.medicines.Put(ctx, b)
}

func (s *service) ListMedicineBookingsByEmail(ctx context.Context, email string) ([]domain.MedicineBooking, error) {
	return s.medicines.ListByEmail(ctx, email)
}

func (s *service) DeleteMedicineBooking(ctx context.Context, email, medicine string) error {
	return deleteMatching(ctx, s.medicines, "medicine booking", email, map[string]string{
		domain.FieldMedicine: medicine,
	})
}

func deleteMatching[T any](ctx context.Context, store bookingStore[T], kind, email string, match map[string]string) error {
	n, err := store.DeleteMatching(ctx, email, match)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s for %s: %w", kind, email, domain.ErrNotFound)
	}
	return nil
}
