package domain

import "time"

// Appointment is a patient's booking with a doctor. Natural key: email + date + time.
type Appointment struct {
	ID             string    `json:"id" dynamodbav:"booking_id" bson:"booking_id" firestore:"booking_id"`
	Email          string    `json:"email" dynamodbav:"email" bson:"email" firestore:"email" validate:"required,email"`
	DoctorName     string    `json:"doctorName" dynamodbav:"doctor_name" bson:"doctor_name" firestore:"doctor_name" validate:"required"`
	Specialization string    `json:"specialization" dynamodbav:"specialization" bson:"specialization" firestore:"specialization" validate:"required"`
	Hospital       string    `json:"hospital" dynamodbav:"hospital" bson:"hospital" firestore:"hospital" validate:"required"`
	Date           string    `json:"date" dynamodbav:"date" bson:"date" firestore:"date" validate:"required"`
	Time           string    `json:"time" dynamodbav:"time" bson:"time" firestore:"time" validate:"required"`
	Fee            float64   `json:"fee" dynamodbav:"fee" bson:"fee" firestore:"fee" validate:"required,gt=0"`
	PatientName    string    `json:"patientName" dynamodbav:"patient_name" bson:"patient_name" firestore:"patient_name" validate:"required"`
	Phone          string    `json:"phone" dynamodbav:"phone" bson:"phone" firestore:"phone" validate:"required"`
	CreatedAt      time.Time `json:"createdAt" dynamodbav:"created_at" bson:"created_at" firestore:"created_at"`
}

// LabBooking is a lab test reservation. Natural key: email + date + time.
type LabBooking struct {
	ID        string    `json:"id" dynamodbav:"booking_id" bson:"booking_id" firestore:"booking_id"`
	Email     string    `json:"email" dynamodbav:"email" bson:"email" firestore:"email" validate:"required,email"`
	Name      string    `json:"name" dynamodbav:"name" bson:"name" firestore:"name" validate:"required"`
	Phone     string    `json:"phone" dynamodbav:"phone" bson:"phone" firestore:"phone" validate:"required"`
	Service   string    `json:"service" dynamodbav:"service" bson:"service" firestore:"service" validate:"required"`
	Lab       string    `json:"lab" dynamodbav:"lab" bson:"lab" firestore:"lab" validate:"required"`
	Date      string    `json:"date" dynamodbav:"date" bson:"date" firestore:"date" validate:"required"`
	Time      string    `json:"time" dynamodbav:"time" bson:"time" firestore:"time" validate:"required"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"created_at" bson:"created_at" firestore:"created_at"`
}

// MedicineBooking is a medicine order. Natural key: email + medicine.
type MedicineBooking struct {
	ID        string    `json:"id" dynamodbav:"booking_id" bson:"booking_id" firestore:"booking_id"`
	Email     string    `json:"email" dynamodbav:"email" bson:"email" firestore:"email" validate:"required,email"`
	UserName  string    `json:"userName" dynamodbav:"user_name" bson:"user_name" firestore:"user_name" validate:"required"`
	Address   string    `json:"address" dynamodbav:"address" bson:"address" firestore:"address" validate:"required"`
	Phone     string    `json:"phone" dynamodbav:"phone" bson:"phone" firestore:"phone" validate:"required"`
	Medicine  string    `json:"medicine" dynamodbav:"medicine" bson:"medicine" firestore:"medicine" validate:"required"`
	Quantity  int       `json:"quantity" dynamodbav:"quantity" bson:"quantity" firestore:"quantity" validate:"required,gt=0"`
	Price     float64   `json:"price" dynamodbav:"price" bson:"price" firestore:"price" validate:"required,gt=0"`
	Timestamp string    `json:"timestamp" dynamodbav:"timestamp" bson:"timestamp" firestore:"timestamp" validate:"required"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"created_at" bson:"created_at" firestore:"created_at"`
}

// Booking collection names used by the document stores.
const (
	CollectionAppointments     = "appointments"
	CollectionLabBookings      = "lab_bookings"
	CollectionMedicineBookings = "medicine_bookings"
)

// Booking field names used in natural-key matches. They are identical across
// every record-store backend.
const (
	FieldEmail    = "email"
	FieldDate     = "date"
	FieldTime     = "time"
	FieldMedicine = "medicine"
)
