package dynamo

// DynamoDB attribute names used in keys and update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEmail     = "email"
	fieldBookingID = "booking_id"
	fieldOTP       = "otp"
	fieldOTPExpiry = "otp_expiry"
	fieldVerified  = "verified"
	fieldUpdatedAt = "updated_at"
)
