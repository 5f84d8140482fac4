package age

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for dates of birth.
const DateLayout = "2006-01-02"

// FromDOB returns the age in whole years on the date of now. The year is not
// counted until the birthday has been reached.
func FromDOB(dob string, now time.Time) (int, error) {
	birth, err := time.Parse(DateLayout, dob)
	if err != nil {
		return 0, fmt.Errorf("dob must be in YYYY-MM-DD format: %w", err)
	}
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years, nil
}
