// internal/engine/age.go
package engine

import "time"

// CalculateAge returns completed years between dob and now, decrementing
// when the birthday has not occurred yet this year. A nil dob yields 0.
// The reference time is passed in so callers stay deterministic.
func CalculateAge(dob *time.Time, now time.Time) int {
	if dob == nil {
		return 0
	}

	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}
