package utils

import "regexp"

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s-]{8,}$`)
)

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone accepts international formats: optional +, then at least
// eight digits, spaces or dashes.
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
