package contact

import "regexp"

var (
	phonePattern = regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`)
	emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
)

// IsValidPhoneNumber reports whether s is in the form ###-###-####
func IsValidPhoneNumber(s string) bool {
	return phonePattern.MatchString(s)
}

// IsValidEmail reports whether s looks like local@domain.tld
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
