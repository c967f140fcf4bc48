package auth

import (
	"errors"
	"strings"
)

// ErrEmailNotAllowed is returned when a sign-in email is outside the
// institution domain.
var ErrEmailNotAllowed = errors.New("email address is not part of the institution domain")

// CheckInstitutionEmail lower-cases the provider-supplied email and
// rejects it unless it ends with "@" + domain. This runs after token
// verification and before session establishment; it is the single rule
// restricting who may sign in. Returns the normalized email.
func CheckInstitutionEmail(email, domain string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrEmailNotAllowed
	}
	if !strings.HasSuffix(email, "@"+strings.ToLower(domain)) {
		return "", ErrEmailNotAllowed
	}
	return email, nil
}
