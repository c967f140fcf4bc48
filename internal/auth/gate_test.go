package auth

import (
	"errors"
	"testing"
)

func TestCheckInstitutionEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
		ok    bool
	}{
		{"student@klh.edu.in", "student@klh.edu.in", true},
		{"Student@KLH.EDU.IN", "student@klh.edu.in", true},
		{"  student@klh.edu.in ", "student@klh.edu.in", true},
		{"student@gmail.com", "", false},
		{"student@klh.edu.in.evil.com", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, err := CheckInstitutionEmail(tt.email, "klh.edu.in")
		if tt.ok {
			if err != nil {
				t.Errorf("CheckInstitutionEmail(%q): unexpected error %v", tt.email, err)
			}
			if got != tt.want {
				t.Errorf("CheckInstitutionEmail(%q) = %q, want %q", tt.email, got, tt.want)
			}
		} else if !errors.Is(err, ErrEmailNotAllowed) {
			t.Errorf("CheckInstitutionEmail(%q): expected ErrEmailNotAllowed, got %v", tt.email, err)
		}
	}
}
