package utils

import "testing"

func TestIsValidEmail(t *testing.T) {
	valid := []string{"anna@example.com", "styrelse+lead@solarpark.se"}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}

	invalid := []string{"", "anna", "anna@", "@example.com", "anna@example"}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	if err := ValidatePhoneNumber("+46701234567", CountryCode); err != nil {
		t.Errorf("valid number rejected: %v", err)
	}
	if err := ValidatePhoneNumber("0701234567", CountryCode); err != nil {
		t.Errorf("valid national number rejected: %v", err)
	}
	if err := ValidatePhoneNumber("123", CountryCode); err == nil {
		t.Error("short number accepted")
	}
}
