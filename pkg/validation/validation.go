package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrInvalidInput indicates the input failed validation
	ErrInvalidInput = errors.New("invalid input")

	// Vehicle name must be alphanumeric with hyphens/underscores/spaces, 2-100 chars
	vehicleNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9 _-]{1,99}$`)

	// A VIN is 17 characters, no I, O or Q
	vinRegex = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)
)

// SanitizeString removes potentially dangerous characters and trims whitespace
func SanitizeString(input string) string {
	// Trim whitespace
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters except newline and tab
	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) || r == '\n' || r == '\t' {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// ValidateVehicleName checks if a vehicle display name is valid
func ValidateVehicleName(name string) error {
	name = SanitizeString(name)

	if name == "" {
		return errors.New("vehicle name cannot be empty")
	}

	if len(name) < 2 {
		return errors.New("vehicle name must be at least 2 characters")
	}

	if len(name) > 100 {
		return errors.New("vehicle name must not exceed 100 characters")
	}

	if !vehicleNameRegex.MatchString(name) {
		return errors.New("vehicle name must start with alphanumeric and contain only letters, numbers, spaces, hyphens, and underscores")
	}

	return nil
}

// ValidateVIN checks a vehicle identification number. An empty VIN is allowed
// since not every user registers one.
func ValidateVIN(vin string) error {
	vin = SanitizeString(vin)

	if vin == "" {
		return nil
	}

	if !vinRegex.MatchString(strings.ToUpper(vin)) {
		return errors.New("vin must be 17 characters and cannot contain I, O, or Q")
	}

	return nil
}

// ValidateUsername checks if a username is valid
func ValidateUsername(username string) error {
	username = SanitizeString(username)

	if username == "" {
		return errors.New("username cannot be empty")
	}

	if len(username) < 3 {
		return errors.New("username must be at least 3 characters")
	}

	if len(username) > 50 {
		return errors.New("username must not exceed 50 characters")
	}

	return nil
}

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	if len(password) > 128 {
		return errors.New("password must not exceed 128 characters")
	}

	var (
		hasUpper   bool
		hasLower   bool
		hasNumber  bool
		hasSpecial bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return errors.New("password must contain at least one number")
	}
	if !hasSpecial {
		return errors.New("password must contain at least one special character")
	}

	return nil
}
