package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello  "))
	assert.Equal(t, "hello", SanitizeString("he\x00llo"))
	assert.Equal(t, "line\nbreak", SanitizeString("line\nbreak"))
	assert.Equal(t, "nobell", SanitizeString("no\x07bell"))
}

func TestValidateVehicleName(t *testing.T) {
	valid := []string{
		"Family SUV",
		"truck-02",
		"My_Car",
		"X5",
	}
	for _, name := range valid {
		assert.NoError(t, ValidateVehicleName(name), "expected %q to be valid", name)
	}

	invalid := []string{
		"",
		"A",
		"-starts-with-dash",
		"bad!chars",
		string(make([]byte, 101)),
	}
	for _, name := range invalid {
		assert.Error(t, ValidateVehicleName(name), "expected %q to be invalid", name)
	}
}

func TestValidateVIN(t *testing.T) {
	assert.NoError(t, ValidateVIN(""), "vin is optional")
	assert.NoError(t, ValidateVIN("1HGBH41JXMN109186"))
	assert.NoError(t, ValidateVIN("1hgbh41jxmn109186"), "case is normalized before matching")

	assert.Error(t, ValidateVIN("SHORT"))
	assert.Error(t, ValidateVIN("1HGBH41JXMN10918X5"), "18 characters")
	assert.Error(t, ValidateVIN("IHGBH41JXMN109186"), "I is not a legal VIN character")
	assert.Error(t, ValidateVIN("OHGBH41JXMN109186"), "O is not a legal VIN character")
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("alice"))
	assert.NoError(t, ValidateUsername("bob_42"))

	assert.Error(t, ValidateUsername(""))
	assert.Error(t, ValidateUsername("ab"))
	assert.Error(t, ValidateUsername(string(make([]byte, 51))))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Sup3rSecret!"))

	tests := []struct {
		name     string
		password string
	}{
		{"too short", "Ab1!"},
		{"no uppercase", "sup3rsecret!"},
		{"no lowercase", "SUP3RSECRET!"},
		{"no digit", "SuperSecret!"},
		{"no special", "Sup3rSecret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidatePassword(tt.password))
		})
	}
}
