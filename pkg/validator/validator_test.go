package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlateValidator(t *testing.T) {
	validator := NewPlateValidator()
	assert.NotNil(t, validator)
}

func TestValidate_ValidPlates(t *testing.T) {
	validator := NewPlateValidator()

	validPlates := []struct {
		input    string
		expected string
		name     string
	}{
		{"AA1234BB", "AA1234BB", "Standard format"},
		{"aa1234bb", "AA1234BB", "Lower case"},
		{" AA 1234 BB ", "AA1234BB", "With spaces"},
		{"KA-0001-AA", "KA0001AA", "With dashes"},
		{"АА1234ВВ", "AA1234BB", "Cyrillic letters"},
		{"ах0001ор", "AX0001OP", "Lower-case Cyrillic"},
	}

	for _, tc := range validPlates {
		t.Run(tc.name, func(t *testing.T) {
			sanitized, err := validator.Validate(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sanitized)
		})
	}
}

func TestValidate_InvalidPlates(t *testing.T) {
	validator := NewPlateValidator()

	invalidPlates := []struct {
		input       string
		expectedErr error
		name        string
	}{
		{"", ErrEmptyPlate, "Empty string"},
		{"   ", ErrEmptyPlate, "Blank"},
		{"X", ErrInvalidPlate, "Too short"},
		{"AA12345BB", ErrInvalidPlate, "Too many digits"},
		{"AA1234B", ErrInvalidPlate, "Missing series letter"},
		{"ZZ1234BB", ErrInvalidPlate, "Letter not used on plates"},
		{"AA12D4BB", ErrInvalidPlate, "Letter in number"},
	}

	for _, tc := range invalidPlates {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.Validate(tc.input)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestFormat(t *testing.T) {
	validator := NewPlateValidator()

	formatted, err := validator.Format("ka0001aa")
	require.NoError(t, err)
	assert.Equal(t, "KA 0001 AA", formatted)

	_, err = validator.Format("nope")
	assert.Error(t, err)
}

func TestIsValid(t *testing.T) {
	validator := NewPlateValidator()

	assert.True(t, validator.IsValid("AA1234BB"))
	assert.False(t, validator.IsValid("AA-12"))
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"anna@example.com", "anna@example.com", false},
		{"  Anna@Example.COM ", "anna@example.com", false},
		{"not-an-email", "", true},
		{"anna@localhost", "", true},
		{"an na@example.com", "", true},
		{"", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ValidateEmail(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidEmail)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}
