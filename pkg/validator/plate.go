package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrEmptyPlate indicates the license plate is empty
	ErrEmptyPlate = errors.New("license plate cannot be empty")

	// ErrInvalidPlate indicates the plate does not follow the AA1234BB pattern
	ErrInvalidPlate = errors.New("license plate must look like AA1234BB")
)

// cyrillicLookalikes maps the Cyrillic letters used on Ukrainian plates to
// the Latin letters they are registered as
var cyrillicLookalikes = strings.NewReplacer(
	"А", "A", "В", "B", "С", "C", "Е", "E", "Н", "H", "І", "I",
	"К", "K", "М", "M", "О", "O", "Р", "P", "Т", "T", "Х", "X",
)

// plateRegex matches the current Ukrainian format: region, number, series
var plateRegex = regexp.MustCompile(`^[ABCEHIKMOPTX]{2}\d{4}[ABCEHIKMOPTX]{2}$`)

// PlateValidator handles license plate validation
type PlateValidator struct{}

// NewPlateValidator creates a new plate validator instance
func NewPlateValidator() *PlateValidator {
	return &PlateValidator{}
}

// Validate validates a Ukrainian license plate.
// Accepts format: AA1234BB or aa 1234 bb or АА-1234-ВВ (Cyrillic)
// Returns the sanitized plate and error if invalid
func (v *PlateValidator) Validate(plate string) (string, error) {
	if strings.TrimSpace(plate) == "" {
		return "", ErrEmptyPlate
	}

	sanitized := v.Sanitize(plate)
	if !plateRegex.MatchString(sanitized) {
		return "", ErrInvalidPlate
	}

	return sanitized, nil
}

// Sanitize upper-cases the plate, transliterates Cyrillic letters and
// drops separators
func (v *PlateValidator) Sanitize(plate string) string {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	plate = cyrillicLookalikes.Replace(plate)
	plate = strings.ReplaceAll(plate, " ", "")
	plate = strings.ReplaceAll(plate, "-", "")
	return plate
}

// Format formats a plate in the display format: AA 1234 BB
func (v *PlateValidator) Format(plate string) (string, error) {
	sanitized, err := v.Validate(plate)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s %s %s", sanitized[0:2], sanitized[2:6], sanitized[6:8]), nil
}

// IsValid is a convenience method that returns true if plate is valid
func (v *PlateValidator) IsValid(plate string) bool {
	_, err := v.Validate(plate)
	return err == nil
}
