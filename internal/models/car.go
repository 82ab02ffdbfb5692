package models

import (
	"fmt"
	"strings"
)

// CarType represents the body type used for pricing
type CarType string

const (
	CarTypeHatchback CarType = "hatchback"
	CarTypeCrossover CarType = "crossOver"
	CarTypeSUV       CarType = "suv"
)

// CarTypes lists the supported car types in display order
var CarTypes = []CarType{CarTypeHatchback, CarTypeCrossover, CarTypeSUV}

// ParseCarType matches a car type case-insensitively
func ParseCarType(raw string) (CarType, error) {
	for _, t := range CarTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(raw)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown car type %q", raw)
}

// Car represents the user's registered car
type Car struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	LicensePlate string  `json:"licensePlate"`
	CarType      CarType `json:"carType"`
}

// UpdateCarRequest represents a car update
type UpdateCarRequest struct {
	Name         string  `json:"name" binding:"required"`
	LicensePlate string  `json:"licensePlate" binding:"required"`
	CarType      CarType `json:"carType" binding:"required"`
}

// Normalize trims the name and upper-cases the plate
func (r UpdateCarRequest) Normalize() UpdateCarRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.LicensePlate = strings.ToUpper(strings.TrimSpace(r.LicensePlate))
	return r
}
