package domain

import "errors"

var (
	ErrMeterNotActive      = errors.New("meter_not_active")
	ErrMeterNotFound       = errors.New("meter_not_found")
	ErrNoActiveMeters      = errors.New("no_active_meters")
	ErrInsufficientData    = errors.New("insufficient_readings")
	ErrMeterCalculation    = errors.New("meter_calculation_failed")
	ErrPlaceNotFound       = errors.New("meter_place_not_found")
	ErrDuplicateReading    = errors.New("duplicate_reading")
	ErrReadingNotMonotonic = errors.New("reading_not_monotonic")
)
