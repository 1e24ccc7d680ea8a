package domain

import "errors"

var (
	ErrDefinitionNotFound = errors.New("formula_definition_not_found")
	ErrDivisionByZero     = errors.New("division_by_zero")
	ErrConfiguration      = errors.New("invalid_configuration")
)
