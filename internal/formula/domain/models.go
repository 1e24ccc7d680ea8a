// Package domain holds consumption formula definitions: a named, ordered
// list of arguments combined left-to-right by a single operator.
package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Operator string

const (
	OperatorAdd      Operator = "+"
	OperatorSubtract Operator = "-"
	OperatorMultiply Operator = "*"
	OperatorDivide   Operator = "/"
	// OperatorNone is the identity for single-argument definitions.
	OperatorNone Operator = "none"
)

// Definition is a consumption formula valid within [ValidFrom, ValidUntil].
// A nil ValidUntil keeps the definition open-ended.
type Definition struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	Name       string       `gorm:"type:text;not null"`
	Operator   Operator     `gorm:"type:text;not null"`
	ValidFrom  time.Time    `gorm:"not null"`
	ValidUntil *time.Time
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Definition) TableName() string { return "formula_definitions" }

// SourceKind discriminates the three argument variants.
type SourceKind string

const (
	SourceMeterPlace SourceKind = "meter_place"
	SourceFixedValue SourceKind = "fixed_value"
	SourceNested     SourceKind = "nested"
)

// Argument is one operand of a definition. Exactly one of MeterPlaceID,
// FixedValue and NestedDefinitionID must be set.
type Argument struct {
	ID                 snowflake.ID `gorm:"primaryKey"`
	DefinitionID       snowflake.ID `gorm:"not null;index"`
	Position           int          `gorm:"not null"`
	Unit               string       `gorm:"type:text"`
	Explanation        string       `gorm:"type:text"`
	MeterPlaceID       *snowflake.ID
	FixedValue         *float64
	NestedDefinitionID *snowflake.ID
	CreatedAt          time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Argument) TableName() string { return "formula_arguments" }

// Source returns the argument's variant, or a configuration error when not
// exactly one source field is set.
func (a Argument) Source() (SourceKind, error) {
	var kinds []SourceKind
	if a.MeterPlaceID != nil {
		kinds = append(kinds, SourceMeterPlace)
	}
	if a.FixedValue != nil {
		kinds = append(kinds, SourceFixedValue)
	}
	if a.NestedDefinitionID != nil {
		kinds = append(kinds, SourceNested)
	}
	if len(kinds) != 1 {
		return "", fmt.Errorf("argument %d has %d sources set, want exactly one: %w",
			a.Position, len(kinds), ErrConfiguration)
	}
	return kinds[0], nil
}

// Step is one entry of the evaluation audit trail: either the evaluation of
// a single argument or one left-to-right combine.
type Step struct {
	Description string
	Operator    Operator
	Operands    []float64
	Result      float64
	Unit        string
}

// Result is the outcome of evaluating a definition over a period.
type Result struct {
	DefinitionID snowflake.ID
	Name         string
	Value        float64
	Unit         string
	Steps        []Step
	// Display is the human-readable formula string, nested definitions
	// rendered parenthesized.
	Display string
}

type Repository interface {
	FindDefinition(ctx context.Context, id snowflake.ID) (*Definition, error)
	// ListArguments returns the definition's arguments ordered by position.
	ListArguments(ctx context.Context, definitionID snowflake.ID) ([]Argument, error)
}

type Service interface {
	Evaluate(ctx context.Context, definitionID snowflake.ID, start, end time.Time) (*Result, error)
}
