package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	formuladomain "github.com/tabacha/librelandlord/internal/formula/domain"
	meterdomain "github.com/tabacha/librelandlord/internal/meter/domain"
	"github.com/tabacha/librelandlord/internal/period"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// maxNestingDepth bounds recursive evaluation of nested definitions.
const maxNestingDepth = 16

type Service struct {
	repo   formuladomain.Repository
	meters meterdomain.Service
	log    *zap.Logger
}

type ServiceParam struct {
	fx.In

	Repo   formuladomain.Repository
	Meters meterdomain.Service
	Log    *zap.Logger
}

func NewService(p ServiceParam) formuladomain.Service {
	return &Service{
		repo:   p.Repo,
		meters: p.Meters,
		log:    p.Log.Named("formula.service"),
	}
}

func (s *Service) Evaluate(ctx context.Context, definitionID snowflake.ID, start, end time.Time) (*formuladomain.Result, error) {
	visited := make(map[snowflake.ID]bool)
	return s.evaluate(ctx, definitionID, start, end, visited, 0)
}

// operand is one evaluated argument awaiting combination.
type operand struct {
	value   float64
	unit    string
	display string
}

func (s *Service) evaluate(ctx context.Context, definitionID snowflake.ID, start, end time.Time, visited map[snowflake.ID]bool, depth int) (*formuladomain.Result, error) {
	if depth > maxNestingDepth {
		return nil, fmt.Errorf("formula nesting deeper than %d levels: %w",
			maxNestingDepth, formuladomain.ErrConfiguration)
	}
	if visited[definitionID] {
		return nil, fmt.Errorf("formula %d is part of a nesting cycle: %w",
			definitionID, formuladomain.ErrConfiguration)
	}
	visited[definitionID] = true
	defer delete(visited, definitionID)

	def, err := s.repo.FindDefinition(ctx, definitionID)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, fmt.Errorf("formula %d: %w", definitionID, formuladomain.ErrDefinitionNotFound)
	}

	p, err := period.New(start, end)
	if err != nil {
		return nil, fmt.Errorf("formula %q (%d): %w", def.Name, def.ID, err)
	}
	if p.Start.Before(period.Day(def.ValidFrom)) {
		return nil, fmt.Errorf("formula %q (%d): period %s starts before validity %s: %w",
			def.Name, def.ID, p, def.ValidFrom.Format(time.DateOnly), period.ErrInvalidRange)
	}
	if def.ValidUntil != nil && p.End.After(period.Day(*def.ValidUntil)) {
		return nil, fmt.Errorf("formula %q (%d): period %s ends after validity %s: %w",
			def.Name, def.ID, p, def.ValidUntil.Format(time.DateOnly), period.ErrInvalidRange)
	}

	args, err := s.repo.ListArguments(ctx, def.ID)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("formula %q (%d) has no arguments: %w",
			def.Name, def.ID, formuladomain.ErrConfiguration)
	}
	if def.Operator == formuladomain.OperatorNone && len(args) > 1 {
		return nil, fmt.Errorf("formula %q (%d) combines %d arguments without an operator: %w",
			def.Name, def.ID, len(args), formuladomain.ErrConfiguration)
	}

	result := &formuladomain.Result{DefinitionID: def.ID, Name: def.Name}

	operands := make([]operand, 0, len(args))
	for _, arg := range args {
		op, step, err := s.evaluateArgument(ctx, def, arg, p, visited, depth)
		if err != nil {
			return nil, err
		}
		operands = append(operands, op)
		result.Steps = append(result.Steps, step)
	}

	acc := operands[0]
	for _, next := range operands[1:] {
		combined, err := apply(def, p, acc, next)
		if err != nil {
			return nil, err
		}
		result.Steps = append(result.Steps, formuladomain.Step{
			Description: fmt.Sprintf("%s %s %s",
				formatValue(acc.value), def.Operator, formatValue(next.value)),
			Operator: def.Operator,
			Operands: []float64{acc.value, next.value},
			Result:   combined.value,
			Unit:     combined.unit,
		})
		combined.display = acc.display + " " + string(def.Operator) + " " + next.display
		acc = combined
	}

	result.Value = acc.value
	result.Unit = acc.unit
	result.Display = acc.display
	return result, nil
}

func (s *Service) evaluateArgument(ctx context.Context, def *formuladomain.Definition, arg formuladomain.Argument, p period.Period, visited map[snowflake.ID]bool, depth int) (operand, formuladomain.Step, error) {
	kind, err := arg.Source()
	if err != nil {
		return operand{}, formuladomain.Step{}, fmt.Errorf("formula %q (%d): %w", def.Name, def.ID, err)
	}

	switch kind {
	case formuladomain.SourceMeterPlace:
		consumption, err := s.meters.PlaceConsumption(ctx, *arg.MeterPlaceID, p.Start, p.End)
		if err != nil {
			return operand{}, formuladomain.Step{}, fmt.Errorf("formula %q (%d): %w", def.Name, def.ID, err)
		}
		unit := consumption.Unit
		if arg.Unit != "" {
			unit = arg.Unit
		}
		op := operand{
			value:   consumption.Total,
			unit:    unit,
			display: displayValue(consumption.Total, unit),
		}
		description := arg.Explanation
		if description == "" {
			description = consumption.Place.Name
		}
		return op, formuladomain.Step{
			Description: description,
			Operands:    []float64{op.value},
			Result:      op.value,
			Unit:        unit,
		}, nil

	case formuladomain.SourceFixedValue:
		stored := *arg.FixedValue
		op := operand{value: stored, unit: arg.Unit}
		if arg.Unit == "%" {
			// Percentages are stored as entered; arithmetic uses the
			// fraction, display keeps the entered number.
			op.value = stored / 100
			op.display = formatValue(stored) + " %"
		} else {
			op.display = displayValue(stored, arg.Unit)
		}
		description := arg.Explanation
		if description == "" {
			description = "fixed value"
		}
		return op, formuladomain.Step{
			Description: description,
			Operands:    []float64{op.value},
			Result:      op.value,
			Unit:        op.unit,
		}, nil

	case formuladomain.SourceNested:
		nested, err := s.evaluate(ctx, *arg.NestedDefinitionID, p.Start, p.End, visited, depth+1)
		if err != nil {
			return operand{}, formuladomain.Step{}, fmt.Errorf("formula %q (%d): %w", def.Name, def.ID, err)
		}
		op := operand{
			value:   nested.Value,
			unit:    nested.Unit,
			display: "(" + nested.Display + ")",
		}
		return op, formuladomain.Step{
			Description: nested.Name,
			Operands:    []float64{op.value},
			Result:      op.value,
			Unit:        op.unit,
		}, nil
	}

	return operand{}, formuladomain.Step{}, fmt.Errorf("formula %q (%d): unknown argument source: %w",
		def.Name, def.ID, formuladomain.ErrConfiguration)
}

func apply(def *formuladomain.Definition, p period.Period, left, right operand) (operand, error) {
	var value float64
	switch def.Operator {
	case formuladomain.OperatorAdd:
		value = left.value + right.value
	case formuladomain.OperatorSubtract:
		value = left.value - right.value
	case formuladomain.OperatorMultiply:
		value = left.value * right.value
	case formuladomain.OperatorDivide:
		if right.value == 0 {
			return operand{}, fmt.Errorf("formula %q (%d), period %s: %w",
				def.Name, def.ID, p, formuladomain.ErrDivisionByZero)
		}
		value = left.value / right.value
	default:
		return operand{}, fmt.Errorf("formula %q (%d) has unsupported operator %q: %w",
			def.Name, def.ID, def.Operator, formuladomain.ErrConfiguration)
	}
	return operand{value: value, unit: combineUnits(def.Operator, left.unit, right.unit)}, nil
}

// formatValue renders a number with at most two decimals and at least one.
func formatValue(v float64) string {
	s := strconv.FormatFloat(roundToScale(v, 2), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func displayValue(v float64, unit string) string {
	if unit == "" {
		return formatValue(v)
	}
	return formatValue(v) + " " + unit
}

func roundToScale(v float64, scale int) float64 {
	factor := math.Pow10(scale)
	return math.Round(v*factor) / factor
}
