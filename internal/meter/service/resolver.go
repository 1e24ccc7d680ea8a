package service

import (
	"context"
	"fmt"
	"math"
	"time"

	meterdomain "github.com/tabacha/librelandlord/internal/meter/domain"
	"github.com/tabacha/librelandlord/internal/period"
)

// ResolveAt returns the meter's value on the given day. An exact reading
// wins; otherwise the value is linearly interpolated between the nearest
// readings strictly before and strictly after the day.
func (s *Service) ResolveAt(ctx context.Context, meter meterdomain.Meter, date time.Time) (meterdomain.ResolvedValue, error) {
	day := period.Day(date)

	if !meter.ActiveOn(day) {
		return meterdomain.ResolvedValue{}, fmt.Errorf(
			"meter %s not in service on %s: %w",
			meter.MeterNumber, day.Format(time.DateOnly), meterdomain.ErrMeterNotActive)
	}

	exact, err := s.repo.FindReadingOn(ctx, meter.ID, day)
	if err != nil {
		return meterdomain.ResolvedValue{}, err
	}
	if exact != nil {
		return meterdomain.ResolvedValue{Date: day, Value: exact.Value, Exact: true}, nil
	}

	before, err := s.repo.LastReadingBefore(ctx, meter.ID, day)
	if err != nil {
		return meterdomain.ResolvedValue{}, err
	}
	after, err := s.repo.FirstReadingAfter(ctx, meter.ID, day)
	if err != nil {
		return meterdomain.ResolvedValue{}, err
	}
	if before == nil || after == nil {
		return meterdomain.ResolvedValue{}, fmt.Errorf(
			"meter %s has no bracketing readings around %s: %w",
			meter.MeterNumber, day.Format(time.DateOnly), meterdomain.ErrInsufficientData)
	}

	daysBetween := period.DaysBetween(before.Date, after.Date)
	perDay := (after.Value - before.Value) / float64(daysBetween)
	value := roundToScale(before.Value+perDay*float64(period.DaysBetween(before.Date, day)), 2)

	return meterdomain.ResolvedValue{
		Date:       day,
		Value:      value,
		Before:     before,
		After:      after,
		PerDayRate: perDay,
	}, nil
}

// roundToScale rounds half away from zero to the given number of decimals so
// repeated interpolation stays deterministic.
func roundToScale(v float64, scale int) float64 {
	factor := math.Pow10(scale)
	return math.Round(v*factor) / factor
}
