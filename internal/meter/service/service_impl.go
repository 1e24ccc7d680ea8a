package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	meterdomain "github.com/tabacha/librelandlord/internal/meter/domain"
	"github.com/tabacha/librelandlord/internal/period"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	repo meterdomain.Repository
	ids  *snowflake.Node
	log  *zap.Logger
}

type ServiceParam struct {
	fx.In

	Repo meterdomain.Repository
	IDs  *snowflake.Node
	Log  *zap.Logger
}

func NewService(p ServiceParam) meterdomain.Service {
	return &Service{
		repo: p.Repo,
		ids:  p.IDs,
		log:  p.Log.Named("meter.service"),
	}
}

// RecordReading validates a new reading against its neighbors before
// storing it.
func (s *Service) RecordReading(ctx context.Context, meterID snowflake.ID, date time.Time, value float64) (*meterdomain.Reading, error) {
	day := period.Day(date)

	meter, err := s.repo.FindMeter(ctx, meterID)
	if err != nil {
		return nil, err
	}
	if meter == nil {
		return nil, fmt.Errorf("meter %d: %w", meterID, meterdomain.ErrMeterNotFound)
	}
	if !meter.ActiveOn(day) {
		return nil, fmt.Errorf("meter %s not in service on %s: %w",
			meter.MeterNumber, day.Format(time.DateOnly), meterdomain.ErrMeterNotActive)
	}

	existing, err := s.repo.FindReadingOn(ctx, meter.ID, day)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("meter %s already has a reading on %s: %w",
			meter.MeterNumber, day.Format(time.DateOnly), meterdomain.ErrDuplicateReading)
	}

	before, err := s.repo.LastReadingBefore(ctx, meter.ID, day)
	if err != nil {
		return nil, err
	}
	if before != nil && value < before.Value {
		return nil, fmt.Errorf("meter %s: %v on %s is below the %v read on %s: %w",
			meter.MeterNumber, value, day.Format(time.DateOnly),
			before.Value, before.Date.Format(time.DateOnly), meterdomain.ErrReadingNotMonotonic)
	}
	after, err := s.repo.FirstReadingAfter(ctx, meter.ID, day)
	if err != nil {
		return nil, err
	}
	if after != nil && value > after.Value {
		return nil, fmt.Errorf("meter %s: %v on %s is above the %v read on %s: %w",
			meter.MeterNumber, value, day.Format(time.DateOnly),
			after.Value, after.Date.Format(time.DateOnly), meterdomain.ErrReadingNotMonotonic)
	}

	reading := &meterdomain.Reading{
		ID:      s.ids.Generate(),
		MeterID: meter.ID,
		Date:    day,
		Value:   value,
	}
	if err := s.repo.SaveReading(ctx, reading); err != nil {
		return nil, err
	}

	s.log.Info("reading recorded",
		zap.String("meter", meter.MeterNumber),
		zap.String("date", day.Format(time.DateOnly)),
		zap.Float64("value", value))

	return reading, nil
}

// PlaceConsumption sums the consumption of every meter that served the place
// during [start, end). A meter replaced mid-period contributes its clipped
// sub-period; the replacement continues from its build-in date.
func (s *Service) PlaceConsumption(ctx context.Context, placeID snowflake.ID, start, end time.Time) (*meterdomain.PlaceConsumption, error) {
	p, err := period.New(start, end)
	if err != nil {
		return nil, fmt.Errorf("meter place %d: %w", placeID, err)
	}

	place, err := s.repo.FindPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if place == nil {
		return nil, fmt.Errorf("meter place %d: %w", placeID, meterdomain.ErrPlaceNotFound)
	}

	meters, err := s.repo.ListMetersForPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}

	active := make([]meterdomain.Meter, 0, len(meters))
	for _, m := range meters {
		if period.Day(m.BuildInDate).After(p.End) {
			continue
		}
		if m.OutOfOrderDate != nil && period.Day(*m.OutOfOrderDate).Before(p.Start) {
			continue
		}
		active = append(active, m)
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("meter place %s has no meter in %s: %w",
			place.Name, p, meterdomain.ErrNoActiveMeters)
	}

	result := &meterdomain.PlaceConsumption{
		Place:  *place,
		Period: p,
		Unit:   place.Type.Unit(),
	}
	for _, m := range active {
		window := period.Period{Start: period.Day(m.BuildInDate), End: p.End}
		if m.OutOfOrderDate != nil {
			window.End = period.Day(*m.OutOfOrderDate)
		}
		sub, ok := p.Clip(window)
		if !ok || sub.Days() <= 0 {
			return nil, fmt.Errorf("meter %s has no usable sub-period in %s: %w",
				m.MeterNumber, p, meterdomain.ErrMeterCalculation)
		}

		startValue, err := s.ResolveAt(ctx, m, sub.Start)
		if err != nil {
			return nil, fmt.Errorf("meter %s, period %s: %w", m.MeterNumber, sub, err)
		}
		endValue, err := s.ResolveAt(ctx, m, sub.End)
		if err != nil {
			return nil, fmt.Errorf("meter %s, period %s: %w", m.MeterNumber, sub, err)
		}

		consumption := endValue.Value - startValue.Value
		result.Meters = append(result.Meters, meterdomain.MeterConsumption{
			Meter:       m,
			Period:      sub,
			StartValue:  startValue,
			EndValue:    endValue,
			Consumption: consumption,
		})
		result.Total += consumption
		result.ActiveDays += sub.Days()
	}

	s.log.Debug("place consumption calculated",
		zap.String("place", place.Name),
		zap.String("period", p.String()),
		zap.Float64("total", result.Total),
		zap.String("unit", result.Unit))

	return result, nil
}
