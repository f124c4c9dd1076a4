package resolver

import (
	"context"
	"time"

	"github.com/couchcryptid/met-update-db/internal/domain"
)

// WindFromMetar returns the wind of the METAR selected for ref, or nil when
// no METAR applies or it lacks either direction or speed.
func (r *Resolver) WindFromMetar(ctx context.Context, airport string, ref time.Time) (*domain.WindInput, error) {
	metar, err := r.SelectMetar(ctx, airport, ref)
	if err != nil || metar == nil {
		return nil, err
	}

	direction, ok := domain.ExtractWindValue(metar.Content, domain.KeyWindDirection)
	if !ok {
		return nil, nil
	}
	speed, ok := domain.ExtractWindValue(metar.Content, domain.KeyWindSpeed)
	if !ok {
		return nil, nil
	}
	return &domain.WindInput{Direction: direction, Speed: speed}, nil
}

// WindFromTaf returns the forecast wind of the TAF selected for ref, or nil.
// Direction and speed are resolved independently and may come from
// different forecast segments.
func (r *Resolver) WindFromTaf(ctx context.Context, airport string, ref time.Time) (*domain.WindInput, error) {
	ref = domain.StoreTime(ref)
	taf, err := r.SelectTaf(ctx, airport, ref)
	if err != nil || taf == nil {
		return nil, err
	}

	segments := domain.ForecastSegments(taf.Content)
	direction, ok := domain.WindFromTafSegments(segments, ref, domain.KeyWindDirection)
	if !ok {
		return nil, nil
	}
	speed, ok := domain.WindFromTafSegments(segments, ref, domain.KeyWindSpeed)
	if !ok {
		return nil, nil
	}
	return &domain.WindInput{Direction: direction, Speed: speed}, nil
}

// Resolve returns the wind input for airport at ref. An applicable METAR
// always takes priority over a TAF. Returns domain.ErrMETNotAvailable when
// neither yields a complete reading.
func (r *Resolver) Resolve(ctx context.Context, airport string, ref time.Time) (domain.WindInput, domain.WindInputSource, error) {
	start := time.Now()
	defer func() { r.metrics.ResolveDuration.Observe(time.Since(start).Seconds()) }()

	wind, err := r.WindFromMetar(ctx, airport, ref)
	if err != nil {
		r.metrics.WindResolutions.WithLabelValues("error").Inc()
		return domain.WindInput{}, "", err
	}
	if wind != nil {
		r.record(airport, ref, domain.SourceMetar, *wind)
		return *wind, domain.SourceMetar, nil
	}

	wind, err = r.WindFromTaf(ctx, airport, ref)
	if err != nil {
		r.metrics.WindResolutions.WithLabelValues("error").Inc()
		return domain.WindInput{}, "", err
	}
	if wind != nil {
		r.record(airport, ref, domain.SourceTaf, *wind)
		return *wind, domain.SourceTaf, nil
	}

	r.metrics.WindResolutions.WithLabelValues("none").Inc()
	r.logger.Debug("no wind input available", "airport", airport, "reference_time", ref)
	return domain.WindInput{}, "", domain.ErrMETNotAvailable
}

// LastTafEndTime returns the latest validity end across every TAF stored for
// airport, regardless of when it was ingested. Returns
// domain.ErrMETNotAvailable when the airport has no TAF.
func (r *Resolver) LastTafEndTime(ctx context.Context, airport string) (time.Time, error) {
	tafs, err := r.repo.FindTafs(ctx, domain.TafFilter{
		AirportICAO:    airport,
		OrderByEndTime: true,
		Limit:          1,
	})
	if err != nil {
		return time.Time{}, err
	}

	last := latest(tafs, func(t domain.TafReport) time.Time { return t.EndTime })
	if last == nil {
		return time.Time{}, domain.ErrMETNotAvailable
	}
	return last.EndTime, nil
}

func (r *Resolver) record(airport string, ref time.Time, source domain.WindInputSource, wind domain.WindInput) {
	outcome := "metar"
	if source == domain.SourceTaf {
		outcome = "taf"
	}
	r.metrics.WindResolutions.WithLabelValues(outcome).Inc()
	r.logger.Debug("wind input resolved",
		"airport", airport,
		"reference_time", ref,
		"source", source,
		"direction", wind.Direction,
		"speed", wind.Speed,
	)
}
