package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"day-scheduler/internal/logger"
	"day-scheduler/internal/metrics"
	"day-scheduler/internal/model"
	"day-scheduler/internal/suntime"
)

const (
	solarService  = "sunrise-sunset"
	prayerService = "prayer-times"
)

type SolarLookup interface {
	Lookup(ctx context.Context, lat, lng float64) (suntime.SolarEvents, error)
}

type PrayerLookup interface {
	Lookup(ctx context.Context, lat, lng float64) (map[string]string, error)
}

// TimesCache is optional; a nil cache disables caching.
type TimesCache interface {
	Get(ctx context.Context, key string) (suntime.Times, bool, error)
	Set(ctx context.Context, key string, t suntime.Times) error
}

// TimesService combines the solar and prayer lookups for a coordinate.
type TimesService struct {
	solar  SolarLookup
	prayer PrayerLookup
	cache  TimesCache
	loc    *time.Location
	now    func() time.Time
}

func NewTimesService(solar SolarLookup, prayer PrayerLookup, cache TimesCache, loc *time.Location) *TimesService {
	if loc == nil {
		loc = time.Local
	}
	return &TimesService{solar: solar, prayer: prayer, cache: cache, loc: loc, now: time.Now}
}

// Lookup returns sunrise, sunset and, when available, prayer times for lat/lng.
//
// Missing or malformed coordinates fail before any upstream call. A failed
// solar lookup fails the request; a prayer answer without data only drops
// the prayer fields. Both lookups run concurrently and are joined here.
func (s *TimesService) Lookup(ctx context.Context, latRaw, lngRaw string) (*suntime.Times, error) {
	latRaw, lngRaw = strings.TrimSpace(latRaw), strings.TrimSpace(lngRaw)
	if latRaw == "" || lngRaw == "" {
		return nil, invalid("latitude and longitude are required")
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, invalid("lat must be a decimal latitude between -90 and 90")
	}
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil || lng < -180 || lng > 180 {
		return nil, invalid("lng must be a decimal longitude between -180 and 180")
	}

	log := logger.WithContext(ctx)
	key := suntime.Key(lat, lng, model.DayOf(s.now().In(s.loc)))
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.TimesCache.WithLabelValues("error").Inc()
			log.Warn("times cache read failed", "error", err)
		case ok:
			metrics.TimesCache.WithLabelValues("hit").Inc()
			cached.Lat, cached.Lng = latRaw, lngRaw
			return &cached, nil
		default:
			metrics.TimesCache.WithLabelValues("miss").Inc()
		}
	}

	var (
		events  suntime.SolarEvents
		timings map[string]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = s.solar.Lookup(gctx, lat, lng)
		if err != nil {
			metrics.UpstreamRequests.WithLabelValues(solarService, "error").Inc()
			return &UpstreamError{Service: solarService, Err: err}
		}
		metrics.UpstreamRequests.WithLabelValues(solarService, "ok").Inc()
		return nil
	})
	g.Go(func() error {
		var err error
		timings, err = s.prayer.Lookup(gctx, lat, lng)
		switch {
		case errors.Is(err, suntime.ErrUnavailable):
			metrics.UpstreamRequests.WithLabelValues(prayerService, "unavailable").Inc()
			log.Warn("prayer times omitted", "error", err)
			timings = nil
			return nil
		case err != nil:
			metrics.UpstreamRequests.WithLabelValues(prayerService, "error").Inc()
			return &UpstreamError{Service: prayerService, Err: err}
		}
		metrics.UpstreamRequests.WithLabelValues(prayerService, "ok").Inc()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := suntime.Times{
		Sunset:      events.Sunset.Format(time.RFC3339),
		SunsetTime:  events.Sunset.In(s.loc).Format("15:04"),
		Sunrise:     events.Sunrise.Format(time.RFC3339),
		SunriseTime: events.Sunrise.In(s.loc).Format("15:04"),
		DhuhrTime:   timings["Dhuhr"],
		AsrTime:     timings["Asr"],
		IshaTime:    timings["Isha"],
		Lat:         latRaw,
		Lng:         lngRaw,
	}

	// Degraded answers are not cached so the prayer lookup is retried next time.
	if s.cache != nil && timings != nil {
		if err := s.cache.Set(ctx, key, result); err != nil {
			metrics.TimesCache.WithLabelValues("error").Inc()
			log.Warn("times cache write failed", "error", err)
		}
	}
	return &result, nil
}
