package services

import (
	"context"
	"errors"
	"fmt"
	"lifeline/models"
	"lifeline/utils"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// Geocoder turns coordinates into a human-readable address.
type Geocoder interface {
	ResolveAddress(ctx context.Context, lat, long float64) (string, error)
}

type nominatimReverse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// GeocodingService reverse-geocodes through a Nominatim-compatible endpoint.
// Lookups never fail on upstream problems: the coordinate string is returned
// instead.
type GeocodingService struct {
	client   *resty.Client
	cache    *redis.Client
	cacheTTL time.Duration
}

func NewGeocodingService(baseURL, userAgent string, timeout time.Duration, cache *redis.Client, cacheTTL time.Duration) *GeocodingService {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(1).
		SetRetryWaitTime(200*time.Millisecond).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")

	return &GeocodingService{
		client:   client,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (gs *GeocodingService) ResolveAddress(ctx context.Context, lat, long float64) (string, error) {
	if !utils.IsValidCoordinate(lat, long) {
		return "", utils.NewInvalidCoordinatesError(lat, long)
	}

	fallback := models.FallbackLocation(lat, long)
	key := geocodeCacheKey(lat, long)

	if cached, ok := gs.readCache(ctx, key); ok {
		return cached, nil
	}

	var result nominatimReverse
	resp, err := gs.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"format": "json",
			"lat":    strconv.FormatFloat(lat, 'f', -1, 64),
			"lon":    strconv.FormatFloat(long, 'f', -1, 64),
		}).
		SetResult(&result).
		Get("/reverse")

	if err != nil {
		logrus.WithFields(logrus.Fields{"lat": lat, "long": long}).Warnf("Reverse geocoding failed, using coordinates: %v", err)
		return fallback, nil
	}
	if resp.IsError() {
		logrus.WithFields(logrus.Fields{"lat": lat, "long": long, "status": resp.StatusCode()}).
			Warn("Reverse geocoding returned an error status, using coordinates")
		return fallback, nil
	}

	address := strings.TrimSpace(result.DisplayName)
	if address == "" {
		logrus.WithFields(logrus.Fields{"lat": lat, "long": long, "error": result.Error}).
			Warn("Reverse geocoding returned no address, using coordinates")
		return fallback, nil
	}

	gs.writeCache(ctx, key, address)
	return address, nil
}

func geocodeCacheKey(lat, long float64) string {
	return fmt.Sprintf("geocode:%.5f:%.5f", lat, long)
}

func (gs *GeocodingService) readCache(ctx context.Context, key string) (string, bool) {
	if gs.cache == nil {
		return "", false
	}
	value, err := gs.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logrus.Debugf("Geocode cache read failed: %v", err)
		}
		return "", false
	}
	return value, value != ""
}

func (gs *GeocodingService) writeCache(ctx context.Context, key, address string) {
	if gs.cache == nil {
		return
	}
	if err := gs.cache.Set(ctx, key, address, gs.cacheTTL).Err(); err != nil {
		logrus.Debugf("Geocode cache write failed: %v", err)
	}
}
