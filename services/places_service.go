package services

import (
	"context"
	"encoding/json"
	"fmt"
	"lifeline/models"
	"lifeline/utils"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	defaultPlacesRadius = 5000
	defaultPlacesType   = "hospital"
	placesSummaryLimit  = 8
)

type googlePlace struct {
	Name           string  `json:"name"`
	BusinessStatus string  `json:"business_status"`
	Icon           string  `json:"icon"`
	Rating         float64 `json:"rating"`
	Vicinity       string  `json:"vicinity"`
	OpeningHours   *struct {
		OpenNow *bool `json:"open_now"`
	} `json:"opening_hours"`
}

type googleNearbyResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
	Results      json.RawMessage `json:"results"`
}

// PlacesService proxies Google Places Nearby Search for the hospital locator.
type PlacesService struct {
	client    *resty.Client
	apiKey    string
	hospitals *HospitalService
}

func NewPlacesService(baseURL, apiKey string, timeout time.Duration, hospitals *HospitalService) *PlacesService {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(1).
		SetHeader("Accept", "application/json")

	return &PlacesService{
		client:    client,
		apiKey:    apiKey,
		hospitals: hospitals,
	}
}

// Nearby returns the vendor payload untouched plus a summary of the first
// results. The summary belongs to this response only.
func (ps *PlacesService) Nearby(ctx context.Context, query models.NearbyPlacesQuery) (*models.NearbyPlacesResponse, error) {
	if ps.apiKey == "" {
		return nil, utils.NewNotConfiguredError("Places API")
	}
	if !utils.IsValidCoordinate(query.Lat, query.Lng) {
		return nil, utils.NewInvalidCoordinatesError(query.Lat, query.Lng)
	}

	radius := query.Radius
	if radius <= 0 {
		radius = defaultPlacesRadius
	}
	placeType := query.Type
	if placeType == "" {
		placeType = defaultPlacesType
	}

	resp, err := ps.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"location": fmt.Sprintf("%v,%v", query.Lat, query.Lng),
			"radius":   fmt.Sprintf("%d", radius),
			"type":     placeType,
			"key":      ps.apiKey,
		}).
		Get("/nearbysearch/json")
	if err != nil {
		logrus.Errorf("Places request failed: %v", err)
		return nil, utils.NewUpstreamError("Places API", err)
	}
	if resp.IsError() {
		logrus.Errorf("Places API returned %d", resp.StatusCode())
		return nil, utils.NewUpstreamError("Places API", fmt.Errorf("status %d", resp.StatusCode()))
	}

	var payload googleNearbyResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, utils.NewUpstreamError("Places API", err)
	}
	if payload.ErrorMessage != "" {
		logrus.Warnf("Places API status %s: %s", payload.Status, payload.ErrorMessage)
	}

	summary, err := summarizePlaces(payload.Results)
	if err != nil {
		return nil, utils.NewUpstreamError("Places API", err)
	}

	if query.Match && ps.hospitals != nil {
		if err := ps.hospitals.MatchPlaces(ctx, summary); err != nil {
			logrus.Warnf("Hospital matching skipped: %v", err)
		}
	}

	return &models.NearbyPlacesResponse{
		Status:  payload.Status,
		Results: payload.Results,
		Summary: summary,
		Raw:     json.RawMessage(resp.Body()),
	}, nil
}

func summarizePlaces(raw json.RawMessage) ([]models.PlaceSummary, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []models.PlaceSummary{}, nil
	}

	var places []googlePlace
	if err := json.Unmarshal(raw, &places); err != nil {
		return nil, err
	}
	if len(places) > placesSummaryLimit {
		places = places[:placesSummaryLimit]
	}

	summary := make([]models.PlaceSummary, 0, len(places))
	for _, p := range places {
		s := models.PlaceSummary{
			Name:           p.Name,
			BusinessStatus: p.BusinessStatus,
			Icon:           p.Icon,
			Rating:         p.Rating,
			Vicinity:       p.Vicinity,
		}
		if p.OpeningHours != nil {
			s.OpenNow = p.OpeningHours.OpenNow
		}
		summary = append(summary, s)
	}
	return summary, nil
}
