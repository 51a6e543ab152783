package models

import "encoding/json"

type NearbyPlacesQuery struct {
	Lat    float64 `form:"lat" validate:"coordinate"`
	Lng    float64 `form:"lng" validate:"coordinate"`
	Radius int     `form:"radius" validate:"omitempty,min=1,max=50000"`
	Type   string  `form:"type" validate:"omitempty,max=50"`
	Match  bool    `form:"match"`
}

// PlaceSummary is the trimmed view of a nearby place shown on the locator page.
type PlaceSummary struct {
	Name           string    `json:"name"`
	BusinessStatus string    `json:"business_status,omitempty"`
	Icon           string    `json:"icon,omitempty"`
	OpenNow        *bool     `json:"opening_hours"`
	Rating         float64   `json:"rating,omitempty"`
	Vicinity       string    `json:"vicinity,omitempty"`
	Hospital       *Hospital `json:"hospital,omitempty"`
}

// NearbyPlacesResponse is the vendor payload passed through untouched, plus
// the per-request summary.
type NearbyPlacesResponse struct {
	Status  string          `json:"status"`
	Results json.RawMessage `json:"results"`
	Summary []PlaceSummary  `json:"summary"`
	Raw     json.RawMessage `json:"-"`
}

// MarshalJSON writes the vendor payload with summary added at the top level.
func (r NearbyPlacesResponse) MarshalJSON() ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if len(r.Raw) > 0 {
		if err := json.Unmarshal(r.Raw, &fields); err != nil {
			return nil, err
		}
	} else {
		status, _ := json.Marshal(r.Status)
		fields["status"] = status
		results := r.Results
		if len(results) == 0 {
			results = json.RawMessage("[]")
		}
		fields["results"] = results
	}

	summary := r.Summary
	if summary == nil {
		summary = []PlaceSummary{}
	}
	encoded, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}
	fields["summary"] = encoded

	return json.Marshal(fields)
}
