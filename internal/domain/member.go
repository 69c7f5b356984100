package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Chamber names as published by the upstream member feed.
const (
	ChamberSenate = "Senate"
	ChamberHouse  = "House of Representatives"
)

// Member is a sitting member of Congress.
type Member struct {
	BioguideID       string `json:"bioguide_id"`
	Name             string `json:"name"`
	Party            string `json:"party"`
	Chamber          string `json:"chamber"`
	State            string `json:"state"` // full state name
	District         *int   `json:"district"`
	StartYear        string `json:"start_year,omitempty"`
	ImageURL         string `json:"image_url,omitempty"`
	ProfileURL       string `json:"profile_url,omitempty"`
	WebsiteURL       string `json:"website_url,omitempty"`
	Address          string `json:"address,omitempty"`
	PhoneNumber      string `json:"phone_number,omitempty"`
	SponsoredBills   int    `json:"sponsored_bills"`
	CosponsoredBills int    `json:"cosponsored_bills"`
}

// DistrictLabel returns the member's two-digit district, or "" for senators
// and at-large members without a district number.
func (m Member) DistrictLabel() string {
	if m.District == nil {
		return ""
	}
	return FormatDistrict(*m.District)
}

// FormatDistrict pads a district number to two digits.
func FormatDistrict(n int) string {
	return fmt.Sprintf("%02d", n)
}

// NormalizeDistrict formats a raw district string ("7", "07", "7.0") as two
// digits. Non-numeric values are returned trimmed and unchanged.
func NormalizeDistrict(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || f < 0 {
		return raw
	}
	return FormatDistrict(int(f))
}

// ProportionRecord is one row of the member proportions feed: identity
// columns plus one float column per policy area and mode. Values are kept
// untyped because the feed serializes them as numbers or strings.
type ProportionRecord map[string]any

// BioguideID returns the record's member id.
func (r ProportionRecord) BioguideID() string { return r.str("bioguide_id") }

// Name returns the member's display name.
func (r ProportionRecord) Name() string { return r.str("name") }

// Chamber returns the member's chamber.
func (r ProportionRecord) Chamber() string { return r.str("chamber") }

// State returns the member's state as published (full name).
func (r ProportionRecord) State() string { return r.str("state") }

// Float reads a numeric field. Missing, empty, or non-numeric values are 0.
func (r ProportionRecord) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok {
		return 0, false
	}
	return toFloat(v), true
}

func (r ProportionRecord) str(key string) string {
	switch v := r[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func toFloat(v any) float64 {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		f, _ = val.Float64()
	case string:
		f = parseFloatOrZero(val)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
