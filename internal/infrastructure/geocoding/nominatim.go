// Package geocoding resolves addresses through a Nominatim-compatible search API.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/focoalerta/reports-api/internal/core/domain"
)

const (
	defaultBaseURL   = "https://nominatim.openstreetmap.org"
	defaultTimeout   = 5 * time.Second
	defaultUserAgent = "focoalerta-reports-api/1.0"
	maxBodyBytes     = 1 << 20
)

// Config holds the Nominatim client settings.
type Config struct {
	BaseURL   string
	Country   string // appended to every query, e.g. "Brasil"
	UserAgent string
	Timeout   time.Duration
}

// Nominatim implements ports.Geocoder.
type Nominatim struct {
	baseURL   string
	country   string
	userAgent string
	client    *http.Client
}

// NewNominatim creates a client. Empty settings fall back to the public
// OpenStreetMap instance.
func NewNominatim(cfg Config) *Nominatim {
	n := &Nominatim{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		country:   strings.TrimSpace(cfg.Country),
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
	if n.baseURL == "" {
		n.baseURL = defaultBaseURL
	}
	if n.userAgent == "" {
		n.userAgent = defaultUserAgent
	}
	if n.client.Timeout <= 0 {
		n.client.Timeout = defaultTimeout
	}
	return n
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve returns the best match for address, or domain.ErrAddressNotFound.
func (n *Nominatim) Resolve(ctx context.Context, address string) (*domain.GeoPoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.searchURL(address), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrLookupFailed, err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrLookupFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrLookupFailed, resp.StatusCode)
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrLookupFailed, err)
	}
	if len(results) == 0 {
		return nil, domain.ErrAddressNotFound
	}

	first := results[0]
	lat, errLat := strconv.ParseFloat(first.Lat, 64)
	lng, errLng := strconv.ParseFloat(first.Lon, 64)
	if errLat != nil || errLng != nil || !domain.ValidCoordinates(lat, lng) {
		return nil, fmt.Errorf("%w: invalid coordinates %q, %q", domain.ErrLookupFailed, first.Lat, first.Lon)
	}

	return &domain.GeoPoint{Latitude: lat, Longitude: lng, DisplayName: first.DisplayName}, nil
}

func (n *Nominatim) searchURL(address string) string {
	q := address
	if n.country != "" && !strings.HasSuffix(strings.ToLower(q), strings.ToLower(n.country)) {
		q += ", " + n.country
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	return n.baseURL + "/search?" + params.Encode()
}
