package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AnshRaj112/pulse-backend/internal/logger"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultGeoIPURL     = "http://ip-api.com/json"
	DefaultGeoIPTimeout = 1500 * time.Millisecond
)

// Locator turns an address into a display location. Failures yield nil, never an error.
type Locator interface {
	Locate(ctx context.Context, ip string) *string
}

// NoopLocator never resolves anything.
type NoopLocator struct{}

func (NoopLocator) Locate(context.Context, string) *string { return nil }

// geoIPResponse is the subset of the ip-api.com JSON body we read.
type geoIPResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Country    string `json:"country"`
	RegionName string `json:"regionName"`
	City       string `json:"city"`
}

// cachedLocation is stored in Redis; Location is empty for addresses that did not resolve.
type cachedLocation struct {
	Location string `json:"location"`
}

// IPAPILocator queries an ip-api.com compatible endpoint. Concurrent lookups of the
// same address share one request, and results are cached in Redis.
type IPAPILocator struct {
	baseURL string
	client  *http.Client
	cache   *CacheService
	group   singleflight.Group
}

func NewIPAPILocator(baseURL string, timeout time.Duration, cache *CacheService) *IPAPILocator {
	if baseURL == "" {
		baseURL = DefaultGeoIPURL
	}
	if timeout <= 0 {
		timeout = DefaultGeoIPTimeout
	}
	return &IPAPILocator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		cache:   cache,
	}
}

func (l *IPAPILocator) Locate(ctx context.Context, ip string) *string {
	ip = strings.TrimSpace(ip)
	if !isRoutable(ip) {
		return nil
	}
	log := logger.FromContext(ctx)
	cacheKey := CacheKey("geo", ip)

	var cached cachedLocation
	if ok, err := l.cache.Get(ctx, cacheKey, &cached); err != nil {
		log.Debug("geo cache read failed", "ip", ip, "error", err)
	} else if ok {
		return optional(cached.Location)
	}

	v, err, _ := l.group.Do(ip, func() (any, error) {
		return l.fetch(ctx, ip)
	})
	if err != nil {
		log.Debug("geolocation lookup failed", "ip", ip, "error", err)
		return nil
	}
	location := v.(string)

	if err := l.cache.Set(ctx, cacheKey, cachedLocation{Location: location}); err != nil {
		log.Debug("geo cache write failed", "ip", ip, "error", err)
	}
	return optional(location)
}

func (l *IPAPILocator) fetch(ctx context.Context, ip string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/"+url.PathEscape(ip), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geoip returned %d", resp.StatusCode)
	}

	var body geoIPResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode geoip response: %w", err)
	}
	if body.Status != "" && body.Status != "success" {
		return "", fmt.Errorf("geoip status %q: %s", body.Status, body.Message)
	}
	return FormatLocation(body.City, body.RegionName, body.Country), nil
}

// FormatLocation joins the non-blank parts as "City, Region, Country".
func FormatLocation(city, region, country string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{city, region, country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// CountryOf returns the last component of a location string.
func CountryOf(location string) string {
	i := strings.LastIndex(location, ",")
	return strings.TrimSpace(location[i+1:])
}

func isRoutable(ip string) bool {
	addr := net.ParseIP(ip)
	if addr == nil {
		return false
	}
	return !addr.IsLoopback() && !addr.IsPrivate() && !addr.IsUnspecified() && !addr.IsLinkLocalUnicast()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
