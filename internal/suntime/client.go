// Package suntime talks to the third-party solar and prayer time services.
package suntime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrUnavailable marks a prayer lookup that answered but carried no usable data.
var ErrUnavailable = errors.New("prayer times unavailable")

// PrayerNames are the timings copied from the prayer service.
var PrayerNames = []string{"Dhuhr", "Asr", "Isha"}

// Times is the aggregated answer for one coordinate.
type Times struct {
	Sunset      string `json:"sunset"`
	SunsetTime  string `json:"sunset_time"`
	Sunrise     string `json:"sunrise"`
	SunriseTime string `json:"sunrise_time"`
	DhuhrTime   string `json:"dhuhr_time,omitempty"`
	AsrTime     string `json:"asr_time,omitempty"`
	IshaTime    string `json:"isha_time,omitempty"`
	Lat         string `json:"lat"`
	Lng         string `json:"lng"`
}

// SolarEvents are the instants returned by the solar service.
type SolarEvents struct {
	Sunrise time.Time
	Sunset  time.Time
}

// NewHTTPClient returns the client shared by both lookups.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// SolarClient queries a sunrise-sunset.org compatible API.
type SolarClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewSolarClient(baseURL string, httpClient *http.Client) *SolarClient {
	return &SolarClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

type solarResponse struct {
	Status  string `json:"status"`
	Results struct {
		Sunrise string `json:"sunrise"`
		Sunset  string `json:"sunset"`
	} `json:"results"`
}

// Lookup fetches today's sunrise and sunset. Any failure is an error.
func (c *SolarClient) Lookup(ctx context.Context, lat, lng float64) (SolarEvents, error) {
	q := url.Values{}
	q.Set("lat", formatCoord(lat))
	q.Set("lng", formatCoord(lng))
	q.Set("formatted", "0")

	var body solarResponse
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/json?"+q.Encode(), &body); err != nil {
		return SolarEvents{}, err
	}
	if body.Status != "OK" {
		return SolarEvents{}, fmt.Errorf("solar lookup status %q", body.Status)
	}

	sunrise, err := time.Parse(time.RFC3339, body.Results.Sunrise)
	if err != nil {
		return SolarEvents{}, fmt.Errorf("parse sunrise: %w", err)
	}
	sunset, err := time.Parse(time.RFC3339, body.Results.Sunset)
	if err != nil {
		return SolarEvents{}, fmt.Errorf("parse sunset: %w", err)
	}
	return SolarEvents{Sunrise: sunrise, Sunset: sunset}, nil
}

// PrayerClient queries an aladhan.com compatible API.
type PrayerClient struct {
	baseURL    string
	method     int
	httpClient *http.Client
}

func NewPrayerClient(baseURL string, method int, httpClient *http.Client) *PrayerClient {
	return &PrayerClient{baseURL: strings.TrimRight(baseURL, "/"), method: method, httpClient: httpClient}
}

type prayerResponse struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
}

type prayerData struct {
	Timings map[string]string `json:"timings"`
}

// Lookup fetches the day's timings as HH:MM strings keyed by prayer name.
// Transport failures are returned as is; answers without usable data wrap ErrUnavailable.
func (c *PrayerClient) Lookup(ctx context.Context, lat, lng float64) (map[string]string, error) {
	q := url.Values{}
	q.Set("latitude", formatCoord(lat))
	q.Set("longitude", formatCoord(lng))
	q.Set("method", strconv.Itoa(c.method))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/timings?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body prayerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if body.Code != http.StatusOK {
		return nil, fmt.Errorf("%w: code %d", ErrUnavailable, body.Code)
	}
	var data prayerData
	if len(body.Data) == 0 || json.Unmarshal(body.Data, &data) != nil || data.Timings == nil {
		return nil, fmt.Errorf("%w: no timings", ErrUnavailable)
	}

	timings := make(map[string]string, len(PrayerNames))
	for _, name := range PrayerNames {
		if v := TrimClock(data.Timings[name]); v != "" {
			timings[name] = v
		}
	}
	return timings, nil
}

// TrimClock drops any annotation after the clock, e.g. "12:01 (EEST)" becomes "12:01".
func TrimClock(v string) string {
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API error: %s - %s", resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
