// Package api implements the HTTP client the offline sync engine uses to
// talk to the plants API. It decodes the {success, message} envelope every
// endpoint returns and classifies failures so the replay loop can tell a
// validation error (drop, it will fail identically forever) from a
// transient one (keep queued and retry on the next drain).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Plant is the wire shape of a user plant as returned by GET /v1/plants.
type Plant struct {
	ID                          uint64     `json:"id"`
	GardenID                    uint64     `json:"garden_id"`
	PlantID                     uint64     `json:"plant_id"`
	Name                        string     `json:"name"`
	ScientificName              string     `json:"scientific_name"`
	Nickname                    *string    `json:"nickname,omitempty"`
	ImageURL                    string     `json:"image_url"`
	HealthStatus                string     `json:"health_status"`
	CustomWateringInterval      *int       `json:"custom_watering_interval,omitempty"`
	CustomFertilizerInterval    *int       `json:"custom_fertilizer_interval,omitempty"`
	DefaultWateringInterval     int        `json:"default_watering_interval"`
	DefaultFertilizerInterval   int        `json:"default_fertilizer_interval"`
	EffectiveWateringInterval   int        `json:"effective_watering_interval"`
	EffectiveFertilizerInterval int        `json:"effective_fertilizer_interval"`
	LastWateredAt               time.Time  `json:"last_watered_at"`
	NextWateringAt              time.Time  `json:"next_watering_at"`
	LastFertilizedAt            *time.Time `json:"last_fertilized_at,omitempty"`
	NextFertilizingAt           *time.Time `json:"next_fertilizing_at,omitempty"`
	LastFertilizerType          *string    `json:"last_fertilizer_type,omitempty"`
	DaysUntilWatering           int        `json:"days_until_watering"`
	WateringUrgency             string     `json:"watering_urgency"`
}

// Error is a failed API call with the server's status code and message.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// IsValidation reports whether err is a client-error response (4xx other
// than auth), meaning a retry with the same payload can never succeed.
func IsValidation(err error) bool {
	var ae *Error
	if !errors.As(err, &ae) {
		return false
	}
	return ae.StatusCode == http.StatusBadRequest || ae.StatusCode == http.StatusNotFound
}

// Client calls the plants API with a bearer token.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// New constructs a Client. The embedded http.Client carries a timeout so a
// replay drain cannot hang on one dead request.
func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// ListPlants fetches the authoritative plant list.
func (c *Client) ListPlants(ctx context.Context) ([]Plant, error) {
	var out struct {
		Plants []Plant `json:"plants"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/plants", nil, &out); err != nil {
		return nil, err
	}
	return out.Plants, nil
}

// ConfirmWatering posts a watering confirmation for the given plant.
func (c *Client) ConfirmWatering(ctx context.Context, plantID uint64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/plants/%d/water", plantID), struct{}{}, nil)
}

// SetReminder stores a care interval override for the given plant.
func (c *Client) SetReminder(ctx context.Context, plantID uint64, reminderType string, intervalDays int, fertilizerType string) error {
	body := map[string]any{
		"reminder_type": reminderType,
		"interval_days": intervalDays,
	}
	if fertilizerType != "" {
		body["fertilizer_type"] = fertilizerType
	}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/v1/plants/%d/reminder", plantID), body, nil)
}

// DeletePlant removes the given user plant.
func (c *Client) DeletePlant(ctx context.Context, plantID uint64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/plants/%d", plantID), nil, nil)
}

// do performs one request and decodes the response envelope into out. A
// non-2xx status or success=false becomes an *Error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	var envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: "malformed response"}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !envelope.Success {
		msg := envelope.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
