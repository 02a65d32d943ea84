package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListPlantsDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/plants", r.URL.Path)
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"plants": []map[string]any{
				{"id": 1, "garden_id": 2, "name": "Monstera", "health_status": "healthy",
					"effective_watering_interval": 7, "watering_urgency": "today"},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-123")
	plants, err := c.ListPlants(context.Background())
	require.NoError(t, err)
	require.Len(t, plants, 1)
	require.Equal(t, uint64(1), plants[0].ID)
	require.Equal(t, "Monstera", plants[0].Name)
	require.Equal(t, 7, plants[0].EffectiveWateringInterval)
}

func TestErrorCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "plant not found"})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	err := c.ConfirmWatering(context.Background(), 42)
	require.Error(t, err)
	var ae *Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, http.StatusNotFound, ae.StatusCode)
	require.Equal(t, "plant not found", ae.Message)
	require.True(t, IsValidation(err))
}

func TestSuccessFalseWithOKStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "soft failure"})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	err := c.DeletePlant(context.Background(), 1)
	require.Error(t, err)
	var ae *Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, "soft failure", ae.Message)
	require.False(t, IsValidation(err), "a 200 soft failure is not a validation error")
}

func TestSetReminderSendsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/v1/plants/7/reminder", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "fertilizing", body["reminder_type"])
		require.Equal(t, float64(30), body["interval_days"])
		require.Equal(t, "npk-20-20-20", body["fertilizer_type"])
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	require.NoError(t, c.SetReminder(context.Background(), 7, "fertilizing", 30, "npk-20-20-20"))
}

func TestIsValidationClassification(t *testing.T) {
	require.True(t, IsValidation(&Error{StatusCode: http.StatusBadRequest}))
	require.True(t, IsValidation(&Error{StatusCode: http.StatusNotFound}))
	require.False(t, IsValidation(&Error{StatusCode: http.StatusInternalServerError}))
	require.False(t, IsValidation(&Error{StatusCode: http.StatusUnauthorized}))
	require.False(t, IsValidation(context.DeadlineExceeded))
}
