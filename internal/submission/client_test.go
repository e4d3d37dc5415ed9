package submission

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/parkingblisko/config"
	"github.com/Domenick1991/parkingblisko/internal/domain"
	"github.com/Domenick1991/parkingblisko/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(config.SubmissionConfig{
		URL:            url + "/",
		Token:          "secret",
		Source:         "test-desk",
		TimeoutSeconds: 2,
		RatePerSecond:  100,
	}, logger.Nop())
}

func TestClient_Submit(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/reservations", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Submit(context.Background(), Payload{
		ID:   "abc",
		Date: domain.Date{Year: 2025, Month: time.May, Day: 14},
		Reservation: domain.Reservation{
			PickupTime: "03:00",
			PersonName: "Oleksandr Yankov",
			GarageSlot: "12",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "abc", got["id"])
	assert.Equal(t, "test-desk", got["source"])
	assert.Equal(t, "2025-05-14", got["date"])
	assert.Equal(t, "03:00", got["pickup_time"])
	assert.Equal(t, "Oleksandr Yankov", got["person_name"])
	assert.Equal(t, "12", got["garage_slot"])
	assert.NotEmpty(t, got["submitted_at"])
}

func TestClient_SubmitNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slot taken", http.StatusConflict)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Submit(context.Background(), Payload{ID: "abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
	assert.Contains(t, err.Error(), "slot taken")
}

func TestClient_SubmitCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, newTestClient(srv.URL).Submit(ctx, Payload{ID: "abc"}))
}
