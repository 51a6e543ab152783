package services

import (
	"context"
	"errors"
	"lifeline/utils"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNominatim(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestResolveAddressReturnsDisplayName(t *testing.T) {
	srv, _ := newNominatim(t, http.StatusOK, `{"display_name":"Shivajinagar, Pune, Maharashtra, India"}`)
	gs := NewGeocodingService(srv.URL, "test", time.Second, nil, time.Hour)

	address, err := gs.ResolveAddress(context.Background(), 18.5308, 73.8475)
	require.NoError(t, err)
	assert.Equal(t, "Shivajinagar, Pune, Maharashtra, India", address)
}

func TestResolveAddressFallsBackOnUpstreamError(t *testing.T) {
	srv, _ := newNominatim(t, http.StatusInternalServerError, `{"error":"boom"}`)
	gs := NewGeocodingService(srv.URL, "test", time.Second, nil, time.Hour)

	address, err := gs.ResolveAddress(context.Background(), 18.5308, 73.8475)
	require.NoError(t, err)
	assert.Equal(t, "Lat: 18.5308, Lng: 73.8475", address)
}

func TestResolveAddressFallsBackOnEmptyPayload(t *testing.T) {
	srv, _ := newNominatim(t, http.StatusOK, `{"error":"Unable to geocode"}`)
	gs := NewGeocodingService(srv.URL, "test", time.Second, nil, time.Hour)

	address, err := gs.ResolveAddress(context.Background(), 0.5, 120.25)
	require.NoError(t, err)
	assert.Equal(t, "Lat: 0.5, Lng: 120.25", address)
}

func TestResolveAddressFallsBackOnNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	gs := NewGeocodingService(url, "test", 200*time.Millisecond, nil, time.Hour)
	address, err := gs.ResolveAddress(context.Background(), 18.5, 73.8)
	require.NoError(t, err)
	assert.Equal(t, "Lat: 18.5, Lng: 73.8", address)
}

func TestResolveAddressRejectsOutOfRange(t *testing.T) {
	gs := NewGeocodingService("http://127.0.0.1:1", "test", time.Second, nil, time.Hour)

	_, err := gs.ResolveAddress(context.Background(), 95, 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrInvalidCoordinates))

	_, err = gs.ResolveAddress(context.Background(), 10, -181)
	assert.True(t, errors.Is(err, utils.ErrValidation))
}

func TestResolveAddressUsesRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	srv, calls := newNominatim(t, http.StatusOK, `{"display_name":"MG Road, Bengaluru"}`)
	gs := NewGeocodingService(srv.URL, "test", time.Second, client, time.Hour)

	for i := 0; i < 3; i++ {
		address, err := gs.ResolveAddress(context.Background(), 12.9756, 77.6066)
		require.NoError(t, err)
		assert.Equal(t, "MG Road, Bengaluru", address)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	cached, err := mr.Get("geocode:12.97560:77.60660")
	require.NoError(t, err)
	assert.Equal(t, "MG Road, Bengaluru", cached)
	assert.Equal(t, time.Hour, mr.TTL("geocode:12.97560:77.60660"))
}

func TestResolveAddressDoesNotCacheFallback(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	srv, _ := newNominatim(t, http.StatusBadGateway, `{}`)
	gs := NewGeocodingService(srv.URL, "test", time.Second, client, time.Hour)

	_, err := gs.ResolveAddress(context.Background(), 12.9756, 77.6066)
	require.NoError(t, err)
	assert.False(t, mr.Exists("geocode:12.97560:77.60660"))
}
