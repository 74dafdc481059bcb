package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLocation(t *testing.T) {
	assert.Equal(t, "Austin, Texas, United States", FormatLocation("Austin", "Texas", "United States"))
	assert.Equal(t, "Texas, United States", FormatLocation(" ", "Texas", "United States"))
	assert.Equal(t, "", FormatLocation("", "", ""))
}

func TestCountryOf(t *testing.T) {
	assert.Equal(t, "Germany", CountryOf("Berlin, Berlin, Germany"))
	assert.Equal(t, "Germany", CountryOf("Germany"))
	assert.Equal(t, "", CountryOf(""))
}

func TestIPAPILocator_Locate(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/8.8.8.8":
			w.Write([]byte(`{"status":"success","country":"United States","regionName":"California","city":"Mountain View"}`))
		case "/1.1.1.1":
			w.Write([]byte(`{"status":"fail","message":"reserved range"}`))
		case "/9.9.9.9":
			w.Write([]byte(`{"status":"success","country":"","regionName":"","city":""}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	l := NewIPAPILocator(srv.URL+"/", time.Second, nil)
	ctx := context.Background()

	got := l.Locate(ctx, "8.8.8.8")
	require.NotNil(t, got)
	assert.Equal(t, "Mountain View, California, United States", *got)

	assert.Nil(t, l.Locate(ctx, "1.1.1.1"))
	assert.Nil(t, l.Locate(ctx, "9.9.9.9"))
	assert.Nil(t, l.Locate(ctx, "4.4.4.4"))
	assert.Equal(t, int32(4), hits.Load())
}

func TestIPAPILocator_SkipsNonRoutable(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	l := NewIPAPILocator(srv.URL, time.Second, nil)
	for _, ip := range []string{"", "unknown", "127.0.0.1", "10.0.0.8", "192.168.1.1", "::1"} {
		assert.Nil(t, l.Locate(context.Background(), ip), ip)
	}
	assert.Zero(t, hits.Load())
}

func TestIPAPILocator_TimeoutYieldsNil(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	l := NewIPAPILocator(srv.URL, 50*time.Millisecond, nil)
	start := time.Now()
	assert.Nil(t, l.Locate(context.Background(), "8.8.8.8"))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCacheService_NilClientIsAMiss(t *testing.T) {
	c := NewCacheService(nil)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", cachedLocation{Location: "x"}))
	var v cachedLocation
	ok, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestClampTTL(t *testing.T) {
	assert.Equal(t, MinCacheTTL, clampTTL(time.Minute))
	assert.Equal(t, MaxCacheTTL, clampTTL(48*time.Hour))
	assert.Equal(t, DefaultCacheTTL, clampTTL(DefaultCacheTTL))
}
