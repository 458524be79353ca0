package resolver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryResolverResolveTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/assumptions/mortality/2024", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"columns": []string{"qx"},
			"rows":    [][]float64{{0.01}, {0.02}},
		})
	}))
	defer srv.Close()

	r := NewRegistryResolver(RegistryOptions{BaseURL: srv.URL, Token: "secret-token"})
	table, err := r.ResolveTable(context.Background(), "mortality", "2024")
	require.NoError(t, err)
	assert.Equal(t, []string{"qx"}, table.Columns)
	assert.Len(t, table.Rows, 2)
}

func TestRegistryResolverNotConfigured(t *testing.T) {
	r := NewRegistryResolver(RegistryOptions{})
	_, err := r.ResolveTable(context.Background(), "mortality", "2024")
	require.Error(t, err)
	var re *Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, NotConfigured, re.Kind)
}

func TestRegistryResolverClassifiesHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewRegistryResolver(RegistryOptions{BaseURL: srv.URL})
	_, err := r.ResolveTable(context.Background(), "missing", "2024")
	require.Error(t, err)
	var re *Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, NotFound, re.Kind)
}

func TestRegistryResolverResolveScalar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]float64{"value": 42.5})
	}))
	defer srv.Close()

	r := NewRegistryResolver(RegistryOptions{BaseURL: srv.URL})
	v, err := r.ResolveScalar(context.Background(), "rate", "latest", map[string]string{"region": "east"})
	require.NoError(t, err)
	assert.Equal(t, 42.5, v)
}

func TestRegistryResolverListVersions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]string{"v1", "v2"})
	}))
	defer srv.Close()

	r := NewRegistryResolver(RegistryOptions{BaseURL: srv.URL})
	versions, err := r.ListVersions(context.Background(), "mortality")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, versions)
}

func TestRegistryResolverTokenExpiryFromJWT(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Unix()
	payload, _ := json.Marshal(map[string]int64{"exp": exp})
	token := "header." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"

	r := NewRegistryResolver(RegistryOptions{BaseURL: "http://example.invalid", Token: token})
	assert.WithinDuration(t, time.Unix(exp, 0), r.TokenExpiresAt(), time.Second)
	assert.False(t, r.TokenExpired())
}

func TestRegistryResolverTokenExpiryDefaultsWhenNotJWT(t *testing.T) {
	r := NewRegistryResolver(RegistryOptions{BaseURL: "http://example.invalid", Token: "opaque-token"})
	assert.WithinDuration(t, time.Now().Add(DefaultTokenTTL), r.TokenExpiresAt(), time.Second)
}

func TestRegistryResolverNoTokenHasZeroExpiry(t *testing.T) {
	r := NewRegistryResolver(RegistryOptions{BaseURL: "http://example.invalid"})
	assert.True(t, r.TokenExpiresAt().IsZero())
	assert.False(t, r.TokenExpired())
}

func TestSanitizeTransportErrorStripsAuthorization(t *testing.T) {
	err := fmt.Errorf("dial failed: Authorization: Bearer secret123 was rejected")
	msg := sanitizeTransportError(err)
	assert.NotContains(t, msg, "secret123")
	assert.Contains(t, msg, "[redacted]")
}
