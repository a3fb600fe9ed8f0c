package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corsRequest(handler http.Handler, method, origin string, preflight bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORSWildcard(t *testing.T) {
	handler := CORS(CORSConfig{})(okHandler())

	rec := corsRequest(handler, http.MethodGet, "https://shop.example.com", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSAllowlist(t *testing.T) {
	handler := CORS(CORSConfig{
		AllowOrigins: []string{"https://shop.example.com"},
	})(okHandler())

	t.Run("allowed origin", func(t *testing.T) {
		rec := corsRequest(handler, http.MethodGet, "https://SHOP.example.com", false)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Values("Vary"), "Origin")
	})

	t.Run("disallowed origin", func(t *testing.T) {
		rec := corsRequest(handler, http.MethodGet, "https://evil.example.com", false)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("no origin header", func(t *testing.T) {
		rec := corsRequest(handler, http.MethodGet, "", false)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSPreflight(t *testing.T) {
	handler := CORS(CORSConfig{
		AllowOrigins:     []string{"https://shop.example.com"},
		AllowCredentials: true,
	})(okHandler())

	rec := corsRequest(handler, http.MethodOptions, "https://shop.example.com", true)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, corsAllowMethods, rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = corsRequest(handler, http.MethodOptions, "https://evil.example.com", true)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSCredentialsNeverWildcard(t *testing.T) {
	handler := CORS(CORSConfig{
		AllowOrigins:     []string{"*", "https://shop.example.com"},
		AllowCredentials: true,
	})(okHandler())

	t.Run("listed origin", func(t *testing.T) {
		rec := corsRequest(handler, http.MethodGet, "https://shop.example.com", false)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("wildcard echoes any origin", func(t *testing.T) {
		rec := corsRequest(handler, http.MethodGet, "https://other.example.net", false)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://other.example.net", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, rec.Header().Values("Vary"), "Origin")
	})

	t.Run("preflight echoes the origin", func(t *testing.T) {
		rec := corsRequest(handler, http.MethodOptions, "https://other.example.net", true)
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://other.example.net", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})
}
