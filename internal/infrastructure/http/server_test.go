package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPIServer_Defaults(t *testing.T) {
	srv := NewAPIServer(nil, nil, ServerConfig{ReadTimeout: -time.Second})

	assert.Equal(t, ":"+DefaultPort, srv.Addr())
	assert.Equal(t, DefaultReadTimeout, srv.server.ReadTimeout, "negative values fall back too")
	assert.Equal(t, DefaultWriteTimeout, srv.server.WriteTimeout)
	assert.Equal(t, DefaultIdleTimeout, srv.server.IdleTimeout)
	assert.Equal(t, DefaultReadHeaderTimeout, srv.server.ReadHeaderTimeout)
	assert.Equal(t, DefaultMaxHeaderBytes, srv.server.MaxHeaderBytes)
}

func TestNewAPIServer_KeepsConfiguredLimits(t *testing.T) {
	srv := NewAPIServer(nil, nil, ServerConfig{
		Host:           "127.0.0.1",
		Port:           "9000",
		WriteTimeout:   3 * time.Second,
		MaxHeaderBytes: 2048,
	})

	assert.Equal(t, "127.0.0.1:9000", srv.Addr())
	assert.Equal(t, 3*time.Second, srv.server.WriteTimeout)
	assert.Equal(t, 2048, srv.server.MaxHeaderBytes)
	assert.Equal(t, DefaultReadTimeout, srv.server.ReadTimeout)
}

func TestAPIServer_Health(t *testing.T) {
	f := newAPIFixture(t, ServerConfig{})

	rec := f.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAPIServer_RejectsOversizedBody(t *testing.T) {
	f := newAPIFixture(t, ServerConfig{MaxBodyBytes: 64})
	_, token := f.signup(t, "a@b.io")

	t.Run("declared length", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/todos", token, map[string]any{"title": strings.Repeat("x", 200)})
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Contains(t, rec.Body.String(), "PAYLOAD_TOO_LARGE")
	})

	t.Run("streamed body", func(t *testing.T) {
		body := `{"title":"` + strings.Repeat("x", 200) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/todos", struct{ *strings.Reader }{strings.NewReader(body)})
		req.ContentLength = -1
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("small body passes", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/todos", token, map[string]any{"title": "ok"})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

func TestAPIServer_ProtectedRoutesNeedBearerToken(t *testing.T) {
	f := newAPIFixture(t, ServerConfig{})
	_, token := f.signup(t, "ada@example.com")

	routes := []struct {
		method, path string
	}{
		{http.MethodGet, "/todos"},
		{http.MethodPost, "/todos"},
		{http.MethodPatch, "/todos/any/complete"},
		{http.MethodGet, "/users"},
		{http.MethodPost, "/users/logout"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := f.do(t, rt.method, rt.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			rec = f.do(t, rt.method, rt.path, token, nil)
			assert.NotEqual(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAPIServer_UnknownRoute(t *testing.T) {
	f := newAPIFixture(t, ServerConfig{})

	rec := f.do(t, http.MethodGet, "/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
