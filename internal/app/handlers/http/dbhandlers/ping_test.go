package dbhandlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeStore struct {
	err error
}

func (f *fakeStore) Ping(_ context.Context) error {
	return f.err
}

func TestPing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name     string
		pinger   Pinger
		wantCode int
		wantBody string
	}{
		{"no storage", nil, http.StatusServiceUnavailable, `{"error":"Storage is not configured"}`},
		{"ping fails", &fakeStore{err: errors.New("fail ping")}, http.StatusInternalServerError, `{"error":"fail ping"}`},
		{"ok", &fakeStore{}, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/ping", NewPingHandler(tt.pinger).Ping)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
			res := w.Result()
			defer res.Body.Close()

			assert.Equal(t, tt.wantCode, res.StatusCode)
			body, _ := io.ReadAll(res.Body)
			if tt.wantBody == "" {
				assert.Empty(t, string(body))
			} else {
				assert.JSONEq(t, tt.wantBody, string(body))
			}
		})
	}
}
