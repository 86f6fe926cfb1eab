package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facilityhub/internal/cache"
	apperrors "facilityhub/internal/errors"
)

func newProtectedEcho(svc *JWTService, store TokenStoreInterface) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler
	e.GET("/protected", func(c echo.Context) error {
		claims, ok := SessionClaims(c)
		if !ok {
			return echo.NewHTTPError(http.StatusInternalServerError, "claims missing")
		}
		return c.JSON(http.StatusOK, map[string]string{"email": claims.Email()})
	}, RequireSession(svc, store))
	return e
}

func doProtected(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireSession(t *testing.T) {
	svc := NewJWTService("mw-secret", time.Hour)
	valid, err := svc.IssueFor("b@x.com")
	require.NoError(t, err)

	expiredSvc := NewJWTService("mw-secret", time.Minute)
	expiredSvc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := expiredSvc.IssueFor("b@x.com")
	require.NoError(t, err)

	forged, err := NewJWTService("other-secret", time.Hour).IssueFor("b@x.com")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized},
		{"foreign signature", "Bearer " + forged, http.StatusUnauthorized},
		{"garbage", "Bearer abc.def", http.StatusUnauthorized},
	}

	e := newProtectedEcho(svc, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doProtected(e, tt.header)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "b@x.com", body["email"])
			} else {
				assert.Equal(t, SessionMessage, body["detail"])
			}
		})
	}
}

func TestRequireSession_Revoked(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewTokenStore(cache.New(mr.Addr(), "", 0))
	svc := NewJWTService("mw-secret", time.Hour)

	token, err := svc.IssueFor("c@x.com")
	require.NoError(t, err)
	claims, err := svc.Verify(token)
	require.NoError(t, err)

	e := newProtectedEcho(svc, store)
	assert.Equal(t, http.StatusOK, doProtected(e, "Bearer "+token).Code)

	require.NoError(t, store.Revoke(context.Background(), claims.ID, time.Hour))
	assert.Equal(t, http.StatusUnauthorized, doProtected(e, "Bearer "+token).Code)
}
