package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArmaniKE/clinic-back/internal/utils"
)

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"role":    c.Get("role"),
	})
}

func doRequest(t *testing.T, secret, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTAuth(secret)(okHandler)
	require.NoError(t, h(c))
	return rec
}

func TestJWTAuthMissingToken(t *testing.T) {
	rec := doRequest(t, "secret", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"missing token"}`, rec.Body.String())
}

func TestJWTAuthInvalidToken(t *testing.T) {
	rec := doRequest(t, "secret", "Bearer not.a.token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid token"}`, rec.Body.String())
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 7, "patient", 1)
	require.NoError(t, err)

	rec := doRequest(t, "secret", "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken("secret", 7, "doctor", 1)
	require.NoError(t, err)

	rec := doRequest(t, "secret", "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":7,"role":"doctor"}`, rec.Body.String())
}

func TestJWTAuthUnknownRole(t *testing.T) {
	tok, err := utils.NewAccessToken("secret", 7, "superuser", 1)
	require.NoError(t, err)

	rec := doRequest(t, "secret", "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid claims"}`, rec.Body.String())
}

// The frontend sends the raw token without a Bearer prefix; the middleware
// accepts both forms.
func TestJWTAuthBareToken(t *testing.T) {
	tok, err := utils.NewAccessToken("secret", 9, "admin", 1)
	require.NoError(t, err)

	rec := doRequest(t, "secret", tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
}
