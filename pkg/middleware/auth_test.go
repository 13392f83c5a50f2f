package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(role string) Claims {
	return Claims{
		UserID: "u-1",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			Issuer:    "user-service",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestJWTValidator(t *testing.T) {
	validate := NewJWTValidator(testSecret, "user-service")

	t.Run("valid", func(t *testing.T) {
		claims, err := validate(signToken(t, jwt.SigningMethodHS256, testSecret, validClaims(RoleAdmin)))
		require.NoError(t, err)
		assert.Equal(t, "u-1", claims.UserID)
		assert.Equal(t, RoleAdmin, claims.Role)
	})

	t.Run("subject fallback", func(t *testing.T) {
		c := validClaims("customer")
		c.UserID = ""
		claims, err := validate(signToken(t, jwt.SigningMethodHS256, testSecret, c))
		require.NoError(t, err)
		assert.Equal(t, "u-1", claims.UserID)
	})

	t.Run("expired", func(t *testing.T) {
		c := validClaims(RoleAdmin)
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		_, err := validate(signToken(t, jwt.SigningMethodHS256, testSecret, c))
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("missing expiry", func(t *testing.T) {
		c := validClaims(RoleAdmin)
		c.ExpiresAt = nil
		_, err := validate(signToken(t, jwt.SigningMethodHS256, testSecret, c))
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := validate(signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims(RoleAdmin)))
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		_, err := validate(signToken(t, jwt.SigningMethodHS512, testSecret, validClaims(RoleAdmin)))
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		c := validClaims(RoleAdmin)
		c.Issuer = "someone-else"
		_, err := validate(signToken(t, jwt.SigningMethodHS256, testSecret, c))
		assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
	})

	t.Run("unconfigured", func(t *testing.T) {
		_, err := NewJWTValidator(nil, "")(signToken(t, jwt.SigningMethodHS256, testSecret, validClaims(RoleAdmin)))
		assert.Error(t, err)
	})
}

func adminOnly() http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-User", UserIDFromContext(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})
	return Auth(NewJWTValidator(testSecret, ""))(RequireRole(RoleAdmin)(ok))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error.Code
}

func TestAuth_RequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"missing header", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"customer", "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, validClaims("customer")), http.StatusForbidden, "FORBIDDEN"},
		{"admin", "bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, validClaims(RoleAdmin)), http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/v1/products/p-1/combinations", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			adminOnly().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, rec))
			} else {
				assert.Equal(t, "u-1", rec.Header().Get("X-User"))
			}
		})
	}
}
