package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sonanta/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "super-secret"

func testRouter() (*gin.Engine, *uuid.UUID) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var seen uuid.UUID
	r.GET("/protected", Middleware(testSecret), func(c *gin.Context) {
		id, _ := UserID(c)
		seen = id
		utils.Success(c, gin.H{"user_id": id})
	})
	return r, &seen
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	r, seen := testRouter()
	userID := uuid.New()

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if *seen != userID {
		t.Errorf("handler saw user %s, want %s", *seen, userID)
	}
}

func TestMiddlewareRejects(t *testing.T) {
	r, _ := testRouter()

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.token"},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", jwt.MapClaims{
			"sub": uuid.New().String(),
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
		{"expired", "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"sub": uuid.New().String(),
			"exp": time.Now().Add(-time.Hour).Unix(),
		})},
		{"non-uuid subject", "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"sub": "not-a-uuid",
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
		{"no subject", "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", w.Code)
			}
		})
	}
}
