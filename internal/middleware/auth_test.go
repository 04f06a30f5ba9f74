package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/justsurfingit/applicant-intake/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:        "test-secret-key",
		TokenExpireHours: 24,
		Recruiters:       map[string]string{"key-abc123": "org-1"},
	}
}

func TestGenerateToken(t *testing.T) {
	token, expiresAt, err := GenerateToken("alex", "org-1", testAuthConfig())
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if token == "" {
		t.Error("expected non-empty token")
	}

	expected := time.Now().Add(24 * time.Hour)
	if expiresAt.Before(expected.Add(-time.Minute)) || expiresAt.After(expected.Add(time.Minute)) {
		t.Errorf("expiry %v not near %v", expiresAt, expected)
	}
}

func TestExchangeAPIKey(t *testing.T) {
	cfg := testAuthConfig()

	_, org, _, err := ExchangeAPIKey("key-abc123", cfg)
	if err != nil || org != "org-1" {
		t.Errorf("ExchangeAPIKey() = %q, %v", org, err)
	}
	for _, key := range []string{"", "nope"} {
		if _, _, _, err := ExchangeAPIKey(key, cfg); err != ErrUnknownAPIKey {
			t.Errorf("ExchangeAPIKey(%q) error = %v, want ErrUnknownAPIKey", key, err)
		}
	}
}

func TestRecruiterAuth(t *testing.T) {
	cfg := testAuthConfig()
	token, _, err := GenerateToken("alex", "org-1", cfg)
	if err != nil {
		t.Fatal(err)
	}

	otherSecret := *cfg
	otherSecret.JWTSecret = "another-secret"
	forged, _, _ := GenerateToken("alex", "org-1", &otherSecret)

	tests := []struct {
		name           string
		path           string
		authHeader     string
		expectedStatus int
	}{
		{"valid token", "/orgs/org-1/candidates", "Bearer " + token, http.StatusOK},
		{"missing header", "/orgs/org-1/candidates", "", http.StatusUnauthorized},
		{"invalid format", "/orgs/org-1/candidates", token, http.StatusUnauthorized},
		{"garbage token", "/orgs/org-1/candidates", "Bearer invalid.token.here", http.StatusUnauthorized},
		{"wrong secret", "/orgs/org-1/candidates", "Bearer " + forged, http.StatusUnauthorized},
		{"other org", "/orgs/org-2/candidates", "Bearer " + token, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/orgs/:orgId/candidates", RecruiterAuth(cfg), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"org": GetOrgID(c), "recruiter": GetRecruiter(c)})
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
		})
	}
}

func TestRecruiterAuthExpiredToken(t *testing.T) {
	cfg := testAuthConfig()
	claims := Claims{
		Recruiter: "alex",
		OrgID:     "org-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))

	router := gin.New()
	router.GET("/test", RecruiterAuth(cfg), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestGetOrgIDEmpty(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if GetOrgID(c) != "" || GetRecruiter(c) != "" {
		t.Error("expected empty values without auth")
	}
}
