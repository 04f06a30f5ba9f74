package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/justsurfingit/applicant-intake/internal/config"
	"github.com/justsurfingit/applicant-intake/internal/logger"
)

var ErrUnknownAPIKey = errors.New("unknown recruiter key")

// Claims identifies a recruiter and the organization they act for.
type Claims struct {
	Recruiter string `json:"recruiter"`
	OrgID     string `json:"org_id"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for orgID.
func GenerateToken(recruiter, orgID string, cfg *config.AuthConfig) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(cfg.TokenExpireHours) * time.Hour)

	claims := Claims{
		Recruiter: recruiter,
		OrgID:     orgID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   recruiter,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ExchangeAPIKey trades a configured recruiter key for a token.
func ExchangeAPIKey(apiKey string, cfg *config.AuthConfig) (string, string, time.Time, error) {
	orgID, ok := cfg.Recruiters[apiKey]
	if !ok || apiKey == "" {
		return "", "", time.Time{}, ErrUnknownAPIKey
	}
	recruiter := "key-" + apiKey[:min(4, len(apiKey))]
	token, exp, err := GenerateToken(recruiter, orgID, cfg)
	return token, orgID, exp, err
}

// RecruiterAuth validates the bearer token. When the route has an :orgId
// param the token must belong to that organization.
func RecruiterAuth(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWTSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		if org := c.Param("orgId"); org != "" && org != claims.OrgID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Token is not valid for this organization"})
			return
		}

		c.Set("recruiter", claims.Recruiter)
		c.Set("org_id", claims.OrgID)
		c.Request = c.Request.WithContext(logger.WithOrg(c.Request.Context(), claims.OrgID))

		c.Next()
	}
}

func GetRecruiter(c *gin.Context) string {
	if v, exists := c.Get("recruiter"); exists {
		return v.(string)
	}
	return ""
}

func GetOrgID(c *gin.Context) string {
	if v, exists := c.Get("org_id"); exists {
		return v.(string)
	}
	return ""
}
