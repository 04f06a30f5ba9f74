package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/applicant-intake/internal/config"
	"github.com/justsurfingit/applicant-intake/internal/dtos"
	"github.com/justsurfingit/applicant-intake/internal/middleware"
)

type AuthHandler struct {
	cfg *config.AuthConfig
}

func NewAuthHandler(cfg *config.AuthConfig) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// Token exchanges a recruiter API key for a bearer token.
// @Summary Get a recruiter token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dtos.TokenRequest true "Recruiter API key"
// @Success 200 {object} dtos.TokenResponse
// @Failure 401 {object} dtos.ErrorResponse
// @Router /auth/token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	var req dtos.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dtos.ErrorResponse{Error: "api_key is required"})
		return
	}

	token, orgID, expiresAt, err := middleware.ExchangeAPIKey(req.APIKey, h.cfg)
	if err != nil {
		c.JSON(http.StatusUnauthorized, dtos.ErrorResponse{Error: "Invalid API key"})
		return
	}

	c.JSON(http.StatusOK, dtos.TokenResponse{Token: token, OrgID: orgID, ExpiresAt: expiresAt})
}
