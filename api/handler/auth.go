package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/use-agent/leadforge/models"
	"github.com/use-agent/leadforge/oauth"
)

// AuthURL returns a handler for GET /api/v1/auth/url.
// Hands the client a consent URL with a fresh state parameter.
func AuthURL(client *oauth.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := uuid.NewString()
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"url":     client.AuthCodeURL(state),
			"state":   state,
		})
	}
}

// ExchangeToken returns a handler for POST /api/v1/auth/exchange.
func ExchangeToken(client *oauth.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ExchangeTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.TokenResponse{
				Success: false,
				Error:   &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: err.Error()},
			})
			return
		}

		token, err := client.Exchange(c.Request.Context(), req.Code)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.TokenResponse{
			Success:      true,
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			ExpiresIn:    token.ExpiresIn,
		})
	}
}

// RefreshToken returns a handler for POST /api/v1/auth/refresh.
func RefreshToken(client *oauth.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RefreshTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.TokenResponse{
				Success: false,
				Error:   &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: err.Error()},
			})
			return
		}

		token, err := client.Refresh(c.Request.Context(), req.RefreshToken)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.TokenResponse{
			Success:      true,
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			ExpiresIn:    token.ExpiresIn,
		})
	}
}
