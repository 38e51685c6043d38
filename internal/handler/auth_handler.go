package handler

import (
	"net/http"

	"tajeer-server/internal/apperr"
	"tajeer-server/pkg/jwtutil"
	"tajeer-server/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LoginRequest defines the structure for token issuance requests
type LoginRequest struct {
	Email  string `json:"email" validate:"required,email"`
	UserID uint   `json:"user_id" validate:"required"`
}

// Login issues a signed token for local and test use. Identity is asserted,
// not verified; production deployments sit behind the platform token issuer
// and keep this endpoint disabled.
func (h *Handler) Login(c echo.Context) error {
	log := logger.FromContext(c)

	if h.cfg.Server.Env == "production" {
		return respondError(c, log, apperr.NotFound("Resource"))
	}

	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, log, err)
	}

	token, err := jwtutil.GenerateToken(req.UserID, req.Email)
	if err != nil {
		return respondError(c, log, apperr.Unexpected("Failed to issue token", err))
	}

	log.Info("Token issued", zap.Uint("user_id", req.UserID))
	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"access_token": token,
		"token_type":   "Bearer",
	})
}
