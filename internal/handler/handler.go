// Package handler implements the HTTP surface: one handler set per
// resource, binding and validating requests at the boundary and mapping
// gateway errors onto the response taxonomy.
package handler

import (
	"tajeer-server/internal/apperr"
	"tajeer-server/internal/middleware"
	"tajeer-server/internal/report"
	"tajeer-server/internal/repository"
	"tajeer-server/internal/storage"
	"tajeer-server/internal/wizard"
	"tajeer-server/pkg/config"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Handler carries the request-scoped collaborators for all endpoints
type Handler struct {
	repos    *repository.Repositories
	files    *storage.Service
	sessions *wizard.Store
	reports  *report.Reporter
	cfg      *config.Config
}

// New constructs the handler set
func New(repos *repository.Repositories, files *storage.Service, sessions *wizard.Store, reports *report.Reporter, cfg *config.Config) *Handler {
	return &Handler{
		repos:    repos,
		files:    files,
		sessions: sessions,
		reports:  reports,
		cfg:      cfg,
	}
}

// Validator adapts go-playground/validator to echo's Validator interface
type Validator struct {
	validate *validator.Validate
}

// NewValidator constructs the request validator
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate implements echo.Validator
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return apperr.ValidationDetails("Validation failed", err.Error())
	}
	return nil
}

// ownerID extracts the authenticated user id set by the auth middleware
func ownerID(c echo.Context) (uint, error) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return 0, apperr.Unauthenticated("authentication required")
	}
	return userID, nil
}

// respondError renders an error through the taxonomy. Unexpected causes
// are logged with their diagnostic and never echoed to the client.
func respondError(c echo.Context, log *zap.Logger, err error) error {
	ae := apperr.From(err)
	if ae.Kind == apperr.KindUnexpected {
		log.Error("Request failed", zap.Error(err))
	}

	body := echo.Map{"error": ae.Message}
	if ae.Details != "" {
		body["details"] = ae.Details
	}
	return c.JSON(ae.HTTPStatus(), body)
}

// bindAndValidate parses the request body into a typed struct and runs the
// schema validation boundary
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.Validation("Invalid request data")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}
